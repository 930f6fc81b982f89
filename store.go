package pgc

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

var (
	// accountPrefix + compressed public key -> rlp(accountRecord)
	accountPrefix = []byte("acct-")
	// consumedPrefix + proof digest -> empty (existence check)
	consumedPrefix = []byte("used-")
)

type accountRecord struct {
	X      []byte
	Y      []byte
	Nonce  uint64
	Plain  uint64
	Hidden bool
}

func accountKey(pk *bn254.G1Affine) []byte {
	b := pk.Bytes()
	return append(append([]byte{}, accountPrefix...), b[:]...)
}

func consumedKey(digest []byte) []byte {
	return append(append([]byte{}, consumedPrefix...), digest...)
}

// ReadAccount returns nil when the key was never funded.
func ReadAccount(db ethdb.KeyValueReader, pk *bn254.G1Affine) (*Account, error) {
	key := accountKey(pk)
	has, err := db.Has(key)
	if err != nil || !has {
		return nil, err
	}
	data, err := db.Get(key)
	if err != nil {
		return nil, err
	}
	var rec accountRecord
	if err := rlp.DecodeBytes(data, &rec); err != nil {
		return nil, errors.Wrap(err, "ReadAccount decode")
	}
	var x, y bn254.G1Affine
	if err := x.Unmarshal(rec.X); err != nil {
		return nil, errors.Wrap(err, "ReadAccount X")
	}
	if err := y.Unmarshal(rec.Y); err != nil {
		return nil, errors.Wrap(err, "ReadAccount Y")
	}
	return &Account{
		Public:  clonePoint(pk),
		Balance: &Ciphertext{X: &x, Y: &y},
		Nonce:   rec.Nonce,
		Plain:   rec.Plain,
		Hidden:  rec.Hidden,
	}, nil
}

func WriteAccount(db ethdb.KeyValueWriter, a *Account) error {
	data, err := rlp.EncodeToBytes(&accountRecord{
		X:      a.Balance.X.Marshal(),
		Y:      a.Balance.Y.Marshal(),
		Nonce:  a.Nonce,
		Plain:  a.Plain,
		Hidden: a.Hidden,
	})
	if err != nil {
		return errors.Wrap(err, "WriteAccount encode")
	}
	return db.Put(accountKey(a.Public), data)
}

func HasConsumedProof(db ethdb.KeyValueReader, digest []byte) bool {
	has, _ := db.Has(consumedKey(digest))
	return has
}

func WriteConsumedProof(db ethdb.KeyValueWriter, digest []byte) error {
	return db.Put(consumedKey(digest), []byte{})
}

func DeleteConsumedProof(db ethdb.KeyValueWriter, digest []byte) error {
	return db.Delete(consumedKey(digest))
}
