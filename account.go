package pgc

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash/crc32"

	"github.com/btcsuite/btcutil/base58"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Account is the ledger state of one public key. Plain tracks the balance
// while every credit was public; Hidden is set once a transfer touched it.
type Account struct {
	Public  *bn254.G1Affine
	Balance *Ciphertext
	Nonce   uint64
	Plain   uint64
	Hidden  bool
}

func (a *Account) Code() string {
	return AccountCode(a.Public)
}

// AccountCode is base58(crc32 || compressed public key).
func AccountCode(pk *bn254.G1Affine) string {
	data := pk.Bytes()
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, crc32.ChecksumIEEE(data[:]))
	buf = append(buf, data[:]...)
	return base58.Encode(buf)
}

func DecodeAccountCode(code string) (*bn254.G1Affine, error) {
	data := base58.Decode(code)
	if len(data) != 4+bn254.SizeOfG1AffineCompressed {
		return nil, malformed("Invalid account %s", code)
	}
	sum := make([]byte, 4)
	binary.LittleEndian.PutUint32(sum, crc32.ChecksumIEEE(data[4:]))
	if !bytes.Equal(sum, data[:4]) {
		return nil, malformed("Invalid account checksum %s", code)
	}
	var pk bn254.G1Affine
	if _, err := pk.SetBytes(data[4:]); err != nil {
		return nil, malformed("Invalid account point %s: %v", code, err)
	}
	return &pk, nil
}

func KeyPairFromHex(params *Params, secret string) (*KeyPair, error) {
	buf, err := hex.DecodeString(secret)
	if err != nil {
		return nil, malformed("KeyPairFromHex %v", err)
	}
	if len(buf) != fr.Bytes {
		return nil, malformed("KeyPairFromHex length %d", len(buf))
	}
	var s fr.Element
	s.SetBytes(buf)
	if s.IsZero() {
		return nil, malformed("KeyPairFromHex zero secret")
	}
	return KeyPairFromSecret(params, &s), nil
}

func (kp *KeyPair) SecretHex() string {
	return hex.EncodeToString(kp.Secret.Marshal())
}

func (kp *KeyPair) String() string {
	return fmt.Sprintf("KeyPair(%s)", AccountCode(kp.Public))
}
