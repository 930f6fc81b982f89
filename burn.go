package pgc

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gtank/merlin"
	"github.com/pkg/errors"
)

const burnPoints = 5

// BurnProof opens Balance to Amount: with D = Y - Amount*H it proves
// X = sk*D for the sk behind Public.
type BurnProof struct {
	Receiver common.Address
	Amount   uint64
	Public   *bn254.G1Affine
	Balance  *Ciphertext
	Equality *EqualityProof
}

func burnTranscript(nonce uint64, receiver common.Address, amount uint64, pk *bn254.G1Affine, balance *Ciphertext) *merlin.Transcript {
	t := InitialTranscript(BURN_DOMAIN_TAG)
	appendInt64("nonce", nonce, t)
	appendBytes([]byte("receiver"), receiver.Bytes(), t)
	appendInt64("amount", amount, t)
	AppendPoint("pk", pk, t)
	AppendPoint("balance.X", balance.X, t)
	AppendPoint("balance.Y", balance.Y, t)
	return t
}

func burnBase(params *Params, balance *Ciphertext, amount uint64) *bn254.G1Affine {
	return subPoint(balance.Y, scalarMul(params.pc.B, uint64ToScalar(amount)))
}

func ProveBurn(params *Params, kp *KeyPair, balance *Ciphertext, amount uint64, receiver common.Address, nonce uint64) (*BurnProof, error) {
	if !balance.Opens(params, kp.Secret, amount) {
		return nil, errors.Wrapf(ErrInvalidAmount, "ProveBurn balance does not open to %d", amount)
	}
	proof := &BurnProof{
		Receiver: receiver,
		Amount:   amount,
		Public:   clonePoint(kp.Public),
		Balance:  balance.Clone(),
	}
	transcript := burnTranscript(nonce, receiver, amount, proof.Public, proof.Balance)
	var k *fr.Element
	proof.Equality, k = commitEquality(params.pc.BBlinding, burnBase(params, balance, amount))
	proof.Equality.appendTo("burn", transcript)
	proof.Equality.respond(ChallengeScalar("e", transcript), kp.Secret, k)
	return proof, nil
}

// VerifyBurn checks the opening against the nonce the ledger holds. The
// caller compares Balance with the stored ciphertext.
func VerifyBurn(params *Params, proof *BurnProof, nonce uint64) error {
	if proof.Public.IsInfinity() {
		return malformed("VerifyBurn identity key")
	}
	transcript := burnTranscript(nonce, proof.Receiver, proof.Amount, proof.Public, proof.Balance)
	proof.Equality.appendTo("burn", transcript)
	e := ChallengeScalar("e", transcript)
	if e.IsZero() {
		return rejected("VerifyBurn zero challenge")
	}
	D := burnBase(params, proof.Balance, proof.Amount)
	if !proof.Equality.verify(e, params.pc.BBlinding, proof.Public, D, proof.Balance.X) {
		return rejected("VerifyBurn opening")
	}
	return nil
}

// Points returns [pk, X, Y, A1, A2].
func (b *BurnProof) Points() []*bn254.G1Affine {
	return []*bn254.G1Affine{b.Public, b.Balance.X, b.Balance.Y, b.Equality.A, b.Equality.B}
}

func DecodeBurnProof(receiver common.Address, amount uint64, points []*bn254.G1Affine, z *fr.Element) (*BurnProof, error) {
	if len(points) != burnPoints {
		return nil, malformed("DecodeBurnProof points %d", len(points))
	}
	for i := range points {
		if points[i] == nil {
			return nil, malformed("DecodeBurnProof missing point %d", i)
		}
	}
	if z == nil {
		return nil, malformed("DecodeBurnProof missing z")
	}
	return &BurnProof{
		Receiver: receiver,
		Amount:   amount,
		Public:   points[0],
		Balance:  &Ciphertext{X: points[1], Y: points[2]},
		Equality: &EqualityProof{A: points[3], B: points[4], Z: z},
	}, nil
}

func (b *BurnProof) Flatten() *BurnTx {
	return &BurnTx{
		Receiver: b.Receiver.Hex(),
		Amount:   b.Amount,
		Points:   FlattenPoints(b.Points()),
		Z:        scalarBig(b.Equality.Z),
	}
}

func (tx *BurnTx) Decode() (common.Address, []*bn254.G1Affine, *fr.Element, error) {
	if !common.IsHexAddress(tx.Receiver) {
		return common.Address{}, nil, nil, malformed("BurnTx receiver %s", tx.Receiver)
	}
	points, err := DecodePoints(tx.Points)
	if err != nil {
		return common.Address{}, nil, nil, errors.Wrap(err, "points")
	}
	z, err := DecodeScalar(tx.Z)
	if err != nil {
		return common.Address{}, nil, nil, errors.Wrap(err, "z")
	}
	return common.HexToAddress(tx.Receiver), points, z, nil
}
