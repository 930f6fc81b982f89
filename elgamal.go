package pgc

import (
	"math"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/pkg/errors"
)

// KeyPair is a twisted ElGamal key, Public = Secret*G.
type KeyPair struct {
	Secret *fr.Element
	Public *bn254.G1Affine
}

func NewKeyPair(params *Params) *KeyPair {
	return KeyPairFromSecret(params, randomScalar())
}

func KeyPairFromSecret(params *Params, secret *fr.Element) *KeyPair {
	return &KeyPair{
		Secret: cloneScalar(secret),
		Public: scalarMul(params.pc.BBlinding, secret),
	}
}

// Ciphertext encrypts v under pk with randomness r as
// X = r*pk, Y = r*G + v*H. Y alone is a Pedersen commitment to v.
type Ciphertext struct {
	X *bn254.G1Affine
	Y *bn254.G1Affine
}

func ZeroCiphertext() *Ciphertext {
	return &Ciphertext{X: identity(), Y: identity()}
}

// EncryptZeroBlinding is the publicly computable encryption used for deposits.
func EncryptZeroBlinding(params *Params, v uint64) *Ciphertext {
	return &Ciphertext{
		X: identity(),
		Y: scalarMul(params.pc.B, uint64ToScalar(v)),
	}
}

func Encrypt(params *Params, pk *bn254.G1Affine, v uint64, r *fr.Element) *Ciphertext {
	return &Ciphertext{
		X: scalarMul(pk, r),
		Y: params.pc.Commit(uint64ToScalar(v), r),
	}
}

func (c *Ciphertext) Add(o *Ciphertext) *Ciphertext {
	return &Ciphertext{X: addPoints(c.X, o.X), Y: addPoints(c.Y, o.Y)}
}

func (c *Ciphertext) Sub(o *Ciphertext) *Ciphertext {
	return &Ciphertext{X: subPoint(c.X, o.X), Y: subPoint(c.Y, o.Y)}
}

func (c *Ciphertext) Equal(o *Ciphertext) bool {
	return c.X.Equal(o.X) && c.Y.Equal(o.Y)
}

func (c *Ciphertext) Clone() *Ciphertext {
	return &Ciphertext{X: clonePoint(c.X), Y: clonePoint(c.Y)}
}

// Opens reports whether c decrypts to v under sk.
func (c *Ciphertext) Opens(params *Params, sk *fr.Element, v uint64) bool {
	return c.message(params, sk).Equal(scalarMul(params.pc.B, uint64ToScalar(v)))
}

// message returns v*H = Y - sk^-1*X.
func (c *Ciphertext) message(params *Params, sk *fr.Element) *bn254.G1Affine {
	var inv fr.Element
	inv.Inverse(sk)
	return subPoint(c.Y, scalarMul(c.X, &inv))
}

// Decrypt recovers v <= max by baby-step giant-step over multiples of H.
func Decrypt(params *Params, c *Ciphertext, sk *fr.Element, max uint64) (uint64, error) {
	target := c.message(params, sk)
	step := uint64(math.Sqrt(float64(max))) + 1

	baby := make(map[[32]byte]uint64, step)
	acc := identity()
	for i := uint64(0); i < step; i++ {
		baby[acc.Bytes()] = i
		acc = addPoints(acc, params.pc.B)
	}

	var giant bn254.G1Affine
	giant.Neg(acc)
	cur := target
	for j := uint64(0); j <= step; j++ {
		if i, found := baby[cur.Bytes()]; found {
			v := j*step + i
			if v > max {
				break
			}
			return v, nil
		}
		cur = addPoints(cur, &giant)
	}
	return 0, errors.Wrapf(ErrAmountNotFound, "Decrypt max %d", max)
}
