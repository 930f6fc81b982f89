package pgc

import (
	"encoding/binary"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/dchest/blake2b"
)

func identity() *bn254.G1Affine {
	return &bn254.G1Affine{}
}

func basePoint() *bn254.G1Affine {
	_, _, g1, _ := bn254.Generators()
	return &g1
}

func clonePoint(p *bn254.G1Affine) *bn254.G1Affine {
	var r bn254.G1Affine
	r.Set(p)
	return &r
}

func cloneScalar(s *fr.Element) *fr.Element {
	var r fr.Element
	r.Set(s)
	return &r
}

func scalarBig(s *fr.Element) *big.Int {
	return s.BigInt(new(big.Int))
}

func scalarMul(p *bn254.G1Affine, s *fr.Element) *bn254.G1Affine {
	var r bn254.G1Affine
	return r.ScalarMultiplication(p, scalarBig(s))
}

func addPoints(points ...*bn254.G1Affine) *bn254.G1Affine {
	var acc bn254.G1Jac
	acc.FromAffine(identity())
	for _, p := range points {
		var t bn254.G1Jac
		t.FromAffine(p)
		acc.AddAssign(&t)
	}
	var r bn254.G1Affine
	return r.FromJacobian(&acc)
}

func subPoint(a, b *bn254.G1Affine) *bn254.G1Affine {
	var neg bn254.G1Affine
	neg.Neg(b)
	return addPoints(a, &neg)
}

func uint64ToScalar(i uint64) *fr.Element {
	var s fr.Element
	return s.SetUint64(i)
}

func hashToScalar(tag string, data ...[]byte) *fr.Element {
	hash := blake2b.New512()
	hash.Write([]byte(tag))
	for _, d := range data {
		hash.Write(d)
	}
	return fromBytesModOrderWide(hash.Sum(nil))
}

func fromBytesModOrderWide(data []byte) *fr.Element {
	var s fr.Element
	return s.SetBytes(data)
}

func multiscalarMul(scalars []*fr.Element, points []*bn254.G1Affine) *bn254.G1Affine {
	var acc bn254.G1Jac
	acc.FromAffine(identity())
	for i := range scalars {
		var t bn254.G1Jac
		t.FromAffine(points[i])
		t.ScalarMultiplication(&t, scalarBig(scalars[i]))
		acc.AddAssign(&t)
	}
	var p bn254.G1Affine
	return p.FromJacobian(&acc)
}

func resizeUint64ToPow2(vec []uint64) []uint64 {
	l := nextPowerOfTwo(len(vec))
	for i := len(vec); i < l; i++ {
		vec = append(vec, 0)
	}
	return vec
}

func resizeScalarToPow2(vec []*fr.Element) []*fr.Element {
	l := nextPowerOfTwo(len(vec))
	for i := len(vec); i < l; i++ {
		var zero fr.Element
		vec = append(vec, &zero)
	}
	return vec
}

func resizePointToPow2(vec []*bn254.G1Affine) []*bn254.G1Affine {
	l := nextPowerOfTwo(len(vec))
	for i := len(vec); i < l; i++ {
		vec = append(vec, identity())
	}
	return vec
}

func nextPowerOfTwo(v int) int {
	if v <= 1 {
		return 1
	}
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v++
	return v
}

func isPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

func uint64Bytes(i uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, i)
	return buf
}
