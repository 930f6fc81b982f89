package pgc

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ipaCase struct {
	gv, hv []*bn254.G1Affine
	u      *bn254.G1Affine
	P      *bn254.G1Affine
	c      *fr.Element
	proof  *InnerProductProof
}

func newIPACase(t *testing.T, n int) *ipaCase {
	params, err := NewParams(16, 2)
	require.Nil(t, err)
	a := make([]*fr.Element, n)
	b := make([]*fr.Element, n)
	for i := 0; i < n; i++ {
		a[i] = randomScalar()
		b[i] = randomScalar()
	}
	gv, hv := params.GVec(n), params.HVec(n)
	P, c, proof := ProveInnerProduct(gv, hv, params.U(), a, b)
	return &ipaCase{gv: gv, hv: hv, u: params.U(), P: P, c: c, proof: proof}
}

func (ic *ipaCase) verifyBoth(t *testing.T, proof *InnerProductProof) bool {
	normal, err := VerifyInnerProductProof(ic.gv, ic.hv, ic.P, ic.u, ic.c, proof)
	require.Nil(t, err)
	optimized, err := OptimizedVerifyInnerProductProof(ic.gv, ic.hv, ic.P, ic.u, ic.c, proof)
	require.Nil(t, err)
	assert.Equal(t, normal, optimized)
	return normal
}

func cloneProof(p *InnerProductProof) *InnerProductProof {
	out := &InnerProductProof{A: cloneScalar(p.A), B: cloneScalar(p.B)}
	for i := range p.LVec {
		out.LVec = append(out.LVec, clonePoint(p.LVec[i]))
		out.RVec = append(out.RVec, clonePoint(p.RVec[i]))
	}
	return out
}

func TestInnerProductProofRoundTrip(t *testing.T) {
	assert := assert.New(t)

	for _, n := range []int{1, 2, 8, 32} {
		ic := newIPACase(t, n)
		assert.Len(ic.proof.LVec, bitsLen(n))
		assert.True(ic.verifyBoth(t, ic.proof), "n %d", n)
		assert.True(ic.verifyBoth(t, ic.proof), "n %d second run", n)
	}
}

func bitsLen(n int) int {
	k := 0
	for n > 1 {
		n >>= 1
		k++
	}
	return k
}

func TestInnerProductProofTamper(t *testing.T) {
	assert := assert.New(t)

	ic := newIPACase(t, 8)
	g := basePoint()
	one := uint64ToScalar(1)
	for i := range ic.proof.LVec {
		p := cloneProof(ic.proof)
		p.LVec[i] = addPoints(p.LVec[i], g)
		assert.False(ic.verifyBoth(t, p), "L %d", i)

		p = cloneProof(ic.proof)
		p.RVec[i] = addPoints(p.RVec[i], g)
		assert.False(ic.verifyBoth(t, p), "R %d", i)
	}

	p := cloneProof(ic.proof)
	p.A.Add(p.A, one)
	assert.False(ic.verifyBoth(t, p))

	p = cloneProof(ic.proof)
	p.B.Add(p.B, one)
	assert.False(ic.verifyBoth(t, p))

	p = cloneProof(ic.proof)
	p.LVec[0], p.RVec[0] = p.RVec[0], p.LVec[0]
	assert.False(ic.verifyBoth(t, p))

	wrongC := cloneScalar(ic.c)
	wrongC.Add(wrongC, one)
	normal, err := VerifyInnerProductProof(ic.gv, ic.hv, ic.P, ic.u, wrongC, ic.proof)
	assert.Nil(err)
	assert.False(normal)
	optimized, err := OptimizedVerifyInnerProductProof(ic.gv, ic.hv, ic.P, ic.u, wrongC, ic.proof)
	assert.Nil(err)
	assert.False(optimized)

	wrongP := addPoints(ic.P, g)
	normal, _ = VerifyInnerProductProof(ic.gv, ic.hv, wrongP, ic.u, ic.c, ic.proof)
	optimized, _ = OptimizedVerifyInnerProductProof(ic.gv, ic.hv, wrongP, ic.u, ic.c, ic.proof)
	assert.False(normal)
	assert.False(optimized)
}

func TestInnerProductProofMalformed(t *testing.T) {
	assert := assert.New(t)

	ic := newIPACase(t, 8)

	ok, err := VerifyInnerProductProof(ic.gv, ic.hv[:4], ic.P, ic.u, ic.c, ic.proof)
	assert.False(ok)
	assert.ErrorIs(err, ErrMalformedInput)

	ok, err = OptimizedVerifyInnerProductProof(ic.gv[:6], ic.hv[:6], ic.P, ic.u, ic.c, ic.proof)
	assert.False(ok)
	assert.ErrorIs(err, ErrMalformedInput)

	short := cloneProof(ic.proof)
	short.LVec = short.LVec[:2]
	short.RVec = short.RVec[:2]
	ok, err = VerifyInnerProductProof(ic.gv, ic.hv, ic.P, ic.u, ic.c, short)
	assert.False(ok)
	assert.ErrorIs(err, ErrMalformedInput)

	ok, err = VerifyInnerProductProof(nil, nil, ic.P, ic.u, ic.c, ic.proof)
	assert.False(ok)
	assert.ErrorIs(err, ErrMalformedInput)

	ok, err = VerifyInnerProductProof(ic.gv, ic.hv, ic.P, ic.u, ic.c, nil)
	assert.False(ok)
	assert.ErrorIs(err, ErrMalformedInput)
}

func TestInnerProductFlat(t *testing.T) {
	assert := assert.New(t)

	ic := newIPACase(t, 8)
	gv, hv := FlattenPoints(ic.gv), FlattenPoints(ic.hv)
	p, u := FlattenPoints([]*bn254.G1Affine{ic.P}), FlattenPoints([]*bn254.G1Affine{ic.u})
	l, r := FlattenPoints(ic.proof.LVec), FlattenPoints(ic.proof.RVec)
	c, a, b := scalarBig(ic.c), scalarBig(ic.proof.A), scalarBig(ic.proof.B)

	for _, optimized := range []bool{false, true} {
		ok, err := VerifyInnerProductFlat(gv, hv, p, u, c, l, r, a, b, optimized)
		assert.Nil(err)
		assert.True(ok)
	}

	tampered := append([]*big.Int{}, l...)
	tampered[0] = new(big.Int).Add(tampered[0], big.NewInt(1))
	ok, err := VerifyInnerProductFlat(gv, hv, p, u, c, tampered, r, a, b, false)
	assert.False(ok)
	assert.ErrorIs(err, ErrMalformedInput)

	ok, err = VerifyInnerProductFlat(gv[:15], hv, p, u, c, l, r, a, b, true)
	assert.False(ok)
	assert.ErrorIs(err, ErrMalformedInput)

	ok, err = VerifyInnerProductFlat(gv, hv, p, u, c, l, r, new(big.Int).Add(a, fr.Modulus()), b, true)
	assert.False(ok)
	assert.ErrorIs(err, ErrMalformedInput)

	ok, err = VerifyInnerProductFlat(gv, hv, p, u, c, l, r, a, new(big.Int).Add(b, big.NewInt(1)), false)
	assert.Nil(err)
	assert.False(ok)

	proofJSON := ic.proof.JSON()
	back, err := proofJSON.Proof()
	assert.Nil(err)
	assert.True(ic.verifyBoth(t, back))
}
