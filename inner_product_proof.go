package pgc

import (
	"fmt"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/gtank/merlin"
)

type InnerProductProof struct {
	LVec []*bn254.G1Affine
	RVec []*bn254.G1Affine
	A, B *fr.Element
}

// CreateInnerProductProof proves <a, b> against
// P = <a, gFactors*G> + <b, hFactors*H> + <a, b>*Q.
// The factors only weight the first round; nil factors mean all ones.
func CreateInnerProductProof(transcript *merlin.Transcript, Q *bn254.G1Affine, gFactors, hFactors []*fr.Element, gVec, hVec []*bn254.G1Affine, aVec, bVec []*fr.Element) *InnerProductProof {
	n := len(gVec)
	if len(hVec) != n || len(aVec) != n || len(bVec) != n ||
		(gFactors != nil && len(gFactors) != n) ||
		(hFactors != nil && len(hFactors) != n) {
		panic(fmt.Sprintf("Invalid input vectors %d, %d, %d, %d, %d, %d", len(gVec), len(hVec), len(aVec), len(bVec), len(gFactors), len(hFactors)))
	}
	if bits.OnesCount32(uint32(n)) != 1 {
		panic(fmt.Sprintf("CreateInnerProductProof Invalid n %d", n))
	}

	InnerproductDomainSep(uint64(n), transcript)

	proof := &InnerProductProof{}
	G, H, a, b := gVec, hVec, aVec, bVec
	for len(G) > 1 {
		G, H, a, b = proof.fold(transcript, Q, gFactors, hFactors, G, H, a, b)
		gFactors, hFactors = nil, nil
	}
	proof.A, proof.B = a[0], b[0]
	return proof
}

// fold runs one halving round, appending L and R to the proof, and returns
// the folded vectors. The inputs are left untouched.
func (p *InnerProductProof) fold(transcript *merlin.Transcript, Q *bn254.G1Affine, gFactors, hFactors []*fr.Element, G, H []*bn254.G1Affine, a, b []*fr.Element) ([]*bn254.G1Affine, []*bn254.G1Affine, []*fr.Element, []*fr.Element) {
	var one fr.Element
	one.SetOne()
	factor := func(fs []*fr.Element, i int) *fr.Element {
		if fs == nil {
			return &one
		}
		return fs[i]
	}

	n := len(G) / 2
	aL, aR := a[:n], a[n:]
	bL, bR := b[:n], b[n:]
	gL, gR := G[:n], G[n:]
	hL, hR := H[:n], H[n:]

	// L = <aL, gR> + <bR, hL> + cL*Q, R = <aR, gL> + <bL, hR> + cR*Q
	lScalars := make([]*fr.Element, 0, 2*n+1)
	rScalars := make([]*fr.Element, 0, 2*n+1)
	lPoints := make([]*bn254.G1Affine, 0, 2*n+1)
	rPoints := make([]*bn254.G1Affine, 0, 2*n+1)
	for i := 0; i < n; i++ {
		var la, lb, ra, rb fr.Element
		la.Mul(aL[i], factor(gFactors, n+i))
		lb.Mul(bR[i], factor(hFactors, i))
		ra.Mul(aR[i], factor(gFactors, i))
		rb.Mul(bL[i], factor(hFactors, n+i))
		lScalars = append(lScalars, &la, &lb)
		lPoints = append(lPoints, gR[i], hL[i])
		rScalars = append(rScalars, &ra, &rb)
		rPoints = append(rPoints, gL[i], hR[i])
	}
	lScalars = append(lScalars, innerProduct(aL, bR))
	lPoints = append(lPoints, Q)
	rScalars = append(rScalars, innerProduct(aR, bL))
	rPoints = append(rPoints, Q)
	L := multiscalarMul(lScalars, lPoints)
	R := multiscalarMul(rScalars, rPoints)

	p.LVec = append(p.LVec, L)
	p.RVec = append(p.RVec, R)
	AppendPoint("L", L, transcript)
	AppendPoint("R", R, transcript)

	u := ChallengeScalar("u", transcript)
	var uInv fr.Element
	uInv.Inverse(u)

	nextG := make([]*bn254.G1Affine, n)
	nextH := make([]*bn254.G1Affine, n)
	nextA := make([]*fr.Element, n)
	nextB := make([]*fr.Element, n)
	for i := 0; i < n; i++ {
		var x, y fr.Element
		nextA[i] = new(fr.Element).Add(x.Mul(aL[i], u), y.Mul(aR[i], &uInv))
		nextB[i] = new(fr.Element).Add(x.Mul(bL[i], &uInv), y.Mul(bR[i], u))

		var gl, gr, hl, hr fr.Element
		gl.Mul(&uInv, factor(gFactors, i))
		gr.Mul(u, factor(gFactors, n+i))
		hl.Mul(u, factor(hFactors, i))
		hr.Mul(&uInv, factor(hFactors, n+i))
		nextG[i] = multiscalarMul([]*fr.Element{&gl, &gr}, []*bn254.G1Affine{gL[i], gR[i]})
		nextH[i] = multiscalarMul([]*fr.Element{&hl, &hr}, []*bn254.G1Affine{hL[i], hR[i]})
	}
	return nextG, nextH, nextA, nextB
}

// ProveInnerProduct is the standalone form of the argument: the claimed
// inner product c is bound to the transcript through the challenge w.
// It returns the commitment P = <a, G> + <b, H> together with the proof.
func ProveInnerProduct(gv, hv []*bn254.G1Affine, u *bn254.G1Affine, aVec, bVec []*fr.Element) (*bn254.G1Affine, *fr.Element, *InnerProductProof) {
	points := append(append([]*bn254.G1Affine{}, gv...), hv...)
	scalars := append(append([]*fr.Element{}, aVec...), bVec...)
	P := multiscalarMul(scalars, points)
	c := innerProduct(aVec, bVec)

	transcript := InitialTranscript(INNER_PRODUCT_DOMAIN_TAG)
	AppendPoint("P", P, transcript)
	AppendScalar("c", c, transcript)
	w := ChallengeScalar("w", transcript)
	Q := scalarMul(u, w)

	return P, c, CreateInnerProductProof(transcript, Q, nil, nil, gv, hv, aVec, bVec)
}

func (p *InnerProductProof) ToBytes() []byte {
	var buf []byte
	for i := range p.LVec {
		buf = append(buf, p.LVec[i].Marshal()...)
		buf = append(buf, p.RVec[i].Marshal()...)
	}
	buf = append(buf, p.A.Marshal()...)
	buf = append(buf, p.B.Marshal()...)
	return buf
}
