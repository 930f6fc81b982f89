package pgc

import (
	"math/big"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/gtank/merlin"
	"github.com/pkg/errors"
)

// VerifyInnerProductProof checks that the prover knows a, b with
// P = <a, gv> + <b, hv> and <a, b> = c, folding the generators round by round.
// A false result with a nil error means the proof was rejected.
func VerifyInnerProductProof(gv, hv []*bn254.G1Affine, p, u *bn254.G1Affine, c *fr.Element, proof *InnerProductProof) (bool, error) {
	return verifyInnerProductStandalone(gv, hv, p, u, c, proof, false)
}

// OptimizedVerifyInnerProductProof accepts exactly the proofs
// VerifyInnerProductProof accepts, using one multi-scalar multiplication.
func OptimizedVerifyInnerProductProof(gv, hv []*bn254.G1Affine, p, u *bn254.G1Affine, c *fr.Element, proof *InnerProductProof) (bool, error) {
	return verifyInnerProductStandalone(gv, hv, p, u, c, proof, true)
}

// VerifyInnerProductFlat takes every point as alternating X, Y coordinates.
func VerifyInnerProductFlat(gv, hv, p, u []*big.Int, c *big.Int, l, r []*big.Int, a, b *big.Int, optimized bool) (bool, error) {
	gPoints, err := DecodePoints(gv)
	if err != nil {
		return false, errors.Wrap(err, "gv")
	}
	hPoints, err := DecodePoints(hv)
	if err != nil {
		return false, errors.Wrap(err, "hv")
	}
	if len(p) != 2 || len(u) != 2 {
		return false, malformed("VerifyInnerProductFlat point arity %d %d", len(p), len(u))
	}
	P, err := DecodePoint(p[0], p[1])
	if err != nil {
		return false, errors.Wrap(err, "p")
	}
	U, err := DecodePoint(u[0], u[1])
	if err != nil {
		return false, errors.Wrap(err, "u")
	}
	cs, err := DecodeScalar(c)
	if err != nil {
		return false, errors.Wrap(err, "c")
	}
	lPoints, err := DecodePoints(l)
	if err != nil {
		return false, errors.Wrap(err, "l")
	}
	rPoints, err := DecodePoints(r)
	if err != nil {
		return false, errors.Wrap(err, "r")
	}
	as, err := DecodeScalar(a)
	if err != nil {
		return false, errors.Wrap(err, "a")
	}
	bs, err := DecodeScalar(b)
	if err != nil {
		return false, errors.Wrap(err, "b")
	}
	proof := &InnerProductProof{LVec: lPoints, RVec: rPoints, A: as, B: bs}
	return verifyInnerProductStandalone(gPoints, hPoints, P, U, cs, proof, optimized)
}

func verifyInnerProductStandalone(gv, hv []*bn254.G1Affine, p, u *bn254.G1Affine, c *fr.Element, proof *InnerProductProof, optimized bool) (bool, error) {
	if p == nil || u == nil || c == nil {
		return false, malformed("verifyInnerProduct missing statement")
	}
	if err := checkInnerProductShape(gv, hv, proof); err != nil {
		return false, err
	}

	transcript := InitialTranscript(INNER_PRODUCT_DOMAIN_TAG)
	AppendPoint("P", p, transcript)
	AppendScalar("c", c, transcript)
	w := ChallengeScalar("w", transcript)
	if w.IsZero() {
		return false, nil
	}
	Q := scalarMul(u, w)
	var cw fr.Element
	cw.Mul(c, w)
	P := addPoints(p, scalarMul(u, &cw))

	return verifyInnerProduct(transcript, Q, nil, nil, gv, hv, P, proof, optimized)
}

func checkInnerProductShape(G, H []*bn254.G1Affine, proof *InnerProductProof) error {
	n := len(G)
	if n == 0 || !isPowerOfTwo(n) {
		return malformed("inner product InvalidLength %d", n)
	}
	if len(H) != n {
		return malformed("inner product generator lengths %d %d", n, len(H))
	}
	if proof == nil || proof.A == nil || proof.B == nil {
		return malformed("inner product missing proof")
	}
	rounds := bits.TrailingZeros(uint(n))
	if len(proof.LVec) != rounds || len(proof.RVec) != rounds {
		return malformed("inner product rounds %d %d, want %d", len(proof.LVec), len(proof.RVec), rounds)
	}
	for i := 0; i < n; i++ {
		if G[i] == nil || H[i] == nil {
			return malformed("inner product missing generator %d", i)
		}
	}
	for i := 0; i < rounds; i++ {
		if proof.LVec[i] == nil || proof.RVec[i] == nil {
			return malformed("inner product missing round %d", i)
		}
	}
	return nil
}

// verifyInnerProduct checks P = <a, gFactors*G> + <b, hFactors*H> + a*b*Q.
// Nil factors mean all ones. Shapes must already be checked.
func verifyInnerProduct(transcript *merlin.Transcript, Q *bn254.G1Affine, gFactors, hFactors []*fr.Element, G, H []*bn254.G1Affine, P *bn254.G1Affine, proof *InnerProductProof, optimized bool) (bool, error) {
	n := len(G)
	InnerproductDomainSep(uint64(n), transcript)

	rounds := len(proof.LVec)
	challenges := make([]*fr.Element, rounds)
	for i := 0; i < rounds; i++ {
		AppendPoint("L", proof.LVec[i], transcript)
		AppendPoint("R", proof.RVec[i], transcript)
		u := ChallengeScalar("u", transcript)
		if u.IsZero() {
			return false, nil
		}
		challenges[i] = u
	}

	if gFactors == nil {
		gFactors = onesVec(n)
	}
	if hFactors == nil {
		hFactors = onesVec(n)
	}
	if optimized {
		return verifyInnerProductMultiExp(challenges, Q, gFactors, hFactors, G, H, P, proof), nil
	}
	return verifyInnerProductFolding(challenges, Q, gFactors, hFactors, G, H, P, proof), nil
}

func verifyInnerProductFolding(challenges []*fr.Element, Q *bn254.G1Affine, gFactors, hFactors []*fr.Element, G, H []*bn254.G1Affine, P *bn254.G1Affine, proof *InnerProductProof) bool {
	n := len(G)
	g := make([]*bn254.G1Affine, n)
	h := make([]*bn254.G1Affine, n)
	for i := 0; i < n; i++ {
		g[i] = scalarMul(G[i], gFactors[i])
		h[i] = scalarMul(H[i], hFactors[i])
	}

	acc := clonePoint(P)
	for j, u := range challenges {
		n = n / 2
		var uInv, uSq, uInvSq fr.Element
		uInv.Inverse(u)
		uSq.Square(u)
		uInvSq.Square(&uInv)

		for i := 0; i < n; i++ {
			g[i] = multiscalarMul([]*fr.Element{&uInv, u}, []*bn254.G1Affine{g[i], g[n+i]})
			h[i] = multiscalarMul([]*fr.Element{u, &uInv}, []*bn254.G1Affine{h[i], h[n+i]})
		}
		g = g[:n]
		h = h[:n]

		var one fr.Element
		one.SetOne()
		acc = multiscalarMul([]*fr.Element{&uSq, &one, &uInvSq}, []*bn254.G1Affine{proof.LVec[j], acc, proof.RVec[j]})
	}

	var ab fr.Element
	ab.Mul(proof.A, proof.B)
	expected := multiscalarMul([]*fr.Element{proof.A, proof.B, &ab}, []*bn254.G1Affine{g[0], h[0], Q})
	return acc.Equal(expected)
}

func verifyInnerProductMultiExp(challenges []*fr.Element, Q *bn254.G1Affine, gFactors, hFactors []*fr.Element, G, H []*bn254.G1Affine, P *bn254.G1Affine, proof *InnerProductProof) bool {
	n := len(G)
	s := verificationScalars(challenges, n)

	scalars := make([]*fr.Element, 0, 2*n+2*len(challenges)+2)
	points := make([]*bn254.G1Affine, 0, 2*n+2*len(challenges)+2)
	for i := 0; i < n; i++ {
		var r fr.Element
		r.Mul(proof.A, s[i])
		r.Mul(&r, gFactors[i])
		scalars = append(scalars, &r)
		points = append(points, G[i])
	}
	for i := 0; i < n; i++ {
		var r fr.Element
		r.Mul(proof.B, s[n-1-i])
		r.Mul(&r, hFactors[i])
		scalars = append(scalars, &r)
		points = append(points, H[i])
	}
	var ab fr.Element
	ab.Mul(proof.A, proof.B)
	scalars = append(scalars, &ab)
	points = append(points, Q)

	for j, u := range challenges {
		var uSq, uInvSq fr.Element
		uSq.Square(u)
		uSq.Neg(&uSq)
		uInvSq.Inverse(u)
		uInvSq.Square(&uInvSq)
		uInvSq.Neg(&uInvSq)
		scalars = append(scalars, &uSq, &uInvSq)
		points = append(points, proof.LVec[j], proof.RVec[j])
	}
	var minusOne fr.Element
	minusOne.SetOne()
	minusOne.Neg(&minusOne)
	scalars = append(scalars, &minusOne)
	points = append(points, P)

	return multiscalarMul(scalars, points).IsInfinity()
}

// verificationScalars returns s with s_i the product over rounds of u_j or
// u_j^-1, chosen by the bits of i. The inverse vector is s reversed.
func verificationScalars(challenges []*fr.Element, n int) []*fr.Element {
	lgN := len(challenges)
	uSq := make([]*fr.Element, lgN)
	var allInv fr.Element
	allInv.SetOne()
	for j, u := range challenges {
		var inv, sq fr.Element
		inv.Inverse(u)
		allInv.Mul(&allInv, &inv)
		uSq[j] = sq.Square(u)
	}

	s := make([]*fr.Element, n)
	s[0] = &allInv
	for i := 1; i < n; i++ {
		lg := bits.Len(uint(i)) - 1
		k := 1 << lg
		var r fr.Element
		s[i] = r.Mul(s[i-k], uSq[lgN-1-lg])
	}
	return s
}

func onesVec(n int) []*fr.Element {
	out := make([]*fr.Element, n)
	for i := range out {
		out[i] = new(fr.Element).SetOne()
	}
	return out
}
