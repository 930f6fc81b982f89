package pgc

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/gtank/merlin"
	"github.com/pkg/errors"
)

type RangeProof struct {
	A, S       *bn254.G1Affine
	T1, T2     *bn254.G1Affine
	TX         *fr.Element
	TXBlinding *fr.Element
	EBlinding  *fr.Element
	IPPProof   *InnerProductProof
}

func (p *RangeProof) ToBytes() []byte {
	var buf []byte
	buf = append(buf, p.A.Marshal()...)
	buf = append(buf, p.S.Marshal()...)
	buf = append(buf, p.T1.Marshal()...)
	buf = append(buf, p.T2.Marshal()...)
	buf = append(buf, p.TX.Marshal()...)
	buf = append(buf, p.TXBlinding.Marshal()...)
	buf = append(buf, p.EBlinding.Marshal()...)
	buf = append(buf, p.IPPProof.ToBytes()...)
	return buf
}

// GenerateRangeProofs pads values to a power of two with zero value, zero
// blinding parties and proves all of them on a fresh transcript.
func GenerateRangeProofs(bpGens *BulletproofGens, pcGens *PedersenGens, values []uint64, blindings []*fr.Element, n int64) (*RangeProof, []*bn254.G1Affine, error) {
	transcript := InitialTranscript(RANGE_PROOF_DOMAIN_TAG)
	return ProveMultiple(bpGens, pcGens, transcript, resizeUint64ToPow2(values), resizeScalarToPow2(blindings), n)
}

func ProveMultiple(
	bpGens *BulletproofGens,
	pcGens *PedersenGens,
	transcript *merlin.Transcript,
	values []uint64,
	blindings []*fr.Element,
	n int64,
) (*RangeProof, []*bn254.G1Affine, error) {
	if len(values) != len(blindings) {
		return nil, nil, fmt.Errorf("ProveMultiple WrongNumBlindingFactors %d, %d", len(values), len(blindings))
	}

	dealer1, err := NewDealer(bpGens, pcGens, transcript, n, int64(len(values)))
	if err != nil {
		return nil, nil, err
	}

	parties := make([]*PartyAwaitingPosition, len(values))
	for i := range values {
		parties[i], err = NewParty(bpGens, pcGens, values[i], blindings[i], n)
		if err != nil {
			return nil, nil, err
		}
	}

	partiesA := make([]*PartyAwaitingBitChallenge, len(parties))
	bitCommitments := make([]*BitCommitment, len(parties))
	for j := range parties {
		partiesA[j], bitCommitments[j], err = parties[j].AssignPosition(j)
		if err != nil {
			return nil, nil, err
		}
	}
	valueCommitments := make([]*bn254.G1Affine, len(bitCommitments))
	for i := range bitCommitments {
		valueCommitments[i] = bitCommitments[i].VJ
	}

	dealer2, bitChallenge, err := dealer1.ReceiveBitCommitments(bitCommitments)
	if err != nil {
		return nil, nil, err
	}

	partiesB := make([]*PartyAwaitingPolyChallenge, len(partiesA))
	polyCommitments := make([]*PolyCommitment, len(partiesA))
	for i := range partiesA {
		partiesB[i], polyCommitments[i] = partiesA[i].ApplyChallenge(bitChallenge)
	}

	dealer3, polyChallenge, err := dealer2.ReceivePolyCommitments(polyCommitments)
	if err != nil {
		return nil, nil, err
	}

	proofShares := make([]*ProofShare, len(partiesB))
	for i := range partiesB {
		proofShares[i], err = partiesB[i].ApplyChallenge(polyChallenge)
		if err != nil {
			return nil, nil, err
		}
	}

	proof, err := dealer3.AssembleShares(proofShares)
	if err != nil {
		return nil, nil, err
	}
	return proof, valueCommitments, nil
}

// VerifyRangeProof checks that every commitment opens to a value in
// [0, 2^n). The transcript must be in the state the prover started from.
func VerifyRangeProof(bpGens *BulletproofGens, pcGens *PedersenGens, transcript *merlin.Transcript, commitments []*bn254.G1Affine, n int64, proof *RangeProof, optimized bool) error {
	m := int64(len(commitments))
	if err := checkAggregation(bpGens, n, m); err != nil {
		return malformed("VerifyRangeProof %v", err)
	}
	if err := checkRangeProofShape(proof, commitments); err != nil {
		return err
	}
	nm := int(n * m)
	G := bpGens.G(n, m).Collect()
	H := bpGens.H(n, m).Collect()
	if err := checkInnerProductShape(G, H, proof.IPPProof); err != nil {
		return err
	}

	RangeproofDomainSep(n, m, transcript)
	for _, V := range commitments {
		AppendPoint("V", V, transcript)
	}
	AppendPoint("A", proof.A, transcript)
	AppendPoint("S", proof.S, transcript)
	y := ChallengeScalar("y", transcript)
	z := ChallengeScalar("z", transcript)
	AppendPoint("T_1", proof.T1, transcript)
	AppendPoint("T_2", proof.T2, transcript)
	x := ChallengeScalar("x", transcript)
	AppendScalar("t_x", proof.TX, transcript)
	AppendScalar("t_x_blinding", proof.TXBlinding, transcript)
	AppendScalar("e_blinding", proof.EBlinding, transcript)
	w := ChallengeScalar("w", transcript)
	if y.IsZero() || z.IsZero() || x.IsZero() || w.IsZero() {
		return rejected("VerifyRangeProof zero challenge")
	}

	var zz, xx fr.Element
	zz.Square(z)
	xx.Square(x)

	// t_x*B + t_x_blinding*B~ == z^2 * sum z^j V_j + delta(y,z)*B + x*T1 + x^2*T2
	lhs := pcGens.Commit(proof.TX, proof.TXBlinding)
	scalars := make([]*fr.Element, 0, len(commitments)+3)
	points := make([]*bn254.G1Affine, 0, len(commitments)+3)
	zExp := NewScalarExp(z)
	for _, V := range commitments {
		var c fr.Element
		c.Mul(&zz, zExp.Next())
		scalars = append(scalars, &c)
		points = append(points, V)
	}
	scalars = append(scalars, delta(n, m, y, z), x, &xx)
	points = append(points, pcGens.B, proof.T1, proof.T2)
	if !lhs.Equal(multiscalarMul(scalars, points)) {
		return rejected("VerifyRangeProof polynomial check")
	}

	// P = A + x*S - e_blinding*B~ - z*<1,G> + sum (z + z^(2+j) 2^(i mod n) y^-i) H_i + t_x*Q
	Q := scalarMul(pcGens.B, w)
	var one, negEBlinding, negZ fr.Element
	one.SetOne()
	negEBlinding.Neg(proof.EBlinding)
	negZ.Neg(z)
	scalars = []*fr.Element{&one, x, &negEBlinding, proof.TX}
	points = []*bn254.G1Affine{proof.A, proof.S, pcGens.BBlinding, Q}

	var inverseY fr.Element
	inverseY.Inverse(y)
	hFactors := make([]*fr.Element, nm)
	yInvExp := NewScalarExp(&inverseY)
	zPow := new(fr.Element).Set(&zz)
	for j := 0; j < int(m); j++ {
		var two fr.Element
		two.SetOne()
		for i := 0; i < int(n); i++ {
			k := j*int(n) + i
			hFactors[k] = yInvExp.Next()
			var c fr.Element
			c.Mul(zPow, &two)
			c.Mul(&c, hFactors[k])
			c.Add(&c, z)
			scalars = append(scalars, &negZ, &c)
			points = append(points, G[k], H[k])
			two.Add(&two, &two)
		}
		zPow.Mul(zPow, z)
	}
	P := multiscalarMul(scalars, points)

	ok, err := verifyInnerProduct(transcript, Q, nil, hFactors, G, H, P, proof.IPPProof, optimized)
	if err != nil {
		return err
	}
	if !ok {
		return rejected("VerifyRangeProof inner product")
	}
	return nil
}

// delta(y, z) = (z - z^2) * <1, y^(n*m)> - sum_j z^(j+3) * <1, 2^n>
func delta(n, m int64, y, z *fr.Element) *fr.Element {
	var zz, d fr.Element
	zz.Square(z)
	d.Sub(z, &zz)
	d.Mul(&d, sumOfPowers(y, int(n*m)))

	sumTwo := sumOfPowers(uint64ToScalar(2), int(n))
	zPow := new(fr.Element).Mul(&zz, z)
	for j := 0; j < int(m); j++ {
		var t fr.Element
		t.Mul(zPow, sumTwo)
		d.Sub(&d, &t)
		zPow.Mul(zPow, z)
	}
	return &d
}

func checkRangeProofShape(proof *RangeProof, commitments []*bn254.G1Affine) error {
	if proof == nil ||
		proof.A == nil || proof.S == nil || proof.T1 == nil || proof.T2 == nil ||
		proof.TX == nil || proof.TXBlinding == nil || proof.EBlinding == nil ||
		proof.IPPProof == nil {
		return malformed("VerifyRangeProof missing field")
	}
	for i, V := range commitments {
		if V == nil {
			return errors.Wrapf(ErrMalformedInput, "VerifyRangeProof missing commitment %d", i)
		}
	}
	return nil
}
