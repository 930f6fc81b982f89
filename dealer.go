package pgc

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/gtank/merlin"
)

// DealerAwaitingBitCommitments aggregates M range proofs of N bits each.
type DealerAwaitingBitCommitments struct {
	BPGens     *BulletproofGens
	PCGens     *PedersenGens
	Transcript *merlin.Transcript
	N, M       int64
}

func NewDealer(bg *BulletproofGens, pg *PedersenGens, t *merlin.Transcript, n, m int64) (*DealerAwaitingBitCommitments, error) {
	if err := checkAggregation(bg, n, m); err != nil {
		return nil, err
	}

	return &DealerAwaitingBitCommitments{
		BPGens:     bg,
		PCGens:     pg,
		Transcript: RangeproofDomainSep(n, m, t),
		N:          n,
		M:          m,
	}, nil
}

func checkAggregation(bg *BulletproofGens, n, m int64) error {
	if n < 1 || n > 64 || !isPowerOfTwo(int(n)) {
		return fmt.Errorf("InvalidBitsize n: %d", n)
	}
	if !isPowerOfTwo(int(m)) {
		return fmt.Errorf("InvalidAggregation m: %d", m)
	}
	if bg.GensCapacity < n {
		return fmt.Errorf("InvalidGeneratorsLength GensCapacity %d, n %d", bg.GensCapacity, n)
	}
	if bg.PartyCapacity < m {
		return fmt.Errorf("InvalidGeneratorsLength PartyCapacity %d, m %d", bg.PartyCapacity, m)
	}
	return nil
}

type DealerAwaitingPolyCommitments struct {
	N, M           int64
	Transcript     *merlin.Transcript
	BPGens         *BulletproofGens
	PCGens         *PedersenGens
	BitChallenge   *BitChallenge
	BitCommitments []*BitCommitment
	A              *bn254.G1Affine
	S              *bn254.G1Affine
}

func (d *DealerAwaitingBitCommitments) ReceiveBitCommitments(commitments []*BitCommitment) (*DealerAwaitingPolyCommitments, *BitChallenge, error) {
	if int(d.M) != len(commitments) {
		return nil, nil, fmt.Errorf("ReceiveBitCommitments WrongNumBitCommitments %d %d", int(d.M), len(commitments))
	}

	as := make([]*bn254.G1Affine, len(commitments))
	ss := make([]*bn254.G1Affine, len(commitments))
	for i := range commitments {
		AppendPoint("V", commitments[i].VJ, d.Transcript)
		as[i] = commitments[i].AJ
		ss[i] = commitments[i].SJ
	}
	A := addPoints(as...)
	S := addPoints(ss...)
	AppendPoint("A", A, d.Transcript)
	AppendPoint("S", S, d.Transcript)

	y := ChallengeScalar("y", d.Transcript)
	z := ChallengeScalar("z", d.Transcript)
	challenge := &BitChallenge{Y: y, Z: z}

	return &DealerAwaitingPolyCommitments{
		N:              d.N,
		M:              d.M,
		Transcript:     d.Transcript,
		BPGens:         d.BPGens,
		PCGens:         d.PCGens,
		BitChallenge:   challenge,
		BitCommitments: commitments,
		A:              A,
		S:              S,
	}, challenge, nil
}

func (p *DealerAwaitingPolyCommitments) ReceivePolyCommitments(commitments []*PolyCommitment) (*DealerAwaitingProofShares, *PolyChallenge, error) {
	if int(p.M) != len(commitments) {
		return nil, nil, fmt.Errorf("ReceivePolyCommitments WrongNumPolyCommitments %d %d", p.M, len(commitments))
	}

	t1s := make([]*bn254.G1Affine, len(commitments))
	t2s := make([]*bn254.G1Affine, len(commitments))
	for i := range commitments {
		t1s[i] = commitments[i].T1j
		t2s[i] = commitments[i].T2j
	}
	T1 := addPoints(t1s...)
	T2 := addPoints(t2s...)
	AppendPoint("T_1", T1, p.Transcript)
	AppendPoint("T_2", T2, p.Transcript)

	x := ChallengeScalar("x", p.Transcript)
	polyChallenge := &PolyChallenge{X: x}
	return &DealerAwaitingProofShares{
		N:               p.N,
		M:               p.M,
		Transcript:      p.Transcript,
		BPGens:          p.BPGens,
		PCGens:          p.PCGens,
		BitChallenge:    p.BitChallenge,
		BitCommitments:  p.BitCommitments,
		A:               p.A,
		S:               p.S,
		PolyChallenge:   polyChallenge,
		PolyCommitments: commitments,
		T1:              T1,
		T2:              T2,
	}, polyChallenge, nil
}

type DealerAwaitingProofShares struct {
	N, M            int64
	Transcript      *merlin.Transcript
	BPGens          *BulletproofGens
	PCGens          *PedersenGens
	BitChallenge    *BitChallenge
	BitCommitments  []*BitCommitment
	A               *bn254.G1Affine
	S               *bn254.G1Affine
	PolyChallenge   *PolyChallenge
	PolyCommitments []*PolyCommitment
	T1, T2          *bn254.G1Affine
}

func (ps *ProofShare) checkSize(n int64, bpGens *BulletproofGens, j int) error {
	if len(ps.LVec) != int(n) {
		return fmt.Errorf("checkSize LVec %d, %d", len(ps.LVec), n)
	}
	if len(ps.RVec) != int(n) {
		return fmt.Errorf("checkSize RVec %d, %d", len(ps.RVec), n)
	}
	if n > bpGens.GensCapacity {
		return fmt.Errorf("checkSize GensCapacity %d, %d", n, bpGens.GensCapacity)
	}
	if int64(j) >= bpGens.PartyCapacity {
		return fmt.Errorf("checkSize PartyCapacity %d, %d", j, bpGens.PartyCapacity)
	}
	return nil
}

func (d *DealerAwaitingProofShares) AssembleShares(proofs []*ProofShare) (*RangeProof, error) {
	if int(d.M) != len(proofs) {
		return nil, fmt.Errorf("AssembleShares WrongNumProofShares %d %d", d.M, len(proofs))
	}

	var badShares []int
	for i, p := range proofs {
		if err := p.checkSize(d.N, d.BPGens, i); err != nil {
			badShares = append(badShares, i)
		}
	}
	if len(badShares) > 0 {
		return nil, fmt.Errorf("AssembleShares MalformedProofShares %v", badShares)
	}

	var tx, txBlinding, eBlinding fr.Element
	for i := range proofs {
		tx.Add(&tx, proofs[i].TX)
		txBlinding.Add(&txBlinding, proofs[i].TXBlinding)
		eBlinding.Add(&eBlinding, proofs[i].EBlinding)
	}

	AppendScalar("t_x", &tx, d.Transcript)
	AppendScalar("t_x_blinding", &txBlinding, d.Transcript)
	AppendScalar("e_blinding", &eBlinding, d.Transcript)

	w := ChallengeScalar("w", d.Transcript)
	Q := scalarMul(d.PCGens.B, w)

	nm := int(d.N * d.M)
	gFactors := make([]*fr.Element, nm)
	hFactors := make([]*fr.Element, nm)
	var inverseY fr.Element
	inverseY.Inverse(d.BitChallenge.Y)
	exp := NewScalarExp(&inverseY)
	for i := 0; i < nm; i++ {
		gFactors[i] = new(fr.Element).SetOne()
		hFactors[i] = exp.Next()
	}

	var lVec, rVec []*fr.Element
	for i := range proofs {
		for j := range proofs[i].LVec {
			lVec = append(lVec, cloneScalar(proofs[i].LVec[j]))
		}
		for j := range proofs[i].RVec {
			rVec = append(rVec, cloneScalar(proofs[i].RVec[j]))
		}
	}

	gVec := d.BPGens.G(d.N, d.M).Collect()
	hVec := d.BPGens.H(d.N, d.M).Collect()
	ippProof := CreateInnerProductProof(d.Transcript, Q, gFactors, hFactors, gVec, hVec, lVec, rVec)

	return &RangeProof{
		A:          d.A,
		S:          d.S,
		T1:         d.T1,
		T2:         d.T2,
		TX:         &tx,
		TXBlinding: &txBlinding,
		EBlinding:  &eBlinding,
		IPPProof:   ippProof,
	}, nil
}
