package pgc

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

type PartyAwaitingPosition struct {
	BPGens    *BulletproofGens
	PCGens    *PedersenGens
	N         int64
	Value     uint64
	VBlinding *fr.Element
	V         *bn254.G1Affine
}

func NewParty(bg *BulletproofGens, pg *PedersenGens, value uint64, blinding *fr.Element, n int64) (*PartyAwaitingPosition, error) {
	if n < 1 || n > 64 || !isPowerOfTwo(int(n)) {
		return nil, fmt.Errorf("NewParty InvalidBitsize %d", n)
	}
	if bg.GensCapacity < n {
		return nil, fmt.Errorf("NewParty InvalidGeneratorsLength %d, %d", bg.GensCapacity, n)
	}

	return &PartyAwaitingPosition{
		BPGens:    bg,
		PCGens:    pg,
		N:         n,
		Value:     value,
		VBlinding: blinding,
		V:         pg.Commit(uint64ToScalar(value), blinding),
	}, nil
}

type PartyAwaitingBitChallenge struct {
	N         int64
	V         uint64
	VBlinding *fr.Element
	J         int
	PCGens    *PedersenGens
	ABlinding *fr.Element
	SBlinding *fr.Element
	SL        []*fr.Element
	SR        []*fr.Element
}

func (p *PartyAwaitingPosition) AssignPosition(j int) (*PartyAwaitingBitChallenge, *BitCommitment, error) {
	if p.BPGens.PartyCapacity <= int64(j) {
		return nil, nil, fmt.Errorf("AssignPosition InvalidGeneratorsLength %d, %d", p.BPGens.PartyCapacity, j)
	}
	bpShare := p.BPGens.Share(j)

	aBlinding := randomScalar()
	points := []*bn254.G1Affine{scalarMul(p.PCGens.BBlinding, aBlinding)}

	// v_i = 0 adds -H[i], v_i = 1 adds G[i]
	Gs := bpShare.G(p.N)
	Hs := bpShare.H(p.N)
	for i := range Gs {
		if (p.Value>>i)&1 == 1 {
			points = append(points, Gs[i])
			continue
		}
		var neg bn254.G1Affine
		points = append(points, neg.Neg(Hs[i]))
	}
	A := addPoints(points...)

	sBlinding := randomScalar()
	sL := make([]*fr.Element, p.N)
	sR := make([]*fr.Element, p.N)
	for i := 0; i < int(p.N); i++ {
		sL[i] = randomScalar()
		sR[i] = randomScalar()
	}

	// S = <s_L, G> + <s_R, H> + s_blinding * B_blinding
	s1 := append([]*fr.Element{sBlinding}, sL...)
	s1 = append(s1, sR...)
	s2 := append([]*bn254.G1Affine{p.PCGens.BBlinding}, Gs...)
	s2 = append(s2, Hs...)
	S := multiscalarMul(s1, s2)

	bitCommitment := &BitCommitment{
		VJ: p.V,
		AJ: A,
		SJ: S,
	}

	nextState := &PartyAwaitingBitChallenge{
		N:         p.N,
		V:         p.Value,
		VBlinding: p.VBlinding,
		PCGens:    p.PCGens,
		J:         j,
		ABlinding: aBlinding,
		SBlinding: sBlinding,
		SL:        sL,
		SR:        sR,
	}
	return nextState, bitCommitment, nil
}

func (p *PartyAwaitingBitChallenge) ApplyChallenge(vc *BitChallenge) (*PartyAwaitingPolyChallenge, *PolyCommitment) {
	offsetY := ScalarExpVartime(vc.Y, uint64(int64(p.J)*p.N))
	offsetZ := ScalarExpVartime(vc.Z, uint64(p.J))

	lPoly := ZeroVecPoly1(p.N)
	rPoly := ZeroVecPoly1(p.N)

	var offsetZZ fr.Element
	offsetZZ.Mul(vc.Z, vc.Z)
	offsetZZ.Mul(&offsetZZ, offsetZ)

	expY := offsetY
	var exp2 fr.Element
	exp2.SetOne()

	for i := 0; i < int(p.N); i++ {
		aLi := uint64ToScalar((p.V >> i) & 1)
		var one, aRi fr.Element
		one.SetOne()
		aRi.Sub(aLi, &one)

		lPoly.As[i].Sub(aLi, vc.Z)
		lPoly.Bs[i] = p.SL[i]

		var tmp1, tmp2 fr.Element
		tmp1.Add(&aRi, vc.Z)
		tmp1.Mul(expY, &tmp1)
		tmp2.Mul(&offsetZZ, &exp2)
		rPoly.As[i].Add(&tmp1, &tmp2)
		rPoly.Bs[i].Mul(expY, p.SR[i])

		expY.Mul(expY, vc.Y)
		exp2.Add(&exp2, &exp2)
	}

	tPoly := lPoly.InnerProduct(rPoly)

	t1Blinding := randomScalar()
	t2Blinding := randomScalar()

	polyCommitment := &PolyCommitment{
		T1j: p.PCGens.Commit(tPoly.B, t1Blinding),
		T2j: p.PCGens.Commit(tPoly.C, t2Blinding),
	}

	next := &PartyAwaitingPolyChallenge{
		OffsetZZ:   &offsetZZ,
		LPoly:      lPoly,
		RPoly:      rPoly,
		TPoly:      tPoly,
		T1Blinding: t1Blinding,
		T2Blinding: t2Blinding,
		VBlinding:  p.VBlinding,
		ABlinding:  p.ABlinding,
		SBlinding:  p.SBlinding,
	}
	return next, polyCommitment
}

type PartyAwaitingPolyChallenge struct {
	OffsetZZ   *fr.Element
	LPoly      *VecPoly1
	RPoly      *VecPoly1
	TPoly      *Poly2
	VBlinding  *fr.Element
	ABlinding  *fr.Element
	SBlinding  *fr.Element
	T1Blinding *fr.Element
	T2Blinding *fr.Element
}

func (p *PartyAwaitingPolyChallenge) ApplyChallenge(pc *PolyChallenge) (*ProofShare, error) {
	if pc.X.IsZero() {
		return nil, fmt.Errorf("ApplyChallenge MaliciousDealer")
	}

	var a fr.Element
	a.Mul(p.OffsetZZ, p.VBlinding)
	tBlindingPoly := Poly2{
		A: &a,
		B: p.T1Blinding,
		C: p.T2Blinding,
	}

	var eBlinding fr.Element
	eBlinding.Mul(p.SBlinding, pc.X)
	eBlinding.Add(p.ABlinding, &eBlinding)

	return &ProofShare{
		TX:         p.TPoly.Eval(pc.X),
		TXBlinding: tBlindingPoly.Eval(pc.X),
		EBlinding:  &eBlinding,
		LVec:       p.LPoly.Eval(pc.X),
		RVec:       p.RPoly.Eval(pc.X),
	}, nil
}

func randomScalar() *fr.Element {
	var s fr.Element
	if _, err := s.SetRandom(); err != nil {
		panic(fmt.Errorf("randomScalar %v", err))
	}
	return &s
}
