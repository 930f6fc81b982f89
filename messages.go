package pgc

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

type BitCommitment struct {
	VJ *bn254.G1Affine
	AJ *bn254.G1Affine
	SJ *bn254.G1Affine
}

type BitChallenge struct {
	Y *fr.Element
	Z *fr.Element
}

type PolyChallenge struct {
	X *fr.Element
}

type PolyCommitment struct {
	T1j *bn254.G1Affine
	T2j *bn254.G1Affine
}

type ProofShare struct {
	TX         *fr.Element
	TXBlinding *fr.Element
	EBlinding  *fr.Element
	LVec       []*fr.Element
	RVec       []*fr.Element
}
