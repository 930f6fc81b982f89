package pgc

import (
	"math"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/pkg/errors"
)

// Params are the public parameters shared by every prover and verifier.
// They are derived once and never mutated, accessors hand out copies.
type Params struct {
	bitsize int64
	parties int64
	pc      *PedersenGens
	bp      *BulletproofGens
	u       *bn254.G1Affine
}

func NewParams(bitsize, parties int64) (*Params, error) {
	if bitsize < 1 || bitsize > 64 || !isPowerOfTwo(int(bitsize)) {
		return nil, errors.Wrapf(ErrMalformedInput, "NewParams InvalidBitsize %d", bitsize)
	}
	if parties < 2 || !isPowerOfTwo(int(parties)) {
		return nil, errors.Wrapf(ErrMalformedInput, "NewParams InvalidParties %d", parties)
	}
	pc := NewPedersenGens()
	return &Params{
		bitsize: bitsize,
		parties: parties,
		pc:      pc,
		bp:      NewBulletproofGens(bitsize, parties),
		u:       hashToPoint(IPA_POINT_DOMAIN_TAG, pc.B.Marshal()),
	}, nil
}

func (p *Params) Bitsize() int64 {
	return p.bitsize
}

func (p *Params) Parties() int64 {
	return p.parties
}

// MaxLegs is the largest number of receivers one transfer can pay, one
// range slot is reserved for the refreshed sender balance.
func (p *Params) MaxLegs() int {
	return int(p.parties) - 1
}

// MaxValue is the largest amount a range proof admits, 2^bitsize - 1.
func (p *Params) MaxValue() uint64 {
	if p.bitsize == 64 {
		return math.MaxUint64
	}
	return uint64(1)<<uint(p.bitsize) - 1
}

// G is the key and blinding base.
func (p *Params) G() *bn254.G1Affine {
	return clonePoint(p.pc.BBlinding)
}

// H is the value base.
func (p *Params) H() *bn254.G1Affine {
	return clonePoint(p.pc.B)
}

func (p *Params) U() *bn254.G1Affine {
	return clonePoint(p.u)
}

func (p *Params) PedersenGens() *PedersenGens {
	return &PedersenGens{B: p.H(), BBlinding: p.G()}
}

func (p *Params) BulletproofGens() *BulletproofGens {
	return p.bp
}

// GVec returns the first n generators of the aggregated G vector.
func (p *Params) GVec(n int) []*bn254.G1Affine {
	return p.bp.G(p.bitsize, p.parties).Collect()[:n]
}

func (p *Params) HVec(n int) []*bn254.G1Affine {
	return p.bp.H(p.bitsize, p.parties).Collect()[:n]
}

// VectorCapacity is the length of the aggregated generator vectors.
func (p *Params) VectorCapacity() int {
	return int(p.bitsize * p.parties)
}

// InnerProductParams exports the standalone inner product parameters for
// vectors of length n.
func (p *Params) InnerProductParams(n int) (*InnerProductParams, error) {
	if n < 1 || n > p.VectorCapacity() || !isPowerOfTwo(n) {
		return nil, errors.Wrapf(ErrMalformedInput, "InnerProductParams InvalidLength %d", n)
	}
	return &InnerProductParams{
		GV: GeneratorVector{Vec: pointsToJSON(p.GVec(n))},
		HV: GeneratorVector{Vec: pointsToJSON(p.HVec(n))},
		U:  PointToJSON(p.u),
	}, nil
}
