package pgc

import (
	"encoding/binary"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/dchest/blake2b"
	"golang.org/x/crypto/sha3"
)

const generatorsHashDST = "PGC-BN254G1-GENERATORS"

// PedersenGens holds the value base B and the blinding base BBlinding.
// BBlinding is the group generator, which also serves as the key base of
// every twisted ElGamal public key.
type PedersenGens struct {
	B         *bn254.G1Affine
	BBlinding *bn254.G1Affine
}

func NewPedersenGens() *PedersenGens {
	base := basePoint()
	return &PedersenGens{
		B:         hashToPoint(PEDERSEN_DOMAIN_TAG, base.Marshal()),
		BBlinding: base,
	}
}

func (pg *PedersenGens) Commit(value, blinding *fr.Element) *bn254.G1Affine {
	return multiscalarMul([]*fr.Element{value, blinding}, []*bn254.G1Affine{pg.B, pg.BBlinding})
}

type BulletproofGens struct {
	GensCapacity  int64
	PartyCapacity int64
	GVec          [][]*bn254.G1Affine
	HVec          [][]*bn254.G1Affine
}

func NewBulletproofGens(gensCapacity, partyCapacity int64) *BulletproofGens {
	b := &BulletproofGens{
		GensCapacity:  0,
		PartyCapacity: partyCapacity,
		GVec:          make([][]*bn254.G1Affine, partyCapacity),
		HVec:          make([][]*bn254.G1Affine, partyCapacity),
	}
	b.IncreaseCapacity(gensCapacity)
	return b
}

func (b *BulletproofGens) IncreaseCapacity(capacity int64) {
	if b.GensCapacity >= capacity {
		return
	}
	for i := 0; i < int(b.PartyCapacity); i++ {
		var party [4]byte
		binary.LittleEndian.PutUint32(party[:], uint32(i))
		label := append([]byte("G"), party[:]...)
		chainG := NewGeneratorsChain(label)
		chainG.FastForward(b.GensCapacity)
		for j := b.GensCapacity; j < capacity; j++ {
			b.GVec[i] = append(b.GVec[i], chainG.Next())
		}

		label[0] = 'H'
		chainH := NewGeneratorsChain(label)
		chainH.FastForward(b.GensCapacity)
		for j := b.GensCapacity; j < capacity; j++ {
			b.HVec[i] = append(b.HVec[i], chainH.Next())
		}
	}
	b.GensCapacity = capacity
}

func (b *BulletproofGens) G(n, m int64) *AggregatedGensIter {
	return &AggregatedGensIter{N: n, M: m, Array: b.GVec}
}

func (b *BulletproofGens) H(n, m int64) *AggregatedGensIter {
	return &AggregatedGensIter{N: n, M: m, Array: b.HVec}
}

// AggregatedGensIter walks party rows in order, n generators per party.
type AggregatedGensIter struct {
	Array    [][]*bn254.G1Affine
	N, M     int64
	PartyIdX int64
	GenIdX   int64
}

func (a *AggregatedGensIter) Next() *bn254.G1Affine {
	if a.GenIdX >= a.N {
		a.GenIdX = 0
		a.PartyIdX += 1
	}
	if a.PartyIdX >= a.M {
		return nil
	}
	cur := a.GenIdX
	a.GenIdX += 1
	return a.Array[a.PartyIdX][cur]
}

// Collect returns copies of the remaining generators.
func (a *AggregatedGensIter) Collect() []*bn254.G1Affine {
	var out []*bn254.G1Affine
	for p := a.Next(); p != nil; p = a.Next() {
		out = append(out, clonePoint(p))
	}
	return out
}

type GeneratorsChain struct {
	sha3.ShakeHash
}

func NewGeneratorsChain(label []byte) *GeneratorsChain {
	h := sha3.NewShake256()
	h.Write([]byte("GeneratorsChain"))
	h.Write(label)
	return &GeneratorsChain{h}
}

func (c *GeneratorsChain) FastForward(n int64) {
	for i := 0; i < int(n); i++ {
		var data [64]byte
		c.Read(data[:])
	}
}

func (c *GeneratorsChain) Next() *bn254.G1Affine {
	var data [64]byte
	c.Read(data[:])
	return pointFromUniformBytes(data[:])
}

func pointFromUniformBytes(key []byte) *bn254.G1Affine {
	p, err := bn254.HashToG1(key, []byte(generatorsHashDST))
	if err != nil {
		panic(fmt.Errorf("pointFromUniformBytes HashToG1 %v", err))
	}
	return &p
}

func hashToPoint(tag string, data []byte) *bn254.G1Affine {
	hash := blake2b.New512()
	hash.Write([]byte(tag))
	hash.Write(data)
	return pointFromUniformBytes(hash.Sum(nil))
}

type BulletproofGensShare struct {
	Gens  *BulletproofGens
	Share int
}

func (b *BulletproofGens) Share(j int) *BulletproofGensShare {
	return &BulletproofGensShare{
		Gens:  b,
		Share: j,
	}
}

func (g *BulletproofGensShare) G(n int64) []*bn254.G1Affine {
	return g.Gens.GVec[g.Share][:n]
}

func (g *BulletproofGensShare) H(n int64) []*bn254.G1Affine {
	return g.Gens.HVec[g.Share][:n]
}
