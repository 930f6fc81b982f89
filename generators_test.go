package pgc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerators(t *testing.T) {
	assert := assert.New(t)

	bg := NewBulletproofGens(8, 4)
	assert.Equal(int64(8), bg.GensCapacity)
	assert.Equal(int64(4), bg.PartyCapacity)
	assert.Len(bg.GVec, 4)
	assert.Len(bg.HVec, 4)
	assert.Len(bg.GVec[3], 8)

	again := NewBulletproofGens(4, 4)
	again.IncreaseCapacity(8)
	for j := 0; j < 4; j++ {
		for i := 0; i < 8; i++ {
			assert.True(bg.GVec[j][i].Equal(again.GVec[j][i]))
			assert.True(bg.HVec[j][i].Equal(again.HVec[j][i]))
			assert.True(bg.GVec[j][i].IsOnCurve())
			assert.False(bg.GVec[j][i].Equal(bg.HVec[j][i]))
		}
	}

	flat := bg.G(8, 2).Collect()
	assert.Len(flat, 16)
	assert.True(flat[8].Equal(bg.GVec[1][0]))
	assert.True(flat[8].Equal(bg.Share(1).G(8)[0]))

	pg := NewPedersenGens()
	assert.True(pg.BBlinding.Equal(basePoint()))
	assert.False(pg.B.Equal(pg.BBlinding))
	assert.True(pg.B.Equal(NewPedersenGens().B))
	assert.True(pg.Commit(uint64ToScalar(0), uint64ToScalar(0)).IsInfinity())
}

func TestParams(t *testing.T) {
	assert := assert.New(t)

	_, err := NewParams(3, 2)
	assert.ErrorIs(err, ErrMalformedInput)
	_, err = NewParams(128, 2)
	assert.ErrorIs(err, ErrMalformedInput)
	_, err = NewParams(8, 3)
	assert.ErrorIs(err, ErrMalformedInput)

	params, err := NewParams(4, 2)
	assert.Nil(err)
	assert.Equal(8, params.VectorCapacity())
	assert.Equal(1, params.MaxLegs())
	assert.Len(params.GVec(8), 8)

	g := params.G()
	g.Neg(g)
	assert.False(g.Equal(params.G()))

	ipp, err := params.InnerProductParams(8)
	assert.Nil(err)
	assert.Len(ipp.GV.Vec, 8)
	assert.Len(ipp.GV.Flatten(), 16)
	_, err = params.InnerProductParams(16)
	assert.ErrorIs(err, ErrMalformedInput)
	_, err = params.InnerProductParams(6)
	assert.ErrorIs(err, ErrMalformedInput)
}
