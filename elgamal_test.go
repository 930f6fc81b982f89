package pgc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCiphertext(t *testing.T) {
	assert := assert.New(t)

	params, err := NewParams(8, 2)
	require.Nil(t, err)
	kp := NewKeyPair(params)

	c := Encrypt(params, kp.Public, 42, randomScalar())
	assert.True(c.Opens(params, kp.Secret, 42))
	assert.False(c.Opens(params, kp.Secret, 41))

	v, err := Decrypt(params, c, kp.Secret, 255)
	assert.Nil(err)
	assert.Equal(uint64(42), v)

	sum := c.Add(EncryptZeroBlinding(params, 8))
	v, err = Decrypt(params, sum, kp.Secret, 255)
	assert.Nil(err)
	assert.Equal(uint64(50), v)

	diff := sum.Sub(Encrypt(params, kp.Public, 50, randomScalar()))
	v, err = Decrypt(params, diff, kp.Secret, 10)
	assert.Nil(err)
	assert.Equal(uint64(0), v)

	_, err = Decrypt(params, c, kp.Secret, 41)
	assert.ErrorIs(err, ErrAmountNotFound)

	other := NewKeyPair(params)
	assert.False(c.Opens(params, other.Secret, 42))

	assert.True(ZeroCiphertext().Opens(params, kp.Secret, 0))
	assert.True(c.Clone().Equal(c))
}

func TestEncryptZeroThenBurn(t *testing.T) {
	assert := assert.New(t)

	params, err := NewParams(8, 2)
	require.Nil(t, err)
	kp := NewKeyPair(params)

	c := Encrypt(params, kp.Public, 77, randomScalar()).Add(Encrypt(params, kp.Public, 0, randomScalar()))
	proof, err := ProveBurn(params, kp, c, 77, testReceiver, 3)
	assert.Nil(err)
	assert.Nil(VerifyBurn(params, proof, 3))
	assert.ErrorIs(VerifyBurn(params, proof, 4), ErrProofRejected)

	_, err = ProveBurn(params, kp, c, 76, testReceiver, 3)
	assert.ErrorIs(err, ErrInvalidAmount)
}
