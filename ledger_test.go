package pgc

import (
	"sync"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testReceiver = common.HexToAddress("0x00000000000000000000000000000000000000a1")

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Release(receiver common.Address, amount uint64) error {
	args := m.Called(receiver, amount)
	return args.Error(0)
}

func proveLedgerTransfer(t *testing.T, l *Ledger, sender *KeyPair, value uint64, payments ...Payment) *TransferProof {
	acct, err := l.Account(sender.Public)
	require.Nil(t, err)
	tp, err := ProveTransfer(l.Params(), sender, acct.Balance, value, acct.Nonce, payments)
	require.Nil(t, err)
	return tp
}

func proveLedgerBurn(t *testing.T, l *Ledger, kp *KeyPair, amount uint64) *BurnProof {
	acct, err := l.Account(kp.Public)
	require.Nil(t, err)
	proof, err := ProveBurn(l.Params(), kp, acct.Balance, amount, testReceiver, acct.Nonce)
	require.Nil(t, err)
	return proof
}

func applyTransfer(l *Ledger, tp *TransferProof) (*TransferRecord, error) {
	points, scalars, lr := tp.Encode()
	return l.AggregatedTransfer(points, scalars, lr)
}

func applyBurn(l *Ledger, proof *BurnProof) (*BurnRecord, error) {
	return l.Burn(proof.Receiver, proof.Amount, proof.Points(), proof.Equality.Z)
}

func decryptAccount(t *testing.T, l *Ledger, kp *KeyPair, max uint64) uint64 {
	acct, err := l.Account(kp.Public)
	require.Nil(t, err)
	v, err := Decrypt(l.Params(), acct.Balance, kp.Secret, max)
	require.Nil(t, err)
	return v
}

func TestLedgerDepositTransferBurn(t *testing.T) {
	assert := assert.New(t)

	params, err := NewParams(8, 2)
	require.Nil(t, err)
	vault := NewMemoryVault()
	l := NewLedger(params, nil, vault)
	alice, bob := NewKeyPair(params), NewKeyPair(params)

	dep, err := l.Deposit(alice.Public, 100)
	assert.Nil(err)
	assert.Equal(uint64(1), dep.Nonce)
	assert.Equal(AccountCode(alice.Public), dep.Account)

	_, err = l.Account(bob.Public)
	assert.ErrorIs(err, ErrUnknownAccount)

	tp := proveLedgerTransfer(t, l, alice, 100, Payment{Receiver: bob.Public, Amount: 40})
	assert.Len(tp.Range.IPPProof.LVec, 4)
	rec, err := applyTransfer(l, tp)
	require.Nil(t, err)
	assert.Equal(uint64(2), rec.Nonce)
	assert.Equal([]string{AccountCode(bob.Public)}, rec.Receivers)
	assert.Len(rec.Digest, 64)

	assert.Equal(uint64(60), decryptAccount(t, l, alice, 255))
	assert.Equal(uint64(40), decryptAccount(t, l, bob, 255))
	acct, err := l.Account(bob.Public)
	assert.Nil(err)
	assert.Equal(uint64(1), acct.Nonce)

	_, err = applyTransfer(l, tp)
	assert.ErrorIs(err, ErrReplay)

	stale := proveLedgerBurn(t, l, alice, 60)
	burn, err := applyBurn(l, stale)
	require.Nil(t, err)
	assert.Equal(uint64(60), burn.Amount)
	assert.Equal(uint64(3), burn.Nonce)
	assert.Equal(uint64(60), vault.Released(testReceiver))
	assert.Equal(uint64(0), decryptAccount(t, l, alice, 255))

	_, err = applyBurn(l, stale)
	assert.ErrorIs(err, ErrReplay)
	assert.Equal(uint64(60), vault.Released(testReceiver))

	// re-funding restores the exact pre-burn ciphertext
	_, err = l.Deposit(alice.Public, 60)
	assert.Nil(err)
	acct, err = l.Account(alice.Public)
	assert.Nil(err)
	assert.True(acct.Balance.Equal(stale.Balance))
	_, err = applyBurn(l, stale)
	assert.ErrorIs(err, ErrReplay)
	assert.Equal(uint64(60), vault.Released(testReceiver))

	_, err = applyBurn(l, proveLedgerBurn(t, l, alice, 60))
	assert.Nil(err)
	assert.Equal(uint64(120), vault.Released(testReceiver))

	_, err = applyBurn(l, proveLedgerBurn(t, l, bob, 40))
	assert.Nil(err)
	assert.Equal(uint64(160), vault.Released(testReceiver))
	assert.Equal(uint64(0), decryptAccount(t, l, bob, 255))
}

func TestLedgerSmallGenerators(t *testing.T) {
	assert := assert.New(t)

	params, err := NewParams(4, 2)
	require.Nil(t, err)
	l := NewLedger(params, nil, nil, WithOptimizedVerifier(false))
	alice, bob := NewKeyPair(params), NewKeyPair(params)

	_, err = l.Deposit(alice.Public, 10)
	assert.Nil(err)
	tp := proveLedgerTransfer(t, l, alice, 10, Payment{Receiver: bob.Public, Amount: 4})
	assert.Equal(8, len(params.GVec(8)))
	assert.Len(tp.Range.IPPProof.LVec, 3)
	assert.Len(tp.Range.IPPProof.RVec, 3)
	_, err = applyTransfer(l, tp)
	assert.Nil(err)
	assert.Equal(uint64(6), decryptAccount(t, l, alice, 15))
	assert.Equal(uint64(4), decryptAccount(t, l, bob, 15))

	_, err = applyTransfer(l, proveLedgerTransfer(t, l, bob, 4, Payment{Receiver: alice.Public, Amount: 4}))
	assert.Nil(err)
	assert.Equal(uint64(10), decryptAccount(t, l, alice, 15))
	assert.Equal(uint64(0), decryptAccount(t, l, bob, 15))
}

func TestLedgerAggregatedTransfer(t *testing.T) {
	assert := assert.New(t)

	params, err := NewParams(8, 4)
	require.Nil(t, err)
	l := NewLedger(params, nil, nil)
	alice, bob, carol := NewKeyPair(params), NewKeyPair(params), NewKeyPair(params)

	_, err = l.Deposit(alice.Public, 200)
	assert.Nil(err)
	_, err = l.Deposit(carol.Public, 5)
	assert.Nil(err)

	tp := proveLedgerTransfer(t, l, alice, 200,
		Payment{Receiver: bob.Public, Amount: 25},
		Payment{Receiver: carol.Public, Amount: 15},
		Payment{Receiver: bob.Public, Amount: 10},
	)
	_, err = applyTransfer(l, tp)
	assert.Nil(err)
	assert.Equal(uint64(150), decryptAccount(t, l, alice, 255))
	assert.Equal(uint64(35), decryptAccount(t, l, bob, 255))
	assert.Equal(uint64(20), decryptAccount(t, l, carol, 255))

	acct, err := l.Account(carol.Public)
	assert.Nil(err)
	assert.Equal(uint64(2), acct.Nonce)
	acct, err = l.Account(bob.Public)
	assert.Nil(err)
	assert.Equal(uint64(1), acct.Nonce)
}

func TestLedgerRejectionsLeaveState(t *testing.T) {
	assert := assert.New(t)

	params, err := NewParams(8, 2)
	require.Nil(t, err)
	sink := new(mockSink)
	l := NewLedger(params, nil, sink)
	alice, bob := NewKeyPair(params), NewKeyPair(params)
	_, err = l.Deposit(alice.Public, 100)
	require.Nil(t, err)
	before, err := l.Account(alice.Public)
	require.Nil(t, err)

	unchanged := func() {
		acct, err := l.Account(alice.Public)
		assert.Nil(err)
		assert.True(acct.Balance.Equal(before.Balance))
		assert.Equal(before.Nonce, acct.Nonce)
		_, err = l.Account(bob.Public)
		assert.ErrorIs(err, ErrUnknownAccount)
	}

	tp := proveLedgerTransfer(t, l, alice, 100, Payment{Receiver: bob.Public, Amount: 40})
	points, scalars, lr := tp.Encode()
	inflated := append([]*bn254.G1Affine{}, points...)
	inflated[4] = addPoints(points[4], params.H())
	_, err = l.AggregatedTransfer(inflated, scalars, lr)
	assert.ErrorIs(err, ErrProofRejected)
	unchanged()

	_, err = l.AggregatedTransfer(points[:len(points)-1], scalars, lr)
	assert.ErrorIs(err, ErrMalformedInput)
	unchanged()

	// proof bound to an older nonce
	_, err = l.Deposit(alice.Public, 1)
	require.Nil(t, err)
	before, err = l.Account(alice.Public)
	require.Nil(t, err)
	_, err = l.AggregatedTransfer(points, scalars, lr)
	assert.ErrorIs(err, ErrProofRejected)
	unchanged()

	proof := proveLedgerBurn(t, l, alice, 101)
	_, err = l.Burn(testReceiver, 100, proof.Points(), proof.Equality.Z)
	assert.ErrorIs(err, ErrProofRejected)
	_, err = l.Burn(common.HexToAddress("0x00000000000000000000000000000000000000b2"), 101, proof.Points(), proof.Equality.Z)
	assert.ErrorIs(err, ErrProofRejected)
	_, err = l.Burn(testReceiver, 0, proof.Points(), proof.Equality.Z)
	assert.ErrorIs(err, ErrInvalidAmount)
	_, err = l.Burn(testReceiver, 101, proof.Points()[:4], proof.Equality.Z)
	assert.ErrorIs(err, ErrMalformedInput)
	unchanged()
	sink.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)

	sink.On("Release", testReceiver, uint64(101)).Return(errors.New("vault offline")).Once()
	_, err = applyBurn(l, proof)
	assert.NotNil(err)
	unchanged()

	sink.On("Release", testReceiver, uint64(101)).Return(nil).Once()
	_, err = applyBurn(l, proof)
	assert.Nil(err)
	sink.AssertExpectations(t)
}

func TestLedgerInvalidInput(t *testing.T) {
	assert := assert.New(t)

	params, err := NewParams(4, 2)
	require.Nil(t, err)
	l := NewLedger(params, nil, nil)
	alice, bob := NewKeyPair(params), NewKeyPair(params)

	_, err = l.Deposit(alice.Public, 0)
	assert.ErrorIs(err, ErrInvalidAmount)
	_, err = l.Deposit(alice.Public, 16)
	assert.ErrorIs(err, ErrInvalidAmount)
	_, err = l.Deposit(identity(), 1)
	assert.ErrorIs(err, ErrMalformedInput)
	_, err = l.Deposit(nil, 1)
	assert.ErrorIs(err, ErrMalformedInput)
	_, err = l.Account(alice.Public)
	assert.ErrorIs(err, ErrUnknownAccount)

	balance := Encrypt(params, alice.Public, 5, randomScalar())
	tp, err := ProveTransfer(params, alice, balance, 5, 0, []Payment{{Receiver: bob.Public, Amount: 1}})
	require.Nil(t, err)
	_, err = applyTransfer(l, tp)
	assert.ErrorIs(err, ErrUnknownAccount)

	proof, err := ProveBurn(params, alice, balance, 5, testReceiver, 0)
	require.Nil(t, err)
	_, err = applyBurn(l, proof)
	assert.ErrorIs(err, ErrUnknownAccount)
}

func TestLedgerConcurrentDeposits(t *testing.T) {
	assert := assert.New(t)

	params, err := NewParams(8, 2)
	require.Nil(t, err)
	l := NewLedger(params, nil, nil)
	alice := NewKeyPair(params)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Deposit(alice.Public, 3)
			assert.Nil(err)
		}()
	}
	wg.Wait()

	acct, err := l.Account(alice.Public)
	assert.Nil(err)
	assert.Equal(uint64(16), acct.Nonce)
	assert.Equal(uint64(48), decryptAccount(t, l, alice, 255))
}

type flakyDB struct {
	ethdb.KeyValueStore
	fail bool
}

func (db *flakyDB) NewBatch() ethdb.Batch {
	return &flakyBatch{Batch: db.KeyValueStore.NewBatch(), db: db}
}

type flakyBatch struct {
	ethdb.Batch
	db *flakyDB
}

func (b *flakyBatch) Write() error {
	if b.db.fail {
		return errors.New("disk full")
	}
	return b.Batch.Write()
}

// overdraftTransfer pays amount to receiver while refreshing the sender to
// an encryption of zero, with X* chosen so the refresh equality still holds.
func overdraftTransfer(t *testing.T, params *Params, sender *KeyPair, balance *Ciphertext, nonce uint64, receiver *bn254.G1Affine, amount uint64) *TransferProof {
	r, s := randomScalar(), randomScalar()
	leg := &TransferLeg{
		Receiver: clonePoint(receiver),
		X1:       scalarMul(sender.Public, r),
		X2:       scalarMul(receiver, r),
		Y:        params.pc.Commit(uint64ToScalar(amount), r),
	}
	tp := &TransferProof{Sender: clonePoint(sender.Public), Legs: []*TransferLeg{leg}}
	remainder := balance.Sub(tp.Debit())
	Ystar := params.pc.Commit(uint64ToScalar(0), s)
	D := subPoint(remainder.Y, Ystar)
	tp.Refresh = &Ciphertext{X: subPoint(remainder.X, scalarMul(D, sender.Secret)), Y: Ystar}

	transcript := transferTranscript(nonce, tp.Sender, balance, tp.Legs, tp.Refresh)
	var legNonce, refreshNonce *validityNonce
	leg.Validity, legNonce = commitValidity(params, tp.Sender, leg.Receiver)
	leg.Validity.appendTo(transcript)
	tp.RefreshValidity, refreshNonce = commitRefresh(params, tp.Sender)
	tp.RefreshValidity.appendTo(transcript)
	var k *fr.Element
	tp.Equality, k = commitEquality(params.pc.BBlinding, D)
	tp.Equality.appendTo("refresh", transcript)
	e := ChallengeScalar("e", transcript)
	leg.Validity.respond(e, r, uint64ToScalar(amount), legNonce)
	tp.RefreshValidity.respond(e, s, uint64ToScalar(0), refreshNonce)
	tp.Equality.respond(e, sender.Secret, k)

	var err error
	tp.Range, _, err = ProveMultiple(params.bp, params.pc, transcript, []uint64{amount, 0}, []*fr.Element{r, s}, params.bitsize)
	require.Nil(t, err)
	return tp
}

func TestLedgerOverdraftRejected(t *testing.T) {
	assert := assert.New(t)

	params, err := NewParams(8, 2)
	require.Nil(t, err)
	vault := NewMemoryVault()
	l := NewLedger(params, nil, vault)
	alice, bob := NewKeyPair(params), NewKeyPair(params)
	_, err = l.Deposit(alice.Public, 10)
	require.Nil(t, err)
	acct, err := l.Account(alice.Public)
	require.Nil(t, err)

	tp := overdraftTransfer(t, params, alice, acct.Balance, acct.Nonce, bob.Public, 40)
	remainder := acct.Balance.Sub(tp.Debit())
	E := subPoint(remainder.X, tp.Refresh.X)
	D := subPoint(remainder.Y, tp.Refresh.Y)
	assert.True(scalarMul(D, alice.Secret).Equal(E))

	for _, optimized := range []bool{false, true} {
		assert.ErrorIs(NewTransferVerifier(params, optimized).Verify(tp, acct.Balance, acct.Nonce), ErrProofRejected)
	}
	_, err = applyTransfer(l, tp)
	assert.ErrorIs(err, ErrProofRejected)

	_, err = l.Account(bob.Public)
	assert.ErrorIs(err, ErrUnknownAccount)
	assert.Equal(uint64(10), decryptAccount(t, l, alice, 255))
	assert.Equal(uint64(0), vault.Released(testReceiver))

	_, err = ProveTransfer(params, alice, acct.Balance, 10, acct.Nonce, []Payment{{Receiver: bob.Public, Amount: 40}})
	assert.ErrorIs(err, ErrInvalidAmount)
}

func TestLedgerBurnCommitFailure(t *testing.T) {
	assert := assert.New(t)

	params, err := NewParams(8, 2)
	require.Nil(t, err)
	db := &flakyDB{KeyValueStore: memorydb.New()}
	sink := new(mockSink)
	l := NewLedger(params, db, sink)
	alice := NewKeyPair(params)
	_, err = l.Deposit(alice.Public, 30)
	require.Nil(t, err)
	before, err := l.Account(alice.Public)
	require.Nil(t, err)

	proof := proveLedgerBurn(t, l, alice, 30)
	db.fail = true
	_, err = applyBurn(l, proof)
	assert.NotNil(err)
	sink.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
	acct, err := l.Account(alice.Public)
	assert.Nil(err)
	assert.True(acct.Balance.Equal(before.Balance))
	assert.Equal(before.Nonce, acct.Nonce)

	db.fail = false
	sink.On("Release", testReceiver, uint64(30)).Return(nil).Once()
	_, err = applyBurn(l, proof)
	assert.Nil(err)
	sink.AssertExpectations(t)
	assert.Equal(uint64(0), decryptAccount(t, l, alice, 255))
}

func TestLedgerDepositBound(t *testing.T) {
	assert := assert.New(t)

	params, err := NewParams(4, 2)
	require.Nil(t, err)
	assert.Equal(uint64(15), params.MaxValue())
	l := NewLedger(params, nil, nil)
	alice, bob := NewKeyPair(params), NewKeyPair(params)

	_, err = l.Deposit(alice.Public, 15)
	assert.Nil(err)
	_, err = l.Deposit(alice.Public, 1)
	assert.ErrorIs(err, ErrInvalidAmount)
	acct, err := l.Account(alice.Public)
	assert.Nil(err)
	assert.Equal(uint64(15), acct.Plain)
	assert.Equal(uint64(1), acct.Nonce)

	_, err = l.Deposit(alice.Public, 15)
	assert.ErrorIs(err, ErrInvalidAmount)

	_, err = applyBurn(l, proveLedgerBurn(t, l, alice, 15))
	assert.Nil(err)
	acct, err = l.Account(alice.Public)
	assert.Nil(err)
	assert.Equal(uint64(0), acct.Plain)
	assert.False(acct.Hidden)
	_, err = l.Deposit(alice.Public, 9)
	assert.Nil(err)

	_, err = applyTransfer(l, proveLedgerTransfer(t, l, alice, 9, Payment{Receiver: bob.Public, Amount: 4}))
	assert.Nil(err)
	for _, kp := range []*KeyPair{alice, bob} {
		acct, err = l.Account(kp.Public)
		assert.Nil(err)
		assert.True(acct.Hidden)
	}
	assert.Equal(uint64(5), decryptAccount(t, l, alice, 15))
}
