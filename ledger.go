package pgc

import (
	"encoding/hex"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type DepositRecord struct {
	Account string
	Amount  uint64
	Nonce   uint64
}

type TransferRecord struct {
	Sender    string
	Receivers []string
	Digest    string
	Nonce     uint64
}

type BurnRecord struct {
	Account  string
	Receiver common.Address
	Amount   uint64
	Digest   string
	Nonce    uint64
}

// Ledger holds one encrypted balance per public key. Every operation
// verifies first and stages its writes in a single batch, so a failed
// operation changes nothing.
type Ledger struct {
	mu        sync.Mutex
	params    *Params
	db        ethdb.KeyValueStore
	sink      ValueSink
	optimized bool
	verifier  *TransferVerifier
	logger    *zap.Logger
}

type Option func(*Ledger)

func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// WithOptimizedVerifier selects the single multi-exponentiation inner
// product check for range proofs.
func WithOptimizedVerifier(optimized bool) Option {
	return func(l *Ledger) {
		l.optimized = optimized
	}
}

func NewLedger(params *Params, db ethdb.KeyValueStore, sink ValueSink, opts ...Option) *Ledger {
	if db == nil {
		db = memorydb.New()
	}
	if sink == nil {
		sink = NewMemoryVault()
	}
	l := &Ledger{
		params:    params,
		db:        db,
		sink:      sink,
		optimized: true,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.verifier = NewTransferVerifier(params, l.optimized)
	return l
}

func (l *Ledger) Params() *Params {
	return l.params
}

func (l *Ledger) Account(pk *bn254.G1Affine) (*Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readAccount(pk)
}

func (l *Ledger) readAccount(pk *bn254.G1Affine) (*Account, error) {
	a, err := ReadAccount(l.db, pk)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, errors.Wrapf(ErrUnknownAccount, "account %s", AccountCode(pk))
	}
	return a, nil
}

func (l *Ledger) checkPublic(pk *bn254.G1Affine) error {
	if pk == nil || pk.IsInfinity() || !pk.IsOnCurve() {
		return malformed("invalid public key")
	}
	return nil
}

// Deposit credits a publicly known amount, creating the account on first use.
func (l *Ledger) Deposit(pk *bn254.G1Affine, amount uint64) (*DepositRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkPublic(pk); err != nil {
		return nil, err
	}
	limit := l.params.MaxValue()
	if amount == 0 || amount > limit {
		return nil, errors.Wrapf(ErrInvalidAmount, "Deposit amount %d", amount)
	}

	a, err := ReadAccount(l.db, pk)
	if err != nil {
		return nil, err
	}
	if a == nil {
		a = &Account{Public: clonePoint(pk), Balance: ZeroCiphertext()}
	}
	if !a.Hidden {
		if a.Plain > limit-amount {
			return nil, errors.Wrapf(ErrInvalidAmount, "Deposit balance %d + %d over %d", a.Plain, amount, limit)
		}
		a.Plain += amount
	}
	a.Balance = a.Balance.Add(EncryptZeroBlinding(l.params, amount))
	a.Nonce++

	batch := l.db.NewBatch()
	if err := WriteAccount(batch, a); err != nil {
		return nil, err
	}
	if err := batch.Write(); err != nil {
		return nil, errors.Wrap(err, "Deposit commit")
	}

	rec := &DepositRecord{Account: a.Code(), Amount: amount, Nonce: a.Nonce}
	l.logger.Info("deposit",
		zap.String("account", rec.Account),
		zap.Uint64("amount", amount),
		zap.Uint64("nonce", rec.Nonce),
	)
	return rec, nil
}

// AggregatedTransfer applies a transfer laid out as by TransferProof.Encode.
func (l *Ledger) AggregatedTransfer(points []*bn254.G1Affine, scalars []*fr.Element, lrProof []*bn254.G1Affine) (*TransferRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, err := l.transfer(points, scalars, lrProof)
	if err != nil {
		l.logger.Warn("transfer rejected", zap.Error(err))
		return nil, err
	}
	l.logger.Info("transfer",
		zap.String("sender", rec.Sender),
		zap.Strings("receivers", rec.Receivers),
		zap.String("digest", rec.Digest),
		zap.Uint64("nonce", rec.Nonce),
	)
	return rec, nil
}

func (l *Ledger) transfer(points []*bn254.G1Affine, scalars []*fr.Element, lrProof []*bn254.G1Affine) (*TransferRecord, error) {
	tp, err := DecodeTransferProof(points, scalars, lrProof)
	if err != nil {
		return nil, err
	}
	if err := l.checkPublic(tp.Sender); err != nil {
		return nil, err
	}
	sender, err := l.readAccount(tp.Sender)
	if err != nil {
		return nil, err
	}

	staged := newStagedAccounts()
	staged.put(sender)
	for _, leg := range tp.Legs {
		if err := l.checkPublic(leg.Receiver); err != nil {
			return nil, err
		}
		if staged.get(leg.Receiver) != nil {
			continue
		}
		a, err := ReadAccount(l.db, leg.Receiver)
		if err != nil {
			return nil, err
		}
		if a == nil {
			a = &Account{Public: clonePoint(leg.Receiver), Balance: ZeroCiphertext()}
		}
		staged.put(a)
	}

	encoded, err := tp.MarshalBinary()
	if err != nil {
		return nil, err
	}
	digest := ProofDigest("transfer", encoded)
	if HasConsumedProof(l.db, digest) {
		return nil, errors.Wrap(ErrReplay, "transfer already applied")
	}

	if err := l.verifier.Verify(tp, sender.Balance, sender.Nonce); err != nil {
		return nil, err
	}

	// Every leg credits the Y it debits, and the verifier tied the refresh
	// to the balance minus those debits, so value is conserved.
	for _, leg := range tp.Legs {
		receiver := staged.get(leg.Receiver)
		receiver.Balance = receiver.Balance.Add(leg.Credit())
		receiver.Hidden = true
	}
	sender.Balance = tp.Refresh.Clone()
	sender.Hidden = true

	batch := l.db.NewBatch()
	rec := &TransferRecord{Sender: sender.Code(), Digest: hex.EncodeToString(digest)}
	for _, a := range staged.list {
		a.Nonce++
		if err := WriteAccount(batch, a); err != nil {
			return nil, err
		}
	}
	for _, leg := range tp.Legs {
		rec.Receivers = append(rec.Receivers, AccountCode(leg.Receiver))
	}
	if err := WriteConsumedProof(batch, digest); err != nil {
		return nil, err
	}
	if err := batch.Write(); err != nil {
		return nil, errors.Wrap(err, "transfer commit")
	}
	rec.Nonce = sender.Nonce
	return rec, nil
}

// Burn releases amount to receiver after the sender opens its whole balance.
// points is [pk, X, Y, A1, A2] with (X, Y) the balance the proof opens.
func (l *Ledger) Burn(receiver common.Address, amount uint64, points []*bn254.G1Affine, z *fr.Element) (*BurnRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, err := l.burn(receiver, amount, points, z)
	if err != nil {
		l.logger.Warn("burn rejected", zap.String("receiver", receiver.Hex()), zap.Uint64("amount", amount), zap.Error(err))
		return nil, err
	}
	l.logger.Info("burn",
		zap.String("account", rec.Account),
		zap.String("receiver", receiver.Hex()),
		zap.Uint64("amount", amount),
		zap.String("digest", rec.Digest),
		zap.Uint64("nonce", rec.Nonce),
	)
	return rec, nil
}

func (l *Ledger) burn(receiver common.Address, amount uint64, points []*bn254.G1Affine, z *fr.Element) (*BurnRecord, error) {
	proof, err := DecodeBurnProof(receiver, amount, points, z)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, errors.Wrap(ErrInvalidAmount, "Burn zero amount")
	}
	if err := l.checkPublic(proof.Public); err != nil {
		return nil, err
	}
	a, err := l.readAccount(proof.Public)
	if err != nil {
		return nil, err
	}
	if !proof.Balance.Equal(a.Balance) {
		return nil, errors.Wrap(ErrReplay, "burn opens a stale balance")
	}

	encoded, err := proof.MarshalBinary()
	if err != nil {
		return nil, err
	}
	digest := ProofDigest("burn", encoded)
	if HasConsumedProof(l.db, digest) {
		return nil, errors.Wrap(ErrReplay, "burn already applied")
	}
	if err := VerifyBurn(l.params, proof, a.Nonce); err != nil {
		return nil, err
	}

	prev := &Account{Public: a.Public, Balance: a.Balance.Clone(), Nonce: a.Nonce, Plain: a.Plain, Hidden: a.Hidden}
	// the proof opens the whole balance, so it is now exactly zero
	a.Balance = a.Balance.Sub(EncryptZeroBlinding(l.params, amount))
	a.Nonce++
	a.Plain, a.Hidden = 0, false
	batch := l.db.NewBatch()
	if err := WriteAccount(batch, a); err != nil {
		return nil, err
	}
	if err := WriteConsumedProof(batch, digest); err != nil {
		return nil, err
	}
	if err := batch.Write(); err != nil {
		return nil, errors.Wrap(err, "burn commit")
	}
	if err := l.sink.Release(receiver, amount); err != nil {
		if rerr := l.revertBurn(prev, digest); rerr != nil {
			l.logger.Error("burn revert failed", zap.String("account", a.Code()), zap.Error(rerr))
			return nil, errors.Wrapf(err, "burn release, revert %v", rerr)
		}
		return nil, errors.Wrap(err, "burn release")
	}
	return &BurnRecord{
		Account:  a.Code(),
		Receiver: receiver,
		Amount:   amount,
		Digest:   hex.EncodeToString(digest),
		Nonce:    a.Nonce,
	}, nil
}

type stagedAccounts struct {
	byKey map[string]*Account
	list  []*Account
}

func newStagedAccounts() *stagedAccounts {
	return &stagedAccounts{byKey: make(map[string]*Account)}
}

func (s *stagedAccounts) get(pk *bn254.G1Affine) *Account {
	return s.byKey[string(accountKey(pk))]
}

func (s *stagedAccounts) put(a *Account) {
	s.byKey[string(accountKey(a.Public))] = a
	s.list = append(s.list, a)
}

// revertBurn restores the account and forgets the digest after the value
// sink refused a committed burn.
func (l *Ledger) revertBurn(prev *Account, digest []byte) error {
	batch := l.db.NewBatch()
	if err := WriteAccount(batch, prev); err != nil {
		return err
	}
	if err := DeleteConsumedProof(batch, digest); err != nil {
		return err
	}
	return batch.Write()
}
