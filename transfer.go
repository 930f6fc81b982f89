package pgc

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/gtank/merlin"
	"github.com/pkg/errors"
)

const (
	transferFixedPoints  = 11
	transferLegPoints    = 7
	transferFixedScalars = 8
	transferLegScalars   = 2
)

type Payment struct {
	Receiver *bn254.G1Affine
	Amount   uint64
}

// TransferLeg moves one hidden amount: (X1, Y) is debited from the sender
// and (X2, Y) credited to Receiver.
type TransferLeg struct {
	Receiver *bn254.G1Affine
	X1, X2   *bn254.G1Affine
	Y        *bn254.G1Affine
	Validity *ValidityProof
}

func (l *TransferLeg) Debit() *Ciphertext {
	return &Ciphertext{X: l.X1, Y: l.Y}
}

func (l *TransferLeg) Credit() *Ciphertext {
	return &Ciphertext{X: l.X2, Y: l.Y}
}

// TransferProof moves value from Sender to every leg receiver. Refresh is
// a fresh encryption of the remaining sender balance, RefreshValidity shows
// it is well formed, Equality links it to the balance minus the debits and
// Range bounds every leg and the remainder.
type TransferProof struct {
	Sender          *bn254.G1Affine
	Legs            []*TransferLeg
	Refresh         *Ciphertext
	RefreshValidity *RefreshProof
	Equality        *EqualityProof
	Range           *RangeProof
}

func (tp *TransferProof) Debit() *Ciphertext {
	debit := ZeroCiphertext()
	for _, l := range tp.Legs {
		debit = debit.Add(l.Debit())
	}
	return debit
}

// Encode lays the proof out as the points, scalars and L/R arrays of the
// ledger entry point.
func (tp *TransferProof) Encode() ([]*bn254.G1Affine, []*fr.Element, []*bn254.G1Affine) {
	points := []*bn254.G1Affine{tp.Sender}
	var scalars []*fr.Element
	for _, l := range tp.Legs {
		points = append(points, l.Receiver, l.X1, l.X2, l.Y, l.Validity.A1, l.Validity.A2, l.Validity.B)
		scalars = append(scalars, l.Validity.Zr, l.Validity.Zv)
	}
	points = append(points, tp.Refresh.X, tp.Refresh.Y, tp.RefreshValidity.A, tp.RefreshValidity.B)
	points = append(points, tp.Equality.A, tp.Equality.B)
	points = append(points, tp.Range.A, tp.Range.S, tp.Range.T1, tp.Range.T2)
	scalars = append(scalars, tp.RefreshValidity.Zs, tp.RefreshValidity.Zm)
	scalars = append(scalars, tp.Equality.Z, tp.Range.TX, tp.Range.TXBlinding, tp.Range.EBlinding)
	scalars = append(scalars, tp.Range.IPPProof.A, tp.Range.IPPProof.B)
	lr := append(append([]*bn254.G1Affine{}, tp.Range.IPPProof.LVec...), tp.Range.IPPProof.RVec...)
	return points, scalars, lr
}

func DecodeTransferProof(points []*bn254.G1Affine, scalars []*fr.Element, lr []*bn254.G1Affine) (*TransferProof, error) {
	if len(points) < transferFixedPoints+transferLegPoints || (len(points)-transferFixedPoints)%transferLegPoints != 0 {
		return nil, malformed("DecodeTransferProof points %d", len(points))
	}
	k := (len(points) - transferFixedPoints) / transferLegPoints
	if len(scalars) != transferFixedScalars+transferLegScalars*k {
		return nil, malformed("DecodeTransferProof scalars %d for %d legs", len(scalars), k)
	}
	if len(lr)%2 != 0 {
		return nil, malformed("DecodeTransferProof lr %d", len(lr))
	}
	for i := range points {
		if points[i] == nil {
			return nil, malformed("DecodeTransferProof missing point %d", i)
		}
	}
	for i := range scalars {
		if scalars[i] == nil {
			return nil, malformed("DecodeTransferProof missing scalar %d", i)
		}
	}

	tp := &TransferProof{Sender: points[0]}
	for j := 0; j < k; j++ {
		p := points[1+j*transferLegPoints:]
		tp.Legs = append(tp.Legs, &TransferLeg{
			Receiver: p[0],
			X1:       p[1],
			X2:       p[2],
			Y:        p[3],
			Validity: &ValidityProof{
				A1: p[4],
				A2: p[5],
				B:  p[6],
				Zr: scalars[2*j],
				Zv: scalars[2*j+1],
			},
		})
	}
	p := points[1+k*transferLegPoints:]
	s := scalars[transferLegScalars*k:]
	half := len(lr) / 2
	tp.Refresh = &Ciphertext{X: p[0], Y: p[1]}
	tp.RefreshValidity = &RefreshProof{A: p[2], B: p[3], Zs: s[0], Zm: s[1]}
	tp.Equality = &EqualityProof{A: p[4], B: p[5], Z: s[2]}
	tp.Range = &RangeProof{
		A:          p[6],
		S:          p[7],
		T1:         p[8],
		T2:         p[9],
		TX:         s[3],
		TXBlinding: s[4],
		EBlinding:  s[5],
		IPPProof: &InnerProductProof{
			LVec: lr[:half],
			RVec: lr[half:],
			A:    s[6],
			B:    s[7],
		},
	}
	return tp, nil
}

// Flatten produces the JSON form with every point as X, Y coordinates.
func (tp *TransferProof) Flatten() *TransferTx {
	points, scalars, lr := tp.Encode()
	return &TransferTx{
		Points:  FlattenPoints(points),
		Scalars: ScalarsToBig(scalars),
		Lr:      FlattenPoints(lr),
	}
}

func (tx *TransferTx) Decode() ([]*bn254.G1Affine, []*fr.Element, []*bn254.G1Affine, error) {
	points, err := DecodePoints(tx.Points)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "points")
	}
	scalars, err := DecodeScalars(tx.Scalars)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "scalars")
	}
	lr, err := DecodePoints(tx.Lr)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "lr")
	}
	return points, scalars, lr, nil
}

func transferTranscript(nonce uint64, sender *bn254.G1Affine, balance *Ciphertext, legs []*TransferLeg, refresh *Ciphertext) *merlin.Transcript {
	t := InitialTranscript(TRANSFER_DOMAIN_TAG)
	appendInt64("nonce", nonce, t)
	AppendPoint("sender", sender, t)
	AppendPoint("balance.X", balance.X, t)
	AppendPoint("balance.Y", balance.Y, t)
	appendInt64("legs", uint64(len(legs)), t)
	for _, l := range legs {
		AppendPoint("receiver", l.Receiver, t)
		AppendPoint("X1", l.X1, t)
		AppendPoint("X2", l.X2, t)
		AppendPoint("Y", l.Y, t)
	}
	AppendPoint("refresh.X", refresh.X, t)
	AppendPoint("refresh.Y", refresh.Y, t)
	return t
}

func rangeCommitments(tp *TransferProof) []*bn254.G1Affine {
	commitments := make([]*bn254.G1Affine, 0, len(tp.Legs)+1)
	for _, l := range tp.Legs {
		commitments = append(commitments, l.Y)
	}
	commitments = append(commitments, tp.Refresh.Y)
	return resizePointToPow2(commitments)
}

// ProveTransfer builds a transfer of every payment out of a balance the
// sender can open to balanceValue.
func ProveTransfer(params *Params, sender *KeyPair, balance *Ciphertext, balanceValue, nonce uint64, payments []Payment) (*TransferProof, error) {
	if len(payments) < 1 || len(payments) > params.MaxLegs() {
		return nil, errors.Wrapf(ErrMalformedInput, "ProveTransfer legs %d", len(payments))
	}
	limit := uint64(1) << uint(params.bitsize)
	if params.bitsize == 64 {
		limit = 0
	}
	remaining := balanceValue
	for _, p := range payments {
		if p.Receiver == nil || p.Receiver.Equal(sender.Public) {
			return nil, errors.Wrap(ErrMalformedInput, "ProveTransfer receiver")
		}
		if p.Amount > remaining || (limit != 0 && p.Amount >= limit) {
			return nil, errors.Wrapf(ErrInvalidAmount, "ProveTransfer amount %d", p.Amount)
		}
		remaining -= p.Amount
	}
	if limit != 0 && remaining >= limit {
		return nil, errors.Wrapf(ErrInvalidAmount, "ProveTransfer remaining %d", remaining)
	}

	tp := &TransferProof{Sender: clonePoint(sender.Public)}
	values := make([]uint64, 0, len(payments)+1)
	blindings := make([]*fr.Element, 0, len(payments)+1)
	for _, p := range payments {
		r := randomScalar()
		tp.Legs = append(tp.Legs, &TransferLeg{
			Receiver: clonePoint(p.Receiver),
			X1:       scalarMul(sender.Public, r),
			X2:       scalarMul(p.Receiver, r),
			Y:        params.pc.Commit(uint64ToScalar(p.Amount), r),
		})
		values = append(values, p.Amount)
		blindings = append(blindings, r)
	}
	s := randomScalar()
	tp.Refresh = Encrypt(params, sender.Public, remaining, s)
	values = append(values, remaining)
	blindings = append(blindings, s)

	transcript := transferTranscript(nonce, tp.Sender, balance, tp.Legs, tp.Refresh)
	nonces := make([]*validityNonce, len(tp.Legs))
	for i, l := range tp.Legs {
		l.Validity, nonces[i] = commitValidity(params, tp.Sender, l.Receiver)
		l.Validity.appendTo(transcript)
	}
	var refreshNonce *validityNonce
	tp.RefreshValidity, refreshNonce = commitRefresh(params, tp.Sender)
	tp.RefreshValidity.appendTo(transcript)
	remainder := balance.Sub(tp.Debit())
	D := subPoint(remainder.Y, tp.Refresh.Y)
	var k *fr.Element
	tp.Equality, k = commitEquality(params.pc.BBlinding, D)
	tp.Equality.appendTo("refresh", transcript)

	e := ChallengeScalar("e", transcript)
	for i, l := range tp.Legs {
		l.Validity.respond(e, blindings[i], uint64ToScalar(values[i]), nonces[i])
	}
	tp.RefreshValidity.respond(e, s, uint64ToScalar(remaining), refreshNonce)
	tp.Equality.respond(e, sender.Secret, k)

	rp, _, err := ProveMultiple(params.bp, params.pc, transcript, resizeUint64ToPow2(values), resizeScalarToPow2(blindings), params.bitsize)
	if err != nil {
		return nil, err
	}
	tp.Range = rp
	return tp, nil
}

type TransferVerifier struct {
	params    *Params
	optimized bool
}

func NewTransferVerifier(params *Params, optimized bool) *TransferVerifier {
	return &TransferVerifier{params: params, optimized: optimized}
}

// Verify checks the proof against the sender balance and nonce held by the
// ledger. Malformed proofs return ErrMalformedInput, failing ones
// ErrProofRejected.
func (v *TransferVerifier) Verify(tp *TransferProof, balance *Ciphertext, nonce uint64) error {
	params := v.params
	if len(tp.Legs) < 1 || len(tp.Legs) > params.MaxLegs() {
		return malformed("TransferVerifier legs %d", len(tp.Legs))
	}
	if tp.Sender.IsInfinity() {
		return malformed("TransferVerifier identity sender")
	}
	for i, l := range tp.Legs {
		if l.Receiver.IsInfinity() || l.Receiver.Equal(tp.Sender) {
			return malformed("TransferVerifier receiver %d", i)
		}
	}

	transcript := transferTranscript(nonce, tp.Sender, balance, tp.Legs, tp.Refresh)
	for _, l := range tp.Legs {
		l.Validity.appendTo(transcript)
	}
	tp.RefreshValidity.appendTo(transcript)
	tp.Equality.appendTo("refresh", transcript)
	e := ChallengeScalar("e", transcript)
	if e.IsZero() {
		return rejected("TransferVerifier zero challenge")
	}

	for i, l := range tp.Legs {
		if !l.Validity.verify(params, e, tp.Sender, l.Receiver, l.X1, l.X2, l.Y) {
			return rejected("TransferVerifier validity %d", i)
		}
	}

	if !tp.RefreshValidity.verify(params, e, tp.Sender, tp.Refresh) {
		return rejected("TransferVerifier refresh validity")
	}

	// With both sides well formed under pk1, E = sk*D holds only when the
	// remainder and the refresh encrypt the same value.
	remainder := balance.Sub(tp.Debit())
	D := subPoint(remainder.Y, tp.Refresh.Y)
	E := subPoint(remainder.X, tp.Refresh.X)
	if !tp.Equality.verify(e, params.pc.BBlinding, tp.Sender, D, E) {
		return rejected("TransferVerifier refresh")
	}

	return VerifyRangeProof(params.bp, params.pc, transcript, rangeCommitments(tp), params.bitsize, tp.Range, v.optimized)
}
