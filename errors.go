package pgc

import "github.com/pkg/errors"

var (
	// ErrMalformedInput is returned when an input has the wrong shape or encoding
	ErrMalformedInput = errors.New("malformed input")
	// ErrProofRejected is returned when a well formed proof does not verify
	ErrProofRejected = errors.New("proof rejected")
	// ErrReplay is returned for stale or already consumed proofs
	ErrReplay = errors.New("proof replay")
	// ErrUnknownAccount is returned when an account was never funded
	ErrUnknownAccount = errors.New("unknown account")
	// ErrInvalidAmount is returned for zero or out of range plaintext amounts
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrAmountNotFound is returned when a ciphertext does not decrypt below the search bound
	ErrAmountNotFound = errors.New("amount not found")
)

func malformed(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformedInput, format, args...)
}

func rejected(format string, args ...interface{}) error {
	return errors.Wrapf(ErrProofRejected, format, args...)
}
