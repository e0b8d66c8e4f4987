package passhash

import (
	"errors"
	"fmt"

	"github.com/shandysiswandi/passhash/internal/pkg/goerror"
)

var (
	// ErrRandomnessUnavailable means the secure random source failed while
	// generating a salt.
	ErrRandomnessUnavailable = errors.New("passhash: secure randomness unavailable")
	// ErrDerivationFailed means the key derivation primitive reported an error.
	ErrDerivationFailed = errors.New("passhash: key derivation failed")
	// ErrInvalidArgument means an input had the wrong shape or value.
	ErrInvalidArgument = errors.New("passhash: invalid argument")
	// ErrCanceled means the context ended while waiting for a derivation slot.
	ErrCanceled = errors.New("passhash: canceled")
)

func randomnessError(cause error) error {
	return goerror.NewServer(fmt.Errorf("%w: %w", ErrRandomnessUnavailable, cause), goerror.CodeRandomnessUnavailable)
}

func derivationError(cause error) error {
	return goerror.NewServer(fmt.Errorf("%w: %w", ErrDerivationFailed, cause), goerror.CodeDerivationFailed)
}

func canceledError(cause error) error {
	return goerror.NewCanceled(fmt.Errorf("%w: %w", ErrCanceled, cause))
}

func invalidArgument(format string, args ...any) error {
	return goerror.NewInvalidArgument(fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, args...)...))
}
