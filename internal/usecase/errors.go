package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/overmind/internal/domain/unitofwork"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrDecode              = errors.New("replay decode failed")
	ErrUnlabeled           = errors.New("no player names in path")
	ErrAmbiguousMatch      = errors.New("ambiguous participant match")
	ErrExternalService     = errors.New("external service unavailable")
	ErrPersistenceConflict = unitofwork.ErrConflict
	ErrPanic               = errors.New("import task panicked")
)

// Reason buckets an import error for summaries and structured logs.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrPanic):
		return "panic"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrUnlabeled):
		return "unlabeled"
	case errors.Is(err, ErrAmbiguousMatch):
		return "ambiguous_match"
	case errors.Is(err, ErrExternalService):
		return "external_service"
	case errors.Is(err, ErrPersistenceConflict):
		return "persistence_conflict"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal"
	}
}

func decodeError(err error, format string, args ...any) error {
	if err == nil {
		return errors.Mark(errors.Newf(format, args...), ErrDecode)
	}
	return errors.Mark(errors.Wrapf(err, format, args...), ErrDecode)
}
