package codec

import (
	"github.com/pkg/errors"
)

// Every codec failure wraps exactly one of these. None of them are
// transient: the input or the schema has to change.
var (
	ErrNumericOverflow = errors.New("numeric overflow")
	ErrArityMismatch   = errors.New("arity mismatch")
	ErrMissingField    = errors.New("missing field")
	ErrUnknownVariant  = errors.New("unknown variant")
	ErrSizeOverflow    = errors.New("size overflow")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrInvalidString   = errors.New("invalid utf-8 string")

	ErrTruncatedBuffer = errors.New("truncated buffer")
	ErrInvalidTag      = errors.New("invalid tag")
)

// wrapPath prefixes err with the location it occurred at, leaving the
// wrapped sentinel reachable through errors.Is.
func wrapPath(err error, segment string) error {
	if err == nil {
		return nil
	}
	return errors.WithMessage(err, segment)
}
