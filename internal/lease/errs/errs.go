// Package errs defines the typed error kinds used across the lease state
// machine and operation driver (§7), shaped after the corpus's
// pkg/metadata/errors package: an ErrorCode enum plus a concrete error
// type carrying a code and the operation that failed, so callers can
// errors.Is/errors.As instead of matching strings.
package errs

import "fmt"

// Code identifies the kind of failure (§7).
type Code int

const (
	// InvalidParameters: caller-supplied ids, paths, or lease timings
	// fail validation. Fatal: panic before any I/O (§7).
	InvalidParameters Code = iota + 1

	// IO: a sector read or write returned an error.
	IO

	// DeadlineExceeded: an individual sector I/O took longer than
	// op_max_ms.
	DeadlineExceeded

	// Lost: the sector is held by a live, non-matching holder.
	Lost

	// NotHeld: our identity is not the one currently in the sector.
	NotHeld

	// Fatal: memory allocation failure, inability to install signal
	// handlers, or the renew self-fence firing.
	Fatal
)

func (c Code) String() string {
	switch c {
	case InvalidParameters:
		return "invalid-parameters"
	case IO:
		return "io-error"
	case DeadlineExceeded:
		return "deadline-exceeded"
	case Lost:
		return "lost"
	case NotHeld:
		return "not-held"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error is a lease operation error carrying a Code and the operation name.
type Error struct {
	Code Code
	Op   string
	Err  error // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Is supports errors.Is(err, SomeCode) by comparing codes, so callers can
// write errors.Is(err, errs.ErrLost) without constructing an *Error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New constructs an *Error for op with the given code and optional cause.
func New(op string, code Code, cause error) *Error {
	return &Error{Code: code, Op: op, Err: cause}
}

// sentinel errors for errors.Is comparisons by code alone, e.g.
// errors.Is(err, errs.ErrLost).
var (
	ErrInvalidParameters = &Error{Code: InvalidParameters}
	ErrIO                = &Error{Code: IO}
	ErrDeadlineExceeded  = &Error{Code: DeadlineExceeded}
	ErrLost              = &Error{Code: Lost}
	ErrNotHeld           = &Error{Code: NotHeld}
	ErrFatal             = &Error{Code: Fatal}
)
