package domain

import "errors"

// Kind is a stable category for programmatic error handling. Callers should
// branch on Kind rather than matching error strings.
type Kind string

const (
	KindConfig        Kind = "Config"
	KindIO            Kind = "IO"
	KindDecode        Kind = "Decode"
	KindFraming       Kind = "Framing"
	KindEncapsulation Kind = "Encapsulation"
	KindTransport     Kind = "Transport"
	KindInternal      Kind = "Internal"
)

var (
	ErrZeroConcurrency  = errors.New("concurrency must be at least 1")
	ErrNegativeRequests = errors.New("requests must not be negative")
	ErrEmptyKeyConfig   = errors.New("key configuration is empty")
)

// Error is the structured error type used across ohttpc.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Wrap attaches kind and op to err. A nil err stays nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// IsKind reports whether err is (or wraps) an *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the Kind of the outermost *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}
