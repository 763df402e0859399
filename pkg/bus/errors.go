package bus

import "fmt"

// ErrorKind enumerates the six error categories of the resolution substrate.
type ErrorKind int

const (
	// ErrDispatchFailure means no actor on a bus claimed a task.
	ErrDispatchFailure ErrorKind = iota
	// ErrSource means a data source (fetch, dereference, remote endpoint)
	// failed to produce data.
	ErrSource
	// ErrOperatorSemantic means an algebra node was given input it cannot
	// meaningfully evaluate (e.g. a path expression with no anchor term).
	ErrOperatorSemantic
	// ErrCardinality means a consumer received more or fewer bindings than
	// its contract allows. No built-in actor raises this kind; Ask, for
	// one, stops at the first binding.
	ErrCardinality
	// ErrCancellation wraps a context cancellation/deadline observed while
	// resolving.
	ErrCancellation
	// ErrInvariant means an internal invariant of the substrate itself was
	// violated; this always indicates a bug in sparqlflow, never bad input.
	ErrInvariant
)

func (k ErrorKind) String() string {
	switch k {
	case ErrDispatchFailure:
		return "dispatch-failure"
	case ErrSource:
		return "source"
	case ErrOperatorSemantic:
		return "operator-semantic"
	case ErrCardinality:
		return "cardinality"
	case ErrCancellation:
		return "cancellation"
	case ErrInvariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// Error is the single error carrier used across the substrate. It tags a
// cause with one of the six ErrorKinds so that propagation policy (§7) can
// be applied uniformly regardless of which actor raised it.
type Error struct {
	Kind  ErrorKind
	Msg   string
	Cause error
}

// NewError constructs an Error. cause may be nil.
func NewError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind ErrorKind) bool {
	be, ok := err.(*Error)
	if !ok {
		return false
	}
	return be.Kind == kind
}
