package dice

import "fmt"

// Span is a half-open byte range within an expression's source text.
type Span struct {
	Start, End int
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Start, s.End)
}

// ParseError is returned for malformed source: ill-formed tokens,
// unclosed groups, a bare identifier that is not a call, or a limit
// attached to the wrong modifier. An unknown function name in a call
// is a TypeError, raised at lowering. Grounded on the teacher's ErrParseError, widened
// from a notation/value/elem triple to a source span.
type ParseError struct {
	Span    Span
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Span, e.Message)
}

// TypeError is returned for an ill-typed expression: modifier misuse,
// an unknown function, or an arity mismatch.
type TypeError struct {
	Span    Span
	Message string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error at %s: %s", e.Span, e.Message)
}

// DesugarError is returned when `lst ** n` cannot be desugared because
// n does not fold to a constant, or folds to a non-positive value.
type DesugarError struct {
	Span    Span
	Message string
}

func (e *DesugarError) Error() string {
	return fmt.Sprintf("desugar error at %s: %s", e.Span, e.Message)
}

// DivisionByZeroError is a runtime error raised by /, //, or % with a
// zero divisor.
type DivisionByZeroError struct {
	Span Span
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("division by zero at %s", e.Span)
}

// EmptyReductionError is a runtime error raised by max/min over an
// empty list.
type EmptyReductionError struct {
	Span Span
	Func string
}

func (e *EmptyReductionError) Error() string {
	return fmt.Sprintf("%s of empty list at %s", e.Func, e.Span)
}

// LimitKind distinguishes which global budget a LimitExceededError
// breached.
type LimitKind int

// Budget kinds.
const (
	LimitRounds LimitKind = iota
	LimitDiceCount
)

func (k LimitKind) String() string {
	switch k {
	case LimitRounds:
		return "rounds"
	case LimitDiceCount:
		return "dice_count"
	default:
		return "unknown"
	}
}

// LimitExceededError is raised when recursion_limit or
// dice_count_limit is breached.
type LimitExceededError struct {
	Kind  LimitKind
	Limit uint
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("limit exceeded: %s (limit %d)", e.Kind, e.Limit)
}

// InternalError indicates a graph-evaluation deadlock: the runtime made
// no progress for a full round without the root settling. This should
// be unreachable from valid inputs; its presence indicates a bug in
// compilation, never in the expression itself.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return "internal error: " + e.Message
}
