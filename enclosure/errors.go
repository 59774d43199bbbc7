package enclosure

import "fmt"

// ErrorCode classifies failures raised by the enclosure arithmetic.
type ErrorCode int

const (
	// CodeDivision is division by a (near-)zero scalar.
	CodeDivision ErrorCode = iota + 1
	// CodeInverseRange is a reciprocal over a range containing zero.
	CodeInverseRange
	// CodeLogRange is a logarithm over a nonpositive range.
	CodeLogRange
	// CodeSqrtRange is a square root over a negative range.
	CodeSqrtRange
	// CodeTangentRange is a tangent over a range crossing a pole.
	CodeTangentRange
	// CodeRootSearch is a failed envelope root search.
	CodeRootSearch
)

const (
	// CodeInternal is an inconsistency in the internal state.
	CodeInternal ErrorCode = -1 - iota
	// CodeIndex is a variable index outside the model range.
	CodeIndex
	// CodeModelMismatch is an operation mixing variables from
	// different models.
	CodeModelMismatch
)

// CodeUnimplemented marks an operation the arithmetic does not support
// in the requested configuration.
const CodeUnimplemented ErrorCode = -33

func (c ErrorCode) String() string {
	switch c {
	case CodeDivision:
		return "division"
	case CodeInverseRange:
		return "inverse-range"
	case CodeLogRange:
		return "log-range"
	case CodeSqrtRange:
		return "sqrt-range"
	case CodeTangentRange:
		return "tangent-range"
	case CodeRootSearch:
		return "root-search"
	case CodeInternal:
		return "internal"
	case CodeIndex:
		return "index"
	case CodeModelMismatch:
		return "model-mismatch"
	case CodeUnimplemented:
		return "unimplemented"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// Error is a typed arithmetic failure. Use errors.As to recover the code
// from wrapped errors.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Msg
}

// Is matches against another *Error by code, so
// errors.Is(err, &Error{Code: CodeIndex}) works on wrapped errors.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func errf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}
