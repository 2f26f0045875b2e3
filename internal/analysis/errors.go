package analysis

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes analysis errors. Codes double as the identifiers the
// executor reports for failed units.
type ErrorCode string

const (
	// ErrCodeUnsupportedPass indicates a pass number other than 1 or 2.
	ErrCodeUnsupportedPass ErrorCode = "UNSUPPORTED_PASS"

	// ErrCodeResetFailed indicates the subject's Reset hook failed.
	ErrCodeResetFailed ErrorCode = "RESET_FAILED"

	// ErrCodeUpstreamAborted indicates a reentrancy phase gave up because the
	// phase it depends on stopped before producing the awaited element.
	ErrCodeUpstreamAborted ErrorCode = "UPSTREAM_ABORTED"

	// ErrCodeUnimplemented indicates a subject operation was never supplied.
	ErrCodeUnimplemented ErrorCode = "UNIMPLEMENTED_OPERATION"
)

// ErrUnimplemented matches every unimplemented-operation error with errors.Is.
var ErrUnimplemented = errors.New("operation not implemented")

// Error is an orchestration failure of an analysis run.
type Error struct {
	Code    ErrorCode
	Message string

	// Op is the operation being driven, when relevant.
	Op string
	// Pass is the pass number, 0 when not relevant.
	Pass int

	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Op != "" && e.Pass != 0 {
		msg = fmt.Sprintf("%s (op=%s, pass=%d)", msg, e.Op, e.Pass)
	} else if e.Op != "" {
		msg = fmt.Sprintf("%s (op=%s)", msg, e.Op)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorID reports the code as the executor identifier.
func (e *Error) ErrorID() string { return string(e.Code) }

// OperationError is returned by UnimplementedSubject.
type OperationError struct {
	Op OperationKind
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: to test %s operations the subject must implement %s",
		ErrCodeUnimplemented, e.Op, e.Op.label())
}

func (e *OperationError) Is(target error) bool { return target == ErrUnimplemented }

// ErrorID implements splitrun.Identifier.
func (e *OperationError) ErrorID() string { return string(ErrCodeUnimplemented) }

func newUnimplementedError(op OperationKind) error {
	return &OperationError{Op: op}
}

func newUnsupportedPassError(op OperationKind, pass int) *Error {
	return &Error{
		Code:    ErrCodeUnsupportedPass,
		Message: fmt.Sprintf("analysis is not prepared for pass #%d", pass),
		Op:      op.String(),
		Pass:    pass,
	}
}

func newResetError(occasion ResetOccasion, err error) *Error {
	return &Error{
		Code:    ErrCodeResetFailed,
		Message: fmt.Sprintf("subject reset failed on %s", occasion),
		Err:     err,
	}
}

func newUpstreamAbortedError(op, upstream OperationKind, index uint) *Error {
	return &Error{
		Code:    ErrCodeUpstreamAborted,
		Message: fmt.Sprintf("%s phase stopped before producing element %d", upstream, index),
		Op:      op.String(),
	}
}

// IsCode reports whether err carries an analysis error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	var oe *OperationError
	if errors.As(err, &oe) {
		return code == ErrCodeUnimplemented
	}
	return false
}
