package forecast

import "fmt"

// ErrorKind classifies engine failures so callers can map them to transport
// codes or decide whether retrying with different parameters makes sense.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindInsufficientHistory
	KindComputation
)

// Error is a terminal engine failure. No retries happen inside the engine.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func validationErrorf(format string, a ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, a...)}
}

func insufficientHistoryErrorf(format string, a ...interface{}) *Error {
	return &Error{Kind: KindInsufficientHistory, Message: fmt.Sprintf(format, a...)}
}
