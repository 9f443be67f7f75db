// Package mtyerr implements monty's error taxonomy. It is a
// leaf package (no dependency on values/registry/vm) so both the low-level
// value/registry layers and the interpreter loop can raise taxonomy errors
// without import cycles, the same way the teacher keeps vm/errors.go free of
// a dependency on the compiler.
package mtyerr

import "fmt"

// Kind names one of the error categories the engine raises.
type Kind string

const (
	TypeErrorKind         Kind = "TypeError"
	AttributeErrorKind     Kind = "AttributeError"
	ValueErrorKind         Kind = "ValueError"
	KeyErrorKind           Kind = "KeyError"
	IndexErrorKind         Kind = "IndexError"
	ZeroDivisionErrorKind  Kind = "ZeroDivisionError"
	NotImplementedErrorKind Kind = "NotImplementedError"
	RuntimeErrorKind       Kind = "RuntimeError"
	StateErrorKind         Kind = "StateError"
)

// PyError is a structured taxonomy error: a Kind plus the reference-Python
// message. It also doubles as the in-sandbox exception payload: Args is the
// exception's constructor argument tuple, which str(exc) and exc.args
// expose back to the script.
type PyError struct {
	Kind    Kind
	Message string
	Args    []interface{}
}

func (e *PyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New constructs a PyError with a single string argument, the common case.
func New(kind Kind, format string, a ...interface{}) *PyError {
	msg := fmt.Sprintf(format, a...)
	return &PyError{Kind: kind, Message: msg, Args: []interface{}{msg}}
}

func TypeErrorf(format string, a ...interface{}) *PyError {
	return New(TypeErrorKind, format, a...)
}

func AttributeErrorf(format string, a ...interface{}) *PyError {
	return New(AttributeErrorKind, format, a...)
}

func ValueErrorf(format string, a ...interface{}) *PyError {
	return New(ValueErrorKind, format, a...)
}

func KeyErrorf(format string, a ...interface{}) *PyError {
	return New(KeyErrorKind, format, a...)
}

func IndexErrorf(format string, a ...interface{}) *PyError {
	return New(IndexErrorKind, format, a...)
}

func ZeroDivisionErrorf(format string, a ...interface{}) *PyError {
	return New(ZeroDivisionErrorKind, format, a...)
}

func NotImplementedErrorf(format string, a ...interface{}) *PyError {
	return New(NotImplementedErrorKind, format, a...)
}

func RuntimeErrorf(format string, a ...interface{}) *PyError {
	return New(RuntimeErrorKind, format, a...)
}

// StateError reports resume()/start() misuse: a second resume() against the
// same Snapshot, or a second start(). It is kept distinct from PyError because it signals host-protocol misuse rather than
// a sandboxed-script exception, mirroring the teacher's ErrCallStackEmpty /
// ErrHaltedExecution host-level sentinels in vm/errors.go.
type StateError struct {
	Message string
}

func (e *StateError) Error() string { return fmt.Sprintf("StateError: %s", e.Message) }

func NewStateError(format string, a ...interface{}) *StateError {
	return &StateError{Message: fmt.Sprintf(format, a...)}
}

// MontyRuntimeError is the host-visible wrapper the interpreter raises when
// a script terminates with an unhandled exception; its string form is
// "<ExceptionName>: <message>".
type MontyRuntimeError struct {
	ExceptionName string
	Message       string
}

func (e *MontyRuntimeError) Error() string {
	return fmt.Sprintf("%s: %s", e.ExceptionName, e.Message)
}

func NewMontyRuntimeError(name, message string) *MontyRuntimeError {
	return &MontyRuntimeError{ExceptionName: name, Message: message}
}
