package vm

import (
	"errors"
	"fmt"

	"github.com/Iansi36283/monty/mtyerr"
	"github.com/Iansi36283/monty/opcodes"
)

// InterpreterError decorates a raw taxonomy error (mtyerr.PyError) with the
// frame and instruction pointer it was raised at, mirroring the teacher's
// VMError{Type, Message, Frame, Opcode, IP} in vm/errors.go. Unlike the
// teacher's VMError, an InterpreterError wrapping a *mtyerr.PyError is
// catchable from inside the sandbox (it unwinds frames looking for a
// matching except clause) rather than always escaping to the host.
type InterpreterError struct {
	Err    error
	Frame  string
	Opcode opcodes.Opcode
	IP     int
}

func (e *InterpreterError) Error() string {
	return fmt.Sprintf("monty: %s (frame=%s ip=%d op=%s)", e.Err, e.Frame, e.IP, e.Opcode)
}

func (e *InterpreterError) Unwrap() error { return e.Err }

func (e *InterpreterError) Is(target error) bool { return errors.Is(e.Err, target) }

func decorate(frame *CallFrame, inst opcodes.Instruction, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*InterpreterError); ok {
		return err
	}
	name := "<module>"
	if frame != nil {
		name = frame.Name
	}
	return &InterpreterError{Err: err, Frame: name, Opcode: inst.Op, IP: frame.IP}
}

// AsPyError unwraps err looking for the sandboxed *mtyerr.PyError payload, so
// the interpreter's exception-handling instructions can match it against an
// `except` clause's type name.
func AsPyError(err error) (*mtyerr.PyError, bool) {
	var pe *mtyerr.PyError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
