package util

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure a stage can raise. All of them are fatal.
type ErrorKind int

const (
	SyntaxError   ErrorKind = iota // lexical or structural
	SemanticError                  // undefined identifier, invalid segment
	EncodingError                  // value outside a closed table
	NamingError                    // bad extension, lowercase file name, empty input
)

func (k ErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case SemanticError:
		return "SemanticError"
	case EncodingError:
		return "EncodingError"
	case NamingError:
		return "NamingError"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

var (
	ErrUnexpectedToken     = errors.New("unexpected token")
	ErrTokenMismatch       = errors.New("invalid token type")
	ErrUndefinedIdentifier = errors.New("undefined identifier")
	ErrInvalidCommand      = errors.New("invalid command")
	ErrInvalidSegment      = errors.New("invalid segment")
	ErrInvalidInstruction  = errors.New("invalid instruction")
	ErrOutOfRange          = errors.New("value out of range")
	ErrDuplicateLabel      = errors.New("duplicate label")
	ErrBadFileName         = errors.New("bad file name")
	ErrEmptyInput          = errors.New("empty input")
)

// Error is the single error type returned by the compiler, the translator and the assembler.
// Err holds one of the sentinels above so callers can match with errors.Is.
type Error struct {
	Kind  ErrorKind
	Stage string
	File  string
	Line  int
	Near  string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	where := ""
	if e.File != "" {
		where = " in " + e.File
	}
	if e.Line > 0 {
		where += fmt.Sprintf(" at line %d", e.Line)
	}
	near := ""
	if e.Near != "" {
		near = fmt.Sprintf(" near %q", e.Near)
	}
	msg := e.Err.Error()
	if e.Msg != "" {
		msg = msg + ": " + e.Msg
	}
	return fmt.Sprintf("%s: %s%s%s, msg: %s", e.Stage, e.Kind, near, where, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, stage string, sentinel error, line int, near, format string, args ...interface{}) *Error {
	return &Error{
		Kind:  kind,
		Stage: stage,
		Line:  line,
		Near:  near,
		Msg:   fmt.Sprintf(format, args...),
		Err:   sentinel,
	}
}

// WithFile attaches the file name to err when it is an *Error without one.
func WithFile(err error, file string) error {
	var e *Error
	if errors.As(err, &e) && e.File == "" {
		e.File = file
	}
	return err
}

// KindOf returns the kind of err, and false if err was not raised by a stage.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}
	return e.Kind, true
}
