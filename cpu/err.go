package cpu

import (
	"errors"

	"github.com/uvmtools/uvm/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrEndOfProgram  = errors.New(f("end of program"))
	ErrTruncated     = errors.New(f("truncated instruction"))
	ErrRegisterRange = errors.New(f("register index out of range"))
	ErrMemoryRange   = errors.New(f("memory index out of range"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrOpcodeValueMissing = errors.New(f("missing arguments"))
	ErrInstructionInvalid = errors.New(f("unknown instruction"))
)

// ErrOpcode is an opcode byte that is not in the ISA.
type ErrOpcode CodeOp

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%02x", uint8(eo))
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrIndex is an operand that names a register or memory cell that does
// not exist.
type ErrIndex struct {
	Operand string // Operand name, as in the build log.
	Index   int64  // Decoded index.
	Err     error  // ErrRegisterRange or ErrMemoryRange.
}

func (err ErrIndex) Error() string {
	return f("%v %v=%d", err.Err, err.Operand, err.Index)
}

func (err ErrIndex) Unwrap() error {
	return err.Err
}

// ErrOperandWidth is an operand value that does not fit its encoding.
type ErrOperandWidth struct {
	Operand string
	Value   int64
}

func (err ErrOperandWidth) Error() string {
	return f("%v value %d does not fit its encoding", err.Operand, err.Value)
}

// ErrSyntax locates an assembler error in the source.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

// Diagnostics collects the per-line errors of an assembly run.
type Diagnostics []*ErrSyntax

func (diags Diagnostics) Error() string {
	switch len(diags) {
	case 0:
		return f("no errors")
	case 1:
		return diags[0].Error()
	}
	return f("%v (and %d more errors)", diags[0].Error(), len(diags)-1)
}

func (diags Diagnostics) Unwrap() (errs []error) {
	for _, diag := range diags {
		errs = append(errs, diag)
	}
	return
}

// ErrParseNumber is an operand literal that is not a decimal integer.
type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("malformed operand '%v'", string(err))
}

// ErrParseExpression is a $(...) expression that did not evaluate to an
// integer.
type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrDecode locates a decode error in a binary.
type ErrDecode struct {
	Offset int
	Err    error
}

func (err *ErrDecode) Error() string {
	return f("offset 0x%04x %v", err.Offset, err.Err)
}

func (err *ErrDecode) Unwrap() error {
	return err.Err
}
