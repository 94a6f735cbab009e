package emulator

import (
	"errors"

	"github.com/uvmtools/uvm/translate"
)

var f = translate.From

var (
	ErrRangeInvalid = errors.New(f("invalid memory range"))
	ErrNotReset     = errors.New(f("emulator not reset"))
)

// ErrRange is an observation range that is empty, reversed or outside
// of memory.
type ErrRange string

func (err ErrRange) Error() string {
	return f("%v '%v'", ErrRangeInvalid, string(err))
}

func (err ErrRange) Unwrap() error {
	return ErrRangeInvalid
}

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int // Source line, or 0 if unknown.
	Index  int // Index of the faulting instruction.
	Offset int // Byte offset of the faulting instruction.
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo != 0 {
		return f("line %d instruction %d offset 0x%04x %v", err.LineNo, err.Index, err.Offset, err.Err)
	}
	return f("instruction %d offset 0x%04x %v", err.Index, err.Offset, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
