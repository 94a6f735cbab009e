package cpu

import (
	"iter"
	"strings"
)

// Opcode is a line of assembled code with its source location and the
// instruction it generated.
type Opcode struct {
	LineNo int      // Source line, 1-based. 0 for disassembled code.
	Offset int      // Byte offset of the instruction in the binary.
	Words  []string // Source words.
	Code   Code     // Generated instruction.
}

// Program is an assembled instruction stream.
type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int // Instruction index in the program.
}

// Debug finds the opcode that starts at, or contains, the byte offset.
func (prog *Program) Debug(offset int) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if offset >= op.Offset && offset < op.Offset+op.Code.Size() {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  n,
			}
			break
		}
	}

	return
}

// Size returns the size of the encoded program in bytes.
func (prog *Program) Size() (size int) {
	for _, op := range prog.Opcodes {
		size += op.Code.Size()
	}
	return
}

// Binary encodes the program in the canonical format.
func (prog *Program) Binary() (data []byte) {
	data = make([]byte, 0, prog.Size())
	for _, code := range prog.Codes() {
		var err error
		data, err = code.AppendBinary(data)
		if err != nil {
			// Opcodes only hold codes accepted by AppendBinary.
			panic(err)
		}
	}

	return
}

// Codes iterates over the instructions, keyed by byte offset.
func (prog *Program) Codes() iter.Seq2[int, Code] {
	return func(yield func(offset int, code Code) bool) {
		for _, op := range prog.Opcodes {
			if !yield(op.Offset, op.Code) {
				return
			}
		}
	}
}

// Disassemble decodes a binary into a program. On a decode error the
// program holds every instruction before the fault.
func Disassemble(data []byte) (prog *Program, err error) {
	prog = &Program{}

	for offset := 0; offset < len(data); {
		var code Code
		var size int
		code, size, err = DecodeCode(data[offset:])
		if err != nil {
			err = &ErrDecode{Offset: offset, Err: err}
			return
		}
		prog.Opcodes = append(prog.Opcodes, Opcode{
			Offset: offset,
			Words:  strings.Fields(code.String()),
			Code:   code,
		})
		offset += size
	}

	return
}
