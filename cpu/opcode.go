package cpu

import (
	"encoding/binary"
	"fmt"
	"iter"
	"math"
	"strings"
)

// CodeOp is an opcode byte.
type CodeOp byte

const (
	OP_LOAD_CONST = CodeOp(0x01) // LOAD_CONST
	OP_LOAD_MEM   = CodeOp(0x02) // LOAD_MEM
	OP_STORE_MEM  = CodeOp(0x03) // STORE_MEM
	OP_GE         = CodeOp(0x04) // GE_OP
	OP_ADD        = CodeOp(0x05) // ADD_OP
	OP_SUB        = CodeOp(0x06) // SUB_OP
)

// CodeKind is the semantic type of an operand.
type CodeKind int

const (
	KIND_CONSTANT = CodeKind(0) // constant
	KIND_ADDRESS  = CodeKind(1) // address
	KIND_REGISTER = CodeKind(2) // register
)

// Width returns the encoded size of the operand kind, in bytes.
func (kind CodeKind) Width() int {
	switch kind {
	case KIND_CONSTANT, KIND_ADDRESS:
		return 4
	case KIND_REGISTER:
		return 1
	}
	panic("unknown operand kind")
}

// Fits returns true if value can be encoded at the kind's width.
// Constants are signed 32-bit, addresses accept either a signed or
// unsigned 32-bit value, registers a signed or unsigned byte.
func (kind CodeKind) Fits(value int64) bool {
	switch kind {
	case KIND_CONSTANT:
		return value >= math.MinInt32 && value <= math.MaxInt32
	case KIND_ADDRESS:
		return value >= math.MinInt32 && value <= math.MaxUint32
	case KIND_REGISTER:
		return value >= math.MinInt8 && value <= math.MaxUint8
	}
	return false
}

// String returns the name of the kind.
func (kind CodeKind) String() string {
	switch kind {
	case KIND_CONSTANT:
		return "constant"
	case KIND_ADDRESS:
		return "address"
	case KIND_REGISTER:
		return "register"
	}
	return fmt.Sprintf("CodeKind(%d)", int(kind))
}

// Operand is a named operand slot of an instruction.
type Operand struct {
	Name string   // Name used in the build log.
	Kind CodeKind // Semantic type, which fixes the encoded width.
}

// Definition describes one instruction of the ISA.
type Definition struct {
	Mnemonic string
	Op       CodeOp
	Operands []Operand
}

// Size returns the encoded size of the instruction, opcode byte included.
func (def *Definition) Size() (size int) {
	size = 1
	for _, operand := range def.Operands {
		size += operand.Kind.Width()
	}
	return
}

// isa is the opcode table. Both the assembler and the cpu decode
// through it.
var isa = [...]Definition{
	{"LOAD_CONST", OP_LOAD_CONST, []Operand{{"constant", KIND_CONSTANT}, {"register", KIND_REGISTER}}},
	{"LOAD_MEM", OP_LOAD_MEM, []Operand{{"address", KIND_ADDRESS}, {"register", KIND_REGISTER}}},
	{"STORE_MEM", OP_STORE_MEM, []Operand{{"register", KIND_REGISTER}, {"address", KIND_ADDRESS}}},
	{"GE_OP", OP_GE, []Operand{{"reg_a", KIND_REGISTER}, {"reg_b", KIND_REGISTER}, {"reg_result", KIND_REGISTER}}},
	{"ADD_OP", OP_ADD, []Operand{{"reg_a", KIND_REGISTER}, {"reg_b", KIND_REGISTER}, {"reg_result", KIND_REGISTER}}},
	{"SUB_OP", OP_SUB, []Operand{{"reg_a", KIND_REGISTER}, {"reg_b", KIND_REGISTER}, {"reg_result", KIND_REGISTER}}},
}

var (
	mnemonicMap = map[string]*Definition{}
	opMap       [256]*Definition
)

func init() {
	for n := range isa {
		def := &isa[n]
		mnemonicMap[def.Mnemonic] = def
		opMap[def.Op] = def
	}
}

// Lookup finds the definition of a mnemonic. Mnemonics are case-sensitive.
func Lookup(mnemonic string) (def *Definition, ok bool) {
	def, ok = mnemonicMap[mnemonic]
	return
}

// Definitions iterates over the ISA in opcode order.
func Definitions() iter.Seq[*Definition] {
	return func(yield func(def *Definition) bool) {
		for n := range isa {
			if !yield(&isa[n]) {
				return
			}
		}
	}
}

// Definition returns the ISA entry for the opcode.
func (op CodeOp) Definition() (def *Definition, ok bool) {
	def = opMap[op]
	ok = def != nil
	return
}

// String returns the mnemonic of the opcode.
func (op CodeOp) String() string {
	def, ok := op.Definition()
	if !ok {
		return fmt.Sprintf("CodeOp(0x%02x)", byte(op))
	}
	return def.Mnemonic
}

// Code is a single instruction with its operand values, in declaration
// order.
type Code struct {
	Op   CodeOp
	Args []int64
}

// MakeCode creates an instruction.
func MakeCode(op CodeOp, args ...int64) Code {
	return Code{Op: op, Args: args}
}

// Definition returns the ISA entry for the instruction.
func (code Code) Definition() (def *Definition, ok bool) {
	return code.Op.Definition()
}

// Size returns the encoded size of the instruction, or 0 if the opcode is
// unknown.
func (code Code) Size() int {
	def, ok := code.Definition()
	if !ok {
		return 0
	}
	return def.Size()
}

// Arg returns the value of the named operand.
func (code Code) Arg(name string) (value int64, ok bool) {
	def, ok := code.Definition()
	if !ok {
		return
	}
	for n, operand := range def.Operands {
		if operand.Name == name && n < len(code.Args) {
			return code.Args[n], true
		}
	}
	return 0, false
}

// AppendBinary appends the canonical encoding of the instruction:
// the opcode byte, then each operand little-endian at its kind's width.
// On error data is returned unchanged.
func (code Code) AppendBinary(data []byte) ([]byte, error) {
	def, ok := code.Definition()
	if !ok {
		return data, ErrOpcode(code.Op)
	}
	if len(code.Args) != len(def.Operands) {
		return data, ErrOpcodeValueMissing
	}

	for n, operand := range def.Operands {
		if !operand.Kind.Fits(code.Args[n]) {
			return data, ErrOperandWidth{Operand: operand.Name, Value: code.Args[n]}
		}
	}

	data = append(data, byte(code.Op))
	for n, operand := range def.Operands {
		value := code.Args[n]
		switch operand.Kind.Width() {
		case 4:
			data = binary.LittleEndian.AppendUint32(data, uint32(value))
		case 1:
			data = append(data, byte(value))
		}
	}

	return data, nil
}

// DecodeCode decodes the instruction at the start of data, returning it
// and its encoded size.
func DecodeCode(data []byte) (code Code, size int, err error) {
	if len(data) == 0 {
		err = ErrTruncated
		return
	}

	op := CodeOp(data[0])
	def, ok := op.Definition()
	if !ok {
		err = ErrOpcode(op)
		return
	}

	size = def.Size()
	if len(data) < size {
		err = ErrTruncated
		size = 0
		return
	}

	code = Code{Op: op, Args: make([]int64, len(def.Operands))}
	pos := 1
	for n, operand := range def.Operands {
		switch operand.Kind {
		case KIND_CONSTANT:
			code.Args[n] = int64(int32(binary.LittleEndian.Uint32(data[pos:])))
		case KIND_ADDRESS:
			code.Args[n] = int64(binary.LittleEndian.Uint32(data[pos:]))
		case KIND_REGISTER:
			code.Args[n] = int64(data[pos])
		}
		pos += operand.Kind.Width()
	}

	return
}

// String returns the assembly language representation of this instruction.
func (code Code) String() string {
	words := []string{code.Op.String()}
	for _, arg := range code.Args {
		words = append(words, fmt.Sprintf("%d", arg))
	}
	return strings.Join(words, " ")
}
