package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"
	"strconv"
	"strings"
)

const (
	REGISTER_COUNT = 32   // Number of registers.
	MEMORY_SIZE    = 1024 // Number of memory cells.
	MEMORY_MASK    = MEMORY_SIZE - 1
)

var _cpu_defines = func() (defines map[string]string) {
	defines = map[string]string{
		"REGISTER_COUNT": strconv.Itoa(REGISTER_COUNT),
		"MEMORY_SIZE":    strconv.Itoa(MEMORY_SIZE),
	}
	for def := range Definitions() {
		defines["OP_"+def.Mnemonic] = strconv.Itoa(int(def.Op))
	}
	return
}()

// Predefined system equates
var sysEquate = func() (equ map[string]string) {
	equ = maps.Clone(_cpu_defines)
	equ["LINENO"] = "0"
	return
}()

// Defines for the cpu
func Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Cpu is the register machine: registers, memory and the accumulator,
// plus the program counter into the binary being executed.
type Cpu struct {
	Verbose     bool // Set to enable verbose logging.
	MaskAddress bool // Set to mask memory indices into range instead of faulting.

	Register    [REGISTER_COUNT]int32 // Register bank.
	Memory      [MEMORY_SIZE]int32    // Data memory.
	Accumulator int32                 // Most recently loaded value.

	Pc    int // Byte offset of the next opcode.
	Ticks int // Instructions executed since reset.
}

// NewCpu creates a new CPU with all cells zeroed.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}

	return
}

// Reset the CPU state.
// - Clears the registers, memory and accumulator.
// - Rewinds the program counter.
// - Zeros the tick counter.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	clear(cpu.Memory[:])
	cpu.Accumulator = 0
	cpu.Pc = 0
	cpu.Ticks = 0
}

// String returns the current CPU state as a string. Only non-zero
// registers are listed.
func (cpu *Cpu) String() (text string) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "   pc: %04x\n", cpu.Pc)
	fmt.Fprintf(&sb, "ticks: %d\n", cpu.Ticks)
	fmt.Fprintf(&sb, "  acc: %d\n", cpu.Accumulator)
	for n, val := range cpu.Register {
		if val != 0 {
			fmt.Fprintf(&sb, "% 5s: %d\n", fmt.Sprintf("r%d", n), val)
		}
	}

	return sb.String()
}

// FetchCode decodes the instruction at the program counter.
func (cpu *Cpu) FetchCode(data []byte) (code Code, err error) {
	if cpu.Pc >= len(data) {
		err = ErrEndOfProgram
		return
	}

	code, _, err = DecodeCode(data[cpu.Pc:])
	return
}

// Tick executes a single instruction of the binary, advancing the
// program counter past it, and returns the executed instruction.
// Returns ErrEndOfProgram once the binary is exhausted.
func (cpu *Cpu) Tick(data []byte) (code Code, err error) {
	code, err = cpu.FetchCode(data)
	if err != nil {
		return
	}

	err = cpu.Execute(code)
	if err != nil {
		return
	}

	cpu.Pc += code.Size()
	cpu.Ticks += 1

	return
}

// register validates a register index operand.
func (cpu *Cpu) register(name string, index int64) (reg int, err error) {
	if index < 0 || index >= REGISTER_COUNT {
		err = ErrIndex{Operand: name, Index: index, Err: ErrRegisterRange}
		return
	}
	reg = int(index)
	return
}

// address validates a memory index operand.
func (cpu *Cpu) address(name string, index int64) (addr int, err error) {
	if cpu.MaskAddress {
		addr = int(index & MEMORY_MASK)
		return
	}
	if index < 0 || index >= MEMORY_SIZE {
		err = ErrIndex{Operand: name, Index: index, Err: ErrMemoryRange}
		return
	}
	addr = int(index)
	return
}

// Execute executes a single decoded instruction. All operands are
// validated before any state is modified, so a failed instruction leaves
// the CPU unchanged.
func (cpu *Cpu) Execute(code Code) (err error) {
	if cpu.Verbose {
		log.Printf("%04x: %v", cpu.Pc, code)
	}

	def, ok := code.Definition()
	if !ok {
		return ErrOpcode(code.Op)
	}
	if len(code.Args) != len(def.Operands) {
		return ErrOpcodeValueMissing
	}

	// Resolve every operand first.
	var value int32
	index := make([]int, len(def.Operands))
	for n, operand := range def.Operands {
		switch operand.Kind {
		case KIND_CONSTANT:
			value = int32(code.Args[n])
		case KIND_REGISTER:
			index[n], err = cpu.register(operand.Name, code.Args[n])
		case KIND_ADDRESS:
			index[n], err = cpu.address(operand.Name, code.Args[n])
		}
		if err != nil {
			return
		}
	}

	switch code.Op {
	case OP_LOAD_CONST:
		cpu.Accumulator = value
		cpu.Register[index[1]] = cpu.Accumulator
	case OP_LOAD_MEM:
		cpu.Accumulator = cpu.Memory[index[0]]
		cpu.Register[index[1]] = cpu.Accumulator
	case OP_STORE_MEM:
		cpu.Memory[index[1]] = cpu.Register[index[0]]
	case OP_GE:
		var result int32
		if cpu.Register[index[0]] >= cpu.Register[index[1]] {
			result = 1
		}
		cpu.Register[index[2]] = result
	case OP_ADD:
		cpu.Register[index[2]] = cpu.Register[index[0]] + cpu.Register[index[1]]
	case OP_SUB:
		cpu.Register[index[2]] = cpu.Register[index[0]] - cpu.Register[index[1]]
	default:
		return ErrOpcode(code.Op)
	}

	return
}
