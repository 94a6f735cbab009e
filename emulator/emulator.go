// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"iter"
	"log"
	"maps"
	"strconv"

	"github.com/uvmtools/uvm/cpu"
	"github.com/uvmtools/uvm/internal"
	"github.com/uvmtools/uvm/io"
)

var _emulator_defines = map[string]string{
	"TRACE_REGISTERS": strconv.Itoa(TRACE_REGISTERS),
}

// Emulator state. CPU + program image + trace.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Source listing of the program, if assembled in-process.
	Rom      io.Rom       // Program image to execute.

	Range  Range        // Observed memory range.
	Trace  []TraceRow   // Rows committed so far.
	Output *TraceWriter // If set, receives every committed row.

	ready bool
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.Concat2(maps.All(_emulator_defines), cpu.Defines())
}

// Reset the emulator state.
// - Validates the observed memory range.
// - Loads the program listing into the image, if there is one.
// - Clears the CPU and the trace.
// - Writes the trace header to Output.
func (emu *Emulator) Reset() (err error) {
	emu.ready = false

	err = emu.Range.Validate()
	if err != nil {
		return
	}

	if emu.Program != nil && len(emu.Program.Opcodes) != 0 {
		emu.Rom.Data = emu.Program.Binary()
	}

	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	emu.Trace = nil

	if emu.Output != nil {
		err = emu.Output.WriteHeader()
		if err != nil {
			return
		}
	}

	if emu.Verbose {
		log.Printf("emulator: %d bytes, observing %v", emu.Rom.Len(), emu.Range)
	}

	emu.ready = true

	return
}

// LineNo returns the source line number of the instruction at offset,
// or 0 if there is no listing.
func (emu *Emulator) LineNo(offset int) int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(offset)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// snapshot captures the trace row for the instruction just executed.
func (emu *Emulator) snapshot(index, offset int, code cpu.Code) (row TraceRow) {
	row = TraceRow{
		Index:       index,
		Offset:      offset,
		Code:        code,
		Memory:      make([]MemoryCell, 0, emu.Range.Len()),
		Accumulator: emu.Cpu.Accumulator,
	}
	copy(row.Registers[:], emu.Cpu.Register[:TRACE_REGISTERS])
	for addr := range emu.Range.All() {
		row.Memory = append(row.Memory, MemoryCell{Address: addr, Value: emu.Cpu.Memory[addr]})
	}

	return
}

// Tick executes a single instruction and commits its trace row.
// done is set once the program is exhausted.
func (emu *Emulator) Tick() (done bool, err error) {
	if !emu.ready {
		err = ErrNotReset
		return
	}

	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	index := emu.Cpu.Ticks
	offset := emu.Cpu.Pc
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: emu.LineNo(offset), Index: index, Offset: offset, Err: err}
		}
	}()

	code, err := emu.Cpu.Tick(emu.Rom.Data)
	if errors.Is(err, cpu.ErrEndOfProgram) {
		err = nil
		done = true
		return
	}
	if err != nil {
		return
	}

	row := emu.snapshot(index, offset, code)

	if emu.Output != nil {
		err = emu.Output.Write(row)
		if err != nil {
			return
		}
	}

	emu.Trace = append(emu.Trace, row)

	return
}

// Run resets the emulator and executes the program until it is
// exhausted or faults. Rows committed before a fault are kept.
func (emu *Emulator) Run() (err error) {
	err = emu.Reset()
	if err != nil {
		return
	}

	for done, err := emu.Tick(); !done; done, err = emu.Tick() {
		if err != nil {
			return err
		}
	}

	if emu.Verbose {
		log.Printf("emulator: done after %d instructions", emu.Cpu.Ticks)
	}

	return
}
