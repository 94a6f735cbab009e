package emulator

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/uvmtools/uvm/cpu"
)

// TRACE_REGISTERS is the number of registers captured per trace row.
const TRACE_REGISTERS = 10

// MemoryCell is an observed memory cell.
type MemoryCell struct {
	Address int
	Value   int32
}

// TraceRow is the machine state after one executed instruction.
type TraceRow struct {
	Index       int          // Instruction index, from 0.
	Offset      int          // Byte offset of the instruction.
	Code        cpu.Code     // The executed instruction.
	Memory      []MemoryCell // Observed memory range.
	Registers   [TRACE_REGISTERS]int32
	Accumulator int32
}

// TraceHeader is the header record of the CSV trace.
var TraceHeader = []string{"memory_address", "memory_value", "registers", "accumulator"}

// TraceWriter writes trace rows as CSV, one record per observed memory
// cell.
type TraceWriter struct {
	w *csv.Writer
}

// NewTraceWriter creates a trace writer.
func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{w: csv.NewWriter(w)}
}

// WriteHeader writes the header record.
func (tw *TraceWriter) WriteHeader() error {
	tw.w.Write(TraceHeader)
	tw.w.Flush()
	return tw.w.Error()
}

// Write writes all records of a row and flushes them, so a row is either
// fully written or reported as failed.
func (tw *TraceWriter) Write(row TraceRow) error {
	regs := FormatRegisters(row.Registers[:])
	acc := strconv.FormatInt(int64(row.Accumulator), 10)

	for _, cell := range row.Memory {
		tw.w.Write([]string{
			strconv.Itoa(cell.Address),
			strconv.FormatInt(int64(cell.Value), 10),
			regs,
			acc,
		})
	}
	tw.w.Flush()

	return tw.w.Error()
}

// FormatRegisters formats register values as "[r0, r1, ...]".
func FormatRegisters(regs []int32) string {
	words := make([]string, len(regs))
	for n, val := range regs {
		words[n] = strconv.FormatInt(int64(val), 10)
	}
	return "[" + strings.Join(words, ", ") + "]"
}
