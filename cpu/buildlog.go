package cpu

import (
	"bytes"
	"encoding/json"
	"io"
)

// LogOperand is a named operand value of a build log entry.
type LogOperand struct {
	Name  string
	Value int64
}

// LogEntry is the build log record of one assembled instruction.
type LogEntry struct {
	Command  string
	Opcode   CodeOp
	Operands []LogOperand
}

// MarshalJSON encodes the entry as an object with the keys command,
// opcode, then each operand, in that order.
func (entry LogEntry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	field := func(key string, value any) (err error) {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		data, err := json.Marshal(key)
		if err != nil {
			return
		}
		buf.Write(data)
		buf.WriteByte(':')
		data, err = json.Marshal(value)
		if err != nil {
			return
		}
		buf.Write(data)
		return
	}

	buf.WriteByte('{')
	if err := field("command", entry.Command); err != nil {
		return nil, err
	}
	if err := field("opcode", uint8(entry.Opcode)); err != nil {
		return nil, err
	}
	for _, operand := range entry.Operands {
		if err := field(operand.Name, operand.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// MakeLogEntry builds the log entry for an instruction.
func MakeLogEntry(code Code) (entry LogEntry) {
	entry.Opcode = code.Op
	entry.Command = code.Op.String()

	def, ok := code.Definition()
	if !ok {
		return
	}
	for n, operand := range def.Operands {
		if n >= len(code.Args) {
			break
		}
		entry.Operands = append(entry.Operands, LogOperand{Name: operand.Name, Value: code.Args[n]})
	}

	return
}

// BuildLog returns one log entry per instruction, in program order.
func (prog *Program) BuildLog() (entries []LogEntry) {
	entries = make([]LogEntry, 0, len(prog.Opcodes))
	for _, code := range prog.Codes() {
		entries = append(entries, MakeLogEntry(code))
	}
	return
}

// WriteBuildLog writes the entries as a single indented JSON array.
// An empty log is written as [].
func WriteBuildLog(w io.Writer, entries []LogEntry) (err error) {
	if entries == nil {
		entries = []LogEntry{}
	}

	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return
	}
	data = append(data, '\n')

	_, err = w.Write(data)
	return
}
