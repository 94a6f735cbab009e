package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/uvmtools/uvm/cpu"
	"github.com/uvmtools/uvm/emulator"
)

func writeSource(t *testing.T, lines ...string) (dir, path string) {
	dir = t.TempDir()
	path = filepath.Join(dir, "prog.asm")
	err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	return
}

func runRoot(args ...string) (out string, err error) {
	var buf bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return buf.String(), err
}

func TestAssemble(t *testing.T) {
	assert := assert.New(t)

	dir, src := writeSource(t,
		"LOAD_CONST 5 0",
		"BOGUS 1 2",
		"ADD_OP 0 0 1",
	)
	bin := filepath.Join(dir, "prog.bin")
	logPath := filepath.Join(dir, "prog.json")

	diags, err := assemble(src, bin, logPath, false, false)
	assert.NoError(err)
	assert.Equal(1, len(diags))
	assert.Equal(2, diags[0].LineNo)

	data, err := os.ReadFile(bin)
	assert.NoError(err)
	assert.Equal([]byte{
		0x01, 0x05, 0x00, 0x00, 0x00, 0x00,
		0x05, 0x00, 0x00, 0x01,
	}, data)

	text, err := os.ReadFile(logPath)
	assert.NoError(err)
	var entries []map[string]any
	assert.NoError(json.Unmarshal(text, &entries))
	assert.Equal(2, len(entries))
	assert.Equal("LOAD_CONST", entries[0]["command"])
	assert.Equal(float64(1), entries[0]["opcode"])
	assert.Equal(float64(5), entries[0]["constant"])
}

func TestAssembleExpressions(t *testing.T) {
	assert := assert.New(t)

	dir, src := writeSource(t,
		".equ TOP 7",
		"LOAD_CONST $(TOP*TRACE_REGISTERS) 0",
	)
	bin := filepath.Join(dir, "prog.bin")
	logPath := filepath.Join(dir, "prog.json")

	diags, err := assemble(src, bin, logPath, true, false)
	assert.NoError(err)
	assert.Empty(diags)

	data, err := os.ReadFile(bin)
	assert.NoError(err)
	code, _, err := cpu.DecodeCode(data)
	assert.NoError(err)
	assert.Equal(cpu.MakeCode(cpu.OP_LOAD_CONST, 70, 0), code)
}

func TestAssembleLongLine(t *testing.T) {
	assert := assert.New(t)

	dir, src := writeSource(t,
		"LOAD_CONST 1 0",
		"# "+strings.Repeat("x", 70000),
		"LOAD_CONST 2 1",
		"ADD_OP 0 1 2",
	)
	bin := filepath.Join(dir, "prog.bin")
	logPath := filepath.Join(dir, "prog.json")

	diags, err := assemble(src, bin, logPath, false, false)
	assert.NoError(err)
	assert.Empty(diags)

	data, err := os.ReadFile(bin)
	assert.NoError(err)
	assert.Equal(6+6+4, len(data))

	text, err := os.ReadFile(logPath)
	assert.NoError(err)
	var entries []map[string]any
	assert.NoError(json.Unmarshal(text, &entries))
	assert.Equal(3, len(entries))
}

func TestAssembleMissingInput(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	_, err := assemble(filepath.Join(dir, "missing.asm"),
		filepath.Join(dir, "prog.bin"), filepath.Join(dir, "prog.json"), false, false)
	assert.ErrorIs(err, os.ErrNotExist)

	_, err = os.Stat(filepath.Join(dir, "prog.bin"))
	assert.ErrorIs(err, os.ErrNotExist)
}

func TestExecute(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	bin := filepath.Join(dir, "prog.bin")
	trace := filepath.Join(dir, "trace.csv")
	assert.NoError(os.WriteFile(bin, []byte{
		0x01, 0x05, 0x00, 0x00, 0x00, 0x00,
		0x03, 0x00, 0x01, 0x00, 0x00, 0x00,
	}, 0o644))

	emu := emulator.NewEmulator()
	emu.Range = emulator.Range{Start: 1, End: 1}
	assert.NoError(execute(emu, bin, trace))

	text, err := os.ReadFile(trace)
	assert.NoError(err)
	assert.Equal("memory_address,memory_value,registers,accumulator\n"+
		"1,0,\"[5, 0, 0, 0, 0, 0, 0, 0, 0, 0]\",5\n"+
		"1,5,\"[5, 0, 0, 0, 0, 0, 0, 0, 0, 0]\",5\n", string(text))
}

func TestRoundTrip(t *testing.T) {
	assert := assert.New(t)

	dir, src := writeSource(t,
		"# count down",
		"LOAD_CONST 3 0",
		"LOAD_CONST 1 1",
		"SUB_OP 0 1 0",
		"GE_OP 0 1 2",
		"STORE_MEM 2 0",
	)
	bin := filepath.Join(dir, "prog.bin")
	logPath := filepath.Join(dir, "prog.json")
	trace := filepath.Join(dir, "trace.csv")

	_, err := runRoot("assemble", "--input", src, "--output", bin, "--log", logPath)
	assert.NoError(err)

	_, err = runRoot("run", "--input", bin, "--output", trace, "--range", "0:0")
	assert.NoError(err)

	text, err := os.ReadFile(trace)
	assert.NoError(err)
	lines := strings.Split(strings.TrimSuffix(string(text), "\n"), "\n")
	assert.Equal(6, len(lines))
	assert.Equal("0,1,\"[2, 1, 1, 0, 0, 0, 0, 0, 0, 0]\",1", lines[5])

	out, err := runRoot("disasm", "--input", bin)
	assert.NoError(err)
	assert.Contains(out, "SUB_OP")
	assert.Contains(out, "STORE_MEM")
}

func TestRunErrors(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	bin := filepath.Join(dir, "prog.bin")
	trace := filepath.Join(dir, "trace.csv")
	assert.NoError(os.WriteFile(bin, []byte{0x01, 0x05, 0x00, 0x00, 0x00, 0x20}, 0o644))

	_, err := runRoot("run", "--input", bin, "--output", trace, "--range", "4:1")
	assert.ErrorContains(err, "range")

	_, err = runRoot("run", "--input", bin, "--output", trace, "--range", "0:1")
	assert.ErrorIs(err, cpu.ErrRegisterRange)

	_, err = runRoot("run", "--input", bin, "--output", trace)
	assert.Error(err)
}
