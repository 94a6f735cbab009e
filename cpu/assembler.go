// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var parenRe = regexp.MustCompile(`\$\([^\$]*\)`)

// Assembler is a single pass, line oriented assembler for the uvm ISA.
//
// Assembly is best-effort: a line that fails to assemble is reported and
// skipped, and the remaining lines are still assembled.
type Assembler struct {
	Verbose     bool     // If set, verbosely logs the assembler actions.
	Expressions bool     // If set, enables .equ directives and $(...) operands.
	Opcode      []Opcode // List of generated opcodes.

	predefine map[string]string // Predefines
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
// Equates are only used when Expressions is set.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a decimal operand literal.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	value, err = strconv.ParseInt(word, 10, 64)
	if err != nil {
		err = ErrParseNumber(word)
	}
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{Name: "uvm-asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v, _err := asm.valueOf(str)
		if _err != nil {
			// Ignore non-integer equates. They may be mnemonics
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine splits a trimmed source line into words, applying the
// expression preprocessor if enabled.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	if !asm.Expressions {
		words = strings.Fields(line)
		return
	}

	// Set line number.
	asm.Equate["LINENO"] = strconv.Itoa(lineno)

	// Do $() evaluations
	line = parenRe.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			if err == nil {
				err = _err
			}
			return str
		}
		return strconv.FormatInt(value, 10)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)

	// .equ CONST VALUE
	if len(words) > 0 && words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	return
}

// currentOffset gets the byte offset of the next instruction.
func (asm *Assembler) currentOffset() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Offset + last.Code.Size()
}

// Parse assembles an input stream into a Program.
//
// The returned program is never nil, and holds every line that assembled.
// If any line failed, err is a Diagnostics with one *ErrSyntax per failed
// line. Lines may be of any length. A read error on the input is joined
// to err.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	reader := bufio.NewReader(input)

	var diags Diagnostics
	var lineno int
	var read_err error

	asm.Opcode = asm.Opcode[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for read_err == nil {
		var text string
		text, read_err = reader.ReadString('\n')
		if len(text) == 0 && read_err != nil {
			break
		}
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line := strings.TrimSpace(text)
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		words, line_err := asm.parseLine(line, lineno)
		if line_err == nil {
			line_err = asm.parseWords(words, lineno)
		}
		if line_err != nil {
			diag := &ErrSyntax{LineNo: lineno, Line: line, Err: line_err}
			if asm.Verbose {
				log.Printf("%v", diag)
			}
			diags = append(diags, diag)
		}
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	if len(diags) != 0 {
		err = diags
	}

	if read_err != nil && read_err != io.EOF {
		err = errors.Join(err, read_err)
	}

	return
}

// parseWords assembles the words of one source line.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	def, ok := Lookup(words[0])
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	if len(words) < 1+len(def.Operands) {
		err = ErrOpcodeValueMissing
		return
	}

	args := make([]int64, len(def.Operands))
	for n, operand := range def.Operands {
		word := words[1+n]
		args[n], err = asm.valueOf(word)
		if err != nil {
			return
		}
		if !operand.Kind.Fits(args[n]) {
			err = ErrOperandWidth{Operand: operand.Name, Value: args[n]}
			return
		}
	}

	opcode := Opcode{
		LineNo: lineno,
		Offset: asm.currentOffset(),
		Words:  slices.Clone(words),
		Code:   MakeCode(def.Op, args...),
	}
	asm.Opcode = append(asm.Opcode, opcode)

	return
}
