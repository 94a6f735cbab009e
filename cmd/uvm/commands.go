package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/uvmtools/uvm/cpu"
	"github.com/uvmtools/uvm/emulator"
	"github.com/uvmtools/uvm/io"
	"github.com/uvmtools/uvm/translate"
)

var f = translate.From

// assemble translates the source file at input, writing the binary to
// output and the build log to logPath. Per-line diagnostics are logged
// and do not fail the command.
func assemble(input, output, logPath string, expressions, verbose bool) (diags cpu.Diagnostics, err error) {
	inf, err := os.Open(input)
	if err != nil {
		return
	}
	defer inf.Close()

	emu := emulator.NewEmulator()
	asm := &cpu.Assembler{Verbose: verbose, Expressions: expressions}
	for equ, value := range emu.Defines() {
		asm.Predefine(equ, value)
	}

	prog, err := asm.Parse(inf)
	errors.As(err, &diags)
	if _, ok := err.(cpu.Diagnostics); err != nil && !ok {
		return
	}
	err = nil

	for _, diag := range diags {
		log.Printf("%v: %v", input, diag)
	}

	err = writeRom(output, &io.Rom{Data: prog.Binary()})
	if err != nil {
		return
	}

	ouf, err := os.Create(logPath)
	if err != nil {
		return
	}
	defer ouf.Close()

	err = cpu.WriteBuildLog(ouf, prog.BuildLog())
	return
}

// readRom loads a program image from a file.
func readRom(path string, rom *io.Rom) (err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	return rom.Unmarshal(inf)
}

// writeRom writes a program image to a file.
func writeRom(path string, rom *io.Rom) (err error) {
	ouf, err := os.Create(path)
	if err != nil {
		return
	}

	err = rom.Marshal(ouf)
	if close_err := ouf.Close(); err == nil {
		err = close_err
	}
	return
}

func assembleCmd() *cobra.Command {
	var input, output, logPath string
	var expressions, verbose bool

	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Assemble a source file into a binary program and build log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			diags, err := assemble(input, output, logPath, expressions, verbose)
			if err != nil {
				return
			}
			if verbose {
				log.Printf("%v", f("%v: %d errors", input, len(diags)))
			}
			return
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Source file to assemble")
	cmd.Flags().StringVar(&output, "output", "", "Binary program to write")
	cmd.Flags().StringVar(&logPath, "log", "", "JSON build log to write")
	cmd.Flags().BoolVarP(&expressions, "expressions", "e", false, "Enable .equ directives and $(...) operands")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose mode")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")
	cmd.MarkFlagRequired("log")

	return cmd
}

// execute runs the binary at input, writing the CSV trace to output.
func execute(emu *emulator.Emulator, input, output string) (err error) {
	err = readRom(input, &emu.Rom)
	if err != nil {
		return
	}

	ouf, err := os.Create(output)
	if err != nil {
		return
	}
	defer ouf.Close()

	emu.Output = emulator.NewTraceWriter(ouf)

	return emu.Run()
}

func runCmd() *cobra.Command {
	var input, output string
	var verbose bool

	emu := emulator.NewEmulator()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a binary program, writing a CSV trace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			emu.Verbose = verbose

			err = execute(emu, input, output)
			if err != nil {
				return
			}

			if verbose {
				fmt.Fprint(cmd.OutOrStdout(), emu.Cpu.String())
			}
			return
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Binary program to execute")
	cmd.Flags().StringVar(&output, "output", "", "CSV trace to write")
	cmd.Flags().Var(&emu.Range, "range", "Memory range to trace, inclusive")
	cmd.Flags().BoolVar(&emu.Cpu.MaskAddress, "mask-addresses", false, "Mask memory indices into range instead of faulting")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose mode")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")
	cmd.MarkFlagRequired("range")

	return cmd
}

func disasmCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "disasm",
		Short: "List the instructions of a binary program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			var rom io.Rom
			err = readRom(input, &rom)
			if err != nil {
				return
			}

			prog, err := cpu.Disassemble(rom.Data)
			fmt.Fprint(cmd.OutOrStdout(), prog.Listing())
			return
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Binary program to list")
	cmd.MarkFlagRequired("input")

	return cmd
}
