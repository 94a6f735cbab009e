// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uvm",
		Short: "Assembler and virtual machine for the uvm register machine",
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cmd.AddCommand(assembleCmd(), runCmd(), disasmCmd())

	return cmd
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}
