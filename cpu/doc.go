// Package cpu implements the register machine and assembler for the uvm
// system.
//
// The machine has 32 signed 32-bit registers (r0-r31), 1024 signed 32-bit
// memory cells and an accumulator that mirrors the most recently loaded
// value. There is no control flow: a program is a linear byte stream that
// runs until it is exhausted.
//
// Each instruction is one opcode byte followed by its operands in
// declaration order. Constants and memory addresses are 32-bit
// little-endian, register indices are one byte. The opcode table in this
// package is used both to encode (Assembler) and to decode (Cpu).
//
// The assembler reads one instruction per line, a mnemonic followed by
// decimal operands. Blank lines and lines starting with '#' are skipped.
package cpu
