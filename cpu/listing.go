package cpu

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// Listing renders the program as a tree: one branch per instruction,
// keyed by byte offset, with the named operands as leaves.
func (prog *Program) Listing() string {
	tree := treeprint.NewWithRoot(f("program: %d instructions, %d bytes", len(prog.Opcodes), prog.Size()))

	for _, op := range prog.Opcodes {
		meta := fmt.Sprintf("%04x", op.Offset)
		if op.LineNo != 0 {
			meta = fmt.Sprintf("%04x line %d", op.Offset, op.LineNo)
		}
		branch := tree.AddMetaBranch(meta, fmt.Sprintf("%v (0x%02x)", op.Code.Op, uint8(op.Code.Op)))
		for _, operand := range MakeLogEntry(op.Code).Operands {
			branch.AddNode(fmt.Sprintf("%v: %d", operand.Name, operand.Value))
		}
	}

	return tree.String()
}
