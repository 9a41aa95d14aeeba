// Package dis supports analysis of compiled expressions by disassembling
// their bytecode. This works with the opcodes defined in the op package
// and the instruction representation from the bytecode package.
package dis

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/deepnoodle-ai/quantexpr/bytecode"
	"github.com/deepnoodle-ai/quantexpr/op"
)

// Instruction represents a single decoded instruction for display.
type Instruction struct {
	Offset   int
	Name     string
	Opcode   op.Code
	Operands string
}

// Disassemble returns a display representation of the given bytecode.
func Disassemble(code *bytecode.Code) []Instruction {
	instructions := make([]Instruction, 0, code.InstructionCount())
	for i := 0; i < code.InstructionCount(); i++ {
		in := code.InstructionAt(i)
		info := op.GetInfo(in.Op)
		instructions = append(instructions, Instruction{
			Offset:   i,
			Name:     info.Name,
			Opcode:   in.Op,
			Operands: formatOperands(in),
		})
	}
	return instructions
}

// Print writes a string representation of the given instructions to the
// given writer.
func Print(instructions []Instruction, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 2, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "OFFSET\tOPCODE\t\tOPERANDS")
	for _, in := range instructions {
		fmt.Fprintf(w, "%d\t%s\t\t%s\n", in.Offset, in.Name, in.Operands)
	}
	return w.Flush()
}

// Dump disassembles code and renders it as a string.
func Dump(code *bytecode.Code) (string, error) {
	var sb strings.Builder
	if err := Print(Disassemble(code), &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func formatOperands(in bytecode.Instruction) string {
	switch in.Op {
	case op.PushInt:
		return strconv.FormatInt(in.Int, 10)
	case op.PushFloat:
		return strconv.FormatFloat(in.Float, 'g', -1, 64)
	case op.PushBool:
		return strconv.FormatBool(in.Bool)
	case op.PushString, op.GetProperty, op.LoadVariable, op.StoreVariable:
		return fmt.Sprintf("%q", in.Str)
	case op.Call:
		return fmt.Sprintf("%q, %d", in.Str, in.Argc)
	case op.Jump, op.JumpIfTrue, op.JumpIfFalse:
		return strconv.Itoa(in.Target)
	case op.PushArray:
		parts := make([]string, len(in.Floats))
		for i, v := range in.Floats {
			parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case op.PushMap:
		return fmt.Sprintf("%d entries", len(in.Map))
	default:
		return ""
	}
}
