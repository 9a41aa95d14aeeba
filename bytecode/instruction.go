package bytecode

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/quantexpr/op"
)

// Instruction is one element of a compiled instruction stream: an opcode
// plus its inline operands. Only the operand fields relevant to the opcode
// are meaningful; the rest are zero. Instructions are values and are never
// mutated after compilation.
type Instruction struct {
	Op op.Code

	// Int is the operand for PushInt.
	Int int64

	// Float is the operand for PushFloat.
	Float float64

	// Bool is the operand for PushBool.
	Bool bool

	// Str is the string operand: the literal for PushString, the function
	// name for Call, the key for GetProperty, and the variable name for
	// LoadVariable and StoreVariable.
	Str string

	// Argc is the argument count for Call.
	Argc int

	// Target is the instruction index operand for Jump, JumpIfTrue, and
	// JumpIfFalse.
	Target int

	// Floats is the operand for PushArray.
	Floats []float64

	// Map is the operand for PushMap. It only ever enters an instruction
	// stream by hand; the compiler never emits PushMap and the codec
	// rejects it.
	Map map[string]interface{}
}

// Equals reports whether two instructions are identical, comparing only
// the operand fields relevant to the opcode.
func (in Instruction) Equals(other Instruction) bool {
	if in.Op != other.Op {
		return false
	}
	switch in.Op {
	case op.PushInt:
		return in.Int == other.Int
	case op.PushFloat:
		return in.Float == other.Float
	case op.PushBool:
		return in.Bool == other.Bool
	case op.PushString, op.GetProperty, op.LoadVariable, op.StoreVariable:
		return in.Str == other.Str
	case op.Call:
		return in.Str == other.Str && in.Argc == other.Argc
	case op.Jump, op.JumpIfTrue, op.JumpIfFalse:
		return in.Target == other.Target
	case op.PushArray:
		if len(in.Floats) != len(other.Floats) {
			return false
		}
		for i, v := range in.Floats {
			if other.Floats[i] != v {
				return false
			}
		}
		return true
	case op.PushMap:
		return reflect.DeepEqual(in.Map, other.Map)
	default:
		return true
	}
}

// String returns a human-readable rendering, e.g. "Call(sma, 2)".
func (in Instruction) String() string {
	info := op.GetInfo(in.Op)
	switch in.Op {
	case op.PushInt:
		return fmt.Sprintf("%s(%d)", info.Name, in.Int)
	case op.PushFloat:
		return fmt.Sprintf("%s(%s)", info.Name, strconv.FormatFloat(in.Float, 'g', -1, 64))
	case op.PushBool:
		return fmt.Sprintf("%s(%t)", info.Name, in.Bool)
	case op.PushString, op.GetProperty, op.LoadVariable, op.StoreVariable:
		return fmt.Sprintf("%s(%q)", info.Name, in.Str)
	case op.Call:
		return fmt.Sprintf("%s(%s, %d)", info.Name, in.Str, in.Argc)
	case op.Jump, op.JumpIfTrue, op.JumpIfFalse:
		return fmt.Sprintf("%s(%d)", info.Name, in.Target)
	case op.PushArray:
		parts := make([]string, len(in.Floats))
		for i, v := range in.Floats {
			parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		return fmt.Sprintf("%s([%s])", info.Name, strings.Join(parts, ", "))
	case op.PushMap:
		return fmt.Sprintf("%s(%d entries)", info.Name, len(in.Map))
	default:
		return info.Name
	}
}
