// Package jit lowers compiled bytecode to native Go functions.
//
// The JIT walks the instruction sequence once, maintaining a parallel
// stack of code fragments that mirrors the bytecode VM's operand stack
// discipline exactly. The result is a single closed-over function with no
// instruction dispatch at call time. Values are uniformly float64;
// booleans are represented as 0.0/1.0. AND and OR evaluate both operands
// unconditionally, matching the VM.
//
// External functions and variables must be registered with a [Builder]
// before compilation. Variables load from a [Environment] word buffer
// passed as the compiled function's sole argument; slots are assigned in
// first-seen order, one per distinct name.
//
// The JIT supports the arithmetic, comparison, and logical subset of the
// instruction set plus calls and variable loads. Strings, arrays, maps,
// property access, jumps, and stores are rejected with a Compile error;
// use the bytecode VM for those.
package jit

import "fmt"

// ValueType describes one parameter or return value of a registered
// function.
type ValueType int

const (
	// F64 is a 64-bit float (Go float64).
	F64 ValueType = iota
	// I64 is a 64-bit signed integer (Go int64).
	I64
)

// String returns the string representation of the value type.
func (v ValueType) String() string {
	switch v {
	case F64:
		return "f64"
	case I64:
		return "i64"
	default:
		return fmt.Sprintf("ValueType(%d)", int(v))
	}
}

// fragment is one compiled value: a function producing the value given the
// runtime environment word buffer.
type fragment func(env []uint64) (float64, error)

// Function is a compiled expression, ready for repeated invocation.
type Function struct {
	fn        fragment
	slotNames []string
}

// Call invokes the compiled function with the given environment word
// buffer, as returned by Environment.Words. An expression that uses no
// variables may be called with nil.
func (f *Function) Call(env []uint64) (float64, error) {
	return f.fn(env)
}

// SlotNames returns the variable names used by the expression in slot
// order (first-seen order during compilation). Pass these to
// NewEnvironment to construct a matching environment.
func (f *Function) SlotNames() []string {
	names := make([]string, len(f.slotNames))
	copy(names, f.slotNames)
	return names
}
