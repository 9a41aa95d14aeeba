// Package op defines opcodes shared by the bytecode compiler, the virtual
// machine, and the JIT. The two execution backends implement the identical
// per-instruction contract; this closed set is the unit of that parity.
package op

// Code is a one-byte opcode that indicates an operation to execute.
type Code uint8

const (
	// Stack pushes
	PushInt    Code = 0x01
	PushFloat  Code = 0x02
	PushBool   Code = 0x03
	PushString Code = 0x04
	PushArray  Code = 0x05
	PushMap    Code = 0x06

	// Arithmetic
	Add Code = 0x10
	Sub Code = 0x11
	Mul Code = 0x12
	Div Code = 0x13
	Mod Code = 0x14
	Pow Code = 0x15

	// Logical. And and Or evaluate both operands unconditionally: there is
	// no short-circuit in either execution backend.
	And Code = 0x20
	Or  Code = 0x21
	Not Code = 0x22

	// Comparison
	Eq Code = 0x30
	Ne Code = 0x31
	Gt Code = 0x32
	Ge Code = 0x33
	Lt Code = 0x34
	Le Code = 0x35

	// Function calls
	Call Code = 0x40

	// Property access
	GetProperty Code = 0x50

	// Variables
	LoadVariable  Code = 0x60
	StoreVariable Code = 0x61

	// Control flow. The compiler never emits these; they are present for
	// forward compatibility and are executed by the VM only.
	Jump        Code = 0x70
	JumpIfTrue  Code = 0x71
	JumpIfFalse Code = 0x72
	Return      Code = 0x73

	// No-op
	Nop Code = 0xFF
)

// Info contains information about an opcode.
type Info struct {
	Code Code
	Name string
}

var infos = make([]Info, 256)

func init() {
	type opInfo struct {
		op   Code
		name string
	}
	ops := []opInfo{
		{PushInt, "PUSH_INT"},
		{PushFloat, "PUSH_FLOAT"},
		{PushBool, "PUSH_BOOL"},
		{PushString, "PUSH_STRING"},
		{PushArray, "PUSH_ARRAY"},
		{PushMap, "PUSH_MAP"},
		{Add, "ADD"},
		{Sub, "SUB"},
		{Mul, "MUL"},
		{Div, "DIV"},
		{Mod, "MOD"},
		{Pow, "POW"},
		{And, "AND"},
		{Or, "OR"},
		{Not, "NOT"},
		{Eq, "EQ"},
		{Ne, "NE"},
		{Gt, "GT"},
		{Ge, "GE"},
		{Lt, "LT"},
		{Le, "LE"},
		{Call, "CALL"},
		{GetProperty, "GET_PROPERTY"},
		{LoadVariable, "LOAD_VARIABLE"},
		{StoreVariable, "STORE_VARIABLE"},
		{Jump, "JUMP"},
		{JumpIfTrue, "JUMP_IF_TRUE"},
		{JumpIfFalse, "JUMP_IF_FALSE"},
		{Return, "RETURN"},
		{Nop, "NOP"},
	}
	for _, o := range ops {
		infos[o.op] = Info{Code: o.op, Name: o.name}
	}
}

// GetInfo returns information about the given opcode.
func GetInfo(c Code) Info {
	info := infos[c]
	if info.Name == "" {
		return Info{Code: c, Name: "UNKNOWN"}
	}
	return info
}

// Valid reports whether c is a defined opcode.
func Valid(c Code) bool {
	return infos[c].Name != ""
}
