package bytecode

import (
	"testing"

	"github.com/deepnoodle-ai/quantexpr/op"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	code := NewCode(CodeParams{Source: "price > sma(prices, 20) AND active", Instructions: []Instruction{
		{Op: op.PushInt, Int: -42},
		{Op: op.PushFloat, Float: 3.14159},
		{Op: op.PushBool, Bool: true},
		{Op: op.PushBool, Bool: false},
		{Op: op.PushString, Str: "hello"},
		{Op: op.PushArray, Floats: []float64{1.5, 2.5, 3.5}},
		{Op: op.LoadVariable, Str: "price"},
		{Op: op.LoadVariable, Str: "prices"},
		{Op: op.Call, Str: "sma", Argc: 2},
		{Op: op.Gt},
		{Op: op.LoadVariable, Str: "active"},
		{Op: op.And},
		{Op: op.GetProperty, Str: "signal"},
		{Op: op.StoreVariable, Str: "out"},
		{Op: op.Jump, Target: 3},
		{Op: op.JumpIfTrue, Target: 0},
		{Op: op.JumpIfFalse, Target: 16},
		{Op: op.Add},
		{Op: op.Sub},
		{Op: op.Mul},
		{Op: op.Div},
		{Op: op.Mod},
		{Op: op.Pow},
		{Op: op.Not},
		{Op: op.Eq},
		{Op: op.Ne},
		{Op: op.Ge},
		{Op: op.Lt},
		{Op: op.Le},
		{Op: op.Return},
		{Op: op.Nop},
	}})

	data, err := Marshal(code)
	require.NoError(t, err)

	restored, err := Unmarshal(data)
	require.NoError(t, err)
	require.True(t, code.Equals(restored), "round trip changed the instruction stream")
	require.NotEqual(t, code.ID(), restored.ID())
	require.Empty(t, restored.Source())
}

func TestMarshalWireFormat(t *testing.T) {
	code := NewCode(CodeParams{Instructions: []Instruction{
		{Op: op.PushInt, Int: 1},
		{Op: op.LoadVariable, Str: "x"},
		{Op: op.Add},
	}})
	data, err := Marshal(code)
	require.NoError(t, err)
	require.Equal(t, []byte{
		0x01, 1, 0, 0, 0, 0, 0, 0, 0,
		0x60, 'x', 0,
		0x10,
	}, data)
}

func TestMarshalEmpty(t *testing.T) {
	data, err := Marshal(NewCode(CodeParams{}))
	require.NoError(t, err)
	require.Empty(t, data)

	restored, err := Unmarshal(nil)
	require.NoError(t, err)
	require.Equal(t, 0, restored.InstructionCount())
}

func TestMarshalErrors(t *testing.T) {
	_, err := Marshal(NewCode(CodeParams{Instructions: []Instruction{
		{Op: op.PushMap, Map: map[string]interface{}{"k": 1.0}},
	}}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "PUSH_MAP")

	_, err = Marshal(NewCode(CodeParams{Instructions: []Instruction{
		{Op: op.LoadVariable, Str: "bad\x00name"},
	}}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "zero byte")

	_, err = Marshal(NewCode(CodeParams{Instructions: []Instruction{
		{Op: op.Code(0x99)},
	}}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown opcode")
}

func TestUnmarshalErrors(t *testing.T) {
	// Unknown opcode.
	_, err := Unmarshal([]byte{0x99})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown opcode")

	// Truncated PushInt payload.
	_, err = Unmarshal([]byte{0x01, 1, 2, 3})
	require.Error(t, err)
	require.Contains(t, err.Error(), "truncated")

	// Unterminated string.
	_, err = Unmarshal([]byte{0x60, 'p', 'r', 'i'})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unterminated")

	// Truncated bool.
	_, err = Unmarshal([]byte{0x03})
	require.Error(t, err)

	// Array count larger than remaining input.
	_, err = Unmarshal([]byte{0x05, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	require.Error(t, err)

	// PushMap never appears in valid streams.
	_, err = Unmarshal([]byte{0x06})
	require.Error(t, err)
}
