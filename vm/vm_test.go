package vm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deepnoodle-ai/quantexpr/bytecode"
	"github.com/deepnoodle-ai/quantexpr/compiler"
	"github.com/deepnoodle-ai/quantexpr/errz"
	"github.com/deepnoodle-ai/quantexpr/object"
	"github.com/deepnoodle-ai/quantexpr/op"
	"github.com/deepnoodle-ai/quantexpr/parser"
	"github.com/stretchr/testify/require"
)

// run parses, compiles, and executes source in one step. Used for testing.
func run(ctx context.Context, source string, options ...Option) (object.Object, error) {
	expr, err := parser.Parse(ctx, source)
	if err != nil {
		return nil, err
	}
	main, err := compiler.Compile(expr, compiler.WithSource(source))
	if err != nil {
		return nil, err
	}
	return Run(ctx, main, options...)
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		source   string
		expected float64
	}{
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 - 4 - 3", 3},
		{"7 / 2", 3.5},
		{"10 % 3", 1},
		{"2 ^ 10", 1024},
		{"2 ^ -1", 0.5},
		{"-5 + 10", 5},
		{"2 + 2.5", 4.5},
		{"true + true", 2},
		{"1 + \"2.5\"", 3.5},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			result, err := run(context.Background(), tt.source)
			require.NoError(t, err)
			require.Equal(t, object.NewFloat(tt.expected), result)
		})
	}
}

func TestArithmeticAlwaysYieldsFloat(t *testing.T) {
	result, err := run(context.Background(), "1 + 1")
	require.NoError(t, err)
	require.Equal(t, object.FLOAT, result.Type())
}

func TestDivisionByZero(t *testing.T) {
	_, err := run(context.Background(), "10 / 0")
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.Runtime))
	require.Contains(t, err.Error(), "division by zero")

	_, err = run(context.Background(), "10 % 0")
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.Runtime))
}

func TestComparisons(t *testing.T) {
	tests := []struct {
		source   string
		expected bool
	}{
		{"1 < 2", true},
		{"2 <= 2", true},
		{"3 > 4", false},
		{"4 >= 4", true},
		{"5 == 5", true},
		{"5 == 5.0", true},
		{"5 != 6", true},
		{"true > false", true},
		{"price > 100", true},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			result, err := run(context.Background(), tt.source,
				WithVariables(map[string]interface{}{"price": 101.5}))
			require.NoError(t, err)
			require.Equal(t, object.NewBool(tt.expected), result)
		})
	}
}

func TestLogicalOperators(t *testing.T) {
	tests := []struct {
		source   string
		expected bool
	}{
		{"true AND false OR true", true},
		{"false OR false OR false", false},
		{"true AND true", true},
		{"NOT false", true},
		{"NOT (1 > 2)", true},
		{"1 AND 2", true},
		{"0 OR 0.0", false},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			result, err := run(context.Background(), tt.source)
			require.NoError(t, err)
			require.Equal(t, object.NewBool(tt.expected), result)
		})
	}
}

func TestLogicalOperatorsDoNotShortCircuit(t *testing.T) {
	calls := 0
	sideEffect := func(args []object.Object) (object.Object, error) {
		calls++
		return object.True, nil
	}
	result, err := run(context.Background(), "false AND probe() OR probe()",
		WithFunction("probe", sideEffect))
	require.NoError(t, err)
	require.Equal(t, object.True, result)
	require.Equal(t, 2, calls)
}

func TestFunctionCalls(t *testing.T) {
	square := func(args []object.Object) (object.Object, error) {
		v, err := object.AsFloat(args[0])
		if err != nil {
			return nil, err
		}
		return object.NewFloat(v * v), nil
	}
	result, err := run(context.Background(), "square(x)",
		WithFunction("square", square),
		WithVariables(map[string]interface{}{"x": 4.0}))
	require.NoError(t, err)
	require.Equal(t, object.NewFloat(16), result)
}

func TestCallArgumentOrder(t *testing.T) {
	var got []float64
	record := func(args []object.Object) (object.Object, error) {
		got = nil
		for _, arg := range args {
			v, err := object.AsFloat(arg)
			if err != nil {
				return nil, err
			}
			got = append(got, v)
		}
		return object.NewFloat(0), nil
	}
	_, err := run(context.Background(), "f(1, 2, 3)", WithFunction("f", record))
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 3}, got)
}

func TestCallErrorsCarryFunctionName(t *testing.T) {
	boom := errors.New("boom")
	fail := func(args []object.Object) (object.Object, error) {
		return nil, boom
	}
	_, err := run(context.Background(), "fail()", WithFunction("fail", fail))
	require.ErrorIs(t, err, boom)
	require.Equal(t, "fail: boom", err.Error())
}

func TestCallErrorsKeepKind(t *testing.T) {
	// The name prefix wraps rather than replaces the callee error, so
	// kind checks still see through it.
	reject := func(args []object.Object) (object.Object, error) {
		return nil, errz.TypeErrorf("expected a series")
	}
	_, err := run(context.Background(), "f(1)", WithFunction("f", reject))
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.Type))
	require.Contains(t, err.Error(), "f: type error: expected a series")
}

func TestUndefinedFunction(t *testing.T) {
	_, err := run(context.Background(), "missing(1)")
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.Runtime))
	require.Contains(t, err.Error(), "undefined function")
}

func TestUndefinedVariable(t *testing.T) {
	_, err := run(context.Background(), "price > 100")
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.Runtime))
	require.Contains(t, err.Error(), `undefined variable "price"`)
}

func TestPropertyAccess(t *testing.T) {
	vars := WithVariables(map[string]interface{}{
		"obj": map[string]interface{}{
			"key1": 42.0,
			"nested": map[string]interface{}{
				"deep": 7.0,
			},
		},
	})

	result, err := run(context.Background(), "obj.key1", vars)
	require.NoError(t, err)
	require.Equal(t, object.NewFloat(42), result)

	result, err = run(context.Background(), "obj.nested.deep", vars)
	require.NoError(t, err)
	require.Equal(t, object.NewFloat(7), result)

	_, err = run(context.Background(), "obj.missing", vars)
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.Runtime))
	require.Contains(t, err.Error(), `undefined property "missing"`)

	_, err = run(context.Background(), "obj.key1.deeper", vars)
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.Runtime))
	require.Contains(t, err.Error(), "non-map")
}

func TestTypeErrors(t *testing.T) {
	_, err := run(context.Background(), `"abc" + 1`)
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.Type))

	_, err = run(context.Background(), `NOT "abc"`,
		WithVariables(map[string]interface{}{}))
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.Type))
}

func TestBareIdentifier(t *testing.T) {
	result, err := run(context.Background(), "active",
		WithVariables(map[string]interface{}{"active": true}))
	require.NoError(t, err)
	require.Equal(t, object.True, result)
}

func TestRuleExpression(t *testing.T) {
	vars := WithVariables(map[string]interface{}{
		"price":  150.0,
		"volume": 4000.0,
	})
	result, err := run(context.Background(), "price > 100 AND volume < 5000", vars)
	require.NoError(t, err)
	require.Equal(t, object.True, result)
}

// The compiler never emits control flow; these tests exercise the opcodes
// with hand-built instruction streams.
func TestControlFlow(t *testing.T) {
	code := bytecode.NewCode(bytecode.CodeParams{Instructions: []bytecode.Instruction{
		{Op: op.PushBool, Bool: true},
		{Op: op.JumpIfTrue, Target: 3},
		{Op: op.PushFloat, Float: 1},
		{Op: op.PushFloat, Float: 2},
	}})
	result, err := Run(context.Background(), code)
	require.NoError(t, err)
	require.Equal(t, object.NewFloat(2), result)

	code = bytecode.NewCode(bytecode.CodeParams{Instructions: []bytecode.Instruction{
		{Op: op.Jump, Target: 2},
		{Op: op.PushFloat, Float: 1},
		{Op: op.PushFloat, Float: 2},
	}})
	result, err = Run(context.Background(), code)
	require.NoError(t, err)
	require.Equal(t, object.NewFloat(2), result)
}

func TestReturnTerminatesEarly(t *testing.T) {
	code := bytecode.NewCode(bytecode.CodeParams{Instructions: []bytecode.Instruction{
		{Op: op.PushFloat, Float: 42},
		{Op: op.Return},
		{Op: op.PushFloat, Float: 7},
	}})
	result, err := Run(context.Background(), code)
	require.NoError(t, err)
	require.Equal(t, object.NewFloat(42), result)
}

func TestStoreVariable(t *testing.T) {
	code := bytecode.NewCode(bytecode.CodeParams{Instructions: []bytecode.Instruction{
		{Op: op.PushFloat, Float: 5},
		{Op: op.StoreVariable, Str: "x"},
		{Op: op.LoadVariable, Str: "x"},
		{Op: op.LoadVariable, Str: "x"},
		{Op: op.Add},
	}})
	result, err := Run(context.Background(), code)
	require.NoError(t, err)
	require.Equal(t, object.NewFloat(10), result)
}

func TestEmptyCodeYieldsNil(t *testing.T) {
	result, err := Run(context.Background(), bytecode.NewCode(bytecode.CodeParams{}))
	require.NoError(t, err)
	require.Nil(t, result)
}

func TestStackUnderflow(t *testing.T) {
	code := bytecode.NewCode(bytecode.CodeParams{Instructions: []bytecode.Instruction{
		{Op: op.Add},
	}})
	_, err := Run(context.Background(), code)
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.Runtime))
	require.Contains(t, err.Error(), "stack underflow")
}

func TestJumpTargetOutOfRange(t *testing.T) {
	code := bytecode.NewCode(bytecode.CodeParams{Instructions: []bytecode.Instruction{
		{Op: op.Jump, Target: 99},
	}})
	_, err := Run(context.Background(), code)
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.Runtime))
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// A self-loop runs until the halt flag is observed.
	code := bytecode.NewCode(bytecode.CodeParams{Instructions: []bytecode.Instruction{
		{Op: op.Jump, Target: 0},
	}})
	done := make(chan error, 1)
	go func() {
		_, err := Run(ctx, code)
		done <- err
	}()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled run did not halt")
	}
}

func TestInvalidVariableValue(t *testing.T) {
	_, err := run(context.Background(), "x",
		WithVariables(map[string]interface{}{"x": struct{}{}}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported type")
}

func TestExecute(t *testing.T) {
	expr, err := parser.Parse(context.Background(), "price * factor")
	require.NoError(t, err)
	main, err := compiler.Compile(expr)
	require.NoError(t, err)

	// One compile, many executions with varying bindings.
	for i, expected := range []float64{10, 20, 30} {
		result, err := Execute(context.Background(), main, nil, map[string]interface{}{
			"price":  float64(i+1) * 5,
			"factor": 2.0,
		})
		require.NoError(t, err)
		require.Equal(t, object.NewFloat(expected), result)
	}
}
