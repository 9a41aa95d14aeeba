package quantexpr

import (
	"context"
	"testing"

	"github.com/deepnoodle-ai/quantexpr/errz"
	"github.com/deepnoodle-ai/quantexpr/jit"
	"github.com/deepnoodle-ai/quantexpr/object"
	"github.com/deepnoodle-ai/quantexpr/vm"
	"github.com/stretchr/testify/require"
)

func TestEvalArithmetic(t *testing.T) {
	result, err := Eval(context.Background(), "2 + 3 * 4")
	require.NoError(t, err)
	require.Equal(t, object.NewFloat(14), result)
}

func TestEvalDivisionByZero(t *testing.T) {
	_, err := Eval(context.Background(), "10 / 0")
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.Runtime))
}

func TestEvalLogical(t *testing.T) {
	result, err := Eval(context.Background(), "true AND false OR true")
	require.NoError(t, err)
	require.Equal(t, object.True, result)

	result, err = Eval(context.Background(), "false OR false OR false")
	require.NoError(t, err)
	require.Equal(t, object.False, result)
}

func TestEvalMixedComparisonChain(t *testing.T) {
	// (0 == 1) > 5: the equality yields false, which compares as 0.
	result, err := Eval(context.Background(), "0 == 1 > 5")
	require.NoError(t, err)
	require.Equal(t, object.False, result)
}

func TestEvalWithFunctionAndVariable(t *testing.T) {
	square := func(args []object.Object) (object.Object, error) {
		v, err := object.AsFloat(args[0])
		if err != nil {
			return nil, err
		}
		return object.NewFloat(v * v), nil
	}
	result, err := Eval(context.Background(), "square(x)",
		WithFunction("square", square),
		WithVariables(map[string]interface{}{"x": 4.0}))
	require.NoError(t, err)
	require.Equal(t, object.NewFloat(16), result)
}

func TestEvalPropertyAccess(t *testing.T) {
	vars := WithVariables(map[string]interface{}{
		"obj": map[string]interface{}{"key1": 42.0},
	})

	result, err := Eval(context.Background(), "obj.key1", vars)
	require.NoError(t, err)
	require.Equal(t, object.NewFloat(42), result)

	_, err = Eval(context.Background(), "obj.missing", vars)
	require.Error(t, err)
	require.True(t, errz.IsKind(err, errz.Runtime))
}

func TestEvalSyntaxErrors(t *testing.T) {
	for _, source := range []string{"(3 + 4", ""} {
		_, err := Eval(context.Background(), source)
		require.Error(t, err, source)
	}
}

func TestEvalWithIndicatorBuiltins(t *testing.T) {
	result, err := Eval(context.Background(), "sma(prices, 3) > 3.5",
		WithFunctions(Builtins()),
		WithVariables(map[string]interface{}{
			"prices": []float64{1, 2, 3, 4, 5},
		}))
	require.NoError(t, err)
	require.Equal(t, object.True, result)
}

func TestCompileOnceRunMany(t *testing.T) {
	code, err := Compile("price > threshold")
	require.NoError(t, err)
	require.Equal(t, "price > threshold", code.Source())

	tests := []struct {
		price    float64
		expected object.Object
	}{
		{10, object.False},
		{100, object.False},
		{101, object.True},
	}
	for _, tt := range tests {
		result, err := vm.Execute(context.Background(), code, nil, map[string]interface{}{
			"price":     tt.price,
			"threshold": 100.0,
		})
		require.NoError(t, err)
		require.Equal(t, tt.expected, result)
	}
}

// The square(x) example must produce the same value through the
// interpreter and the JIT.
func TestInterpreterAndJITAgree(t *testing.T) {
	code, err := Compile("square(x)")
	require.NoError(t, err)

	square := func(args []object.Object) (object.Object, error) {
		v, err := object.AsFloat(args[0])
		if err != nil {
			return nil, err
		}
		return object.NewFloat(v * v), nil
	}
	vmResult, err := vm.Run(context.Background(), code,
		vm.WithFunction("square", square),
		vm.WithVariables(map[string]interface{}{"x": 4.0}))
	require.NoError(t, err)
	require.Equal(t, object.NewFloat(16), vmResult)

	b := jit.NewBuilder()
	require.NoError(t, b.AddFunction("square",
		func(x float64) float64 { return x * x },
		[]jit.ValueType{jit.F64}, []jit.ValueType{jit.F64}))
	fn, err := b.Build().Compile(code)
	require.NoError(t, err)

	env := jit.NewEnvironment(fn.SlotNames())
	require.NoError(t, env.SetFloat64("x", 4))
	env.Init()
	jitResult, err := fn.Call(env.Words())
	require.NoError(t, err)
	require.Equal(t, 16.0, jitResult)
}
