package object

import (
	"testing"

	"github.com/deepnoodle-ai/quantexpr/errz"
	"github.com/stretchr/testify/require"
)

func TestBoolSingletons(t *testing.T) {
	require.Same(t, True, NewBool(true))
	require.Same(t, False, NewBool(false))
	require.Equal(t, "true", True.Inspect())
	require.Equal(t, "false", False.Inspect())
}

func TestInspect(t *testing.T) {
	require.Equal(t, "42", NewInt(42).Inspect())
	require.Equal(t, "-3", NewInt(-3).Inspect())
	require.Equal(t, "2.5", NewFloat(2.5).Inspect())
	require.Equal(t, `"hi"`, NewString("hi").Inspect())
	require.Equal(t, "[1, 2.5, 3]", NewFloatSlice([]float64{1, 2.5, 3}).Inspect())
}

func TestEquals(t *testing.T) {
	require.True(t, NewInt(3).Equals(NewInt(3)))
	require.False(t, NewInt(3).Equals(NewInt(4)))
	require.False(t, NewInt(3).Equals(NewFloat(3)))
	require.True(t, NewString("a").Equals(NewString("a")))
	require.True(t, NewFloatSlice([]float64{1, 2}).Equals(NewFloatSlice([]float64{1, 2})))
	require.False(t, NewFloatSlice([]float64{1, 2}).Equals(NewFloatSlice([]float64{1, 3})))
}

func TestMap(t *testing.T) {
	m := NewMap(map[string]Object{
		"b": NewInt(2),
		"a": NewInt(1),
	})
	require.Equal(t, 2, m.Size())
	require.Equal(t, []string{"a", "b"}, m.Keys())

	v, ok := m.Get("a")
	require.True(t, ok)
	require.True(t, v.Equals(NewInt(1)))

	_, ok = m.Get("missing")
	require.False(t, ok)

	require.Equal(t, "{a: 1, b: 2}", m.Inspect())
	require.True(t, m.Equals(NewMap(map[string]Object{
		"a": NewInt(1),
		"b": NewInt(2),
	})))
}

func TestFloatSliceCopies(t *testing.T) {
	src := []float64{1, 2, 3}
	fs := NewFloatSlice(src)
	src[0] = 99
	require.Equal(t, 1.0, fs.At(0))

	out := fs.Value()
	out[1] = 99
	require.Equal(t, 2.0, fs.At(1))
}

func TestAsFloat(t *testing.T) {
	tests := []struct {
		obj      Object
		expected float64
	}{
		{NewInt(7), 7.0},
		{NewFloat(2.5), 2.5},
		{True, 1.0},
		{False, 0.0},
		{NewString("3.14"), 3.14},
		{NewString("-10"), -10.0},
	}
	for _, tt := range tests {
		v, err := AsFloat(tt.obj)
		require.Nil(t, err)
		require.Equal(t, tt.expected, v)
	}

	_, err := AsFloat(NewString("abc"))
	require.NotNil(t, err)
	require.Equal(t, errz.Type, err.Kind())

	_, err = AsFloat(NewFloatSlice([]float64{1}))
	require.NotNil(t, err)
	require.Equal(t, errz.Type, err.Kind())
}

func TestAsBool(t *testing.T) {
	tests := []struct {
		obj      Object
		expected bool
	}{
		{True, true},
		{False, false},
		{NewInt(0), false},
		{NewInt(5), true},
		{NewFloat(0.0), false},
		{NewFloat(-1.5), true},
	}
	for _, tt := range tests {
		v, err := AsBool(tt.obj)
		require.Nil(t, err)
		require.Equal(t, tt.expected, v)
	}

	_, err := AsBool(NewString("true"))
	require.NotNil(t, err)
	require.Equal(t, errz.Type, err.Kind())
}

func TestFromGoType(t *testing.T) {
	obj, err := FromGoType(42)
	require.NoError(t, err)
	require.True(t, obj.Equals(NewInt(42)))

	obj, err = FromGoType(2.5)
	require.NoError(t, err)
	require.True(t, obj.Equals(NewFloat(2.5)))

	obj, err = FromGoType(true)
	require.NoError(t, err)
	require.Same(t, True, obj)

	obj, err = FromGoType("hello")
	require.NoError(t, err)
	require.True(t, obj.Equals(NewString("hello")))

	obj, err = FromGoType([]float64{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 3, obj.(*FloatSlice).Len())

	obj, err = FromGoType(map[string]interface{}{"x": 1, "y": 2.5})
	require.NoError(t, err)
	m := obj.(*Map)
	v, ok := m.Get("x")
	require.True(t, ok)
	require.True(t, v.Equals(NewInt(1)))

	_, err = FromGoType(struct{}{})
	require.Error(t, err)
}

func TestBuiltin(t *testing.T) {
	double := NewBuiltin("double", func(args []Object) (Object, error) {
		v, err := AsFloat(args[0])
		if err != nil {
			return nil, err
		}
		return NewFloat(v * 2), nil
	})
	require.Equal(t, "double", double.Name())

	result, err := double.Call([]Object{NewInt(21)})
	require.NoError(t, err)
	require.True(t, result.Equals(NewFloat(42)))
}
