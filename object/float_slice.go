package object

import (
	"strconv"
	"strings"
)

// FloatSlice wraps an ordered sequence of float64 values, typically a price
// or volume series passed to indicator functions. The constructor copies
// its input so the wrapped slice is immutable.
type FloatSlice struct {
	value []float64
}

// NewFloatSlice creates a new FloatSlice with a copy of the given values.
func NewFloatSlice(values []float64) *FloatSlice {
	c := make([]float64, len(values))
	copy(c, values)
	return &FloatSlice{value: c}
}

// Value returns a copy of the wrapped values.
func (f *FloatSlice) Value() []float64 {
	c := make([]float64, len(f.value))
	copy(c, f.value)
	return c
}

// Len returns the number of values.
func (f *FloatSlice) Len() int {
	return len(f.value)
}

// At returns the value at index i.
func (f *FloatSlice) At(i int) float64 {
	return f.value[i]
}

func (f *FloatSlice) Type() Type {
	return FLOAT_SLICE
}

func (f *FloatSlice) Inspect() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, v := range f.value {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	sb.WriteString("]")
	return sb.String()
}

func (f *FloatSlice) Interface() interface{} {
	return f.Value()
}

func (f *FloatSlice) Equals(other Object) bool {
	o, ok := other.(*FloatSlice)
	if !ok || len(f.value) != len(o.value) {
		return false
	}
	for i, v := range f.value {
		if o.value[i] != v {
			return false
		}
	}
	return true
}
