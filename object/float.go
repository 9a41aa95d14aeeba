package object

import "strconv"

// Float wraps float64 and implements the Object interface. Arithmetic
// always yields Float, regardless of operand types.
type Float struct {
	value float64
}

// NewFloat creates a new Float with the given value.
func NewFloat(value float64) *Float {
	return &Float{value: value}
}

// Value returns the wrapped float64.
func (f *Float) Value() float64 {
	return f.value
}

func (f *Float) Type() Type {
	return FLOAT
}

func (f *Float) Inspect() string {
	return strconv.FormatFloat(f.value, 'g', -1, 64)
}

func (f *Float) Interface() interface{} {
	return f.value
}

func (f *Float) Equals(other Object) bool {
	o, ok := other.(*Float)
	return ok && f.value == o.value
}
