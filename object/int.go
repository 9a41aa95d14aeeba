package object

import "strconv"

// Int wraps int64 and implements the Object interface.
type Int struct {
	value int64
}

// NewInt creates a new Int with the given value.
func NewInt(value int64) *Int {
	return &Int{value: value}
}

// Value returns the wrapped int64.
func (i *Int) Value() int64 {
	return i.value
}

func (i *Int) Type() Type {
	return INT
}

func (i *Int) Inspect() string {
	return strconv.FormatInt(i.value, 10)
}

func (i *Int) Interface() interface{} {
	return i.value
}

func (i *Int) Equals(other Object) bool {
	o, ok := other.(*Int)
	return ok && i.value == o.value
}
