package object

// Bool wraps bool and implements the Object interface. Use the True and
// False singletons rather than allocating.
type Bool struct {
	value bool
}

// NewBool returns the True or False singleton for the given value.
func NewBool(value bool) *Bool {
	if value {
		return True
	}
	return False
}

// Value returns the wrapped bool.
func (b *Bool) Value() bool {
	return b.value
}

func (b *Bool) Type() Type {
	return BOOL
}

func (b *Bool) Inspect() string {
	if b.value {
		return "true"
	}
	return "false"
}

func (b *Bool) Interface() interface{} {
	return b.value
}

func (b *Bool) Equals(other Object) bool {
	o, ok := other.(*Bool)
	return ok && b.value == o.value
}
