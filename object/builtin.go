package object

// BuiltinFunc is the signature for functions callable from expressions.
// Arguments are passed in source order.
type BuiltinFunc func(args []Object) (Object, error)

// Builtin is a named function registered with the engine.
type Builtin struct {
	name string
	fn   BuiltinFunc
}

// NewBuiltin creates a new Builtin with the given name and function.
func NewBuiltin(name string, fn BuiltinFunc) *Builtin {
	return &Builtin{name: name, fn: fn}
}

// Name returns the name the function is registered under.
func (b *Builtin) Name() string {
	return b.name
}

// Call invokes the function with the given arguments.
func (b *Builtin) Call(args []Object) (Object, error) {
	return b.fn(args)
}
