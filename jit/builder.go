package jit

import (
	"fmt"
	"reflect"

	"github.com/rs/zerolog"
)

// linkEntry is one registered function: a callable plus its declared
// signature. Entries are established at build time and immutable
// thereafter.
type linkEntry struct {
	name    string
	fn      reflect.Value
	params  []ValueType
	returns ValueType
}

// Builder collects the functions and variables available to compiled
// expressions. Register everything up front, then call Build to obtain an
// immutable Compiler. A Builder must not be used after Build.
type Builder struct {
	functions map[string]*linkEntry
	variables map[string]*float64
	logger    zerolog.Logger
}

// BuilderOption is a configuration function for a Builder.
type BuilderOption func(*Builder)

// WithLogger sets a logger used to trace compilation steps at debug level.
func WithLogger(logger zerolog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder returns an empty Builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		functions: map[string]*linkEntry{},
		variables: map[string]*float64{},
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddFunction registers a native function under the given name with an
// explicit signature. The declared parameter and return types must match
// fn exactly: F64 is float64 and I64 is int64. Exactly one return value is
// required. Call instructions referring to unregistered names fail at
// compile time; there is no dynamic dispatch.
func (b *Builder) AddFunction(name string, fn interface{}, params []ValueType, returns []ValueType) error {
	if _, exists := b.functions[name]; exists {
		return fmt.Errorf("function %q is already registered", name)
	}
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return fmt.Errorf("function %q is not a func (got %T)", name, fn)
	}
	if t.IsVariadic() {
		return fmt.Errorf("function %q must not be variadic", name)
	}
	if t.NumIn() != len(params) {
		return fmt.Errorf("function %q takes %d parameters but %d were declared",
			name, t.NumIn(), len(params))
	}
	for i, p := range params {
		if t.In(i) != goType(p) {
			return fmt.Errorf("function %q parameter %d is %s but was declared %s",
				name, i, t.In(i), p)
		}
	}
	if len(returns) != 1 {
		return fmt.Errorf("function %q must declare exactly one return value", name)
	}
	if t.NumOut() != 1 || t.Out(0) != goType(returns[0]) {
		return fmt.Errorf("function %q must return one %s", name, returns[0])
	}
	b.functions[name] = &linkEntry{
		name:    name,
		fn:      v,
		params:  params,
		returns: returns[0],
	}
	b.logger.Debug().
		Str("function", name).
		Int("params", len(params)).
		Msg("registered function")
	return nil
}

// AddVariable binds a variable name to caller-owned storage. Compiled
// expressions read the pointed-to value at call time instead of consuming
// an environment slot. The pointer must outlive every compiled Function.
func (b *Builder) AddVariable(name string, ptr *float64) error {
	if ptr == nil {
		return fmt.Errorf("variable %q has a nil pointer", name)
	}
	if _, exists := b.variables[name]; exists {
		return fmt.Errorf("variable %q is already registered", name)
	}
	b.variables[name] = ptr
	b.logger.Debug().Str("variable", name).Msg("registered variable")
	return nil
}

// Build returns a Compiler with an immutable view of the registered
// functions and variables.
func (b *Builder) Build() *Compiler {
	functions := make(map[string]*linkEntry, len(b.functions))
	for name, entry := range b.functions {
		functions[name] = entry
	}
	variables := make(map[string]*float64, len(b.variables))
	for name, ptr := range b.variables {
		variables[name] = ptr
	}
	return &Compiler{
		functions: functions,
		variables: variables,
		logger:    b.logger,
	}
}

func goType(v ValueType) reflect.Type {
	if v == I64 {
		return reflect.TypeOf(int64(0))
	}
	return reflect.TypeOf(float64(0))
}
