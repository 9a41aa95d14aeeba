// Package quantexpr is an embeddable expression engine for evaluating
// boolean and arithmetic decision rules, such as
// "price > 100 AND volume < 5000", against a set of variable bindings and
// registered functions.
//
// Expressions are parsed and compiled to a flat bytecode instruction
// sequence, which can be executed two ways: interpreted by the bytecode
// VM (the vm package), or lowered to a native Go function by the JIT (the
// jit package). Both backends implement identical per-instruction
// semantics.
//
// For one-off evaluation use Eval:
//
//	result, err := quantexpr.Eval(ctx, "price > 100",
//		quantexpr.WithVariables(map[string]any{"price": 150.0}))
//
// To amortize parse and compile cost across repeated evaluations, use
// Compile once and then vm.Execute (or the jit package) per evaluation.
package quantexpr

import (
	"context"

	"github.com/deepnoodle-ai/quantexpr/bytecode"
	"github.com/deepnoodle-ai/quantexpr/compiler"
	"github.com/deepnoodle-ai/quantexpr/indicators"
	"github.com/deepnoodle-ai/quantexpr/object"
	"github.com/deepnoodle-ai/quantexpr/parser"
	"github.com/deepnoodle-ai/quantexpr/vm"
)

// Option configures an evaluation.
type Option func(*options)

type options struct {
	functions map[string]object.BuiltinFunc
	variables map[string]interface{}
}

func collectOptions(opts ...Option) *options {
	o := &options{
		functions: map[string]object.BuiltinFunc{},
		variables: map[string]interface{}{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithFunction registers a single named function for call expressions.
func WithFunction(name string, fn object.BuiltinFunc) Option {
	return func(o *options) {
		o.functions[name] = fn
	}
}

// WithFunctions registers named functions for call expressions. This
// option is additive; if the same name is supplied multiple times, the
// last value wins.
func WithFunctions(functions map[string]object.BuiltinFunc) Option {
	return func(o *options) {
		for name, fn := range functions {
			o.functions[name] = fn
		}
	}
}

// WithVariables binds variables for the evaluation. Values are converted
// with object.FromGoType; supported types are bool, int, int32, int64,
// float32, float64, string, []float64, and string-keyed maps of these.
// This option is additive.
func WithVariables(variables map[string]interface{}) Option {
	return func(o *options) {
		for name, value := range variables {
			o.variables[name] = value
		}
	}
}

// Builtins returns the standard indicator function library, for passing
// to WithFunctions. The default function registry is empty.
func Builtins() map[string]object.BuiltinFunc {
	return indicators.Builtins()
}

// Compile parses and compiles the given expression. The returned code is
// immutable and may be executed any number of times, by any number of
// goroutines, with varying bindings.
func Compile(source string) (*bytecode.Code, error) {
	expr, err := parser.Parse(context.Background(), source)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(expr, compiler.WithSource(source))
}

// Eval parses, compiles, and executes an expression in one call. There is
// no caching across calls; use Compile plus vm.Execute to amortize
// compilation cost.
func Eval(ctx context.Context, source string, opts ...Option) (object.Object, error) {
	code, err := Compile(source)
	if err != nil {
		return nil, err
	}
	o := collectOptions(opts...)
	return vm.Run(ctx, code,
		vm.WithFunctions(o.functions),
		vm.WithVariables(o.variables))
}
