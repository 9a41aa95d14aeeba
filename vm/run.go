package vm

import (
	"context"

	"github.com/deepnoodle-ai/quantexpr/bytecode"
	"github.com/deepnoodle-ai/quantexpr/object"
)

// Run executes the given code in a new Virtual Machine and returns the
// result.
func Run(ctx context.Context, main *bytecode.Code, options ...Option) (object.Object, error) {
	machine, err := New(main, options...)
	if err != nil {
		return nil, err
	}
	return machine.Run(ctx)
}

// Execute runs precompiled code against the given function registry and
// variable bindings. This is the repeated-evaluation path: compile once,
// then call Execute for each new set of bindings.
func Execute(
	ctx context.Context,
	main *bytecode.Code,
	functions map[string]object.BuiltinFunc,
	variables map[string]interface{},
) (object.Object, error) {
	return Run(ctx, main, WithFunctions(functions), WithVariables(variables))
}
