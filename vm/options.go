package vm

import "github.com/deepnoodle-ai/quantexpr/object"

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// WithFunction registers one named function for use in call expressions.
func WithFunction(name string, fn object.BuiltinFunc) Option {
	return func(vm *VirtualMachine) {
		vm.functions[name] = object.NewBuiltin(name, fn)
	}
}

// WithFunctions registers named functions for use in call expressions.
func WithFunctions(functions map[string]object.BuiltinFunc) Option {
	return func(vm *VirtualMachine) {
		for name, fn := range functions {
			vm.functions[name] = object.NewBuiltin(name, fn)
		}
	}
}

// WithVariables binds variables with the given names. Values are converted
// to engine values with object.FromGoType.
func WithVariables(variables map[string]interface{}) Option {
	return func(vm *VirtualMachine) {
		for name, value := range variables {
			vm.inputVariables[name] = value
		}
	}
}
