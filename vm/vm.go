// Package vm provides a VirtualMachine that executes compiled rule
// expressions. It is a stack machine: each instruction pops zero or more
// operands and pushes at most one result, and at stream end the top of
// stack is the result.
//
// The VM implements the same per-instruction contract as the JIT, which is
// the central correctness invariant of the engine. In particular, AND and
// OR evaluate both operands unconditionally; there is no short-circuit.
package vm

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/deepnoodle-ai/quantexpr/bytecode"
	"github.com/deepnoodle-ai/quantexpr/errz"
	"github.com/deepnoodle-ai/quantexpr/object"
	"github.com/deepnoodle-ai/quantexpr/op"
)

// MaxStackDepth is the operand stack capacity.
const MaxStackDepth = 1024

// VirtualMachine executes one compiled expression at a time. A VM may be
// reused for sequential runs but is not safe for concurrent use; run
// independent pipelines on separate goroutines instead.
type VirtualMachine struct {
	ip             int   // instruction pointer
	sp             int   // stack pointer
	halt           int32 // set when the context is cancelled
	main           *bytecode.Code
	functions      map[string]*object.Builtin
	inputVariables map[string]interface{}
	variables      map[string]object.Object
	running        bool
	runMutex       sync.Mutex
	stack          [MaxStackDepth]object.Object
}

// New creates a Virtual Machine for the given compiled expression. An
// error is returned if a provided variable cannot be converted to an
// engine value.
func New(main *bytecode.Code, options ...Option) (*VirtualMachine, error) {
	vm := &VirtualMachine{
		sp:             -1,
		main:           main,
		functions:      map[string]*object.Builtin{},
		inputVariables: map[string]interface{}{},
	}
	for _, opt := range options {
		opt(vm)
	}
	var err error
	vm.variables, err = object.AsObjects(vm.inputVariables)
	if err != nil {
		return nil, err
	}
	return vm, nil
}

// Run executes the expression and returns the resulting value. The result
// is nil if the instruction stream leaves the stack empty. The stack and
// any partial results from a failed run are discarded.
func (vm *VirtualMachine) Run(ctx context.Context) (result object.Object, err error) {
	if err := vm.start(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		vm.stop()
	}()
	return vm.eval(ctx)
}

func (vm *VirtualMachine) start(ctx context.Context) error {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if vm.running {
		return fmt.Errorf("vm is already running")
	}
	vm.running = true
	vm.ip = 0
	vm.sp = -1
	vm.halt = 0
	// Halt execution when the context is cancelled
	if doneChan := ctx.Done(); doneChan != nil {
		go func() {
			<-doneChan
			atomic.StoreInt32(&vm.halt, 1)
		}()
	}
	return nil
}

func (vm *VirtualMachine) stop() {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	vm.running = false
}

func (vm *VirtualMachine) eval(ctx context.Context) (object.Object, error) {
	count := vm.main.InstructionCount()
	for vm.ip < count {
		if atomic.LoadInt32(&vm.halt) == 1 {
			return nil, ctx.Err()
		}

		in := vm.main.InstructionAt(vm.ip)
		vm.ip++

		switch in.Op {
		case op.Nop:

		case op.PushInt:
			if err := vm.push(object.NewInt(in.Int)); err != nil {
				return nil, err
			}
		case op.PushFloat:
			if err := vm.push(object.NewFloat(in.Float)); err != nil {
				return nil, err
			}
		case op.PushBool:
			if err := vm.push(object.NewBool(in.Bool)); err != nil {
				return nil, err
			}
		case op.PushString:
			if err := vm.push(object.NewString(in.Str)); err != nil {
				return nil, err
			}
		case op.PushArray:
			if err := vm.push(object.NewFloatSlice(in.Floats)); err != nil {
				return nil, err
			}
		case op.PushMap:
			items, err := object.AsObjects(in.Map)
			if err != nil {
				return nil, errz.RuntimeErrorf("invalid map operand: %v", err)
			}
			if err := vm.push(object.NewMap(items)); err != nil {
				return nil, err
			}

		case op.Add, op.Sub, op.Mul, op.Div, op.Mod, op.Pow:
			if err := vm.evalArithmetic(in.Op); err != nil {
				return nil, err
			}

		case op.Eq, op.Ne, op.Gt, op.Ge, op.Lt, op.Le:
			if err := vm.evalComparison(in.Op); err != nil {
				return nil, err
			}

		case op.And, op.Or:
			// Both operands were already evaluated and pushed; the logical
			// operators never short-circuit.
			if err := vm.evalLogical(in.Op); err != nil {
				return nil, err
			}

		case op.Not:
			obj, err := vm.pop()
			if err != nil {
				return nil, err
			}
			v, errObj := object.AsBool(obj)
			if errObj != nil {
				return nil, errObj
			}
			if err := vm.push(object.NewBool(!v)); err != nil {
				return nil, err
			}

		case op.Call:
			if err := vm.evalCall(in); err != nil {
				return nil, err
			}

		case op.GetProperty:
			obj, err := vm.pop()
			if err != nil {
				return nil, err
			}
			m, ok := obj.(*object.Map)
			if !ok {
				return nil, errz.RuntimeErrorf("property access on non-map value (got %s)", obj.Type())
			}
			value, found := m.Get(in.Str)
			if !found {
				return nil, errz.RuntimeErrorf("undefined property %q", in.Str)
			}
			if err := vm.push(value); err != nil {
				return nil, err
			}

		case op.LoadVariable:
			value, found := vm.variables[in.Str]
			if !found {
				return nil, errz.RuntimeErrorf("undefined variable %q", in.Str)
			}
			if err := vm.push(value); err != nil {
				return nil, err
			}

		case op.StoreVariable:
			value, err := vm.pop()
			if err != nil {
				return nil, err
			}
			vm.variables[in.Str] = value

		case op.Jump:
			if err := vm.jump(in.Target, count); err != nil {
				return nil, err
			}

		case op.JumpIfTrue, op.JumpIfFalse:
			obj, err := vm.pop()
			if err != nil {
				return nil, err
			}
			v, errObj := object.AsBool(obj)
			if errObj != nil {
				return nil, errObj
			}
			if v == (in.Op == op.JumpIfTrue) {
				if err := vm.jump(in.Target, count); err != nil {
					return nil, err
				}
			}

		case op.Return:
			return vm.pop()

		default:
			return nil, errz.RuntimeErrorf("unknown opcode 0x%02x", byte(in.Op))
		}
	}
	if vm.sp < 0 {
		return nil, nil
	}
	return vm.stack[vm.sp], nil
}

func (vm *VirtualMachine) evalArithmetic(opcode op.Code) error {
	right, left, err := vm.popPair()
	if err != nil {
		return err
	}
	l, errObj := object.AsFloat(left)
	if errObj != nil {
		return errObj
	}
	r, errObj := object.AsFloat(right)
	if errObj != nil {
		return errObj
	}
	var result float64
	switch opcode {
	case op.Add:
		result = l + r
	case op.Sub:
		result = l - r
	case op.Mul:
		result = l * r
	case op.Div:
		if r == 0 {
			return errz.RuntimeErrorf("division by zero")
		}
		result = l / r
	case op.Mod:
		if r == 0 {
			return errz.RuntimeErrorf("modulo by zero")
		}
		result = math.Mod(l, r)
	case op.Pow:
		result = math.Pow(l, r)
	}
	return vm.push(object.NewFloat(result))
}

func (vm *VirtualMachine) evalComparison(opcode op.Code) error {
	right, left, err := vm.popPair()
	if err != nil {
		return err
	}
	l, errObj := object.AsFloat(left)
	if errObj != nil {
		return errObj
	}
	r, errObj := object.AsFloat(right)
	if errObj != nil {
		return errObj
	}
	var result bool
	switch opcode {
	case op.Eq:
		result = l == r
	case op.Ne:
		result = l != r
	case op.Gt:
		result = l > r
	case op.Ge:
		result = l >= r
	case op.Lt:
		result = l < r
	case op.Le:
		result = l <= r
	}
	return vm.push(object.NewBool(result))
}

func (vm *VirtualMachine) evalLogical(opcode op.Code) error {
	right, left, err := vm.popPair()
	if err != nil {
		return err
	}
	l, errObj := object.AsBool(left)
	if errObj != nil {
		return errObj
	}
	r, errObj := object.AsBool(right)
	if errObj != nil {
		return errObj
	}
	if opcode == op.And {
		return vm.push(object.NewBool(l && r))
	}
	return vm.push(object.NewBool(l || r))
}

// evalCall pops argc values, reverses them to restore written argument
// order, and invokes the named builtin from the registry. Callee errors are
// prefixed with the builtin's registered name.
func (vm *VirtualMachine) evalCall(in bytecode.Instruction) error {
	builtin, found := vm.functions[in.Str]
	if !found {
		return errz.RuntimeErrorf("undefined function %q", in.Str)
	}
	args := make([]object.Object, in.Argc)
	for i := in.Argc - 1; i >= 0; i-- {
		obj, err := vm.pop()
		if err != nil {
			return err
		}
		args[i] = obj
	}
	result, err := builtin.Call(args)
	if err != nil {
		return fmt.Errorf("%s: %w", builtin.Name(), err)
	}
	return vm.push(result)
}

func (vm *VirtualMachine) jump(target, count int) error {
	if target < 0 || target > count {
		return errz.RuntimeErrorf("jump target %d out of range", target)
	}
	vm.ip = target
	return nil
}

func (vm *VirtualMachine) push(obj object.Object) error {
	if vm.sp >= MaxStackDepth-1 {
		return errz.RuntimeErrorf("stack overflow")
	}
	vm.sp++
	vm.stack[vm.sp] = obj
	return nil
}

func (vm *VirtualMachine) pop() (object.Object, error) {
	if vm.sp < 0 {
		return nil, errz.RuntimeErrorf("stack underflow")
	}
	obj := vm.stack[vm.sp]
	vm.stack[vm.sp] = nil
	vm.sp--
	return obj, nil
}

// popPair pops the right then the left operand of a binary instruction.
func (vm *VirtualMachine) popPair() (right, left object.Object, err error) {
	if right, err = vm.pop(); err != nil {
		return nil, nil, err
	}
	if left, err = vm.pop(); err != nil {
		return nil, nil, err
	}
	return right, left, nil
}
