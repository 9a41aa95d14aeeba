package jit

import (
	"math"
	"reflect"

	"github.com/deepnoodle-ai/quantexpr/bytecode"
	"github.com/deepnoodle-ai/quantexpr/errz"
	"github.com/deepnoodle-ai/quantexpr/op"
	"github.com/rs/zerolog"
)

// Compiler translates bytecode into native functions. It is created by
// Builder.Build and is immutable and safe for concurrent use.
type Compiler struct {
	functions map[string]*linkEntry
	variables map[string]*float64
	logger    zerolog.Logger
}

// compileState tracks one compilation: the fragment stack mirroring the
// VM's operand stack, and the variable slot table. Slots are assigned the
// first time a name is loaded; repeat loads of the same name share the
// slot. The table is scoped to this one compilation.
type compileState struct {
	stack     []fragment
	slots     map[string]int
	slotNames []string
}

// Compile translates the given bytecode into a Function. Instructions
// outside the JIT subset, calls of unregistered functions, and argument
// count mismatches produce a Compile error.
func (c *Compiler) Compile(code *bytecode.Code) (*Function, error) {
	st := &compileState{slots: map[string]int{}}
	count := code.InstructionCount()
	for i := 0; i < count; i++ {
		in := code.InstructionAt(i)
		c.logger.Debug().
			Int("index", i).
			Str("instruction", in.String()).
			Msg("lowering instruction")
		stop, err := c.lower(st, in)
		if err != nil {
			return nil, err
		}
		if stop {
			break
		}
	}
	if len(st.stack) == 0 {
		return nil, errz.CompileErrorf("expression produces no value")
	}
	result := st.stack[len(st.stack)-1]
	return &Function{fn: result, slotNames: st.slotNames}, nil
}

func (c *Compiler) lower(st *compileState, in bytecode.Instruction) (stop bool, err error) {
	switch in.Op {
	case op.Nop:

	case op.PushInt:
		v := float64(in.Int)
		st.push(func(env []uint64) (float64, error) { return v, nil })
	case op.PushFloat:
		v := in.Float
		st.push(func(env []uint64) (float64, error) { return v, nil })
	case op.PushBool:
		v := 0.0
		if in.Bool {
			v = 1.0
		}
		st.push(func(env []uint64) (float64, error) { return v, nil })

	case op.Add, op.Sub, op.Mul, op.Div, op.Mod, op.Pow:
		return false, c.lowerArithmetic(st, in.Op)

	case op.Eq, op.Ne, op.Gt, op.Ge, op.Lt, op.Le:
		return false, c.lowerComparison(st, in.Op)

	case op.And, op.Or:
		return false, c.lowerLogical(st, in.Op)

	case op.Not:
		x, err := st.pop(in.Op)
		if err != nil {
			return false, err
		}
		st.push(func(env []uint64) (float64, error) {
			v, err := x(env)
			if err != nil {
				return 0, err
			}
			if v == 0 {
				return 1, nil
			}
			return 0, nil
		})

	case op.LoadVariable:
		c.lowerLoad(st, in.Str)

	case op.Call:
		return false, c.lowerCall(st, in)

	case op.Return:
		return true, nil

	default:
		return false, errz.CompileErrorf(
			"instruction %s is not supported by the JIT", op.GetInfo(in.Op).Name)
	}
	return false, nil
}

// lowerLoad compiles a variable reference. Names registered with
// AddVariable read their bound pointer at call time; all other names are
// assigned an environment slot on first sight.
func (c *Compiler) lowerLoad(st *compileState, name string) {
	if ptr, ok := c.variables[name]; ok {
		st.push(func(env []uint64) (float64, error) { return *ptr, nil })
		return
	}
	slot, ok := st.slots[name]
	if !ok {
		slot = len(st.slotNames)
		st.slots[name] = slot
		st.slotNames = append(st.slotNames, name)
	}
	st.push(func(env []uint64) (float64, error) {
		if slot >= len(env) {
			return 0, errz.RuntimeErrorf("environment has no slot for variable %q", name)
		}
		return math.Float64frombits(env[slot]), nil
	})
}

func (c *Compiler) lowerArithmetic(st *compileState, opcode op.Code) error {
	x, y, err := st.popPair(opcode)
	if err != nil {
		return err
	}
	var apply func(l, r float64) (float64, error)
	switch opcode {
	case op.Add:
		apply = func(l, r float64) (float64, error) { return l + r, nil }
	case op.Sub:
		apply = func(l, r float64) (float64, error) { return l - r, nil }
	case op.Mul:
		apply = func(l, r float64) (float64, error) { return l * r, nil }
	case op.Div:
		apply = func(l, r float64) (float64, error) {
			if r == 0 {
				return 0, errz.RuntimeErrorf("division by zero")
			}
			return l / r, nil
		}
	case op.Mod:
		apply = func(l, r float64) (float64, error) {
			if r == 0 {
				return 0, errz.RuntimeErrorf("modulo by zero")
			}
			return math.Mod(l, r), nil
		}
	case op.Pow:
		apply = func(l, r float64) (float64, error) { return pow(l, r), nil }
	}
	st.push(func(env []uint64) (float64, error) {
		l, err := x(env)
		if err != nil {
			return 0, err
		}
		r, err := y(env)
		if err != nil {
			return 0, err
		}
		return apply(l, r)
	})
	return nil
}

func (c *Compiler) lowerComparison(st *compileState, opcode op.Code) error {
	x, y, err := st.popPair(opcode)
	if err != nil {
		return err
	}
	var apply func(l, r float64) bool
	switch opcode {
	case op.Eq:
		apply = func(l, r float64) bool { return l == r }
	case op.Ne:
		apply = func(l, r float64) bool { return l != r }
	case op.Gt:
		apply = func(l, r float64) bool { return l > r }
	case op.Ge:
		apply = func(l, r float64) bool { return l >= r }
	case op.Lt:
		apply = func(l, r float64) bool { return l < r }
	case op.Le:
		apply = func(l, r float64) bool { return l <= r }
	}
	st.push(func(env []uint64) (float64, error) {
		l, err := x(env)
		if err != nil {
			return 0, err
		}
		r, err := y(env)
		if err != nil {
			return 0, err
		}
		if apply(l, r) {
			return 1, nil
		}
		return 0, nil
	})
	return nil
}

func (c *Compiler) lowerLogical(st *compileState, opcode op.Code) error {
	x, y, err := st.popPair(opcode)
	if err != nil {
		return err
	}
	and := opcode == op.And
	// Both operand fragments are always evaluated; no short-circuit.
	st.push(func(env []uint64) (float64, error) {
		l, err := x(env)
		if err != nil {
			return 0, err
		}
		r, err := y(env)
		if err != nil {
			return 0, err
		}
		var result bool
		if and {
			result = l != 0 && r != 0
		} else {
			result = l != 0 || r != 0
		}
		if result {
			return 1, nil
		}
		return 0, nil
	})
	return nil
}

// lowerCall compiles a call through a pre-linked entry. Argument values
// are converted to the declared parameter types and the single return
// value is widened back to float64 for the value stack.
func (c *Compiler) lowerCall(st *compileState, in bytecode.Instruction) error {
	entry, ok := c.functions[in.Str]
	if !ok {
		return errz.CompileErrorf("function %q is not registered", in.Str)
	}
	if in.Argc != len(entry.params) {
		return errz.CompileErrorf("function %q takes %d arguments (got %d)",
			in.Str, len(entry.params), in.Argc)
	}
	args := make([]fragment, in.Argc)
	for i := in.Argc - 1; i >= 0; i-- {
		frag, err := st.pop(in.Op)
		if err != nil {
			return err
		}
		args[i] = frag
	}
	fn := entry.fn
	params := entry.params
	isI64 := entry.returns == I64
	st.push(func(env []uint64) (float64, error) {
		in := make([]reflect.Value, len(args))
		for i, arg := range args {
			v, err := arg(env)
			if err != nil {
				return 0, err
			}
			if params[i] == I64 {
				in[i] = reflect.ValueOf(int64(v))
			} else {
				in[i] = reflect.ValueOf(v)
			}
		}
		out := fn.Call(in)
		if isI64 {
			return float64(out[0].Int()), nil
		}
		return out[0].Float(), nil
	})
	return nil
}

// pow computes l**r with a terminating algorithm for every input: integer
// exponents use repeated squaring, negative integer exponents take the
// reciprocal, and non-integer exponents fall back to the real-valued
// power function.
func pow(l, r float64) float64 {
	if r == math.Trunc(r) && !math.IsInf(r, 0) && math.Abs(r) <= 1<<30 {
		n := int64(r)
		negative := n < 0
		if negative {
			n = -n
		}
		result := 1.0
		base := l
		for n > 0 {
			if n&1 == 1 {
				result *= base
			}
			base *= base
			n >>= 1
		}
		if negative {
			return 1 / result
		}
		return result
	}
	return math.Pow(l, r)
}

func (st *compileState) push(f fragment) {
	st.stack = append(st.stack, f)
}

func (st *compileState) pop(opcode op.Code) (fragment, error) {
	if len(st.stack) == 0 {
		return nil, errz.CompileErrorf(
			"%s has no operand (malformed instruction stream)", op.GetInfo(opcode).Name)
	}
	f := st.stack[len(st.stack)-1]
	st.stack = st.stack[:len(st.stack)-1]
	return f, nil
}

// popPair pops the right then the left operand fragment of a binary
// instruction.
func (st *compileState) popPair(opcode op.Code) (left, right fragment, err error) {
	if right, err = st.pop(opcode); err != nil {
		return nil, nil, err
	}
	if left, err = st.pop(opcode); err != nil {
		return nil, nil, err
	}
	return left, right, nil
}
