// Package compiler is used to compile a rule expression parse tree into the
// corresponding bytecode.
//
// The compiler walks the tree once and emits a flat instruction sequence in
// postfix order: operands first, then the operator. It performs no constant
// folding and no type checking; all type errors surface at execution time.
// The same instruction sequence is consumed by the bytecode VM and by the
// JIT, which implement the identical per-instruction contract.
package compiler

import (
	"github.com/deepnoodle-ai/quantexpr/ast"
	"github.com/deepnoodle-ai/quantexpr/bytecode"
	"github.com/deepnoodle-ai/quantexpr/errz"
	"github.com/deepnoodle-ai/quantexpr/op"
)

var infixOps = map[string]op.Code{
	"+":   op.Add,
	"-":   op.Sub,
	"*":   op.Mul,
	"/":   op.Div,
	"%":   op.Mod,
	"^":   op.Pow,
	"==":  op.Eq,
	"!=":  op.Ne,
	">":   op.Gt,
	">=":  op.Ge,
	"<":   op.Lt,
	"<=":  op.Le,
	"AND": op.And,
	"OR":  op.Or,
}

// Compiler lowers a parse tree to bytecode. A Compiler should be used only
// once; create a new one for each expression.
type Compiler struct {
	instructions []bytecode.Instruction
	source       string
}

// Option is a configuration function for a Compiler.
type Option func(*Compiler)

// WithSource attaches the original source text to the compiled code, for
// disassembly and error reporting.
func WithSource(source string) Option {
	return func(c *Compiler) {
		c.source = source
	}
}

// New returns a new Compiler with the given options.
func New(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile is a shorthand to compile a parse tree in a single call.
func Compile(expr ast.Expr, opts ...Option) (*bytecode.Code, error) {
	return New(opts...).Compile(expr)
}

// Compile lowers the given parse tree and returns the compiled code.
func (c *Compiler) Compile(expr ast.Expr) (*bytecode.Code, error) {
	if err := c.compile(expr); err != nil {
		return nil, err
	}
	return bytecode.NewCode(bytecode.CodeParams{
		Source:       c.source,
		Instructions: c.instructions,
	}), nil
}

func (c *Compiler) compile(node ast.Expr) error {
	switch node := node.(type) {
	case *ast.Int:
		// Numeric literals always compile to a float push. Arithmetic
		// operates on floats in both execution backends.
		c.emit(bytecode.Instruction{Op: op.PushFloat, Float: float64(node.Value)})
	case *ast.Float:
		c.emit(bytecode.Instruction{Op: op.PushFloat, Float: node.Value})
	case *ast.Bool:
		c.emit(bytecode.Instruction{Op: op.PushBool, Bool: node.Value})
	case *ast.String:
		c.emit(bytecode.Instruction{Op: op.PushString, Str: node.Value})
	case *ast.Ident:
		c.emit(bytecode.Instruction{Op: op.LoadVariable, Str: node.Name})
	case *ast.Prefix:
		return c.compilePrefix(node)
	case *ast.Infix:
		return c.compileInfix(node)
	case *ast.Call:
		return c.compileCall(node)
	case *ast.GetAttr:
		if err := c.compile(node.X); err != nil {
			return err
		}
		c.emit(bytecode.Instruction{Op: op.GetProperty, Str: node.Name})
	default:
		return errz.CompileErrorf("unsupported expression node %T", node)
	}
	return nil
}

func (c *Compiler) compilePrefix(node *ast.Prefix) error {
	switch node.Op {
	case "NOT":
		if err := c.compile(node.X); err != nil {
			return err
		}
		c.emit(bytecode.Instruction{Op: op.Not})
	case "-":
		// There is no negate opcode. Unary minus lowers to 0 - x.
		c.emit(bytecode.Instruction{Op: op.PushFloat, Float: 0})
		if err := c.compile(node.X); err != nil {
			return err
		}
		c.emit(bytecode.Instruction{Op: op.Sub})
	default:
		return errz.CompileErrorf("unsupported prefix operator %q", node.Op)
	}
	return nil
}

func (c *Compiler) compileInfix(node *ast.Infix) error {
	code, ok := infixOps[node.Op]
	if !ok {
		return errz.CompileErrorf("unsupported infix operator %q", node.Op)
	}
	if err := c.compile(node.X); err != nil {
		return err
	}
	if err := c.compile(node.Y); err != nil {
		return err
	}
	c.emit(bytecode.Instruction{Op: code})
	return nil
}

// compileCall emits each argument value in written order followed by one
// Call instruction. Argument names are cosmetic; arguments are passed
// positionally.
func (c *Compiler) compileCall(node *ast.Call) error {
	for _, arg := range node.Args {
		if err := c.compile(arg.Value); err != nil {
			return err
		}
	}
	c.emit(bytecode.Instruction{
		Op:   op.Call,
		Str:  node.Fun.Name,
		Argc: len(node.Args),
	})
	return nil
}

func (c *Compiler) emit(in bytecode.Instruction) {
	c.instructions = append(c.instructions, in)
}
