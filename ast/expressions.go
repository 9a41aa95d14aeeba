package ast

import (
	"strings"

	"github.com/deepnoodle-ai/quantexpr/token"
)

// Ident is an expression node that refers to a variable by name. A bare
// identifier is a valid expression on its own.
type Ident struct {
	NamePos token.Position // position of the identifier
	Name    string         // the identifier text
}

func (x *Ident) exprNode() {}

func (x *Ident) Pos() token.Position { return x.NamePos }
func (x *Ident) End() token.Position { return x.NamePos.Advance(len(x.Name)) }

func (x *Ident) String() string { return x.Name }

// Prefix is an expression node for a unary operation: NOT x or -x.
type Prefix struct {
	OpPos token.Position // position of the operator
	Op    string         // "NOT" or "-"
	X     Expr           // operand
}

func (x *Prefix) exprNode() {}

func (x *Prefix) Pos() token.Position { return x.OpPos }
func (x *Prefix) End() token.Position { return x.X.End() }

func (x *Prefix) String() string {
	if x.Op == "-" {
		return "-" + x.X.String()
	}
	return x.Op + " " + x.X.String()
}

// Infix is an expression node for a binary operation: arithmetic,
// comparison, or logical.
type Infix struct {
	X     Expr           // left operand
	OpPos token.Position // position of the operator
	Op    string         // "+", "AND", "==", ...
	Y     Expr           // right operand
}

func (x *Infix) exprNode() {}

func (x *Infix) Pos() token.Position { return x.X.Pos() }
func (x *Infix) End() token.Position { return x.Y.End() }

func (x *Infix) String() string {
	return x.X.String() + " " + x.Op + " " + x.Y.String()
}

// Arg is one argument in a function call. Arguments may optionally be
// named: sma(period: 14). The name is cosmetic; arguments are passed
// positionally in written order.
type Arg struct {
	Name  string // optional argument name ("" if positional)
	Value Expr   // the argument value
}

// Call is an expression node for a function call.
type Call struct {
	Fun    *Ident         // the function name
	Args   []Arg          // arguments in written order
	RParen token.Position // position of the closing paren
}

func (x *Call) exprNode() {}

func (x *Call) Pos() token.Position { return x.Fun.Pos() }
func (x *Call) End() token.Position { return x.RParen.Advance(1) }

func (x *Call) String() string {
	var sb strings.Builder
	sb.WriteString(x.Fun.Name)
	sb.WriteString("(")
	for i, arg := range x.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		if arg.Name != "" {
			sb.WriteString(arg.Name)
			sb.WriteString(": ")
		}
		sb.WriteString(arg.Value.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// GetAttr is an expression node for one link of a property access chain:
// obj.key. Chains associate left, so a.b.c is GetAttr(GetAttr(a, b), c).
type GetAttr struct {
	X       Expr           // the base expression
	NamePos token.Position // position of the property name
	Name    string         // the property name
}

func (x *GetAttr) exprNode() {}

func (x *GetAttr) Pos() token.Position { return x.X.Pos() }
func (x *GetAttr) End() token.Position { return x.NamePos.Advance(len(x.Name)) }

func (x *GetAttr) String() string { return x.X.String() + "." + x.Name }
