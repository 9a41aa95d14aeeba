// Package ast defines the parse tree representation of a rule expression.
package ast

import "github.com/deepnoodle-ai/quantexpr/token"

// Node represents a portion of the parse tree. All nodes have position
// information indicating where they appear in the source text.
type Node interface {
	// Pos returns the position of the first character belonging to the node.
	Pos() token.Position

	// End returns the position of the first character immediately after the node.
	End() token.Position

	// String returns a human friendly representation of the Node. This should
	// be similar to the original source text, but not necessarily identical.
	String() string
}

// Expr represents an expression node. Every node in a rule expression
// evaluates to a value; there are no statements.
type Expr interface {
	Node
	exprNode()
}
