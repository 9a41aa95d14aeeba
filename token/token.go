// Package token defines the tokens produced when lexing a rule expression.
package token

// Type describes the type of a token as a string.
type Type string

// Position points to a particular location in an input string.
type Position struct {
	Char   int // rune offset within the input
	Line   int // 0-indexed line
	Column int // 0-indexed column
}

// LineNumber returns the 1-indexed line number for this position.
func (p Position) LineNumber() int {
	return p.Line + 1
}

// ColumnNumber returns the 1-indexed column number for this position.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// Advance returns the position n runes further along the same line.
func (p Position) Advance(n int) Position {
	return Position{Char: p.Char + n, Line: p.Line, Column: p.Column + n}
}

// Token represents one token lexed from the input source.
type Token struct {
	Type          Type
	Literal       string
	StartPosition Position
	EndPosition   Position
}

// Token types
const (
	AND       = "AND"
	ASTERISK  = "*"
	CARET     = "^"
	COLON     = ":"
	COMMA     = ","
	EOF       = "EOF"
	EQ        = "=="
	FALSE     = "FALSE"
	FLOAT     = "FLOAT"
	GT        = ">"
	GT_EQUALS = ">="
	IDENT     = "IDENT"
	ILLEGAL   = "ILLEGAL"
	INT       = "INT"
	LPAREN    = "("
	LT        = "<"
	LT_EQUALS = "<="
	MINUS     = "-"
	MOD       = "%"
	NOT       = "NOT"
	NOT_EQ    = "!="
	OR        = "OR"
	PERIOD    = "."
	PLUS      = "+"
	RPAREN    = ")"
	SLASH     = "/"
	STRING    = "STRING"
	TRUE      = "TRUE"
)

// Keywords are matched case-insensitively: "AND", "and", and "And" are all
// the same token.
var keywords = map[string]Type{
	"and":   AND,
	"or":    OR,
	"not":   NOT,
	"true":  TRUE,
	"false": FALSE,
}

// LookupIdent checks whether the given (lowercased) identifier is a keyword
// and returns the corresponding token type, or IDENT if it is not.
func LookupIdent(lowered string) Type {
	if tok, ok := keywords[lowered]; ok {
		return tok
	}
	return IDENT
}
