// Package parser is used to generate the parse tree for a rule expression.
//
// A parser is created by calling New() with a lexer as input. The parser
// should then be used only once, by calling parser.Parse() to produce the
// parse tree.
package parser

import (
	"context"
	"fmt"
	"strconv"

	"github.com/deepnoodle-ai/quantexpr/ast"
	"github.com/deepnoodle-ai/quantexpr/errz"
	"github.com/deepnoodle-ai/quantexpr/internal/lexer"
	"github.com/deepnoodle-ai/quantexpr/token"
	"github.com/hashicorp/go-multierror"
)

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// DefaultMaxDepth is the default maximum nesting depth for parsing.
// This prevents stack overflow on deeply nested input.
const DefaultMaxDepth = 500

// Parse the provided input as a rule expression and return the parse tree.
// This is a shorthand way to create a Lexer and Parser and then call Parse
// on that.
func Parse(ctx context.Context, input string) (ast.Expr, error) {
	return New(lexer.New(input)).Parse(ctx)
}

// Parser transforms a token stream into a parse tree.
type Parser struct {
	// l is our lexer
	l *lexer.Lexer

	// curToken holds the current token from the lexer.
	curToken token.Token

	// peekToken holds the next token from the lexer.
	peekToken token.Token

	// parsing errors collected during parsing
	errors []error

	// current nesting depth, guarded against maxDepth
	depth int

	// maximum nesting depth
	maxDepth int

	// prefixParseFns holds parsing methods keyed by token type, for tokens
	// that may begin an expression
	prefixParseFns map[token.Type]prefixParseFn

	// infixParseFns holds parsing methods keyed by token type, for tokens
	// that may continue an expression
	infixParseFns map[token.Type]infixParseFn
}

// New returns a Parser for the tokens produced by the given lexer.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, maxDepth: DefaultMaxDepth}

	p.prefixParseFns = map[token.Type]prefixParseFn{
		token.INT:    p.parseInt,
		token.FLOAT:  p.parseFloat,
		token.TRUE:   p.parseBool,
		token.FALSE:  p.parseBool,
		token.STRING: p.parseString,
		token.IDENT:  p.parseIdent,
		token.LPAREN: p.parseGroupedExpr,
		token.NOT:    p.parseNotExpr,
		token.MINUS:  p.parsePrefixExpr,
	}
	p.infixParseFns = map[token.Type]infixParseFn{
		token.PLUS:      p.parseInfixExpr,
		token.MINUS:     p.parseInfixExpr,
		token.ASTERISK:  p.parseInfixExpr,
		token.SLASH:     p.parseInfixExpr,
		token.MOD:       p.parseInfixExpr,
		token.CARET:     p.parseInfixExpr,
		token.EQ:        p.parseInfixExpr,
		token.NOT_EQ:    p.parseInfixExpr,
		token.GT:        p.parseInfixExpr,
		token.GT_EQUALS: p.parseInfixExpr,
		token.LT:        p.parseInfixExpr,
		token.LT_EQUALS: p.parseInfixExpr,
		token.AND:       p.parseLogicalExpr,
		token.OR:        p.parseLogicalExpr,
		token.LPAREN:    p.parseCallExpr,
		token.PERIOD:    p.parseGetAttrExpr,
	}

	// Prime curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

// Parse the input and return the root expression node. On failure all
// collected parse errors are returned and the parse tree is nil; partial
// trees are never returned.
func (p *Parser) Parse(ctx context.Context) (ast.Expr, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.curTokenIs(token.EOF) && len(p.errors) == 0 {
		return nil, errz.SyntaxErrorf("empty expression")
	}
	expr := p.parseExpression(LOWEST)
	if expr != nil && len(p.errors) == 0 {
		// parseExpression leaves curToken on the last consumed token, so a
		// well-formed input has exactly one trailing EOF token.
		p.nextToken()
		if !p.curTokenIs(token.EOF) {
			p.setTokenError(p.curToken, "unexpected token %q", p.curToken.Literal)
		}
	}
	if len(p.errors) > 0 {
		var result *multierror.Error
		for _, err := range p.errors {
			result = multierror.Append(result, err)
		}
		return nil, result.ErrorOrNil()
	}
	return expr, nil
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	tok, err := p.l.Next()
	if err != nil {
		p.errors = append(p.errors, err)
		tok = token.Token{Type: token.EOF, StartPosition: p.curToken.EndPosition}
	}
	p.peekToken = tok
}

func (p *Parser) curTokenIs(t token.Type) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.Type) bool {
	return p.peekToken.Type == t
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) currentPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) setTokenError(tok token.Token, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	p.errors = append(p.errors, errz.SyntaxErrorf("%s (line %d, column %d)",
		msg, tok.StartPosition.LineNumber(), tok.StartPosition.ColumnNumber()))
}

// parseExpression is the Pratt parsing core. It parses the expression
// beginning at curToken, consuming operators with precedence above the
// given level, and leaves curToken on the first unconsumed token.
func (p *Parser) parseExpression(precedence int) ast.Expr {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		p.setTokenError(p.curToken, "expression exceeds maximum nesting depth")
		return nil
	}

	prefix, ok := p.prefixParseFns[p.curToken.Type]
	if !ok {
		if p.curTokenIs(token.EOF) {
			p.setTokenError(p.curToken, "unexpected end of expression")
		} else {
			p.setTokenError(p.curToken, "unexpected token %q", p.curToken.Literal)
		}
		return nil
	}
	left := prefix()
	if left == nil {
		return nil
	}

	for !p.peekTokenIs(token.EOF) && precedence < p.peekPrecedence() {
		infix, ok := p.infixParseFns[p.peekToken.Type]
		if !ok {
			return left
		}
		p.nextToken()
		left = infix(left)
		if left == nil {
			return nil
		}
	}
	return left
}

func (p *Parser) parseInt() ast.Expr {
	tok := p.curToken
	value, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		p.setTokenError(tok, "invalid integer literal %q", tok.Literal)
		return nil
	}
	return &ast.Int{ValuePos: tok.StartPosition, Literal: tok.Literal, Value: value}
}

func (p *Parser) parseFloat() ast.Expr {
	tok := p.curToken
	value, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.setTokenError(tok, "invalid number literal %q", tok.Literal)
		return nil
	}
	return &ast.Float{ValuePos: tok.StartPosition, Literal: tok.Literal, Value: value}
}

func (p *Parser) parseBool() ast.Expr {
	tok := p.curToken
	return &ast.Bool{
		ValuePos: tok.StartPosition,
		Literal:  tok.Literal,
		Value:    tok.Type == token.TRUE,
	}
}

func (p *Parser) parseString() ast.Expr {
	tok := p.curToken
	return &ast.String{
		ValuePos: tok.StartPosition,
		EndPos:   tok.EndPosition,
		Value:    tok.Literal,
	}
}

func (p *Parser) parseIdent() ast.Expr {
	return &ast.Ident{NamePos: p.curToken.StartPosition, Name: p.curToken.Literal}
}

func (p *Parser) parseNotExpr() ast.Expr {
	tok := p.curToken
	p.nextToken()
	// NOT binds tighter than AND/OR but looser than comparisons, so the
	// operand is parsed one level below NOT itself.
	right := p.parseExpression(NOTPREC - 1)
	if right == nil {
		return nil
	}
	return &ast.Prefix{OpPos: tok.StartPosition, Op: "NOT", X: right}
}

func (p *Parser) parsePrefixExpr() ast.Expr {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(PREFIX)
	if right == nil {
		return nil
	}
	return &ast.Prefix{OpPos: tok.StartPosition, Op: tok.Literal, X: right}
}

func (p *Parser) parseInfixExpr(left ast.Expr) ast.Expr {
	tok := p.curToken
	precedence := p.currentPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	return &ast.Infix{X: left, OpPos: tok.StartPosition, Op: tok.Literal, Y: right}
}

// parseLogicalExpr builds AND/OR nodes. The operator literal is normalized
// to upper case so "and" and "AND" produce the same tree.
func (p *Parser) parseLogicalExpr(left ast.Expr) ast.Expr {
	tok := p.curToken
	op := "AND"
	if tok.Type == token.OR {
		op = "OR"
	}
	precedence := p.currentPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	return &ast.Infix{X: left, OpPos: tok.StartPosition, Op: op, Y: right}
}

func (p *Parser) parseGroupedExpr() ast.Expr {
	openParen := p.curToken
	p.nextToken()
	if p.curTokenIs(token.RPAREN) {
		p.setTokenError(openParen, "empty parentheses")
		return nil
	}
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if !p.peekTokenIs(token.RPAREN) {
		p.setTokenError(openParen, "unbalanced parentheses")
		return nil
	}
	p.nextToken()
	return expr
}

// parseCallExpr parses a function call. The callee must be a bare
// identifier; arguments may optionally be named with "name: value".
func (p *Parser) parseCallExpr(left ast.Expr) ast.Expr {
	fun, ok := left.(*ast.Ident)
	if !ok {
		p.setTokenError(p.curToken, "invalid function call target %q", left.String())
		return nil
	}
	lparen := p.curToken
	var args []ast.Arg
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return &ast.Call{Fun: fun, RParen: p.curToken.StartPosition}
	}
	for {
		p.nextToken()
		arg, ok := p.parseCallArg()
		if !ok {
			p.recoverToArgBoundary()
			if !p.curTokenIs(token.COMMA) {
				break
			}
			continue
		}
		args = append(args, arg)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if len(p.errors) > 0 {
		return nil
	}
	if !p.peekTokenIs(token.RPAREN) {
		p.setTokenError(lparen, "unbalanced parentheses in call arguments")
		return nil
	}
	p.nextToken()
	return &ast.Call{Fun: fun, Args: args, RParen: p.curToken.StartPosition}
}

func (p *Parser) parseCallArg() (ast.Arg, bool) {
	var name string
	if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.COLON) {
		name = p.curToken.Literal
		p.nextToken()
		p.nextToken()
	}
	value := p.parseExpression(LOWEST)
	if value == nil {
		return ast.Arg{}, false
	}
	return ast.Arg{Name: name, Value: value}, true
}

// recoverToArgBoundary skips ahead to the next comma, closing paren, or end
// of input so that multiple argument errors can be reported in one pass.
func (p *Parser) recoverToArgBoundary() {
	for !p.curTokenIs(token.COMMA) && !p.curTokenIs(token.RPAREN) && !p.curTokenIs(token.EOF) {
		p.nextToken()
	}
}

func (p *Parser) parseGetAttrExpr(left ast.Expr) ast.Expr {
	if !p.peekTokenIs(token.IDENT) {
		p.setTokenError(p.peekToken, "expected a property name after \".\"")
		return nil
	}
	p.nextToken()
	return &ast.GetAttr{
		X:       left,
		NamePos: p.curToken.StartPosition,
		Name:    p.curToken.Literal,
	}
}
