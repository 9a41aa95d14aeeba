// Package lexer transforms rule expression text into a stream of tokens.
package lexer

import (
	"strings"

	"github.com/deepnoodle-ai/quantexpr/errz"
	"github.com/deepnoodle-ai/quantexpr/token"
)

// Lexer is used to tokenize an input string. Create one with New and then
// call Next repeatedly until an EOF token is returned.
type Lexer struct {
	input []rune

	// position of the rune in ch
	position int

	// position of the next rune to read
	readPosition int

	// current rune, or 0 at end of input
	ch rune

	// line and column of the current rune
	line   int
	column int
}

// New returns a Lexer for the given input.
func New(input string) *Lexer {
	l := &Lexer{input: []rune(input), column: -1}
	l.readRune()
	return l
}

// Next returns the next token from the input, or an error if the input
// contains a character that cannot begin any token.
func (l *Lexer) Next() (token.Token, error) {
	l.skipWhitespace()

	start := l.currentPosition()

	switch l.ch {
	case 0:
		return l.newToken(token.EOF, "", start), nil
	case '=':
		if l.peekRune() == '=' {
			l.readRune()
			l.readRune()
			return l.newToken(token.EQ, "==", start), nil
		}
		return token.Token{}, l.illegalRune(start)
	case '!':
		if l.peekRune() == '=' {
			l.readRune()
			l.readRune()
			return l.newToken(token.NOT_EQ, "!=", start), nil
		}
		return token.Token{}, l.illegalRune(start)
	case '>':
		if l.peekRune() == '=' {
			l.readRune()
			l.readRune()
			return l.newToken(token.GT_EQUALS, ">=", start), nil
		}
		l.readRune()
		return l.newToken(token.GT, ">", start), nil
	case '<':
		if l.peekRune() == '=' {
			l.readRune()
			l.readRune()
			return l.newToken(token.LT_EQUALS, "<=", start), nil
		}
		l.readRune()
		return l.newToken(token.LT, "<", start), nil
	case '+':
		l.readRune()
		return l.newToken(token.PLUS, "+", start), nil
	case '-':
		l.readRune()
		return l.newToken(token.MINUS, "-", start), nil
	case '*':
		l.readRune()
		return l.newToken(token.ASTERISK, "*", start), nil
	case '/':
		l.readRune()
		return l.newToken(token.SLASH, "/", start), nil
	case '%':
		l.readRune()
		return l.newToken(token.MOD, "%", start), nil
	case '^':
		l.readRune()
		return l.newToken(token.CARET, "^", start), nil
	case '(':
		l.readRune()
		return l.newToken(token.LPAREN, "(", start), nil
	case ')':
		l.readRune()
		return l.newToken(token.RPAREN, ")", start), nil
	case ',':
		l.readRune()
		return l.newToken(token.COMMA, ",", start), nil
	case ':':
		l.readRune()
		return l.newToken(token.COLON, ":", start), nil
	case '.':
		l.readRune()
		return l.newToken(token.PERIOD, ".", start), nil
	case '"':
		return l.readString(start)
	}

	if isDigit(l.ch) {
		return l.readNumber(start)
	}
	if isIdentStart(l.ch) {
		return l.readIdentifier(start)
	}
	return token.Token{}, l.illegalRune(start)
}

func (l *Lexer) illegalRune(pos token.Position) error {
	return errz.SyntaxErrorf("unexpected character %q (line %d, column %d)",
		string(l.ch), pos.LineNumber(), pos.ColumnNumber())
}

func (l *Lexer) newToken(typ token.Type, literal string, start token.Position) token.Token {
	return token.Token{
		Type:          typ,
		Literal:       literal,
		StartPosition: start,
		EndPosition:   start.Advance(len(literal)),
	}
}

func (l *Lexer) currentPosition() token.Position {
	return token.Position{Char: l.position, Line: l.line, Column: l.column}
}

func (l *Lexer) readRune() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.column++
		return
	}
	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
	l.ch = l.input[l.readPosition]
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) peekRune() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readRune()
	}
}

// readNumber reads an integer or float literal. A period only continues the
// number when followed by a digit, so "obj.key" and "10.x" lex the period as
// a property access token.
func (l *Lexer) readNumber(start token.Position) (token.Token, error) {
	var sb strings.Builder
	for isDigit(l.ch) {
		sb.WriteRune(l.ch)
		l.readRune()
	}
	isFloat := false
	if l.ch == '.' && isDigit(l.peekRune()) {
		isFloat = true
		sb.WriteRune('.')
		l.readRune()
		for isDigit(l.ch) {
			sb.WriteRune(l.ch)
			l.readRune()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		peek := l.peekRune()
		if isDigit(peek) || peek == '+' || peek == '-' {
			isFloat = true
			sb.WriteRune(l.ch)
			l.readRune()
			if l.ch == '+' || l.ch == '-' {
				sb.WriteRune(l.ch)
				l.readRune()
			}
			if !isDigit(l.ch) {
				return token.Token{}, errz.SyntaxErrorf(
					"invalid number literal %q (line %d, column %d)",
					sb.String(), start.LineNumber(), start.ColumnNumber())
			}
			for isDigit(l.ch) {
				sb.WriteRune(l.ch)
				l.readRune()
			}
		}
	}
	typ := token.Type(token.INT)
	if isFloat {
		typ = token.FLOAT
	}
	return l.newToken(typ, sb.String(), start), nil
}

func (l *Lexer) readString(start token.Position) (token.Token, error) {
	var sb strings.Builder
	l.readRune() // consume opening quote
	for l.ch != '"' {
		if l.ch == 0 {
			return token.Token{}, errz.SyntaxErrorf(
				"unterminated string (line %d, column %d)",
				start.LineNumber(), start.ColumnNumber())
		}
		if l.ch == '\\' {
			l.readRune()
			switch l.ch {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '"':
				sb.WriteRune('"')
			case '\\':
				sb.WriteRune('\\')
			default:
				return token.Token{}, errz.SyntaxErrorf(
					"invalid escape sequence \\%s (line %d, column %d)",
					string(l.ch), l.line+1, l.column+1)
			}
			l.readRune()
			continue
		}
		sb.WriteRune(l.ch)
		l.readRune()
	}
	l.readRune() // consume closing quote
	value := sb.String()
	tok := token.Token{
		Type:          token.STRING,
		Literal:       value,
		StartPosition: start,
		EndPosition:   l.currentPosition(),
	}
	return tok, nil
}

func (l *Lexer) readIdentifier(start token.Position) (token.Token, error) {
	var sb strings.Builder
	for isIdentStart(l.ch) || isDigit(l.ch) {
		sb.WriteRune(l.ch)
		l.readRune()
	}
	literal := sb.String()
	typ := token.LookupIdent(strings.ToLower(literal))
	return l.newToken(typ, literal, start), nil
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
