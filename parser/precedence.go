package parser

import "github.com/deepnoodle-ai/quantexpr/token"

// Precedence order for operators, low to high. NOT sits between AND and the
// comparison operators: "NOT a > b" negates the comparison, while
// "a AND NOT b" binds NOT to b only.
const (
	_ int = iota
	LOWEST
	LOGICALOR   // OR
	LOGICALAND  // AND
	NOTPREC    // NOT x
	COMPARISON // == != > >= < <=
	SUM        // + or -
	PRODUCT     // * / %
	POWER       // ^
	PREFIX      // -x
	CALL        // fn(x)
	INDEX       // obj.attr
)

// Precedences for each token type
var precedences = map[token.Type]int{
	token.OR:        LOGICALOR,
	token.AND:       LOGICALAND,
	token.EQ:        COMPARISON,
	token.NOT_EQ:    COMPARISON,
	token.GT:        COMPARISON,
	token.GT_EQUALS: COMPARISON,
	token.LT:        COMPARISON,
	token.LT_EQUALS: COMPARISON,
	token.PLUS:      SUM,
	token.MINUS:     SUM,
	token.ASTERISK:  PRODUCT,
	token.SLASH:     PRODUCT,
	token.MOD:       PRODUCT,
	token.CARET:     POWER,
	token.LPAREN:    CALL,
	token.PERIOD:    INDEX,
}
