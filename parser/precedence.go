package parser

import "github.com/deepnoodle-ai/condense/internal/token"

// Operator precedence levels, lowest first. These mirror the ECMAScript
// operator table; the comma (sequence) operator binds loosest and member
// access / calls bind tightest.
const (
	LOWEST = iota
	SEQUENCE
	ASSIGNMENT
	TERNARY
	NULLISH
	LOGICAL_OR
	LOGICAL_AND
	BITWISE_OR
	BITWISE_XOR
	BITWISE_AND
	EQUALITY
	RELATIONAL
	SHIFT
	SUM
	PRODUCT
	EXPONENT
	UNARY
	POSTFIX
	CALL
)

var precedences = map[token.Type]int{
	token.COMMA: SEQUENCE,

	token.ASSIGN:       ASSIGNMENT,
	token.PLUS_EQ:      ASSIGNMENT,
	token.MINUS_EQ:     ASSIGNMENT,
	token.ASTERISK_EQ:  ASSIGNMENT,
	token.SLASH_EQ:     ASSIGNMENT,
	token.MOD_EQ:       ASSIGNMENT,
	token.POW_EQ:       ASSIGNMENT,
	token.LT_LT_EQ:     ASSIGNMENT,
	token.GT_GT_EQ:     ASSIGNMENT,
	token.GT_GT_GT_EQ:  ASSIGNMENT,
	token.AMPERSAND_EQ: ASSIGNMENT,
	token.PIPE_EQ:      ASSIGNMENT,
	token.CARET_EQ:     ASSIGNMENT,
	token.AND_EQ:       ASSIGNMENT,
	token.OR_EQ:        ASSIGNMENT,
	token.NULLISH_EQ:   ASSIGNMENT,

	token.QUESTION: TERNARY,

	token.NULLISH: NULLISH,
	token.OR:      LOGICAL_OR,
	token.AND:     LOGICAL_AND,

	token.PIPE:      BITWISE_OR,
	token.CARET:     BITWISE_XOR,
	token.AMPERSAND: BITWISE_AND,

	token.EQ:            EQUALITY,
	token.NOT_EQ:        EQUALITY,
	token.STRICT_EQ:     EQUALITY,
	token.STRICT_NOT_EQ: EQUALITY,

	token.LT:         RELATIONAL,
	token.LT_EQ:      RELATIONAL,
	token.GT:         RELATIONAL,
	token.GT_EQ:      RELATIONAL,
	token.IN:         RELATIONAL,
	token.INSTANCEOF: RELATIONAL,

	token.LT_LT:    SHIFT,
	token.GT_GT:    SHIFT,
	token.GT_GT_GT: SHIFT,

	token.PLUS:  SUM,
	token.MINUS: SUM,

	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.MOD:      PRODUCT,

	token.POW: EXPONENT,

	token.PLUS_PLUS:   POSTFIX,
	token.MINUS_MINUS: POSTFIX,

	token.LPAREN:          CALL,
	token.LBRACKET:        CALL,
	token.PERIOD:          CALL,
	token.QUESTION_DOT:    CALL,
	token.TEMPLATE_HEAD:   CALL,
	token.TEMPLATE_NO_SUB: CALL,
}

// assignOps maps assignment token types to their operator text.
var assignOps = map[token.Type]string{
	token.ASSIGN:       "=",
	token.PLUS_EQ:      "+=",
	token.MINUS_EQ:     "-=",
	token.ASTERISK_EQ:  "*=",
	token.SLASH_EQ:     "/=",
	token.MOD_EQ:       "%=",
	token.POW_EQ:       "**=",
	token.LT_LT_EQ:     "<<=",
	token.GT_GT_EQ:     ">>=",
	token.GT_GT_GT_EQ:  ">>>=",
	token.AMPERSAND_EQ: "&=",
	token.PIPE_EQ:      "|=",
	token.CARET_EQ:     "^=",
	token.AND_EQ:       "&&=",
	token.OR_EQ:        "||=",
	token.NULLISH_EQ:   "??=",
}
