package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/condense/internal/token"
)

func lexAll(t *testing.T, input string) []token.Token {
	t.Helper()
	l := New(input)
	var tokens []token.Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

func TestNextTokenBasics(t *testing.T) {
	input := `var x = 42;`
	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.VAR, "var"},
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.NUMBER, "42"},
		{token.SEMICOLON, ";"},
		{token.EOF, ""},
	}
	l := New(input)
	for i, tt := range tests {
		tok, err := l.Next()
		require.NoError(t, err)
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong, expected=%q, got=%q", i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong, expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestOperators(t *testing.T) {
	input := `=== !== => ?. ?? ??= >>> >>>= && || &&= ||= ** **= ...`
	expected := []token.Type{
		token.STRICT_EQ, token.STRICT_NOT_EQ, token.ARROW, token.QUESTION_DOT,
		token.NULLISH, token.NULLISH_EQ, token.GT_GT_GT, token.GT_GT_GT_EQ,
		token.AND, token.OR, token.AND_EQ, token.OR_EQ,
		token.POW, token.POW_EQ, token.SPREAD, token.EOF,
	}
	tokens := lexAll(t, input)
	require.Len(t, tokens, len(expected))
	for i, tok := range tokens {
		assert.Equal(t, expected[i], tok.Type, "token %d", i)
	}
}

func TestKeywords(t *testing.T) {
	tokens := lexAll(t, "function class typeof instanceof of from async")
	expected := []token.Type{
		token.FUNCTION, token.CLASS, token.TYPEOF, token.INSTANCEOF,
		// of, from, and async are contextual and lex as identifiers
		token.IDENT, token.IDENT, token.IDENT, token.EOF,
	}
	require.Len(t, tokens, len(expected))
	for i, tok := range tokens {
		assert.Equal(t, expected[i], tok.Type, "token %d", i)
	}
}

func TestComments(t *testing.T) {
	input := "a /* hello */ b // tail\nc"
	l := New(input)
	var types []token.Type
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		types = append(types, tok.Type)
		if tok.Type == token.EOF {
			break
		}
	}
	assert.Equal(t, []token.Type{
		token.IDENT, token.IDENT, token.NEWLINE, token.IDENT, token.EOF,
	}, types)

	comments := l.Comments()
	require.Len(t, comments, 2)
	assert.Equal(t, "/* hello */", comments[0].Text)
	assert.True(t, comments[0].Block)
	assert.Equal(t, 2, comments[0].StartPosition.Offset)
	assert.Equal(t, 13, comments[0].EndPosition.Offset)
	assert.Equal(t, "// tail", comments[1].Text)
	assert.False(t, comments[1].Block)
}

func TestTemplateLiterals(t *testing.T) {
	tokens := lexAll(t, "`a${x}b`")
	require.Len(t, tokens, 4)
	assert.Equal(t, token.Type(token.TEMPLATE_HEAD), tokens[0].Type)
	assert.Equal(t, "`a${", tokens[0].Literal)
	assert.Equal(t, token.Type(token.IDENT), tokens[1].Type)
	assert.Equal(t, token.Type(token.TEMPLATE_TAIL), tokens[2].Type)
	assert.Equal(t, "}b`", tokens[2].Literal)

	tokens = lexAll(t, "`plain`")
	require.Len(t, tokens, 2)
	assert.Equal(t, token.Type(token.TEMPLATE_NO_SUB), tokens[0].Type)
	assert.Equal(t, "`plain`", tokens[0].Literal)
}

func TestTemplateNestedBraces(t *testing.T) {
	tokens := lexAll(t, "`x${ {a: 1} }y`")
	types := make([]token.Type, 0, len(tokens))
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []token.Type{
		token.TEMPLATE_HEAD, token.LBRACE, token.IDENT, token.COLON,
		token.NUMBER, token.RBRACE, token.TEMPLATE_TAIL, token.EOF,
	}, types)
}

func TestRegexVsDivision(t *testing.T) {
	tokens := lexAll(t, "a / b")
	assert.Equal(t, token.Type(token.SLASH), tokens[1].Type)

	tokens = lexAll(t, "x = /ab+c/g")
	require.Len(t, tokens, 4)
	assert.Equal(t, token.Type(token.REGEX), tokens[2].Type)
	assert.Equal(t, "/ab+c/g", tokens[2].Literal)

	tokens = lexAll(t, "f(/[a-z]/)")
	assert.Equal(t, token.Type(token.REGEX), tokens[2].Type)
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input   string
		literal string
	}{
		{"42", "42"},
		{"3.14", "3.14"},
		{".5", ".5"},
		{"1e10", "1e10"},
		{"2.5e-3", "2.5e-3"},
		{"0xFF", "0xFF"},
		{"0b1010", "0b1010"},
		{"0o17", "0o17"},
		{"1_000_000", "1_000_000"},
		{"123n", "123n"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := lexAll(t, tt.input)
			require.Len(t, tokens, 2)
			assert.Equal(t, token.Type(token.NUMBER), tokens[0].Type)
			assert.Equal(t, tt.literal, tokens[0].Literal)
		})
	}
}

func TestStrings(t *testing.T) {
	tokens := lexAll(t, `'single' "double" "with \" escape"`)
	require.Len(t, tokens, 4)
	assert.Equal(t, `'single'`, tokens[0].Literal)
	assert.Equal(t, `"double"`, tokens[1].Literal)
	assert.Equal(t, `"with \" escape"`, tokens[2].Literal)
}

func TestNewlines(t *testing.T) {
	tokens := lexAll(t, "a\n\n\nb")
	types := make([]token.Type, 0, len(tokens))
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	// Runs of line terminators collapse into one NEWLINE token.
	assert.Equal(t, []token.Type{token.IDENT, token.NEWLINE, token.IDENT, token.EOF}, types)
}

func TestPositions(t *testing.T) {
	l := New("ab\ncd")
	tok, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, tok.StartPosition.Offset)
	assert.Equal(t, 1, tok.StartPosition.LineNumber())

	_, err = l.Next() // newline
	require.NoError(t, err)

	tok, err = l.Next()
	require.NoError(t, err)
	assert.Equal(t, 3, tok.StartPosition.Offset)
	assert.Equal(t, 2, tok.StartPosition.LineNumber())
	assert.Equal(t, 1, tok.StartPosition.ColumnNumber())
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"abc`)
	_, err := l.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated string")
}

func TestUnterminatedComment(t *testing.T) {
	l := New("/* abc")
	_, err := l.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated block comment")
}

func TestGetLineText(t *testing.T) {
	l := New("first\nsecond line\nthird")
	var tok token.Token
	var err error
	for i := 0; i < 3; i++ { // first, NEWLINE, second
		tok, err = l.Next()
		require.NoError(t, err)
	}
	assert.Equal(t, "second line", l.GetLineText(tok))
}

func TestSaveRestoreState(t *testing.T) {
	l := New("a b c")
	tok, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", tok.Literal)

	state := l.SaveState()
	tok, err = l.Next()
	require.NoError(t, err)
	assert.Equal(t, "b", tok.Literal)

	l.RestoreState(state)
	tok, err = l.Next()
	require.NoError(t, err)
	assert.Equal(t, "b", tok.Literal)
}
