package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/condense/ast"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	program, err := Parse(context.Background(), input)
	require.NoError(t, err)
	return program
}

func TestIdent(t *testing.T) {
	program := parse(t, "foobar;")
	require.Len(t, program.Stmts, 1)

	stmt, ok := program.First().(*ast.ExprStmt)
	require.True(t, ok)
	ident, ok := stmt.X.(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "foobar", ident.Name)
	assert.Equal(t, 0, ident.Pos().Offset)
	assert.Equal(t, 6, ident.End().Offset)
}

func TestVarDecl(t *testing.T) {
	program := parse(t, `var a = 1, b = "two";`)
	decl, ok := program.First().(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "var", decl.Keyword)
	require.Len(t, decl.Decls, 2)

	name, ok := decl.Decls[0].Name.(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "a", name.Name)
	num, ok := decl.Decls[0].Init.(*ast.Number)
	require.True(t, ok)
	assert.Equal(t, float64(1), num.Value)

	str, ok := decl.Decls[1].Init.(*ast.String)
	require.True(t, ok)
	assert.Equal(t, "two", str.Value)

	// The statement span includes the trailing semicolon
	assert.Equal(t, 0, decl.Pos().Offset)
	assert.Equal(t, 21, decl.End().Offset)
}

func TestLetConst(t *testing.T) {
	program := parse(t, "let a = 1;\nconst b = 2;")
	require.Len(t, program.Stmts, 2)
	assert.Equal(t, "let", program.Stmts[0].(*ast.VarDecl).Keyword)
	assert.Equal(t, "const", program.Stmts[1].(*ast.VarDecl).Keyword)
}

func TestFunctionDecl(t *testing.T) {
	program := parse(t, "function add(a, b) { return a + b; }")
	decl, ok := program.First().(*ast.FuncDecl)
	require.True(t, ok)
	require.NotNil(t, decl.Fn.Name)
	assert.Equal(t, "add", decl.Fn.Name.Name)
	require.Len(t, decl.Fn.Params, 2)
	require.Len(t, decl.Fn.Body.Stmts, 1)

	ret, ok := decl.Fn.Body.Stmts[0].(*ast.Return)
	require.True(t, ok)
	sum, ok := ret.Value.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, "+", sum.Op)
}

func TestFunctionExpr(t *testing.T) {
	program := parse(t, "var f = function(x) { return x; };")
	decl := program.First().(*ast.VarDecl)
	fn, ok := decl.Decls[0].Init.(*ast.FuncLit)
	require.True(t, ok)
	assert.Nil(t, fn.Name)
	assert.False(t, fn.Arrow)
}

func TestArrowFunctions(t *testing.T) {
	program := parse(t, "const f = (a, b) => a + b;")
	decl := program.First().(*ast.VarDecl)
	fn, ok := decl.Decls[0].Init.(*ast.FuncLit)
	require.True(t, ok)
	assert.True(t, fn.Arrow)
	require.Len(t, fn.Params, 2)
	require.NotNil(t, fn.ExprBody)

	program = parse(t, "const g = x => ({ value: x });")
	decl = program.First().(*ast.VarDecl)
	fn = decl.Decls[0].Init.(*ast.FuncLit)
	assert.True(t, fn.Arrow)
	require.Len(t, fn.Params, 1)

	program = parse(t, "const h = () => { return 1; };")
	decl = program.First().(*ast.VarDecl)
	fn = decl.Decls[0].Init.(*ast.FuncLit)
	assert.True(t, fn.Arrow)
	assert.Len(t, fn.Params, 0)
	require.NotNil(t, fn.Body)
}

func TestAsyncFunctions(t *testing.T) {
	program := parse(t, "async function go() { await x; }")
	decl, ok := program.First().(*ast.FuncDecl)
	require.True(t, ok)
	assert.True(t, decl.Fn.Async)

	program = parse(t, "const f = async (a) => a;")
	vd := program.First().(*ast.VarDecl)
	fn := vd.Decls[0].Init.(*ast.FuncLit)
	assert.True(t, fn.Async)
	assert.True(t, fn.Arrow)
}

func TestCallAndMember(t *testing.T) {
	program := parse(t, "console.log(x, y);")
	stmt := program.First().(*ast.ExprStmt)
	call, ok := stmt.X.(*ast.Call)
	require.True(t, ok)
	require.Len(t, call.Args, 2)

	member, ok := call.Fun.(*ast.Member)
	require.True(t, ok)
	assert.Equal(t, "log", member.Attr.Name)
	obj, ok := member.X.(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "console", obj.Name)
}

func TestMemberKeywordName(t *testing.T) {
	program := parse(t, "promise.catch(handler);")
	stmt := program.First().(*ast.ExprStmt)
	call := stmt.X.(*ast.Call)
	member := call.Fun.(*ast.Member)
	assert.Equal(t, "catch", member.Attr.Name)
}

func TestIndexExpr(t *testing.T) {
	program := parse(t, `registry["153"];`)
	stmt := program.First().(*ast.ExprStmt)
	idx, ok := stmt.X.(*ast.Index)
	require.True(t, ok)
	str, ok := idx.Index.(*ast.String)
	require.True(t, ok)
	assert.Equal(t, "153", str.Value)
}

func TestOptionalChaining(t *testing.T) {
	program := parse(t, "a?.b?.(c)?.[d];")
	stmt := program.First().(*ast.ExprStmt)
	idx, ok := stmt.X.(*ast.Index)
	require.True(t, ok)
	assert.True(t, idx.Optional)
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3;", "(1 + (2 * 3))"},
		{"(1 + 2) * 3;", "((1 + 2) * 3)"},
		{"a || b && c;", "(a || (b && c))"},
		{"a === b !== c;", "((a === b) !== c)"},
		{"!a && b;", "((!a) && b)"},
		{"a ?? b || c;", "(a ?? (b || c))"},
		{"typeof a === 'string';", "((typeof a) === 'string')"},
		{"a < b === c < d;", "((a < b) === (c < d))"},
		{"a + b << c;", "((a + b) << c)"},
		{"-a * b;", "((-a) * b)"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program := parse(t, tt.input)
			stmt := program.First().(*ast.ExprStmt)
			assert.Equal(t, tt.expected, stmt.X.String())
		})
	}
}

func TestTernary(t *testing.T) {
	program := parse(t, "a ? b : c ? d : e;")
	stmt := program.First().(*ast.ExprStmt)
	cond, ok := stmt.X.(*ast.Cond)
	require.True(t, ok)
	_, ok = cond.Else.(*ast.Cond)
	assert.True(t, ok, "ternary should be right-associative")
}

func TestAssignments(t *testing.T) {
	program := parse(t, "x = y += z;")
	stmt := program.First().(*ast.ExprStmt)
	assign, ok := stmt.X.(*ast.Assign)
	require.True(t, ok)
	assert.Equal(t, "=", assign.Op)
	inner, ok := assign.Value.(*ast.Assign)
	require.True(t, ok)
	assert.Equal(t, "+=", inner.Op)
}

func TestSequence(t *testing.T) {
	program := parse(t, "a = 1, b = 2, c = 3;")
	stmt := program.First().(*ast.ExprStmt)
	seq, ok := stmt.X.(*ast.Seq)
	require.True(t, ok)
	assert.Len(t, seq.Exprs, 3)
}

func TestNewExpr(t *testing.T) {
	program := parse(t, "new Date();")
	stmt := program.First().(*ast.ExprStmt)
	n, ok := stmt.X.(*ast.New)
	require.True(t, ok)
	assert.True(t, n.HasArgs)

	program = parse(t, "new Foo.Bar(1, 2);")
	stmt = program.First().(*ast.ExprStmt)
	n = stmt.X.(*ast.New)
	require.Len(t, n.Args, 2)
	_, ok = n.Callee.(*ast.Member)
	assert.True(t, ok)
}

func TestObjectLiteral(t *testing.T) {
	program := parse(t, `var o = { a: 1, "b": 2, 3: three, c, d() { return 4; }, ...rest };`)
	decl := program.First().(*ast.VarDecl)
	obj, ok := decl.Decls[0].Init.(*ast.Object)
	require.True(t, ok)
	require.Len(t, obj.Props, 6)

	assert.False(t, obj.Props[0].Shorthand)
	_, ok = obj.Props[1].Key.(*ast.String)
	assert.True(t, ok)
	_, ok = obj.Props[2].Key.(*ast.Number)
	assert.True(t, ok)
	assert.True(t, obj.Props[3].Shorthand)
	assert.True(t, obj.Props[4].Method)
	assert.Nil(t, obj.Props[5].Key)
}

func TestArrayLiteral(t *testing.T) {
	program := parse(t, "var a = [1, , 2, ...rest];")
	decl := program.First().(*ast.VarDecl)
	arr, ok := decl.Decls[0].Init.(*ast.Array)
	require.True(t, ok)
	require.Len(t, arr.Elements, 4)
	assert.Nil(t, arr.Elements[1])
	_, ok = arr.Elements[3].(*ast.Spread)
	assert.True(t, ok)
}

func TestIfElse(t *testing.T) {
	program := parse(t, "if (a) { b(); } else if (c) { d(); } else { e(); }")
	stmt, ok := program.First().(*ast.If)
	require.True(t, ok)
	elseIf, ok := stmt.Else.(*ast.If)
	require.True(t, ok)
	require.NotNil(t, elseIf.Else)
}

func TestForClassic(t *testing.T) {
	program := parse(t, "for (var i = 0; i < 10; i++) { use(i); }")
	stmt, ok := program.First().(*ast.For)
	require.True(t, ok)
	require.NotNil(t, stmt.Init)
	require.NotNil(t, stmt.Cond)
	require.NotNil(t, stmt.Post)
}

func TestForInOf(t *testing.T) {
	program := parse(t, "for (var k in obj) { use(k); }")
	stmt, ok := program.First().(*ast.ForIn)
	require.True(t, ok)
	assert.False(t, stmt.Of)

	program = parse(t, "for (const v of list) { use(v); }")
	stmt = program.First().(*ast.ForIn)
	assert.True(t, stmt.Of)

	program = parse(t, "for (k in obj) { use(k); }")
	stmt = program.First().(*ast.ForIn)
	assert.False(t, stmt.Of)
}

func TestWhileAndDoWhile(t *testing.T) {
	program := parse(t, "while (x) { tick(); }")
	_, ok := program.First().(*ast.While)
	require.True(t, ok)

	program = parse(t, "do { tick(); } while (x);")
	_, ok = program.First().(*ast.DoWhile)
	require.True(t, ok)
}

func TestSwitch(t *testing.T) {
	program := parse(t, `switch (x) { case 1: a(); break; case 2: b(); break; default: c(); }`)
	stmt, ok := program.First().(*ast.Switch)
	require.True(t, ok)
	require.Len(t, stmt.Cases, 3)
	assert.Nil(t, stmt.Cases[2].Test)
	assert.Len(t, stmt.Cases[0].Body, 2)
}

func TestTryCatchFinally(t *testing.T) {
	program := parse(t, "try { risky(); } catch (e) { log(e); } finally { done(); }")
	stmt, ok := program.First().(*ast.Try)
	require.True(t, ok)
	require.NotNil(t, stmt.CatchParam)
	require.NotNil(t, stmt.CatchBody)
	require.NotNil(t, stmt.FinallyBody)

	program = parse(t, "try { risky(); } catch { ignore(); }")
	stmt = program.First().(*ast.Try)
	assert.Nil(t, stmt.CatchParam)
	require.NotNil(t, stmt.CatchBody)
}

func TestThrow(t *testing.T) {
	program := parse(t, `throw new Error("boom");`)
	stmt, ok := program.First().(*ast.Throw)
	require.True(t, ok)
	_, ok = stmt.Value.(*ast.New)
	assert.True(t, ok)
}

func TestClassDecl(t *testing.T) {
	program := parse(t, `class Greeter extends Base {
	constructor(name) { this.name = name; }
	greet() { return this.name; }
	static create() { return new Greeter("x"); }
}`)
	decl, ok := program.First().(*ast.ClassDecl)
	require.True(t, ok)
	assert.Equal(t, "Greeter", decl.Class.Name.Name)
	require.NotNil(t, decl.Class.Extends)
	require.Len(t, decl.Class.Members, 3)
	assert.True(t, decl.Class.Members[2].Static)
}

func TestTemplateLiteralExpr(t *testing.T) {
	program := parse(t, "var s = `count: ${n + 1} done`;")
	decl := program.First().(*ast.VarDecl)
	tpl, ok := decl.Decls[0].Init.(*ast.TemplateLit)
	require.True(t, ok)
	require.Len(t, tpl.Exprs, 1)
	require.Len(t, tpl.Quasis, 2)
}

func TestIIFE(t *testing.T) {
	program := parse(t, "(function() { var x = 1; })();")
	stmt := program.First().(*ast.ExprStmt)
	call, ok := stmt.X.(*ast.Call)
	require.True(t, ok)
	paren, ok := call.Fun.(*ast.Paren)
	require.True(t, ok)
	_, ok = paren.X.(*ast.FuncLit)
	assert.True(t, ok)
}

func TestBangIIFE(t *testing.T) {
	program := parse(t, "!function() { go(); }();")
	stmt := program.First().(*ast.ExprStmt)
	unary, ok := stmt.X.(*ast.Unary)
	require.True(t, ok)
	_, ok = unary.X.(*ast.Call)
	assert.True(t, ok)
}

func TestImportExport(t *testing.T) {
	program := parse(t, `import def, { a, b as c } from "mod";`)
	imp, ok := program.First().(*ast.ImportDecl)
	require.True(t, ok)
	require.NotNil(t, imp.Default)
	require.Len(t, imp.Named, 2)
	assert.Equal(t, "mod", imp.Source.Value)

	program = parse(t, "export function f() {}\nexport { x, y as z };\nexport default 42;")
	require.Len(t, program.Stmts, 3)
	first := program.Stmts[0].(*ast.ExportDecl)
	_, ok = first.Decl.(*ast.FuncDecl)
	assert.True(t, ok)
	second := program.Stmts[1].(*ast.ExportDecl)
	require.Len(t, second.Named, 2)
	third := program.Stmts[2].(*ast.ExportDecl)
	assert.True(t, third.Default)
}

func TestLabeledStatement(t *testing.T) {
	program := parse(t, "outer: for (;;) { break outer; }")
	labeled, ok := program.First().(*ast.Labeled)
	require.True(t, ok)
	assert.Equal(t, "outer", labeled.Label.Name)
}

func TestCommentsRetained(t *testing.T) {
	program := parse(t, "/* lead */ a(); // trail\nb();")
	require.Len(t, program.Comments, 2)
	assert.Equal(t, "/* lead */", program.Comments[0].Text)
	assert.True(t, program.Comments[0].Block)
	assert.Equal(t, 0, program.Comments[0].Pos().Offset)
	assert.Equal(t, 10, program.Comments[0].End().Offset)
}

func TestSpansPartitionInput(t *testing.T) {
	input := "var x = f(1);"
	program := parse(t, input)
	decl := program.First().(*ast.VarDecl)
	assert.Equal(t, 0, decl.Pos().Offset)
	assert.Equal(t, len(input), decl.End().Offset)
	init := decl.Decls[0].Init.(*ast.Call)
	assert.Equal(t, "f(1)", input[init.Pos().Offset:init.End().Offset])
}

func TestLeadingDotContinuation(t *testing.T) {
	program := parse(t, "promise\n\t.then(handle)\n\t.catch(log);")
	require.Len(t, program.Stmts, 1)
	stmt := program.First().(*ast.ExprStmt)
	call, ok := stmt.X.(*ast.Call)
	require.True(t, ok)
	member := call.Fun.(*ast.Member)
	assert.Equal(t, "catch", member.Attr.Name)
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"var = 5;",
		"foo(",
		"function () {",
		"if (a { b(); }",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(context.Background(), input)
			require.Error(t, err)
		})
	}
}

func TestMaxDepth(t *testing.T) {
	input := ""
	for i := 0; i < 600; i++ {
		input += "("
	}
	input += "x"
	for i := 0; i < 600; i++ {
		input += ")"
	}
	_, err := Parse(context.Background(), input+";")
	require.Error(t, err)
}

func TestEmptyInput(t *testing.T) {
	program := parse(t, "")
	assert.Len(t, program.Stmts, 0)
}
