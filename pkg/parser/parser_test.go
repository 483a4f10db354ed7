package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlang/weft/pkg/ast"
	"github.com/weftlang/weft/pkg/diag"
	"github.com/weftlang/weft/pkg/token"
)

// toks is a small builder for hand-assembled token slices, since the
// lexer that would normally produce them is out of scope.
func toks(pairs ...interface{}) []token.Token {
	var out []token.Token
	line := 1
	for i := 0; i < len(pairs); i += 2 {
		kind := pairs[i].(token.Kind)
		text := pairs[i+1].(string)
		out = append(out, token.Token{Kind: kind, Text: text, Line: line, Column: 1})
	}
	return out
}

func parse(t *testing.T, tk []token.Token) ast.Node {
	t.Helper()
	p := New(token.NewStream(tk))
	root, err := p.Parse()
	require.NoError(t, err)
	require.Len(t, root.Nodes, 1)
	return root.Nodes[0]
}

func TestParseIntegerLiteral(t *testing.T) {
	node := parse(t, toks(token.Integer, "42"))
	lit, ok := node.(*ast.Integer)
	require.True(t, ok)
	assert.Equal(t, int64(42), lit.Value)
}

func TestParseFloatLiteral(t *testing.T) {
	node := parse(t, toks(token.Float, "3.5"))
	lit, ok := node.(*ast.Float)
	require.True(t, ok)
	assert.InDelta(t, 3.5, lit.Value, 0.0001)
}

func TestParseNegativeIntegerRequiresLiteral(t *testing.T) {
	p := New(token.NewStream(toks(token.Minus, "-", token.Ident, "x")))
	_, err := p.Parse()
	require.Error(t, err)
	var pf *diag.ParseFailure
	require.ErrorAs(t, err, &pf)
}

func TestParseNegativeInteger(t *testing.T) {
	node := parse(t, toks(token.Minus, "-", token.Integer, "7"))
	lit, ok := node.(*ast.Integer)
	require.True(t, ok)
	assert.Equal(t, int64(-7), lit.Value)
}

func TestParseStringLiteral(t *testing.T) {
	node := parse(t, toks(token.String, "hello"))
	lit, ok := node.(*ast.String)
	require.True(t, ok)
	assert.Equal(t, "hello", lit.Value)
}

func TestParseBinaryPrecedence(t *testing.T) {
	// 1 + 2 * 3 must fold as 1 + (2 * 3)
	node := parse(t, toks(
		token.Integer, "1",
		token.Plus, "+",
		token.Integer, "2",
		token.Star, "*",
		token.Integer, "3",
	))
	bin, ok := node.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.Add, bin.Kind)

	left, ok := bin.Left.(*ast.Integer)
	require.True(t, ok)
	assert.Equal(t, int64(1), left.Value)

	right, ok := bin.Right.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.Mul, right.Kind)
}

func TestParseBinaryLeftAssociative(t *testing.T) {
	// 1 - 2 - 3 must fold as (1 - 2) - 3
	node := parse(t, toks(
		token.Integer, "1",
		token.Minus, "-",
		token.Integer, "2",
		token.Minus, "-",
		token.Integer, "3",
	))
	bin, ok := node.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.Sub, bin.Kind)

	left, ok := bin.Left.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.Sub, left.Kind)

	_, ok = bin.Right.(*ast.Integer)
	require.True(t, ok)
}

func TestParseSendChainNoArgs(t *testing.T) {
	// foo.bar
	node := parse(t, toks(token.Ident, "foo", token.Dot, ".", token.Ident, "bar"))
	send, ok := node.(*ast.Send)
	require.True(t, ok)
	assert.Equal(t, "bar", send.Name)
	// A bare identifier used as a receiver is itself a zero-argument Send.
	recv, ok := send.Receiver.(*ast.Send)
	require.True(t, ok)
	assert.Equal(t, "foo", recv.Name)
	assert.Empty(t, recv.Args)
	assert.Empty(t, send.Args)
}

func TestParseSendChainParenArgs(t *testing.T) {
	// foo.bar(1, 2)
	node := parse(t, toks(
		token.Ident, "foo", token.Dot, ".", token.Ident, "bar",
		token.LParen, "(", token.Integer, "1", token.Comma, ",",
		token.Integer, "2", token.RParen, ")",
	))
	send, ok := node.(*ast.Send)
	require.True(t, ok)
	assert.Equal(t, "bar", send.Name)
	require.Len(t, send.Args, 2)
}

func TestParseKeywordArgument(t *testing.T) {
	// foo.bar(x: 1)
	toksSlice := toks(
		token.Ident, "foo", token.Dot, ".", token.Ident, "bar",
		token.LParen, "(", token.Ident, "x", token.Colon, ":",
		token.Integer, "1", token.RParen, ")",
	)
	node := parse(t, toksSlice)
	send, ok := node.(*ast.Send)
	require.True(t, ok)
	require.Len(t, send.Args, 1)
	kw, ok := send.Args[0].(*ast.KeywordArgument)
	require.True(t, ok)
	assert.Equal(t, "x", kw.Name)
}

func TestParseBracketGet(t *testing.T) {
	// foo[1]
	node := parse(t, toks(
		token.Ident, "foo", token.LBracket, "[",
		token.Integer, "1", token.RBracket, "]",
	))
	send, ok := node.(*ast.Send)
	require.True(t, ok)
	assert.Equal(t, "[]", send.Name)
	require.Len(t, send.Args, 1)
}

func TestParseBracketSet(t *testing.T) {
	// foo[1] = 2
	node := parse(t, toks(
		token.Ident, "foo", token.LBracket, "[",
		token.Integer, "1", token.RBracket, "]",
		token.Assign, "=", token.Integer, "2",
	))
	send, ok := node.(*ast.Send)
	require.True(t, ok)
	assert.Equal(t, "[]=", send.Name)
	require.Len(t, send.Args, 2)
}

func TestParseConstantPath(t *testing.T) {
	// Foo::Bar::Baz
	node := parse(t, toks(
		token.Constant, "Foo", token.ColonColon, "::",
		token.Constant, "Bar", token.ColonColon, "::",
		token.Constant, "Baz",
	))
	c, ok := node.(*ast.Constant)
	require.True(t, ok)
	assert.Equal(t, "Baz", c.Name)
	require.NotNil(t, c.Receiver)
	mid := c.Receiver.(*ast.Constant)
	assert.Equal(t, "Bar", mid.Name)
	require.NotNil(t, mid.Receiver)
	first := mid.Receiver.(*ast.Constant)
	assert.Equal(t, "Foo", first.Name)
	assert.Nil(t, first.Receiver)
}

func TestParseArrayLiteral(t *testing.T) {
	node := parse(t, toks(
		token.LBracket, "[", token.Integer, "1", token.Comma, ",",
		token.Integer, "2", token.RBracket, "]",
	))
	arr, ok := node.(*ast.Array)
	require.True(t, ok)
	require.Len(t, arr.Values, 2)
}

func TestParseLetDefine(t *testing.T) {
	// let x = 1
	node := parse(t, toks(
		token.KwLet, "let", token.Ident, "x", token.Assign, "=", token.Integer, "1",
	))
	let, ok := node.(*ast.LetDefine)
	require.True(t, ok)
	target := let.Target.(*ast.Identifier)
	assert.Equal(t, "x", target.Name)
	assert.Nil(t, let.Type)
}

func TestParseReassign(t *testing.T) {
	// x = 1
	node := parse(t, toks(token.Ident, "x", token.Assign, "=", token.Integer, "1"))
	reassign, ok := node.(*ast.Reassign)
	require.True(t, ok)
	target := reassign.Target.(*ast.Identifier)
	assert.Equal(t, "x", target.Name)
}

func TestParseReturnBare(t *testing.T) {
	node := parse(t, toks(token.KwReturn, "return"))
	ret, ok := node.(*ast.Return)
	require.True(t, ok)
	assert.Nil(t, ret.Value)
}

func TestParseReturnValue(t *testing.T) {
	node := parse(t, toks(token.KwReturn, "return", token.Integer, "1"))
	ret, ok := node.(*ast.Return)
	require.True(t, ok)
	require.NotNil(t, ret.Value)
}

func TestParseThrow(t *testing.T) {
	node := parse(t, toks(token.KwThrow, "throw", token.String, "boom"))
	th, ok := node.(*ast.Throw)
	require.True(t, ok)
	str := th.Value.(*ast.String)
	assert.Equal(t, "boom", str.Value)
}

func TestParseMethodDeclarationNoBody(t *testing.T) {
	// fn foo
	node := parse(t, toks(token.KwFn, "fn", token.Ident, "foo"))
	m, ok := node.(*ast.Method)
	require.True(t, ok)
	assert.Equal(t, "foo", m.Name)
	assert.Nil(t, m.Body)
}

func TestParseClosureLiteral(t *testing.T) {
	// fn { 1 }
	node := parse(t, toks(
		token.KwFn, "fn", token.LBrace, "{", token.Integer, "1", token.RBrace, "}",
	))
	closure, ok := node.(*ast.Closure)
	require.True(t, ok)
	require.NotNil(t, closure.Body)
}

func TestParseClass(t *testing.T) {
	// class Foo { }
	node := parse(t, toks(
		token.KwClass, "class", token.Constant, "Foo",
		token.LBrace, "{", token.RBrace, "}",
	))
	class, ok := node.(*ast.Class)
	require.True(t, ok)
	assert.Equal(t, "Foo", class.Name)
}

func TestParseOperatorMethodName(t *testing.T) {
	// fn +(o) {}
	node := parse(t, toks(
		token.KwFn, "fn", token.Plus, "+",
		token.LParen, "(", token.Ident, "o", token.RParen, ")",
		token.LBrace, "{", token.RBrace, "}",
	))
	m, ok := node.(*ast.Method)
	require.True(t, ok)
	assert.Equal(t, "+", m.Name)
	require.Len(t, m.Arguments, 1)
}

func TestParseBracketSetterMethodName(t *testing.T) {
	// fn []=(i, v) {}
	node := parse(t, toks(
		token.KwFn, "fn", token.LBracket, "[", token.RBracket, "]", token.Assign, "=",
		token.LParen, "(", token.Ident, "i", token.Comma, ",", token.Ident, "v", token.RParen, ")",
		token.LBrace, "{", token.RBrace, "}",
	))
	m, ok := node.(*ast.Method)
	require.True(t, ok)
	assert.Equal(t, "[]=", m.Name)
	require.Len(t, m.Arguments, 2)
}

func TestParseTryWithElseBinding(t *testing.T) {
	// try x else (e) y
	node := parse(t, toks(
		token.KwTry, "try", token.Ident, "x",
		token.KwElse, "else", token.LParen, "(", token.Ident, "e", token.RParen, ")",
		token.Ident, "y",
	))
	try, ok := node.(*ast.Try)
	require.True(t, ok)
	require.NotNil(t, try.ElseArgument)
	ident := try.ElseArgument.(*ast.Identifier)
	assert.Equal(t, "e", ident.Name)
}

func TestParseUnexpectedTokenIsTerminal(t *testing.T) {
	p := New(token.NewStream(toks(token.RBrace, "}")))
	_, err := p.Parse()
	require.Error(t, err)
	var pf *diag.ParseFailure
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, 1, pf.Line)
}
