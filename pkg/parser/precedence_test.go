package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlang/weft/pkg/ast"
	"github.com/weftlang/weft/pkg/token"
)

func TestPrecedenceOrAnd(t *testing.T) {
	// a || b && c parses as Or(a, And(b, c))
	node := parse(t, toks(
		token.Ident, "a", token.OrOr, "||",
		token.Ident, "b", token.AndAnd, "&&",
		token.Ident, "c",
	))
	or, ok := node.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.Or, or.Kind)

	and, ok := or.Right.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.And, and.Kind)
}

func TestPrecedenceRangeBindsLooserThanBracketSend(t *testing.T) {
	// a[0]..b[0] parses as Range(Send(a,[],0), Send(b,[],0))
	node := parse(t, toks(
		token.Ident, "a", token.LBracket, "[", token.Integer, "0", token.RBracket, "]",
		token.DotDot, "..",
		token.Ident, "b", token.LBracket, "[", token.Integer, "0", token.RBracket, "]",
	))
	rng, ok := node.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.ExclusiveRange, rng.Kind)

	_, ok = rng.Left.(*ast.Send)
	require.True(t, ok)
	_, ok = rng.Right.(*ast.Send)
	require.True(t, ok)
}

func TestBracketSendSameLineRule(t *testing.T) {
	// "[1]\n[2]" is two Array nodes, not a bracket-send chain.
	p := New(token.NewStream([]token.Token{
		{Kind: token.LBracket, Text: "[", Line: 1}, {Kind: token.Integer, Text: "1", Line: 1}, {Kind: token.RBracket, Text: "]", Line: 1},
		{Kind: token.LBracket, Text: "[", Line: 2}, {Kind: token.Integer, Text: "2", Line: 2}, {Kind: token.RBracket, Text: "]", Line: 2},
	}))
	root, err := p.Parse()
	require.NoError(t, err)
	require.Len(t, root.Nodes, 2)
	_, ok := root.Nodes[0].(*ast.Array)
	assert.True(t, ok)
	_, ok = root.Nodes[1].(*ast.Array)
	assert.True(t, ok)
}

func TestBracketSendSameLineTriggers(t *testing.T) {
	// "x[1]" on one line is a Send "[]".
	p := New(token.NewStream([]token.Token{
		{Kind: token.Ident, Text: "x", Line: 1},
		{Kind: token.LBracket, Text: "[", Line: 1}, {Kind: token.Integer, Text: "1", Line: 1}, {Kind: token.RBracket, Text: "]", Line: 1},
	}))
	root, err := p.Parse()
	require.NoError(t, err)
	require.Len(t, root.Nodes, 1)
	send, ok := root.Nodes[0].(*ast.Send)
	require.True(t, ok)
	assert.Equal(t, "[]", send.Name)
}

func TestUnionTypeThreeElements(t *testing.T) {
	// A | B | C as an argument's declared type.
	p := New(token.NewStream(toks(
		token.KwFn, "fn", token.Ident, "f",
		token.LParen, "(", token.Ident, "x", token.Colon, ":",
		token.Constant, "A", token.Pipe, "|",
		token.Constant, "B", token.Pipe, "|",
		token.Constant, "C",
		token.RParen, ")",
	)))
	root, err := p.Parse()
	require.NoError(t, err)
	m := root.Nodes[0].(*ast.Method)
	require.Len(t, m.Arguments, 1)
	argDef := m.Arguments[0].(*ast.ArgumentDefine)
	union, ok := argDef.Type.(*ast.UnionType)
	require.True(t, ok)
	assert.Len(t, union.Types, 3)
}

func TestSameLineArgumentRule(t *testing.T) {
	// "foo 1, 2" is a Send with two positional args.
	node := parse(t, toks(
		token.Ident, "foo", token.Integer, "1", token.Comma, ",", token.Integer, "2",
	))
	send, ok := node.(*ast.Send)
	require.True(t, ok)
	require.Len(t, send.Args, 2)
}

func TestNewLineBreaksArgumentList(t *testing.T) {
	// "foo\n1" is two top-level expressions.
	p := New(token.NewStream([]token.Token{
		{Kind: token.Ident, Text: "foo", Line: 1},
		{Kind: token.Integer, Text: "1", Line: 2},
	}))
	root, err := p.Parse()
	require.NoError(t, err)
	require.Len(t, root.Nodes, 2)
	firstSend, ok := root.Nodes[0].(*ast.Send)
	require.True(t, ok)
	assert.Equal(t, "foo", firstSend.Name)
	assert.Empty(t, firstSend.Args)
	_, ok = root.Nodes[1].(*ast.Integer)
	assert.True(t, ok)
}
