// Package parser implements the weft language parser.
//
// Parser Architecture:
//
// The parser is LL(1) recursive descent with a single token of lookahead,
// supplied by a token.Stream. Each grammar rule in spec.md §4.1 corresponds
// to one parsing method; methods call each other recursively to build the
// AST bottom-up from the value grammar upward through the precedence
// ladder. There is no backtracking: once a token is consumed it is never
// reconsidered, and the first violation of the grammar is terminal for the
// whole parse (see Parse).
//
// Token Management:
//
// The parser keeps two tokens live at all times, cur (the token under
// examination) and peek (one token of lookahead), mirroring the curTok/
// peekTok window used throughout the pack's hand-written parsers. expect
// consumes the next token and fails if its kind doesn't match; accept
// consumes it only if it matches; nextIs peeks without consuming.
//
// Precedence Ladder:
//
// or < and < equal/not-equal < compare < bitwise-or/xor < bitwise-and <
// shift < add/sub < div/mod/mul < pow < range < bracket-send < type-cast <
// send-chain < value (spec.md §4.1). Every level except the top four is a
// left-folding binary rule expressed once, in binaryLevel, parameterized
// by the child rule and the set of operator kinds it accepts.
package parser

import (
	"fmt"

	"github.com/weftlang/weft/pkg/ast"
	"github.com/weftlang/weft/pkg/diag"
	"github.com/weftlang/weft/pkg/token"
)

// Parser holds the state of one parse. It is stateful and single-use:
// construct a new Parser for each token stream.
type Parser struct {
	stream *token.Stream
	cur    token.Token
	peek   token.Token
}

// New creates a Parser over stream, primed with the first two tokens.
func New(stream *token.Stream) *Parser {
	p := &Parser{stream: stream}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.stream.Next()
}

// expect consumes the next token, failing unless its kind is k.
func (p *Parser) expect(k token.Kind, expectation string) (token.Token, error) {
	if p.cur.Kind != k {
		return token.Token{}, diag.New(p.cur, expectation)
	}
	tok := p.cur
	p.nextToken()
	return tok, nil
}

// accept consumes the next token and returns true if its kind is k, else
// leaves the stream untouched and returns false.
func (p *Parser) accept(k token.Kind) bool {
	if p.cur.Kind != k {
		return false
	}
	p.nextToken()
	return true
}

// nextIs peeks the current token's kind without consuming it.
func (p *Parser) nextIs(k token.Kind) bool {
	return p.cur.Kind == k
}

// peekIs peeks one token past cur without consuming anything.
func (p *Parser) peekIs(k token.Kind) bool {
	return p.peek.Kind == k
}

// Parse parses the whole token stream and returns the Expressions root, or
// the single structured failure that stopped it.
func (p *Parser) Parse() (*ast.Expressions, error) {
	root := &ast.Expressions{Position: pos(p.cur)}
	for p.cur.Kind != token.EOF {
		node, err := p.parseImportOrExpression()
		if err != nil {
			return nil, err
		}
		root.Nodes = append(root.Nodes, node)
	}
	return root, nil
}

func pos(tok token.Token) ast.Position {
	return ast.Position{Line: tok.Line, Column: tok.Column}
}

func (p *Parser) parseImportOrExpression() (ast.Node, error) {
	if p.cur.Kind == token.KwImport {
		return p.parseImport()
	}
	return p.parseExpression()
}

func (p *Parser) parseExpression() (ast.Node, error) {
	return p.parseOr()
}

// binaryOp maps an operator token kind to the BinaryKind it produces.
type binaryOp struct {
	tok  token.Kind
	kind ast.BinaryKind
}

// binaryLevel implements the repeated left-folding binary driver described
// in spec.md §4.1: parse the left side with child, then while the current
// token is one of ops, consume it, parse the right side with child, and
// fold the accumulator into a Binary node at the operator's position.
func (p *Parser) binaryLevel(child func() (ast.Node, error), ops ...binaryOp) (ast.Node, error) {
	left, err := child()
	if err != nil {
		return nil, err
	}

	for {
		var matched *binaryOp
		for i := range ops {
			if p.cur.Kind == ops[i].tok {
				matched = &ops[i]
				break
			}
		}
		if matched == nil {
			return left, nil
		}

		opTok := p.cur
		p.nextToken()

		right, err := child()
		if err != nil {
			return nil, err
		}

		left = &ast.Binary{
			Position: pos(opTok),
			Kind:     matched.kind,
			Left:     left,
			Right:    right,
		}
	}
}

func (p *Parser) parseOr() (ast.Node, error) {
	return p.binaryLevel(p.parseAnd, binaryOp{token.OrOr, ast.Or})
}

func (p *Parser) parseAnd() (ast.Node, error) {
	return p.binaryLevel(p.parseEquality, binaryOp{token.AndAnd, ast.And})
}

func (p *Parser) parseEquality() (ast.Node, error) {
	return p.binaryLevel(p.parseCompare,
		binaryOp{token.Eq, ast.Equal},
		binaryOp{token.NotEq, ast.NotEqual},
	)
}

func (p *Parser) parseCompare() (ast.Node, error) {
	return p.binaryLevel(p.parseBitwiseOr,
		binaryOp{token.Lt, ast.Lower},
		binaryOp{token.LtEq, ast.LowerEqual},
		binaryOp{token.Gt, ast.Greater},
		binaryOp{token.GtEq, ast.GreaterEqual},
	)
}

func (p *Parser) parseBitwiseOr() (ast.Node, error) {
	return p.binaryLevel(p.parseBitwiseAnd,
		binaryOp{token.Pipe, ast.BitwiseOr},
		binaryOp{token.Caret, ast.BitwiseXor},
	)
}

func (p *Parser) parseBitwiseAnd() (ast.Node, error) {
	return p.binaryLevel(p.parseShift, binaryOp{token.Amp, ast.BitwiseAnd})
}

func (p *Parser) parseShift() (ast.Node, error) {
	return p.binaryLevel(p.parseAddSub,
		binaryOp{token.Shl, ast.ShiftLeft},
		binaryOp{token.Shr, ast.ShiftRight},
	)
}

func (p *Parser) parseAddSub() (ast.Node, error) {
	return p.binaryLevel(p.parseDivModMul,
		binaryOp{token.Plus, ast.Add},
		binaryOp{token.Minus, ast.Sub},
	)
}

func (p *Parser) parseDivModMul() (ast.Node, error) {
	return p.binaryLevel(p.parsePow,
		binaryOp{token.Slash, ast.Div},
		binaryOp{token.Percent, ast.Mod},
		binaryOp{token.Star, ast.Mul},
	)
}

func (p *Parser) parsePow() (ast.Node, error) {
	return p.binaryLevel(p.parseRange, binaryOp{token.Pow, ast.Pow})
}

func (p *Parser) parseRange() (ast.Node, error) {
	return p.binaryLevel(p.parseBracketSend,
		binaryOp{token.DotDotEq, ast.InclusiveRange},
		binaryOp{token.DotDot, ast.ExclusiveRange},
	)
}

// parseBracketSend parses the postfix `v[args]` / `v[args] = value` form,
// sugared into Send "[]"/"[]=" with the indexed value as receiver. A `[`
// only starts a bracket-send when it appears on the same source line as
// the expression it follows; otherwise it's left alone so an array literal
// on the next line parses as an array literal.
func (p *Parser) parseBracketSend() (ast.Node, error) {
	startLine := p.cur.Line
	node, err := p.parseTypeCast()
	if err != nil {
		return nil, err
	}

	for p.nextIs(token.LBracket) && p.cur.Line == startLine {
		bracket := p.cur
		p.nextToken()

		name, args, err := p.parseBracketGetOrSet()
		if err != nil {
			return nil, err
		}

		node = &ast.Send{
			Position: pos(bracket),
			Name:     name,
			Receiver: node,
			Args:     args,
		}
	}

	return node, nil
}

// parseBracketGetOrSet parses the inside of `[...]` or `[...] = value`,
// tolerating a trailing comma before `]`.
func (p *Parser) parseBracketGetOrSet() (string, []ast.Node, error) {
	var args []ast.Node

	for !p.nextIs(token.RBracket) {
		arg, err := p.parseExpression()
		if err != nil {
			return "", nil, err
		}
		args = append(args, arg)

		if p.accept(token.Comma) {
			if p.nextIs(token.RBracket) {
				break
			}
			continue
		}
		break
	}

	if _, err := p.expect(token.RBracket, "]"); err != nil {
		return "", nil, err
	}

	if p.accept(token.Assign) {
		value, err := p.parseExpression()
		if err != nil {
			return "", nil, err
		}
		return "[]=", append(args, value), nil
	}

	return "[]", args, nil
}

func (p *Parser) parseTypeCast() (ast.Node, error) {
	node, err := p.parseSendChain()
	if err != nil {
		return nil, err
	}

	if p.nextIs(token.KwAs) {
		opTok := p.cur
		p.nextToken()
		target, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		node = &ast.TypeCast{Position: pos(opTok), Value: node, TargetType: target}
	}

	return node, nil
}

// parseSendChain parses a chain of messages sent to a receiver, one send
// per `.`.
func (p *Parser) parseSendChain() (ast.Node, error) {
	node, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	for p.accept(token.Dot) {
		name, nameTok, err := p.parseMessageName()
		if err != nil {
			return nil, err
		}

		args, err := p.parseSendChainArguments(nameTok.Line)
		if err != nil {
			return nil, err
		}

		node = &ast.Send{Position: pos(nameTok), Name: name, Receiver: node, Args: args}
	}

	return node, nil
}

// parseSendChainArguments parses the argument list following a message
// name within a send chain: present if the next token is `(`, or if the
// next token lies on the message name's source line and is a legal
// value-starter.
func (p *Parser) parseSendChainArguments(line int) ([]ast.Node, error) {
	if p.nextIs(token.LParen) {
		return p.parseArgumentsWithParens()
	}
	if p.isArgumentStart(line) {
		return p.parseArgumentsWithoutParens()
	}
	return nil, nil
}

func (p *Parser) parseArgumentsWithParens() ([]ast.Node, error) {
	if _, err := p.expect(token.LParen, "("); err != nil {
		return nil, err
	}

	var args []ast.Node
	for !p.nextIs(token.RParen) {
		arg, err := p.parseSendArgument()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if p.accept(token.Comma) {
			continue
		}
		break
	}

	if _, err := p.expect(token.RParen, ")"); err != nil {
		return nil, err
	}
	return args, nil
}

// parseArgumentsWithoutParens parses a paren-less argument list: arguments
// continue while commas follow; any token other than a comma, including
// one on the next line, terminates the list.
func (p *Parser) parseArgumentsWithoutParens() ([]ast.Node, error) {
	var args []ast.Node
	for {
		arg, err := p.parseSendArgument()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if p.accept(token.Comma) {
			continue
		}
		break
	}
	return args, nil
}

// parseSendArgument parses one argument: a KeywordArgument if the current
// token is an identifier immediately followed by `:`, otherwise a
// positional expression.
func (p *Parser) parseSendArgument() (ast.Node, error) {
	if p.cur.Kind == token.Ident && p.peekIs(token.Colon) {
		nameTok := p.cur
		p.nextToken() // consume identifier
		p.nextToken() // consume ':'

		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.KeywordArgument{Position: pos(nameTok), Name: nameTok.Text, Value: value}, nil
	}
	return p.parseExpression()
}

// messageTokens is the closed set of token kinds acceptable as a method
// name, per spec.md §4.1.
var messageTokens = map[token.Kind]bool{
	token.Ident: true, token.Constant: true, token.KwSelf: true,
	token.KwLet: true, token.KwVar: true, token.KwReturn: true,
	token.KwClass: true, token.KwTrait: true, token.KwImpl: true,
	token.KwImport: true, token.KwElse: true, token.KwThrow: true,
	token.Plus: true, token.Minus: true, token.Star: true, token.Slash: true,
	token.Percent: true, token.Pow: true, token.Shl: true, token.Shr: true,
	token.Amp: true, token.Pipe: true, token.Caret: true,
	token.Eq: true, token.NotEq: true, token.Lt: true, token.LtEq: true,
	token.Gt: true, token.GtEq: true, token.AndAnd: true, token.OrOr: true,
	token.DotDot: true, token.DotDotEq: true, token.LBracket: true,
}

// valueStart is the closed set of token kinds that may legally begin a
// value; it doubles as the paren-less-argument disambiguation set.
var valueStart = map[token.Kind]bool{
	token.String: true, token.Integer: true, token.Float: true,
	token.Ident: true, token.Constant: true, token.HashOpen: true,
	token.Minus: true, token.LBracket: true, token.LBrace: true,
	token.KwFn: true, token.KwLet: true, token.KwVar: true, token.KwClass: true,
	token.KwTrait: true, token.KwReturn: true, token.KwImpl: true,
	token.Comment: true, token.Colon: true, token.KwType: true,
	token.Attribute: true, token.KwSelf: true, token.KwTry: true,
	token.KwThrow: true,
}

// isArgumentStart reports whether the current token both begins a value
// and lies on currentLine, the line of the message name (or identifier)
// that might be taking a paren-less argument list.
//
// LBracket is deliberately excluded here even though it's a legal value
// starter: a `[` immediately following a name on the same line belongs to
// the bracket-send postfix level, which wraps this whole chain, not to a
// paren-less array-literal argument. Without this exclusion "x[1]" would
// wrongly parse as a call `x` with one Array argument instead of the
// bracket-send `Send "[]" `.
func (p *Parser) isArgumentStart(currentLine int) bool {
	if p.cur.Kind == token.LBracket {
		return false
	}
	return valueStart[p.cur.Kind] && p.cur.Line == currentLine
}

// parseMessageName consumes one token from the message-name alphabet and
// returns its name, folding in a trailing `]` (for `[`) or `=` (for a
// setter name like `foo=`).
func (p *Parser) parseMessageName() (string, token.Token, error) {
	start := p.cur
	if !messageTokens[start.Kind] {
		return "", token.Token{}, diag.New(start, "a method name")
	}
	p.nextToken()

	name := start.Text
	if start.Kind == token.LBracket {
		if _, err := p.expect(token.RBracket, "]"); err != nil {
			return "", token.Token{}, err
		}
		name += "]"
	}
	if p.accept(token.Assign) {
		name += "="
	}

	return name, start, nil
}

func (p *Parser) parseValue() (ast.Node, error) {
	start := p.cur

	switch start.Kind {
	case token.String:
		p.nextToken()
		return &ast.String{Position: pos(start), Value: start.Text}, nil
	case token.Integer:
		return p.parseInteger()
	case token.Float:
		return p.parseFloat()
	case token.Ident:
		return p.parseIdentifierValue()
	case token.Constant:
		return p.parseConstant()
	case token.LBrace:
		return p.parseClosureWithoutArguments()
	case token.Minus:
		return p.parseNegativeNumber()
	case token.LBracket:
		return p.parseArray()
	case token.HashOpen:
		return p.parseHash()
	case token.KwFn:
		return p.parseFunctionOrClosure()
	case token.KwLet:
		return p.parseLetDefine()
	case token.KwVar:
		return p.parseVarDefine()
	case token.KwClass:
		return p.parseClass()
	case token.KwTrait:
		return p.parseTrait()
	case token.KwReturn:
		return p.parseReturn()
	case token.Comment:
		p.nextToken()
		return &ast.Comment{Position: pos(start), Text: start.Text}, nil
	case token.KwType:
		return p.parseTypeDefine()
	case token.Attribute:
		return p.parseAttributeValue()
	case token.KwSelf:
		p.nextToken()
		return &ast.SelfObject{Position: pos(start)}, nil
	case token.KwThrow:
		return p.parseThrow()
	case token.KwTry:
		return p.parseTry()
	default:
		return nil, diag.New(start, "an expression")
	}
}

// parseIdentifierValue parses an identifier, which may turn out to be a
// reassignment (`foo = ...`) or a receiver-less send whose argument list
// follows on the same line.
func (p *Parser) parseIdentifierValue() (ast.Node, error) {
	start := p.cur
	p.nextToken()

	if p.accept(token.Assign) {
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.Reassign{
			Position: pos(start),
			Target:   &ast.Identifier{Position: pos(start), Name: start.Text},
			Value:    value,
		}, nil
	}

	return p.sendOrBare(start)
}

func (p *Parser) parseAttributeValue() (ast.Node, error) {
	start := p.cur
	p.nextToken()

	if p.accept(token.Assign) {
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.Reassign{
			Position: pos(start),
			Target:   &ast.Attribute{Position: pos(start), Name: start.Text},
			Value:    value,
		}, nil
	}

	return &ast.Attribute{Position: pos(start), Name: start.Text}, nil
}

// sendOrBare promotes a bare identifier token in value position to a
// receiver-less Send, per spec: an argument list is attached if one
// follows (parenthesized, or paren-less on the same line); with neither,
// the result is still a Send, just with zero arguments. Unlike a
// receiver-ful send, this is the only expression form a plain lowercase
// name takes — Identifier nodes are reserved for structural positions
// (reassignment targets, binding names) built directly by their own
// grammar rules rather than through value().
func (p *Parser) sendOrBare(start token.Token) (ast.Node, error) {
	if p.nextIs(token.LParen) {
		args, err := p.parseArgumentsWithParens()
		if err != nil {
			return nil, err
		}
		return &ast.Send{Position: pos(start), Name: start.Text, Args: args}, nil
	}

	if p.isArgumentStart(start.Line) {
		args, err := p.parseArgumentsWithoutParens()
		if err != nil {
			return nil, err
		}
		return &ast.Send{Position: pos(start), Name: start.Text, Args: args}, nil
	}

	return &ast.Send{Position: pos(start), Name: start.Text}, nil
}

// parseNegativeNumber handles unary minus: `-` in value position must be
// immediately followed by an integer or float literal, negated at parse
// time.
func (p *Parser) parseNegativeNumber() (ast.Node, error) {
	start := p.cur
	p.nextToken()

	switch p.cur.Kind {
	case token.Integer:
		n, err := p.parseInteger()
		if err != nil {
			return nil, err
		}
		lit := n.(*ast.Integer)
		lit.Value = -lit.Value
		lit.Position = pos(start)
		return lit, nil
	case token.Float:
		f, err := p.parseFloat()
		if err != nil {
			return nil, err
		}
		lit := f.(*ast.Float)
		lit.Value = -lit.Value
		lit.Position = pos(start)
		return lit, nil
	default:
		return nil, diag.New(p.cur, "a number")
	}
}

func (p *Parser) parseInteger() (ast.Node, error) {
	start := p.cur
	var value int64
	if _, err := fmt.Sscanf(start.Text, "%d", &value); err != nil {
		return nil, diag.New(start, "a valid integer literal")
	}
	p.nextToken()
	return &ast.Integer{Position: pos(start), Value: value}, nil
}

func (p *Parser) parseFloat() (ast.Node, error) {
	start := p.cur
	var value float64
	if _, err := fmt.Sscanf(start.Text, "%g", &value); err != nil {
		return nil, diag.New(start, "a valid float literal")
	}
	p.nextToken()
	return &ast.Float{Position: pos(start), Value: value}, nil
}

func (p *Parser) parseArray() (ast.Node, error) {
	start := p.cur
	p.nextToken() // consume '['

	var values []ast.Node
	for !p.nextIs(token.RBracket) {
		v, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		values = append(values, v)

		if p.accept(token.Comma) {
			if p.nextIs(token.RBracket) {
				break
			}
			continue
		}
		break
	}

	if _, err := p.expect(token.RBracket, "]"); err != nil {
		return nil, err
	}
	return &ast.Array{Position: pos(start), Values: values}, nil
}

func (p *Parser) parseHash() (ast.Node, error) {
	start := p.cur
	p.nextToken() // consume '#{'

	var pairs []ast.HashPair
	for !p.nextIs(token.RBrace) {
		key, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon, ":"); err != nil {
			return nil, err
		}
		val, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, ast.HashPair{Key: key, Value: val})

		if p.accept(token.Comma) {
			if p.nextIs(token.RBrace) {
				break
			}
			continue
		}
		break
	}

	if _, err := p.expect(token.RBrace, "}"); err != nil {
		return nil, err
	}
	return &ast.Hash{Position: pos(start), Pairs: pairs}, nil
}

func (p *Parser) parseConstant() (ast.Node, error) {
	start, err := p.expect(token.Constant, "a constant")
	if err != nil {
		return nil, err
	}
	var node ast.Node = &ast.Constant{Position: pos(start), Name: start.Text}

	for p.accept(token.ColonColon) {
		step, err := p.expect(token.Constant, "a constant")
		if err != nil {
			return nil, err
		}
		node = &ast.Constant{Position: pos(step), Name: step.Text, Receiver: node}
	}

	return node, nil
}

// parseTypeName parses `Constant`, optionally followed by `!(T, ...)` type
// arguments and an optional `-> T` return clause.
func (p *Parser) parseTypeName() (ast.Node, error) {
	start := p.cur
	constant, err := p.parseConstant()
	if err != nil {
		return nil, err
	}

	args, err := p.parseOptionalTypeArguments()
	if err != nil {
		return nil, err
	}

	retType, err := p.parseOptionalReturnType()
	if err != nil {
		return nil, err
	}

	return &ast.Type{Position: pos(start), Constant: constant, Arguments: args, ReturnType: retType}, nil
}

// parseTypeNameOrUnion parses a type name, or a UnionType if one or more
// `|`-separated type names follow.
func (p *Parser) parseTypeNameOrUnion() (ast.Node, error) {
	start := p.cur
	first, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}

	if !p.nextIs(token.Pipe) {
		return first, nil
	}

	types := []ast.Node{first}
	for p.accept(token.Pipe) {
		t, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}

	return &ast.UnionType{Position: pos(start), Types: types}, nil
}

func (p *Parser) parseOptionalTypeArguments() ([]ast.Node, error) {
	if !p.accept(token.TypeArgsOpen) {
		return nil, nil
	}
	return p.parseTypeArguments()
}

func (p *Parser) parseTypeArguments() ([]ast.Node, error) {
	var args []ast.Node
	for {
		t, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		args = append(args, t)

		if p.accept(token.Comma) {
			continue
		}
		break
	}
	if _, err := p.expect(token.RParen, ")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseOptionalReturnType() (ast.Node, error) {
	if !p.accept(token.Arrow) {
		return nil, nil
	}
	return p.parseTypeNameOrUnion()
}

func (p *Parser) parseOptionalThrowType() (ast.Node, error) {
	if !p.accept(token.KwThrow) {
		return nil, nil
	}
	return p.parseTypeNameOrUnion()
}

// parseFunctionOrClosure disambiguates `fn` as a closure literal (followed
// by `(`, `{`, or `->`) from a method definition (followed by a name).
func (p *Parser) parseFunctionOrClosure() (ast.Node, error) {
	start := p.cur
	p.nextToken() // consume 'fn'

	switch p.cur.Kind {
	case token.LParen, token.LBrace, token.Arrow:
		return p.parseClosure(start)
	default:
		return p.parseMethod(start)
	}
}

func (p *Parser) parseClosure(start token.Token) (ast.Node, error) {
	args, err := p.parseOptionalArguments()
	if err != nil {
		return nil, err
	}
	retType, err := p.parseOptionalReturnType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace, "{"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Closure{Position: pos(start), Arguments: args, ReturnType: retType, Body: body}, nil
}

func (p *Parser) parseClosureWithoutArguments() (ast.Node, error) {
	start := p.cur
	if _, err := p.expect(token.LBrace, "{"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Closure{Position: pos(start), Body: body}, nil
}

// parseMethod parses a method definition: optional receiver, a
// message-alphabet name, optional type/value arguments, optional return
// and throw types, and an optional body (absent denotes a declaration).
func (p *Parser) parseMethod(start token.Token) (ast.Node, error) {
	var receiver ast.Node
	var name string

	left := p.cur
	if p.peekIs(token.Dot) {
		recv, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Dot, "."); err != nil {
			return nil, err
		}
		n, _, err := p.parseMessageName()
		if err != nil {
			return nil, err
		}
		receiver, name = recv, n
	} else {
		_ = left
		n, _, err := p.parseMessageName()
		if err != nil {
			return nil, err
		}
		name = n
	}

	typeArgs, err := p.parseOptionalTypeArguments()
	if err != nil {
		return nil, err
	}
	args, err := p.parseOptionalArguments()
	if err != nil {
		return nil, err
	}
	retType, err := p.parseOptionalReturnType()
	if err != nil {
		return nil, err
	}
	throwType, err := p.parseOptionalThrowType()
	if err != nil {
		return nil, err
	}

	var body ast.Node
	if p.accept(token.LBrace) {
		body, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}

	return &ast.Method{
		Position:      pos(start),
		Receiver:      receiver,
		Name:          name,
		TypeArguments: typeArgs,
		Arguments:     args,
		ReturnType:    retType,
		ThrowType:     throwType,
		Body:          body,
	}, nil
}

func (p *Parser) parseOptionalArguments() ([]ast.Node, error) {
	if !p.accept(token.LParen) {
		return nil, nil
	}
	return p.parseArgumentDefines()
}

// parseArgumentDefines parses a comma-separated list of argument
// definitions terminated by `)`: an optional leading `*` marks the rest
// argument, then a name, an optional `: Type | Type`, and an optional
// `= default`.
func (p *Parser) parseArgumentDefines() ([]ast.Node, error) {
	var args []ast.Node

	for !p.nextIs(token.RParen) {
		rest := p.accept(token.Star)

		nameTok := p.cur
		if nameTok.Kind != token.Ident {
			return nil, diag.New(nameTok, "an argument name")
		}
		p.nextToken()

		var argType ast.Node
		if p.accept(token.Colon) {
			t, err := p.parseTypeNameOrUnion()
			if err != nil {
				return nil, err
			}
			argType = t
		}

		var def ast.Node
		if p.accept(token.Assign) {
			d, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			def = d
		}

		args = append(args, &ast.ArgumentDefine{
			Position: pos(nameTok),
			Name:     nameTok.Text,
			Type:     argType,
			Default:  def,
			Rest:     rest,
		})

		if p.accept(token.Comma) {
			continue
		}
		break
	}

	if _, err := p.expect(token.RParen, ")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseLetDefine() (ast.Node, error) {
	start := p.cur
	p.nextToken() // consume 'let'

	target, err := p.parseVariableName()
	if err != nil {
		return nil, err
	}
	varType, err := p.parseOptionalVariableType()
	if err != nil {
		return nil, err
	}
	value, err := p.parseVariableValue()
	if err != nil {
		return nil, err
	}

	return &ast.LetDefine{Position: pos(start), Target: target, Type: varType, Value: value}, nil
}

func (p *Parser) parseVarDefine() (ast.Node, error) {
	start := p.cur
	p.nextToken() // consume 'var'

	target, err := p.parseVariableName()
	if err != nil {
		return nil, err
	}
	varType, err := p.parseOptionalVariableType()
	if err != nil {
		return nil, err
	}
	value, err := p.parseVariableValue()
	if err != nil {
		return nil, err
	}

	return &ast.VarDefine{Position: pos(start), Target: target, Type: varType, Value: value}, nil
}

func (p *Parser) parseVariableName() (ast.Node, error) {
	start := p.cur
	switch start.Kind {
	case token.Ident:
		p.nextToken()
		return &ast.Identifier{Position: pos(start), Name: start.Text}, nil
	case token.Attribute:
		p.nextToken()
		return &ast.Attribute{Position: pos(start), Name: start.Text}, nil
	case token.Constant:
		return p.parseConstant()
	default:
		return nil, diag.New(start, "an identifier, attribute, or constant")
	}
}

func (p *Parser) parseOptionalVariableType() (ast.Node, error) {
	if !p.accept(token.Colon) {
		return nil, nil
	}
	start, err := p.expect(token.Constant, "a constant")
	if err != nil {
		return nil, err
	}
	var node ast.Node = &ast.Constant{Position: pos(start), Name: start.Text}
	for p.accept(token.ColonColon) {
		step, err := p.expect(token.Constant, "a constant")
		if err != nil {
			return nil, err
		}
		node = &ast.Constant{Position: pos(step), Name: step.Text, Receiver: node}
	}
	return node, nil
}

func (p *Parser) parseVariableValue() (ast.Node, error) {
	if _, err := p.expect(token.Assign, "="); err != nil {
		return nil, err
	}
	return p.parseExpression()
}

func (p *Parser) parseClass() (ast.Node, error) {
	start := p.cur
	p.nextToken() // consume 'class'

	name, err := p.expect(token.Constant, "a class name")
	if err != nil {
		return nil, err
	}

	typeArgs, err := p.parseOptionalTypeArguments()
	if err != nil {
		return nil, err
	}

	var implements []ast.Node
	for p.nextIs(token.KwImpl) {
		implTok := p.cur
		p.nextToken()
		impl, err := p.parseImplementTrait(implTok)
		if err != nil {
			return nil, err
		}
		implements = append(implements, impl)
	}

	if _, err := p.expect(token.LBrace, "{"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ast.Class{
		Position:      pos(start),
		Name:          name.Text,
		TypeArguments: typeArgs,
		Implements:    implements,
		Body:          body,
	}, nil
}

func (p *Parser) parseTrait() (ast.Node, error) {
	start := p.cur
	p.nextToken() // consume 'trait'

	name, err := p.expect(token.Constant, "a trait name")
	if err != nil {
		return nil, err
	}
	typeArgs, err := p.parseOptionalTypeArguments()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace, "{"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ast.Trait{Position: pos(start), Name: name.Text, TypeArguments: typeArgs, Body: body}, nil
}

// parseImplementTrait parses one `impl T!(...)? (old as new, ...)?` clause
// of a class definition. The type's own `!(...)` arguments are parsed as
// Implement.TypeArguments directly, rather than nested inside TypeName, so
// TypeName always names the bare trait being implemented.
func (p *Parser) parseImplementTrait(start token.Token) (ast.Node, error) {
	typeName, err := p.parseConstant()
	if err != nil {
		return nil, err
	}
	typeArgs, err := p.parseOptionalTypeArguments()
	if err != nil {
		return nil, err
	}

	var renames []ast.RenamePair
	if p.accept(token.LParen) {
		renames, err = p.parseTraitRenames()
		if err != nil {
			return nil, err
		}
	}

	return &ast.Implement{Position: pos(start), TypeName: typeName, TypeArguments: typeArgs, Renames: renames}, nil
}

func (p *Parser) parseTraitRenames() ([]ast.RenamePair, error) {
	var renames []ast.RenamePair
	for {
		oldTok, err := p.expect(token.Ident, "an identifier")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.KwAs, "as"); err != nil {
			return nil, err
		}
		newTok, err := p.expect(token.Ident, "an identifier")
		if err != nil {
			return nil, err
		}
		renames = append(renames, ast.RenamePair{
			Old: &ast.Identifier{Position: pos(oldTok), Name: oldTok.Text},
			New: &ast.Identifier{Position: pos(newTok), Name: newTok.Text},
		})

		if p.accept(token.Comma) {
			continue
		}
		break
	}
	if _, err := p.expect(token.RParen, ")"); err != nil {
		return nil, err
	}
	return renames, nil
}

func (p *Parser) parseReturn() (ast.Node, error) {
	start := p.cur
	p.nextToken() // consume 'return'

	var value ast.Node
	if p.isArgumentStart(start.Line) {
		v, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		value = v
	}

	return &ast.Return{Position: pos(start), Value: value}, nil
}

func (p *Parser) parseThrow() (ast.Node, error) {
	start := p.cur
	p.nextToken() // consume 'throw'

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Throw{Position: pos(start), Value: value}, nil
}

// parseTry parses `try <block-or-expr> [else [(ident)] <block-or-expr>]`.
func (p *Parser) parseTry() (ast.Node, error) {
	start := p.cur
	p.nextToken() // consume 'try'

	body, err := p.parseBlockWithOptionalBraces()
	if err != nil {
		return nil, err
	}

	var elseArg ast.Node
	var elseBody ast.Node
	if p.accept(token.KwElse) {
		elseArg, err = p.parseOptionalElseArg()
		if err != nil {
			return nil, err
		}
		elseBody, err = p.parseBlockWithOptionalBraces()
		if err != nil {
			return nil, err
		}
	}

	return &ast.Try{Position: pos(start), Body: body, ElseArgument: elseArg, ElseBody: elseBody}, nil
}

func (p *Parser) parseOptionalElseArg() (ast.Node, error) {
	if !p.accept(token.LParen) {
		return nil, nil
	}
	name, err := p.expect(token.Ident, "an identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen, ")"); err != nil {
		return nil, err
	}
	return &ast.Identifier{Position: pos(name), Name: name.Text}, nil
}

func (p *Parser) parseBlock() (ast.Node, error) {
	start := p.cur
	var body []ast.Node
	for !p.nextIs(token.RBrace) {
		if p.cur.Kind == token.EOF {
			return nil, diag.New(p.cur, "}")
		}
		n, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		body = append(body, n)
	}
	if _, err := p.expect(token.RBrace, "}"); err != nil {
		return nil, err
	}
	return &ast.Expressions{Position: pos(start), Nodes: body}, nil
}

// parseBlockWithOptionalBraces parses either a `{...}` braced sequence or,
// absent the opening brace, a single expression wrapped in Expressions.
func (p *Parser) parseBlockWithOptionalBraces() (ast.Node, error) {
	start := p.cur
	if p.accept(token.LBrace) {
		return p.parseBlock()
	}
	n, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Expressions{Position: pos(start), Nodes: []ast.Node{n}}, nil
}

// parseImport parses a dotted path of identifiers, ending either with a
// single bare Constant or a `(C [as C], ...)` symbol list.
func (p *Parser) parseImport() (ast.Node, error) {
	start := p.cur
	p.nextToken() // consume 'import'

	var steps []ast.Node
	var symbols []ast.Node

	for {
		step := p.cur
		switch step.Kind {
		case token.Ident:
			p.nextToken()
			steps = append(steps, &ast.Identifier{Position: pos(step), Name: step.Text})
		case token.Constant:
			p.nextToken()
			symbols = append(symbols, &ast.ImportSymbol{
				Position: pos(step),
				Symbol:   &ast.Constant{Position: pos(step), Name: step.Text},
			})
			return &ast.Import{Position: pos(start), Steps: steps, Symbols: symbols}, nil
		default:
			return nil, diag.New(step, "an identifier or constant")
		}

		if !p.accept(token.ColonColon) {
			break
		}

		if p.accept(token.LParen) {
			syms, err := p.parseImportSymbols()
			if err != nil {
				return nil, err
			}
			symbols = syms
			break
		}
	}

	return &ast.Import{Position: pos(start), Steps: steps, Symbols: symbols}, nil
}

func (p *Parser) parseImportSymbols() ([]ast.Node, error) {
	var symbols []ast.Node
	for {
		start, err := p.expect(token.Constant, "a constant")
		if err != nil {
			return nil, err
		}
		symbolPos := pos(start)
		symbol := &ast.Constant{Position: symbolPos, Name: start.Text}

		var alias ast.Node
		if p.accept(token.KwAs) {
			aliasTok, err := p.expect(token.Constant, "a constant")
			if err != nil {
				return nil, err
			}
			alias = &ast.Constant{Position: pos(aliasTok), Name: aliasTok.Text}
		}

		symbols = append(symbols, &ast.ImportSymbol{Position: symbolPos, Symbol: symbol, Alias: alias})

		if p.accept(token.Comma) {
			continue
		}
		break
	}
	if _, err := p.expect(token.RParen, ")"); err != nil {
		return nil, err
	}
	return symbols, nil
}

// parseTypeDefine parses `type Name!(...)? = TypeOrUnion`.
func (p *Parser) parseTypeDefine() (ast.Node, error) {
	start := p.cur
	p.nextToken() // consume 'type'

	name, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Assign, "="); err != nil {
		return nil, err
	}
	value, err := p.parseTypeNameOrUnion()
	if err != nil {
		return nil, err
	}

	return &ast.TypeDefine{Position: pos(start), Name: name, Value: value}, nil
}
