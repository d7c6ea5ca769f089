// Package parser is the other half of spec.md §1/§6's external "grammar
// and parse-tree-to-AST translation" collaborator: it turns Leviscript
// source text into an *ast.Block plus a span.Table indexed by the same
// AST ids the core consumes, exercising the pipeline end to end.
//
// Concrete surface syntax is this package's own invention (spec.md §8's
// scenarios are AST sketches, not concrete syntax — see SPEC_FULL.md).
// Grammar, informally:
//
//	block      = phrase (SEMI phrase)* SEMI?
//	phrase     = let | value
//	let        = "let" IDENT "=" value
//	value      = call | symbol | IntLit | FloatLit | BoolLit | strlit
//	           | fragment | "{" block "}" | "(" value ")"
//	call       = IDENT "(" (value ("," value)*)? ")"
//	symbol     = IDENT                      ; not followed by "("
//	fragment   = "|" (IDENT ","?)* "|" value
//	strlit     = '"' (text | "$" IDENT | "${" value "}")* '"'
//
// A bare identifier is always a symbol reference; invoking a built-in
// (or naming one as a value at all) always takes explicit call syntax,
// which is what resolves the one real ambiguity in spec.md §8's
// scenarios: scenario 4's block result `s` must read the bound
// variable's value, while scenario 1's `echo hi`-style invocation must
// name a process to run — "IDENT(...)" vs bare "IDENT" makes that
// unambiguous without any lookahead into type information.
package parser

import (
	"strings"

	"github.com/knorrfg/leviscript/internal/ast"
	"github.com/knorrfg/leviscript/internal/lexer"
	"github.com/knorrfg/leviscript/internal/span"
)

// Parser turns a token stream into an AST, assigning every node a dense
// id from a single sequence and recording its source position in the
// shared span.Table (spec.md §3).
type Parser struct {
	file  string
	l     *lexer.Lexer
	table *span.Table
	cur   lexer.Token
	peek  lexer.Token
}

// New creates a Parser over src. file is used only for error/position
// reporting.
func New(file, src string) *Parser {
	p := &Parser{file: file, l: lexer.New(src), table: span.NewTable()}
	p.advance()
	p.advance()
	return p
}

// Parse lexes and parses src in one call, returning the root Block and
// the span.Table the core resolves its ids through.
func Parse(file, src string) (*ast.Block, *span.Table, error) {
	p := New(file, src)
	return p.ParseProgram()
}

// ParseProgram parses the whole input as an (implicitly brace-less) top
// level Block, requiring the token stream to be fully consumed.
func (p *Parser) ParseProgram() (*ast.Block, *span.Table, error) {
	id := p.nextID(p.curPos())
	phrases, err := p.parsePhrases(func() bool { return p.cur.Type == lexer.EOF })
	if err != nil {
		return nil, nil, err
	}
	return &ast.Block{ID: id, Phrases: phrases}, p.table, nil
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curPos() span.Position {
	return span.Position{File: p.file, Line: p.cur.Line, Column: p.cur.Column, Offset: p.cur.Offset}
}

func (p *Parser) nextID(pos span.Position) ast.ID {
	return p.table.Add(pos)
}

func (p *Parser) skipSeparators() {
	for p.cur.Type == lexer.SEMI {
		p.advance()
	}
}

func (p *Parser) parsePhrases(stop func() bool) ([]*ast.Phrase, error) {
	var phrases []*ast.Phrase
	p.skipSeparators()
	for !stop() {
		ph, err := p.parsePhrase()
		if err != nil {
			return nil, err
		}
		phrases = append(phrases, ph)
		if !stop() && p.cur.Type != lexer.SEMI {
			return nil, newError(p.curPos(), "expected ';' or newline between phrases, found %s", p.cur.Type)
		}
		p.skipSeparators()
	}
	return phrases, nil
}

func (p *Parser) parsePhrase() (*ast.Phrase, error) {
	id := p.nextID(p.curPos())
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Phrase{ID: id, Expr: expr}, nil
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	if p.cur.Type == lexer.LET {
		return p.parseLet()
	}
	return p.parseValue()
}

func (p *Parser) parseLet() (ast.Expr, error) {
	id := p.nextID(p.curPos())
	p.advance() // consume "let"
	if p.cur.Type != lexer.IDENT {
		return nil, newError(p.curPos(), "expected identifier after 'let', found %s", p.cur.Type)
	}
	name := p.cur.Literal
	p.advance()
	if p.cur.Type != lexer.ASSIGN {
		return nil, newError(p.curPos(), "expected '=' in let binding, found %s", p.cur.Type)
	}
	p.advance()
	rhs, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &ast.Let{ID: id, Name: name, Rhs: rhs}, nil
}

func (p *Parser) parseValue() (ast.Expr, error) {
	switch p.cur.Type {
	case lexer.IDENT:
		if p.peek.Type == lexer.LPAREN {
			return p.parseCall()
		}
		return p.parseSymbol(), nil
	case lexer.INT:
		return p.parseIntLit()
	case lexer.FLOAT:
		return p.parseFloatLit()
	case lexer.BOOLLIT:
		return p.parseBoolLit(), nil
	case lexer.STRING:
		return p.parseStrLit()
	case lexer.LBRACE:
		return p.parseBlockExpr()
	case lexer.PIPE:
		return p.parseFragment()
	case lexer.LPAREN:
		p.advance()
		inner, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if p.cur.Type != lexer.RPAREN {
			return nil, newError(p.curPos(), "expected ')', found %s", p.cur.Type)
		}
		p.advance()
		return inner, nil
	default:
		return nil, newError(p.curPos(), "unexpected token %s", p.cur.Type)
	}
}

func (p *Parser) parseSymbol() *ast.Symbol {
	id := p.nextID(p.curPos())
	name := p.cur.Literal
	p.advance()
	return &ast.Symbol{ID: id, Name: name}
}

func (p *Parser) parseIntLit() (ast.Expr, error) {
	id := p.nextID(p.curPos())
	v, err := parseInt(p.cur.Literal)
	if err != nil {
		return nil, newError(p.curPos(), "invalid integer literal %q: %v", p.cur.Literal, err)
	}
	p.advance()
	return &ast.IntLit{ID: id, Value: v}, nil
}

func (p *Parser) parseFloatLit() (ast.Expr, error) {
	id := p.nextID(p.curPos())
	v, err := parseFloat(p.cur.Literal)
	if err != nil {
		return nil, newError(p.curPos(), "invalid float literal %q: %v", p.cur.Literal, err)
	}
	p.advance()
	return &ast.FloatLit{ID: id, Value: v}, nil
}

func (p *Parser) parseBoolLit() *ast.BoolLit {
	id := p.nextID(p.curPos())
	v := p.cur.Literal == "#t"
	p.advance()
	return &ast.BoolLit{ID: id, Value: v}
}

// parseCall parses "name(arg, arg, ...)". The callee is itself a Symbol
// node with its own id (spec.md §3: Call.Callee is an Expr).
func (p *Parser) parseCall() (ast.Expr, error) {
	callID := p.nextID(p.curPos())
	calleeID := p.nextID(p.curPos())
	name := p.cur.Literal
	p.advance() // consume IDENT
	p.advance() // consume "("

	var args []ast.Expr
	for p.cur.Type != lexer.RPAREN {
		if p.cur.Type == lexer.EOF {
			return nil, newError(p.curPos(), "unterminated call to %q: expected ')'", name)
		}
		arg, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur.Type == lexer.COMMA {
			p.advance()
			continue
		}
		break
	}
	if p.cur.Type != lexer.RPAREN {
		return nil, newError(p.curPos(), "expected ',' or ')' in call to %q, found %s", name, p.cur.Type)
	}
	p.advance() // consume ")"

	return &ast.Call{ID: callID, Callee: &ast.Symbol{ID: calleeID, Name: name}, Args: args}, nil
}

func (p *Parser) parseBlockExpr() (ast.Expr, error) {
	exprID := p.nextID(p.curPos())
	p.advance() // consume "{"
	blockID := p.nextID(p.curPos())
	phrases, err := p.parsePhrases(func() bool { return p.cur.Type == lexer.RBRACE || p.cur.Type == lexer.EOF })
	if err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.RBRACE {
		return nil, newError(p.curPos(), "expected '}', found %s", p.cur.Type)
	}
	p.advance() // consume "}"
	return &ast.BlockExpr{ID: exprID, Block: &ast.Block{ID: blockID, Phrases: phrases}}, nil
}

// parseFragment parses "|a b c| body" — the parameter names sit between
// two pipes, separated by optional commas, followed by a single value
// expression body (spec.md §3, §4.1: the body is usage-mined for
// parameter types, there is no declared-type syntax here).
func (p *Parser) parseFragment() (ast.Expr, error) {
	id := p.nextID(p.curPos())
	p.advance() // consume opening "|"

	var argDefs []ast.ArgDef
	for p.cur.Type != lexer.PIPE {
		if p.cur.Type != lexer.IDENT {
			return nil, newError(p.curPos(), "expected parameter name in fragment, found %s", p.cur.Type)
		}
		argDefs = append(argDefs, ast.ArgDef{ID: p.nextID(p.curPos()), Name: p.cur.Literal})
		p.advance()
		if p.cur.Type == lexer.COMMA {
			p.advance()
		}
	}
	p.advance() // consume closing "|"

	body, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &ast.FnFragment{ID: id, Args: argDefs, Body: body}, nil
}

// parseStrLit splits a scanned string token's raw content into literal
// runs, $symbol interpolations, and ${expr} sub-expressions (spec.md §3:
// StrLit parts are PureStrLit | Symbol | SubExpr).
func (p *Parser) parseStrLit() (ast.Expr, error) {
	pos := p.curPos()
	id := p.nextID(pos)
	raw := p.cur.Literal
	p.advance()

	parts, err := p.splitInterpolation(raw, pos)
	if err != nil {
		return nil, err
	}
	return &ast.StrLit{ID: id, Parts: parts}, nil
}

func (p *Parser) splitInterpolation(raw string, pos span.Position) ([]ast.StrLitPart, error) {
	var parts []ast.StrLitPart
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, ast.StrLitPart{Kind: ast.PurePart, Literal: lit.String()})
			lit.Reset()
		}
	}

	i := 0
	for i < len(raw) {
		c := raw[i]
		if c != '$' || i+1 >= len(raw) {
			lit.WriteByte(c)
			i++
			continue
		}
		next := raw[i+1]
		if next == '{' {
			flush()
			depth := 1
			j := i + 2
			for j < len(raw) && depth > 0 {
				switch raw[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				if depth > 0 {
					j++
				}
			}
			if depth != 0 {
				return nil, newError(pos, "unterminated ${...} interpolation")
			}
			inner := raw[i+2 : j]
			expr, err := p.parseEmbedded(inner, pos)
			if err != nil {
				return nil, err
			}
			parts = append(parts, ast.StrLitPart{Kind: ast.SubExprPart, SubExpr: expr})
			i = j + 1
			continue
		}
		if isIdentStart(next) {
			flush()
			j := i + 1
			for j < len(raw) && isIdentCont(raw[j]) {
				j++
			}
			name := raw[i+1 : j]
			parts = append(parts, ast.StrLitPart{
				Kind:   ast.SymbolPart,
				Symbol: &ast.Symbol{ID: p.nextID(pos), Name: name},
			})
			i = j
			continue
		}
		lit.WriteByte(c)
		i++
	}
	flush()
	return parts, nil
}

// parseEmbedded parses src as a single value expression, reusing this
// parser's span.Table so every node in the interpolated sub-expression
// still gets a dense, unique id (the position recorded for each is the
// enclosing string literal's position — interpolated spans are not
// tracked at sub-character precision here).
func (p *Parser) parseEmbedded(src string, _ span.Position) (ast.Expr, error) {
	sub := &Parser{file: p.file, l: lexer.New(src), table: p.table}
	sub.advance()
	sub.advance()
	expr, err := sub.parseValue()
	if err != nil {
		return nil, err
	}
	if sub.cur.Type != lexer.EOF {
		return nil, newError(sub.curPos(), "unexpected trailing token %s in interpolated expression", sub.cur.Type)
	}
	return expr, nil
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}
