package lexer

import "testing"

func collect(src string) []Token {
	l := New(src)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

func TestNextTokenBasics(t *testing.T) {
	toks := collect(`let s = "hi"; echo(s)`)
	want := []TokenType{LET, IDENT, ASSIGN, STRING, SEMI, IDENT, LPAREN, IDENT, RPAREN, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Fatalf("token %d: got %s, want %s", i, toks[i].Type, w)
		}
	}
}

func TestNextTokenNumbers(t *testing.T) {
	toks := collect(`42 3.14`)
	if toks[0].Type != INT || toks[0].Literal != "42" {
		t.Fatalf("expected INT(42), got %v", toks[0])
	}
	if toks[1].Type != FLOAT || toks[1].Literal != "3.14" {
		t.Fatalf("expected FLOAT(3.14), got %v", toks[1])
	}
}

func TestNextTokenBoolLit(t *testing.T) {
	toks := collect(`#t #f`)
	if toks[0].Type != BOOLLIT || toks[0].Literal != "#t" {
		t.Fatalf("expected BOOLLIT(#t), got %v", toks[0])
	}
	if toks[1].Type != BOOLLIT || toks[1].Literal != "#f" {
		t.Fatalf("expected BOOLLIT(#f), got %v", toks[1])
	}
}

func TestNextTokenStringEscapes(t *testing.T) {
	toks := collect(`"a\"b\\c\$d"`)
	if toks[0].Type != STRING {
		t.Fatalf("expected STRING, got %v", toks[0])
	}
	if toks[0].Literal != `a"b\c$d` {
		t.Fatalf("got %q", toks[0].Literal)
	}
}

func TestNextTokenUnterminatedStringIsIllegal(t *testing.T) {
	toks := collect(`"unterminated`)
	if toks[0].Type != ILLEGAL {
		t.Fatalf("expected ILLEGAL for unterminated string, got %v", toks[0])
	}
}

func TestNextTokenSkipsLineComments(t *testing.T) {
	toks := collect("## a comment\nlet")
	// the newline ends the comment and itself becomes a SEMI
	if toks[0].Type != SEMI {
		t.Fatalf("expected SEMI after comment line, got %v", toks[0])
	}
	if toks[1].Type != LET {
		t.Fatalf("expected LET after comment, got %v", toks[1])
	}
}

func TestNextTokenPositions(t *testing.T) {
	toks := collect("let\nx")
	if toks[0].Line != 1 {
		t.Fatalf("expected 'let' on line 1, got %d", toks[0].Line)
	}
	// toks[1] is the SEMI from the newline; toks[2] is 'x' on line 2
	if toks[2].Line != 2 {
		t.Fatalf("expected 'x' on line 2, got %d", toks[2].Line)
	}
}
