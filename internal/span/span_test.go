package span_test

import (
	"testing"

	"github.com/knorrfg/leviscript/internal/span"
)

func TestTableAddAssignsSequentialIDs(t *testing.T) {
	tbl := span.NewTable()
	a := tbl.Add(span.Position{File: "x.lev", Line: 1, Column: 1})
	b := tbl.Add(span.Position{File: "x.lev", Line: 2, Column: 5})
	if a != 0 || b != 1 {
		t.Fatalf("expected sequential ids 0, 1, got %d, %d", a, b)
	}
	if tbl.Len() != 2 {
		t.Fatalf("expected len 2, got %d", tbl.Len())
	}
}

func TestTableGetUnknownIDNotFound(t *testing.T) {
	tbl := span.NewTable()
	tbl.Add(span.Position{Line: 1, Column: 1})
	if _, ok := tbl.Get(5); ok {
		t.Fatalf("expected id 5 to be absent from a 1-entry table")
	}
}

func TestPositionStringWithAndWithoutFile(t *testing.T) {
	withFile := span.Position{File: "x.lev", Line: 3, Column: 7}
	if got, want := withFile.String(), "x.lev:3:7"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	noFile := span.Position{Line: 3, Column: 7}
	if got, want := noFile.String(), "3:7"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
