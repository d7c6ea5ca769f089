package compileerr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/knorrfg/leviscript/internal/compileerr"
	"github.com/knorrfg/leviscript/internal/types"
)

func TestErrorMessagesPerKind(t *testing.T) {
	cases := []struct {
		name string
		err  *compileerr.Error
		want string
	}{
		{"undefined symbol", compileerr.NewUndefinedSymbol(3, "foo"), `undefined symbol "foo" (node 3)`},
		{"not callable", compileerr.NewNotCallable(4), "not callable (node 4)"},
		{"unused var", compileerr.NewUnusedVar(5, "x"), `unused parameter "x" (node 5)`},
		{"compiler bug", compileerr.NewCompilerBug(6, "fragment is not invocable"), "compiler bug at node 6: fragment is not invocable"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.err.Error(); got != c.want {
				t.Fatalf("got %q, want %q", got, c.want)
			}
		})
	}
}

func TestTypeMismatchMessageIncludesExpectedAndFound(t *testing.T) {
	err := compileerr.NewTypeMismatch(7, types.Single(types.StrType()), types.IntType())
	got := err.Error()
	want := fmt.Sprintf("type mismatch at node 7: expected %s, found %s", types.Single(types.StrType()), types.IntType())
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestAsUnwrapsWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("inferring block: %w", compileerr.NewUndefinedSymbol(1, "y"))
	e, ok := compileerr.As(wrapped)
	if !ok {
		t.Fatalf("expected As to find the wrapped *compileerr.Error")
	}
	if e.Kind != compileerr.UndefinedSymbol {
		t.Fatalf("got kind %v, want UndefinedSymbol", e.Kind)
	}
}

func TestAsRejectsUnrelatedError(t *testing.T) {
	if _, ok := compileerr.As(errors.New("plain error")); ok {
		t.Fatalf("expected As to reject a plain error")
	}
}
