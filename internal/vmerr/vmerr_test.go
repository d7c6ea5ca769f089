package vmerr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/knorrfg/leviscript/internal/types"
	"github.com/knorrfg/leviscript/internal/vmerr"
)

func TestErrorMessagesPerKind(t *testing.T) {
	cases := []struct {
		name string
		err  *vmerr.Error
		want string
	}{
		{"runtime", vmerr.NewRuntime(3, "boom"), "runtime error at pc=3: boom"},
		{"stack empty", vmerr.NewStackEmpty(1), "stack empty at pc=1"},
		{"unknown builtin", vmerr.NewUnknownBuiltIn(2, "frobnicate"), `unknown built-in "frobnicate" at pc=2`},
		{"unexpected stack entry", vmerr.NewUnexpectedStackEntry(4), "unexpected stack entry at pc=4"},
		{"non executable opcode", vmerr.NewNonExecutableOpcode(5), "non-executable opcode at pc=5"},
		{"unexpected opcode", vmerr.NewUnexpectedOpcode(6, "PushPrimitive"), "unexpected opcode at pc=6: PushPrimitive"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.err.Error(); got != c.want {
				t.Fatalf("got %q, want %q", got, c.want)
			}
		})
	}
}

func TestTypeErrorMessageIncludesAccessedAndExpected(t *testing.T) {
	err := vmerr.NewTypeError(7, types.IntType(), types.Single(types.StrType()))
	got := err.Error()
	want := fmt.Sprintf("type error at pc=7: accessed %s, expected %s", types.IntType(), types.Single(types.StrType()))
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWithAstIDAnnotatesLocationWithoutMutatingOriginal(t *testing.T) {
	base := vmerr.NewStackEmpty(9)
	annotated := base.WithAstID(42)

	if base.HasAstID {
		t.Fatalf("expected original error to remain unannotated")
	}
	if !annotated.HasAstID || annotated.AstID != 42 {
		t.Fatalf("expected annotated copy to carry ast id 42, got %+v", annotated)
	}
	if got, want := annotated.Error(), "stack empty at node 42 (pc=9)"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestAsUnwrapsWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("while running: %w", vmerr.NewRuntime(0, "nope"))
	e, ok := vmerr.As(wrapped)
	if !ok {
		t.Fatalf("expected As to find the wrapped *vmerr.Error")
	}
	if e.Kind != vmerr.Runtime {
		t.Fatalf("got kind %v, want Runtime", e.Kind)
	}
}

func TestAsRejectsUnrelatedError(t *testing.T) {
	if _, ok := vmerr.As(errors.New("plain error")); ok {
		t.Fatalf("expected As to reject a plain error")
	}
}
