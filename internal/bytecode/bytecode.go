// Package bytecode holds the final, immutable output of the builder: the
// encoded instruction text plus the data section (spec.md §2 item 6), and
// the debug information that lets a runtime error be traced back to the
// AST node that produced the faulting instruction.
package bytecode

import (
	"fmt"
	"sort"
	"strings"

	"github.com/knorrfg/leviscript/internal/ast"
	"github.com/knorrfg/leviscript/internal/opcode"
	"github.com/knorrfg/leviscript/internal/value"
)

// Version is the semantic-versioned triple embedded in a persisted
// bytecode file's header (spec.md §6: "a version tag is embedded"; no
// cross-version compatibility is required, a mismatch on load is an
// error).
type Version struct {
	Major, Minor, Patch uint16
}

func (v Version) String() string { return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch) }

// CurrentVersion is the version this build of the compiler/VM stamps
// onto bytecode it produces.
var CurrentVersion = Version{Major: 0, Minor: 1, Patch: 0}

// ByteCode is the final program: a byte-addressed instruction stream and
// the read-only data section it references (spec.md §3, §6).
type ByteCode struct {
	Text []byte
	Data []value.Comptime
}

// DebugInformation maps each emitted opcode back to its AST provenance:
// AstIDs is indexed by opcode ordinal (not byte offset); Index maps a
// byte offset to that ordinal (spec.md §2 item 6, §7).
type DebugInformation struct {
	AstIDs []ast.ID
	Index  map[int]int
}

// AstIDFor resolves a byte offset to the AST id of the instruction
// located there, per the offset→index→ast_ids chain spec.md §7 and §4.6
// describe for annotating runtime errors.
func (d DebugInformation) AstIDFor(offset int) (ast.ID, bool) {
	idx, ok := d.Index[offset]
	if !ok || idx < 0 || idx >= len(d.AstIDs) {
		return 0, false
	}
	return d.AstIDs[idx], true
}

// Disassemble renders one line per instruction, in byte-offset order:
// "<offset>: <opcode>  ; ast=<id>". It is the textual form snapshot tests
// in this package assert against (SPEC_FULL.md §2, go-snaps).
func (bc ByteCode) Disassemble(debug DebugInformation) string {
	offsets := make([]int, 0, len(debug.Index))
	for off := range debug.Index {
		offsets = append(offsets, off)
	}
	sort.Ints(offsets)

	var b strings.Builder
	rest := bc.Text
	base := 0
	for _, off := range offsets {
		if off != base {
			// Index is expected to be dense/contiguous; a gap indicates a
			// corrupt debug table, but disassembly renders what it can.
			rest = bc.Text[off:]
			base = off
		}
		op, n, err := opcode.Decode(rest)
		if err != nil {
			fmt.Fprintf(&b, "%d: <decode error: %v>\n", off, err)
			break
		}
		astID, _ := debug.AstIDFor(off)
		fmt.Fprintf(&b, "%d: %s  ; ast=%d\n", off, op, astID)
		rest = rest[n:]
		base += n
	}
	return b.String()
}
