package vm

import (
	"github.com/google/uuid"

	"github.com/knorrfg/leviscript/internal/bytecode"
	"github.com/knorrfg/leviscript/internal/opcode"
	"github.com/knorrfg/leviscript/internal/vmerr"
)

// TraceHook is called once per dispatched instruction, before it runs,
// when one has been installed with SetTrace (SPEC_FULL.md §2's "--verbose
// execution trace, one log line per dispatched opcode"). internal/cli
// supplies the zap-backed implementation; this package stays ignorant of
// any particular logging library.
type TraceHook func(runID uuid.UUID, pc int, op opcode.Op)

// Runner drives a single bytecode program to completion (or to a runtime
// error), dispatching through dispatchTable by discriminant (spec.md
// §4.5). It is not safe for concurrent use; each invocation of a program
// gets its own Runner and Memory.
type Runner struct {
	pc       int
	text     []byte
	debug    bytecode.DebugInformation
	mem      *Memory
	registry BuiltinRegistry
	runID    uuid.UUID
	trace    TraceHook
}

// NewRunner builds a Runner ready to execute code's text against a fresh
// Memory seeded with code's data section. registry may be nil only for
// programs that never execute Exec/StrCat (e.g. pure-literal tests). Each
// Runner gets its own random run id, used to correlate trace log lines
// from the same execution (SPEC_FULL.md §3).
func NewRunner(code bytecode.ByteCode, debug bytecode.DebugInformation, registry BuiltinRegistry) *Runner {
	return &Runner{
		text:     code.Text,
		debug:    debug,
		mem:      NewMemory(code.Data),
		registry: registry,
		runID:    uuid.New(),
	}
}

// Memory exposes the runner's memory, e.g. for inspecting the final stack
// top in tests.
func (r *Runner) Memory() *Memory { return r.mem }

// RunID is the identifier generated for this Runner's execution.
func (r *Runner) RunID() uuid.UUID { return r.runID }

// SetTrace installs hook to be called before every dispatched
// instruction. Passing nil disables tracing.
func (r *Runner) SetTrace(hook TraceHook) { r.trace = hook }

// Step decodes and executes exactly one instruction, returning the
// process exit code and true once an Exit instruction has run.
func (r *Runner) Step() (code int32, exited bool, err error) {
	op, _, decErr := opcode.Decode(r.text[r.pc:])
	if decErr != nil {
		return 0, false, r.annotate(vmerr.NewNonExecutableOpcode(r.pc))
	}
	if r.trace != nil {
		r.trace(r.runID, r.pc, op)
	}
	if int(op.Disc) >= len(dispatchTable) || dispatchTable[op.Disc] == nil {
		return 0, false, r.annotate(vmerr.NewUnexpectedOpcode(r.pc, "no handler for "+op.Disc.String()))
	}
	out, execErr := dispatchTable[op.Disc](r, op, r.pc)
	if execErr != nil {
		return 0, false, r.annotate(execErr)
	}
	if out.exited {
		return out.exitCode, true, nil
	}
	r.pc = out.nextPc
	return 0, false, nil
}

// Run drives the program to completion, returning its exit code.
func (r *Runner) Run() (int32, error) {
	for {
		code, exited, err := r.Step()
		if err != nil {
			return 0, err
		}
		if exited {
			return code, nil
		}
		if r.pc >= len(r.text) {
			return 0, r.annotate(vmerr.NewRuntime(r.pc, "program ran off the end of its text without an Exit instruction"))
		}
	}
}

// annotate resolves the originating AST id for the pc the error occurred
// at, via the builder's offset→index→ast-id chain, before returning it to
// the caller (spec.md §7: errors must be locatable).
func (r *Runner) annotate(err error) error {
	ve, ok := vmerr.As(err)
	if !ok {
		return err
	}
	if id, ok := r.debug.AstIDFor(ve.Pc); ok {
		return ve.WithAstID(id)
	}
	return ve
}
