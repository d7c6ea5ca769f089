package vm

import (
	"github.com/knorrfg/leviscript/internal/opcode"
	"github.com/knorrfg/leviscript/internal/value"
	"github.com/knorrfg/leviscript/internal/vmerr"
)

// outcome is what an exec function reports back to the dispatch loop:
// either the next pc to resume at, or a process exit code (spec.md
// §4.5's ExecOutcome).
type outcome struct {
	nextPc   int
	exited   bool
	exitCode int32
}

func pcOutcome(pc int) outcome { return outcome{nextPc: pc} }

// execFunc is the shape of every dispatch-table entry: spec.md §4.5 asks
// for "a direct array indexed by discriminant", built once below from the
// opcode declaration order.
type execFunc func(r *Runner, op opcode.Op, pc int) (outcome, error)

var dispatchTable [opcode.Count()]execFunc

func init() {
	dispatchTable[opcode.DExec] = execExec
	dispatchTable[opcode.DStrCat] = execStrCat
	dispatchTable[opcode.DPushDataSecRef] = execPushDataSecRef
	dispatchTable[opcode.DPushPrimitive] = execPushPrimitive
	dispatchTable[opcode.DRepushStackEntry] = execRepushStackEntry
	dispatchTable[opcode.DPushRefToStack] = execPushRefToStack
	dispatchTable[opcode.DToStr] = execToStr
	dispatchTable[opcode.DToBool] = execToBool
	dispatchTable[opcode.DPop] = execPop
	dispatchTable[opcode.DPopFree] = execPopFree
	dispatchTable[opcode.DStackTopToReg] = execStackTopToReg
	dispatchTable[opcode.DReadReg] = execReadReg
	dispatchTable[opcode.DExit] = execExit
}

func advance(pc int, op opcode.Op) int { return pc + opcode.SerializedSize(op) }

// execExec and execStrCat are the two opcode-backed built-ins spec.md
// §4.6 routes through the external registry's invoke_builtin; everything
// else here is VM-internal memory manipulation with no built-in policy.

func execExec(r *Runner, op opcode.Op, pc int) (outcome, error) {
	if r.registry == nil {
		return outcome{}, vmerr.NewRuntime(pc, "no built-in registry configured")
	}
	if err := r.registry.Invoke("exec", r.mem); err != nil {
		return outcome{}, atPc(err, pc)
	}
	return pcOutcome(advance(pc, op)), nil
}

func execStrCat(r *Runner, op opcode.Op, pc int) (outcome, error) {
	if r.registry == nil {
		return outcome{}, vmerr.NewRuntime(pc, "no built-in registry configured")
	}
	if err := r.registry.Invoke("strcat", r.mem); err != nil {
		return outcome{}, atPc(err, pc)
	}
	return pcOutcome(advance(pc, op)), nil
}

// atPc stamps a registry-raised error with the pc of the instruction that
// invoked it: the registry (internal/builtins) has no notion of program
// counters, so every *vmerr.Error it raises carries a placeholder Pc that
// must be corrected before it reaches Runner.annotate's offset lookup.
func atPc(err error, pc int) error {
	if ve, ok := vmerr.As(err); ok {
		cp := *ve
		cp.Pc = pc
		return &cp
	}
	return err
}

func execPushDataSecRef(r *Runner, op opcode.Op, pc int) (outcome, error) {
	if int(op.U32) >= len(r.mem.DataSeg) {
		return outcome{}, vmerr.NewRuntime(pc, "data section index out of range")
	}
	r.mem.Push(value.RuntimeOfRef(value.Ref{Kind: value.DataSecRef, Idx: op.U32}))
	return pcOutcome(advance(pc, op)), nil
}

func execPushPrimitive(r *Runner, op opcode.Op, pc int) (outcome, error) {
	r.mem.Push(value.RuntimeCopy(fromOpcodeCopy(op.Copy)))
	return pcOutcome(advance(pc, op)), nil
}

func execRepushStackEntry(r *Runner, op opcode.Op, pc int) (outcome, error) {
	if int(op.U32) >= len(r.mem.Stack) {
		return outcome{}, vmerr.NewUnexpectedStackEntry(pc)
	}
	r.mem.Push(r.mem.Stack[op.U32])
	return pcOutcome(advance(pc, op)), nil
}

// execPushRefToStack realizes DataRef(StackIdx) as a clone of the
// addressed entry, the same as RepushStackEntry: this value model has no
// distinct "reference to a stack slot" representation separate from the
// value it resolves to, so a would-be indirect reference and a direct
// clone are observationally identical (see DESIGN.md). DataRef(DataSecIdx)
// pushes a genuine DataSecRef.
func execPushRefToStack(r *Runner, op opcode.Op, pc int) (outcome, error) {
	switch op.Ref.Kind {
	case opcode.StackIdx:
		if int(op.Ref.Idx) >= len(r.mem.Stack) {
			return outcome{}, vmerr.NewUnexpectedStackEntry(pc)
		}
		r.mem.Push(r.mem.Stack[op.Ref.Idx])
	case opcode.DataSecIdx:
		if int(op.Ref.Idx) >= len(r.mem.DataSeg) {
			return outcome{}, vmerr.NewRuntime(pc, "data section index out of range")
		}
		r.mem.Push(value.RuntimeOfRef(value.Ref{Kind: value.DataSecRef, Idx: op.Ref.Idx}))
	default:
		return outcome{}, vmerr.NewUnexpectedOpcode(pc, "unknown DataRef kind")
	}
	return pcOutcome(advance(pc, op)), nil
}

func execToStr(r *Runner, op opcode.Op, pc int) (outcome, error) {
	v, err := r.mem.Pop(pc)
	if err != nil {
		return outcome{}, err
	}
	s, err := r.mem.RenderString(pc, v)
	if err != nil {
		return outcome{}, err
	}
	r.mem.PushOwnedString(s)
	return pcOutcome(advance(pc, op)), nil
}

func execToBool(r *Runner, op opcode.Op, pc int) (outcome, error) {
	v, err := r.mem.Pop(pc)
	if err != nil {
		return outcome{}, err
	}
	b, err := toBool(r.mem, pc, v)
	if err != nil {
		return outcome{}, err
	}
	r.mem.Push(value.RuntimeCopy(value.Bool(b)))
	return pcOutcome(advance(pc, op)), nil
}

func toBool(mem *Memory, pc int, v value.Runtime) (bool, error) {
	if v.IsCopy {
		switch v.Copy.Kind {
		case value.CopyBool:
			return v.Copy.Bool, nil
		case value.CopyInt:
			return v.Copy.Int != 0, nil
		case value.CopyFloat:
			return v.Copy.Float != 0, nil
		default:
			return false, nil
		}
	}
	s, err := mem.RenderString(pc, v)
	if err != nil {
		return false, err
	}
	return s != "", nil
}

func execPop(r *Runner, op opcode.Op, pc int) (outcome, error) {
	if _, err := r.mem.Pop(pc); err != nil {
		return outcome{}, err
	}
	return pcOutcome(advance(pc, op)), nil
}

func execPopFree(r *Runner, op opcode.Op, pc int) (outcome, error) {
	v, err := r.mem.Pop(pc)
	if err != nil {
		return outcome{}, err
	}
	r.mem.DeleteRef(v)
	return pcOutcome(advance(pc, op)), nil
}

func execStackTopToReg(r *Runner, op opcode.Op, pc int) (outcome, error) {
	if int(op.U8) >= RegisterCount {
		return outcome{}, vmerr.NewUnexpectedOpcode(pc, "register index out of range")
	}
	v, err := r.mem.Pop(pc)
	if err != nil {
		return outcome{}, err
	}
	r.mem.Registers[op.U8] = v
	return pcOutcome(advance(pc, op)), nil
}

func execReadReg(r *Runner, op opcode.Op, pc int) (outcome, error) {
	if int(op.U8) >= RegisterCount {
		return outcome{}, vmerr.NewUnexpectedOpcode(pc, "register index out of range")
	}
	r.mem.Push(r.mem.Registers[op.U8])
	return pcOutcome(advance(pc, op)), nil
}

func execExit(r *Runner, op opcode.Op, pc int) (outcome, error) {
	return outcome{exited: true, exitCode: op.I32}, nil
}

func fromOpcodeCopy(c opcode.CopyValue) value.CopyValue {
	return value.CopyValue{Kind: value.CopyKind(c.Kind), Int: c.Int, Float: c.Float, Bool: c.Bool}
}
