// Package builtins implements Leviscript's external built-in registry
// (spec.md §4.6): the fixed set of names the type inference pass seeds
// the environment with, and the process-spawning/string-building
// behavior the VM invokes through internal/vm.BuiltinRegistry.
//
// Kept outside internal/vm to keep the VM ignorant of process-spawning
// and string-rendering policy — internal/vm.BuiltinRegistry is the only
// contract between the two, mirroring the teacher's split between
// bytecode (dispatch) and interp's functions_builtins.go (behavior).
package builtins

import (
	"os"
	"os/exec"

	"github.com/knorrfg/leviscript/internal/types"
	"github.com/knorrfg/leviscript/internal/value"
	"github.com/knorrfg/leviscript/internal/vm"
	"github.com/knorrfg/leviscript/internal/vmerr"
)

// Registry is the default built-in set: a handful of common external
// commands plus the two boolean literals and the dynamic-binary "exec"
// (SPEC_FULL.md §6). It satisfies both typeinfer.Registry (compile time)
// and vm.BuiltinRegistry (run time). For every process built-in but
// "exec", the builder bakes the call's own name in as the process to run
// (compileCall in internal/builder), so the registry only needs to carry
// signatures.
type Registry struct {
	names []string
	sigs  map[string]types.Signature
}

// New builds the default registry. Order is significant: BuiltInID
// indices (and therefore TypeIndex keys) are assigned by position, so
// callers that persist a TypeIndex across a build must use the same
// Registry construction on both ends.
func New() *Registry {
	r := &Registry{sigs: map[string]types.Signature{}}
	r.add("true", types.Signature{Result: types.Single(types.BoolType())})
	r.add("false", types.Signature{Result: types.Single(types.BoolType())})
	r.add("echo", processSig())
	r.add("ls", processSig())
	r.add("cat", processSig())
	r.add("exec", processSig())
	return r
}

// processSig is SPEC_FULL.md §6's shape for every process-spawning
// built-in: it accepts any number of arguments of any renderable type
// and produces Unit, not a captured result — the process inherits the
// script's own stdio, so there is nothing for the call to return but the
// fact that it ran and exited successfully.
func processSig() types.Signature {
	all := types.AllTypes()
	return types.Signature{Variadic: &all, Result: types.Single(types.UnitType())}
}

func (r *Registry) add(name string, sig types.Signature) {
	r.names = append(r.names, name)
	r.sigs[name] = sig
}

// Names implements typeinfer.Registry.
func (r *Registry) Names() []string { return append([]string(nil), r.names...) }

// Signature implements typeinfer.Registry.
func (r *Registry) Signature(name string) (types.Signature, bool) {
	sig, ok := r.sigs[name]
	return sig, ok
}

// Invoke implements vm.BuiltinRegistry. Only "exec" and "strcat" are ever
// dispatched directly by the opcode VM (spec.md §4.6): every other
// built-in name is lowered to an Exec instruction by the builder, with
// the process name baked into the data section rather than looked up
// here at run time.
func (r *Registry) Invoke(name string, mem *vm.Memory) error {
	switch name {
	case "exec":
		return r.invokeExec(mem)
	case "strcat":
		return r.invokeStrCat(mem)
	default:
		return vmerr.NewUnknownBuiltIn(0, name)
	}
}

// invokeExec pops the operand layout the builder's compileCall emits:
// argument count, then that many arguments, then the bin name — each
// rendered to its string form (not required to already be a Str, since
// every process built-in accepts AllTypes) — spawns the named process
// with the script's own stdio inherited, and requires it to exit
// successfully (SPEC_FULL.md §6's "Process interface"). The call's
// result is always Unit: the process's output goes straight to the
// script's terminal, not to a captured return value.
func (r *Registry) invokeExec(mem *vm.Memory) error {
	count, err := mem.PopInt(0)
	if err != nil {
		return err
	}
	args := make([]string, count)
	for i := int64(0); i < count; i++ {
		v, err := mem.Pop(0)
		if err != nil {
			return err
		}
		s, err := mem.RenderString(0, v)
		if err != nil {
			return err
		}
		args[count-1-i] = s
	}
	binVal, err := mem.Pop(0)
	if err != nil {
		return err
	}
	bin, err := mem.RenderString(0, binVal)
	if err != nil {
		return err
	}

	cmd := exec.Command(bin, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if runErr := cmd.Run(); runErr != nil {
		return vmerr.NewRuntime(0, bin+": "+runErr.Error())
	}
	mem.Push(value.RuntimeCopy(value.Unit()))
	return nil
}

// invokeStrCat pops a count and that many values, renders each to its
// string form, concatenates them in original left-to-right order, and
// pushes one owned Str (spec.md §4.2's StrCat semantics).
func (r *Registry) invokeStrCat(mem *vm.Memory) error {
	count, err := mem.PopInt(0)
	if err != nil {
		return err
	}
	parts := make([]string, count)
	for i := int64(0); i < count; i++ {
		v, err := mem.Pop(0)
		if err != nil {
			return err
		}
		s, err := mem.RenderString(0, v)
		if err != nil {
			return err
		}
		parts[count-1-i] = s
	}
	concatenated := ""
	for _, p := range parts {
		concatenated += p
	}
	mem.PushOwnedString(concatenated)
	return nil
}
