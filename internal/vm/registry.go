package vm

// BuiltinRegistry is the runtime half of the external built-in registry
// (spec.md §4.6): invoked only by the two opcode-backed built-ins the
// dispatch table calls directly, "exec" and "strcat" (SPEC_FULL.md §6).
// Implemented outside this package (internal/builtins) so that the VM
// stays ignorant of process-spawning and string-rendering policy.
type BuiltinRegistry interface {
	Invoke(name string, mem *Memory) error
}
