package opcode

import "errors"

// ErrTruncated is returned by Decode when buf does not hold a complete
// instruction.
var ErrTruncated = errors.New("opcode: truncated instruction")

// ErrUnknownOpcode is returned by Decode when the discriminant does not
// name a declared opcode; this corresponds to the runtime's
// NonExecutableOpcode/UnexpectedOpcode error class (spec.md §7).
var ErrUnknownOpcode = errors.New("opcode: unknown discriminant")
