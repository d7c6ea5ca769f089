// Package cli holds the logging glue shared by cmd/leviscript's
// subcommands: a zap logger constructor and a vm.TraceHook that logs one
// line per dispatched opcode, tagged with the run id, when --verbose is
// set (SPEC_FULL.md §2, §3).
//
// Grounded on _examples/nspcc-dev-neo-go/pkg/consensus/logger.go for the
// zap.NewDevelopmentConfig()-based constructor shape, adapted to a single
// console logger instead of one scoped per subsystem.
package cli

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/knorrfg/leviscript/internal/opcode"
	"github.com/knorrfg/leviscript/internal/vm"
)

// NewLogger builds the console logger every subcommand shares. verbose
// raises the level to debug, which is also the level trace lines are
// emitted at, so --verbose is both "tell me what the CLI is doing" and
// "show me the VM's execution trace" in one flag.
func NewLogger(verbose bool) (*zap.Logger, error) {
	cc := zap.NewDevelopmentConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.Encoding = "console"
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if verbose {
		cc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return cc.Build()
}

// TraceHook returns a vm.TraceHook that logs one debug-level line per
// dispatched instruction, with the run id and program counter as
// structured fields so a multi-run log can be filtered back down to a
// single execution.
func TraceHook(log *zap.Logger) vm.TraceHook {
	return func(runID uuid.UUID, pc int, op opcode.Op) {
		log.Debug("exec",
			zap.String("run_id", runID.String()),
			zap.Int("pc", pc),
			zap.String("op", op.String()),
		)
	}
}
