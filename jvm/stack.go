package jvm

import (
	"math"

	"github.com/wippyai/classfile/jvm/internal/opcode"
)

// StackOptions tunes max stack inference.
type StackOptions struct {
	// LegacyVoidReturn counts a void return as popping one operand, matching
	// older encoders. By default a void return leaves the depth unchanged.
	LegacyVoidReturn bool
}

// MaxStack infers the operand stack capacity of a straight-line instruction
// sequence with the default options.
func MaxStack(instrs []Instruction) uint16 {
	return MaxStackWith(instrs, StackOptions{})
}

// MaxStackWith runs one forward pass over instrs, tracking the running depth
// from zero, and returns the high-water mark. The subset has no branches, so
// the pass is exact. A sequence that drives the depth negative is not an
// error; negative depths never raise the mark.
func MaxStackWith(instrs []Instruction, opts StackOptions) uint16 {
	depth, high := 0, 0
	for _, instr := range instrs {
		depth += stackDelta(instr.Op, opts)
		if depth > high {
			high = depth
		}
	}
	if high > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(high)
}

func stackDelta(op Op, opts StackOptions) int {
	info, ok := opcode.Get(op)
	if !ok {
		return 0
	}
	if opts.LegacyVoidReturn {
		return info.LegacyDelta
	}
	return info.Delta
}
