package jvm

import (
	"github.com/wippyai/classfile/errors"
)

// CodeBuilder collects the body of one method. It is single-use: Build
// may only be called once.
type CodeBuilder struct {
	instrs    []Instruction
	stackOpts StackOptions
	maxStack  uint16
	maxLocals uint16
	built     bool
}

// NewCodeBuilder creates an empty CodeBuilder.
func NewCodeBuilder() *CodeBuilder {
	return &CodeBuilder{}
}

// MaxStack sets an explicit operand stack bound. Zero means infer it.
func (b *CodeBuilder) MaxStack(n uint16) *CodeBuilder {
	b.maxStack = n
	return b
}

// MaxLocals sets the number of local variable slots. It is never inferred.
func (b *CodeBuilder) MaxLocals(n uint16) *CodeBuilder {
	b.maxLocals = n
	return b
}

// StackOptions sets the options used when the stack bound is inferred.
func (b *CodeBuilder) StackOptions(opts StackOptions) *CodeBuilder {
	b.stackOpts = opts
	return b
}

// Instructions appends instructions to the body.
func (b *CodeBuilder) Instructions(instrs ...Instruction) *CodeBuilder {
	b.instrs = append(b.instrs, instrs...)
	return b
}

// Len returns the number of instructions added so far.
func (b *CodeBuilder) Len() int {
	return len(b.instrs)
}

// EffectiveMaxStack returns the explicit bound if set, otherwise the
// inferred one.
func (b *CodeBuilder) EffectiveMaxStack() uint16 {
	if b.maxStack != 0 {
		return b.maxStack
	}
	return MaxStackWith(b.instrs, b.stackOpts)
}

// Build encodes the instructions through pool and returns the Code attribute.
func (b *CodeBuilder) Build(pool *Pool) (CodeAttribute, error) {
	if b.built {
		return CodeAttribute{}, errors.InvalidInput(errors.PhaseAssemble, "code builder already built")
	}
	b.built = true

	maxStack := b.EffectiveMaxStack()
	code, err := EncodeInstructions(b.instrs, pool)
	if err != nil {
		return CodeAttribute{}, err
	}
	return CodeAttribute{
		Code:      code,
		MaxStack:  maxStack,
		MaxLocals: b.maxLocals,
	}, nil
}
