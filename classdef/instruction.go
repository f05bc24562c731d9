package classdef

import (
	"strconv"
	"strings"

	"github.com/wippyai/classfile/errors"
	"github.com/wippyai/classfile/jvm"
)

// ParseInstruction parses one operation in text form: the mnemonic followed
// by whitespace separated operands.
//
//	aload N | iload N          local slot 0..255
//	iconst V                   int literal
//	iadd | ireturn | return
//	invokespecial|invokestatic|invokevirtual|invokeinterface OWNER NAME DESC
//	getstatic OWNER NAME DESC
//
// Mnemonics are resolved through the same operation table the encoder uses.
// The iconst range is checked when the instruction is encoded.
func ParseInstruction(text string) (jvm.Instruction, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		err := errors.InvalidData(errors.PhaseParse, nil, "empty instruction")
		err.Value = text
		return jvm.Instruction{}, err
	}

	op, ok := jvm.LookupOp(strings.ToLower(fields[0]))
	if !ok {
		err := errors.Unsupported(errors.PhaseParse, "unknown operation "+strconv.Quote(fields[0]))
		err.Value = text
		return jvm.Instruction{}, err
	}

	args := fields[1:]
	switch jvm.OperandOf(op) {
	case jvm.OperandLocal:
		if err := arity(text, args, 1); err != nil {
			return jvm.Instruction{}, err
		}
		n, err := strconv.ParseUint(args[0], 10, 8)
		if err != nil {
			return jvm.Instruction{}, operandError(text, "local slot", err)
		}
		return jvm.Instruction{Op: op, Imm: jvm.LocalImm{Index: uint8(n)}}, nil

	case jvm.OperandLiteral:
		if err := arity(text, args, 1); err != nil {
			return jvm.Instruction{}, err
		}
		v, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return jvm.Instruction{}, operandError(text, "int literal", err)
		}
		return jvm.Instruction{Op: op, Imm: jvm.LiteralImm{Value: int32(v)}}, nil

	case jvm.OperandMember:
		if err := arity(text, args, 3); err != nil {
			return jvm.Instruction{}, err
		}
		return jvm.Instruction{Op: op, Imm: jvm.MemberImm{Owner: args[0], Name: args[1], Descriptor: args[2]}}, nil
	}

	if err := arity(text, args, 0); err != nil {
		return jvm.Instruction{}, err
	}
	return jvm.Instruction{Op: op}, nil
}

// FormatCode renders instructions in the text form ParseInstruction reads.
func FormatCode(instrs []jvm.Instruction) []string {
	out := make([]string, len(instrs))
	for i, instr := range instrs {
		out[i] = instr.String()
	}
	return out
}

func arity(text string, args []string, want int) error {
	if len(args) == want {
		return nil
	}
	return errors.New(errors.PhaseParse, errors.KindInvalidData).
		Value(text).
		Detail("%q takes %d operand(s), got %d", strings.Fields(text)[0], want, len(args)).
		Build()
}

func operandError(text, what string, cause error) error {
	err := errors.ParseFailed(nil, "malformed "+what, cause)
	err.Value = text
	return err
}
