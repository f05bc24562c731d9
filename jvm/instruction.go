package jvm

import (
	"fmt"
	"strconv"

	"github.com/wippyai/classfile/errors"
	"github.com/wippyai/classfile/jvm/internal/binary"
	"github.com/wippyai/classfile/jvm/internal/opcode"
)

// Op identifies an operation of the supported instruction subset.
type Op = opcode.Kind

// Supported operations.
const (
	OpALoad           = opcode.ALoad
	OpILoad           = opcode.ILoad
	OpIConst          = opcode.IConst
	OpIAdd            = opcode.IAdd
	OpInvokeSpecial   = opcode.InvokeSpecial
	OpInvokeStatic    = opcode.InvokeStatic
	OpInvokeVirtual   = opcode.InvokeVirtual
	OpInvokeInterface = opcode.InvokeInterface
	OpGetStatic       = opcode.GetStatic
	OpIReturn         = opcode.IReturn
	OpReturn          = opcode.Return
)

// Operand classifies the operand an operation carries.
type Operand int

const (
	OperandNone    Operand = iota
	OperandLocal           // LocalImm
	OperandLiteral         // LiteralImm
	OperandMember          // MemberImm
)

// LookupOp resolves a mnemonic such as "iload" or "invokestatic".
func LookupOp(mnemonic string) (Op, bool) {
	return opcode.Lookup(mnemonic)
}

// OperandOf reports the operand op takes. Unknown operations take none.
func OperandOf(op Op) Operand {
	info, _ := opcode.Get(op)
	switch info.ImmType {
	case opcode.ImmLocal:
		return OperandLocal
	case opcode.ImmLiteral:
		return OperandLiteral
	case opcode.ImmMethodRef, opcode.ImmFieldRef, opcode.ImmInterfaceRef:
		return OperandMember
	}
	return OperandNone
}

// Literal range accepted by IConst.
const (
	IConstMin = opcode.LiteralMin
	IConstMax = opcode.LiteralMax
)

// Instruction is one operation of a method body with its operands.
type Instruction struct {
	Imm any
	Op  Op
}

// LocalImm holds the local variable slot for aload and iload.
type LocalImm struct {
	Index uint8
}

// LiteralImm holds the value for iconst.
type LiteralImm struct {
	Value int32
}

// MemberImm holds the symbolic reference of invoke and field instructions.
type MemberImm struct {
	Owner      string // internal class name, e.g. java/io/PrintStream
	Name       string
	Descriptor string
}

// ALoad loads a reference from local slot index.
func ALoad(index uint8) Instruction {
	return Instruction{Op: OpALoad, Imm: LocalImm{Index: index}}
}

// ILoad loads an int from local slot index.
func ILoad(index uint8) Instruction {
	return Instruction{Op: OpILoad, Imm: LocalImm{Index: index}}
}

// IConst pushes a small int literal. Values outside [-1, 5] fail at encode
// time with an invalid_literal error.
func IConst(value int32) Instruction {
	return Instruction{Op: OpIConst, Imm: LiteralImm{Value: value}}
}

// IAdd adds the two ints on top of the stack.
func IAdd() Instruction {
	return Instruction{Op: OpIAdd}
}

// InvokeSpecial calls a constructor, private or super method.
func InvokeSpecial(owner, name, descriptor string) Instruction {
	return memberInstr(OpInvokeSpecial, owner, name, descriptor)
}

// InvokeStatic calls a static method.
func InvokeStatic(owner, name, descriptor string) Instruction {
	return memberInstr(OpInvokeStatic, owner, name, descriptor)
}

// InvokeVirtual calls an instance method with virtual dispatch.
func InvokeVirtual(owner, name, descriptor string) Instruction {
	return memberInstr(OpInvokeVirtual, owner, name, descriptor)
}

// InvokeInterface calls an interface method.
func InvokeInterface(owner, name, descriptor string) Instruction {
	return memberInstr(OpInvokeInterface, owner, name, descriptor)
}

// GetStatic pushes the value of a static field.
func GetStatic(owner, name, descriptor string) Instruction {
	return memberInstr(OpGetStatic, owner, name, descriptor)
}

// IReturn returns the int on top of the stack.
func IReturn() Instruction {
	return Instruction{Op: OpIReturn}
}

// Return returns from a void method.
func Return() Instruction {
	return Instruction{Op: OpReturn}
}

func memberInstr(op Op, owner, name, descriptor string) Instruction {
	return Instruction{Op: op, Imm: MemberImm{Owner: owner, Name: name, Descriptor: descriptor}}
}

// String renders the instruction in the text form accepted by classdef.
func (i Instruction) String() string {
	switch imm := i.Imm.(type) {
	case LocalImm:
		return i.Op.String() + " " + strconv.Itoa(int(imm.Index))
	case LiteralImm:
		return i.Op.String() + " " + strconv.Itoa(int(imm.Value))
	case MemberImm:
		return fmt.Sprintf("%s %s %s %s", i.Op, imm.Owner, imm.Name, imm.Descriptor)
	}
	return i.Op.String()
}

// Encode returns the opcode and operand bytes of the instruction. Member
// references are resolved through pool, which grows as a side effect.
func (i Instruction) Encode(pool *Pool) ([]byte, error) {
	w := binary.NewWriter()
	if err := i.encodeTo(w, pool); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// EncodeInstructions encodes instrs in order with no padding between them.
func EncodeInstructions(instrs []Instruction, pool *Pool) ([]byte, error) {
	w := binary.NewWriter()
	for idx, instr := range instrs {
		if err := instr.encodeTo(w, pool); err != nil {
			return nil, withInstrIndex(err, idx)
		}
	}
	return w.Bytes(), nil
}

func (i Instruction) encodeTo(w *binary.Writer, pool *Pool) error {
	info, ok := opcode.Get(i.Op)
	if !ok {
		return errors.Unsupported(errors.PhaseEncode, fmt.Sprintf("operation %d", int(i.Op)))
	}

	switch info.ImmType {
	case opcode.ImmNone:
		w.Byte(info.Opcode)

	case opcode.ImmLocal:
		imm, ok := i.Imm.(LocalImm)
		if !ok {
			return immError(i, "LocalImm")
		}
		w.Byte(info.Opcode)
		w.Byte(imm.Index)

	case opcode.ImmLiteral:
		imm, ok := i.Imm.(LiteralImm)
		if !ok {
			return immError(i, "LiteralImm")
		}
		op, ok := opcode.LiteralOpcode(imm.Value)
		if !ok {
			return errors.InvalidLiteral(imm.Value, opcode.LiteralMin, opcode.LiteralMax)
		}
		w.Byte(op)

	case opcode.ImmMethodRef, opcode.ImmFieldRef, opcode.ImmInterfaceRef:
		imm, ok := i.Imm.(MemberImm)
		if !ok {
			return immError(i, "MemberImm")
		}
		return encodeMember(w, pool, info, imm)
	}
	return nil
}

func encodeMember(w *binary.Writer, pool *Pool, info opcode.Info, imm MemberImm) error {
	var (
		index uint16
		err   error
		count int
	)
	switch info.ImmType {
	case opcode.ImmFieldRef:
		index, err = pool.InsertField(imm.Owner, imm.Name, imm.Descriptor)
	case opcode.ImmInterfaceRef:
		count, err = ArgumentSlots(imm.Descriptor)
		if err != nil {
			return err
		}
		count++ // receiver
		if count > 255 {
			return errors.Overflow(errors.PhaseEncode, []string{info.Name, "count"}, count, "u8")
		}
		index, err = pool.InsertInterfaceMethod(imm.Owner, imm.Name, imm.Descriptor)
	default:
		index, err = pool.InsertMethod(imm.Owner, imm.Name, imm.Descriptor)
	}
	if err != nil {
		return err
	}

	w.Byte(info.Opcode)
	w.WriteU16(index)
	if info.ImmType == opcode.ImmInterfaceRef {
		w.Byte(byte(count))
		w.Byte(0)
	}
	return nil
}

func immError(i Instruction, want string) error {
	return errors.New(errors.PhaseEncode, errors.KindInvalidInput).
		Path(i.Op.String()).
		Value(i.Imm).
		Detail("operand %T, want %s", i.Imm, want).
		Build()
}

func withInstrIndex(err error, idx int) error {
	return errors.WithPath(err, fmt.Sprintf("code[%d]", idx))
}
