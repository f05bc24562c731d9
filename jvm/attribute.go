package jvm

import (
	"math"

	"github.com/wippyai/classfile/errors"
	"github.com/wippyai/classfile/jvm/internal/binary"
)

// codeFixedLen is the size of max_stack, max_locals, code_length,
// exception_table_length and attributes_count.
const codeFixedLen = 2 + 2 + 4 + 2 + 2

// Attribute is a raw attribute: a name and its already encoded info bytes.
type Attribute struct {
	Name string
	Info []byte
}

// Encode writes attribute_name_index, attribute_length and info.
func (a Attribute) Encode(pool *Pool) ([]byte, error) {
	nameIdx, err := pool.InsertUTF8(a.Name)
	if err != nil {
		return nil, err
	}
	if uint64(len(a.Info)) > math.MaxUint32 {
		return nil, errors.Overflow(errors.PhaseAssemble, []string{a.Name}, len(a.Info), "u32 length")
	}
	w := binary.NewWriter()
	w.WriteU16(nameIdx)
	w.WriteU32(uint32(len(a.Info)))
	w.WriteBytes(a.Info)
	return w.Bytes(), nil
}

// CodeAttribute is an assembled method body. Code holds encoded
// instructions; the exception table is always empty.
type CodeAttribute struct {
	Code       []byte
	Attributes []Attribute
	MaxStack   uint16
	MaxLocals  uint16
}

// Encode writes the Code attribute. The "Code" name is resolved through
// pool. attribute_length covers the fixed fields, the code and the full
// byte length of every nested attribute.
func (c CodeAttribute) Encode(pool *Pool) ([]byte, error) {
	if len(c.Code) == 0 {
		return nil, errors.InvalidInput(errors.PhaseAssemble, "code body is empty")
	}
	if len(c.Code) > math.MaxUint16 {
		return nil, errors.Overflow(errors.PhaseAssemble, []string{CodeAttributeName, "code_length"}, len(c.Code), "65535 bytes")
	}
	if len(c.Attributes) > math.MaxUint16 {
		return nil, errors.Overflow(errors.PhaseAssemble, []string{CodeAttributeName, "attributes_count"}, len(c.Attributes), "u16")
	}

	nameIdx, err := pool.InsertUTF8(CodeAttributeName)
	if err != nil {
		return nil, err
	}

	nested := binary.NewWriter()
	for _, a := range c.Attributes {
		b, err := a.Encode(pool)
		if err != nil {
			return nil, err
		}
		nested.WriteBytes(b)
	}

	length := uint64(codeFixedLen) + uint64(len(c.Code)) + uint64(nested.Len())
	if length > math.MaxUint32 {
		return nil, errors.Overflow(errors.PhaseAssemble, []string{CodeAttributeName}, length, "u32 length")
	}

	w := binary.NewWriter()
	w.WriteU16(nameIdx)
	w.WriteU32(uint32(length))
	w.WriteU16(c.MaxStack)
	w.WriteU16(c.MaxLocals)
	w.WriteU32(uint32(len(c.Code)))
	w.WriteBytes(c.Code)
	w.WriteU16(0) // exception_table_length
	w.WriteU16(uint16(len(c.Attributes)))
	w.WriteBytes(nested.Bytes())
	return w.Bytes(), nil
}
