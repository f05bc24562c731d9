package jvm

import (
	"math"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/classfile/errors"
	"github.com/wippyai/classfile/jvm/internal/binary"
)

// MethodBuilder describes one method: modifiers, name, signature and body.
type MethodBuilder struct {
	code   *CodeBuilder
	name   string
	ret    string
	params []string
	flags  []AccessFlag
}

// MethodSummary reports what was assembled for one method.
type MethodSummary struct {
	Name        string
	Descriptor  string
	AccessFlags uint16
	MaxStack    uint16
	MaxLocals   uint16
	CodeLength  int
}

// NewMethodBuilder creates an empty MethodBuilder.
func NewMethodBuilder() *MethodBuilder {
	return &MethodBuilder{}
}

// AccessFlag adds a modifier.
func (m *MethodBuilder) AccessFlag(flags ...AccessFlag) *MethodBuilder {
	m.flags = append(m.flags, flags...)
	return m
}

// Name sets the method name. Required.
func (m *MethodBuilder) Name(name string) *MethodBuilder {
	m.name = name
	return m
}

// Parameter appends a parameter type descriptor.
func (m *MethodBuilder) Parameter(descriptors ...string) *MethodBuilder {
	m.params = append(m.params, descriptors...)
	return m
}

// Returns sets the return type descriptor. Unset means void.
func (m *MethodBuilder) Returns(descriptor string) *MethodBuilder {
	m.ret = descriptor
	return m
}

// Code sets the method body. Required.
func (m *MethodBuilder) Code(code *CodeBuilder) *MethodBuilder {
	m.code = code
	return m
}

// Descriptor returns the method descriptor built from the parameters and
// return type.
func (m *MethodBuilder) Descriptor() string {
	return MethodDescriptor(m.params, m.ret)
}

// Validate reports every required field that is not set.
func (m *MethodBuilder) Validate() error {
	return m.validate([]string{"method"})
}

func (m *MethodBuilder) validate(path []string) error {
	var err error
	if m.name == "" {
		err = multierr.Append(err, errors.MissingRequiredField(path, "name"))
	}
	if m.code == nil {
		err = multierr.Append(err, errors.MissingRequiredField(path, "code"))
	}
	return err
}

// Emit writes the method_info structure, resolving symbols through pool.
func (m *MethodBuilder) Emit(pool *Pool) ([]byte, error) {
	b, _, err := m.emit(pool, []string{"method"})
	return b, err
}

func (m *MethodBuilder) emit(pool *Pool, path []string) ([]byte, MethodSummary, error) {
	if err := m.validate(path); err != nil {
		return nil, MethodSummary{}, err
	}

	summary := MethodSummary{
		Name:        m.name,
		Descriptor:  m.Descriptor(),
		AccessFlags: CombineFlags(m.flags),
	}

	nameIdx, err := pool.InsertUTF8(summary.Name)
	if err != nil {
		return nil, summary, err
	}
	descIdx, err := pool.InsertUTF8(summary.Descriptor)
	if err != nil {
		return nil, summary, err
	}

	attr, err := m.code.Build(pool)
	if err != nil {
		return nil, summary, err
	}
	attrBytes, err := attr.Encode(pool)
	if err != nil {
		return nil, summary, err
	}
	summary.MaxStack = attr.MaxStack
	summary.MaxLocals = attr.MaxLocals
	summary.CodeLength = len(attr.Code)

	w := binary.NewWriter()
	w.WriteU16(summary.AccessFlags)
	w.WriteU16(nameIdx)
	w.WriteU16(descIdx)
	w.WriteU16(1) // attributes_count: Code
	w.WriteBytes(attrBytes)

	Logger().Debug("method assembled",
		zap.String("name", summary.Name),
		zap.String("descriptor", summary.Descriptor),
		zap.Uint16("max_stack", summary.MaxStack),
		zap.Int("code_len", summary.CodeLength))

	return w.Bytes(), summary, nil
}

func checkCount(path string, n int) error {
	if n > math.MaxUint16 {
		return errors.Overflow(errors.PhaseAssemble, []string{path}, n, "u16 count")
	}
	return nil
}
