package jvm

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/classfile"
	"github.com/wippyai/classfile/errors"
	"github.com/wippyai/classfile/jvm/internal/binary"
)

var _ classfile.Emitter = (*ClassBuilder)(nil)

// ClassBuilder describes one class file. It owns the constant pool shared by
// every method during assembly and is single-use: after Emit or Assemble
// has been called, further calls fail.
type ClassBuilder struct {
	name    string
	super   string
	methods []*MethodBuilder
	flags   []AccessFlag
	used    bool
}

// Assembly is the result of assembling a class: the class file bytes plus a
// snapshot of what went into them.
type Assembly struct {
	Bytes      []byte
	Entries    []Entry  // constant pool entries in insertion order
	Indices    []uint16 // pool index of each entry
	Methods    []MethodSummary
	Name       string
	Super      string
	PoolCount  int
	ThisClass  uint16
	SuperClass uint16
}

// NewClassBuilder creates an empty ClassBuilder.
func NewClassBuilder() *ClassBuilder {
	return &ClassBuilder{}
}

// AccessFlag adds a class modifier.
func (c *ClassBuilder) AccessFlag(flags ...AccessFlag) *ClassBuilder {
	c.flags = append(c.flags, flags...)
	return c
}

// Name sets the internal class name, e.g. "com/example/Main". Required.
func (c *ClassBuilder) Name(name string) *ClassBuilder {
	c.name = name
	return c
}

// Super sets the superclass internal name. Defaults to java/lang/Object.
func (c *ClassBuilder) Super(name string) *ClassBuilder {
	c.super = name
	return c
}

// Method appends a method.
func (c *ClassBuilder) Method(methods ...*MethodBuilder) *ClassBuilder {
	c.methods = append(c.methods, methods...)
	return c
}

// Validate reports every missing required field of the class and its
// methods as one aggregated error.
func (c *ClassBuilder) Validate() error {
	var err error
	if c.name == "" {
		err = multierr.Append(err, errors.MissingRequiredField([]string{"class"}, "name"))
	}
	for i, m := range c.methods {
		if m == nil {
			err = multierr.Append(err, errors.InvalidInput(errors.PhaseValidate, fmt.Sprintf("methods[%d] is nil", i)))
			continue
		}
		err = multierr.Append(err, m.validate(c.methodPath(i, m)))
	}
	return err
}

func (c *ClassBuilder) methodPath(i int, m *MethodBuilder) []string {
	seg := fmt.Sprintf("methods[%d]", i)
	if m.name != "" {
		seg = fmt.Sprintf("methods[%d](%s)", i, m.name)
	}
	return []string{"class", seg}
}

// Emit assembles the class and returns the class file bytes.
func (c *ClassBuilder) Emit() ([]byte, error) {
	a, err := c.Assemble()
	if err != nil {
		return nil, err
	}
	return a.Bytes, nil
}

// Assemble builds the class file. Methods are assembled first, then the
// class's own Class entries are appended so they take the highest pool
// indices, then the pool is emitted ahead of the method bytes.
func (c *ClassBuilder) Assemble() (*Assembly, error) {
	if c.used {
		return nil, errors.InvalidInput(errors.PhaseAssemble, "class builder already emitted")
	}
	c.used = true

	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := checkCount("methods_count", len(c.methods)); err != nil {
		return nil, err
	}

	super := c.super
	if super == "" {
		super = ObjectClassName
	}
	asm := &Assembly{Name: c.name, Super: super}

	pool := NewPool()
	methods := binary.NewWriter()
	for i, m := range c.methods {
		b, summary, err := m.emit(pool, c.methodPath(i, m))
		if err != nil {
			return nil, errors.WithPath(err, c.methodPath(i, m)...)
		}
		methods.WriteBytes(b)
		asm.Methods = append(asm.Methods, summary)
	}

	var err error
	if asm.ThisClass, err = pool.InsertClass(c.name); err != nil {
		return nil, err
	}
	if asm.SuperClass, err = pool.InsertClass(super); err != nil {
		return nil, err
	}

	asm.Entries = pool.Entries()
	asm.Indices = pool.Indices()
	asm.PoolCount = pool.Count()
	poolBytes, err := pool.Emit()
	if err != nil {
		return nil, err
	}

	w := binary.NewWriter()
	w.WriteU32(Magic)
	w.WriteU16(MinorVersion)
	w.WriteU16(MajorVersion)
	w.WriteBytes(poolBytes)
	w.WriteU16(CombineFlags(c.flags))
	w.WriteU16(asm.ThisClass)
	w.WriteU16(asm.SuperClass)
	w.WriteU16(0) // interfaces_count
	w.WriteU16(0) // fields_count
	w.WriteU16(uint16(len(c.methods)))
	w.WriteBytes(methods.Bytes())
	w.WriteU16(0) // attributes_count
	asm.Bytes = w.Bytes()

	Logger().Debug("class assembled",
		zap.String("name", c.name),
		zap.String("super", super),
		zap.Int("pool_count", asm.PoolCount),
		zap.Int("methods", len(c.methods)),
		zap.Int("bytes", len(asm.Bytes)))

	return asm, nil
}
