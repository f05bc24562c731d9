package jvm_test

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/wippyai/classfile/jvm"
)

// parsedClass is a structural view of an emitted class file used to check
// every count and length field independently of the encoder.
type parsedClass struct {
	pool       map[uint16]jvm.Entry
	methods    []parsedMethod
	magic      uint32
	minor      uint16
	major      uint16
	poolCount  uint16
	flags      uint16
	thisClass  uint16
	superClass uint16
}

type parsedMethod struct {
	name      string
	desc      string
	code      []byte
	flags     uint16
	maxStack  uint16
	maxLocals uint16
}

type classReader struct {
	data []byte
	pos  int
}

func (r *classReader) need(n int) error {
	if r.pos+n > len(r.data) {
		return fmt.Errorf("truncated at offset %d: need %d bytes, have %d", r.pos, n, len(r.data)-r.pos)
	}
	return nil
}

func (r *classReader) u8() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *classReader) u16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *classReader) u32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *classReader) bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	v := r.data[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

func parseClass(t *testing.T, data []byte) *parsedClass {
	t.Helper()
	c, err := readClass(data)
	if err != nil {
		t.Fatalf("parse class: %v", err)
	}
	return c
}

func readClass(data []byte) (*parsedClass, error) {
	r := &classReader{data: data}
	c := &parsedClass{pool: make(map[uint16]jvm.Entry)}
	var err error

	if c.magic, err = r.u32(); err != nil {
		return nil, err
	}
	if c.minor, err = r.u16(); err != nil {
		return nil, err
	}
	if c.major, err = r.u16(); err != nil {
		return nil, err
	}
	if c.poolCount, err = r.u16(); err != nil {
		return nil, err
	}
	for idx := uint16(1); idx < c.poolCount; {
		e, err := r.entry()
		if err != nil {
			return nil, fmt.Errorf("entry #%d: %w", idx, err)
		}
		c.pool[idx] = e
		idx += uint16(e.Tag.Slots())
	}

	for _, f := range []*uint16{&c.flags, &c.thisClass, &c.superClass} {
		if *f, err = r.u16(); err != nil {
			return nil, err
		}
	}
	for _, section := range []string{"interfaces", "fields"} {
		n, err := r.u16()
		if err != nil {
			return nil, err
		}
		if n != 0 {
			return nil, fmt.Errorf("%s_count = %d", section, n)
		}
	}

	methodCount, err := r.u16()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(methodCount); i++ {
		m, err := c.readMethod(r)
		if err != nil {
			return nil, fmt.Errorf("method %d: %w", i, err)
		}
		c.methods = append(c.methods, m)
	}

	attrCount, err := r.u16()
	if err != nil {
		return nil, err
	}
	if attrCount != 0 {
		return nil, fmt.Errorf("class attributes_count = %d", attrCount)
	}
	if r.pos != len(data) {
		return nil, fmt.Errorf("%d trailing bytes", len(data)-r.pos)
	}
	return c, nil
}

func (r *classReader) entry() (jvm.Entry, error) {
	tag, err := r.u8()
	if err != nil {
		return jvm.Entry{}, err
	}
	e := jvm.Entry{Tag: jvm.Tag(tag)}
	switch e.Tag {
	case jvm.TagUTF8:
		n, err := r.u16()
		if err != nil {
			return e, err
		}
		b, err := r.bytes(int(n))
		if err != nil {
			return e, err
		}
		e.Text = string(b)
	case jvm.TagInteger, jvm.TagFloat:
		v, err := r.u32()
		if err != nil {
			return e, err
		}
		e.Bits = uint64(v)
	case jvm.TagLong, jvm.TagDouble:
		hi, err := r.u32()
		if err != nil {
			return e, err
		}
		lo, err := r.u32()
		if err != nil {
			return e, err
		}
		e.Bits = uint64(hi)<<32 | uint64(lo)
	case jvm.TagClass, jvm.TagString, jvm.TagMethodType, jvm.TagModule, jvm.TagPackage:
		if e.Ref1, err = r.u16(); err != nil {
			return e, err
		}
	case jvm.TagField, jvm.TagMethod, jvm.TagInterfaceMethod, jvm.TagNameAndType,
		jvm.TagDynamic, jvm.TagInvokeDynamic:
		if e.Ref1, err = r.u16(); err != nil {
			return e, err
		}
		if e.Ref2, err = r.u16(); err != nil {
			return e, err
		}
	default:
		return e, fmt.Errorf("unknown tag 0x%02x", tag)
	}
	return e, nil
}

func (c *parsedClass) utf8(idx uint16) (string, error) {
	e, ok := c.pool[idx]
	if !ok || e.Tag != jvm.TagUTF8 {
		return "", fmt.Errorf("#%d is not a Utf8 entry", idx)
	}
	return e.Text, nil
}

func (c *parsedClass) readMethod(r *classReader) (parsedMethod, error) {
	var m parsedMethod
	var nameIdx, descIdx uint16
	var err error
	for _, f := range []*uint16{&m.flags, &nameIdx, &descIdx} {
		if *f, err = r.u16(); err != nil {
			return m, err
		}
	}
	if m.name, err = c.utf8(nameIdx); err != nil {
		return m, err
	}
	if m.desc, err = c.utf8(descIdx); err != nil {
		return m, err
	}

	attrCount, err := r.u16()
	if err != nil {
		return m, err
	}
	for i := 0; i < int(attrCount); i++ {
		attrName, err := r.u16()
		if err != nil {
			return m, err
		}
		name, err := c.utf8(attrName)
		if err != nil {
			return m, err
		}
		length, err := r.u32()
		if err != nil {
			return m, err
		}
		body, err := r.bytes(int(length))
		if err != nil {
			return m, err
		}
		if name != jvm.CodeAttributeName {
			continue
		}
		if err := m.readCode(body); err != nil {
			return m, err
		}
	}
	return m, nil
}

func (m *parsedMethod) readCode(body []byte) error {
	r := &classReader{data: body}
	var err error
	if m.maxStack, err = r.u16(); err != nil {
		return err
	}
	if m.maxLocals, err = r.u16(); err != nil {
		return err
	}
	n, err := r.u32()
	if err != nil {
		return err
	}
	if m.code, err = r.bytes(int(n)); err != nil {
		return err
	}
	exceptions, err := r.u16()
	if err != nil {
		return err
	}
	if exceptions != 0 {
		return fmt.Errorf("exception_table_length = %d", exceptions)
	}
	nested, err := r.u16()
	if err != nil {
		return err
	}
	for i := 0; i < int(nested); i++ {
		if _, err := r.u16(); err != nil {
			return err
		}
		l, err := r.u32()
		if err != nil {
			return err
		}
		if _, err := r.bytes(int(l)); err != nil {
			return err
		}
	}
	if r.pos != len(body) {
		return fmt.Errorf("attribute_length off by %d", len(body)-r.pos)
	}
	return nil
}

// className resolves a Class entry to its name.
func (c *parsedClass) className(idx uint16) string {
	e, ok := c.pool[idx]
	if !ok || e.Tag != jvm.TagClass {
		return ""
	}
	name, _ := c.utf8(e.Ref1)
	return name
}

func (c *parsedClass) countTag(tag jvm.Tag) int {
	n := 0
	for _, e := range c.pool {
		if e.Tag == tag {
			n++
		}
	}
	return n
}

func (c *parsedClass) method(name string) (parsedMethod, bool) {
	for _, m := range c.methods {
		if m.name == name {
			return m, true
		}
	}
	return parsedMethod{}, false
}
