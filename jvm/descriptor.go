package jvm

import (
	"fmt"
	"strings"

	"github.com/wippyai/classfile/errors"
)

// Field descriptors of the primitive types.
const (
	DescByte    = "B"
	DescChar    = "C"
	DescDouble  = "D"
	DescFloat   = "F"
	DescInt     = "I"
	DescLong    = "J"
	DescShort   = "S"
	DescBoolean = "Z"
	DescVoid    = "V"
)

// ObjectDescriptor returns the field descriptor of a class given by its
// internal name, e.g. "java/lang/String" -> "Ljava/lang/String;".
func ObjectDescriptor(internalName string) string {
	return "L" + internalName + ";"
}

// ArrayDescriptor returns the descriptor of an array of elem.
func ArrayDescriptor(elem string) string {
	return "[" + elem
}

// MethodDescriptor joins parameter descriptors and a return descriptor.
// An empty return descriptor means void.
func MethodDescriptor(params []string, ret string) string {
	if ret == "" {
		ret = DescVoid
	}
	var b strings.Builder
	b.WriteByte('(')
	for _, p := range params {
		b.WriteString(p)
	}
	b.WriteByte(')')
	b.WriteString(ret)
	return b.String()
}

// ArgumentSlots returns the number of local variable slots taken by the
// parameters of a method descriptor. long and double take two.
func ArgumentSlots(desc string) (int, error) {
	if len(desc) == 0 || desc[0] != '(' {
		return 0, descriptorError(desc, "missing '('")
	}
	slots := 0
	i := 1
	for i < len(desc) && desc[i] != ')' {
		n, err := fieldDescriptorLen(desc, i)
		if err != nil {
			return 0, err
		}
		if n == 1 && (desc[i] == 'J' || desc[i] == 'D') {
			slots += 2
		} else {
			slots++
		}
		i += n
	}
	if i >= len(desc) {
		return 0, descriptorError(desc, "missing ')'")
	}
	ret := desc[i+1:]
	if ret != DescVoid {
		n, err := fieldDescriptorLen(ret, 0)
		if err != nil {
			return 0, err
		}
		if n != len(ret) {
			return 0, descriptorError(desc, "trailing characters after return type")
		}
	}
	return slots, nil
}

// fieldDescriptorLen returns the length of the field descriptor starting at
// desc[i].
func fieldDescriptorLen(desc string, i int) (int, error) {
	start := i
	for i < len(desc) && desc[i] == '[' {
		i++
	}
	if i >= len(desc) {
		return 0, descriptorError(desc, "truncated type")
	}
	switch desc[i] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return i - start + 1, nil
	case 'L':
		end := strings.IndexByte(desc[i:], ';')
		if end <= 1 {
			return 0, descriptorError(desc, "unterminated class type")
		}
		return i - start + end + 1, nil
	}
	return 0, descriptorError(desc, "unknown type character "+string(desc[i]))
}

func descriptorError(desc, detail string) error {
	err := errors.InvalidData(errors.PhaseEncode, []string{"descriptor"}, fmt.Sprintf("%q: %s", desc, detail))
	err.Value = desc
	return err
}
