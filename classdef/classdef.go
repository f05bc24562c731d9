// Package classdef reads declarative class definitions written in TOML and
// turns them into jvm builders.
//
// A definition names the class, its modifiers and its methods. Method bodies
// are lists of operations in text form:
//
//	name = "Test"
//	access = ["public", "super"]
//
//	[[methods]]
//	name = "add"
//	access = ["public", "static"]
//	params = ["I", "I"]
//	return = "I"
//	max_locals = 2
//	code = ["iload 0", "iload 1", "iadd", "ireturn"]
package classdef

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"

	"github.com/wippyai/classfile/errors"
	"github.com/wippyai/classfile/jvm"
)

// Class is a class definition.
type Class struct {
	Name    string   `toml:"name"`
	Super   string   `toml:"super,omitempty"`
	Access  []string `toml:"access,omitempty"`
	Methods []Method `toml:"methods"`
}

// Method is one method of a class definition.
type Method struct {
	Name   string   `toml:"name"`
	Return string   `toml:"return,omitempty"`
	Access []string `toml:"access,omitempty"`
	Params []string `toml:"params,omitempty"`
	Code   []string `toml:"code"`

	// MaxLocals is never inferred.
	MaxLocals uint16 `toml:"max_locals"`
	// MaxStack overrides the inferred operand stack bound when nonzero.
	MaxStack uint16 `toml:"max_stack,omitempty"`
	// LegacyVoidReturn selects the legacy stack accounting of return.
	LegacyVoidReturn bool `toml:"legacy_void_return,omitempty"`
}

// Load reads and parses a definition file.
func Load(path string) (*Class, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load(fmt.Sprintf("cannot read %s", path), err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, errors.Load(fmt.Sprintf("parse error in %s", path), err)
	}
	return c, nil
}

// Parse decodes a definition. Keys that do not belong to the schema are
// rejected.
func Parse(data []byte) (*Class, error) {
	var c Class
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		var perr toml.ParseError
		if stderrors.As(err, &perr) {
			return nil, errors.ParseFailed([]string{fmt.Sprintf("line %d", perr.Position.Line)}, perr.Message, err)
		}
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "decode definition")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		var errs error
		for _, key := range undecoded {
			errs = multierr.Append(errs, errors.New(errors.PhaseParse, errors.KindUnsupported).
				Path(key.String()).
				Detail("unknown key %q", key.String()).
				Build())
		}
		return nil, errs
	}
	return &c, nil
}

// Encode writes c as TOML.
func (c *Class) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Builder converts the definition into a class builder. Every problem in the
// definition is reported, aggregated into one error.
func (c *Class) Builder() (*jvm.ClassBuilder, error) {
	var errs error

	flags, err := accessFlags([]string{"class", "access"}, c.Access)
	errs = multierr.Append(errs, err)

	cb := jvm.NewClassBuilder().
		Name(c.Name).
		Super(c.Super).
		AccessFlag(flags...)

	for i := range c.Methods {
		mb, err := c.Methods[i].builder(methodPath(i, c.Methods[i].Name))
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		cb.Method(mb)
	}
	if errs != nil {
		return nil, errs
	}
	return cb, nil
}

func (m *Method) builder(path string) (*jvm.MethodBuilder, error) {
	var errs error

	flags, err := accessFlags([]string{path, "access"}, m.Access)
	errs = multierr.Append(errs, err)

	code := jvm.NewCodeBuilder().
		MaxLocals(m.MaxLocals).
		MaxStack(m.MaxStack).
		StackOptions(jvm.StackOptions{LegacyVoidReturn: m.LegacyVoidReturn})
	for line, text := range m.Code {
		instr, err := ParseInstruction(text)
		if err != nil {
			errs = multierr.Append(errs, errors.WithPath(err, path, fmt.Sprintf("code[%d]", line)))
			continue
		}
		code.Instructions(instr)
	}
	if errs != nil {
		return nil, errs
	}

	mb := jvm.NewMethodBuilder().
		Name(m.Name).
		AccessFlag(flags...).
		Parameter(m.Params...).
		Returns(m.Return)
	if len(m.Code) > 0 {
		mb.Code(code)
	}
	return mb, nil
}

func methodPath(i int, name string) string {
	if name == "" {
		return fmt.Sprintf("methods[%d]", i)
	}
	return fmt.Sprintf("methods[%d](%s)", i, name)
}

func accessFlags(path []string, names []string) ([]jvm.AccessFlag, error) {
	var (
		flags []jvm.AccessFlag
		errs  error
	)
	for _, name := range names {
		f, ok := jvm.LookupAccessFlag(name)
		if !ok {
			errs = multierr.Append(errs, errors.New(errors.PhaseParse, errors.KindInvalidData).
				Path(path...).
				Value(name).
				Detail("unknown access flag %q", name).
				Build())
			continue
		}
		flags = append(flags, f)
	}
	return flags, errs
}
