package jvm_test

import (
	"bytes"
	"errors"
	"strconv"
	"testing"

	"go.uber.org/multierr"

	"github.com/wippyai/classfile"
	cferrors "github.com/wippyai/classfile/errors"
	"github.com/wippyai/classfile/jvm"
)

var header = []byte{0xCA, 0xFE, 0xBA, 0xBE, 0x00, 0x00, 0x00, 0x3D}

func constructor() *jvm.MethodBuilder {
	return jvm.NewMethodBuilder().
		AccessFlag(jvm.AccPublic).
		Name("<init>").
		Code(jvm.NewCodeBuilder().MaxLocals(1).Instructions(ctorInstrs...))
}

func mainMethod(instrs ...jvm.Instruction) *jvm.MethodBuilder {
	return jvm.NewMethodBuilder().
		AccessFlag(jvm.AccPublic, jvm.AccStatic).
		Name("main").
		Parameter(jvm.ArrayDescriptor(jvm.ObjectDescriptor("java/lang/String"))).
		Code(jvm.NewCodeBuilder().MaxLocals(1).Instructions(instrs...))
}

func printTwoPlusTwo() []jvm.Instruction {
	return []jvm.Instruction{
		jvm.GetStatic("java/lang/System", "out", "Ljava/io/PrintStream;"),
		jvm.IConst(2),
		jvm.IConst(2),
		jvm.IAdd(),
		jvm.InvokeVirtual("java/io/PrintStream", "println", "(I)V"),
		jvm.Return(),
	}
}

func TestClassPrintSum(t *testing.T) {
	asm, err := jvm.NewClassBuilder().
		AccessFlag(jvm.AccPublic).
		Name("Test").
		Method(constructor(), mainMethod(printTwoPlusTwo()...)).
		Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !bytes.HasPrefix(asm.Bytes, header) {
		t.Fatalf("header = % x", asm.Bytes[:8])
	}

	c := parseClass(t, asm.Bytes)
	if c.poolCount != 25 || asm.PoolCount != 25 {
		t.Errorf("pool count = %d (assembly %d), want 25", c.poolCount, asm.PoolCount)
	}
	if c.flags != 0x0001 {
		t.Errorf("class flags = %#04x, want 0x0001", c.flags)
	}
	if c.thisClass != 23 || c.superClass != 24 {
		t.Errorf("this/super = #%d/#%d, want #23/#24", c.thisClass, c.superClass)
	}
	if got := c.className(c.thisClass); got != "Test" {
		t.Errorf("this_class = %q", got)
	}
	if got := c.className(c.superClass); got != jvm.ObjectClassName {
		t.Errorf("super_class = %q", got)
	}

	testClasses := 0
	for _, e := range c.pool {
		if e.Tag == jvm.TagClass && c.pool[e.Ref1].Text == "Test" {
			testClasses++
		}
	}
	if testClasses != 1 {
		t.Errorf("Class entries for Test = %d, want 1", testClasses)
	}

	if len(c.methods) != 2 {
		t.Fatalf("methods = %d, want 2", len(c.methods))
	}
	ctor := c.methods[0]
	if ctor.name != "<init>" || ctor.desc != "()V" || ctor.flags != 0x0001 {
		t.Errorf("constructor = %s%s flags %#x", ctor.name, ctor.desc, ctor.flags)
	}
	if !bytes.Equal(ctor.code, []byte{0x19, 0x00, 0xB7, 0x00, 0x06, 0xB1}) {
		t.Errorf("constructor code = % x", ctor.code)
	}

	m, ok := c.method("main")
	if !ok {
		t.Fatal("main not found")
	}
	if m.desc != "([Ljava/lang/String;)V" || m.flags != 0x0009 {
		t.Errorf("main = %s flags %#x", m.desc, m.flags)
	}
	if m.maxStack != 3 {
		t.Errorf("main max stack = %d, want 3", m.maxStack)
	}
	wantCode := []byte{0xB2, 0x00, 0x0F, 0x05, 0x05, 0x60, 0xB6, 0x00, 0x15, 0xB1}
	if !bytes.Equal(m.code, wantCode) {
		t.Errorf("main code = % x, want % x", m.code, wantCode)
	}

	if len(asm.Methods) != 2 || asm.Methods[1].MaxStack != 3 || asm.Methods[1].CodeLength != 10 {
		t.Errorf("summaries = %+v", asm.Methods)
	}
}

func TestClassPoolOrder(t *testing.T) {
	asm, err := jvm.NewClassBuilder().
		Name("Test").
		Method(constructor(), mainMethod(printTwoPlusTwo()...)).
		Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := map[uint16]string{
		1:  `Utf8 "<init>"`,
		2:  `Utf8 "()V"`,
		3:  `Utf8 "java/lang/Object"`,
		4:  "Class #3",
		5:  "NameAndType #1:#2",
		6:  "Methodref #4.#5",
		7:  `Utf8 "Code"`,
		8:  `Utf8 "main"`,
		9:  `Utf8 "([Ljava/lang/String;)V"`,
		15: "Fieldref #11.#14",
		21: "Methodref #17.#20",
		22: `Utf8 "Test"`,
		23: "Class #22",
		24: "Class #3",
	}
	for i, idx := range asm.Indices {
		if s, ok := want[idx]; ok && asm.Entries[i].String() != s {
			t.Errorf("#%d = %s, want %s", idx, asm.Entries[i], s)
		}
	}
	// every reference points backwards
	for i, e := range asm.Entries {
		idx := asm.Indices[i]
		if e.Tag == jvm.TagUTF8 {
			continue
		}
		if e.Ref1 >= idx || e.Ref2 >= idx {
			t.Errorf("#%d %s references a later entry", idx, e)
		}
	}
}

func TestClassHelperInvokedTwice(t *testing.T) {
	add := jvm.InvokeStatic("Test", "add", "(II)I")
	asm, err := jvm.NewClassBuilder().
		AccessFlag(jvm.AccPublic, jvm.AccSuper).
		Name("Test").
		Method(
			constructor(),
			addMethod(),
			mainMethod(
				jvm.GetStatic("java/lang/System", "out", "Ljava/io/PrintStream;"),
				jvm.IConst(2),
				jvm.IConst(2),
				add,
				jvm.IConst(2),
				jvm.IConst(2),
				add,
				jvm.IAdd(),
				jvm.InvokeVirtual("java/io/PrintStream", "println", "(I)V"),
				jvm.Return(),
			),
		).
		Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	c := parseClass(t, asm.Bytes)
	if len(c.methods) != 3 {
		t.Fatalf("methods = %d, want 3", len(c.methods))
	}
	if c.flags != 0x0021 {
		t.Errorf("class flags = %#04x, want 0x0021", c.flags)
	}
	m, _ := c.method("main")
	if m.maxStack != 4 {
		t.Errorf("main max stack = %d, want 4", m.maxStack)
	}

	var addNames, addRefs int
	for idx, e := range c.pool {
		if e.Tag == jvm.TagUTF8 && e.Text == "add" {
			addNames++
		}
		if e.Tag != jvm.TagMethod {
			continue
		}
		nt := c.pool[e.Ref2]
		if c.pool[nt.Ref1].Text == "add" {
			addRefs++
			if c.className(e.Ref1) != "Test" {
				t.Errorf("#%d owner = %q", idx, c.className(e.Ref1))
			}
		}
	}
	if addNames != 1 {
		t.Errorf("Utf8 \"add\" entries = %d, want 1", addNames)
	}
	// two call sites build two Methodref entries; only text is shared
	if addRefs != 2 {
		t.Errorf("Methodref entries for add = %d, want 2", addRefs)
	}

	// the two call sites encode different indices
	first := bytes.Index(m.code, []byte{0xB8})
	second := bytes.LastIndex(m.code, []byte{0xB8})
	if first == second || bytes.Equal(m.code[first+1:first+3], m.code[second+1:second+3]) {
		t.Errorf("expected distinct Methodref indices in % x", m.code)
	}
}

func TestPoolReusedMemberIndex(t *testing.T) {
	countRefs := func(p *jvm.Pool) int {
		n := 0
		for _, e := range p.Entries() {
			if e.Tag == jvm.TagMethod {
				n++
			}
		}
		return n
	}

	p := jvm.NewPool()
	idx, err := p.InsertMethod("Test", "add", "(II)I")
	if err != nil {
		t.Fatal(err)
	}
	// a resolved index can be written any number of times
	if n := countRefs(p); n != 1 {
		t.Errorf("Methodref entries = %d, want 1", n)
	}

	again, err := p.InsertMethod("Test", "add", "(II)I")
	if err != nil {
		t.Fatal(err)
	}
	if again == idx {
		t.Error("repeated InsertMethod returned the same index")
	}
	if n := countRefs(p); n != 2 {
		t.Errorf("Methodref entries = %d, want 2", n)
	}
}

func TestClassDefaultsAndSuper(t *testing.T) {
	c := parseClass(t, mustEmit(t, jvm.NewClassBuilder().Name("a/B").Method(constructor())))
	if c.className(c.superClass) != jvm.ObjectClassName {
		t.Errorf("default super = %q", c.className(c.superClass))
	}
	if c.flags != 0 {
		t.Errorf("flags = %#x, want 0", c.flags)
	}

	c = parseClass(t, mustEmit(t, jvm.NewClassBuilder().Name("a/B").Super("a/Base")))
	if c.className(c.superClass) != "a/Base" {
		t.Errorf("super = %q", c.className(c.superClass))
	}
	if len(c.methods) != 0 || c.poolCount != 5 {
		t.Errorf("methods = %d, pool count = %d", len(c.methods), c.poolCount)
	}
}

func mustEmit(t *testing.T, e classfile.Emitter) []byte {
	t.Helper()
	b, err := e.Emit()
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	return b
}

func TestClassValidateExhaustive(t *testing.T) {
	cb := jvm.NewClassBuilder().Method(
		jvm.NewMethodBuilder().Name("ok").Code(jvm.NewCodeBuilder().Instructions(jvm.Return())),
		jvm.NewMethodBuilder().Name("f"),
		jvm.NewMethodBuilder(),
	)
	err := cb.Validate()
	errs := multierr.Errors(err)
	if len(errs) != 4 {
		t.Fatalf("got %d errors, want 4: %v", len(errs), err)
	}
	for _, e := range errs {
		if !errors.Is(e, cferrors.ErrMissingRequiredField) {
			t.Errorf("%v is not a missing field error", e)
		}
	}

	var ce *cferrors.Error
	if errors.As(errs[1], &ce) {
		if len(ce.Path) != 2 || ce.Path[1] != "methods[1](f)" {
			t.Errorf("path = %v", ce.Path)
		}
	}

	if _, err := cb.Emit(); !errors.Is(err, cferrors.ErrMissingRequiredField) {
		t.Errorf("Emit err = %v", err)
	}
}

func TestClassNilMethod(t *testing.T) {
	err := jvm.NewClassBuilder().Name("A").Method(nil).Validate()
	if !errors.Is(err, cferrors.ErrInvalidInput) {
		t.Errorf("err = %v, want invalid_input", err)
	}
}

func TestClassSingleUse(t *testing.T) {
	cb := jvm.NewClassBuilder().Name("A").Method(constructor())
	if _, err := cb.Emit(); err != nil {
		t.Fatalf("first Emit: %v", err)
	}
	if _, err := cb.Emit(); !errors.Is(err, cferrors.ErrInvalidInput) {
		t.Errorf("second Emit err = %v, want invalid_input", err)
	}
}

func TestClassErrorPath(t *testing.T) {
	_, err := jvm.NewClassBuilder().
		Name("A").
		Method(constructor(), mainMethod(jvm.IConst(7), jvm.Return())).
		Emit()
	if !errors.Is(err, cferrors.ErrInvalidLiteral) {
		t.Fatalf("err = %v, want invalid literal", err)
	}
	var ce *cferrors.Error
	if !errors.As(err, &ce) {
		t.Fatalf("%T is not *errors.Error", err)
	}
	want := []string{"class", "methods[1](main)", "code[0]"}
	if len(ce.Path) != len(want) {
		t.Fatalf("path = %v, want %v", ce.Path, want)
	}
	for i := range want {
		if ce.Path[i] != want[i] {
			t.Errorf("path = %v, want %v", ce.Path, want)
			break
		}
	}
}

func TestClassPoolOverflow(t *testing.T) {
	code := jvm.NewCodeBuilder()
	for i := 0; i < 22000; i++ {
		// each call adds a name Utf8, Class, NameAndType and Fieldref
		code.Instructions(jvm.GetStatic("C", "f"+strconv.Itoa(i), "I"))
	}
	_, err := jvm.NewClassBuilder().
		Name("A").
		Method(jvm.NewMethodBuilder().Name("m").Code(code)).
		Emit()
	if !errors.Is(err, cferrors.ErrSymbolTableOverflow) {
		t.Errorf("err = %v, want symbol table overflow", err)
	}
}

func TestClassCodeTooLong(t *testing.T) {
	code := jvm.NewCodeBuilder()
	for i := 0; i < 70000; i++ {
		code.Instructions(jvm.IAdd())
	}
	_, err := jvm.NewClassBuilder().
		Name("A").
		Method(jvm.NewMethodBuilder().Name("m").Code(code)).
		Emit()
	var ce *cferrors.Error
	if !errors.As(err, &ce) || ce.Kind != cferrors.KindOverflow {
		t.Fatalf("err = %v, want overflow", err)
	}
	if errors.Is(err, cferrors.ErrSymbolTableOverflow) {
		t.Errorf("code length error reported as symbol table overflow: %v", err)
	}
}
