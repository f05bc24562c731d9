// Package classfile provides a Go encoder for JVM class files.
//
// Classes are described with fluent builders and serialized to the exact
// byte layout the JVM class loader expects. The module is write-only: it
// never parses existing class files.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	classfile/           Root package with the Emitter interface
//	├── jvm/             Constant pool, instruction encoder, stack inference,
//	│                    Code/method/class assembly
//	├── classdef/        TOML class definitions compiled to jvm builders
//	├── errors/          Structured error types
//	└── cmd/classgen/    Command line generator and pool inspector
//
// # Quick Start
//
// Build the classic hello-world shape:
//
//	ctor := jvm.NewMethodBuilder().
//	    AccessFlag(jvm.AccPublic).
//	    Name("<init>").
//	    Code(jvm.NewCodeBuilder().MaxLocals(1).Instructions(
//	        jvm.ALoad(0),
//	        jvm.InvokeSpecial(jvm.ObjectClassName, "<init>", "()V"),
//	        jvm.Return(),
//	    ))
//
//	data, err := jvm.NewClassBuilder().
//	    AccessFlag(jvm.AccPublic, jvm.AccSuper).
//	    Name("Hello").
//	    Method(ctor).
//	    Emit()
//
// # Constant Pool
//
// Every symbolic reference is resolved into one constant pool shared by the
// whole class. Text entries are deduplicated; composite entries (Class,
// Methodref, ...) are appended on every insert. Indices start at 1 and never
// exceed 65534; running out is reported as a symbol table overflow.
//
// # Thread Safety
//
// Builders and pools are not safe for concurrent use. Each builder is
// single-use and owns its pool for the duration of one Emit call.
package classfile
