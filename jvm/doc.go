// Package jvm assembles JVM class files.
//
// This package implements the write side of the class file format for a
// small instruction subset: enough to build classes whose methods load
// locals and small int literals, add ints, read static fields, call
// methods and return.
//
// # Supported Instructions
//
//	aload, iload           local loads (u8 slot)
//	iconst                 int literals -1..5 (iconst_m1 .. iconst_5)
//	iadd                   int addition
//	getstatic              static field read
//	invokevirtual          virtual call
//	invokespecial          constructor / private / super call
//	invokestatic           static call
//	invokeinterface        interface call
//	ireturn, return        returns
//
// # Building
//
// A class is described with builders and emitted once:
//
//	main := jvm.NewMethodBuilder().
//	    AccessFlag(jvm.AccPublic, jvm.AccStatic).
//	    Name("main").
//	    Parameter(jvm.ArrayDescriptor(jvm.ObjectDescriptor("java/lang/String"))).
//	    Code(jvm.NewCodeBuilder().MaxLocals(1).Instructions(
//	        jvm.GetStatic("java/lang/System", "out", "Ljava/io/PrintStream;"),
//	        jvm.IConst(2),
//	        jvm.IConst(2),
//	        jvm.IAdd(),
//	        jvm.InvokeVirtual("java/io/PrintStream", "println", "(I)V"),
//	        jvm.Return(),
//	    ))
//
//	data, err := jvm.NewClassBuilder().Name("Test").Method(main).Emit()
//
// Assemble returns the bytes together with a snapshot of the constant pool
// and per-method statistics:
//
//	asm, err := builder.Assemble()
//	for i, e := range asm.Entries {
//	    fmt.Printf("#%d = %s\n", asm.Indices[i], e)
//	}
//
// # Stack Inference
//
// When a Code body has no explicit max stack, it is inferred by a single
// forward pass over the instructions using the stack delta of each
// operation. Void returns count as zero by default; StackOptions can
// restore the legacy accounting that treats them as a pop.
//
// # Errors
//
// Encoding never panics on user input. Out-of-range literals, missing
// required builder fields and constant pool exhaustion are reported as
// structured errors from the errors package.
package jvm
