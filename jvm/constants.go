package jvm

// Class file header constants.
const (
	// Magic identifies a class file.
	Magic uint32 = 0xCAFEBABE

	// MinorVersion is the emitted minor version.
	MinorVersion uint16 = 0x0000

	// MajorVersion is the emitted major version (Java SE 17).
	MajorVersion uint16 = 0x003D
)

// ObjectClassName is the internal name of the root class, used as the
// default superclass.
const ObjectClassName = "java/lang/Object"

// CodeAttributeName names the attribute holding a method body.
const CodeAttributeName = "Code"

// MaxPoolIndex is the highest usable constant pool index. The pool count
// field stores highest index + 1 in a u16.
const MaxPoolIndex = 0xFFFF - 1

// Tag identifies the kind of a constant pool entry in the binary format.
type Tag byte

// Constant pool tags.
const (
	TagUTF8            Tag = 0x01
	TagInteger         Tag = 0x03
	TagFloat           Tag = 0x04
	TagLong            Tag = 0x05
	TagDouble          Tag = 0x06
	TagClass           Tag = 0x07
	TagString          Tag = 0x08
	TagField           Tag = 0x09
	TagMethod          Tag = 0x0A
	TagInterfaceMethod Tag = 0x0B
	TagNameAndType     Tag = 0x0C
	TagMethodType      Tag = 0x10
	TagDynamic         Tag = 0x12
	TagInvokeDynamic   Tag = 0x13
	TagModule          Tag = 0x16
	TagPackage         Tag = 0x17
)

var tagNames = map[Tag]string{
	TagUTF8:            "Utf8",
	TagInteger:         "Integer",
	TagFloat:           "Float",
	TagLong:            "Long",
	TagDouble:          "Double",
	TagClass:           "Class",
	TagString:          "String",
	TagField:           "Fieldref",
	TagMethod:          "Methodref",
	TagInterfaceMethod: "InterfaceMethodref",
	TagNameAndType:     "NameAndType",
	TagMethodType:      "MethodType",
	TagDynamic:         "Dynamic",
	TagInvokeDynamic:   "InvokeDynamic",
	TagModule:          "Module",
	TagPackage:         "Package",
}

// String returns the conventional name of the tag.
func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Slots returns the number of pool indices an entry with this tag occupies.
func (t Tag) Slots() int {
	if t == TagLong || t == TagDouble {
		return 2
	}
	return 1
}
