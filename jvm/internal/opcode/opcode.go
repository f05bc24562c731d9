package opcode

// ImmKind describes the operand bytes that follow an opcode.
type ImmKind int

const (
	ImmNone         ImmKind = iota
	ImmLocal                // u8 local variable slot
	ImmLiteral              // none; the opcode itself encodes the value
	ImmMethodRef            // u16 Methodref index
	ImmFieldRef             // u16 Fieldref index
	ImmInterfaceRef         // u16 InterfaceMethodref index, u8 count, u8 zero
)

// Kind identifies one operation of the supported instruction subset.
type Kind int

const (
	Invalid Kind = iota
	ALoad
	ILoad
	IConst
	IAdd
	InvokeSpecial
	InvokeStatic
	InvokeVirtual
	InvokeInterface
	GetStatic
	IReturn
	Return

	numKinds
)

// Literal range encodable by the iconst family.
const (
	LiteralMin int32 = -1
	LiteralMax int32 = 5
)

// Info is the single description of an operation consulted by both the
// encoder and the stack analyzer.
type Info struct {
	Name        string
	Delta       int // net operand stack change
	LegacyDelta int // delta used when legacy void-return accounting is requested
	ImmType     ImmKind
	Opcode      byte // for IConst, the opcode of literal 0
}

var infos = [numKinds]Info{
	ALoad:           {"aload", 1, 1, ImmLocal, 0x19},
	ILoad:           {"iload", 1, 1, ImmLocal, 0x15},
	IConst:          {"iconst", 1, 1, ImmLiteral, 0x03},
	IAdd:            {"iadd", -1, -1, ImmNone, 0x60},
	InvokeSpecial:   {"invokespecial", -1, -1, ImmMethodRef, 0xB7},
	InvokeStatic:    {"invokestatic", -1, -1, ImmMethodRef, 0xB8},
	InvokeVirtual:   {"invokevirtual", -1, -1, ImmMethodRef, 0xB6},
	InvokeInterface: {"invokeinterface", -1, -1, ImmInterfaceRef, 0xB9},
	GetStatic:       {"getstatic", 1, 1, ImmFieldRef, 0xB2},
	IReturn:         {"ireturn", -1, -1, ImmNone, 0xAC},
	Return:          {"return", 0, -1, ImmNone, 0xB1},
}

var byName = func() map[string]Kind {
	m := make(map[string]Kind, numKinds)
	for k := ALoad; k < numKinds; k++ {
		m[infos[k].Name] = k
	}
	return m
}()

// Get returns the description of k.
func Get(k Kind) (Info, bool) {
	if k <= Invalid || k >= numKinds {
		return Info{}, false
	}
	return infos[k], true
}

// Lookup finds an operation by its mnemonic.
func Lookup(name string) (Kind, bool) {
	k, ok := byName[name]
	return k, ok
}

// LiteralOpcode returns the iconst opcode for v.
func LiteralOpcode(v int32) (byte, bool) {
	if v < LiteralMin || v > LiteralMax {
		return 0, false
	}
	return byte(int32(infos[IConst].Opcode) + v), true
}

// String returns the mnemonic of k.
func (k Kind) String() string {
	if info, ok := Get(k); ok {
		return info.Name
	}
	return "invalid"
}
