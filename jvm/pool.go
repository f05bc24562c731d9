package jvm

import (
	"fmt"
	"math"
	"strconv"

	"github.com/wippyai/classfile/errors"
	"github.com/wippyai/classfile/jvm/internal/binary"
)

// Entry is one constant pool entry. Reference entries hold pool indices in
// Ref1/Ref2, never values. Numeric entries keep their raw bits in Bits.
type Entry struct {
	Text string
	Bits uint64
	Ref1 uint16
	Ref2 uint16
	Tag  Tag
}

// Int32 returns the value of an Integer entry.
func (e Entry) Int32() int32 { return int32(uint32(e.Bits)) }

// Float32 returns the value of a Float entry.
func (e Entry) Float32() float32 { return math.Float32frombits(uint32(e.Bits)) }

// Int64 returns the value of a Long entry.
func (e Entry) Int64() int64 { return int64(e.Bits) }

// Float64 returns the value of a Double entry.
func (e Entry) Float64() float64 { return math.Float64frombits(e.Bits) }

// String renders the entry the way javap lists constants.
func (e Entry) String() string {
	switch e.Tag {
	case TagUTF8:
		return fmt.Sprintf("%s %s", e.Tag, strconv.Quote(e.Text))
	case TagInteger:
		return fmt.Sprintf("%s %d", e.Tag, e.Int32())
	case TagFloat:
		return fmt.Sprintf("%s %g", e.Tag, e.Float32())
	case TagLong:
		return fmt.Sprintf("%s %d", e.Tag, e.Int64())
	case TagDouble:
		return fmt.Sprintf("%s %g", e.Tag, e.Float64())
	case TagClass, TagString, TagMethodType, TagModule, TagPackage:
		return fmt.Sprintf("%s #%d", e.Tag, e.Ref1)
	case TagNameAndType:
		return fmt.Sprintf("%s #%d:#%d", e.Tag, e.Ref1, e.Ref2)
	case TagDynamic, TagInvokeDynamic:
		return fmt.Sprintf("%s #%d:#%d", e.Tag, e.Ref1, e.Ref2)
	default:
		return fmt.Sprintf("%s #%d.#%d", e.Tag, e.Ref1, e.Ref2)
	}
}

// Pool is the constant pool of one class under construction. Indices are
// assigned in insertion order starting at 1. Only UTF8 entries are
// deduplicated; every other insert appends a new entry.
//
// A Pool is not safe for concurrent use and is consumed by Emit.
type Pool struct {
	cache   map[string]uint16
	entries []Entry
	indices []uint16 // pool index of entries[i]
	next    int      // next free index
	emitted bool
}

// NewPool creates an empty constant pool.
func NewPool() *Pool {
	return &Pool{
		cache: make(map[string]uint16),
		next:  1,
	}
}

// Len returns the number of entries inserted so far.
func (p *Pool) Len() int {
	return len(p.entries)
}

// Count returns the value of the constant_pool_count field: highest
// assigned index + 1.
func (p *Pool) Count() int {
	return p.next
}

// Entries returns a copy of the entries in insertion order.
func (p *Pool) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Indices returns the pool index of every entry, parallel to Entries.
func (p *Pool) Indices() []uint16 {
	out := make([]uint16, len(p.indices))
	copy(out, p.indices)
	return out
}

// Lookup returns the entry stored at index.
func (p *Pool) Lookup(index uint16) (Entry, bool) {
	lo, hi := 0, len(p.indices)
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case p.indices[mid] == index:
			return p.entries[mid], true
		case p.indices[mid] < index:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return Entry{}, false
}

func (p *Pool) append(e Entry) (uint16, error) {
	if p.emitted {
		return 0, errPoolEmitted()
	}
	last := p.next + e.Tag.Slots() - 1
	if last > MaxPoolIndex {
		return 0, errors.SymbolTableOverflow(last, MaxPoolIndex)
	}
	index := uint16(p.next)
	p.entries = append(p.entries, e)
	p.indices = append(p.indices, index)
	p.next = last + 1
	return index, nil
}

// InsertUTF8 inserts text, returning the existing index if the same text
// was inserted before.
func (p *Pool) InsertUTF8(s string) (uint16, error) {
	if p.emitted {
		return 0, errPoolEmitted()
	}
	if index, ok := p.cache[s]; ok {
		return index, nil
	}
	if n := binary.ModifiedUTF8Len(s); n > math.MaxUint16 {
		return 0, errors.Overflow(errors.PhaseEncode, []string{"utf8"}, n, "u16 length")
	}
	index, err := p.append(Entry{Tag: TagUTF8, Text: s})
	if err != nil {
		return 0, err
	}
	p.cache[s] = index
	return index, nil
}

// InsertInteger appends an Integer entry.
func (p *Pool) InsertInteger(v int32) (uint16, error) {
	return p.append(Entry{Tag: TagInteger, Bits: uint64(uint32(v))})
}

// InsertFloat appends a Float entry.
func (p *Pool) InsertFloat(v float32) (uint16, error) {
	return p.append(Entry{Tag: TagFloat, Bits: uint64(math.Float32bits(v))})
}

// InsertLong appends a Long entry. It occupies two indices.
func (p *Pool) InsertLong(v int64) (uint16, error) {
	return p.append(Entry{Tag: TagLong, Bits: uint64(v)})
}

// InsertDouble appends a Double entry. It occupies two indices.
func (p *Pool) InsertDouble(v float64) (uint16, error) {
	return p.append(Entry{Tag: TagDouble, Bits: math.Float64bits(v)})
}

// insertRef1 inserts text and appends an entry of tag pointing at it.
func (p *Pool) insertRef1(tag Tag, text string) (uint16, error) {
	textIdx, err := p.InsertUTF8(text)
	if err != nil {
		return 0, err
	}
	return p.append(Entry{Tag: tag, Ref1: textIdx})
}

// InsertClass inserts name as text and appends a Class entry for it.
func (p *Pool) InsertClass(name string) (uint16, error) {
	return p.insertRef1(TagClass, name)
}

// InsertString inserts s as text and appends a String entry for it.
func (p *Pool) InsertString(s string) (uint16, error) {
	return p.insertRef1(TagString, s)
}

// InsertMethodType inserts descriptor as text and appends a MethodType entry.
func (p *Pool) InsertMethodType(descriptor string) (uint16, error) {
	return p.insertRef1(TagMethodType, descriptor)
}

// InsertModule inserts name as text and appends a Module entry.
func (p *Pool) InsertModule(name string) (uint16, error) {
	return p.insertRef1(TagModule, name)
}

// InsertPackage inserts name as text and appends a Package entry.
func (p *Pool) InsertPackage(name string) (uint16, error) {
	return p.insertRef1(TagPackage, name)
}

// InsertNameAndType inserts name and descriptor as text and appends a
// NameAndType entry.
func (p *Pool) InsertNameAndType(name, descriptor string) (uint16, error) {
	nameIdx, err := p.InsertUTF8(name)
	if err != nil {
		return 0, err
	}
	descIdx, err := p.InsertUTF8(descriptor)
	if err != nil {
		return 0, err
	}
	return p.append(Entry{Tag: TagNameAndType, Ref1: nameIdx, Ref2: descIdx})
}

// insertMember appends a member reference: owner as a Class entry, then
// member and descriptor as a NameAndType entry, then the reference itself.
func (p *Pool) insertMember(tag Tag, owner, member, descriptor string) (uint16, error) {
	classIdx, err := p.InsertClass(owner)
	if err != nil {
		return 0, err
	}
	ntIdx, err := p.InsertNameAndType(member, descriptor)
	if err != nil {
		return 0, err
	}
	return p.append(Entry{Tag: tag, Ref1: classIdx, Ref2: ntIdx})
}

// InsertField appends a Fieldref to owner.member of type descriptor.
func (p *Pool) InsertField(owner, member, descriptor string) (uint16, error) {
	return p.insertMember(TagField, owner, member, descriptor)
}

// InsertMethod appends a Methodref to owner.member with descriptor.
func (p *Pool) InsertMethod(owner, member, descriptor string) (uint16, error) {
	return p.insertMember(TagMethod, owner, member, descriptor)
}

// InsertInterfaceMethod appends an InterfaceMethodref.
func (p *Pool) InsertInterfaceMethod(owner, member, descriptor string) (uint16, error) {
	return p.insertMember(TagInterfaceMethod, owner, member, descriptor)
}

// InsertDynamic appends a Dynamic entry. bootstrap indexes the class's
// bootstrap method table; nameAndType must be a NameAndType entry of this pool.
func (p *Pool) InsertDynamic(bootstrap, nameAndType uint16) (uint16, error) {
	if err := p.checkNameAndType(nameAndType); err != nil {
		return 0, err
	}
	return p.append(Entry{Tag: TagDynamic, Ref1: bootstrap, Ref2: nameAndType})
}

// InsertInvokeDynamic appends an InvokeDynamic entry.
func (p *Pool) InsertInvokeDynamic(bootstrap, nameAndType uint16) (uint16, error) {
	if err := p.checkNameAndType(nameAndType); err != nil {
		return 0, err
	}
	return p.append(Entry{Tag: TagInvokeDynamic, Ref1: bootstrap, Ref2: nameAndType})
}

func (p *Pool) checkNameAndType(index uint16) error {
	e, ok := p.Lookup(index)
	if !ok || e.Tag != TagNameAndType {
		return errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Path("constant_pool").
			Value(index).
			Detail("index %d is not a NameAndType entry", index).
			Build()
	}
	return nil
}

// Emit writes the constant_pool_count field followed by every entry in
// insertion order. The pool cannot be modified or emitted again afterwards.
func (p *Pool) Emit() ([]byte, error) {
	if p.emitted {
		return nil, errPoolEmitted()
	}
	p.emitted = true

	w := binary.NewWriter()
	w.WriteU16(uint16(p.next))
	for _, e := range p.entries {
		writeEntry(w, e)
	}
	return w.Bytes(), nil
}

func writeEntry(w *binary.Writer, e Entry) {
	w.Byte(byte(e.Tag))
	switch e.Tag {
	case TagUTF8:
		w.WriteUTF8(e.Text)
	case TagInteger, TagFloat:
		w.WriteU32(uint32(e.Bits))
	case TagLong, TagDouble:
		w.WriteU64(e.Bits)
	case TagClass, TagString, TagMethodType, TagModule, TagPackage:
		w.WriteU16(e.Ref1)
	default:
		w.WriteU16(e.Ref1)
		w.WriteU16(e.Ref2)
	}
}

func errPoolEmitted() error {
	return errors.InvalidInput(errors.PhaseEncode, "constant pool already emitted")
}
