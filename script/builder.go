package script

import (
	"encoding/binary"
)

// A Builder assembles a script blob. It is used by tests and tools to produce blobs without a
// firmware image at hand.
type Builder struct {
	version  [3]uint32
	sections []*SectionBuilder
}

// A SectionBuilder adds properties to one section of a Builder.
type SectionBuilder struct {
	name  string
	props []builderProp
}

type builderProp struct {
	name  string
	tag   uint16
	words []uint32
}

// NewBuilder returns a builder for a version 0.1.0 script.
func NewBuilder() *Builder {
	return &Builder{version: [3]uint32{0, 1, 0}}
}

// Version sets the version triple written to the header.
func (b *Builder) Version(major, minor, patch uint32) *Builder {
	b.version = [3]uint32{major, minor, patch}
	return b
}

// Section appends a section. Names longer than MaxNameLen are truncated.
func (b *Builder) Section(name string) *SectionBuilder {
	sb := &SectionBuilder{name: name}
	b.sections = append(b.sections, sb)
	return sb
}

// U32 appends an integer property.
func (sb *SectionBuilder) U32(name string, v uint32) *SectionBuilder {
	return sb.Raw(name, uint16(TypeU32), []uint32{v})
}

// String appends a NUL terminated string property.
func (sb *SectionBuilder) String(name, v string) *SectionBuilder {
	buf := make([]byte, (len(v)+wordSize)/wordSize*wordSize)
	copy(buf, v)
	words := make([]uint32, len(buf)/wordSize)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(buf[i*wordSize:])
	}
	return sb.Raw(name, uint16(TypeString), words)
}

// Pin appends a pin descriptor property.
func (sb *SectionBuilder) Pin(name string, d PinDescriptor) *SectionBuilder {
	var port uint32
	switch d.Bank {
	case BankInvalid:
		port = 0
	case BankPower:
		port = BankPower
	default:
		port = d.Bank + 1
	}
	return sb.Raw(name, uint16(TypePin), []uint32{
		port, d.Pin,
		uint32(int32(d.Mux)), uint32(int32(d.Pull)),
		uint32(int32(d.Drive)), uint32(int32(d.Value)),
	})
}

// Raw appends a property with an arbitrary tag and value words.
func (sb *SectionBuilder) Raw(name string, tag uint16, words []uint32) *SectionBuilder {
	sb.props = append(sb.props, builderProp{name: name, tag: tag, words: words})
	return sb
}

// Bytes encodes the script: header, section table, every section's property records, then the
// values.
func (b *Builder) Bytes() []byte {
	recordWords := uint32(propertyRecordSize / wordSize)
	nextRecord := uint32(headerSize/wordSize) + uint32(len(b.sections))*uint32(sectionRecordSize/wordSize)
	nextValue := nextRecord
	for _, sec := range b.sections {
		nextValue += uint32(len(sec.props)) * recordWords
	}
	totalWords := nextValue
	for _, sec := range b.sections {
		for _, p := range sec.props {
			totalWords += uint32(len(p.words))
		}
	}

	out := make([]byte, totalWords*wordSize)
	putWord := func(wordOff, v uint32) {
		binary.LittleEndian.PutUint32(out[wordOff*wordSize:], v)
	}
	putName := func(wordOff uint32, name string) {
		if len(name) > MaxNameLen {
			name = name[:MaxNameLen]
		}
		copy(out[wordOff*wordSize:wordOff*wordSize+NameSize], name)
	}

	putWord(0, uint32(len(b.sections)))
	for i, v := range b.version {
		putWord(uint32(i+1), v)
	}

	for i, sec := range b.sections {
		secOff := uint32(headerSize/wordSize) + uint32(i)*uint32(sectionRecordSize/wordSize)
		putName(secOff, sec.name)
		putWord(secOff+NameSize/wordSize, uint32(len(sec.props)))
		putWord(secOff+NameSize/wordSize+1, nextRecord)

		for _, p := range sec.props {
			putName(nextRecord, p.name)
			putWord(nextRecord+NameSize/wordSize, nextValue)
			putWord(nextRecord+NameSize/wordSize+1, uint32(p.tag)<<16|uint32(len(p.words)))
			for j, w := range p.words {
				putWord(nextValue+uint32(j), w)
			}
			nextRecord += recordWords
			nextValue += uint32(len(p.words))
		}
	}
	return out
}
