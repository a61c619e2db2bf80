package script

import (
	"encoding/binary"
	"fmt"
	"iter"
)

// A Section is a named group of properties inside a script. The zero Section has no properties.
type Section struct {
	script *Script
	name   string
	count  uint32
	offset uint32
}

// Name returns the section name.
func (sec Section) Name() string {
	return sec.name
}

// Len returns the number of property records the section declares. Records that fall outside of
// the blob are not yielded by Properties, so this is an upper bound.
func (sec Section) Len() int {
	return int(sec.count)
}

// Properties returns the section properties in storage order. Each call returns a fresh sequence.
func (sec Section) Properties() iter.Seq[Property] {
	return func(yield func(Property) bool) {
		if sec.script == nil {
			return
		}
		for i := uint64(0); i < uint64(sec.count); i++ {
			recOff := uint64(sec.offset) + i*propertyRecordSize/wordSize
			rec, ok := sec.script.words(recOff, propertyRecordSize/wordSize)
			if !ok {
				// Every following record is out of bounds as well.
				return
			}
			prop, ok := sec.script.decodeProperty(rec)
			if !ok {
				continue
			}
			if !yield(prop) {
				return
			}
		}
	}
}

// FindProperty returns the first property named exactly name.
func (sec Section) FindProperty(name string) (Property, bool) {
	for prop := range sec.Properties() {
		if prop.Name == name {
			return prop, true
		}
	}
	return Property{}, false
}

// FindPropertyf formats a property name, e.g. FindPropertyf("%s_used", feature), and looks it up.
// Names longer than MaxNameLen are truncated, as they would be in the blob.
func (sec Section) FindPropertyf(format string, args ...interface{}) (Property, bool) {
	name := fmt.Sprintf(format, args...)
	if len(name) > MaxNameLen {
		name = name[:MaxNameLen]
	}
	return sec.FindProperty(name)
}

// CountPinDescriptors returns how many properties of the section are pin descriptors.
func (sec Section) CountPinDescriptors() int {
	count := 0
	for prop := range sec.Properties() {
		if prop.Type() == TypePin {
			count++
		}
	}
	return count
}

// PinDescriptors returns the pin descriptors of the section in storage order.
func (sec Section) PinDescriptors() iter.Seq[PinDescriptor] {
	return func(yield func(PinDescriptor) bool) {
		for prop := range sec.Properties() {
			desc, ok := prop.AsPinDescriptor()
			if !ok {
				continue
			}
			if !yield(desc) {
				return
			}
		}
	}
}

func (s *Script) decodeProperty(rec []byte) (Property, bool) {
	valOff := binary.LittleEndian.Uint32(rec[NameSize:])
	pattern := binary.LittleEndian.Uint32(rec[NameSize+wordSize:])
	tag := uint16(pattern >> 16)
	nwords := uint64(pattern & 0xffff)

	raw, ok := s.words(uint64(valOff), nwords)
	if !ok {
		return Property{}, false
	}
	return Property{
		Name:  cString(rec[:NameSize]),
		Value: decodeValue(tag, raw),
	}, true
}
