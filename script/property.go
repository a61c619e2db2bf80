package script

import (
	"encoding/binary"
	"fmt"
)

// Type is the type tag of a property value.
type Type uint16

// Property types. The values match the tags used in the blob.
const (
	TypeUnknown Type = 0
	TypeU32     Type = 1
	TypeString  Type = 2
	TypePin     Type = 4
)

// Tags the blob may carry that this package does not decode.
const (
	tagU32Array uint16 = 3
	tagNull     uint16 = 5
)

func (t Type) String() string {
	switch t {
	case TypeU32:
		return "u32"
	case TypeString:
		return "string"
	case TypePin:
		return "gpio"
	case TypeUnknown:
	}
	return "unknown"
}

// A Value is one of U32, String, PinDescriptor or Unknown.
type Value interface {
	Type() Type
	isValue()
}

// U32 is an unsigned 32-bit integer property value.
type U32 uint32

// String is a string property value.
type String string

// Unknown holds the raw words of a value whose tag is not decoded, e.g. integer arrays and null
// entries.
type Unknown struct {
	Tag uint16
	Raw []byte
}

// Type returns TypeU32.
func (U32) Type() Type { return TypeU32 }

// Type returns TypeString.
func (String) Type() Type { return TypeString }

// Type returns TypeUnknown.
func (Unknown) Type() Type { return TypeUnknown }

func (U32) isValue()     {}
func (String) isValue()  {}
func (Unknown) isValue() {}

// A Property is a named, typed value of a section.
type Property struct {
	Name  string
	Value Value
}

// Type returns the type tag of the property value.
func (p Property) Type() Type {
	if p.Value == nil {
		return TypeUnknown
	}
	return p.Value.Type()
}

// AsU32 returns the value of an integer property.
func (p Property) AsU32() (uint32, bool) {
	v, ok := p.Value.(U32)
	return uint32(v), ok
}

// AsString returns the value of a string property.
func (p Property) AsString() (string, bool) {
	v, ok := p.Value.(String)
	return string(v), ok
}

// AsPinDescriptor returns the value of a pin descriptor property.
func (p Property) AsPinDescriptor() (PinDescriptor, bool) {
	v, ok := p.Value.(PinDescriptor)
	return v, ok
}

// Format renders the value the way it is written in the text form of the script.
func (p Property) Format() string {
	switch v := p.Value.(type) {
	case U32:
		return fmt.Sprintf("%d", uint32(v))
	case String:
		return fmt.Sprintf("%q", string(v))
	case PinDescriptor:
		return v.String()
	case Unknown:
		switch v.Tag {
		case tagNull:
			return "<null>"
		case tagU32Array:
			words := make([]uint32, 0, len(v.Raw)/wordSize)
			for i := 0; i+wordSize <= len(v.Raw); i += wordSize {
				words = append(words, binary.LittleEndian.Uint32(v.Raw[i:]))
			}
			return fmt.Sprint(words)
		}
		return fmt.Sprintf("<tag %d, %d bytes>", v.Tag, len(v.Raw))
	}
	return "<nil>"
}

// decodeValue interprets raw according to tag. Values too short for their tag are Unknown.
func decodeValue(tag uint16, raw []byte) Value {
	switch Type(tag) {
	case TypeU32:
		if len(raw) >= wordSize {
			return U32(binary.LittleEndian.Uint32(raw))
		}
	case TypeString:
		return String(cString(raw))
	case TypePin:
		if len(raw) >= pinDescriptorWords*wordSize {
			return decodePinDescriptor(raw)
		}
	case TypeUnknown:
	}
	return Unknown{Tag: tag, Raw: raw}
}
