// Package script decodes the binary board configuration ("script.bin") handed over by the boot
// firmware of Allwinner (sunxi) boards. A script is a list of named sections, each holding typed
// properties: 32-bit integers, strings and GPIO pin descriptors.
//
// The blob is never copied or transformed: a Script is a read-only view and sections and
// properties are decoded lazily. Any record pointing outside of the blob is treated as absent.
package script

import (
	"bytes"
	"encoding/binary"
	"iter"

	"github.com/pkg/errors"
)

// Layout of the blob. All values are little-endian 32-bit words and offsets are counted in
// words from the start of the blob.
const (
	wordSize = 4
	// NameSize is the fixed size of section and property names, including the NUL terminator.
	NameSize = 32
	// MaxNameLen is the longest usable section or property name.
	MaxNameLen = NameSize - 1

	headerSize         = 4 * wordSize
	sectionRecordSize  = NameSize + 2*wordSize
	propertyRecordSize = NameSize + 2*wordSize
	pinDescriptorWords = 6
)

// MaxSections is the largest section count accepted when publishing a script.
const MaxSections = 256

// MaxVersion bounds each field of a publishable script version; every field must be strictly
// lower than its bound.
var MaxVersion = [3]uint32{1, 2, 10}

// ErrBlobInvalid is returned when a blob is too short, inconsistent or fails the plausibility
// check done when publishing.
var ErrBlobInvalid = errors.New("invalid script blob")

// A Script is a parsed, read-only view of a script blob.
type Script struct {
	data    []byte
	count   uint32
	version [3]uint32
}

// Parse checks that the header and section table of data are well formed and returns a view over
// it. The property area is only validated when it is read. data must not be modified afterwards.
func Parse(data []byte) (*Script, error) {
	if len(data) < headerSize {
		return nil, errors.Wrapf(ErrBlobInvalid, "%d bytes is too short for a header", len(data))
	}
	s := &Script{
		data:  data,
		count: binary.LittleEndian.Uint32(data[0:]),
	}
	for i := range s.version {
		s.version[i] = binary.LittleEndian.Uint32(data[wordSize*(i+1):])
	}

	if end := uint64(headerSize) + uint64(s.count)*sectionRecordSize; end > uint64(len(data)) {
		return nil, errors.Wrapf(ErrBlobInvalid, "%d sections do not fit in %d bytes", s.count, len(data))
	}
	return s, nil
}

// Version returns the version triple from the header.
func (s *Script) Version() [3]uint32 {
	return s.version
}

// SectionCount returns the number of sections declared in the header.
func (s *Script) SectionCount() int {
	return int(s.count)
}

// Plausible reports whether the header passes the publish-time check: every version field below
// MaxVersion and at most MaxSections sections.
func (s *Script) Plausible() bool {
	for i, v := range s.version {
		if v >= MaxVersion[i] {
			return false
		}
	}
	return s.count <= MaxSections
}

// Section returns the i-th section in storage order.
func (s *Script) Section(i int) (Section, bool) {
	if i < 0 || i >= int(s.count) {
		return Section{}, false
	}
	off := headerSize + i*sectionRecordSize
	rec := s.data[off : off+sectionRecordSize]
	return Section{
		script: s,
		name:   cString(rec[:NameSize]),
		count:  binary.LittleEndian.Uint32(rec[NameSize:]),
		offset: binary.LittleEndian.Uint32(rec[NameSize+wordSize:]),
	}, true
}

// Sections returns the sections in storage order. Each call returns a fresh sequence.
func (s *Script) Sections() iter.Seq[Section] {
	return func(yield func(Section) bool) {
		for i := 0; i < int(s.count); i++ {
			sec, _ := s.Section(i)
			if !yield(sec) {
				return
			}
		}
	}
}

// FindSection returns the first section with the given name.
func (s *Script) FindSection(name string) (Section, bool) {
	for sec := range s.Sections() {
		if sec.name == name {
			return sec, true
		}
	}
	return Section{}, false
}

// words returns the n words starting at word offset off, or false if they are not all inside the
// blob.
func (s *Script) words(off, n uint64) ([]byte, bool) {
	start := off * wordSize
	end := start + n*wordSize
	if end > uint64(len(s.data)) || end < start {
		return nil, false
	}
	return s.data[start:end], true
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
