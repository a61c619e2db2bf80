package script

import (
	"iter"
	"sync"

	"github.com/pkg/errors"
)

// ErrAlreadyPublished is returned when publishing into a store that already holds a script.
var ErrAlreadyPublished = errors.New("a script has already been published")

// A Store holds the single script a process works from. Until a script is published every
// lookup fails closed: no sections, no matches.
type Store struct {
	mu     sync.RWMutex
	script *Script
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

var defaultStore = NewStore()

// Default returns the process-wide store.
func Default() *Store {
	return defaultStore
}

// Publish makes s the script of the store. It fails with ErrBlobInvalid if s does not pass the
// plausibility check and with ErrAlreadyPublished if a script was published before; in both cases
// the store is left as it was.
func (st *Store) Publish(s *Script) error {
	if s == nil {
		return errors.Wrap(ErrBlobInvalid, "no script")
	}
	if !s.Plausible() {
		v := s.Version()
		return errors.Wrapf(ErrBlobInvalid, "implausible header: version %d.%d.%d, %d sections",
			v[0], v[1], v[2], s.SectionCount())
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.script != nil {
		return ErrAlreadyPublished
	}
	st.script = s
	return nil
}

// Script returns the published script.
func (st *Store) Script() (*Script, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.script, st.script != nil
}

// Published reports whether a script has been published.
func (st *Store) Published() bool {
	_, ok := st.Script()
	return ok
}

// SectionCount returns the number of sections of the published script, 0 if there is none.
func (st *Store) SectionCount() int {
	s, ok := st.Script()
	if !ok {
		return 0
	}
	return s.SectionCount()
}

// Sections returns the sections of the published script in storage order.
func (st *Store) Sections() iter.Seq[Section] {
	s, ok := st.Script()
	if !ok {
		return func(func(Section) bool) {}
	}
	return s.Sections()
}

// FindSection returns the first section of the published script with the given name.
func (st *Store) FindSection(name string) (Section, bool) {
	s, ok := st.Script()
	if !ok {
		return Section{}, false
	}
	return s.FindSection(name)
}

// Load parses data and publishes it into the store.
func (st *Store) Load(data []byte) (*Script, error) {
	s, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := st.Publish(s); err != nil {
		return nil, err
	}
	return s, nil
}
