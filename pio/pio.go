// Package pio reserves GPIO pins of the sunxi pin controller and applies their electrical
// settings.
//
// Every pin is owned by at most one driver at a time. Ownership is tracked by an Allocator in one
// bit per pin: 9 banks of 32 pins, plus an optional set of 32 pins on the power management chip
// (the AXP domain, addressed with bank BankAXP).
package pio

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

const (
	// NumBanks is the number of pin banks of the pin controller, PA to PI.
	NumBanks = 9
	// PinsPerBank is the number of pins addressable in every bank.
	PinsPerBank = 32
	// BankAXP is the bank used to address the GPIOs of the power management chip.
	BankAXP uint32 = 0xffff
)

// Unset marks an electrical setting that must be left untouched.
const Unset = -1

var (
	// ErrBusy is returned when requesting a pin that is already held.
	ErrBusy = errors.New("pin already requested")
	// ErrInvalidAddress is returned for pins outside of every ownership domain.
	ErrInvalidAddress = errors.New("invalid pin address")
	// ErrNoPins is returned when releasing a pin list that was never allocated.
	ErrNoPins = errors.New("no pin list")
)

// A Handle identifies a held pin. It encodes the bank and pin as bank<<5 | pin.
type Handle uint32

const (
	// HandleNone is a placeholder in handle lists. It is skipped by ReleaseAll.
	HandleNone Handle = 0
	// HandleEnd terminates handle lists.
	HandleEnd Handle = math.MaxUint32
)

// NewHandle encodes a bank and pin.
func NewHandle(bank, pin uint32) Handle {
	return Handle(bank<<5 | pin&(PinsPerBank-1))
}

// Bank returns the bank of the pin.
func (h Handle) Bank() uint32 {
	return uint32(h) >> 5
}

// Pin returns the pin number within the bank.
func (h Handle) Pin() uint32 {
	return uint32(h) & (PinsPerBank - 1)
}

// String returns the conventional pin name, "PA5" or "power3".
func (h Handle) String() string {
	return PinName(h.Bank(), h.Pin())
}

// PinName returns the conventional name of a pin.
func PinName(bank, pin uint32) string {
	switch {
	case bank < NumBanks:
		return fmt.Sprintf("P%c%d", 'A'+rune(bank), pin)
	case bank == BankAXP:
		return fmt.Sprintf("power%d", pin)
	}
	return fmt.Sprintf("(%d,%d)", bank, pin)
}

// Config holds the electrical settings of a pin. Each field is Unset or a non-negative value.
type Config struct {
	Mux   int
	Pull  int
	Drive int
	Value int
}

// UnsetConfig leaves every setting untouched.
var UnsetConfig = Config{Mux: Unset, Pull: Unset, Drive: Unset, Value: Unset}

func (c Config) String() string {
	field := func(v int) string {
		if v < 0 {
			return "<->"
		}
		return fmt.Sprintf("<%d>", v)
	}
	return field(c.Mux) + field(c.Pull) + field(c.Drive) + field(c.Value)
}

// ReleaseStatus is the outcome of a successful release.
type ReleaseStatus int

const (
	// Released means the pin was held and is now free.
	Released ReleaseStatus = iota
	// NotHeld means the pin was already free. It is worth a warning, not a failure.
	NotHeld
)

func (s ReleaseStatus) String() string {
	switch s {
	case Released:
		return "released"
	case NotHeld:
		return "not held"
	}
	return fmt.Sprintf("ReleaseStatus(%d)", int(s))
}
