package script

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Unset marks an electrical setting of a pin descriptor that must be left untouched.
const Unset = -1

// Special banks of a pin descriptor.
const (
	// BankPower addresses the GPIOs of the power management chip.
	BankPower uint32 = 0xffff
	// BankInvalid is the bank of a descriptor whose port is 0; it is never a valid address.
	BankInvalid uint32 = math.MaxUint32
)

// Valid ranges of the electrical settings. Anything outside decodes to Unset.
const (
	maxMux   = 7
	maxPull  = 2
	maxDrive = 3
	maxValue = 1
)

// A PinDescriptor is the requested configuration of one GPIO pin.
type PinDescriptor struct {
	// Bank is 0 for port A, 1 for port B and so on, or BankPower.
	Bank uint32
	Pin  uint32

	// Mux, Pull, Drive and Value are Unset or a valid setting.
	Mux   int
	Pull  int
	Drive int
	Value int
}

// Type returns TypePin.
func (PinDescriptor) Type() Type { return TypePin }

func (PinDescriptor) isValue() {}

// PinName returns the conventional name of the addressed pin, e.g. "PA5" or "power3".
func (d PinDescriptor) PinName() string {
	switch {
	case d.Bank == BankPower:
		return fmt.Sprintf("power%d", d.Pin)
	case d.Bank < 26:
		return fmt.Sprintf("P%c%d", 'A'+rune(d.Bank), d.Pin)
	}
	return fmt.Sprintf("P?%d", d.Pin)
}

func (d PinDescriptor) String() string {
	fields := make([]string, 0, 4)
	for _, v := range []int{d.Mux, d.Pull, d.Drive, d.Value} {
		if v == Unset {
			fields = append(fields, "<default>")
		} else {
			fields = append(fields, fmt.Sprintf("<%d>", v))
		}
	}
	return "port:" + d.PinName() + strings.Join(fields, "")
}

func decodePinDescriptor(raw []byte) PinDescriptor {
	word := func(i int) uint32 {
		return binary.LittleEndian.Uint32(raw[i*wordSize:])
	}
	d := PinDescriptor{
		Pin:   word(1),
		Mux:   setting(word(2), maxMux),
		Pull:  setting(word(3), maxPull),
		Drive: setting(word(4), maxDrive),
		Value: setting(word(5), maxValue),
	}
	switch port := word(0); port {
	case 0:
		d.Bank = BankInvalid
	case BankPower:
		d.Bank = BankPower
	default:
		d.Bank = port - 1
	}
	return d
}

// setting decodes a signed setting word. Defaults (-1) and reserved values become Unset.
func setting(w uint32, maxValid int) int {
	v := int32(w)
	if v < 0 || int(v) > maxValid {
		return Unset
	}
	return int(v)
}
