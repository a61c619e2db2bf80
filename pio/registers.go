package pio

import (
	"sync"

	"github.com/pkg/errors"
)

// Field widths of the pin controller registers.
const (
	muxMask   = 0x7
	pullMask  = 0x3
	driveMask = 0x3
	valueMask = 0x1
)

// bankRegisters mirrors the register block of one bank.
type bankRegisters struct {
	mux  [4]uint32
	dat  uint32
	drv  [2]uint32
	pull [2]uint32
}

// Registers is an in-memory copy of the pin controller register file. Mux fields are 3 bits wide,
// eight to a register; pull and drive fields are 2 bits wide, sixteen to a register; the data
// register holds one bit per pin.
type Registers struct {
	mu    sync.Mutex
	banks [NumBanks]bankRegisters
}

// NewRegisters returns a register file with every field zero.
func NewRegisters() *Registers {
	return &Registers{}
}

func (r *Registers) bank(bank, pin uint32) (*bankRegisters, error) {
	if bank >= NumBanks || pin >= PinsPerBank {
		return nil, errors.Wrapf(ErrInvalidAddress, "(%d,%d)", bank, pin)
	}
	return &r.banks[bank], nil
}

// nibble returns the register index and bit offset of a 3-bit mux field.
func nibble(pin uint32) (int, uint32) {
	return int(pin >> 3), (pin & 0x7) << 2
}

// crumb returns the register index and bit offset of a 2-bit field.
func crumb(pin uint32) (int, uint32) {
	return int(pin >> 4), (pin & 0xf) << 1
}

func setField(reg *uint32, offset, mask uint32, v int) {
	*reg = *reg&^(mask<<offset) | (uint32(v)&mask)<<offset
}

// SetMux selects the pin function.
func (r *Registers) SetMux(bank, pin uint32, mux int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := r.bank(bank, pin)
	if err != nil {
		return err
	}
	i, off := nibble(pin)
	setField(&b.mux[i], off, muxMask, mux)
	return nil
}

// Mux returns the pin function.
func (r *Registers) Mux(bank, pin uint32) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := r.bank(bank, pin)
	if err != nil {
		return 0, err
	}
	i, off := nibble(pin)
	return int(b.mux[i] >> off & muxMask), nil
}

// SetPull sets the pull resistor.
func (r *Registers) SetPull(bank, pin uint32, pull int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := r.bank(bank, pin)
	if err != nil {
		return err
	}
	i, off := crumb(pin)
	setField(&b.pull[i], off, pullMask, pull)
	return nil
}

// Pull returns the pull resistor setting.
func (r *Registers) Pull(bank, pin uint32) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := r.bank(bank, pin)
	if err != nil {
		return 0, err
	}
	i, off := crumb(pin)
	return int(b.pull[i] >> off & pullMask), nil
}

// SetDrive sets the drive strength.
func (r *Registers) SetDrive(bank, pin uint32, drive int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := r.bank(bank, pin)
	if err != nil {
		return err
	}
	i, off := crumb(pin)
	setField(&b.drv[i], off, driveMask, drive)
	return nil
}

// Drive returns the drive strength.
func (r *Registers) Drive(bank, pin uint32) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := r.bank(bank, pin)
	if err != nil {
		return 0, err
	}
	i, off := crumb(pin)
	return int(b.drv[i] >> off & driveMask), nil
}

// SetValue sets the output level.
func (r *Registers) SetValue(bank, pin uint32, value int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := r.bank(bank, pin)
	if err != nil {
		return err
	}
	setField(&b.dat, pin, valueMask, value)
	return nil
}

// Value returns the output level.
func (r *Registers) Value(bank, pin uint32) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := r.bank(bank, pin)
	if err != nil {
		return 0, err
	}
	return int(b.dat >> pin & valueMask), nil
}

// Config returns all four settings of a pin.
func (r *Registers) Config(bank, pin uint32) (Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := r.bank(bank, pin)
	if err != nil {
		return Config{}, err
	}
	mi, moff := nibble(pin)
	ci, coff := crumb(pin)
	return Config{
		Mux:   int(b.mux[mi] >> moff & muxMask),
		Pull:  int(b.pull[ci] >> coff & pullMask),
		Drive: int(b.drv[ci] >> coff & driveMask),
		Value: int(b.dat >> pin & valueMask),
	}, nil
}
