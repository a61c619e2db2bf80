package pio

import (
	"sync"

	"github.com/pkg/errors"
)

// AXP209Pins is the number of GPIOs of the AXP209 power management chip.
const AXP209Pins = 4

// AXPGPIO is an in-memory model of the GPIO block of a power management chip.
type AXPGPIO struct {
	mu     sync.Mutex
	modes  []int
	values []int
}

// NewAXPGPIO returns a chip with n GPIOs, all inputs driving low.
func NewAXPGPIO(n int) *AXPGPIO {
	return &AXPGPIO{modes: make([]int, n), values: make([]int, n)}
}

func (a *AXPGPIO) check(pin uint32, v int) error {
	if int(pin) >= len(a.modes) {
		return errors.Wrapf(ErrInvalidAddress, "power%d", pin)
	}
	if v < 0 || v > 1 {
		return errors.Errorf("power%d: unsupported setting %d", pin, v)
	}
	return nil
}

// SetIO sets the io mode of a pin.
func (a *AXPGPIO) SetIO(pin uint32, mode int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.check(pin, mode); err != nil {
		return err
	}
	a.modes[pin] = mode
	return nil
}

// SetValue sets the output value of a pin.
func (a *AXPGPIO) SetValue(pin uint32, value int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.check(pin, value); err != nil {
		return err
	}
	a.values[pin] = value
	return nil
}

// State returns the io mode and value of a pin.
func (a *AXPGPIO) State(pin uint32) (mode, value int, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.check(pin, 0); err != nil {
		return 0, 0, err
	}
	return a.modes[pin], a.values[pin], nil
}
