package pio

import (
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"go.viam.com/bootscript/logging"
)

// Pin is the part of gpio.PinIO used to configure a pin.
type Pin interface {
	Name() string
	In(pull gpio.Pull, edge gpio.Edge) error
	Out(l gpio.Level) error
}

// PinLookup finds a pin by its conventional name, e.g. "PB22".
type PinLookup func(name string) Pin

// RegistryLookup finds pins in the periph.io pin registry. host.Init must have been called.
func RegistryLookup(name string) Pin {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil
	}
	return p
}

// Mux values understood by PeriphController. Other functions belong to the kernel pinctrl driver.
const (
	muxInput  = 0
	muxOutput = 1
)

var pulls = map[int]gpio.Pull{
	0: gpio.Float,
	1: gpio.PullUp,
	2: gpio.PullDown,
}

type direction int

const (
	untouched direction = iota
	input
	output
)

type pinState struct {
	dir   direction
	pull  gpio.Pull
	level gpio.Level
}

// PeriphController applies settings through periph.io GPIO pins. Only the functions a GPIO line
// can express are applied: mux 0 and 1 select input and output, pull and value map to gpio.Pull
// and gpio.Level. Alternate functions and drive strength are logged and left as they are.
type PeriphController struct {
	mu     sync.Mutex
	logger logging.Logger
	lookup PinLookup
	states map[Handle]*pinState
}

// NewPeriphController returns a controller resolving pins with lookup, RegistryLookup if nil.
func NewPeriphController(lookup PinLookup, logger logging.Logger) *PeriphController {
	if lookup == nil {
		lookup = RegistryLookup
	}
	return &PeriphController{logger: logger, lookup: lookup, states: map[Handle]*pinState{}}
}

func (pc *PeriphController) pin(bank, pin uint32) (Pin, *pinState, error) {
	h := NewHandle(bank, pin)
	p := pc.lookup(h.String())
	if p == nil {
		return nil, nil, errors.Errorf("no global pin found for %q", h.String())
	}
	st, ok := pc.states[h]
	if !ok {
		st = &pinState{pull: gpio.PullNoChange, level: gpio.Low}
		pc.states[h] = st
	}
	return p, st, nil
}

// SetMux switches the pin between input and output.
func (pc *PeriphController) SetMux(bank, pin uint32, mux int) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	p, st, err := pc.pin(bank, pin)
	if err != nil {
		return err
	}
	switch mux {
	case muxInput:
		st.dir = input
		return p.In(st.pull, gpio.NoEdge)
	case muxOutput:
		st.dir = output
		return p.Out(st.level)
	}
	pc.logger.Debugf("%s: function %d left to the kernel", p.Name(), mux)
	return nil
}

// SetPull sets the pull resistor of an input. For other pins it is remembered until the pin is
// switched to input.
func (pc *PeriphController) SetPull(bank, pin uint32, pull int) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	p, st, err := pc.pin(bank, pin)
	if err != nil {
		return err
	}
	gp, ok := pulls[pull]
	if !ok {
		return errors.Errorf("%s: unsupported pull %d", p.Name(), pull)
	}
	st.pull = gp
	if st.dir != input {
		return nil
	}
	return p.In(gp, gpio.NoEdge)
}

// SetDrive is not supported by periph.io GPIO lines and only logged.
func (pc *PeriphController) SetDrive(bank, pin uint32, drive int) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	p, _, err := pc.pin(bank, pin)
	if err != nil {
		return err
	}
	pc.logger.Debugf("%s: drive strength %d left unchanged", p.Name(), drive)
	return nil
}

// SetValue drives the pin, making it an output unless it was switched to input. Inputs only
// remember the level.
func (pc *PeriphController) SetValue(bank, pin uint32, value int) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	p, st, err := pc.pin(bank, pin)
	if err != nil {
		return err
	}
	st.level = gpio.Low
	if value != 0 {
		st.level = gpio.High
	}
	if st.dir == input {
		return nil
	}
	st.dir = output
	return p.Out(st.level)
}
