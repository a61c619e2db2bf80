//go:build linux

package pio

import (
	"sync"

	"github.com/mkch/gpio"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/bootscript/logging"
)

const chardevConsumer = "bootscript"

type chardevLine struct {
	line  *gpio.Line
	dir   direction
	level byte
}

// ChardevController applies settings through a Linux GPIO character device, named as under /dev,
// e.g. gpiochip0.
// The sunxi pinctrl driver numbers lines bank*32+pin. Like PeriphController it can only express
// input and output: alternate functions, pulls and drive strength are logged.
//
// Lines stay requested, so they hold their state, until Close is called.
type ChardevController struct {
	mu     sync.Mutex
	logger logging.Logger
	device string
	lines  map[Handle]*chardevLine
}

// NewChardevController checks that device is a GPIO chip and returns a controller for it.
func NewChardevController(device string, logger logging.Logger) (*ChardevController, error) {
	chip, err := gpio.OpenChip(device)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open gpio chip %s", device)
	}
	info, err := chip.Info()
	utils.UncheckedErrorFunc(chip.Close)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read gpio chip %s", device)
	}
	logger.Debugf("using %s (%s, %d lines)", device, info.Label, info.NumLines)
	return &ChardevController{logger: logger, device: device, lines: map[Handle]*chardevLine{}}, nil
}

func (cc *ChardevController) state(bank, pin uint32) *chardevLine {
	h := NewHandle(bank, pin)
	st, ok := cc.lines[h]
	if !ok {
		st = &chardevLine{}
		cc.lines[h] = st
	}
	return st
}

// request (re)opens the line of a pin in the given direction. Callers hold the lock.
func (cc *ChardevController) request(bank, pin uint32, st *chardevLine, dir direction) error {
	if st.line != nil {
		if err := st.line.Close(); err != nil {
			return err
		}
		st.line = nil
	}
	chip, err := gpio.OpenChip(cc.device)
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(chip.Close)

	flags := gpio.Input
	if dir == output {
		flags = gpio.Output
	}
	line, err := chip.OpenLine(bank*PinsPerBank+pin, st.level, flags, chardevConsumer)
	if err != nil {
		return errors.Wrapf(err, "%s", PinName(bank, pin))
	}
	st.line = line
	st.dir = dir
	return nil
}

// SetMux requests the line as input (0) or output (1).
func (cc *ChardevController) SetMux(bank, pin uint32, mux int) error {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	st := cc.state(bank, pin)
	switch mux {
	case muxInput:
		return cc.request(bank, pin, st, input)
	case muxOutput:
		return cc.request(bank, pin, st, output)
	}
	cc.logger.Debugf("%s: function %d left to the kernel", PinName(bank, pin), mux)
	return nil
}

// SetPull is logged only: the character device interface has no bias flags.
func (cc *ChardevController) SetPull(bank, pin uint32, pull int) error {
	if _, ok := pulls[pull]; !ok {
		return errors.Errorf("%s: unsupported pull %d", PinName(bank, pin), pull)
	}
	cc.logger.Debugf("%s: pull %d left unchanged", PinName(bank, pin), pull)
	return nil
}

// SetDrive is logged only.
func (cc *ChardevController) SetDrive(bank, pin uint32, drive int) error {
	cc.logger.Debugf("%s: drive strength %d left unchanged", PinName(bank, pin), drive)
	return nil
}

// SetValue drives the line, requesting it as output unless it is an input.
func (cc *ChardevController) SetValue(bank, pin uint32, value int) error {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	st := cc.state(bank, pin)
	st.level = 0
	if value != 0 {
		st.level = 1
	}
	switch st.dir {
	case input:
		return nil
	case output:
		return st.line.SetValue(st.level)
	case untouched:
	}
	return cc.request(bank, pin, st, output)
}

// Close releases every requested line.
func (cc *ChardevController) Close() error {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	var err error
	for h, st := range cc.lines {
		if st.line != nil {
			err = multierr.Combine(err, st.line.Close())
		}
		delete(cc.lines, h)
	}
	return err
}
