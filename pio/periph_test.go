package pio

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
	"periph.io/x/conn/v3/gpio"

	"go.viam.com/bootscript/logging"
)

type fakePin struct {
	name  string
	calls []string
}

func (p *fakePin) Name() string {
	return p.name
}

func (p *fakePin) In(pull gpio.Pull, edge gpio.Edge) error {
	p.calls = append(p.calls, fmt.Sprintf("in %s", pull))
	return nil
}

func (p *fakePin) Out(l gpio.Level) error {
	p.calls = append(p.calls, fmt.Sprintf("out %s", l))
	return nil
}

func newFakeLookup(names ...string) (PinLookup, map[string]*fakePin) {
	pins := map[string]*fakePin{}
	for _, n := range names {
		pins[n] = &fakePin{name: n}
	}
	return func(name string) Pin {
		p, ok := pins[name]
		if !ok {
			return nil
		}
		return p
	}, pins
}

func TestPeriphController(t *testing.T) {
	lookup, pins := newFakeLookup("PB2", "PB3", "PB4", "PH7")
	pc := NewPeriphController(lookup, logging.NewTestLogger(t))

	t.Run("input with pull", func(t *testing.T) {
		test.That(t, pc.SetMux(1, 2, 0), test.ShouldBeNil)
		test.That(t, pc.SetPull(1, 2, 1), test.ShouldBeNil)
		// Inputs do not drive a level.
		test.That(t, pc.SetValue(1, 2, 1), test.ShouldBeNil)
		test.That(t, pins["PB2"].calls, test.ShouldResemble, []string{
			"in " + gpio.PullNoChange.String(),
			"in " + gpio.PullUp.String(),
		})
	})

	t.Run("output", func(t *testing.T) {
		test.That(t, pc.SetMux(1, 3, 1), test.ShouldBeNil)
		test.That(t, pc.SetPull(1, 3, 2), test.ShouldBeNil)
		test.That(t, pc.SetDrive(1, 3, 3), test.ShouldBeNil)
		test.That(t, pc.SetValue(1, 3, 1), test.ShouldBeNil)
		test.That(t, pins["PB3"].calls, test.ShouldResemble, []string{
			"out " + gpio.Low.String(),
			"out " + gpio.High.String(),
		})
	})

	t.Run("value without mux", func(t *testing.T) {
		test.That(t, pc.SetValue(1, 4, 0), test.ShouldBeNil)
		test.That(t, pins["PB4"].calls, test.ShouldResemble, []string{"out " + gpio.Low.String()})
	})

	t.Run("alternate function", func(t *testing.T) {
		test.That(t, pc.SetMux(7, 7, 3), test.ShouldBeNil)
		test.That(t, pins["PH7"].calls, test.ShouldBeEmpty)
	})

	t.Run("errors", func(t *testing.T) {
		err := pc.SetMux(0, 0, 1)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, `"PA0"`)
		test.That(t, pc.SetPull(1, 2, 7), test.ShouldNotBeNil)
	})
}

func TestAllocatorWithPeriph(t *testing.T) {
	lookup, pins := newFakeLookup("PI20")
	a := NewAllocator(NewPeriphController(lookup, logging.NewTestLogger(t)), nil, logging.NewTestLogger(t))

	_, err := a.Request("ps2_0", 8, 20, Config{Mux: 1, Pull: Unset, Drive: 3, Value: 1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pins["PI20"].calls, test.ShouldResemble, []string{
		"out " + gpio.Low.String(),
		"out " + gpio.High.String(),
	})

	// Pins unknown to the GPIO registry cannot be configured and stay free.
	_, err = a.Request("ps2_0", 8, 21, Config{Mux: 1, Pull: Unset, Drive: Unset, Value: Unset})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrBusy), test.ShouldBeFalse)
	test.That(t, a.Held(8, 21), test.ShouldBeFalse)
}
