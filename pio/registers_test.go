package pio

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestRegistersFields(t *testing.T) {
	regs := NewRegisters()
	for pin := uint32(0); pin < PinsPerBank; pin++ {
		test.That(t, regs.SetMux(4, pin, int(pin%8)), test.ShouldBeNil)
		test.That(t, regs.SetPull(4, pin, int(pin%3)), test.ShouldBeNil)
		test.That(t, regs.SetDrive(4, pin, int(pin%4)), test.ShouldBeNil)
		test.That(t, regs.SetValue(4, pin, int(pin%2)), test.ShouldBeNil)
	}
	for pin := uint32(0); pin < PinsPerBank; pin++ {
		mux, err := regs.Mux(4, pin)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, mux, test.ShouldEqual, int(pin%8))
		pull, err := regs.Pull(4, pin)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, pull, test.ShouldEqual, int(pin%3))
		drive, err := regs.Drive(4, pin)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, drive, test.ShouldEqual, int(pin%4))
		value, err := regs.Value(4, pin)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, value, test.ShouldEqual, int(pin%2))
	}

	// Other banks are separate registers.
	cfg, err := regs.Config(5, 7)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg, test.ShouldResemble, Config{})
}

func TestRegistersLayout(t *testing.T) {
	regs := NewRegisters()
	test.That(t, regs.SetMux(2, 10, 5), test.ShouldBeNil)
	test.That(t, regs.SetPull(2, 17, 2), test.ShouldBeNil)
	test.That(t, regs.SetDrive(2, 3, 3), test.ShouldBeNil)
	test.That(t, regs.SetValue(2, 31, 1), test.ShouldBeNil)

	b := regs.banks[2]
	test.That(t, b.mux[1], test.ShouldEqual, uint32(5<<8))
	test.That(t, b.pull[1], test.ShouldEqual, uint32(2<<2))
	test.That(t, b.drv[0], test.ShouldEqual, uint32(3<<6))
	test.That(t, b.dat, test.ShouldEqual, uint32(1<<31))

	// Values wider than the field are masked.
	test.That(t, regs.SetMux(2, 10, 0xf), test.ShouldBeNil)
	test.That(t, regs.banks[2].mux[1], test.ShouldEqual, uint32(7<<8))
	test.That(t, regs.SetValue(2, 31, 0), test.ShouldBeNil)
	test.That(t, regs.banks[2].dat, test.ShouldEqual, uint32(0))
}

func TestRegistersInvalidAddress(t *testing.T) {
	regs := NewRegisters()
	test.That(t, errors.Is(regs.SetMux(NumBanks, 0, 1), ErrInvalidAddress), test.ShouldBeTrue)
	_, err := regs.Config(0, PinsPerBank)
	test.That(t, errors.Is(err, ErrInvalidAddress), test.ShouldBeTrue)
}

func TestAXPGPIO(t *testing.T) {
	axp := NewAXPGPIO(AXP209Pins)
	test.That(t, axp.SetIO(2, 1), test.ShouldBeNil)
	test.That(t, axp.SetValue(2, 1), test.ShouldBeNil)
	mode, value, err := axp.State(2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mode, test.ShouldEqual, 1)
	test.That(t, value, test.ShouldEqual, 1)

	test.That(t, axp.SetIO(2, 3), test.ShouldNotBeNil)
	test.That(t, errors.Is(axp.SetValue(AXP209Pins, 0), ErrInvalidAddress), test.ShouldBeTrue)
}
