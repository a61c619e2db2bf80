//go:build linux

package pio

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/bootscript/logging"
)

func TestChardevControllerMissingChip(t *testing.T) {
	_, err := NewChardevController("gpiochip-missing", logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "gpiochip-missing")
}

func TestChardevControllerLoggedSettings(t *testing.T) {
	cc := &ChardevController{logger: logging.NewTestLogger(t), device: "gpiochip-missing", lines: map[Handle]*chardevLine{}}

	test.That(t, cc.SetPull(1, 2, 1), test.ShouldBeNil)
	test.That(t, cc.SetPull(1, 2, 3), test.ShouldNotBeNil)
	test.That(t, cc.SetDrive(1, 2, 3), test.ShouldBeNil)
	test.That(t, cc.SetMux(1, 2, 4), test.ShouldBeNil)

	// Requesting a line needs the chip.
	test.That(t, cc.SetMux(1, 2, 0), test.ShouldNotBeNil)
	test.That(t, cc.Close(), test.ShouldBeNil)
}
