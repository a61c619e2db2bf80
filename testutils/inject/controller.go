package inject

import (
	"go.viam.com/bootscript/pio"
)

// Controller is an injectable pio.Controller. Without a Func the call goes to the embedded
// Controller.
type Controller struct {
	pio.Controller
	SetMuxFunc   func(bank, pin uint32, mux int) error
	SetPullFunc  func(bank, pin uint32, pull int) error
	SetDriveFunc func(bank, pin uint32, drive int) error
	SetValueFunc func(bank, pin uint32, value int) error
}

// SetMux calls the injected SetMux or the real version.
func (c *Controller) SetMux(bank, pin uint32, mux int) error {
	if c.SetMuxFunc == nil {
		return c.Controller.SetMux(bank, pin, mux)
	}
	return c.SetMuxFunc(bank, pin, mux)
}

// SetPull calls the injected SetPull or the real version.
func (c *Controller) SetPull(bank, pin uint32, pull int) error {
	if c.SetPullFunc == nil {
		return c.Controller.SetPull(bank, pin, pull)
	}
	return c.SetPullFunc(bank, pin, pull)
}

// SetDrive calls the injected SetDrive or the real version.
func (c *Controller) SetDrive(bank, pin uint32, drive int) error {
	if c.SetDriveFunc == nil {
		return c.Controller.SetDrive(bank, pin, drive)
	}
	return c.SetDriveFunc(bank, pin, drive)
}

// SetValue calls the injected SetValue or the real version.
func (c *Controller) SetValue(bank, pin uint32, value int) error {
	if c.SetValueFunc == nil {
		return c.Controller.SetValue(bank, pin, value)
	}
	return c.SetValueFunc(bank, pin, value)
}
