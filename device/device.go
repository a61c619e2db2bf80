// Package device turns the enabled features of a boot script into registered platform devices.
//
// For every section describing a used feature the Materializer reserves the pins listed in the
// section, builds a Device with the first matching Constructor and hands it to a Registrar. A
// device that cannot be completed gives back every pin it took.
package device

import (
	"fmt"

	"github.com/pkg/errors"

	"go.viam.com/bootscript/pio"
)

// NoID is the ID of a single-instance device.
const NoID = -1

var (
	// ErrPinRequest matches errors of devices that could not reserve one of their pins.
	ErrPinRequest = errors.New("pin request failed")
	// ErrRegistration matches errors of devices that could not be constructed or registered.
	ErrRegistration = errors.New("device registration failed")
)

// A Device is a platform device built from one script section.
type Device struct {
	// Name is the driver name, e.g. "sunxi-uart".
	Name string
	// ID is the instance number or NoID.
	ID      int
	Section string
	Feature string

	// Pins are the reserved pins in the order of the section. The device owns them once registered.
	Pins      []pio.Handle
	Resources []MemRange
	IRQs      []int

	// PlatformData is driver specific, e.g. *UARTPort.
	PlatformData any
}

// FullName returns "name.id", or the name for single-instance devices.
func (d *Device) FullName() string {
	if d.ID == NoID {
		return d.Name
	}
	return fmt.Sprintf("%s.%d", d.Name, d.ID)
}

// PinList returns the pins terminated by pio.HandleEnd, or nil if the device has no pins.
func (d *Device) PinList() []pio.Handle {
	if len(d.Pins) == 0 {
		return nil
	}
	return append(append(make([]pio.Handle, 0, len(d.Pins)+1), d.Pins...), pio.HandleEnd)
}

// A MemRange is a memory mapped register window. End is inclusive.
type MemRange struct {
	Start uint64
	End   uint64
}

// Size returns the length of the window in bytes.
func (r MemRange) Size() uint64 {
	return r.End - r.Start + 1
}

func (r MemRange) String() string {
	return fmt.Sprintf("[mem 0x%08x-0x%08x]", r.Start, r.End)
}

// PinRequestError is returned when a device could not reserve one of its pins.
type PinRequestError struct {
	Section string
	Err     error
}

func (e *PinRequestError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Section, ErrPinRequest, e.Err)
}

func (e *PinRequestError) Unwrap() error {
	return e.Err
}

// Is matches ErrPinRequest.
func (e *PinRequestError) Is(target error) bool {
	return target == ErrPinRequest
}

// RegistrationError is returned when a device could not be constructed or registered.
type RegistrationError struct {
	Section string
	Device  string
	Err     error
}

func (e *RegistrationError) Error() string {
	if e.Device == "" {
		return fmt.Sprintf("[%s] %s: %v", e.Section, ErrRegistration, e.Err)
	}
	return fmt.Sprintf("[%s] %s %q: %v", e.Section, ErrRegistration, e.Device, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// Is matches ErrRegistration.
func (e *RegistrationError) Is(target error) bool {
	return target == ErrRegistration
}
