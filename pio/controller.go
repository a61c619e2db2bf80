package pio

// A Controller applies the electrical settings of pins in the primary banks. Values are always
// non-negative; the Allocator never forwards Unset.
type Controller interface {
	SetMux(bank, pin uint32, mux int) error
	SetPull(bank, pin uint32, pull int) error
	SetDrive(bank, pin uint32, drive int) error
	SetValue(bank, pin uint32, value int) error
}

// An AXPController drives the GPIOs of the power management chip. They only have an io mode
// (0 input, 1 output) and an output value.
type AXPController interface {
	SetIO(pin uint32, mode int) error
	SetValue(pin uint32, value int) error
}
