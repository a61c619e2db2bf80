package device

import (
	"go.viam.com/bootscript/script"
)

// DefaultDriverPrefix is the prefix of generated device names.
const DefaultDriverPrefix = "sunxi"

// A BuildFunc completes a device whose pins are already reserved. dev arrives with its feature,
// ID, section and pins filled in; the function sets the name and any resources.
type BuildFunc func(plat Platform, sec script.Section, dev *Device) error

// A Constructor builds the devices of the features its Matcher accepts.
type Constructor struct {
	Name    string
	Matcher Matcher
	Build   BuildFunc
}

// A ConstructorTable is searched in order; the first matching entry builds the device.
type ConstructorTable []Constructor

// Lookup returns the first constructor matching feature.
func (t ConstructorTable) Lookup(feature string) (Constructor, bool) {
	for _, c := range t {
		if c.Matcher.IsMatch(feature) {
			return c, true
		}
	}
	return Constructor{}, false
}

// DefaultConstructors returns the UART constructor followed by the generic fallback. Devices are
// named "<prefix>-<feature>".
func DefaultConstructors(prefix string) ConstructorTable {
	if prefix == "" {
		prefix = DefaultDriverPrefix
	}
	return ConstructorTable{
		{Name: "uart", Matcher: FeatureMatcher{"uart"}, Build: UARTBuilder(prefix)},
		{Name: "generic", Matcher: AnyMatcher{}, Build: GenericBuilder(prefix)},
	}
}

// GenericBuilder names the device and adds nothing beyond its pins.
func GenericBuilder(prefix string) BuildFunc {
	return func(_ Platform, _ script.Section, dev *Device) error {
		dev.Name = prefix + "-" + dev.Feature
		return nil
	}
}
