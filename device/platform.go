package device

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// A Platform describes the SoC family a scan runs on.
type Platform struct {
	Name   string
	ChipID uint32
	// UARTIRQs holds the interrupt line of every UART, indexed by port.
	UARTIRQs []int
}

// UARTCount returns the number of UARTs of the SoC.
func (p Platform) UARTCount() int {
	return len(p.UARTIRQs)
}

var (
	// Sun4i is the A10.
	Sun4i = Platform{Name: "sun4i", ChipID: 1623, UARTIRQs: []int{1, 2, 3, 4, 17, 18, 19, 20}}
	// Sun5i is the A10s and A13.
	Sun5i = Platform{Name: "sun5i", ChipID: 1625, UARTIRQs: []int{1, 2, 3, 4}}
	// Sun6i is the A31. Interrupts are numbered from the first shared GIC line.
	Sun6i = Platform{Name: "sun6i", ChipID: 1633, UARTIRQs: []int{32, 33, 34, 35, 36, 37}}
	// Sun7i is the A20. Interrupts are numbered from the first shared GIC line.
	Sun7i = Platform{Name: "sun7i", ChipID: 1651, UARTIRQs: []int{33, 34, 35, 36, 49, 50, 51, 52}}
)

// Platforms lists the known platforms.
var Platforms = []Platform{Sun4i, Sun5i, Sun6i, Sun7i}

// PlatformByName returns the platform with the given name, ignoring case.
func PlatformByName(name string) (Platform, error) {
	p, ok := lo.Find(Platforms, func(p Platform) bool {
		return strings.EqualFold(p.Name, name)
	})
	if !ok {
		return Platform{}, errors.Errorf("unknown platform %q, expected one of %v", name, PlatformNames())
	}
	return p, nil
}

// PlatformByChipID returns the platform of a chip id as read from the system controller.
func PlatformByChipID(id uint32) (Platform, bool) {
	return lo.Find(Platforms, func(p Platform) bool {
		return p.ChipID == id
	})
}

// PlatformNames returns the names of the known platforms.
func PlatformNames() []string {
	return lo.Map(Platforms, func(p Platform, _ int) string {
		return p.Name
	})
}
