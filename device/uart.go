package device

import (
	"github.com/pkg/errors"

	"go.viam.com/bootscript/script"
)

// UART register windows.
const (
	UARTBase   = 0x01C28000
	UARTStride = 0x400
	UARTSize   = 0x400
)

// UARTPort is the platform data of a UART device, as consumed by an 8250 driver.
type UARTPort struct {
	Line     int
	MapBase  uint64
	IRQ      int
	FIFOSize int
	RegShift int
	IOType   string
}

// UARTBuilder validates the UART index against the platform and derives the register window and
// interrupt from it.
func UARTBuilder(prefix string) BuildFunc {
	return func(plat Platform, _ script.Section, dev *Device) error {
		dev.Name = prefix + "-" + dev.Feature
		idx := dev.ID
		if idx < 0 || idx >= plat.UARTCount() {
			return errors.Errorf("%s has no uart%d (%d uarts)", plat.Name, idx, plat.UARTCount())
		}
		start := uint64(UARTBase + idx*UARTStride)
		irq := plat.UARTIRQs[idx]
		dev.Resources = []MemRange{{Start: start, End: start + UARTSize - 1}}
		dev.IRQs = []int{irq}
		dev.PlatformData = &UARTPort{
			Line:     idx,
			MapBase:  start,
			IRQ:      irq,
			FIFOSize: 64,
			RegShift: 2,
			IOType:   "mem32",
		}
		return nil
	}
}
