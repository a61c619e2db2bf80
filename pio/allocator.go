package pio

import (
	"math/bits"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"go.viam.com/bootscript/logging"
)

// An Allocator hands out exclusive ownership of pins. Ownership is kept in one bit per pin and
// every transition is a single compare-and-swap, so requests and releases are safe to issue from
// any goroutine.
type Allocator struct {
	logger logging.Logger
	ctrl   Controller
	axp    AXPController

	requested [NumBanks]atomic.Uint32
	power     atomic.Uint32
}

// NewAllocator returns an allocator applying settings through ctrl. A nil ctrl is replaced by an
// in-memory register file. A nil axp means the platform has no power management GPIOs and
// BankAXP addresses are invalid.
func NewAllocator(ctrl Controller, axp AXPController, logger logging.Logger) *Allocator {
	if ctrl == nil {
		ctrl = NewRegisters()
	}
	return &Allocator{logger: logger, ctrl: ctrl, axp: axp}
}

var (
	globalMu        sync.RWMutex
	globalAllocator = NewAllocator(nil, nil, logging.Global().Sublogger("pio"))
)

// ReplaceGlobal replaces the process-wide allocator. It is meant to be called once at start-up,
// before any pin is requested.
func ReplaceGlobal(a *Allocator) {
	globalMu.Lock()
	globalAllocator = a
	globalMu.Unlock()
}

// Global returns the process-wide allocator shared by the scan and drivers requesting pins later.
func Global() *Allocator {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalAllocator
}

// word returns the ownership word holding (bank, pin) and whether it belongs to the AXP domain.
func (a *Allocator) word(bank, pin uint32) (*atomic.Uint32, bool, error) {
	switch {
	case pin >= PinsPerBank:
	case bank < NumBanks:
		return &a.requested[bank], false, nil
	case bank == BankAXP && a.axp != nil:
		return &a.power, true, nil
	}
	return nil, false, errors.Wrapf(ErrInvalidAddress, "(%d,%d)", bank, pin)
}

func testAndSet(w *atomic.Uint32, pin uint32) bool {
	mask := uint32(1) << pin
	for {
		old := w.Load()
		if old&mask != 0 {
			return false
		}
		if w.CompareAndSwap(old, old|mask) {
			return true
		}
	}
}

func testAndClear(w *atomic.Uint32, pin uint32) bool {
	mask := uint32(1) << pin
	for {
		old := w.Load()
		if old&mask == 0 {
			return false
		}
		if w.CompareAndSwap(old, old&^mask) {
			return true
		}
	}
}

// Request reserves a pin for owner and applies the settings of cfg that are not Unset. A pin
// that is already held fails with ErrBusy without touching its settings. If a setting cannot be
// applied the pin is freed again and the error returned.
func (a *Allocator) Request(owner string, bank, pin uint32, cfg Config) (Handle, error) {
	w, isAXP, err := a.word(bank, pin)
	if err != nil {
		a.logger.Errorf("%s: invalid PIO (%d,%d)", owner, bank, pin)
		return HandleNone, errors.Wrap(err, owner)
	}
	name := PinName(bank, pin)
	if !testAndSet(w, pin) {
		a.logger.Errorf("%s: %s already requested", owner, name)
		return HandleNone, errors.Wrapf(ErrBusy, "%s: %s", owner, name)
	}

	if isAXP {
		err = a.applyAXP(pin, cfg)
	} else {
		err = a.apply(bank, pin, cfg)
	}
	if err != nil {
		testAndClear(w, pin)
		return HandleNone, errors.Wrapf(err, "%s: %s", owner, name)
	}
	a.logger.Debugf("%s: %s%s requested", owner, name, cfg)
	return NewHandle(bank, pin), nil
}

func (a *Allocator) apply(bank, pin uint32, cfg Config) error {
	if cfg.Mux >= 0 {
		if err := a.ctrl.SetMux(bank, pin, cfg.Mux); err != nil {
			return err
		}
	}
	if cfg.Pull >= 0 {
		if err := a.ctrl.SetPull(bank, pin, cfg.Pull); err != nil {
			return err
		}
	}
	if cfg.Drive >= 0 {
		if err := a.ctrl.SetDrive(bank, pin, cfg.Drive); err != nil {
			return err
		}
	}
	if cfg.Value >= 0 {
		return a.ctrl.SetValue(bank, pin, cfg.Value)
	}
	return nil
}

// applyAXP applies the mux as io mode and the value. The chip has no pull or drive settings.
func (a *Allocator) applyAXP(pin uint32, cfg Config) error {
	if cfg.Mux >= 0 {
		if err := a.axp.SetIO(pin, cfg.Mux); err != nil {
			return err
		}
	}
	if cfg.Value >= 0 {
		return a.axp.SetValue(pin, cfg.Value)
	}
	return nil
}

// Release frees a held pin. Releasing a free pin reports NotHeld.
func (a *Allocator) Release(h Handle) (ReleaseStatus, error) {
	bank, pin := h.Bank(), h.Pin()
	w, _, err := a.word(bank, pin)
	if err != nil {
		a.logger.Errorf("release: invalid PIO (%d,%d)", bank, pin)
		return NotHeld, err
	}
	if !testAndClear(w, pin) {
		a.logger.Warnf("release: %s wasn't requested", h)
		return NotHeld, nil
	}
	a.logger.Debugf("release: %s", h)
	return Released, nil
}

// ReleaseAll releases every handle of hs up to HandleEnd, skipping HandleNone. Every handle is
// attempted; the returned status is NotHeld if any pin was free and the errors of all failed
// releases are combined. A nil list fails with ErrNoPins.
func (a *Allocator) ReleaseAll(hs []Handle) (ReleaseStatus, error) {
	if hs == nil {
		return NotHeld, ErrNoPins
	}
	status := Released
	var errs error
	for _, h := range hs {
		if h == HandleEnd {
			break
		}
		if h == HandleNone {
			continue
		}
		s, err := a.Release(h)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if s == NotHeld {
			status = NotHeld
		}
	}
	return status, errs
}

// Held reports whether (bank, pin) is currently reserved. Addresses outside of every domain are
// never held.
func (a *Allocator) Held(bank, pin uint32) bool {
	w, _, err := a.word(bank, pin)
	if err != nil {
		return false
	}
	return w.Load()&(uint32(1)<<pin) != 0
}

// HeldCount returns the number of reserved pins across both domains.
func (a *Allocator) HeldCount() int {
	n := bits.OnesCount32(a.power.Load())
	for i := range a.requested {
		n += bits.OnesCount32(a.requested[i].Load())
	}
	return n
}
