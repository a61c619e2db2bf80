package device

import (
	"context"
	"fmt"
	"slices"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/bootscript/feature"
	"go.viam.com/bootscript/logging"
	"go.viam.com/bootscript/pio"
	"go.viam.com/bootscript/script"
)

// State is the progress of one feature instance through the Materializer.
type State int

const (
	// Classified means the section names a used feature.
	Classified State = iota
	// PinsRequested means every pin of the section is reserved.
	PinsRequested
	// Registered means the device was accepted by the Registrar.
	Registered
	// RolledBack means the device failed and its pins were released.
	RolledBack
)

func (s State) String() string {
	switch s {
	case Classified:
		return "classified"
	case PinsRequested:
		return "pins requested"
	case Registered:
		return "registered"
	case RolledBack:
		return "rolled back"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// A Result is the outcome of one used section.
type Result struct {
	Section        string
	Classification feature.Classification
	State          State
	// Device is set once registered.
	Device *Device
	Err    error
}

// A Skip is a section that did not lead to a device, with the reason.
type Skip struct {
	Section string
	Reason  string
}

// A Report summarizes a scan.
type Report struct {
	Results []Result
	Skipped []Skip
}

// Devices returns the registered devices.
func (r *Report) Devices() []*Device {
	return lo.FilterMap(r.Results, func(res Result, _ int) (*Device, bool) {
		return res.Device, res.State == Registered
	})
}

// Failed returns the results of devices that were rolled back.
func (r *Report) Failed() []Result {
	return lo.Filter(r.Results, func(res Result, _ int) bool {
		return res.State != Registered
	})
}

// A Materializer creates devices from the sections of a published script.
type Materializer struct {
	logger       logging.Logger
	store        *script.Store
	alloc        *pio.Allocator
	registrar    Registrar
	constructors ConstructorTable
	platform     Platform
}

// NewMaterializer returns a materializer. A nil constructor table is replaced by
// DefaultConstructors with the default prefix.
func NewMaterializer(
	store *script.Store,
	alloc *pio.Allocator,
	registrar Registrar,
	constructors ConstructorTable,
	platform Platform,
	logger logging.Logger,
) *Materializer {
	if constructors == nil {
		constructors = DefaultConstructors(DefaultDriverPrefix)
	}
	return &Materializer{
		logger:       logger,
		store:        store,
		alloc:        alloc,
		registrar:    registrar,
		constructors: constructors,
		platform:     platform,
	}
}

// Materialize reserves the pins of sec, builds the device of c and registers it. On any failure
// the pins reserved so far are released and no device exists.
func (m *Materializer) Materialize(ctx context.Context, sec script.Section, c feature.Classification) (*Device, error) {
	dev, _, err := m.materialize(ctx, sec, c)
	return dev, err
}

func (m *Materializer) materialize(
	ctx context.Context,
	sec script.Section,
	c feature.Classification,
) (*Device, State, error) {
	var pins []pio.Handle
	if n := sec.CountPinDescriptors(); n > 0 {
		pins = make([]pio.Handle, 0, n)
		for d := range sec.PinDescriptors() {
			h, err := m.alloc.Request(sec.Name(), d.Bank, d.Pin, pinConfig(d))
			if err != nil {
				err = &PinRequestError{Section: sec.Name(), Err: err}
				return nil, RolledBack, multierr.Append(err, m.rollback(pins))
			}
			pins = append(pins, h)
		}
	}

	dev := &Device{
		ID:      c.Index,
		Section: sec.Name(),
		Feature: c.Feature,
		Pins:    pins,
	}
	ctor, ok := m.constructors.Lookup(c.Feature)
	if !ok {
		err := &RegistrationError{Section: sec.Name(), Err: errors.Errorf("no constructor for %q", c.Feature)}
		return nil, RolledBack, multierr.Append(err, m.rollback(pins))
	}
	if err := ctor.Build(m.platform, sec, dev); err != nil {
		err = &RegistrationError{Section: sec.Name(), Device: dev.FullName(), Err: err}
		return nil, RolledBack, multierr.Append(err, m.rollback(pins))
	}
	if err := m.registrar.Register(ctx, dev); err != nil {
		err = &RegistrationError{Section: sec.Name(), Device: dev.FullName(), Err: err}
		return nil, RolledBack, multierr.Append(err, m.rollback(pins))
	}
	return dev, Registered, nil
}

// rollback releases the pins taken so far for a device that could not be materialized.
func (m *Materializer) rollback(pins []pio.Handle) error {
	_, err := m.release(pins, "rollback")
	return err
}

// release frees pins one by one, newest first. Handles are released individually so that PA0,
// whose handle is HandleNone, is not skipped the way ReleaseAll skips placeholders.
func (m *Materializer) release(pins []pio.Handle, op string) (pio.ReleaseStatus, error) {
	status := pio.Released
	var errs error
	for _, h := range slices.Backward(pins) {
		s, err := m.alloc.Release(h)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if s == pio.NotHeld {
			status = pio.NotHeld
			m.logger.Warnw(op+" found pin already free", "pin", h.String())
		}
	}
	return status, errs
}

// ReleasePins gives back the pins of a device that is being removed, PA0 included. The status
// ranks like ReleaseAll: NotHeld if any pin was already free. A device without pins fails with
// pio.ErrNoPins.
func (m *Materializer) ReleasePins(dev *Device) (pio.ReleaseStatus, error) {
	if len(dev.Pins) == 0 {
		return pio.NotHeld, pio.ErrNoPins
	}
	return m.release(dev.Pins, "release")
}

// Scan materializes every used feature of the published script. Sections that do not name a
// feature or whose feature is unused are skipped. A failed device is logged and does not stop
// the scan; the errors of all failed devices are returned together with the report. A feature
// name too long to be handled aborts the scan, as does ctx being done; devices registered until
// then stay registered.
func (m *Materializer) Scan(ctx context.Context) (*Report, error) {
	if !m.store.Published() {
		return nil, errors.Wrap(script.ErrBlobInvalid, "no script published")
	}
	m.logger.Debugf("scanning %d sections", m.store.SectionCount())

	report := &Report{}
	var errs error
	for sec := range m.store.Sections() {
		if err := ctx.Err(); err != nil {
			return report, multierr.Append(errs, err)
		}

		c, err := feature.Classify(sec.Name())
		if errors.Is(err, feature.ErrFeatureTooLong) {
			m.logger.Errorw("aborting scan", "section", sec.Name(), "error", err)
			return report, multierr.Append(errs, err)
		}
		if err != nil {
			m.logger.Debugf("[%s] SKIP", sec.Name())
			report.Skipped = append(report.Skipped, Skip{Section: sec.Name(), Reason: "not a feature"})
			continue
		}
		if !IsUsed(sec, c) {
			m.logger.Debugf("[%s] -> %s unused", sec.Name(), c)
			report.Skipped = append(report.Skipped, Skip{Section: sec.Name(), Reason: "unused"})
			continue
		}
		m.logger.Debugf("[%s] -> %s", sec.Name(), c)

		dev, state, err := m.materialize(ctx, sec, c)
		report.Results = append(report.Results, Result{
			Section:        sec.Name(),
			Classification: c,
			State:          state,
			Device:         dev,
			Err:            err,
		})
		if err != nil {
			m.logger.Errorw("device failed", "section", sec.Name(), "error", err)
			errs = multierr.Append(errs, err)
			continue
		}
		m.logger.Infow("device registered",
			"device", dev.FullName(),
			"pins", lo.Map(dev.Pins, func(h pio.Handle, _ int) string { return h.String() }),
		)
	}
	return report, errs
}

func pinConfig(d script.PinDescriptor) pio.Config {
	return pio.Config{Mux: d.Mux, Pull: d.Pull, Drive: d.Drive, Value: d.Value}
}
