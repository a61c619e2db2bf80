package device

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// A Registrar accepts finished devices. Any error means the device does not exist.
type Registrar interface {
	Register(ctx context.Context, dev *Device) error
}

// Registry is an in-memory Registrar. Devices are keyed by their full name.
type Registry struct {
	mu      sync.Mutex
	devices []*Device
	byName  map[string]*Device
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: map[string]*Device{}}
}

// Register adds dev. A second device with the same full name is rejected.
func (r *Registry) Register(ctx context.Context, dev *Device) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	name := dev.FullName()
	if _, ok := r.byName[name]; ok {
		return errors.Errorf("device %q already registered", name)
	}
	r.byName[name] = dev
	r.devices = append(r.devices, dev)
	return nil
}

// Unregister removes the device with the given full name and returns it.
func (r *Registry) Unregister(name string) (*Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	delete(r.byName, name)
	for i, d := range r.devices {
		if d == dev {
			r.devices = append(r.devices[:i], r.devices[i+1:]...)
			break
		}
	}
	return dev, true
}

// Lookup returns the device with the given full name.
func (r *Registry) Lookup(name string) (*Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, ok := r.byName[name]
	return dev, ok
}

// Devices returns the registered devices in registration order.
func (r *Registry) Devices() []*Device {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Device(nil), r.devices...)
}
