// Package inject provides fakes of the collaborator interfaces whose behavior can be overridden
// per test through Func fields.
package inject

import (
	"context"

	"go.viam.com/bootscript/device"
)

// Registrar is an injectable device.Registrar. Without RegisterFunc it delegates to the embedded
// Registrar.
type Registrar struct {
	device.Registrar
	RegisterFunc func(ctx context.Context, dev *device.Device) error
}

// Register calls the injected Register or the real version.
func (r *Registrar) Register(ctx context.Context, dev *device.Device) error {
	if r.RegisterFunc == nil {
		return r.Registrar.Register(ctx, dev)
	}
	return r.RegisterFunc(ctx, dev)
}
