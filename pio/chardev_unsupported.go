//go:build !linux

package pio

import (
	"github.com/pkg/errors"

	"go.viam.com/bootscript/logging"
)

// ChardevController is only available on Linux.
type ChardevController struct {
	Controller
}

// NewChardevController always fails outside of Linux.
func NewChardevController(device string, logger logging.Logger) (*ChardevController, error) {
	return nil, errors.Errorf("gpio character devices such as %s are only supported on linux", device)
}

// Close does nothing.
func (cc *ChardevController) Close() error {
	return nil
}
