// Package feature derives the device family and instance number from a script section name.
//
// Section names follow a few conventions that overlap:
//
//	uart_para3   -> uart, 3
//	uart3_para   -> uart, 3
//	ps2_0_para   -> ps2, 0
//	power_para   -> power
//	usbc0        -> usb, 0
//
// The order of the checks in Classify matters and is covered exhaustively by its tests.
package feature

import (
	"fmt"

	"github.com/pkg/errors"
)

// NoIndex is the index of a single-instance feature.
const NoIndex = -1

// MaxFeatureLen is the longest feature name Classify produces.
const MaxFeatureLen = 31

const paraSuffix = "_para"

var (
	// ErrUnparsable is returned for section names that do not describe a feature. Such sections
	// are expected and skipped.
	ErrUnparsable = errors.New("section name does not describe a feature")
	// ErrFeatureTooLong is returned when a feature name exceeds MaxFeatureLen.
	ErrFeatureTooLong = errors.New("feature name too long")
)

// A Classification is the feature described by a section name.
type Classification struct {
	Feature string
	// Index is the instance number, or NoIndex.
	Index int
}

// HasIndex reports whether the feature has an instance number.
func (c Classification) HasIndex() bool {
	return c.Index != NoIndex
}

func (c Classification) String() string {
	if !c.HasIndex() {
		return c.Feature
	}
	return fmt.Sprintf("%s[%d]", c.Feature, c.Index)
}

// Classify parses a section name into a feature and instance index.
func Classify(name string) (Classification, error) {
	l := len(name)
	if l == 0 {
		return Classification{}, ErrUnparsable
	}

	// UARTs and USB controllers carry the index at the very end.
	index := NoIndex
	if isDigit(name[l-1]) {
		index = int(name[l-1] - '0')
		l--
	}

	switch {
	case l == 4 && name[:4] == "usbc":
		// USB controllers have no _para suffix.
		return Classification{Feature: "usb", Index: index}, nil
	case l < len(paraSuffix)+1:
		return Classification{}, ErrUnparsable
	case name[l-len(paraSuffix):l] != paraSuffix:
		return Classification{}, ErrUnparsable
	}

	l -= len(paraSuffix)
	if index == NoIndex && isDigit(name[l-1]) {
		index = int(name[l-1] - '0')
		l--
		// ps2_%d_para
		if l > 1 && name[l-1] == '_' {
			l--
		}
	}
	if l == 0 {
		return Classification{}, ErrUnparsable
	}
	if l > MaxFeatureLen {
		return Classification{}, errors.Wrapf(ErrFeatureTooLong, "%q", name[:l])
	}
	return Classification{Feature: name[:l], Index: index}, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
