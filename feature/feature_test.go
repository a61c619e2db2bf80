package feature

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestClassify(t *testing.T) {
	for _, tc := range []struct {
		name    string
		feature string
		index   int
	}{
		{"usbc0", "usb", 0},
		{"usbc2", "usb", 2},
		{"usbc", "usb", NoIndex},
		{"uart3_para", "uart", 3},
		{"uart_para3", "uart", 3},
		{"uart_para", "uart", NoIndex},
		{"ps2_0_para", "ps2", 0},
		{"ps2_para1", "ps2", 1},
		{"power_para", "power", NoIndex},
		{"twi0_para", "twi", 0},
		{"x_para", "x", NoIndex},
		{"gpio_para", "gpio", NoIndex},
		// The trailing digit wins: a second digit before _para stays in the name.
		{"spi1_para2", "spi1", 2},
		// Only one separator is dropped and only in front of the index.
		{"a__1_para", "a_", 1},
		{"lcd0_para", "lcd", 0},
		// Only the bare name is special cased for USB.
		{"usbc_para", "usbc", NoIndex},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Classify(tc.name)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, c.Feature, test.ShouldEqual, tc.feature)
			test.That(t, c.Index, test.ShouldEqual, tc.index)
			test.That(t, c.HasIndex(), test.ShouldEqual, tc.index != NoIndex)
		})
	}
}

func TestClassifyUnparsable(t *testing.T) {
	for _, name := range []string{
		"",
		"abc",
		"usb",
		"usbc00",
		// Five characters never leave room for a feature in front of _para.
		"_para",
		"_para1",
		"uart0",
		"product",
		"target",
		"mmc0_para_x",
		// Nothing is left once the index is removed.
		"1_para",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Classify(name)
			test.That(t, errors.Is(err, ErrUnparsable), test.ShouldBeTrue)
		})
	}
}

func TestClassifyTooLong(t *testing.T) {
	c, err := Classify(strings.Repeat("f", MaxFeatureLen) + "_para")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(c.Feature), test.ShouldEqual, MaxFeatureLen)

	_, err = Classify(strings.Repeat("f", MaxFeatureLen+1) + "_para")
	test.That(t, errors.Is(err, ErrFeatureTooLong), test.ShouldBeTrue)
}

func TestClassificationString(t *testing.T) {
	test.That(t, Classification{Feature: "uart", Index: 3}.String(), test.ShouldEqual, "uart[3]")
	test.That(t, Classification{Feature: "power", Index: NoIndex}.String(), test.ShouldEqual, "power")
}
