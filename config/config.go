// Package config holds the settings of a scan: which script to read, which platform it runs on
// and how pins reach the hardware.
package config

import (
	"bytes"
	"encoding/json"
	"slices"
	"sort"

	"github.com/a8m/envsubst"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/bootscript/device"
	"go.viam.com/bootscript/logging"
	"go.viam.com/bootscript/pio"
)

// Backends that apply pin settings.
const (
	// BackendRegisters keeps pin settings in an in-memory register file.
	BackendRegisters = "registers"
	// BackendPeriph drives the pins through periph.io.
	BackendPeriph = "periph"
	// BackendChardev drives the pins through a Linux GPIO character device.
	BackendChardev = "chardev"
)

// Backends lists the valid backend names.
var Backends = []string{BackendRegisters, BackendPeriph, BackendChardev}

// Defaults.
const (
	DefaultPlatform      = "sun7i"
	DefaultBackend       = BackendRegisters
	DefaultLogLevel      = "info"
	DefaultLogFileSizeMB = 10
	DefaultGPIOChip      = "gpiochip0"
)

// AttributeMap is a config as read from JSON, before decoding.
type AttributeMap map[string]interface{}

// Config configures a scan.
type Config struct {
	// Script is the path of the script.bin to scan.
	Script       string `json:"script"`
	Platform     string `json:"platform"`
	DriverPrefix string `json:"driver_prefix"`
	Backend      string `json:"backend"`
	// GPIOChip names the character device under /dev used by the chardev backend.
	GPIOChip string `json:"gpio_chip"`
	// AXP enables the GPIOs of the power management chip.
	AXP     bool `json:"axp"`
	AXPPins int  `json:"axp_pins"`

	LogLevel         string `json:"log_level"`
	LogFile          string `json:"log_file"`
	LogFileMaxSizeMB int    `json:"log_file_max_size_mb"`
}

// Default returns a config with every default applied.
func Default() *Config {
	conf := &Config{}
	conf.applyDefaults()
	return conf
}

func (conf *Config) applyDefaults() {
	if conf.Platform == "" {
		conf.Platform = DefaultPlatform
	}
	if conf.DriverPrefix == "" {
		conf.DriverPrefix = device.DefaultDriverPrefix
	}
	if conf.Backend == "" {
		conf.Backend = DefaultBackend
	}
	if conf.Backend == BackendChardev && conf.GPIOChip == "" {
		conf.GPIOChip = DefaultGPIOChip
	}
	if conf.AXP && conf.AXPPins == 0 {
		conf.AXPPins = pio.AXP209Pins
	}
	if conf.LogLevel == "" {
		conf.LogLevel = DefaultLogLevel
	}
	if conf.LogFile != "" && conf.LogFileMaxSizeMB == 0 {
		conf.LogFileMaxSizeMB = DefaultLogFileSizeMB
	}
}

// Validate checks the config. Defaults must have been applied.
func (conf *Config) Validate(path string) error {
	if conf.Script == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "script")
	}
	if _, err := device.PlatformByName(conf.Platform); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	if !slices.Contains(Backends, conf.Backend) {
		return utils.NewConfigValidationError(path,
			errors.Errorf("backend must be one of %v, got %q", Backends, conf.Backend))
	}
	if conf.AXPPins < 0 || conf.AXPPins > pio.PinsPerBank {
		return utils.NewConfigValidationError(path,
			errors.Errorf("axp_pins must be between 0 and %d", pio.PinsPerBank))
	}
	if _, err := logging.LevelFromString(conf.LogLevel); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	if conf.LogFileMaxSizeMB < 0 {
		return utils.NewConfigValidationError(path, errors.New("log_file_max_size_mb cannot be negative"))
	}
	return nil
}

// FromAttributes decodes, defaults and validates a config. Unknown keys are rejected.
func FromAttributes(attrs AttributeMap) (*Config, error) {
	conf := &Config{}
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           conf,
		Metadata:         &md,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attrs); err != nil {
		return nil, errors.Wrap(err, "cannot decode config")
	}
	if len(md.Unused) > 0 {
		sort.Strings(md.Unused)
		return nil, errors.Errorf("unknown config keys %v", md.Unused)
	}
	conf.applyDefaults()
	if err := conf.Validate("config"); err != nil {
		return nil, err
	}
	return conf, nil
}

func parseAttributes(data []byte) (AttributeMap, error) {
	var attrs AttributeMap
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&attrs); err != nil {
		return nil, errors.Wrap(err, "cannot parse config")
	}
	if attrs == nil {
		attrs = AttributeMap{}
	}
	return attrs, nil
}

// FromJSON reads a config from JSON.
func FromJSON(data []byte) (*Config, error) {
	attrs, err := parseAttributes(data)
	if err != nil {
		return nil, err
	}
	return FromAttributes(attrs)
}

// ReadAttributes reads a JSON config file without decoding or validating it, so that other
// settings can be layered on top before FromAttributes. Environment variables in the file, such
// as ${SCRIPT}, are expanded first.
func ReadAttributes(path string) (AttributeMap, error) {
	buf, err := envsubst.ReadFile(path)
	if err != nil {
		return nil, err
	}
	attrs, err := parseAttributes(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return attrs, nil
}

// Read reads a JSON config file.
func Read(path string) (*Config, error) {
	attrs, err := ReadAttributes(path)
	if err != nil {
		return nil, err
	}
	conf, err := FromAttributes(attrs)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return conf, nil
}

// Level returns the configured log level.
func (conf *Config) Level() logging.Level {
	level, err := logging.LevelFromString(conf.LogLevel)
	if err != nil {
		return logging.INFO
	}
	return level
}
