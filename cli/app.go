// Package cli implements scriptscan, a tool to inspect boot scripts and dry-run the device scan
// against them.
package cli

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/bootscript/config"
)

// Flags.
const (
	flagConfig   = "config"
	flagScript   = "script"
	flagPlatform = "platform"
	flagBackend  = "backend"
	flagAXP      = "axp"
	flagDebug    = "debug"
	flagStrict   = "strict"
)

// NewApp returns the scriptscan application.
func NewApp() *cli.App {
	return &cli.App{
		Name:  "scriptscan",
		Usage: "inspect sunxi boot scripts and the devices they enable",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.StringFlag{
				Name:    flagScript,
				Aliases: []string{"s"},
				Usage:   "script.bin to read, overrides the config",
			},
			&cli.StringFlag{
				Name:  flagPlatform,
				Usage: "SoC family, overrides the config",
			},
			&cli.StringFlag{
				Name:  flagBackend,
				Usage: "how pin settings are applied (registers, periph or chardev), overrides the config",
			},
			&cli.BoolFlag{
				Name:  flagAXP,
				Usage: "enable the GPIOs of the power management chip",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "scan",
				Usage:     "reserve pins and register every used device",
				UsageText: "scriptscan [global options] scan [--strict]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  flagStrict,
						Usage: "exit with an error if any device fails",
					},
				},
				Action: ScanAction,
			},
			{
				Name:   "sections",
				Usage:  "list the sections of the script and the feature each one names",
				Action: SectionsAction,
			},
			{
				Name:      "props",
				Usage:     "dump the properties of one section",
				ArgsUsage: "<section>",
				Action:    PropsAction,
			},
		},
	}
}

// loadConfig reads the config file if one is given and applies the flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	attrs := config.AttributeMap{}
	if path := c.String(flagConfig); path != "" {
		var err error
		if attrs, err = config.ReadAttributes(path); err != nil {
			return nil, err
		}
	}
	for flag, key := range map[string]string{
		flagScript:   "script",
		flagPlatform: "platform",
		flagBackend:  "backend",
	} {
		if c.IsSet(flag) {
			attrs[key] = c.String(flag)
		}
	}
	if c.IsSet(flagAXP) {
		attrs["axp"] = c.Bool(flagAXP)
	}
	if c.Bool(flagDebug) {
		attrs["log_level"] = "debug"
	}
	conf, err := config.FromAttributes(attrs)
	if err != nil {
		if path := c.String(flagConfig); path != "" {
			return nil, errors.Wrapf(err, "invalid configuration in %s", path)
		}
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return conf, nil
}
