package cli

import (
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.viam.com/utils"
	"periph.io/x/host/v3"

	"go.viam.com/bootscript/config"
	"go.viam.com/bootscript/device"
	"go.viam.com/bootscript/logging"
	"go.viam.com/bootscript/pio"
	"go.viam.com/bootscript/script"
)

// session is everything a command works with, built from the config.
type session struct {
	conf     *config.Config
	logger   logging.Logger
	store    *script.Store
	platform device.Platform
	closers  []func() error
}

func newSession(c *cli.Context) (*session, error) {
	conf, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	s := &session{conf: conf}

	s.logger = logging.NewBlankLogger("scriptscan")
	s.logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	if conf.LogFile != "" {
		fileAppender := logging.NewFileAppender(conf.LogFile, conf.LogFileMaxSizeMB)
		s.logger.AddAppender(fileAppender)
		s.closers = append(s.closers, fileAppender.Close)
	}
	s.logger.SetLevel(conf.Level())
	logging.ReplaceGlobal(s.logger)
	s.closers = append(s.closers, s.logger.Sync)

	if s.platform, err = device.PlatformByName(conf.Platform); err != nil {
		s.close()
		return nil, err
	}

	//nolint:gosec
	data, err := os.ReadFile(conf.Script)
	if err != nil {
		s.close()
		return nil, err
	}
	s.store = script.NewStore()
	if _, err := s.store.Load(data); err != nil {
		s.close()
		return nil, errors.Wrapf(err, "%s", conf.Script)
	}
	return s, nil
}

// allocator builds the pin allocator for the configured backend and makes it the process-wide one.
func (s *session) allocator() (*pio.Allocator, error) {
	logger := s.logger.Sublogger("pio")
	var ctrl pio.Controller
	switch s.conf.Backend {
	case config.BackendPeriph:
		if _, err := host.Init(); err != nil {
			return nil, errors.Wrap(err, "cannot initialize periph.io host drivers")
		}
		ctrl = pio.NewPeriphController(pio.RegistryLookup, logger)
	case config.BackendChardev:
		cc, err := pio.NewChardevController(s.conf.GPIOChip, logger)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, cc.Close)
		ctrl = cc
	default:
		ctrl = pio.NewRegisters()
	}
	var axp pio.AXPController
	if s.conf.AXP {
		axp = pio.NewAXPGPIO(s.conf.AXPPins)
	}
	alloc := pio.NewAllocator(ctrl, axp, logger)
	pio.ReplaceGlobal(alloc)
	return alloc, nil
}

func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		utils.UncheckedErrorFunc(s.closers[i])
	}
}
