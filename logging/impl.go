package logging

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface used throughout this module. The `f` variants format with
// `fmt.Sprintf`; the `w` variants take a message followed by alternating keys and values.
type Logger interface {
	Debugf(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	// Sublogger returns a logger named "<name>.<subname>" sharing this logger's appenders.
	Sublogger(subname string) Logger
	SetLevel(level Level)
	AddAppender(appender Appender)
	Sync() error
}

type impl struct {
	name  string
	level AtomicLevel
	inUTC bool

	appenders []Appender
}

func (imp *impl) AddAppender(appender Appender) {
	imp.appenders = append(imp.appenders, appender)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = fmt.Sprintf("%s.%s", imp.name, subname)
	}
	return &impl{
		name:      newName,
		level:     NewAtomicLevelAt(imp.level.Get()),
		inUTC:     imp.inUTC,
		appenders: imp.appenders,
	}
}

func (imp *impl) Sync() error {
	var err error
	for _, appender := range imp.appenders {
		err = multierr.Append(err, appender.Sync())
	}
	return err
}

// newEntry must be called directly by logf or logw for the caller to be found.
func (imp *impl) newEntry(level Level, msg string) zapcore.Entry {
	entry := zapcore.Entry{
		Level:      level.AsZap(),
		Time:       time.Now(),
		LoggerName: imp.name,
		Message:    msg,
		Caller:     getCaller(),
	}
	if imp.inUTC {
		entry.Time = entry.Time.UTC()
	}
	return entry
}

func (imp *impl) write(entry zapcore.Entry, fields []zapcore.Field) {
	for _, appender := range imp.appenders {
		if err := appender.Write(entry, fields); err != nil {
			fmt.Fprint(os.Stderr, err)
		}
	}
}

func (imp *impl) logf(level Level, template string, args []interface{}) {
	if level < imp.level.Get() {
		return
	}
	imp.write(imp.newEntry(level, fmt.Sprintf(template, args...)), nil)
}

// logw turns keysAndValues into zap fields: even elements are keys, each followed by its value.
func (imp *impl) logw(level Level, msg string, keysAndValues []interface{}) {
	if level < imp.level.Get() {
		return
	}
	entry := imp.newEntry(level, msg)

	fields := make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			// Keep the key rather than dropping it silently.
			fields = append(fields, zap.Any(key, errors.New("unpaired log key")))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	imp.write(entry, fields)
}

func (imp *impl) Debugf(template string, args ...interface{}) {
	imp.logf(DEBUG, template, args)
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	imp.logw(INFO, msg, keysAndValues)
}

func (imp *impl) Warnf(template string, args ...interface{}) {
	imp.logf(WARN, template, args)
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	imp.logw(WARN, msg, keysAndValues)
}

func (imp *impl) Errorf(template string, args ...interface{}) {
	imp.logf(ERROR, template, args)
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	imp.logw(ERROR, msg, keysAndValues)
}

// getCaller returns where the log call was made, e.g. "logging/impl_test.go:36".
func getCaller() zapcore.EntryCaller {
	// getCaller <- newEntry <- logf/logw <- Debugf/Infow/... <- the caller we want.
	const skip = 4
	var caller zapcore.EntryCaller
	var ok bool
	caller.PC, caller.File, caller.Line, ok = runtime.Caller(skip)
	if !ok {
		return caller
	}
	caller.Defined = true
	if fn := runtime.FuncForPC(caller.PC); fn != nil {
		caller.Function = fn.Name()
	}
	return caller
}
