package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

type BasicStruct struct {
	X int
	y string
}

// assertLogMatches will fuzzy match log lines. Notably, this checks the time format, but ignores
// the exact time. And it expects a match on the filename, but the exact line number can be wrong.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualTrimmed := strings.TrimSuffix(output, "\n")
	actualParts := strings.Split(actualTrimmed, "\t")
	expectedParts := strings.Split(expected, "\t")
	// Any time zone, UTC included.
	_, err = time.Parse(DefaultTimeFormatStr, actualParts[0])
	test.That(t, err, test.ShouldBeNil)
	// Log level.
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])

	// Filename:line_number.
	actualFilename, actualLineNumber, found := strings.Cut(actualParts[2], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFilename, _, found := strings.Cut(expectedParts[2], ":")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, actualFilename, test.ShouldEqual, expectedFilename)
	_, err = strconv.Atoi(actualLineNumber)
	test.That(t, err, test.ShouldBeNil)

	// Log message.
	test.That(t, actualParts[3], test.ShouldEqual, expectedParts[3])

	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))
	if len(actualParts) == 4 {
		return
	}

	expectedMap := make(map[string]any)
	err = json.Unmarshal([]byte(expectedParts[4]), &expectedMap)
	test.That(t, err, test.ShouldBeNil)

	actualMap := make(map[string]any)
	err = json.Unmarshal([]byte(actualParts[4]), &actualMap)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, actualMap, test.ShouldResemble, expectedMap)
}

func TestConsoleOutputFormat(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := &impl{"", NewAtomicLevelAt(DEBUG), false, []Appender{NewWriterAppender(notStdout)}}

	logger.Debugf("impl %s log", "debugf")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:45:20.764-0400	DEBUG	logging/impl_test.go:131	impl debugf log`)

	logger.Infow("impl logw", "key", "value")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806-0400	INFO	logging/impl_test.go:132	impl logw	{"key":"value"}`)

	// Only public fields of structs are serialized.
	logger.Warnw("BasicStruct", "pin", "PA5", "BasicStruct", BasicStruct{1, "alice"})
	assertLogMatches(t, notStdout,
		`2023-10-30T13:20:47.129-0400	WARN	logging/impl_test.go:125	BasicStruct	{"BasicStruct":{"X":1},"pin":"PA5"}`)

	// An unpaired key is still logged.
	logger.Errorw("unpaired", "lonely")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:20:47.129-0400	ERROR	logging/impl_test.go:125	unpaired	{"lonely":"unpaired log key"}`)
}

func TestTimestampZones(t *testing.T) {
	at := time.Date(2023, 10, 30, 9, 12, 9, 459000000, time.UTC)
	for _, loc := range []*time.Location{time.UTC, time.FixedZone("EDT", -4*60*60)} {
		t.Run(loc.String(), func(t *testing.T) {
			line, err := formatEntry(zapcore.Entry{
				Time:    at.In(loc),
				Level:   zapcore.InfoLevel,
				Caller:  zapcore.EntryCaller{Defined: true, File: "/src/logging/impl_test.go", Line: 1},
				Message: "msg",
			}, nil)
			test.That(t, err, test.ShouldBeNil)

			stamp, _, _ := strings.Cut(line, "\t")
			parsed, err := time.Parse(DefaultTimeFormatStr, stamp)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, parsed.Equal(at), test.ShouldBeTrue)

			var buf bytes.Buffer
			buf.WriteString(line + "\n")
			assertLogMatches(t, &buf, `2023-10-30T09:12:09.459-0400	INFO	logging/impl_test.go:1	msg`)
		})
	}
}

func TestLevels(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := &impl{"", NewAtomicLevelAt(WARN), false, []Appender{NewWriterAppender(notStdout)}}

	logger.Debugf("dropped")
	logger.Infow("dropped")
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)

	logger.Warnf("kept")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459-0400	WARN	logging/impl_test.go:67	kept`)

	logger.SetLevel(DEBUG)
	logger.Debugf("now %s", "kept")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459-0400	DEBUG	logging/impl_test.go:67	now kept`)
}

func TestSublogger(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	sub := logger.Sublogger("pio").Sublogger("alloc")
	sub.Infow("requested", "pin", "PB3")

	entries := observed.All()
	test.That(t, len(entries), test.ShouldEqual, 1)
	test.That(t, entries[0].LoggerName, test.ShouldEqual, "pio.alloc")
	test.That(t, entries[0].Message, test.ShouldEqual, "requested")
	test.That(t, entries[0].ContextMap()["pin"], test.ShouldEqual, "PB3")
	test.That(t, sub.Sync(), test.ShouldBeNil)
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		input    string
		expected Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warn", WARN},
		{"warning", WARN},
		{"error", ERROR},
	} {
		t.Run(tc.input, func(t *testing.T) {
			level, err := LevelFromString(tc.input)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, level, test.ShouldEqual, tc.expected)
		})
	}

	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown log level")
}

func TestFileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.log")
	appender := NewFileAppender(path, 1)
	logger := NewBlankLogger("file")
	logger.AddAppender(appender)

	logger.Infow("reserved", "pin", "PB22")
	test.That(t, logger.Sync(), test.ShouldBeNil)
	test.That(t, appender.Close(), test.ShouldBeNil)

	contents, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(contents), test.ShouldContainSubstring, "INFO\tfile\t")
	test.That(t, string(contents), test.ShouldContainSubstring, `{"pin":"PB22"}`)
}
