package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"go.viam.com/bootscript/pio"
	"go.viam.com/bootscript/script"
)

func writeScript(t *testing.T) string {
	t.Helper()
	b := script.NewBuilder()
	b.Section("product").String("machine", "cubietruck")
	b.Section("uart_para0").
		U32("uart_used", 1).
		Pin("uart_tx", script.PinDescriptor{Bank: 1, Pin: 22, Mux: 2, Pull: 1, Drive: script.Unset, Value: script.Unset}).
		Pin("uart_rx", script.PinDescriptor{Bank: 1, Pin: 23, Mux: 2, Pull: 1, Drive: script.Unset, Value: script.Unset})
	b.Section("uart_para9").U32("uart_used", 1)
	b.Section("twi0_para").U32("twi_used", 0)
	path := filepath.Join(t.TempDir(), "script.bin")
	test.That(t, os.WriteFile(path, b.Bytes(), 0o600), test.ShouldBeNil)
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	prev := pio.Global()
	t.Cleanup(func() { pio.ReplaceGlobal(prev) })

	var out, errOut bytes.Buffer
	app := NewApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.RunContext(context.Background(), append([]string{"scriptscan"}, args...))
	return out.String(), errOut.String(), err
}

func TestScanCommand(t *testing.T) {
	path := writeScript(t)

	out, _, err := run(t, "--script", path, "--platform", "sun7i", "scan")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "sunxi-uart.0")
	test.That(t, out, test.ShouldContainSubstring, "PB22 PB23")
	test.That(t, out, test.ShouldContainSubstring, "[mem 0x01c28000-0x01c283ff] 1KiB")
	test.That(t, out, test.ShouldContainSubstring, "no uart9")
	test.That(t, out, test.ShouldContainSubstring, "1 devices, 1 failed, 2 sections skipped, 2 pins held")
	test.That(t, pio.Global().HeldCount(), test.ShouldEqual, 2)

	_, _, err = run(t, "--script", path, "scan", "--strict")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no uart9")
}

func TestScanNothingMaterialized(t *testing.T) {
	b := script.NewBuilder()
	b.Section("uart_para9").U32("uart_used", 1)
	path := filepath.Join(t.TempDir(), "script.bin")
	test.That(t, os.WriteFile(path, b.Bytes(), 0o600), test.ShouldBeNil)

	out, _, err := run(t, "--script", path, "scan")
	test.That(t, out, test.ShouldContainSubstring, "0 devices, 1 failed")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no uart9")
}

func TestSectionsCommand(t *testing.T) {
	path := writeScript(t)
	out, _, err := run(t, "-s", path, "sections")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "script version 0.1.0, 4 sections")
	test.That(t, out, test.ShouldContainSubstring, "uart[9]")
	test.That(t, out, test.ShouldContainSubstring, "twi[0]")
}

func TestPropsCommand(t *testing.T) {
	path := writeScript(t)
	out, _, err := run(t, "-s", path, "props", "uart_para0")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "port:PB22<2><1><default><default>")

	_, _, err = run(t, "-s", path, "props", "uart_para1")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `no section "uart_para1"`)

	_, _, err = run(t, "-s", path, "props")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestConfigFile(t *testing.T) {
	path := writeScript(t)
	dir := t.TempDir()
	confPath := filepath.Join(dir, "scan.json")
	logPath := filepath.Join(dir, "scan.log")
	test.That(t, os.WriteFile(confPath, []byte(`{
		"script": "`+path+`",
		"platform": "sun4i",
		"driver_prefix": "aw",
		"log_level": "debug",
		"log_file": "`+logPath+`"
	}`), 0o600), test.ShouldBeNil)

	out, _, err := run(t, "--config", confPath, "scan")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "aw-uart.0")

	logs, err := os.ReadFile(logPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(logs), test.ShouldContainSubstring, "[product] SKIP")

	_, _, err = run(t, "--config", confPath, "--backend", "mmap", "scan")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid configuration")
}

func TestConfigFileWithFlagOverrides(t *testing.T) {
	path := writeScript(t)
	confPath := filepath.Join(t.TempDir(), "scan.json")
	test.That(t, os.WriteFile(confPath, []byte(`{"platform": "sun9i", "driver_prefix": "aw"}`), 0o600), test.ShouldBeNil)

	// Flags fill in and replace file settings before anything is validated.
	out, _, err := run(t, "--config", confPath, "--script", path, "--platform", "sun4i", "scan")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "aw-uart.0")

	_, _, err = run(t, "--config", confPath, "--script", path, "scan")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown platform")
	test.That(t, err.Error(), test.ShouldContainSubstring, confPath)
}

func TestMissingScript(t *testing.T) {
	_, _, err := run(t, "scan")
	test.That(t, err, test.ShouldNotBeNil)

	_, _, err = run(t, "-s", filepath.Join(t.TempDir(), "none.bin"), "scan")
	test.That(t, err, test.ShouldNotBeNil)
}
