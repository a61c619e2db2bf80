package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/docker/go-units"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"go.viam.com/bootscript/device"
	"go.viam.com/bootscript/feature"
	"go.viam.com/bootscript/pio"
)

var (
	failed  = color.New(color.FgRed).SprintFunc()
	good    = color.New(color.FgGreen).SprintFunc()
	skipped = color.New(color.Faint).SprintFunc()
)

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(header)
	return t
}

// ScanAction materializes every used device of the script and prints the outcome.
func ScanAction(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.close()

	alloc, err := s.allocator()
	if err != nil {
		return err
	}
	registry := device.NewRegistry()
	m := device.NewMaterializer(
		s.store,
		alloc,
		registry,
		device.DefaultConstructors(s.conf.DriverPrefix),
		s.platform,
		s.logger.Sublogger("device"),
	)
	report, scanErr := m.Scan(c.Context)
	if report == nil {
		return scanErr
	}

	t := newTable(c.App.Writer, table.Row{"Section", "Device", "Pins", "Resources", "IRQs", "State"})
	for _, res := range report.Results {
		if res.State != device.Registered {
			t.AppendRow(table.Row{res.Section, res.Classification.String(), "", "", "", failed(res.Err)})
			continue
		}
		dev := res.Device
		t.AppendRow(table.Row{
			res.Section,
			dev.FullName(),
			strings.Join(lo.Map(dev.Pins, func(h pio.Handle, _ int) string { return h.String() }), " "),
			strings.Join(lo.Map(dev.Resources, func(r device.MemRange, _ int) string {
				return fmt.Sprintf("%s %s", r, units.BytesSize(float64(r.Size())))
			}), " "),
			strings.Join(lo.Map(dev.IRQs, func(irq int, _ int) string { return fmt.Sprint(irq) }), " "),
			good(res.State),
		})
	}
	t.Render()
	fmt.Fprintf(c.App.Writer, "%d devices, %d failed, %d sections skipped, %d pins held\n",
		len(report.Devices()), len(report.Failed()), len(report.Skipped), alloc.HeldCount())

	if scanErr != nil && (c.Bool(flagStrict) || len(report.Devices()) == 0) {
		return scanErr
	}
	return nil
}

// SectionsAction lists the sections of the script.
func SectionsAction(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.close()

	sc, _ := s.store.Script()
	v := sc.Version()
	fmt.Fprintf(c.App.Writer, "script version %d.%d.%d, %d sections\n", v[0], v[1], v[2], sc.SectionCount())

	t := newTable(c.App.Writer, table.Row{"#", "Section", "Properties", "Pins", "Feature", "Used"})
	i := 0
	for sec := range s.store.Sections() {
		row := table.Row{i, sec.Name(), sec.Len(), sec.CountPinDescriptors()}
		cl, err := feature.Classify(sec.Name())
		switch {
		case errors.Is(err, feature.ErrUnparsable):
			row = append(row, skipped("-"), "")
		case err != nil:
			row = append(row, failed(err), "")
		case device.IsUsed(sec, cl):
			row = append(row, cl.String(), good("yes"))
		default:
			row = append(row, cl.String(), skipped("no"))
		}
		t.AppendRow(row)
		i++
	}
	t.Render()
	return nil
}

// PropsAction prints the properties of one section.
func PropsAction(c *cli.Context) error {
	name := c.Args().First()
	if name == "" || c.Args().Len() > 1 {
		return errors.New("expected exactly one section name")
	}
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.close()

	sec, found := s.store.FindSection(name)
	if !found {
		return errors.Errorf("no section %q", name)
	}
	t := newTable(c.App.Writer, table.Row{"Property", "Type", "Value"})
	for prop := range sec.Properties() {
		t.AppendRow(table.Row{prop.Name, prop.Type(), prop.Format()})
	}
	t.Render()
	return nil
}
