/*
 * A utility to issue a single DOS multiplex (INT 2Fh) call
 *
 * Copyright (C) 2023 Lawrence Woodman <lwoodman@vlifesystems.com>
 *
 * Licensed under an MIT licence.  Please see LICENCE.md for details.
 */

package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	dosmux "github.com/lawrencewoodman/go-dosmux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

type options struct {
	configFile  string
	open        openList
	regs        dosmux.Registers
	showMetrics bool
}

// openList collects -open hostpath[=DOSNAME] switches
type openList []string

func (o *openList) String() string {
	return strings.Join(*o, ",")
}

func (o *openList) Set(s string) error {
	*o = append(*o, s)
	return nil
}

type hexReg struct {
	r *uint16
}

func (h hexReg) String() string {
	if h.r == nil {
		return "0000"
	}
	return fmt.Sprintf("%04X", *h.r)
}

func (h hexReg) Set(s string) error {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 16)
	if err != nil {
		return err
	}
	*h.r = uint16(v)
	return nil
}

func usage(errMsg string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", errMsg)
	fmt.Fprintf(os.Stderr, "Usage: %s [-config file] [-open hostpath[=DOSNAME]]... -ax hex [-bx hex] ...\n", os.Args[0])
	flag.PrintDefaults()
}

func parseOptions() (*options, error) {
	o := &options{}
	flag.StringVar(&o.configFile, "config", "", "TOML config file")
	flag.Var(&o.open, "open", "open a host file, optionally naming it, e.g. save.dat=C:\\GAME\\SAVE.DAT")
	flag.BoolVar(&o.showMetrics, "metrics", false, "print call metrics after the call")
	regs := map[string]*uint16{
		"ax": &o.regs.AX, "bx": &o.regs.BX, "cx": &o.regs.CX, "dx": &o.regs.DX,
		"si": &o.regs.SI, "di": &o.regs.DI, "ds": &o.regs.DS, "es": &o.regs.ES,
	}
	for name, r := range regs {
		flag.Var(hexReg{r}, name, "value of "+strings.ToUpper(name)+" in hex")
	}
	flag.Parse()

	axSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "ax" {
			axSet = true
		}
	})
	if !axSet {
		return nil, fmt.Errorf("no AX supplied")
	}
	return o, nil
}

func loadConfig(o *options) (dosmux.Config, error) {
	if o.configFile == "" {
		return dosmux.DefaultConfig(), nil
	}
	return dosmux.LoadConfig(o.configFile)
}

func newLogger(cfg dosmux.Config) (*zap.Logger, error) {
	return dosmux.NewLogger(cfg.Log)
}

func newMetrics() (*prometheus.Registry, *dosmux.Metrics, error) {
	reg := prometheus.NewRegistry()
	m, err := dosmux.NewMetrics(reg)
	return reg, m, err
}

func newMachine(cfg dosmux.Config, log *zap.Logger, m *dosmux.Metrics) (*dosmux.Machine, error) {
	return dosmux.New(cfg, log, m)
}

// Standard DOS handles: stdin, stdout, stderr, stdaux, stdprn
func installStdHandles(m *dosmux.Machine) error {
	devs := []*dosmux.DeviceFile{
		dosmux.NewDeviceFile("CON", 0x00d3),
		dosmux.NewDeviceFile("CON", 0x00d3),
		dosmux.NewDeviceFile("CON", 0x00d3),
		dosmux.NewDeviceFile("AUX", 0x00c0),
		dosmux.NewDeviceFile("PRN", 0x28c0),
	}
	for _, d := range devs {
		if _, err := m.Files.Install(d); err != nil {
			return err
		}
	}
	return nil
}

func openFiles(m *dosmux.Machine, list openList) error {
	for _, spec := range list {
		path, name, found := strings.Cut(spec, "=")
		if !found {
			name = "C:\\" + strings.ToUpper(filepath.Base(path))
		}
		drive := uint8(2)
		if len(name) >= 2 && name[1] == ':' {
			drive = strings.ToUpper(name[:1])[0] - 'A'
		}
		f, err := dosmux.OpenHostFile(path, name, dosmux.OpenRead, drive)
		if err != nil {
			return err
		}
		h, err := m.Files.Install(f)
		if err != nil {
			f.Close()
			return err
		}
		fmt.Printf("Opened: %s as %s, handle: %d\n", path, name, h)
	}
	return nil
}

func run(o *options, m *dosmux.Machine, reg *prometheus.Registry) error {
	defer m.Close()
	if err := installStdHandles(m); err != nil {
		return err
	}
	if err := openFiles(m, o.open); err != nil {
		return err
	}

	m.Regs.AX, m.Regs.BX, m.Regs.CX, m.Regs.DX = o.regs.AX, o.regs.BX, o.regs.CX, o.regs.DX
	m.Regs.SI, m.Regs.DI, m.Regs.DS, m.Regs.ES = o.regs.SI, o.regs.DI, o.regs.DS, o.regs.ES
	fmt.Printf("Before: %s\n", &m.Regs)
	if err := m.Interrupt(dosmux.VecMultiplex); err != nil {
		return err
	}
	fmt.Printf("After:  %s\n", &m.Regs)

	if o.regs.AX == 0x1216 && m.Regs.AX == 0xc000 {
		fmt.Printf("SFT entry %d at %04X:%04X\n", o.regs.BX, m.Regs.ES, m.Regs.DI)
		fmt.Print(hex.Dump(m.SFTEntry(o.regs.BX)))
	}

	if o.showMetrics {
		mfs, err := reg.Gather()
		if err != nil {
			return err
		}
		for _, mf := range mfs {
			if _, err := expfmt.MetricFamilyToText(os.Stdout, mf); err != nil {
				return err
			}
		}
	}
	return nil
}

func main() {
	o, err := parseOptions()
	if err != nil {
		usage(err.Error())
		os.Exit(1)
	}

	app := fx.New(
		fx.Supply(o),
		fx.Provide(loadConfig, newLogger, newMetrics, newMachine),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx").WithOptions(zap.IncreaseLevel(zap.WarnLevel))}
		}),
		fx.Invoke(run),
	)
	if err := app.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
