/*
 * An embeddable DOS multiplex interrupt machine
 *
 * Machine ties the multiplex chain to guest memory, callbacks, open
 * files and the DOS tables so that interrupts can be raised the way a
 * virtual CPU would raise them.
 *
 * Copyright (C) 2023 Lawrence Woodman <lwoodman@vlifesystems.com>
 *
 * Licensed under an MIT licence.  Please see LICENCE.md for details.
 */

package dosmux

import (
	"fmt"

	"go.uber.org/zap"
)

// Guest memory layout
const (
	infoBlockSeg = 0x0080
	infoBlockOfs = 0x0026 // The list of lists starts part way in
	sftSeg       = 0x0100
	dpbSeg       = 0x00c8
)

type Machine struct {
	Regs      Registers
	Mem       *RAM
	Callbacks *CallbackTable
	Files     *HandleTable
	Tables    *Tables
	Multiplex *Registry
	scripts   []*ScriptHandler
	log       *zap.Logger
}

// New lays out the DOS tables in guest memory, installs the multiplex
// interrupts and registers any scripts in cfg.  metrics may be nil.
func New(cfg Config, log *zap.Logger, metrics *Metrics) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	m := &Machine{
		Mem:       NewRAM(),
		Callbacks: NewCallbackTable(),
		Files:     NewHandleTable(cfg.Files),
		Tables: &Tables{
			InfoBlockPt: RealMake(infoBlockSeg, infoBlockOfs),
			DPBSeg:      dpbSeg,
		},
		Multiplex: NewRegistry(),
		log:       log,
	}
	m.Regs.SS = 0x0050
	m.Regs.SP = 0x0100

	// First SFT, holding the handles mirrored by AX=1216h
	sft := RealMake(sftSeg, 0)
	m.Mem.WriteD(Real2Phys(m.Tables.InfoBlockPt)+4, uint32(sft))
	m.Mem.WriteD(Real2Phys(sft), 0xffffffff) // No next table
	m.Mem.WriteW(Real2Phys(sft)+4, sftFastHandles)

	d := NewDispatcher(DispatcherConfig{
		Mem:       m.Mem,
		Files:     m.Files,
		Callbacks: m.Callbacks,
		Tables:    m.Tables,
		MaxFiles:  cfg.Files,
		Log:       log,
		Metrics:   metrics,
	})
	err := Setup(SetupConfig{
		Callbacks: m.Callbacks,
		Vectors:   m.Mem,
		Registry:  m.Multiplex,
		Handler:   d,
		Log:       log,
		Metrics:   metrics,
	})
	if err != nil {
		return nil, err
	}

	for _, path := range cfg.Scripts {
		s, err := LoadScript(path, log)
		if err != nil {
			m.Close()
			return nil, err
		}
		m.AddScript(s)
	}
	return m, nil
}

// AddScript puts s at the front of the multiplex chain.  The machine
// closes it on Close.
func (m *Machine) AddScript(s *ScriptHandler) {
	m.scripts = append(m.scripts, s)
	m.Multiplex.Register(s)
	m.log.Info("script loaded", zap.String("script", s.Name()))
}

// Interrupt raises software interrupt vec through the interrupt
// vector table
func (m *Machine) Interrupt(vec uint8) error {
	pt := m.Mem.Vec(vec)
	fn, _, ok := m.Callbacks.Lookup(pt)
	if !ok {
		return fmt.Errorf("INT %02Xh: no handler at %s", vec, pt)
	}
	fn(&m.Regs)
	return nil
}

// SFTEntry returns a copy of System File Table entry n
func (m *Machine) SFTEntry(n uint16) []byte {
	sft := RealPt(m.Mem.ReadD(Real2Phys(m.Tables.InfoBlockPt) + 4))
	return m.Mem.Slice(Real2Phys(sft)+PhysPt(sftEntryOffset(n)), sftEntrySize)
}

// Close closes scripts and any open files
func (m *Machine) Close() error {
	for _, s := range m.scripts {
		m.Multiplex.Unregister(s)
		s.Close()
	}
	m.scripts = nil
	return m.Files.CloseAll()
}
