/*
 * The DOS multiplex functions
 *
 * This is the handler DOS itself puts at the end of the INT 2Fh chain.
 * It answers the installation checks and Windows broadcasts that guest
 * programs expect a DOS kernel to answer.
 *
 * Copyright (C) 2023 Lawrence Woodman <lwoodman@vlifesystems.com>
 *
 * Licensed under an MIT licence.  Please see LICENCE.md for details.
 */

package dosmux

import (
	"go.uber.org/zap"
)

// Virtual device IDs with special handling
const (
	vxdDOSMGR = 0x0015
	vxdVMPOLL = 0x0018
)

type DispatcherConfig struct {
	Mem       GuestMemory
	Files     FileTable
	Callbacks Callbacks
	Tables    DOSTables
	// MaxFiles is the number of System File Table entries
	MaxFiles int
	Log      *zap.Logger
	Metrics  *Metrics
}

type Dispatcher struct {
	mem       GuestMemory
	files     FileTable
	callbacks Callbacks
	tables    DOSTables
	maxFiles  int
	log       *zap.Logger
	metrics   *Metrics
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		mem:       cfg.Mem,
		files:     cfg.Files,
		callbacks: cfg.Callbacks,
		tables:    cfg.Tables,
		maxFiles:  cfg.MaxFiles,
		log:       log.Named("multiplex"),
		metrics:   cfg.Metrics,
	}
}

func (d *Dispatcher) Multiplex(regs *Registers) bool {
	switch regs.AX {
	case 0x1000: // SHARE installation check
		// SHARE isn't loaded but some programs won't run without it
		regs.AX = 0xffff
		return true
	case 0x1216: // Get address of System File Table entry
		return d.getSFTEntry(regs)
	case 0x1605: // Windows init broadcast
		d.windowsInit(regs)
		return false
	case 0x1606: // Windows exit broadcast
		d.log.Debug("windows exit broadcast",
			zap.String("dx", hex16(regs.DX)),
			zap.String("mode", windowsMode(regs.DX)))
		return false
	case 0x1607: // Virtual device callout
		return d.vxdCallout(regs)
	case 0x1680: // Release current virtual machine time-slice
		return true
	case 0x1689: // Kernel idle call
		return true
	case 0x168f: // Close awareness
		return true
	case 0x4a01, 0x4a02: // Query free HMA space, allocate HMA space
		d.log.Warn("hma requested, none available", zap.String("ax", hex16(regs.AX)))
		regs.BX = 0
		regs.ES = 0xffff
		regs.DI = 0xffff
		return true
	}
	return false
}

// windowsInit checks the init broadcast arrives as Windows issued it.
// Each handler is meant to pass the call down the chain unmodified and
// only fill in its reply on the way back up, so as the last handler in
// the chain these registers should still be zero.
func (d *Dispatcher) windowsInit(regs *Registers) {
	d.log.Debug("windows init broadcast",
		zap.Stringer("es:bx", RealMake(regs.ES, regs.BX)),
		zap.Stringer("ds:si", RealMake(regs.DS, regs.SI)),
		zap.String("cx", hex16(regs.CX)),
		zap.String("dx", hex16(regs.DX)),
		zap.String("mode", windowsMode(regs.DX)))

	if regs.ES != 0 || regs.BX != 0 || regs.DS != 0 || regs.SI != 0 || regs.CX != 0 {
		d.metrics.protocolWarning()
		d.log.Warn("windows init broadcast modified on the way down the chain",
			zap.Stringer("es:bx", RealMake(regs.ES, regs.BX)),
			zap.Stringer("ds:si", RealMake(regs.DS, regs.SI)),
			zap.String("cx", hex16(regs.CX)))
	}
}

func windowsMode(dx uint16) string {
	if dx&1 != 0 {
		return "286 DOS extender"
	}
	return "enhanced mode"
}

// vxdCallout handles AX=1607h, BX is the device ID and CX the function
func (d *Dispatcher) vxdCallout(regs *Registers) bool {
	// VMPOLL is called too often to log
	if regs.BX == vxdVMPOLL {
		return true
	}

	name, ok := VxDName(regs.BX)
	if !ok {
		name = "??"
	}
	d.log.Debug("virtual device callout",
		zap.String("device", name),
		zap.String("bx", hex16(regs.BX)),
		zap.String("cx", hex16(regs.CX)))

	if regs.BX != vxdDOSMGR {
		return false
	}

	switch regs.CX {
	case 0x0000: // Query instance
		regs.CX = 0x0001
		regs.DX = 0x50 // DOS driver segment
		regs.ES = 0x50 // Patch table segment
		regs.BX = 0x60 // Patch table offset
		return true
	case 0x0001: // Set patches
		regs.AX = 0xb97c
		regs.BX = regs.DX & 0x16
		regs.DX = 0xa2ab
		return true
	case 0x0003: // Get size of data structure
		if regs.DX != 0x0001 { // Only the CDS size is known
			return false
		}
		regs.AX = 0xb97c
		regs.DX = 0xa2ab
		regs.CX = 0x000e
		return true
	case 0x0004: // Instanced data
		regs.DX = 0
		return true
	case 0x0005: // Get device driver size
		regs.AX = 0
		regs.DX = 0
		return true
	}
	return false
}
