/*
 * System File Table entries
 *
 * Guest programs walk the SFT directly, so entries are written to guest
 * memory byte for byte as DOS lays them out.
 *
 * Copyright (C) 2023 Lawrence Woodman <lwoodman@vlifesystems.com>
 *
 * Licensed under an MIT licence.  Please see LICENCE.md for details.
 */

package dosmux

import (
	"io"
	"strings"

	"go.uber.org/zap"
)

const (
	sftHeaderSize = 0x06 // next table pointer and entry count
	sftEntrySize  = 0x3b
	// Only handles below this are mirrored into the SFT
	sftFastHandles = 16
)

type sftField struct {
	off   PhysPt
	width int
}

// Offsets from the start of an entry
var sftLayout = struct {
	refCount, openMode, attr, devInfo, driver sftField
	time, date, size, position               sftField
	name, ext                                sftField
}{
	refCount: sftField{0x00, 1},
	openMode: sftField{0x02, 2},
	attr:     sftField{0x04, 1},
	devInfo:  sftField{0x05, 2},
	driver:   sftField{0x07, 4},
	time:     sftField{0x0d, 2},
	date:     sftField{0x0f, 2},
	size:     sftField{0x11, 4},
	position: sftField{0x15, 4},
	name:     sftField{0x20, 8},
	ext:      sftField{0x28, 3},
}

// sftEntry writes the fields of one entry in guest memory
type sftEntry struct {
	mem  GuestMemory
	base PhysPt
}

func (e sftEntry) put(f sftField, v uint32) {
	e.putN(f, f.width, v)
}

// putN writes v using width n rather than the field's width
func (e sftEntry) putN(f sftField, n int, v uint32) {
	addr := e.base + f.off
	switch n {
	case 1:
		e.mem.WriteB(addr, uint8(v))
	case 2:
		e.mem.WriteW(addr, uint16(v))
	case 4:
		e.mem.WriteD(addr, v)
	}
}

// putText writes s padded with spaces to n bytes, starting at the field
func (e sftEntry) putText(f sftField, n int, s string) {
	for i := 0; i < n; i++ {
		c := byte(' ')
		if i < len(s) {
			c = s[i]
		}
		e.mem.WriteB(e.base+f.off+PhysPt(i), c)
	}
}

// sftEntryOffset returns the offset of entry n from the SFT base
func sftEntryOffset(n uint16) uint32 {
	return sftHeaderSize + uint32(n)*sftEntrySize
}

// fcbName splits path into the space padded 8.3 form DOS keeps in SFT
// entries.  hasExt is false if the name has no period, in which case
// name is 11 bytes wide.  ok is false if nothing is left after removing
// the directories.
func fcbName(path string) (name string, ext string, hasExt bool, ok bool) {
	if i := strings.LastIndexByte(path, '\\'); i >= 0 {
		path = path[i+1:]
	}
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		path = path[i+1:]
	}
	if path == "" {
		return "", "", false, false
	}
	dot := strings.LastIndexByte(path, '.')
	if dot < 0 {
		return pad(truncate(path, 8), 11), "", false, true
	}
	return pad(truncate(path[:dot], 8), 8), pad(truncate(path[dot+1:], 3), 3), true, true
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func pad(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

// getSFTEntry handles AX=1216h, get address of System File Table entry BX
func (d *Dispatcher) getSFTEntry(regs *Registers) bool {
	handle := regs.BX
	if int(handle) >= d.maxFiles {
		d.log.Debug("sft entry out of range",
			zap.Uint16("bx", handle), zap.Int("files", d.maxFiles))
		d.callbacks.SetCarry(regs, true)
		return true
	}
	d.callbacks.SetCarry(regs, false)
	if handle >= sftFastHandles {
		return true
	}

	sftReal := RealPt(d.mem.ReadD(Real2Phys(d.tables.InfoBlock()) + 4))
	entryOfs := sftEntryOffset(handle)
	e := sftEntry{mem: d.mem, base: Real2Phys(sftReal) + PhysPt(entryOfs)}

	f := d.files.File(handle)
	if f == nil {
		e.put(sftLayout.refCount, 0)
		return true
	}
	e.put(sftLayout.refCount, uint32(f.RefCount()))

	if f.IsDevice() {
		e.put(sftLayout.openMode, OpenReadWrite)
		e.put(sftLayout.attr, 0)
		e.put(sftLayout.devInfo, uint32(f.Information()))
		e.put(sftLayout.driver, 0)
		e.put(sftLayout.time, 0)
		e.put(sftLayout.date, 0)
		// DOS only clears the low words for devices
		e.putN(sftLayout.size, 2, 0)
		e.putN(sftLayout.position, 2, 0)
	} else {
		drive := f.Drive()
		e.put(sftLayout.openMode, uint32(f.Flags()&3))
		e.put(sftLayout.attr, uint32(f.Attr()))
		e.put(sftLayout.devInfo, 0x40|uint32(drive))
		e.put(sftLayout.driver, uint32(d.tables.DPB(drive)))
		e.put(sftLayout.time, uint32(f.Time()))
		e.put(sftLayout.date, uint32(f.Date()))
		curPos, endPos := d.fileExtent(f)
		e.put(sftLayout.size, endPos)
		e.put(sftLayout.position, curPos)
	}

	name, ext, hasExt, ok := fcbName(f.Name())
	if !ok {
		return true
	}
	if hasExt {
		e.putText(sftLayout.name, sftLayout.name.width, name)
		e.putText(sftLayout.ext, sftLayout.ext.width, ext)
	} else {
		// Name runs on over the extension
		e.putText(sftLayout.name, len(name), name)
	}

	regs.ES = RealSeg(sftReal)
	regs.DI = RealOff(sftReal + RealPt(entryOfs))
	regs.AX = 0xc000
	return true
}

// fileExtent returns the current position and size of f, leaving its
// position unchanged
func (d *Dispatcher) fileExtent(f OpenFile) (uint32, uint32) {
	curPos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		d.log.Warn("sft entry: can't get position",
			zap.String("file", f.Name()), zap.Error(err))
		return 0, 0
	}
	endPos, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		d.log.Warn("sft entry: can't get size",
			zap.String("file", f.Name()), zap.Error(err))
		endPos = 0
	}
	if _, err := f.Seek(curPos, io.SeekStart); err != nil {
		d.log.Warn("sft entry: can't restore position",
			zap.String("file", f.Name()), zap.Error(err))
	}
	return curPos, endPos
}
