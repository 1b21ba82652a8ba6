/*
 * Guest memory
 *
 * Copyright (C) 2023 Lawrence Woodman <lwoodman@vlifesystems.com>
 *
 * Licensed under an MIT licence.  Please see LICENCE.md for details.
 */

package dosmux

import "encoding/binary"

// GuestMemory gives byte, word and dword access to guest physical memory.
// Multi-byte values are little endian.
type GuestMemory interface {
	ReadB(addr PhysPt) uint8
	ReadW(addr PhysPt) uint16
	ReadD(addr PhysPt) uint32
	WriteB(addr PhysPt, v uint8)
	WriteW(addr PhysPt, v uint16)
	WriteD(addr PhysPt, v uint32)
}

// VectorTable installs interrupt vectors
type VectorTable interface {
	SetVec(vec uint8, pt RealPt)
}

// Conventional memory plus the high memory area
const ramSize = 0x110000

// RAM is a flat guest memory whose first 1KB holds the real mode
// interrupt vector table.  Accesses outside of it read as 0xFF and
// writes are dropped, like an unpopulated bus.
type RAM struct {
	mem []byte
}

func NewRAM() *RAM {
	return &RAM{mem: make([]byte, ramSize)}
}

func (r *RAM) inRange(addr PhysPt, n int) bool {
	return int(addr)+n <= len(r.mem)
}

func (r *RAM) ReadB(addr PhysPt) uint8 {
	if !r.inRange(addr, 1) {
		return 0xff
	}
	return r.mem[addr]
}

func (r *RAM) ReadW(addr PhysPt) uint16 {
	if !r.inRange(addr, 2) {
		return 0xffff
	}
	return binary.LittleEndian.Uint16(r.mem[addr:])
}

func (r *RAM) ReadD(addr PhysPt) uint32 {
	if !r.inRange(addr, 4) {
		return 0xffffffff
	}
	return binary.LittleEndian.Uint32(r.mem[addr:])
}

func (r *RAM) WriteB(addr PhysPt, v uint8) {
	if r.inRange(addr, 1) {
		r.mem[addr] = v
	}
}

func (r *RAM) WriteW(addr PhysPt, v uint16) {
	if r.inRange(addr, 2) {
		binary.LittleEndian.PutUint16(r.mem[addr:], v)
	}
}

func (r *RAM) WriteD(addr PhysPt, v uint32) {
	if r.inRange(addr, 4) {
		binary.LittleEndian.PutUint32(r.mem[addr:], v)
	}
}

// Slice returns a copy of n bytes starting at addr
func (r *RAM) Slice(addr PhysPt, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = r.ReadB(addr + PhysPt(i))
	}
	return b
}

func (r *RAM) SetVec(vec uint8, pt RealPt) {
	r.WriteD(PhysPt(vec)<<2, uint32(pt))
}

func (r *RAM) Vec(vec uint8) RealPt {
	return RealPt(r.ReadD(PhysPt(vec) << 2))
}
