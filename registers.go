/*
 * Guest CPU register context and real mode pointers
 *
 * Copyright (C) 2023 Lawrence Woodman <lwoodman@vlifesystems.com>
 *
 * Licensed under an MIT licence.  Please see LICENCE.md for details.
 */

package dosmux

import "fmt"

// Carry flag bit in Registers.Flags
const FlagCarry = 0x0001

// Registers is the guest CPU state at the moment of an interrupt.  It is
// handed by pointer to every multiplex handler and is the only way a
// handler returns results to the guest.
type Registers struct {
	AX, BX, CX, DX uint16
	SI, DI, BP, SP uint16
	CS, DS, ES, SS uint16
	Flags          uint16
}

// AH returns the high byte of AX
func (r *Registers) AH() uint8 {
	return uint8(r.AX >> 8)
}

// AL returns the low byte of AX
func (r *Registers) AL() uint8 {
	return uint8(r.AX)
}

// CF returns whether the carry flag is set
func (r *Registers) CF() bool {
	return r.Flags&FlagCarry != 0
}

func (r *Registers) String() string {
	return fmt.Sprintf("AX=%04X BX=%04X CX=%04X DX=%04X SI=%04X DI=%04X BP=%04X SP=%04X "+
		"CS=%04X DS=%04X ES=%04X SS=%04X FL=%04X",
		r.AX, r.BX, r.CX, r.DX, r.SI, r.DI, r.BP, r.SP,
		r.CS, r.DS, r.ES, r.SS, r.Flags)
}

// RealPt is a real mode segment:offset pointer packed as seg<<16 | off
type RealPt uint32

// PhysPt is a linear guest address
type PhysPt uint32

func RealMake(seg, off uint16) RealPt {
	return RealPt(uint32(seg)<<16 | uint32(off))
}

func RealSeg(pt RealPt) uint16 {
	return uint16(pt >> 16)
}

func RealOff(pt RealPt) uint16 {
	return uint16(pt)
}

// Real2Phys translates a segment:offset pointer to a linear address
func Real2Phys(pt RealPt) PhysPt {
	return PhysPt(uint32(RealSeg(pt))<<4 + uint32(RealOff(pt)))
}

func (pt RealPt) String() string {
	return fmt.Sprintf("%04X:%04X", RealSeg(pt), RealOff(pt))
}
