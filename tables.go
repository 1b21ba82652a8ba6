/*
 * DOS kernel tables
 *
 * Copyright (C) 2023 Lawrence Woodman <lwoodman@vlifesystems.com>
 *
 * Licensed under an MIT licence.  Please see LICENCE.md for details.
 */

package dosmux

type DOSTables interface {
	// InfoBlock returns the address of the DOS list of lists.  The dword
	// at +4 points to the first System File Table.
	InfoBlock() RealPt
	// DPB returns the drive parameter block pointer for drive, 0 is A:
	DPB(drive uint8) RealPt
}

// Tables keeps the info block and DPBs at fixed segments
type Tables struct {
	InfoBlockPt RealPt
	DPBSeg      uint16
}

func (t *Tables) InfoBlock() RealPt {
	return t.InfoBlockPt
}

func (t *Tables) DPB(drive uint8) RealPt {
	return RealMake(t.DPBSeg, uint16(drive))
}
