/*
 * Windows virtual device names
 *
 * Copyright (C) 2023 Lawrence Woodman <lwoodman@vlifesystems.com>
 *
 * Licensed under an MIT licence.  Please see LICENCE.md for details.
 */

package dosmux

import "fmt"

var vxdNames = map[uint16]string{
	0x0006: "V86MMGR",
	0x000c: "VMD",
	0x000d: "VKD",
	0x0010: "BLOCKDEV",
	0x0014: "VNETBIOS",
	0x0015: "DOSMGR",
	0x0018: "VMPOLL",
	0x0021: "PAGEFILE",
	0x002d: "W32S",
	0x0040: "IFSMGR",
	0x0446: "VADLIBD",
	0x0484: "IFSMGR",
	0x0487: "NWSUP",
	0x28a1: "PHARLAP",
	0x7a5f: "SIWVID",
}

// VxDName returns the name of a Windows virtual device from its ID
func VxDName(id uint16) (string, bool) {
	name, ok := vxdNames[id]
	return name, ok
}

func hex16(v uint16) string {
	return fmt.Sprintf("%04X", v)
}
