/*
 * Interrupt callbacks
 *
 * A callback is a host function that the guest reaches through a real
 * mode pointer, normally installed in the interrupt vector table.
 *
 * Copyright (C) 2023 Lawrence Woodman <lwoodman@vlifesystems.com>
 *
 * Licensed under an MIT licence.  Please see LICENCE.md for details.
 */

package dosmux

import (
	"errors"
	"fmt"
)

type CallbackID uint16

// InterruptFunc is the host side of an interrupt callback
type InterruptFunc func(regs *Registers)

type Callbacks interface {
	// Allocate reserves a callback slot
	Allocate() (CallbackID, error)
	// Setup binds fn to an allocated slot
	Setup(id CallbackID, name string, fn InterruptFunc) error
	// RealPointer returns the guest address of the slot's entry point
	RealPointer(id CallbackID) RealPt
	// SetCarry sets or clears the carry flag returned to the guest
	SetCarry(regs *Registers, set bool)
}

const (
	callbackSeg  = 0xf000
	callbackBase = 0x1000
	callbackSize = 0x10
	maxCallbacks = 128
)

var ErrNoCallbacks = errors.New("no free callbacks")

type callback struct {
	name string
	fn   InterruptFunc
}

// CallbackTable is a fixed set of callback slots in the BIOS segment
type CallbackTable struct {
	slots []*callback
}

func NewCallbackTable() *CallbackTable {
	return &CallbackTable{}
}

func (c *CallbackTable) Allocate() (CallbackID, error) {
	if len(c.slots) >= maxCallbacks {
		return 0, ErrNoCallbacks
	}
	c.slots = append(c.slots, &callback{})
	return CallbackID(len(c.slots) - 1), nil
}

func (c *CallbackTable) Setup(id CallbackID, name string, fn InterruptFunc) error {
	if int(id) >= len(c.slots) {
		return fmt.Errorf("callback: %d not allocated", id)
	}
	c.slots[id].name = name
	c.slots[id].fn = fn
	return nil
}

func (c *CallbackTable) RealPointer(id CallbackID) RealPt {
	return RealMake(callbackSeg, callbackBase+uint16(id)*callbackSize)
}

func (c *CallbackTable) SetCarry(regs *Registers, set bool) {
	if set {
		regs.Flags |= FlagCarry
	} else {
		regs.Flags &^= FlagCarry
	}
}

// Lookup returns the callback whose entry point is pt
func (c *CallbackTable) Lookup(pt RealPt) (InterruptFunc, string, bool) {
	if RealSeg(pt) != callbackSeg || RealOff(pt) < callbackBase {
		return nil, "", false
	}
	ofs := RealOff(pt) - callbackBase
	if ofs%callbackSize != 0 {
		return nil, "", false
	}
	id := int(ofs / callbackSize)
	if id >= len(c.slots) || c.slots[id].fn == nil {
		return nil, "", false
	}
	return c.slots[id].fn, c.slots[id].name, true
}
