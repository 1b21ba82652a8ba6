/*
 * A multiplex handler interface
 *
 * Handlers are offered every INT 2Fh call in turn and claim the ones
 * they service.
 *
 * Copyright (C) 2023 Lawrence Woodman <lwoodman@vlifesystems.com>
 *
 * Licensed under an MIT licence.  Please see LICENCE.md for details.
 */

package dosmux

type MultiplexHandler interface {
	// Multiplex services the call described by regs and reports whether
	// it did.  A handler that returns false must leave regs untouched.
	Multiplex(regs *Registers) bool
}
