/*
 * The multiplex handler chain
 *
 * Copyright (C) 2023 Lawrence Woodman <lwoodman@vlifesystems.com>
 *
 * Licensed under an MIT licence.  Please see LICENCE.md for details.
 */

package dosmux

// Registry is the ordered INT 2Fh handler chain.  The most recently
// registered handler is offered a call first so that a late loaded
// extension can intercept calls before those loaded earlier.
//
// Handlers are compared by identity so they must be comparable,
// e.g. pointers.
type Registry struct {
	handlers []MultiplexHandler
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register puts h at the front of the chain.  Registering the same
// handler twice gives two entries.
func (r *Registry) Register(h MultiplexHandler) {
	r.handlers = append([]MultiplexHandler{h}, r.handlers...)
}

// Unregister removes the first entry for h, if any
func (r *Registry) Unregister(h MultiplexHandler) {
	for i, e := range r.handlers {
		if e == h {
			r.handlers = append(r.handlers[:i:i], r.handlers[i+1:]...)
			return
		}
	}
}

// Dispatch offers regs to each handler in turn until one claims it.
// Returns false if none did.
func (r *Registry) Dispatch(regs *Registers) bool {
	for _, h := range r.handlers {
		if h.Multiplex(regs) {
			return true
		}
	}
	return false
}

func (r *Registry) Len() int {
	return len(r.handlers)
}
