/*
 * Installs the DOS multiplex (INT 2Fh) and network (INT 2Ah) interrupts
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

const (
	VecMultiplex = 0x2f
	VecNetwork   = 0x2a
)

type SetupConfig struct {
	Callbacks Callbacks
	Vectors   VectorTable
	Registry  *Registry
	// Handler is registered into Registry, normally a *Dispatcher
	Handler MultiplexHandler
	Log     *zap.Logger
	Metrics *Metrics
}

// Setup installs the interrupts.  It must only be called once per machine
// as the callbacks it allocates are never released.
func Setup(cfg SetupConfig) error {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("multiplex")

	int2f := func(regs *Registers) {
		ax := regs.AX
		if cfg.Registry.Dispatch(regs) {
			cfg.Metrics.call(ax, true)
			return
		}
		cfg.Metrics.call(ax, false)
		log.Error("multiplex unhandled call", zap.String("ax", hex16(ax)))
	}
	if err := install(cfg.Callbacks, cfg.Vectors, VecMultiplex, "DOS Int 2f", int2f); err != nil {
		return err
	}
	cfg.Registry.Register(cfg.Handler)

	// Reserved for network services
	int2a := func(regs *Registers) {}
	return install(cfg.Callbacks, cfg.Vectors, VecNetwork, "DOS Int 2a", int2a)
}

func install(cb Callbacks, vt VectorTable, vec uint8, name string, fn InterruptFunc) error {
	id, err := cb.Allocate()
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := cb.Setup(id, name, fn); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	vt.SetVec(vec, cb.RealPointer(id))
	return nil
}
