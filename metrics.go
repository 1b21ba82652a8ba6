/*
 * Multiplex metrics
 *
 * Copyright (C) 2023 Lawrence Woodman <lwoodman@vlifesystems.com>
 *
 * Licensed under an MIT licence.  Please see LICENCE.md for details.
 */

package dosmux

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts INT 2Fh traffic.  A nil *Metrics records nothing.
type Metrics struct {
	calls            *prometheus.CounterVec
	protocolWarnings prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dosmux_multiplex_calls_total",
				Help: "INT 2Fh calls by function and result.",
			},
			[]string{"function", "result"},
		),
		protocolWarnings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "dosmux_broadcast_protocol_warnings_total",
				Help: "Windows init broadcasts modified on the way down the chain.",
			},
		),
	}
	for _, c := range []prometheus.Collector{m.calls, m.protocolWarnings} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) call(ax uint16, handled bool) {
	if m == nil {
		return
	}
	result := "unhandled"
	if handled {
		result = "handled"
	}
	m.calls.WithLabelValues(hex16(ax), result).Inc()
}

func (m *Metrics) protocolWarning() {
	if m == nil {
		return
	}
	m.protocolWarnings.Inc()
}
