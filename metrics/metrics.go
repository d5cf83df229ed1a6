// Copyright 2019 The go-xgp Authors
// This file is part of the go-xgp library.
//
// The go-xgp library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-xgp library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-xgp library. If not, see <http://www.gnu.org/licenses/>.

// Package metrics re-exports the go-metrics registry types used by the
// node so call sites can register meters without depending on the backing
// library directly.
package metrics

import "github.com/rcrowley/go-metrics"

type (
	Counter = metrics.Counter
	Gauge   = metrics.Gauge
	Meter   = metrics.Meter
	Timer   = metrics.Timer
	Registry = metrics.Registry
)

// DefaultRegistry collects every metric registered through this package.
var DefaultRegistry = metrics.DefaultRegistry

func NewRegisteredCounter(name string, r Registry) Counter {
	return metrics.NewRegisteredCounter(name, r)
}

func NewRegisteredGauge(name string, r Registry) Gauge {
	return metrics.NewRegisteredGauge(name, r)
}

func NewRegisteredMeter(name string, r Registry) Meter {
	return metrics.NewRegisteredMeter(name, r)
}

func NewRegisteredTimer(name string, r Registry) Timer {
	return metrics.NewRegisteredTimer(name, r)
}
