// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics provides the node's counter, gauge, and averager
// abstractions. Every metric a Registry creates is registered with an
// underlying prometheus registerer and additionally mirrored locally,
// so consensus code can read current values directly without going
// through a scrape endpoint.
package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Counter tracks a monotonically increasing count.
type Counter interface {
	Inc()
	Add(delta int64)
	Read() int64
}

// Gauge tracks a value that can go up or down.
type Gauge interface {
	Set(value float64)
	Add(delta float64)
	Read() float64
}

// Averager tracks a running average of observed samples.
type Averager interface {
	Observe(value float64)
	Read() float64
}

type counter struct {
	mu    sync.RWMutex
	value int64

	prom prometheus.Counter
}

func (c *counter) Inc() {
	c.Add(1)
}

func (c *counter) Add(delta int64) {
	c.mu.Lock()
	c.value += delta
	c.mu.Unlock()
	if delta > 0 {
		c.prom.Add(float64(delta))
	}
}

func (c *counter) Read() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

type gauge struct {
	mu    sync.RWMutex
	value float64

	prom prometheus.Gauge
}

func (g *gauge) Set(value float64) {
	g.mu.Lock()
	g.value = value
	g.mu.Unlock()
	g.prom.Set(value)
}

func (g *gauge) Add(delta float64) {
	g.mu.Lock()
	g.value += delta
	g.mu.Unlock()
	g.prom.Add(delta)
}

func (g *gauge) Read() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.value
}

// averager exposes the conventional count/sum collector pair, plus a
// locally computed mean for in-process readers.
type averager struct {
	mu    sync.RWMutex
	sum   float64
	count float64

	promCount prometheus.Counter
	promSum   prometheus.Gauge
}

func (a *averager) Observe(value float64) {
	a.mu.Lock()
	a.sum += value
	a.count++
	a.mu.Unlock()
	a.promCount.Inc()
	a.promSum.Add(value)
}

func (a *averager) Read() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.count == 0 {
		return 0
	}
	return a.sum / a.count
}

// Registry creates and tracks named metrics.
type Registry interface {
	NewCounter(name string) Counter
	NewGauge(name string) Gauge
	NewAverager(name string) Averager
	GetCounter(name string) (Counter, error)
	GetGauge(name string) (Gauge, error)
	GetAverager(name string) (Averager, error)
}

type registry struct {
	reg prometheus.Registerer

	mu        sync.RWMutex
	counters  map[string]Counter
	gauges    map[string]Gauge
	averagers map[string]Averager
}

// NewRegistry returns a Registry whose metrics register with reg. A
// nil reg gets a private prometheus registry, which keeps the metrics
// readable in-process without exposing them anywhere.
func NewRegistry(reg prometheus.Registerer) Registry {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &registry{
		reg:       reg,
		counters:  make(map[string]Counter),
		gauges:    make(map[string]Gauge),
		averagers: make(map[string]Averager),
	}
}

// register tolerates duplicate registration: the metric keeps working
// through its local mirror either way.
func (r *registry) register(c prometheus.Collector) {
	_ = r.reg.Register(c)
}

func (r *registry) NewCounter(name string) Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := &counter{prom: prometheus.NewCounter(prometheus.CounterOpts{
		Name: name,
		Help: "Total " + name,
	})}
	r.register(c.prom)
	r.counters[name] = c
	return c
}

func (r *registry) NewGauge(name string) Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := &gauge{prom: prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: "Current " + name,
	})}
	r.register(g.prom)
	r.gauges[name] = g
	return g
}

func (r *registry) NewAverager(name string) Averager {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := &averager{
		promCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: name + "_count",
			Help: "Total observations of " + name,
		}),
		promSum: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: name + "_sum",
			Help: "Sum of " + name,
		}),
	}
	r.register(a.promCount)
	r.register(a.promSum)
	r.averagers[name] = a
	return a
}

func (r *registry) GetCounter(name string) (Counter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.counters[name]
	if !ok {
		return nil, fmt.Errorf("counter %q not found", name)
	}
	return c, nil
}

func (r *registry) GetGauge(name string) (Gauge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.gauges[name]
	if !ok {
		return nil, fmt.Errorf("gauge %q not found", name)
	}
	return g, nil
}

func (r *registry) GetAverager(name string) (Averager, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.averagers[name]
	if !ok {
		return nil, fmt.Errorf("averager %q not found", name)
	}
	return a, nil
}
