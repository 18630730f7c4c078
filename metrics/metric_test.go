// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// gatherValue returns the single-sample value of the named metric
// family, failing the test if it was never registered.
func gatherValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			require.Len(t, mf.GetMetric(), 1)
			m := mf.GetMetric()[0]
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %q not registered", name)
	return 0
}

func TestCounterRegistersAndMirrors(t *testing.T) {
	promReg := prometheus.NewRegistry()
	reg := NewRegistry(promReg)

	c := reg.NewCounter("poai_test_blocks_total")
	c.Inc()
	c.Add(2)

	require.Equal(t, int64(3), c.Read())
	require.Equal(t, 3.0, gatherValue(t, promReg, "poai_test_blocks_total"))

	got, err := reg.GetCounter("poai_test_blocks_total")
	require.NoError(t, err)
	require.Equal(t, int64(3), got.Read())
}

func TestGaugeRegistersAndMirrors(t *testing.T) {
	promReg := prometheus.NewRegistry()
	reg := NewRegistry(promReg)

	g := reg.NewGauge("poai_test_pending")
	g.Set(5)
	g.Add(-2)

	require.Equal(t, 3.0, g.Read())
	require.Equal(t, 3.0, gatherValue(t, promReg, "poai_test_pending"))
}

func TestAveragerRegistersCountAndSum(t *testing.T) {
	promReg := prometheus.NewRegistry()
	reg := NewRegistry(promReg)

	a := reg.NewAverager("poai_test_latency_ms")
	a.Observe(10)
	a.Observe(30)

	require.Equal(t, 20.0, a.Read())
	require.Equal(t, 2.0, gatherValue(t, promReg, "poai_test_latency_ms_count"))
	require.Equal(t, 40.0, gatherValue(t, promReg, "poai_test_latency_ms_sum"))
}

func TestGetUnknownMetricFails(t *testing.T) {
	reg := NewRegistry(nil)
	_, err := reg.GetCounter("missing")
	require.Error(t, err)
	_, err = reg.GetGauge("missing")
	require.Error(t, err)
	_, err = reg.GetAverager("missing")
	require.Error(t, err)
}
