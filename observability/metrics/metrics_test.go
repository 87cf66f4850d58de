package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRegistry struct{ points, callbacks int }

func (f fixedRegistry) Points() int    { return f.points }
func (f fixedRegistry) Callbacks() int { return f.callbacks }

func TestRegistryCollector(t *testing.T) {
	c := NewRegistryCollector("test", fixedRegistry{points: 2, callbacks: 5})
	require.NoError(t, RegisterCollector(c))
	t.Cleanup(func() { UnregisterCollector(c) })

	assert.Equal(t, 2, testutil.CollectAndCount(c))

	families, err := Gatherer().Gather()
	require.NoError(t, err)
	found := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if m.GetGauge() != nil {
				found[mf.GetName()] = m.GetGauge().GetValue()
			}
		}
	}
	assert.Equal(t, 2.0, found["xhook_hook_points"])
	assert.Equal(t, 5.0, found["xhook_hook_callbacks"])
}

func TestHandler_ServesCounters(t *testing.T) {
	DispatchTotal.WithLabelValues(OutcomeOriginal).Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), "xhook_hook_dispatch_total")
}
