package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// counterValue sums every series of the named family in the default registry.
func counterValue(t *testing.T, name string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestCounters(t *testing.T) {
	before := counterValue(t, "quotebook_ingest_total")
	Ingest(OutcomeTooLarge)
	require.Equal(t, before+1, counterValue(t, "quotebook_ingest_total"))

	draws := counterValue(t, "quotebook_selection_draws_total")
	Draw()
	Draw()
	require.Equal(t, draws+2, counterValue(t, "quotebook_selection_draws_total"))

	retries := counterValue(t, "quotebook_ingest_retries_total")
	Retry()
	require.Equal(t, retries+1, counterValue(t, "quotebook_ingest_retries_total"))
}
