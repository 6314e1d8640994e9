package diag

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dijkstracula/plock/plocktrace"
)

func TestHandlerCountsAcquisitionsAndContention(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := Register(reg)
	h := m.Handler()

	h(plocktrace.Event{Op: plocktrace.OpTakeR, Blocked: false})
	h(plocktrace.Event{Op: plocktrace.OpTakeR, Blocked: true, Wait: 5 * time.Millisecond})

	families, err := reg.Gather()
	require.NoError(t, err)

	var total, contended float64
	for _, f := range families {
		switch f.GetName() {
		case "plock_acquisitions_total":
			total = sumCounter(f)
		case "plock_contended_acquisitions_total":
			contended = sumCounter(f)
		}
	}

	assert.Equal(t, float64(2), total)
	assert.Equal(t, float64(1), contended)
}

func sumCounter(f *dto.MetricFamily) float64 {
	var total float64
	for _, m := range f.GetMetric() {
		total += m.GetCounter().GetValue()
	}
	return total
}
