package observability

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/event"
	"github.com/ignatzorin/escrow-marketplace/internal/logger"
)

func TestEventRecorder_CountsAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger.Log.SetOutput(&buf)
	t.Cleanup(logger.Discard)

	recorder := NewEventRecorder()
	m := Metrics()
	beforeEvents := testutil.ToFloat64(m.events.WithLabelValues(event.TypeMilestoneReleased))
	beforeVolume := testutil.ToFloat64(m.volume.WithLabelValues(event.TypeMilestoneReleased))

	recorder.Emit(event.Event{
		Type:       event.TypeMilestoneReleased,
		JobID:      7,
		Principal:  uuid.New(),
		Amount:     300,
		Attributes: map[string]string{"milestone": "1"},
	})

	assert.Equal(t, beforeEvents+1, testutil.ToFloat64(m.events.WithLabelValues(event.TypeMilestoneReleased)))
	assert.Equal(t, beforeVolume+300, testutil.ToFloat64(m.volume.WithLabelValues(event.TypeMilestoneReleased)))
	assert.Contains(t, buf.String(), "milestone.released")
	assert.Contains(t, buf.String(), "job_id=7")
}

func TestMetrics_ObserveRequest(t *testing.T) {
	m := Metrics()
	before := testutil.ToFloat64(m.requests.WithLabelValues("/api/jobs/:id", "GET", "404"))

	m.ObserveRequest("/api/jobs/:id", "GET", 404, 5*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(m.requests.WithLabelValues("/api/jobs/:id", "GET", "404")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *marketplaceMetrics
	assert.NotPanics(t, func() {
		m.RecordEvent("x", 1)
		m.ObserveRequest("", "GET", 200, time.Millisecond)
		m.RecordThrottle("")
	})
}
