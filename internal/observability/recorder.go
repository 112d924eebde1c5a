package observability

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/event"
	"github.com/ignatzorin/escrow-marketplace/internal/logger"
)

// EventRecorder пишет доменные события в лог и метрики.
type EventRecorder struct {
	log     *logrus.Logger
	metrics *marketplaceMetrics
}

func NewEventRecorder() *EventRecorder {
	return &EventRecorder{log: logger.Log, metrics: Metrics()}
}

func (r *EventRecorder) Emit(e event.Event) {
	fields := logrus.Fields{"event": e.Type}
	if e.JobID != 0 {
		fields["job_id"] = e.JobID
	}
	if e.Principal != uuid.Nil {
		fields["principal"] = e.Principal.String()
	}
	if e.Amount != 0 {
		fields["amount"] = e.Amount
	}
	for k, v := range e.Attributes {
		fields[k] = v
	}
	r.log.WithFields(fields).Info("событие маркетплейса")
	r.metrics.RecordEvent(e.Type, e.Amount)
}
