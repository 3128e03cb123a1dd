// Package realtime fans out PatientReport change events over Redis
// pub/sub so report list views can refresh without polling.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ReportEvent describes a row-level change on a patient report.
type ReportEvent struct {
	Action    string `json:"action"` // created, updated, deleted
	ReportID  string `json:"reportId"`
	PatientID string `json:"patientId"`
	Status    string `json:"status,omitempty"`
	Title     string `json:"title,omitempty"`
}

// Hub publishes and subscribes report events, one channel per patient.
type Hub struct {
	rdb *redis.Client
	log *zap.Logger
}

// NewHub creates a Hub over the given Redis client.
func NewHub(rdb *redis.Client, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{rdb: rdb, log: log}
}

func channelFor(patientID string) string {
	return fmt.Sprintf("reports:%s", patientID)
}

// PublishReportEvent broadcasts the event to subscribers of the
// patient's channel. Publish failures are logged, not propagated: the
// write that triggered the event has already been committed.
func (h *Hub) PublishReportEvent(ctx context.Context, ev ReportEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("failed to encode report event", zap.Error(err))
		return
	}
	if err := h.rdb.Publish(ctx, channelFor(ev.PatientID), payload).Err(); err != nil {
		h.log.Error("failed to publish report event",
			zap.String("patient_id", ev.PatientID),
			zap.Error(err))
	}
}

// SubscribeReports subscribes to the patient's report channel. The
// returned channel closes when ctx is cancelled or the subscription is
// torn down via the returned cancel function.
func (h *Hub) SubscribeReports(ctx context.Context, patientID string) (<-chan ReportEvent, func()) {
	sub := h.rdb.Subscribe(ctx, channelFor(patientID))
	events := make(chan ReportEvent)

	go func() {
		defer close(events)
		for msg := range sub.Channel() {
			var ev ReportEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				h.log.Warn("dropping malformed report event", zap.Error(err))
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		if err := sub.Close(); err != nil {
			h.log.Warn("failed to close report subscription", zap.Error(err))
		}
	}
	return events, cancel
}
