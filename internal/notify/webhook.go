// Package notify delivers outbound webhooks when a patient report
// becomes ready, so external systems (SMS gateway, portal) can react
// without polling the API.
package notify

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ReportReadyPayload is the body POSTed to the configured webhook.
type ReportReadyPayload struct {
	ReportID           string    `json:"reportId"`
	PatientID          string    `json:"patientId"`
	RegistrationNumber string    `json:"registrationNumber,omitempty"`
	Title              string    `json:"title"`
	ReadyAt            time.Time `json:"readyAt"`
}

// Notifier posts report-ready events to a webhook URL. A Notifier with
// an empty URL is disabled and all calls are no-ops.
type Notifier struct {
	client *resty.Client
	url    string
	log    *zap.Logger
}

// NewNotifier creates a Notifier for the given webhook URL.
func NewNotifier(url string, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second)
	return &Notifier{client: client, url: url, log: log}
}

// Enabled reports whether a webhook URL is configured.
func (n *Notifier) Enabled() bool { return n.url != "" }

// ReportReady delivers the payload. Delivery failures are logged and
// returned but callers treat them as non-fatal: the report itself has
// already been persisted.
func (n *Notifier) ReportReady(ctx context.Context, payload ReportReadyPayload) error {
	if !n.Enabled() {
		return nil
	}
	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(n.url)
	if err != nil {
		n.log.Error("report webhook delivery failed",
			zap.String("report_id", payload.ReportID),
			zap.Error(err))
		return err
	}
	if resp.IsError() {
		n.log.Warn("report webhook returned non-2xx",
			zap.String("report_id", payload.ReportID),
			zap.Int("status", resp.StatusCode()))
	}
	return nil
}
