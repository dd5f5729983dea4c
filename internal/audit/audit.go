// Package audit records application status transitions for ops search.
// Audit writes are non-critical: failures are logged, never surfaced.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"loanflow/internal/common/logger"
	"loanflow/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// Recorder receives status-transition events from the orchestrator.
type Recorder interface {
	RecordTransition(ctx context.Context, applicationID string, from, to models.Status, reason string)
}

// Event is the indexed audit document.
type Event struct {
	ApplicationID string        `json:"applicationId"`
	From          models.Status `json:"from"`
	To            models.Status `json:"to"`
	Reason        string        `json:"reason"`
	At            time.Time     `json:"at"`
}

// ESRecorder indexes audit events into Elasticsearch.
type ESRecorder struct {
	es     *elasticsearch.Client
	index  string
	logger logger.Logger
}

var _ Recorder = (*ESRecorder)(nil)

func NewESRecorder(es *elasticsearch.Client, index string, log logger.Logger) *ESRecorder {
	return &ESRecorder{
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "audit"}),
	}
}

func (r *ESRecorder) RecordTransition(ctx context.Context, applicationID string, from, to models.Status, reason string) {
	doc, err := json.Marshal(Event{
		ApplicationID: applicationID,
		From:          from,
		To:            to,
		Reason:        reason,
		At:            time.Now().UTC(),
	})
	if err != nil {
		r.logger.Warn("failed to marshal audit event", map[string]interface{}{
			"error":         err.Error(),
			"applicationId": applicationID,
		})
		return
	}

	res, err := r.es.Index(
		r.index,
		bytes.NewReader(doc),
		r.es.Index.WithContext(ctx),
	)
	if err != nil {
		r.logger.Warn("audit index failed", map[string]interface{}{
			"error":         err.Error(),
			"applicationId": applicationID,
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		r.logger.Warn("audit index error response", map[string]interface{}{
			"status":        res.Status(),
			"applicationId": applicationID,
		})
	}
}

// NopRecorder discards audit events (tests, audit disabled).
type NopRecorder struct{}

var _ Recorder = NopRecorder{}

func (NopRecorder) RecordTransition(context.Context, string, models.Status, models.Status, string) {}
