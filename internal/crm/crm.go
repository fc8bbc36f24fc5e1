// Package crm pushes saved leads to external CRMs.
package crm

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Sink writes a lead to an external system and returns its ID there.
type Sink interface {
	Name() string
	Push(ctx context.Context, lead model.Lead) (string, error)
}

// PushResult is the outcome of one lead in PushAll.
type PushResult struct {
	LeadID     string `json:"lead_id"`
	ExternalID string `json:"external_id,omitempty"`
	Err        error  `json:"-"`
}

// PushAll pushes leads one at a time. Per-lead failures are collected in
// the results; only context cancellation stops the run early.
func PushAll(ctx context.Context, sink Sink, leads []model.Lead) ([]PushResult, error) {
	log := zap.L().With(zap.String("sink", sink.Name()), zap.Int("leads", len(leads)))

	results := make([]PushResult, 0, len(leads))
	failed := 0
	for _, l := range leads {
		if err := ctx.Err(); err != nil {
			return results, eris.Wrap(err, "crm: push canceled")
		}
		id, err := sink.Push(ctx, l)
		if err != nil {
			failed++
			log.Warn("crm: push failed", zap.String("lead_id", l.ID), zap.Error(err))
		}
		results = append(results, PushResult{LeadID: l.ID, ExternalID: id, Err: err})
	}

	log.Info("crm: push complete", zap.Int("failed", failed))
	return results, nil
}
