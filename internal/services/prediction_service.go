// Package services wires the pure engine to storage and messaging: the
// prediction service feeds it snapshots, the payment service gives the
// snowball distributor the serialization it cannot provide itself.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"buste/internal/core"
	"buste/internal/predict"
)

// SnapshotReader is the slice of the repository the prediction service
// needs. Small on purpose so tests can fake it.
type SnapshotReader interface {
	ListEnvelopes(ctx context.Context) ([]core.Envelope, error)
	GetEnvelope(ctx context.Context, id int64) (core.Envelope, error)
	ListIncomeSources(ctx context.Context) ([]core.IncomeSource, error)
}

// PredictionService loads the envelope/income snapshot and runs the
// engine over it. The engine is pure, so per-envelope computation fans
// out without coordination.
type PredictionService struct {
	store  SnapshotReader
	engine predict.Engine
}

func NewPredictionService(store SnapshotReader, engine predict.Engine) *PredictionService {
	return &PredictionService{store: store, engine: engine}
}

// PredictAll computes a prediction for every envelope as of now.
func (s *PredictionService) PredictAll(ctx context.Context, now time.Time) ([]core.EnvelopePrediction, error) {
	envs, err := s.store.ListEnvelopes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load envelopes: %w", err)
	}
	sources, err := s.store.ListIncomeSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("load income sources: %w", err)
	}

	preds := make([]core.EnvelopePrediction, len(envs))
	g, _ := errgroup.WithContext(ctx)
	for i, env := range envs {
		g.Go(func() error {
			preds[i] = s.engine.PredictEnvelope(env, sources, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Predictions computed",
		"envelopes", len(envs),
		"income_sources", len(sources),
		"as_of", now.Format("2006-01-02"))
	return preds, nil
}

// PredictEnvelope computes the prediction for a single envelope.
func (s *PredictionService) PredictEnvelope(ctx context.Context, envelopeID int64, now time.Time) (core.EnvelopePrediction, error) {
	env, err := s.store.GetEnvelope(ctx, envelopeID)
	if err != nil {
		return core.EnvelopePrediction{}, fmt.Errorf("load envelope: %w", err)
	}
	sources, err := s.store.ListIncomeSources(ctx)
	if err != nil {
		return core.EnvelopePrediction{}, fmt.Errorf("load income sources: %w", err)
	}
	return s.engine.PredictEnvelope(env, sources, now), nil
}
