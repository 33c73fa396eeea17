package predict

import (
	"time"

	"buste/internal/core"
)

// Engine is the stateless prediction service. It exists as an interface
// so callers can mock the whole engine in tests; the implementation is a
// thin orchestrator over the pure functions in this package.
type Engine interface {
	// PredictEnvelope runs the full projection, classification and
	// suggestion pipeline for one envelope.
	PredictEnvelope(env core.Envelope, sources []core.IncomeSource, now time.Time) core.EnvelopePrediction

	// PredictAll runs PredictEnvelope for every envelope, preserving
	// input order.
	PredictAll(envs []core.Envelope, sources []core.IncomeSource, now time.Time) []core.EnvelopePrediction
}

type engine struct {
	policy Policy
}

// NewEngine builds an Engine with the given policy thresholds.
func NewEngine(policy Policy) Engine {
	return engine{policy: policy}
}

func (e engine) PredictEnvelope(env core.Envelope, sources []core.IncomeSource, now time.Time) core.EnvelopePrediction {
	days := e.policy.NoDueDateDays
	if env.HasDueDate() {
		days = daysBetween(now, env.DueDate)
	}

	proj := e.policy.Project(env, sources, now, time.Time{})

	return core.EnvelopePrediction{
		EnvelopeID:       env.ID,
		Name:             env.Name,
		CurrentBalance:   env.CurrentBalance,
		ProjectedBalance: proj.ProjectedBalance,
		TargetAmount:     proj.TargetAmount,
		Gap:              proj.Gap,
		Status:           e.policy.Classify(proj.Gap, days),
		DaysUntilDue:     days,
		FutureIncome:     proj.FutureIncome,
		Suggestions:      e.policy.Suggest(proj.Gap, env, sources, days),
	}
}

func (e engine) PredictAll(envs []core.Envelope, sources []core.IncomeSource, now time.Time) []core.EnvelopePrediction {
	out := make([]core.EnvelopePrediction, len(envs))
	for i, env := range envs {
		out[i] = e.PredictEnvelope(env, sources, now)
	}
	return out
}
