package predict

import (
	"reflect"
	"testing"

	"buste/internal/core"
)

func TestEnginePredictEnvelope(t *testing.T) {
	eng := NewEngine(DefaultPolicy())
	now := date(2024, 3, 1)

	env := core.Envelope{
		ID:             10,
		Name:           "Car insurance",
		TargetAmount:   core.NewMoney(100000),
		DueDate:        date(2024, 4, 30),
		CurrentBalance: core.NewMoney(20000),
	}
	sources := []core.IncomeSource{{
		ID:        1,
		Name:      "Salary",
		Frequency: core.Fortnightly,
		NextDate:  now,
		Allocations: []core.Allocation{
			{EnvelopeID: 10, Amount: core.NewMoney(15000)},
		},
	}}

	pred := eng.PredictEnvelope(env, sources, now)

	if pred.DaysUntilDue != 60 {
		t.Errorf("days until due = %d, want 60", pred.DaysUntilDue)
	}
	if pred.ProjectedBalance.Cents != 95000 {
		t.Errorf("projected = %d, want 95000", pred.ProjectedBalance.Cents)
	}
	if pred.Gap.Cents != 5000 {
		t.Errorf("gap = %d, want 5000", pred.Gap.Cents)
	}
	if pred.Status != core.StatusBehind {
		t.Errorf("status = %s, want %s", pred.Status, core.StatusBehind)
	}
	if len(pred.Suggestions) == 0 {
		t.Error("an underfunded envelope must carry suggestions")
	}
}

func TestEngineNoDueDateDefaults(t *testing.T) {
	eng := NewEngine(DefaultPolicy())
	now := date(2024, 3, 1)

	env := core.Envelope{
		ID:           10,
		Name:         "Groceries",
		TargetAmount: core.NewMoney(40000),
	}

	pred := eng.PredictEnvelope(env, nil, now)
	if pred.DaysUntilDue != 999 {
		t.Errorf("days until due = %d, want the 999 stand-in", pred.DaysUntilDue)
	}
	// With 999 days the shortfall can never classify as critical.
	if pred.Status != core.StatusBehind {
		t.Errorf("status = %s, want %s", pred.Status, core.StatusBehind)
	}
}

func TestEnginePredictAllKeepsOrder(t *testing.T) {
	eng := NewEngine(DefaultPolicy())
	now := date(2024, 3, 1)

	envs := []core.Envelope{
		{ID: 3, Name: "C", TargetAmount: core.NewMoney(100)},
		{ID: 1, Name: "A", TargetAmount: core.NewMoney(100)},
		{ID: 2, Name: "B", TargetAmount: core.NewMoney(100)},
	}

	preds := eng.PredictAll(envs, nil, now)
	if len(preds) != 3 {
		t.Fatalf("expected 3 predictions, got %d", len(preds))
	}
	for i, env := range envs {
		if preds[i].EnvelopeID != env.ID {
			t.Errorf("prediction %d is for envelope %d, want %d", i, preds[i].EnvelopeID, env.ID)
		}
	}
}

func TestEngineDeterministic(t *testing.T) {
	eng := NewEngine(DefaultPolicy())
	now := date(2024, 3, 1)

	envs := []core.Envelope{
		{ID: 10, Name: "Rent", TargetAmount: core.NewMoney(90000), DueDate: date(2024, 3, 28), CurrentBalance: core.NewMoney(-500)},
		{ID: 11, Name: "Groceries", BillAmount: core.NewMoney(12000), BillFrequency: core.Weekly},
	}
	sources := []core.IncomeSource{{
		ID: 1, Name: "Salary", Frequency: core.Weekly, NextDate: date(2024, 3, 4),
		Allocations: []core.Allocation{
			{EnvelopeID: 10, Amount: core.NewMoney(20000)},
			{EnvelopeID: 11, Amount: core.NewMoney(12000)},
		},
	}}

	first := eng.PredictAll(envs, sources, now)
	second := eng.PredictAll(envs, sources, now)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs must produce identical predictions")
	}
}
