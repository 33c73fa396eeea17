package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"buste/internal/core"
)

func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "buste.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestEnvelopeRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	due := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	id, err := repo.CreateEnvelope(ctx, core.Envelope{
		Name:           "Car insurance",
		TargetAmount:   core.NewMoney(100000),
		DueDate:        due,
		CurrentBalance: core.NewMoney(20000),
	})
	if err != nil {
		t.Fatalf("CreateEnvelope() error = %v", err)
	}

	got, err := repo.GetEnvelope(ctx, id)
	if err != nil {
		t.Fatalf("GetEnvelope() error = %v", err)
	}
	if got.Name != "Car insurance" || got.TargetAmount.Cents != 100000 || !got.DueDate.Equal(due) {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if _, err := repo.GetEnvelope(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id: error = %v, want ErrNotFound", err)
	}
}

func TestEnvelopeWithoutDueDate(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	id, err := repo.CreateEnvelope(ctx, core.Envelope{
		Name:          "Groceries",
		BillAmount:    core.NewMoney(12000),
		BillFrequency: core.Weekly,
	})
	if err != nil {
		t.Fatalf("CreateEnvelope() error = %v", err)
	}

	got, err := repo.GetEnvelope(ctx, id)
	if err != nil {
		t.Fatalf("GetEnvelope() error = %v", err)
	}
	if got.HasDueDate() {
		t.Errorf("due date should stay zero, got %v", got.DueDate)
	}
	if got.BillFrequency != core.Weekly {
		t.Errorf("bill frequency = %q, want weekly", got.BillFrequency)
	}
}

func TestIncomeSourceWithAllocations(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	envID, err := repo.CreateEnvelope(ctx, core.Envelope{Name: "Rent", TargetAmount: core.NewMoney(90000)})
	if err != nil {
		t.Fatalf("CreateEnvelope() error = %v", err)
	}

	_, err = repo.CreateIncomeSource(ctx, core.IncomeSource{
		Name:      "Salary",
		Frequency: core.Fortnightly,
		NextDate:  time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Allocations: []core.Allocation{
			{EnvelopeID: envID, Amount: core.NewMoney(45000)},
		},
	})
	if err != nil {
		t.Fatalf("CreateIncomeSource() error = %v", err)
	}

	sources, err := repo.ListIncomeSources(ctx)
	if err != nil {
		t.Fatalf("ListIncomeSources() error = %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
	amt, ok := sources[0].AllocationFor(envID)
	if !ok || amt.Cents != 45000 {
		t.Errorf("allocation = %v %v, want 45000", amt, ok)
	}
}

func TestDebtItemLifecycle(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	envID, err := repo.CreateEnvelope(ctx, core.Envelope{Name: "Credit card", TargetAmount: core.NewMoney(0)})
	if err != nil {
		t.Fatalf("CreateEnvelope() error = %v", err)
	}

	a, _ := repo.CreateDebtItem(ctx, core.DebtItem{EnvelopeID: envID, Balance: core.NewMoney(5000)})
	b, _ := repo.CreateDebtItem(ctx, core.DebtItem{EnvelopeID: envID, Balance: core.NewMoney(20000)})

	unpaid, err := repo.ListUnpaidDebtItems(ctx, envID)
	if err != nil {
		t.Fatalf("ListUnpaidDebtItems() error = %v", err)
	}
	if len(unpaid) != 2 {
		t.Fatalf("expected 2 unpaid items, got %d", len(unpaid))
	}

	if err := repo.UpdateDebtBalance(ctx, a, core.NewMoney(0)); err != nil {
		t.Fatalf("UpdateDebtBalance() error = %v", err)
	}
	if err := repo.MarkDebtPaidOff(ctx, a, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("MarkDebtPaidOff() error = %v", err)
	}

	unpaid, err = repo.ListUnpaidDebtItems(ctx, envID)
	if err != nil {
		t.Fatalf("ListUnpaidDebtItems() error = %v", err)
	}
	if len(unpaid) != 1 || unpaid[0].ID != b {
		t.Errorf("paid-off item still listed: %v", unpaid)
	}

	// Marking twice must not fail; the first timestamp wins.
	if err := repo.MarkDebtPaidOff(ctx, a, time.Now()); err != nil {
		t.Errorf("second MarkDebtPaidOff() error = %v", err)
	}
}
