// Package storage persists envelopes, income sources, allocations and
// debt items in SQLite. The prediction engine never touches this
// package; it receives plain core values loaded here.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"buste/internal/core"

	_ "modernc.org/sqlite"
)

// dateLayout is how due and pay dates are stored; they are calendar
// dates, not instants.
const dateLayout = "2006-01-02"

var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateEnvelope inserts an envelope and returns its ID.
func (r *SQLiteRepository) CreateEnvelope(ctx context.Context, e core.Envelope) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	var freq sql.NullString
	if e.BillFrequency != "" {
		freq = sql.NullString{String: string(e.BillFrequency), Valid: true}
	}
	var due sql.NullString
	if e.HasDueDate() {
		due = sql.NullString{String: e.DueDate.Format(dateLayout), Valid: true}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO envelopes (name, target_cents, bill_cents, bill_frequency, due_date, balance_cents)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Name, e.TargetAmount.Cents, e.BillAmount.Cents, freq, due, e.CurrentBalance.Cents)
	if err != nil {
		return 0, fmt.Errorf("insert envelope: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("envelope id: %w", err)
	}

	slog.InfoContext(ctx, "Envelope saved",
		"id", id,
		"name", e.Name,
		"target_cents", e.TargetAmount.Cents)
	return id, nil
}

// GetEnvelope loads one envelope; ErrNotFound when the ID is unknown.
func (r *SQLiteRepository) GetEnvelope(ctx context.Context, id int64) (core.Envelope, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, target_cents, bill_cents, bill_frequency, due_date, balance_cents
		 FROM envelopes WHERE id = ?`, id)

	env, err := scanEnvelope(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Envelope{}, ErrNotFound
	}
	if err != nil {
		return core.Envelope{}, fmt.Errorf("get envelope: %w", err)
	}
	return env, nil
}

// ListEnvelopes returns every envelope, oldest first.
func (r *SQLiteRepository) ListEnvelopes(ctx context.Context) ([]core.Envelope, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, target_cents, bill_cents, bill_frequency, due_date, balance_cents
		 FROM envelopes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list envelopes: %w", err)
	}
	defer rows.Close()

	var out []core.Envelope
	for rows.Next() {
		env, err := scanEnvelope(rows)
		if err != nil {
			return nil, fmt.Errorf("scan envelope: %w", err)
		}
		out = append(out, env)
	}
	return out, rows.Err()
}

// UpdateEnvelopeBalance sets an envelope's current balance.
func (r *SQLiteRepository) UpdateEnvelopeBalance(ctx context.Context, id int64, balance core.Money) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE envelopes SET balance_cents = ? WHERE id = ?`, balance.Cents, id)
	if err != nil {
		return fmt.Errorf("update envelope balance: %w", err)
	}
	return requireRow(res)
}

// CreateIncomeSource inserts a source together with its allocations.
func (r *SQLiteRepository) CreateIncomeSource(ctx context.Context, s core.IncomeSource) (int64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO income_sources (name, frequency, next_date) VALUES (?, ?, ?)`,
		s.Name, string(s.Frequency), s.NextDate.Format(dateLayout))
	if err != nil {
		return 0, fmt.Errorf("insert income source: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("income source id: %w", err)
	}

	for _, a := range s.Allocations {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO allocations (income_source_id, envelope_id, amount_cents) VALUES (?, ?, ?)`,
			id, a.EnvelopeID, a.Amount.Cents)
		if err != nil {
			return 0, fmt.Errorf("insert allocation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit income source: %w", err)
	}

	slog.InfoContext(ctx, "Income source saved",
		"id", id,
		"name", s.Name,
		"frequency", s.Frequency,
		"allocations", len(s.Allocations))
	return id, nil
}

// ListIncomeSources returns every source with its allocations, oldest
// source first so the first element stays the primary one.
func (r *SQLiteRepository) ListIncomeSources(ctx context.Context) ([]core.IncomeSource, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, frequency, next_date FROM income_sources ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list income sources: %w", err)
	}
	defer rows.Close()

	var sources []core.IncomeSource
	for rows.Next() {
		var (
			s        core.IncomeSource
			freq     string
			nextDate string
		)
		if err := rows.Scan(&s.ID, &s.Name, &freq, &nextDate); err != nil {
			return nil, fmt.Errorf("scan income source: %w", err)
		}
		s.Frequency = core.Frequency(freq)
		s.NextDate, err = time.Parse(dateLayout, nextDate)
		if err != nil {
			return nil, fmt.Errorf("parse next date %q: %w", nextDate, err)
		}
		sources = append(sources, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sources {
		allocs, err := r.listAllocations(ctx, sources[i].ID)
		if err != nil {
			return nil, err
		}
		sources[i].Allocations = allocs
	}
	return sources, nil
}

func (r *SQLiteRepository) listAllocations(ctx context.Context, sourceID int64) ([]core.Allocation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT envelope_id, amount_cents FROM allocations WHERE income_source_id = ? ORDER BY id`,
		sourceID)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	defer rows.Close()

	var out []core.Allocation
	for rows.Next() {
		var a core.Allocation
		if err := rows.Scan(&a.EnvelopeID, &a.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateDebtItem registers an outstanding balance inside a debt
// envelope.
func (r *SQLiteRepository) CreateDebtItem(ctx context.Context, d core.DebtItem) (int64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO debt_items (envelope_id, balance_cents) VALUES (?, ?)`,
		d.EnvelopeID, d.Balance.Cents)
	if err != nil {
		return 0, fmt.Errorf("insert debt item: %w", err)
	}
	return res.LastInsertId()
}

// ListUnpaidDebtItems returns the outstanding items for one envelope.
// Paid-off items never come back: the distributor must not see them.
func (r *SQLiteRepository) ListUnpaidDebtItems(ctx context.Context, envelopeID int64) ([]core.DebtItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, envelope_id, balance_cents FROM debt_items
		 WHERE envelope_id = ? AND paid_off_at IS NULL ORDER BY id`, envelopeID)
	if err != nil {
		return nil, fmt.Errorf("list unpaid debt items: %w", err)
	}
	defer rows.Close()

	var out []core.DebtItem
	for rows.Next() {
		var d core.DebtItem
		if err := rows.Scan(&d.ID, &d.EnvelopeID, &d.Balance.Cents); err != nil {
			return nil, fmt.Errorf("scan debt item: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateDebtBalance implements snowball.BalanceStore.
func (r *SQLiteRepository) UpdateDebtBalance(ctx context.Context, itemID int64, balance core.Money) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE debt_items SET balance_cents = ? WHERE id = ?`, balance.Cents, itemID)
	if err != nil {
		return fmt.Errorf("update debt balance: %w", err)
	}
	return requireRow(res)
}

// MarkDebtPaidOff implements snowball.BalanceStore. The WHERE clause
// keeps the first timestamp if one is somehow already set.
func (r *SQLiteRepository) MarkDebtPaidOff(ctx context.Context, itemID int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE debt_items SET paid_off_at = ? WHERE id = ? AND paid_off_at IS NULL`,
		at.UTC().Format(time.RFC3339), itemID)
	if err != nil {
		return fmt.Errorf("mark debt paid off: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		slog.WarnContext(ctx, "Debt item already marked paid off", "item_id", itemID)
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEnvelope(row rowScanner) (core.Envelope, error) {
	var (
		e    core.Envelope
		freq sql.NullString
		due  sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Name, &e.TargetAmount.Cents, &e.BillAmount.Cents, &freq, &due, &e.CurrentBalance.Cents); err != nil {
		return core.Envelope{}, err
	}
	if freq.Valid {
		e.BillFrequency = core.Frequency(freq.String)
	}
	if due.Valid {
		d, err := time.Parse(dateLayout, due.String)
		if err != nil {
			return core.Envelope{}, fmt.Errorf("parse due date %q: %w", due.String, err)
		}
		e.DueDate = d
	}
	return e, nil
}
