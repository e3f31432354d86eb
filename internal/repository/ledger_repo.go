package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/haolinpeng/claimflow/internal/domain/entity"
)

// LedgerRepository reads pre-recorded expense ledger entries.
type LedgerRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *sql.DB, logger *zap.Logger) *LedgerRepository {
	return &LedgerRepository{db: db, logger: logger}
}

// ListPending returns ledger entries not yet reimbursed; these are the
// candidates for auto-matching against a new claim's search terms.
func (r *LedgerRepository) ListPending(ctx context.Context) ([]entity.LedgerEntry, error) {
	query := `
		SELECT id, description, category, amount, entry_date, reimbursed
		FROM ledger_entries
		WHERE reimbursed = 0
		ORDER BY entry_date DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list pending ledger entries", zap.Error(err))
		return nil, fmt.Errorf("failed to list pending ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []entity.LedgerEntry
	for rows.Next() {
		var entry entity.LedgerEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Description,
			&entry.Category,
			&entry.Amount,
			&entry.Date,
			&entry.Reimbursed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Create inserts a ledger entry.
func (r *LedgerRepository) Create(ctx context.Context, entry *entity.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (id, description, category, amount, entry_date, reimbursed)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.Description,
		entry.Category,
		entry.Amount,
		entry.Date,
		entry.Reimbursed,
	)
	if err != nil {
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return nil
}

// MarkReimbursed flags an entry as included in a submitted claim.
func (r *LedgerRepository) MarkReimbursed(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE ledger_entries SET reimbursed = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to mark ledger entry reimbursed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
