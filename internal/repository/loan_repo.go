package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/haolinpeng/claimflow/internal/domain/entity"
)

// LoanRepository handles loan record database operations
type LoanRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *sql.DB, logger *zap.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger}
}

// Create inserts a new loan record
func (r *LoanRepository) Create(ctx context.Context, loan *entity.LoanRecord) error {
	query := `
		INSERT INTO loans (id, amount, reason, approval_number, status, borrow_date, borrower_name)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.Amount,
		loan.Reason,
		loan.ApprovalNumber,
		string(loan.Status),
		loan.BorrowDate,
		loan.BorrowerName,
	)
	if err != nil {
		r.logger.Error("Failed to create loan", zap.String("loan_id", loan.ID), zap.Error(err))
		return fmt.Errorf("failed to create loan: %w", err)
	}
	return nil
}

// GetByID returns one loan record, or nil when absent.
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*entity.LoanRecord, error) {
	query := `
		SELECT id, amount, reason, approval_number, status, borrow_date, borrower_name
		FROM loans
		WHERE id = ?
	`
	loan, err := scanLoan(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return loan, nil
}

// ListEligible returns the loans that may be offered as offsets against a
// new claim: everything except paid and cancelled records. This is the
// caller-side filter the matching engine relies on.
func (r *LoanRepository) ListEligible(ctx context.Context) ([]entity.LoanRecord, error) {
	query := `
		SELECT id, amount, reason, approval_number, status, borrow_date, borrower_name
		FROM loans
		WHERE status NOT IN (?, ?)
		ORDER BY borrow_date DESC
	`
	rows, err := r.db.QueryContext(ctx, query,
		string(entity.LoanStatusPaid), string(entity.LoanStatusCancelled))
	if err != nil {
		r.logger.Error("Failed to list eligible loans", zap.Error(err))
		return nil, fmt.Errorf("failed to list eligible loans: %w", err)
	}
	defer rows.Close()

	var loans []entity.LoanRecord
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, *loan)
	}
	return loans, rows.Err()
}

// UpdateStatus moves a loan to a new lifecycle status.
func (r *LoanRepository) UpdateStatus(ctx context.Context, id string, status entity.LoanStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE loans SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update loan status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("loan not found: %s", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLoan(row rowScanner) (*entity.LoanRecord, error) {
	var loan entity.LoanRecord
	var status string
	err := row.Scan(
		&loan.ID,
		&loan.Amount,
		&loan.Reason,
		&loan.ApprovalNumber,
		&status,
		&loan.BorrowDate,
		&loan.BorrowerName,
	)
	if err != nil {
		return nil, err
	}
	loan.Status = entity.LoanStatus(status)
	return &loan, nil
}
