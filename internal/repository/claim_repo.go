package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/haolinpeng/claimflow/internal/domain/entity"
)

// ClaimRepository persists assembled reimbursement claims. Claim bodies
// are stored as JSON alongside the queryable header columns.
type ClaimRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *sql.DB, logger *zap.Logger) *ClaimRepository {
	return &ClaimRepository{db: db, logger: logger}
}

// Save inserts or replaces a claim.
func (r *ClaimRepository) Save(ctx context.Context, claim *entity.ReimbursementClaim) error {
	body, err := json.Marshal(claim)
	if err != nil {
		return fmt.Errorf("failed to encode claim: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO claims (id, claim_type, title, total_amount, payable_amount, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		claim.ID,
		string(claim.Type),
		claim.Title,
		claim.TotalAmount,
		claim.PayableAmount,
		string(body),
		claim.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to save claim", zap.String("claim_id", claim.ID), zap.Error(err))
		return fmt.Errorf("failed to save claim: %w", err)
	}
	return nil
}

// GetByID returns one claim, or nil when absent.
func (r *ClaimRepository) GetByID(ctx context.Context, id string) (*entity.ReimbursementClaim, error) {
	var body string
	err := r.db.QueryRowContext(ctx, "SELECT body FROM claims WHERE id = ?", id).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	var claim entity.ReimbursementClaim
	if err := json.Unmarshal([]byte(body), &claim); err != nil {
		return nil, fmt.Errorf("failed to decode claim: %w", err)
	}
	return &claim, nil
}

// List returns recent claims, newest first.
func (r *ClaimRepository) List(ctx context.Context, limit, offset int) ([]entity.ReimbursementClaim, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT body FROM claims ORDER BY created_at DESC LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	var claims []entity.ReimbursementClaim
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		var claim entity.ReimbursementClaim
		if err := json.Unmarshal([]byte(body), &claim); err != nil {
			return nil, fmt.Errorf("failed to decode claim: %w", err)
		}
		claims = append(claims, claim)
	}
	return claims, rows.Err()
}
