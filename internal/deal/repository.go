package deal

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles deal data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new deal repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a deal by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Deal, error) {
	query := `
		SELECT id, partner_id, title, description, funding_goal, status, created_at
		FROM deals
		WHERE id = $1
	`

	d := &Deal{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID,
		&d.PartnerID,
		&d.Title,
		&d.Description,
		&d.FundingGoal,
		&d.Status,
		&d.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}

	return d, nil
}

// List retrieves deals with optional status filter and pagination
func (r *Repository) List(ctx context.Context, status string, limit, offset int) ([]*Deal, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM deals WHERE ($1 = '' OR status = $1)`
	if err := r.db.QueryRowContext(ctx, countQuery, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count deals: %w", err)
	}

	query := `
		SELECT id, partner_id, title, description, funding_goal, status, created_at
		FROM deals
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list deals: %w", err)
	}
	defer rows.Close()

	var deals []*Deal
	for rows.Next() {
		d := &Deal{}
		if err := rows.Scan(
			&d.ID,
			&d.PartnerID,
			&d.Title,
			&d.Description,
			&d.FundingGoal,
			&d.Status,
			&d.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan deal: %w", err)
		}
		deals = append(deals, d)
	}

	return deals, total, nil
}

// GetFundingStats aggregates investment and distribution activity for a deal.
// Remaining distributable capital is total invested minus capital already
// returned by approved rounds minus capital reserved by still-pending requests.
func (r *Repository) GetFundingStats(ctx context.Context, dealID int64) (*FundingStats, error) {
	query := `
		WITH
		invested AS (
			SELECT COALESCE(SUM(amount), 0) AS total,
			       COUNT(DISTINCT investor_id) AS investors,
			       COUNT(*) AS investments
			FROM investments
			WHERE deal_id = $1
		),
		distributed AS (
			SELECT COALESCE(SUM(capital_amount), 0) AS total
			FROM distribution_records
			WHERE deal_id = $1
		),
		pending AS (
			SELECT COALESCE(SUM(estimated_return_capital), 0) AS total
			FROM distribution_requests
			WHERE deal_id = $1 AND status = 'PENDING'
		)
		SELECT i.total, i.investors, i.investments,
		       i.total - d.total - p.total
		FROM invested i, distributed d, pending p
	`

	stats := &FundingStats{DealID: dealID}
	err := r.db.QueryRowContext(ctx, query, dealID).Scan(
		&stats.TotalInvested,
		&stats.InvestorCount,
		&stats.InvestmentCount,
		&stats.RemainingCapital,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get funding stats: %w", err)
	}

	return stats, nil
}

// MarkCompletedTx transitions a deal to COMPLETED inside the caller's transaction
func (r *Repository) MarkCompletedTx(ctx context.Context, tx *sql.Tx, dealID int64) error {
	query := `UPDATE deals SET status = $2 WHERE id = $1`

	if _, err := tx.ExecContext(ctx, query, dealID, DealStatusCompleted); err != nil {
		return fmt.Errorf("failed to mark deal completed: %w", err)
	}
	return nil
}
