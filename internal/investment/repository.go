package investment

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles investment data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new investment repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateTx inserts a new investment inside the caller's transaction
func (r *Repository) CreateTx(ctx context.Context, tx *sql.Tx, dealID, investorID int64, amount float64) (*Investment, error) {
	query := `
		INSERT INTO investments (deal_id, investor_id, amount)
		VALUES ($1, $2, $3)
		RETURNING id, deal_id, investor_id, amount, created_at
	`

	inv := &Investment{}
	err := tx.QueryRowContext(ctx, query, dealID, investorID, amount).Scan(
		&inv.ID,
		&inv.DealID,
		&inv.InvestorID,
		&inv.Amount,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create investment: %w", err)
	}

	return inv, nil
}

// ListByDeal retrieves all investments in a deal
func (r *Repository) ListByDeal(ctx context.Context, dealID int64) ([]*Investment, error) {
	query := `
		SELECT id, deal_id, investor_id, amount, created_at
		FROM investments
		WHERE deal_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	defer rows.Close()

	var investments []*Investment
	for rows.Next() {
		inv := &Investment{}
		if err := rows.Scan(
			&inv.ID,
			&inv.DealID,
			&inv.InvestorID,
			&inv.Amount,
			&inv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		investments = append(investments, inv)
	}

	return investments, nil
}

// StakesByDeal groups a deal's investments per investor, joined with the
// investor's username and notification language. Ordered by investor ID so
// allocation output is deterministic.
func (r *Repository) StakesByDeal(ctx context.Context, dealID int64) ([]*Stake, int, error) {
	query := `
		SELECT i.investor_id, u.username, u.language, SUM(i.amount) AS invested, COUNT(*) AS rows
		FROM investments i
		JOIN investors u ON i.investor_id = u.id
		WHERE i.deal_id = $1
		GROUP BY i.investor_id, u.username, u.language
		ORDER BY i.investor_id
	`

	rows, err := r.db.QueryContext(ctx, query, dealID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get stakes: %w", err)
	}
	defer rows.Close()

	var stakes []*Stake
	investmentCount := 0
	for rows.Next() {
		s := &Stake{}
		var rowCount int
		if err := rows.Scan(&s.InvestorID, &s.Username, &s.Language, &s.Invested, &rowCount); err != nil {
			return nil, 0, fmt.Errorf("failed to scan stake: %w", err)
		}
		investmentCount += rowCount
		stakes = append(stakes, s)
	}

	return stakes, investmentCount, nil
}
