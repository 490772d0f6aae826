package investor

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Repository handles investor data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new investor repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves an investor by their ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Investor, error) {
	query := `
		SELECT id, username, email, language, wallet_balance, total_returns, created_at
		FROM investors
		WHERE id = $1
	`

	inv := &Investor{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&inv.ID,
		&inv.Username,
		&inv.Email,
		&inv.Language,
		&inv.WalletBalance,
		&inv.TotalReturns,
		&inv.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get investor: %w", err)
	}

	return inv, nil
}

// List retrieves all investors with pagination
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Investor, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM investors`
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count investors: %w", err)
	}

	query := `
		SELECT id, username, email, language, wallet_balance, total_returns, created_at
		FROM investors
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list investors: %w", err)
	}
	defer rows.Close()

	var investors []*Investor
	for rows.Next() {
		inv := &Investor{}
		if err := rows.Scan(
			&inv.ID,
			&inv.Username,
			&inv.Email,
			&inv.Language,
			&inv.WalletBalance,
			&inv.TotalReturns,
			&inv.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan investor: %w", err)
		}
		investors = append(investors, inv)
	}

	return investors, total, nil
}

// BulkCreditWalletTx applies many wallet credits in one statement inside the
// caller's transaction. The distribution engine credits every investor of a
// deal at once, so this keeps the statement count flat. Slices are parallel
// and indexed per investor; total_returns grows by profit only.
func (r *Repository) BulkCreditWalletTx(ctx context.Context, tx *sql.Tx, investorIDs []int64, capitals, profits []float64) error {
	if len(investorIDs) == 0 {
		return nil
	}

	query := `
		UPDATE investors i
		SET wallet_balance = i.wallet_balance + c.capital + c.profit,
		    total_returns = i.total_returns + c.profit
		FROM unnest($1::bigint[], $2::numeric[], $3::numeric[]) AS c(investor_id, capital, profit)
		WHERE i.id = c.investor_id
	`

	result, err := tx.ExecContext(ctx, query,
		pq.Array(investorIDs), pq.Array(capitals), pq.Array(profits))
	if err != nil {
		return fmt.Errorf("failed to bulk credit wallets: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected != int64(len(investorIDs)) {
		return fmt.Errorf("credited %d of %d investors", affected, len(investorIDs))
	}

	return nil
}

// DebitWalletTx decreases an investor's wallet inside the caller's transaction.
// The conditional balance check makes overdrafts impossible regardless of
// concurrent spends.
func (r *Repository) DebitWalletTx(ctx context.Context, tx *sql.Tx, investorID int64, amount float64) (bool, error) {
	query := `
		UPDATE investors
		SET wallet_balance = wallet_balance - $2
		WHERE id = $1 AND wallet_balance >= $2
	`

	result, err := tx.ExecContext(ctx, query, investorID, amount)
	if err != nil {
		return false, fmt.Errorf("failed to debit wallet: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected == 1, nil
}
