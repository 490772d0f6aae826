package transaction

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Repository handles ledger data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new transaction repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateTx inserts a single ledger entry inside the caller's transaction
func (r *Repository) CreateTx(ctx context.Context, tx *sql.Tx, e Entry) (*Transaction, error) {
	query := `
		INSERT INTO transactions (investor_id, deal_id, type, amount, status, description, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, investor_id, deal_id, type, amount, status, description, reference, created_at
	`

	t := &Transaction{}
	err := tx.QueryRowContext(ctx, query,
		e.InvestorID, e.DealID, e.Type, e.Amount, e.Status, e.Description, e.Reference,
	).Scan(
		&t.ID,
		&t.InvestorID,
		&t.DealID,
		&t.Type,
		&t.Amount,
		&t.Status,
		&t.Description,
		&t.Reference,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	return t, nil
}

// BulkInsertTx inserts many ledger entries in one statement inside the
// caller's transaction. The approval engine creates O(investors) rows, so
// this keeps the statement count flat.
func (r *Repository) BulkInsertTx(ctx context.Context, tx *sql.Tx, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	investorIDs := make([]int64, len(entries))
	dealIDs := make([]sql.NullInt64, len(entries))
	types := make([]string, len(entries))
	amounts := make([]float64, len(entries))
	statuses := make([]string, len(entries))
	descriptions := make([]string, len(entries))
	references := make([]string, len(entries))

	for i, e := range entries {
		investorIDs[i] = e.InvestorID
		if e.DealID != nil {
			dealIDs[i] = sql.NullInt64{Int64: *e.DealID, Valid: true}
		}
		types[i] = string(e.Type)
		amounts[i] = e.Amount
		statuses[i] = string(e.Status)
		descriptions[i] = e.Description
		references[i] = e.Reference
	}

	query := `
		INSERT INTO transactions (investor_id, deal_id, type, amount, status, description, reference)
		SELECT * FROM unnest(
			$1::bigint[], $2::bigint[], $3::text[], $4::numeric[], $5::text[], $6::text[], $7::text[]
		)
	`

	_, err := tx.ExecContext(ctx, query,
		pq.Array(investorIDs),
		pq.Array(dealIDs),
		pq.Array(types),
		pq.Array(amounts),
		pq.Array(statuses),
		pq.Array(descriptions),
		pq.Array(references),
	)
	if err != nil {
		return fmt.Errorf("failed to bulk insert transactions: %w", err)
	}

	return nil
}

// ListByInvestor retrieves an investor's ledger entries, newest first
func (r *Repository) ListByInvestor(ctx context.Context, investorID int64, txType string, limit, offset int) ([]*Transaction, int, error) {
	var total int
	countQuery := `
		SELECT COUNT(*) FROM transactions
		WHERE investor_id = $1 AND ($2 = '' OR type = $2)
	`
	if err := r.db.QueryRowContext(ctx, countQuery, investorID, txType).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := `
		SELECT id, investor_id, deal_id, type, amount, status, description, reference, created_at
		FROM transactions
		WHERE investor_id = $1 AND ($2 = '' OR type = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.QueryContext(ctx, query, investorID, txType, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*Transaction
	for rows.Next() {
		t := &Transaction{}
		if err := rows.Scan(
			&t.ID,
			&t.InvestorID,
			&t.DealID,
			&t.Type,
			&t.Amount,
			&t.Status,
			&t.Description,
			&t.Reference,
			&t.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}

	return transactions, total, nil
}
