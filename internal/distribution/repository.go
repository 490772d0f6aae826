package distribution

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/sahminvest/marketplace/internal/deal"
	"github.com/sahminvest/marketplace/internal/distribution/allocate"
	"github.com/sahminvest/marketplace/internal/investor"
	"github.com/sahminvest/marketplace/internal/notification"
	"github.com/sahminvest/marketplace/internal/transaction"
)

// Repository implements Store on Postgres. The approval path spans several
// tables, so it owns the transaction and drives the other repositories
// through their Tx variants.
type Repository struct {
	db            *sql.DB
	investors     *investor.Repository
	deals         *deal.Repository
	ledger        *transaction.Repository
	notifications *notification.Service
}

// NewRepository creates a new distribution repository
func NewRepository(db *sql.DB, investors *investor.Repository, deals *deal.Repository, ledger *transaction.Repository, notifications *notification.Service) *Repository {
	return &Repository{
		db:            db,
		investors:     investors,
		deals:         deals,
		ledger:        ledger,
		notifications: notifications,
	}
}

// CreateRequest inserts a new PENDING request
func (r *Repository) CreateRequest(ctx context.Context, req *Request) (*Request, error) {
	query := `
		INSERT INTO distribution_requests (
			deal_id, partner_id, distribution_type, total_amount,
			estimated_gain_percent, estimated_closing_percent,
			estimated_profit, estimated_return_capital, description, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		req.DealID, req.PartnerID, req.DistributionType, req.TotalAmount,
		req.EstimatedGainPercent, req.EstimatedClosingPercent,
		req.EstimatedProfit, req.EstimatedReturnCapital, req.Description, req.Status,
	).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create distribution request: %w", err)
	}

	return req, nil
}

// GetRequest retrieves a request by ID, or nil when it does not exist
func (r *Repository) GetRequest(ctx context.Context, id int64) (*Request, error) {
	query := `
		SELECT r.id, r.deal_id, r.partner_id, r.distribution_type, r.total_amount,
			   r.estimated_gain_percent, r.estimated_closing_percent,
			   r.estimated_profit, r.estimated_return_capital,
			   r.commission_percent, r.commission_amount,
			   r.reserve_percent, r.reserve_amount, r.is_loss,
			   r.description, r.status, r.reviewed_by, r.reviewed_at, r.created_at,
			   d.title
		FROM distribution_requests r
		JOIN deals d ON d.id = r.deal_id
		WHERE r.id = $1`

	req, err := scanRequest(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get distribution request: %w", err)
	}
	return req, nil
}

// ListRequests retrieves requests with an optional status filter, newest first
func (r *Repository) ListRequests(ctx context.Context, status string, limit, offset int) ([]*Request, int, error) {
	countQuery := `SELECT COUNT(*) FROM distribution_requests WHERE ($1 = '' OR status = $1)`

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count distribution requests: %w", err)
	}

	query := `
		SELECT r.id, r.deal_id, r.partner_id, r.distribution_type, r.total_amount,
			   r.estimated_gain_percent, r.estimated_closing_percent,
			   r.estimated_profit, r.estimated_return_capital,
			   r.commission_percent, r.commission_amount,
			   r.reserve_percent, r.reserve_amount, r.is_loss,
			   r.description, r.status, r.reviewed_by, r.reviewed_at, r.created_at,
			   d.title
		FROM distribution_requests r
		JOIN deals d ON d.id = r.deal_id
		WHERE ($1 = '' OR r.status = $1)
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list distribution requests: %w", err)
	}
	defer rows.Close()

	var requests []*Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan distribution request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate distribution requests: %w", err)
	}

	return requests, total, nil
}

// ListRecordsByRequest retrieves the per-investor records of an approved request
func (r *Repository) ListRecordsByRequest(ctx context.Context, requestID int64) ([]*Record, error) {
	query := `
		SELECT id, request_id, deal_id, investor_id, amount, capital_amount,
			   profit_amount, profit_rate, share_percent, period, status, created_at
		FROM distribution_records
		WHERE request_id = $1
		ORDER BY investor_id`

	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list distribution records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec := &Record{}
		err := rows.Scan(
			&rec.ID, &rec.RequestID, &rec.DealID, &rec.InvestorID,
			&rec.Amount, &rec.CapitalAmount, &rec.ProfitAmount,
			&rec.ProfitRate, &rec.SharePercent, &rec.Period, &rec.Status, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan distribution record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate distribution records: %w", err)
	}

	return records, nil
}

// RemainingCapital computes a deal's distributable capital: total invested
// minus capital already returned, minus the capital portion reserved by other
// pending requests.
func (r *Repository) RemainingCapital(ctx context.Context, dealID int64) (float64, error) {
	query := `
		WITH invested AS (
			SELECT COALESCE(SUM(amount), 0) AS total
			FROM investments
			WHERE deal_id = $1
		),
		returned AS (
			SELECT COALESCE(SUM(capital_amount), 0) AS total
			FROM distribution_records
			WHERE deal_id = $1
		),
		reserved AS (
			SELECT COALESCE(SUM(estimated_return_capital), 0) AS total
			FROM distribution_requests
			WHERE deal_id = $1 AND status = 'PENDING'
		)
		SELECT invested.total - returned.total - reserved.total
		FROM invested, returned, reserved`

	var remaining float64
	if err := r.db.QueryRowContext(ctx, query, dealID).Scan(&remaining); err != nil {
		return 0, fmt.Errorf("failed to compute remaining capital: %w", err)
	}
	return remaining, nil
}

// ApplyApproval persists one approved round atomically: the conditional
// status transition, the per-investor records iteration, the ledger entries,
// the wallet credits, the notifications, and the deal completion on FINAL
// rounds. Any failure rolls everything back.
func (r *Repository) ApplyApproval(ctx context.Context, approval *Approval) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	req := approval.Request

	// Conditional transition: exactly one approval wins a concurrent race.
	result, err := tx.ExecContext(ctx, `
		UPDATE distribution_requests
		SET status = 'APPROVED',
			total_amount = $2,
			estimated_gain_percent = $3,
			estimated_closing_percent = $4,
			estimated_profit = $5,
			estimated_return_capital = $6,
			commission_percent = $7,
			commission_amount = $8,
			reserve_percent = $9,
			reserve_amount = $10,
			is_loss = $11,
			reviewed_by = $12,
			reviewed_at = NOW()
		WHERE id = $1 AND status = 'PENDING'`,
		req.ID, req.TotalAmount, req.EstimatedGainPercent, req.EstimatedClosingPercent,
		req.EstimatedProfit, req.EstimatedReturnCapital,
		req.CommissionPercent, req.CommissionAmount,
		req.ReservePercent, req.ReserveAmount, req.IsLoss,
		approval.AdminID,
	)
	if err != nil {
		return fmt.Errorf("failed to approve distribution request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check approval update: %w", err)
	}
	if affected == 0 {
		return ErrAlreadyProcessed
	}

	languages := make(map[int64]string, len(approval.Stakes))
	for _, st := range approval.Stakes {
		languages[st.InvestorID] = st.Language
	}

	var entries []transaction.Entry
	for _, alloc := range approval.Plan.Allocations {
		if alloc.CapitalAmount > 0 {
			entries = append(entries, transaction.Entry{
				InvestorID:  alloc.InvestorID,
				DealID:      &req.DealID,
				Type:        transaction.TypeReturn,
				Amount:      alloc.CapitalAmount,
				Status:      transaction.StatusCompleted,
				Description: fmt.Sprintf("Capital return from %s", approval.DealTitle),
				Reference:   uuid.NewString(),
			})
		}
		if alloc.ProfitAmount > 0 {
			entries = append(entries, transaction.Entry{
				InvestorID:  alloc.InvestorID,
				DealID:      &req.DealID,
				Type:        transaction.TypeProfitDistribution,
				Amount:      alloc.ProfitAmount,
				Status:      transaction.StatusCompleted,
				Description: fmt.Sprintf("Profit distribution from %s", approval.DealTitle),
				Reference:   uuid.NewString(),
			})
		}
	}
	if err := r.ledger.BulkInsertTx(ctx, tx, entries); err != nil {
		return fmt.Errorf("failed to insert ledger entries: %w", err)
	}

	if err := insertRecordsTx(ctx, tx, req, approval.Plan); err != nil {
		return err
	}

	creditIDs := make([]int64, len(approval.Plan.Allocations))
	creditCapitals := make([]float64, len(approval.Plan.Allocations))
	creditProfits := make([]float64, len(approval.Plan.Allocations))
	for i, alloc := range approval.Plan.Allocations {
		creditIDs[i] = alloc.InvestorID
		creditCapitals[i] = alloc.CapitalAmount
		creditProfits[i] = alloc.ProfitAmount
	}
	if err := r.investors.BulkCreditWalletTx(ctx, tx, creditIDs, creditCapitals, creditProfits); err != nil {
		return err
	}

	for _, alloc := range approval.Plan.Allocations {
		_, err := r.notifications.NotifyDistributionTx(ctx, tx,
			alloc.InvestorID, languages[alloc.InvestorID], approval.DealTitle,
			alloc.CapitalAmount, alloc.ProfitAmount, req.ID)
		if err != nil {
			return fmt.Errorf("failed to notify investor %d: %w", alloc.InvestorID, err)
		}
	}

	if _, err := r.notifications.NotifyPartnerOutcomeTx(ctx, tx, req.PartnerID, approval.DealTitle, "approved", req.ID); err != nil {
		return fmt.Errorf("failed to notify partner: %w", err)
	}

	if approval.CompleteDeal {
		if err := r.deals.MarkCompletedTx(ctx, tx, req.DealID); err != nil {
			return fmt.Errorf("failed to complete deal: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit approval: %w", err)
	}
	return nil
}

// RejectRequest performs the conditional PENDING to REJECTED transition and
// notifies the partner. Returns nil when the request was already processed.
func (r *Repository) RejectRequest(ctx context.Context, id, adminID int64) (*Request, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE distribution_requests
		SET status = 'REJECTED', reviewed_by = $2, reviewed_at = NOW()
		WHERE id = $1 AND status = 'PENDING'
		RETURNING deal_id, partner_id`

	var dealID, partnerID int64
	err = tx.QueryRowContext(ctx, query, id, adminID).Scan(&dealID, &partnerID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reject distribution request: %w", err)
	}

	var dealTitle string
	if err := tx.QueryRowContext(ctx, `SELECT title FROM deals WHERE id = $1`, dealID).Scan(&dealTitle); err != nil {
		return nil, fmt.Errorf("failed to get deal title: %w", err)
	}

	if _, err := r.notifications.NotifyPartnerOutcomeTx(ctx, tx, partnerID, dealTitle, "rejected", id); err != nil {
		return nil, fmt.Errorf("failed to notify partner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rejection: %w", err)
	}

	return r.GetRequest(ctx, id)
}

// insertRecordsTx bulk-inserts the per-investor audit records in one statement
func insertRecordsTx(ctx context.Context, tx *sql.Tx, req *Request, plan *allocate.Plan) error {
	allocations := plan.Allocations
	investorIDs := make([]int64, len(allocations))
	amounts := make([]float64, len(allocations))
	capitals := make([]float64, len(allocations))
	profits := make([]float64, len(allocations))
	rates := make([]float64, len(allocations))
	shares := make([]float64, len(allocations))
	for i, alloc := range allocations {
		investorIDs[i] = alloc.InvestorID
		amounts[i] = alloc.CapitalAmount + alloc.ProfitAmount
		capitals[i] = alloc.CapitalAmount
		profits[i] = alloc.ProfitAmount
		rates[i] = alloc.ProfitRate
		shares[i] = alloc.SharePercent
	}

	query := `
		INSERT INTO distribution_records (
			request_id, deal_id, investor_id, amount, capital_amount,
			profit_amount, profit_rate, share_percent, period, status
		)
		SELECT $1, $2, investor_id, amount, capital_amount, profit_amount, profit_rate, share_percent, $9, 'COMPLETED'
		FROM unnest($3::bigint[], $4::numeric[], $5::numeric[], $6::numeric[], $7::numeric[], $8::numeric[])
			AS t(investor_id, amount, capital_amount, profit_amount, profit_rate, share_percent)`

	_, err := tx.ExecContext(ctx, query,
		req.ID, req.DealID,
		pq.Array(investorIDs), pq.Array(amounts), pq.Array(capitals),
		pq.Array(profits), pq.Array(rates), pq.Array(shares),
		req.DistributionType,
	)
	if err != nil {
		return fmt.Errorf("failed to insert distribution records: %w", err)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(s scanner) (*Request, error) {
	req := &Request{}
	err := s.Scan(
		&req.ID, &req.DealID, &req.PartnerID, &req.DistributionType, &req.TotalAmount,
		&req.EstimatedGainPercent, &req.EstimatedClosingPercent,
		&req.EstimatedProfit, &req.EstimatedReturnCapital,
		&req.CommissionPercent, &req.CommissionAmount,
		&req.ReservePercent, &req.ReserveAmount, &req.IsLoss,
		&req.Description, &req.Status, &req.ReviewedBy, &req.ReviewedAt, &req.CreatedAt,
		&req.DealTitle,
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}
