package investment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sahminvest/marketplace/internal/deal"
	"github.com/sahminvest/marketplace/internal/investor"
	"github.com/sahminvest/marketplace/internal/transaction"
)

// Common errors
var (
	ErrInvalidAmount     = errors.New("investment amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrDealNotOpen       = errors.New("deal is not open for investment")
)

// Service handles investment business logic
type Service struct {
	db           *sql.DB
	repo         *Repository
	investorRepo *investor.Repository
	ledgerRepo   *transaction.Repository
	dealService  *deal.Service
}

// NewService creates a new investment service
func NewService(db *sql.DB, repo *Repository, investorRepo *investor.Repository, ledgerRepo *transaction.Repository, dealService *deal.Service) *Service {
	return &Service{
		db:           db,
		repo:         repo,
		investorRepo: investorRepo,
		ledgerRepo:   ledgerRepo,
		dealService:  dealService,
	}
}

// Invest commits capital from an investor's wallet into a deal. The wallet
// debit, the investment row and the INVESTMENT ledger entry are written in
// one database transaction.
func (s *Service) Invest(ctx context.Context, investorID, dealID int64, amount float64) (*InvestmentResponse, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	d, err := s.dealService.GetByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if d.Status == deal.DealStatusCompleted {
		return nil, ErrDealNotOpen
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	debited, err := s.investorRepo.DebitWalletTx(ctx, tx, investorID, amount)
	if err != nil {
		return nil, err
	}
	if !debited {
		return nil, ErrInsufficientFunds
	}

	inv, err := s.repo.CreateTx(ctx, tx, dealID, investorID, amount)
	if err != nil {
		return nil, err
	}

	reference := uuid.NewString()
	if _, err := s.ledgerRepo.CreateTx(ctx, tx, transaction.Entry{
		InvestorID:  investorID,
		DealID:      &dealID,
		Type:        transaction.TypeInvestment,
		Amount:      amount,
		Status:      transaction.StatusCompleted,
		Description: fmt.Sprintf("Investment in %s", d.Title),
		Reference:   reference,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.dealService.InvalidateStats(dealID)

	return &InvestmentResponse{
		ID:         inv.ID,
		DealID:     inv.DealID,
		InvestorID: inv.InvestorID,
		Amount:     inv.Amount,
		Reference:  reference,
		CreatedAt:  inv.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}, nil
}
