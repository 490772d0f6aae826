package investor

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrInvestorNotFound = errors.New("investor not found")
)

// Service handles investor business logic
type Service struct {
	repo *Repository
}

// NewService creates a new investor service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// GetByID retrieves an investor by their ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Investor, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrInvestorNotFound
	}
	return inv, nil
}

// GetWallet retrieves the wallet summary for an investor
func (s *Service) GetWallet(ctx context.Context, id int64) (*WalletResponse, error) {
	inv, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return inv.ToWalletResponse(), nil
}

// List retrieves investors with pagination
func (s *Service) List(ctx context.Context, page, perPage int) ([]*Investor, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.List(ctx, perPage, offset)
}
