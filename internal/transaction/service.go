package transaction

import "context"

// Service handles ledger queries
type Service struct {
	repo *Repository
}

// NewService creates a new transaction service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// ListByInvestor retrieves an investor's ledger with pagination
func (s *Service) ListByInvestor(ctx context.Context, investorID int64, txType string, page, perPage int) ([]*Transaction, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByInvestor(ctx, investorID, txType, perPage, offset)
}
