package deal

import (
	"context"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Common errors
var (
	ErrDealNotFound = errors.New("deal not found")
)

// Service handles deal business logic. Funding stats are aggregate queries
// over investments and distribution history, so they are cached briefly.
type Service struct {
	repo       *Repository
	statsCache *gocache.Cache
}

// NewService creates a new deal service
func NewService(repo *Repository, statsTTL time.Duration) *Service {
	return &Service{
		repo:       repo,
		statsCache: gocache.New(statsTTL, 2*statsTTL),
	}
}

// GetByID retrieves a deal by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Deal, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDealNotFound
	}
	return d, nil
}

// GetWithStats retrieves a deal along with its funding stats
func (s *Service) GetWithStats(ctx context.Context, id int64) (*DealResponse, error) {
	d, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.GetFundingStats(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := d.ToResponse()
	resp.Stats = stats
	return resp, nil
}

// GetFundingStats returns cached funding stats for a deal
func (s *Service) GetFundingStats(ctx context.Context, dealID int64) (*FundingStats, error) {
	key := fmt.Sprintf("deal-stats:%d", dealID)
	if cached, found := s.statsCache.Get(key); found {
		return cached.(*FundingStats), nil
	}

	stats, err := s.repo.GetFundingStats(ctx, dealID)
	if err != nil {
		return nil, err
	}

	s.statsCache.SetDefault(key, stats)
	return stats, nil
}

// InvalidateStats drops the cached stats for a deal after a mutation
func (s *Service) InvalidateStats(dealID int64) {
	s.statsCache.Delete(fmt.Sprintf("deal-stats:%d", dealID))
}

// List retrieves deals with pagination and optional status filter
func (s *Service) List(ctx context.Context, status string, page, perPage int) ([]*Deal, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.List(ctx, status, perPage, offset)
}
