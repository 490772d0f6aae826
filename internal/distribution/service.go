package distribution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sahminvest/marketplace/internal/deal"
	"github.com/sahminvest/marketplace/internal/distribution/allocate"
	"github.com/sahminvest/marketplace/internal/investment"
	"github.com/sahminvest/marketplace/internal/logger"
	"github.com/sahminvest/marketplace/internal/mailer"
)

// Common errors
var (
	ErrRequestNotFound  = errors.New("distribution request not found")
	ErrAlreadyProcessed = errors.New("distribution request already processed")
	ErrNoInvestments    = errors.New("deal has no investments")
	ErrNotDealOwner     = errors.New("deal does not belong to this partner")
	ErrInvalidType      = errors.New("distribution type must be PARTIAL or FINAL")
	ErrInvalidPercent   = errors.New("percent fields must be between 0 and 100")
	ErrInvalidAmount    = errors.New("total amount must be positive")
)

// CapitalOverrunError rejects a proposal whose implied capital return
// exceeds the deal's remaining distributable capital. It carries the
// computed maximum so the partner can resubmit.
type CapitalOverrunError struct {
	RemainingCapital float64
	MaxTotalAmount   float64
}

func (e *CapitalOverrunError) Error() string {
	return fmt.Sprintf("capital return exceeds remaining distributable capital %.2f (max total amount %.2f)",
		e.RemainingCapital, e.MaxTotalAmount)
}

// Approval bundles everything the store must persist atomically when a
// request is approved.
type Approval struct {
	Request      *Request            // final field values, including admin edits
	Plan         *allocate.Plan      // computed allocations
	Stakes       []*investment.Stake // per-investor stake with username/language
	AdminID      int64
	DealTitle    string
	CompleteDeal bool // FINAL rounds close the deal
}

// Store is the persistence boundary of the distribution workflow
type Store interface {
	CreateRequest(ctx context.Context, req *Request) (*Request, error)
	GetRequest(ctx context.Context, id int64) (*Request, error)
	ListRequests(ctx context.Context, status string, limit, offset int) ([]*Request, int, error)
	ListRecordsByRequest(ctx context.Context, requestID int64) ([]*Record, error)

	// RemainingCapital returns the deal's distributable capital: total
	// invested minus capital already distributed minus capital reserved by
	// other pending requests.
	RemainingCapital(ctx context.Context, dealID int64) (float64, error)

	// ApplyApproval persists the whole approval in one database transaction:
	// the conditional PENDING to APPROVED transition, ledger entries,
	// distribution records, wallet credits, notifications, and the deal
	// completion. A request that is no longer PENDING must abort with
	// ErrAlreadyProcessed and leave nothing behind.
	ApplyApproval(ctx context.Context, approval *Approval) error

	// RejectRequest performs the conditional PENDING to REJECTED transition,
	// reporting whether a row was transitioned.
	RejectRequest(ctx context.Context, id, adminID int64) (*Request, error)
}

// DealDirectory is the slice of the deal service the workflow needs
type DealDirectory interface {
	GetByID(ctx context.Context, id int64) (*deal.Deal, error)
	InvalidateStats(dealID int64)
}

// StakeSource groups a deal's investments per investor
type StakeSource interface {
	StakesByDeal(ctx context.Context, dealID int64) ([]*investment.Stake, int, error)
}

// Service implements the distribution request workflow and the approval
// engine.
type Service struct {
	store     Store
	deals     DealDirectory
	stakes    StakeSource
	mail      mailer.Mailer
	factory   *allocate.Factory
	txTimeout time.Duration
}

// NewService creates a new distribution service. txTimeout bounds the
// approval transaction, which performs O(investors) writes.
func NewService(store Store, deals DealDirectory, stakes StakeSource, mail mailer.Mailer, txTimeout time.Duration) *Service {
	return &Service{
		store:     store,
		deals:     deals,
		stakes:    stakes,
		mail:      mail,
		factory:   allocate.NewFactory(),
		txTimeout: txTimeout,
	}
}

// Submit validates a partner's proposal and persists it as PENDING.
// Commission and reserve are zeroed; the admin sets them at approval time.
func (s *Service) Submit(ctx context.Context, partnerID int64, req *SubmitRequest) (*SubmitResponse, error) {
	if req.DistributionType != allocate.TypePartial && req.DistributionType != allocate.TypeFinal {
		return nil, ErrInvalidType
	}
	if req.TotalAmount <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.EstimatedGainPercent < 0 || req.EstimatedGainPercent > 100 ||
		req.EstimatedClosingPercent < 0 || req.EstimatedClosingPercent > 100 {
		return nil, ErrInvalidPercent
	}

	d, err := s.deals.GetByID(ctx, req.DealID)
	if err != nil {
		return nil, err
	}
	if d.PartnerID != partnerID {
		return nil, ErrNotDealOwner
	}

	stakes, _, err := s.stakes.StakesByDeal(ctx, req.DealID)
	if err != nil {
		return nil, err
	}
	if len(stakes) == 0 {
		return nil, ErrNoInvestments
	}

	// The gain percent is the profit share of the proposed total; the rest
	// is capital recovery, which is what the overrun guard limits.
	estimatedProfit := allocate.Round2(req.TotalAmount * req.EstimatedGainPercent / 100)
	estimatedReturnCapital := allocate.Round2(req.TotalAmount - estimatedProfit)

	remaining, err := s.store.RemainingCapital(ctx, req.DealID)
	if err != nil {
		return nil, err
	}
	if estimatedReturnCapital > remaining+0.005 {
		return nil, &CapitalOverrunError{
			RemainingCapital: allocate.Round2(remaining),
			MaxTotalAmount:   allocate.Round2(remaining / (1 - req.EstimatedGainPercent/100)),
		}
	}

	created, err := s.store.CreateRequest(ctx, &Request{
		DealID:                  req.DealID,
		PartnerID:               partnerID,
		DistributionType:        req.DistributionType,
		TotalAmount:             req.TotalAmount,
		EstimatedGainPercent:    req.EstimatedGainPercent,
		EstimatedClosingPercent: req.EstimatedClosingPercent,
		EstimatedProfit:         estimatedProfit,
		EstimatedReturnCapital:  estimatedReturnCapital,
		Description:             req.Description,
		Status:                  RequestStatusPending,
	})
	if err != nil {
		return nil, err
	}

	return &SubmitResponse{
		RequestID:              created.ID,
		TotalAmount:            created.TotalAmount,
		EstimatedProfit:        created.EstimatedProfit,
		EstimatedReturnCapital: created.EstimatedReturnCapital,
		DistributionType:       created.DistributionType,
		InvestorCount:          len(stakes),
	}, nil
}

// Approve runs the approval engine for one pending request: classify the
// scenario, compute per-investor splits, persist every mutation atomically,
// then fire the best-effort admin email.
func (s *Service) Approve(ctx context.Context, adminID, requestID int64, edits *ApproveRequest) (*ApproveResponse, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.Status != RequestStatusPending {
		return nil, ErrAlreadyProcessed
	}

	d, err := s.deals.GetByID(ctx, req.DealID)
	if err != nil {
		return nil, err
	}

	applyEdits(req, edits)

	stakes, investmentCount, err := s.stakes.StakesByDeal(ctx, req.DealID)
	if err != nil {
		return nil, err
	}
	if len(stakes) == 0 {
		return nil, ErrNoInvestments
	}

	terms := allocate.Terms{
		Type:              req.DistributionType,
		TotalAmount:       req.TotalAmount,
		EstimatedProfit:   req.EstimatedProfit,
		ReturnCapital:     req.EstimatedReturnCapital,
		CommissionPercent: req.CommissionPercent,
		CommissionAmount:  req.CommissionAmount,
		ReservePercent:    req.ReservePercent,
		ReserveAmount:     req.ReserveAmount,
		IsLoss:            req.IsLoss,
	}

	strategy, err := s.factory.ForTerms(terms)
	if err != nil {
		return nil, err
	}

	allocStakes := make([]allocate.Stake, len(stakes))
	for i, st := range stakes {
		allocStakes[i] = allocate.Stake{InvestorID: st.InvestorID, Invested: st.Invested}
	}

	plan, err := strategy.Plan(terms, allocStakes, overrideMap(edits))
	if err != nil {
		return nil, err
	}

	// Persist the computed values back onto the request for audit.
	req.IsLoss = plan.Scenario == allocate.ScenarioFinalLoss
	req.CommissionAmount = plan.CommissionAmount
	req.ReserveAmount = plan.ReserveAmount

	approval := &Approval{
		Request:      req,
		Plan:         plan,
		Stakes:       stakes,
		AdminID:      adminID,
		DealTitle:    d.Title,
		CompleteDeal: req.DistributionType == allocate.TypeFinal,
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()
	if err := s.store.ApplyApproval(txCtx, approval); err != nil {
		return nil, err
	}

	s.deals.InvalidateStats(req.DealID)

	// Best-effort side channel: a failed email never fails the approval.
	go func() {
		emailCtx, emailCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer emailCancel()
		if err := s.mail.NotifyAdminProfitDistribution(emailCtx, mailer.DistributionSummaryEmail{
			DealTitle:        d.Title,
			TotalAmount:      req.TotalAmount,
			DistributionType: req.DistributionType,
			InvestorCount:    len(stakes),
			ApprovedBy:       adminID,
		}); err != nil {
			logger.L.Error("admin distribution email failed", "requestId", requestID, "error", err)
		}
	}()

	return &ApproveResponse{
		Message: scenarioMessage(plan.Scenario),
		Summary: &Summary{
			TotalProfit:       req.EstimatedProfit,
			TotalAmount:       req.TotalAmount,
			InvestorPool:      plan.ProfitPool,
			CapitalPool:       plan.CapitalPool,
			CommissionAmount:  plan.CommissionAmount,
			ReserveAmount:     plan.ReserveAmount,
			CommissionPercent: plan.CommissionPercent,
			ReservePercent:    plan.ReservePercent,
			InvestorCount:     len(stakes),
			InvestmentCount:   investmentCount,
			DistributionType:  req.DistributionType,
			IsLoss:            plan.Scenario == allocate.ScenarioFinalLoss,
			GainPercent:       req.EstimatedGainPercent,
			ClosingPercent:    req.EstimatedClosingPercent,
		},
	}, nil
}

// Reject transitions a pending request to REJECTED without touching the ledger
func (s *Service) Reject(ctx context.Context, adminID, requestID int64) (*Request, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}

	rejected, err := s.store.RejectRequest(ctx, requestID, adminID)
	if err != nil {
		return nil, err
	}
	if rejected == nil {
		return nil, ErrAlreadyProcessed
	}
	return rejected, nil
}

// GetRequest retrieves a request with its records once approved
func (s *Service) GetRequest(ctx context.Context, id int64) (*RequestResponse, error) {
	req, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}

	resp := &RequestResponse{Request: req}
	if req.Status == RequestStatusApproved {
		records, err := s.store.ListRecordsByRequest(ctx, id)
		if err != nil {
			return nil, err
		}
		resp.Records = records
	}
	return resp, nil
}

// ListRequests retrieves requests with pagination and optional status filter
func (s *Service) ListRequests(ctx context.Context, status string, page, perPage int) ([]*Request, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.ListRequests(ctx, status, perPage, offset)
}

// applyEdits folds admin overrides into the request
func applyEdits(req *Request, edits *ApproveRequest) {
	if edits == nil {
		return
	}
	if edits.TotalAmount != nil {
		req.TotalAmount = *edits.TotalAmount
	}
	if edits.EstimatedProfit != nil {
		req.EstimatedProfit = *edits.EstimatedProfit
	}
	if edits.EstimatedGainPercent != nil {
		req.EstimatedGainPercent = *edits.EstimatedGainPercent
	}
	if edits.EstimatedClosingPercent != nil {
		req.EstimatedClosingPercent = *edits.EstimatedClosingPercent
	}
	if edits.EstimatedReturnCapital != nil {
		req.EstimatedReturnCapital = *edits.EstimatedReturnCapital
	}
	if edits.CommissionPercent != nil {
		req.CommissionPercent = *edits.CommissionPercent
	}
	if edits.CommissionAmount != nil {
		req.CommissionAmount = *edits.CommissionAmount
	}
	if edits.ReservePercent != nil {
		req.ReservePercent = *edits.ReservePercent
	}
	if edits.ReserveAmount != nil {
		req.ReserveAmount = *edits.ReserveAmount
	}
	if edits.IsLoss != nil {
		req.IsLoss = *edits.IsLoss
	}
}

// overrideMap indexes the admin's per-investor amounts by investor ID
func overrideMap(edits *ApproveRequest) map[int64]allocate.Override {
	if edits == nil || len(edits.InvestorDistributions) == 0 {
		return nil
	}
	overrides := make(map[int64]allocate.Override, len(edits.InvestorDistributions))
	for _, ov := range edits.InvestorDistributions {
		overrides[ov.InvestorID] = allocate.Override{
			CapitalAmount: ov.CapitalAmount,
			ProfitAmount:  ov.ProfitAmount,
		}
	}
	return overrides
}

// scenarioMessage renders the outcome message keyed to the scenario
func scenarioMessage(scenario allocate.Scenario) string {
	switch scenario {
	case allocate.ScenarioPartial:
		return "Partial distribution approved: capital returned to investors, no profit recognized"
	case allocate.ScenarioFinalLoss:
		return "Final distribution approved at a loss: remaining capital returned to investors"
	default:
		return "Final distribution approved: profit distributed to investors"
	}
}
