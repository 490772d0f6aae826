package distribution

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/sahminvest/marketplace/internal/deal"
	"github.com/sahminvest/marketplace/internal/investment"
	"github.com/sahminvest/marketplace/internal/mailer"
)

type fakeStore struct {
	requests  map[int64]*Request
	records   map[int64][]*Record
	remaining float64
	nextID    int64

	approvals []*Approval
	rejected  []int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests: make(map[int64]*Request),
		records:  make(map[int64][]*Record),
		nextID:   1,
	}
}

func (s *fakeStore) CreateRequest(ctx context.Context, req *Request) (*Request, error) {
	req.ID = s.nextID
	s.nextID++
	req.CreatedAt = time.Now()
	s.requests[req.ID] = req
	return req, nil
}

func (s *fakeStore) GetRequest(ctx context.Context, id int64) (*Request, error) {
	req, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	copied := *req
	return &copied, nil
}

func (s *fakeStore) ListRequests(ctx context.Context, status string, limit, offset int) ([]*Request, int, error) {
	var out []*Request
	for _, req := range s.requests {
		if status == "" || string(req.Status) == status {
			out = append(out, req)
		}
	}
	return out, len(out), nil
}

func (s *fakeStore) ListRecordsByRequest(ctx context.Context, requestID int64) ([]*Record, error) {
	return s.records[requestID], nil
}

func (s *fakeStore) RemainingCapital(ctx context.Context, dealID int64) (float64, error) {
	return s.remaining, nil
}

func (s *fakeStore) ApplyApproval(ctx context.Context, approval *Approval) error {
	stored, ok := s.requests[approval.Request.ID]
	if !ok || stored.Status != RequestStatusPending {
		return ErrAlreadyProcessed
	}
	updated := *approval.Request
	updated.Status = RequestStatusApproved
	s.requests[updated.ID] = &updated
	s.approvals = append(s.approvals, approval)
	return nil
}

func (s *fakeStore) RejectRequest(ctx context.Context, id, adminID int64) (*Request, error) {
	stored, ok := s.requests[id]
	if !ok || stored.Status != RequestStatusPending {
		return nil, nil
	}
	stored.Status = RequestStatusRejected
	stored.ReviewedBy = &adminID
	s.rejected = append(s.rejected, id)
	return stored, nil
}

type fakeDeals struct {
	deals       map[int64]*deal.Deal
	invalidated []int64
}

func (f *fakeDeals) GetByID(ctx context.Context, id int64) (*deal.Deal, error) {
	d, ok := f.deals[id]
	if !ok {
		return nil, deal.ErrDealNotFound
	}
	return d, nil
}

func (f *fakeDeals) InvalidateStats(dealID int64) {
	f.invalidated = append(f.invalidated, dealID)
}

type fakeStakes struct {
	stakes []*investment.Stake
	count  int
}

func (f *fakeStakes) StakesByDeal(ctx context.Context, dealID int64) ([]*investment.Stake, int, error) {
	return f.stakes, f.count, nil
}

type fakeMailer struct {
	sent chan mailer.DistributionSummaryEmail
	err  error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan mailer.DistributionSummaryEmail, 1)}
}

func (m *fakeMailer) NotifyAdminProfitDistribution(ctx context.Context, summary mailer.DistributionSummaryEmail) error {
	m.sent <- summary
	return m.err
}

func newTestService(store *fakeStore, deals *fakeDeals, stakes *fakeStakes, mail mailer.Mailer) *Service {
	return NewService(store, deals, stakes, mail, 30*time.Second)
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func testDeal() *fakeDeals {
	return &fakeDeals{deals: map[int64]*deal.Deal{
		1: {ID: 1, PartnerID: 10, Title: "Riyadh Logistics Fund", Status: deal.DealStatusFunded},
	}}
}

func twoInvestorStakes() *fakeStakes {
	return &fakeStakes{
		stakes: []*investment.Stake{
			{InvestorID: 100, Username: "nora", Language: "ar", Invested: 6000},
			{InvestorID: 101, Username: "omar", Language: "en", Invested: 4000},
		},
		count: 3,
	}
}

func TestSubmitDerivesEstimates(t *testing.T) {
	store := newFakeStore()
	store.remaining = 10000
	svc := newTestService(store, testDeal(), twoInvestorStakes(), newFakeMailer())

	resp, err := svc.Submit(context.Background(), 10, &SubmitRequest{
		DealID:               1,
		EstimatedGainPercent: 10,
		TotalAmount:          11000,
		DistributionType:     "FINAL",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if !approxEqual(resp.EstimatedProfit, 1100) {
		t.Errorf("expected estimated profit 1100, got %.2f", resp.EstimatedProfit)
	}
	if !approxEqual(resp.EstimatedReturnCapital, 9900) {
		t.Errorf("expected estimated return capital 9900, got %.2f", resp.EstimatedReturnCapital)
	}
	if resp.InvestorCount != 2 {
		t.Errorf("expected 2 investors, got %d", resp.InvestorCount)
	}

	stored := store.requests[resp.RequestID]
	if stored == nil || stored.Status != RequestStatusPending {
		t.Fatalf("expected stored PENDING request, got %+v", stored)
	}
}

func TestSubmitCapitalOverrun(t *testing.T) {
	store := newFakeStore()
	store.remaining = 5000
	svc := newTestService(store, testDeal(), twoInvestorStakes(), newFakeMailer())

	_, err := svc.Submit(context.Background(), 10, &SubmitRequest{
		DealID:               1,
		EstimatedGainPercent: 10,
		TotalAmount:          10000, // implies 9000 capital > 5000 remaining
		DistributionType:     "PARTIAL",
	})

	var overrun *CapitalOverrunError
	if !errors.As(err, &overrun) {
		t.Fatalf("expected CapitalOverrunError, got %v", err)
	}
	if !approxEqual(overrun.RemainingCapital, 5000) {
		t.Errorf("expected remaining 5000, got %.2f", overrun.RemainingCapital)
	}
	// max total such that 90%% of it equals the remaining capital
	if !approxEqual(overrun.MaxTotalAmount, 5555.56) {
		t.Errorf("expected max total 5555.56, got %.2f", overrun.MaxTotalAmount)
	}
	if len(store.requests) != 0 {
		t.Errorf("expected no request stored, found %d", len(store.requests))
	}
}

func TestSubmitValidation(t *testing.T) {
	store := newFakeStore()
	store.remaining = 100000
	svc := newTestService(store, testDeal(), twoInvestorStakes(), newFakeMailer())

	tests := []struct {
		name      string
		partnerID int64
		req       *SubmitRequest
		wantErr   error
	}{
		{
			name:      "unknown type",
			partnerID: 10,
			req:       &SubmitRequest{DealID: 1, TotalAmount: 100, DistributionType: "QUARTERLY"},
			wantErr:   ErrInvalidType,
		},
		{
			name:      "zero amount",
			partnerID: 10,
			req:       &SubmitRequest{DealID: 1, TotalAmount: 0, DistributionType: "PARTIAL"},
			wantErr:   ErrInvalidAmount,
		},
		{
			name:      "gain percent above 100",
			partnerID: 10,
			req:       &SubmitRequest{DealID: 1, TotalAmount: 100, EstimatedGainPercent: 120, DistributionType: "PARTIAL"},
			wantErr:   ErrInvalidPercent,
		},
		{
			name:      "not the deal owner",
			partnerID: 99,
			req:       &SubmitRequest{DealID: 1, TotalAmount: 100, DistributionType: "PARTIAL"},
			wantErr:   ErrNotDealOwner,
		},
		{
			name:      "unknown deal",
			partnerID: 10,
			req:       &SubmitRequest{DealID: 42, TotalAmount: 100, DistributionType: "PARTIAL"},
			wantErr:   deal.ErrDealNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tt.partnerID, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSubmitRequiresInvestments(t *testing.T) {
	store := newFakeStore()
	store.remaining = 100000
	svc := newTestService(store, testDeal(), &fakeStakes{}, newFakeMailer())

	_, err := svc.Submit(context.Background(), 10, &SubmitRequest{
		DealID: 1, TotalAmount: 100, DistributionType: "PARTIAL",
	})
	if !errors.Is(err, ErrNoInvestments) {
		t.Errorf("expected ErrNoInvestments, got %v", err)
	}
}

func pendingFinalRequest(store *fakeStore) *Request {
	req := &Request{
		DealID:                 1,
		PartnerID:              10,
		DistributionType:       "FINAL",
		TotalAmount:            11000,
		EstimatedGainPercent:   10,
		EstimatedProfit:        1000,
		EstimatedReturnCapital: 10000,
		Status:                 RequestStatusPending,
	}
	created, _ := store.CreateRequest(context.Background(), req)
	return created
}

func TestApproveFinalProfit(t *testing.T) {
	store := newFakeStore()
	req := pendingFinalRequest(store)
	deals := testDeal()
	mail := newFakeMailer()
	svc := newTestService(store, deals, twoInvestorStakes(), mail)

	commission := 10.0
	resp, err := svc.Approve(context.Background(), 7, req.ID, &ApproveRequest{
		CommissionPercent: &commission,
	})
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	if len(store.approvals) != 1 {
		t.Fatalf("expected one applied approval, got %d", len(store.approvals))
	}
	approval := store.approvals[0]

	if !approval.CompleteDeal {
		t.Error("expected FINAL approval to complete the deal")
	}
	if approval.AdminID != 7 {
		t.Errorf("expected admin 7, got %d", approval.AdminID)
	}

	// 10% commission on the 1000 profit leaves 900 for investors,
	// split 60/40 with the 10000 capital.
	byInvestor := make(map[int64][2]float64)
	for _, alloc := range approval.Plan.Allocations {
		byInvestor[alloc.InvestorID] = [2]float64{alloc.CapitalAmount, alloc.ProfitAmount}
	}
	if got := byInvestor[100]; !approxEqual(got[0], 6000) || !approxEqual(got[1], 540) {
		t.Errorf("investor 100: expected 6000/540, got %.2f/%.2f", got[0], got[1])
	}
	if got := byInvestor[101]; !approxEqual(got[0], 4000) || !approxEqual(got[1], 360) {
		t.Errorf("investor 101: expected 4000/360, got %.2f/%.2f", got[0], got[1])
	}

	if !approxEqual(resp.Summary.CommissionAmount, 100) {
		t.Errorf("expected commission 100, got %.2f", resp.Summary.CommissionAmount)
	}
	if !approxEqual(resp.Summary.InvestorPool, 900) {
		t.Errorf("expected investor pool 900, got %.2f", resp.Summary.InvestorPool)
	}
	if resp.Summary.InvestmentCount != 3 {
		t.Errorf("expected 3 investments, got %d", resp.Summary.InvestmentCount)
	}
	if resp.Summary.IsLoss {
		t.Error("expected profit scenario, got loss")
	}

	if len(deals.invalidated) != 1 || deals.invalidated[0] != 1 {
		t.Errorf("expected deal 1 stats invalidation, got %v", deals.invalidated)
	}

	select {
	case email := <-mail.sent:
		if email.ApprovedBy != 7 || email.InvestorCount != 2 {
			t.Errorf("unexpected email payload: %+v", email)
		}
	case <-time.After(2 * time.Second):
		t.Error("expected admin summary email")
	}

	stored := store.requests[req.ID]
	if stored.Status != RequestStatusApproved {
		t.Errorf("expected APPROVED status, got %s", stored.Status)
	}
}

func TestApprovePartialHasNoProfit(t *testing.T) {
	store := newFakeStore()
	req := &Request{
		DealID:           1,
		PartnerID:        10,
		DistributionType: "PARTIAL",
		TotalAmount:      2000,
		Status:           RequestStatusPending,
	}
	store.CreateRequest(context.Background(), req)
	svc := newTestService(store, testDeal(), twoInvestorStakes(), newFakeMailer())

	commissionAmount := 200.0
	reserveAmount := 100.0
	resp, err := svc.Approve(context.Background(), 7, req.ID, &ApproveRequest{
		CommissionAmount: &commissionAmount,
		ReserveAmount:    &reserveAmount,
	})
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	approval := store.approvals[0]
	if approval.CompleteDeal {
		t.Error("PARTIAL approval must not complete the deal")
	}

	var totalCapital, totalProfit float64
	for _, alloc := range approval.Plan.Allocations {
		totalCapital += alloc.CapitalAmount
		totalProfit += alloc.ProfitAmount
	}
	if !approxEqual(totalCapital, 1700) {
		t.Errorf("expected 1700 capital distributed, got %.2f", totalCapital)
	}
	if !approxEqual(totalProfit, 0) {
		t.Errorf("PARTIAL round must carry no profit, got %.2f", totalProfit)
	}
	if !approxEqual(resp.Summary.CapitalPool, 1700) {
		t.Errorf("expected capital pool 1700, got %.2f", resp.Summary.CapitalPool)
	}
}

func TestApproveLossIgnoresCommission(t *testing.T) {
	store := newFakeStore()
	req := &Request{
		DealID:                 1,
		PartnerID:              10,
		DistributionType:       "FINAL",
		TotalAmount:            8000,
		EstimatedReturnCapital: 8000,
		Status:                 RequestStatusPending,
	}
	store.CreateRequest(context.Background(), req)
	svc := newTestService(store, testDeal(), twoInvestorStakes(), newFakeMailer())

	isLoss := true
	commission := 10.0
	resp, err := svc.Approve(context.Background(), 7, req.ID, &ApproveRequest{
		IsLoss:            &isLoss,
		CommissionPercent: &commission,
	})
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	if !resp.Summary.IsLoss {
		t.Error("expected loss scenario")
	}
	if !approxEqual(resp.Summary.CommissionAmount, 0) {
		t.Errorf("loss round must take no commission, got %.2f", resp.Summary.CommissionAmount)
	}

	var totalCapital float64
	for _, alloc := range store.approvals[0].Plan.Allocations {
		totalCapital += alloc.CapitalAmount
		if alloc.ProfitAmount != 0 {
			t.Errorf("loss round must carry no profit, got %.2f", alloc.ProfitAmount)
		}
	}
	if !approxEqual(totalCapital, 8000) {
		t.Errorf("expected full 8000 returned, got %.2f", totalCapital)
	}
}

func TestApproveInvestorOverrides(t *testing.T) {
	store := newFakeStore()
	req := pendingFinalRequest(store)
	svc := newTestService(store, testDeal(), twoInvestorStakes(), newFakeMailer())

	_, err := svc.Approve(context.Background(), 7, req.ID, &ApproveRequest{
		InvestorDistributions: []InvestorOverride{
			{InvestorID: 100, CapitalAmount: 5500, ProfitAmount: 700},
		},
	})
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	for _, alloc := range store.approvals[0].Plan.Allocations {
		if alloc.InvestorID == 100 {
			if !approxEqual(alloc.CapitalAmount, 5500) || !approxEqual(alloc.ProfitAmount, 700) {
				t.Errorf("override not applied verbatim: %.2f/%.2f", alloc.CapitalAmount, alloc.ProfitAmount)
			}
		}
	}
}

func TestApproveAlreadyProcessed(t *testing.T) {
	store := newFakeStore()
	req := pendingFinalRequest(store)
	store.requests[req.ID].Status = RequestStatusApproved
	svc := newTestService(store, testDeal(), twoInvestorStakes(), newFakeMailer())

	_, err := svc.Approve(context.Background(), 7, req.ID, nil)
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Errorf("expected ErrAlreadyProcessed, got %v", err)
	}
}

func TestApproveUnknownRequest(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, testDeal(), twoInvestorStakes(), newFakeMailer())

	_, err := svc.Approve(context.Background(), 7, 404, nil)
	if !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestApproveSurvivesMailerFailure(t *testing.T) {
	store := newFakeStore()
	req := pendingFinalRequest(store)
	mail := newFakeMailer()
	mail.err = errors.New("mailgun unavailable")
	svc := newTestService(store, testDeal(), twoInvestorStakes(), mail)

	_, err := svc.Approve(context.Background(), 7, req.ID, nil)
	if err != nil {
		t.Fatalf("approval must not fail on email errors: %v", err)
	}
	if store.requests[req.ID].Status != RequestStatusApproved {
		t.Error("expected request approved despite email failure")
	}

	select {
	case <-mail.sent:
	case <-time.After(2 * time.Second):
		t.Error("expected email attempt")
	}
}

func TestReject(t *testing.T) {
	store := newFakeStore()
	req := pendingFinalRequest(store)
	svc := newTestService(store, testDeal(), twoInvestorStakes(), newFakeMailer())

	rejected, err := svc.Reject(context.Background(), 7, req.ID)
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if rejected.Status != RequestStatusRejected {
		t.Errorf("expected REJECTED, got %s", rejected.Status)
	}

	_, err = svc.Reject(context.Background(), 7, req.ID)
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Errorf("expected ErrAlreadyProcessed on second rejection, got %v", err)
	}
}

func TestGetRequestIncludesRecordsWhenApproved(t *testing.T) {
	store := newFakeStore()
	req := pendingFinalRequest(store)
	store.requests[req.ID].Status = RequestStatusApproved
	store.records[req.ID] = []*Record{
		{RequestID: req.ID, InvestorID: 100, CapitalAmount: 6000, ProfitAmount: 600},
	}
	svc := newTestService(store, testDeal(), twoInvestorStakes(), newFakeMailer())

	resp, err := svc.GetRequest(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("GetRequest failed: %v", err)
	}
	if len(resp.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(resp.Records))
	}

	pending := &Request{DealID: 1, PartnerID: 10, DistributionType: "PARTIAL", TotalAmount: 100, Status: RequestStatusPending}
	store.CreateRequest(context.Background(), pending)
	resp, err = svc.GetRequest(context.Background(), pending.ID)
	if err != nil {
		t.Fatalf("GetRequest failed: %v", err)
	}
	if len(resp.Records) != 0 {
		t.Errorf("pending request must have no records, got %d", len(resp.Records))
	}
}
