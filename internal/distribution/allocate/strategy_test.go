package allocate

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}

func sumAllocations(allocations []Allocation) (capital, profit float64) {
	for _, a := range allocations {
		capital += a.CapitalAmount
		profit += a.ProfitAmount
	}
	return capital, profit
}

func TestFactoryClassification(t *testing.T) {
	tests := []struct {
		name  string
		terms Terms
		want  Scenario
	}{
		{"partial", Terms{Type: TypePartial, TotalAmount: 100}, ScenarioPartial},
		{"partial ignores negative profit", Terms{Type: TypePartial, TotalAmount: 100, EstimatedProfit: -50}, ScenarioPartial},
		{"final with profit", Terms{Type: TypeFinal, TotalAmount: 100, EstimatedProfit: 10}, ScenarioFinalProfit},
		{"final with zero profit", Terms{Type: TypeFinal, TotalAmount: 100}, ScenarioFinalProfit},
		{"final with negative profit", Terms{Type: TypeFinal, TotalAmount: 100, EstimatedProfit: -10}, ScenarioFinalLoss},
		{"final with loss flag", Terms{Type: TypeFinal, TotalAmount: 100, EstimatedProfit: 10, IsLoss: true}, ScenarioFinalLoss},
	}

	factory := NewFactory()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy, err := factory.ForTerms(tt.terms)
			if err != nil {
				t.Fatalf("ForTerms error: %v", err)
			}
			if strategy.Scenario() != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, strategy.Scenario())
			}
		})
	}
}

func TestFactoryRejectsUnknownType(t *testing.T) {
	if _, err := NewFactory().ForTerms(Terms{Type: "QUARTERLY"}); err == nil {
		t.Fatalf("expected error for unknown distribution type")
	}
}

func TestFinalProfitSixtyFortyExample(t *testing.T) {
	// Two investors at $6,000/$4,000; profit $1,000, 10% commission ($100),
	// investor pool $900 split 60/40; capital $10,000 split the same way.
	stakes := []Stake{
		{InvestorID: 1, Invested: 6000},
		{InvestorID: 2, Invested: 4000},
	}
	terms := Terms{
		Type:              TypeFinal,
		TotalAmount:       11000,
		EstimatedProfit:   1000,
		ReturnCapital:     10000,
		CommissionPercent: 10,
	}

	strategy, err := NewFactory().ForTerms(terms)
	if err != nil {
		t.Fatalf("ForTerms error: %v", err)
	}
	plan, err := strategy.Plan(terms, stakes, nil)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}

	if !almostEqual(plan.CommissionAmount, 100) {
		t.Fatalf("expected commission 100, got %.2f", plan.CommissionAmount)
	}
	if !almostEqual(plan.ProfitPool, 900) {
		t.Fatalf("expected profit pool 900, got %.2f", plan.ProfitPool)
	}

	byInvestor := map[int64]Allocation{}
	for _, a := range plan.Allocations {
		byInvestor[a.InvestorID] = a
	}
	if a := byInvestor[1]; !almostEqual(a.ProfitAmount, 540) || !almostEqual(a.CapitalAmount, 6000) {
		t.Fatalf("investor 1: expected 540 profit / 6000 capital, got %.2f / %.2f", a.ProfitAmount, a.CapitalAmount)
	}
	if a := byInvestor[2]; !almostEqual(a.ProfitAmount, 360) || !almostEqual(a.CapitalAmount, 4000) {
		t.Fatalf("investor 2: expected 360 profit / 4000 capital, got %.2f / %.2f", a.ProfitAmount, a.CapitalAmount)
	}

	if a := byInvestor[1]; !almostEqual(a.SharePercent, 60) {
		t.Fatalf("investor 1: expected 60%% share, got %.2f", a.SharePercent)
	}
	if a := byInvestor[1]; !almostEqual(a.ProfitRate, 9) {
		t.Fatalf("investor 1: expected 9%% profit rate, got %.2f", a.ProfitRate)
	}

	// Conservation: investor profits + commission = estimated profit.
	_, profit := sumAllocations(plan.Allocations)
	if !almostEqual(profit+plan.CommissionAmount, terms.EstimatedProfit) {
		t.Fatalf("profit conservation broken: %.2f + %.2f != %.2f", profit, plan.CommissionAmount, terms.EstimatedProfit)
	}
}

func TestPartialExample(t *testing.T) {
	// Total $2,000, reserve $200, commission $100: net to investors $1,700,
	// entirely capital recovery, zero profit recognized.
	stakes := []Stake{
		{InvestorID: 1, Invested: 3000},
		{InvestorID: 2, Invested: 2000},
	}
	terms := Terms{
		Type:             TypePartial,
		TotalAmount:      2000,
		ReserveAmount:    200,
		CommissionAmount: 100,
	}

	strategy, err := NewFactory().ForTerms(terms)
	if err != nil {
		t.Fatalf("ForTerms error: %v", err)
	}
	plan, err := strategy.Plan(terms, stakes, nil)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}

	if !almostEqual(plan.CapitalPool, 1700) {
		t.Fatalf("expected capital pool 1700, got %.2f", plan.CapitalPool)
	}

	capital, profit := sumAllocations(plan.Allocations)
	if profit != 0 {
		t.Fatalf("partial round must recognize zero profit, got %.2f", profit)
	}
	// Conservation: capital + reserve + commission = total amount.
	if !almostEqual(capital+plan.ReserveAmount+plan.CommissionAmount, terms.TotalAmount) {
		t.Fatalf("capital conservation broken: %.2f + %.2f + %.2f != %.2f",
			capital, plan.ReserveAmount, plan.CommissionAmount, terms.TotalAmount)
	}
}

func TestPartialPercentCarveOuts(t *testing.T) {
	stakes := []Stake{{InvestorID: 1, Invested: 5000}}
	terms := Terms{
		Type:              TypePartial,
		TotalAmount:       1000,
		ReservePercent:    10,
		CommissionPercent: 5,
	}

	plan, err := (&PartialStrategy{}).Plan(terms, stakes, nil)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if !almostEqual(plan.ReserveAmount, 100) || !almostEqual(plan.CommissionAmount, 50) {
		t.Fatalf("expected reserve 100 / commission 50, got %.2f / %.2f", plan.ReserveAmount, plan.CommissionAmount)
	}
	if !almostEqual(plan.CapitalPool, 850) {
		t.Fatalf("expected capital pool 850, got %.2f", plan.CapitalPool)
	}
}

func TestFinalLossReturnsEverythingAsCapital(t *testing.T) {
	stakes := []Stake{
		{InvestorID: 1, Invested: 7000},
		{InvestorID: 2, Invested: 3000},
	}
	terms := Terms{
		Type:            TypeFinal,
		TotalAmount:     4000, // less than invested: the shortfall is the loss
		EstimatedProfit: -6000,
		// Commission and reserve must be ignored in a loss round.
		CommissionPercent: 10,
		ReservePercent:    5,
	}

	strategy, err := NewFactory().ForTerms(terms)
	if err != nil {
		t.Fatalf("ForTerms error: %v", err)
	}
	plan, err := strategy.Plan(terms, stakes, nil)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}

	if plan.CommissionAmount != 0 || plan.ReserveAmount != 0 {
		t.Fatalf("loss round must have zero commission and reserve, got %.2f / %.2f",
			plan.CommissionAmount, plan.ReserveAmount)
	}

	capital, profit := sumAllocations(plan.Allocations)
	if profit != 0 {
		t.Fatalf("loss round must recognize zero profit, got %.2f", profit)
	}
	if !almostEqual(capital, terms.TotalAmount) {
		t.Fatalf("expected capital sum %.2f, got %.2f", terms.TotalAmount, capital)
	}
}

func TestRoundingRemainderConserves(t *testing.T) {
	// Three equal stakes over $100: 33.33 each leaves a cent for the last.
	stakes := []Stake{
		{InvestorID: 1, Invested: 1000},
		{InvestorID: 2, Invested: 1000},
		{InvestorID: 3, Invested: 1000},
	}
	terms := Terms{Type: TypeFinal, TotalAmount: 100, EstimatedProfit: -1}

	plan, err := (&FinalLossStrategy{}).Plan(terms, stakes, nil)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}

	capital, _ := sumAllocations(plan.Allocations)
	if capital != 100 {
		t.Fatalf("expected exact conservation of 100, got %v", capital)
	}
	if plan.Allocations[2].CapitalAmount != 33.34 {
		t.Fatalf("expected last allocation to absorb the remainder, got %v", plan.Allocations[2].CapitalAmount)
	}
}

func TestOverridesUsedVerbatim(t *testing.T) {
	stakes := []Stake{
		{InvestorID: 1, Invested: 6000},
		{InvestorID: 2, Invested: 4000},
	}
	terms := Terms{
		Type:              TypeFinal,
		TotalAmount:       11000,
		EstimatedProfit:   1000,
		ReturnCapital:     10000,
		CommissionPercent: 10,
	}
	overrides := map[int64]Override{
		// Netting out a prior partial advance for investor 1.
		1: {CapitalAmount: 4500, ProfitAmount: 540},
	}

	plan, err := (&FinalProfitStrategy{}).Plan(terms, stakes, overrides)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}

	byInvestor := map[int64]Allocation{}
	for _, a := range plan.Allocations {
		byInvestor[a.InvestorID] = a
	}
	if a := byInvestor[1]; a.CapitalAmount != 4500 || a.ProfitAmount != 540 {
		t.Fatalf("override not used verbatim: got %.2f / %.2f", a.CapitalAmount, a.ProfitAmount)
	}
	// Investor 2 still gets the proportional computation.
	if a := byInvestor[2]; !almostEqual(a.CapitalAmount, 4000) || !almostEqual(a.ProfitAmount, 360) {
		t.Fatalf("non-override allocation wrong: got %.2f / %.2f", a.CapitalAmount, a.ProfitAmount)
	}
}

func TestValidationFailures(t *testing.T) {
	stakes := []Stake{{InvestorID: 1, Invested: 1000}}

	tests := []struct {
		name     string
		strategy Strategy
		terms    Terms
		stakes   []Stake
	}{
		{"no stakes", &PartialStrategy{}, Terms{Type: TypePartial, TotalAmount: 100}, nil},
		{"zero total", &PartialStrategy{}, Terms{Type: TypePartial}, stakes},
		{"negative stake", &FinalLossStrategy{}, Terms{Type: TypeFinal, TotalAmount: 100}, []Stake{{InvestorID: 1, Invested: -5}}},
		{"commission percent out of range", &PartialStrategy{}, Terms{Type: TypePartial, TotalAmount: 100, CommissionPercent: 150}, stakes},
		{"carve-outs exceed total", &PartialStrategy{}, Terms{Type: TypePartial, TotalAmount: 100, ReserveAmount: 80, CommissionAmount: 30}, stakes},
		{"commission exceeds profit", &FinalProfitStrategy{}, Terms{Type: TypeFinal, TotalAmount: 100, EstimatedProfit: 10, CommissionAmount: 20}, stakes},
		{"negative return capital", &FinalProfitStrategy{}, Terms{Type: TypeFinal, TotalAmount: 100, EstimatedProfit: 10, ReturnCapital: -1}, stakes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.strategy.Plan(tt.terms, tt.stakes, nil); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
