package allocate

import (
	"errors"
	"fmt"
	"math"
)

// Scenario identifies how a distribution round is settled
type Scenario string

const (
	// ScenarioPartial: interim round, the whole net amount is capital recovery
	ScenarioPartial Scenario = "PARTIAL"
	// ScenarioFinalLoss: closing round at a loss, everything left goes back as capital
	ScenarioFinalLoss Scenario = "FINAL_LOSS"
	// ScenarioFinalProfit: closing round with profit recognition and commission
	ScenarioFinalProfit Scenario = "FINAL_PROFIT"
)

// Round types as submitted by partners
const (
	TypePartial = "PARTIAL"
	TypeFinal   = "FINAL"
)

// Terms are the financial parameters of a distribution round, after any
// admin overrides have been folded in.
type Terms struct {
	Type              string  // PARTIAL | FINAL
	TotalAmount       float64 // pool being distributed this round
	EstimatedProfit   float64 // negative means loss
	ReturnCapital     float64 // capital portion for FINAL profit rounds
	CommissionPercent float64
	CommissionAmount  float64 // explicit amount wins over the percent
	ReservePercent    float64 // PARTIAL rounds only
	ReserveAmount     float64 // explicit amount wins over the percent
	IsLoss            bool    // admin can force the loss branch
}

// Stake is one investor's total committed capital in the deal
type Stake struct {
	InvestorID int64
	Invested   float64
}

// Override is an admin-supplied per-investor amount pair, used verbatim
// instead of the proportional computation.
type Override struct {
	CapitalAmount float64
	ProfitAmount  float64
}

// Allocation is the computed outcome for a single investor
type Allocation struct {
	InvestorID    int64
	CapitalAmount float64
	ProfitAmount  float64
	ProfitRate    float64 // profit over that investor's invested capital, percent
	SharePercent  float64 // investor's proportion of the deal's capital, percent
}

// Plan is the full computed outcome of a distribution round
type Plan struct {
	Scenario          Scenario
	TotalAmount       float64
	TotalInvested     float64
	CapitalPool       float64 // aggregate going back as capital
	ProfitPool        float64 // aggregate going out as profit
	CommissionAmount  float64
	ReserveAmount     float64
	CommissionPercent float64
	ReservePercent    float64
	Allocations       []Allocation
}

// Strategy computes a distribution plan for one scenario
type Strategy interface {
	// Scenario returns the scenario identifier for this strategy
	Scenario() Scenario

	// Validate checks whether the terms and stakes are usable
	Validate(terms Terms, stakes []Stake) error

	// Plan computes the per-investor allocations. Overrides, keyed by
	// investor ID, are used verbatim where present.
	Plan(terms Terms, stakes []Stake, overrides map[int64]Override) (*Plan, error)
}

// Factory classifies terms into the matching strategy
type Factory struct{}

// NewFactory creates a new strategy factory
func NewFactory() *Factory {
	return &Factory{}
}

// ForTerms picks the strategy for the given round terms. The three scenarios
// are mutually exclusive: PARTIAL regardless of sign, FINAL at a loss, FINAL
// with profit.
func (f *Factory) ForTerms(terms Terms) (Strategy, error) {
	switch terms.Type {
	case TypePartial:
		return &PartialStrategy{}, nil
	case TypeFinal:
		if terms.IsLoss || terms.EstimatedProfit < 0 {
			return &FinalLossStrategy{}, nil
		}
		return &FinalProfitStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown distribution type: %s", terms.Type)
	}
}

var (
	ErrNoStakes               = errors.New("at least one investor stake is required")
	ErrNonPositiveTotal       = errors.New("total amount must be positive")
	ErrNonPositiveStake       = errors.New("stake amounts must be positive")
	ErrPercentOutOfRange      = errors.New("percent must be between 0 and 100")
	ErrDeductionsExceedTotal  = errors.New("reserve and commission exceed the total amount")
	ErrCommissionExceedsGain  = errors.New("commission exceeds the estimated profit")
	ErrNegativeReturnCapital  = errors.New("capital return amount cannot be negative")
)

// Round2 rounds a monetary value to 2 decimal places
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// totalInvested sums the stakes
func totalInvested(stakes []Stake) float64 {
	var total float64
	for _, s := range stakes {
		total += s.Invested
	}
	return total
}

// validateStakes applies the checks shared by every strategy
func validateStakes(terms Terms, stakes []Stake) error {
	if len(stakes) == 0 {
		return ErrNoStakes
	}
	if terms.TotalAmount <= 0 {
		return ErrNonPositiveTotal
	}
	for _, s := range stakes {
		if s.Invested <= 0 {
			return ErrNonPositiveStake
		}
	}
	return nil
}

// allocateProportional splits capitalPool and profitPool across stakes by
// investment share, applying overrides verbatim. When no overrides are in
// play, the rounding remainder of each pool is folded into the last
// allocation so the sums conserve exactly.
func allocateProportional(capitalPool, profitPool float64, stakes []Stake, overrides map[int64]Override) []Allocation {
	invested := totalInvested(stakes)
	allocations := make([]Allocation, len(stakes))

	var capitalAssigned, profitAssigned float64
	for i, s := range stakes {
		share := s.Invested / invested

		var capital, profit float64
		if ov, ok := overrides[s.InvestorID]; ok {
			capital = Round2(ov.CapitalAmount)
			profit = Round2(ov.ProfitAmount)
		} else {
			capital = Round2(capitalPool * share)
			profit = Round2(profitPool * share)
		}
		capitalAssigned += capital
		profitAssigned += profit

		allocations[i] = Allocation{
			InvestorID:    s.InvestorID,
			CapitalAmount: capital,
			ProfitAmount:  profit,
			SharePercent:  Round2(share * 100),
		}
	}

	if len(overrides) == 0 && len(allocations) > 0 {
		last := &allocations[len(allocations)-1]
		if diff := Round2(capitalPool - capitalAssigned); diff != 0 {
			last.CapitalAmount = Round2(last.CapitalAmount + diff)
		}
		if diff := Round2(profitPool - profitAssigned); diff != 0 {
			last.ProfitAmount = Round2(last.ProfitAmount + diff)
		}
	}

	for i := range allocations {
		if stakes[i].Invested > 0 {
			allocations[i].ProfitRate = Round2(allocations[i].ProfitAmount / stakes[i].Invested * 100)
		}
	}

	return allocations
}
