package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/internal/monitor/dto"
	"golang-options-monitor/pkg/common"
	"golang-options-monitor/pkg/utils"
)

// contractMultiplier is the standard share count per option contract.
const contractMultiplier = 100

// RollEconomics is the deterministic outcome of rolling a position into a
// candidate contract.
type RollEconomics struct {
	NetCreditPerShare float64
	NetCredit         float64
	DaysGained        int
	StrikeDelta       float64
}

// OtmBand is the target out-of-the-money band for a roll search.
type OtmBand struct {
	Low  float64
	High float64
}

// Midpoint returns the band midpoint.
func (b OtmBand) Midpoint() float64 {
	return (b.Low + b.High) / 2
}

// LiquidityGates are the chain filters inherited from the position's
// originating rule. Nil fields are not applied.
type LiquidityGates struct {
	MinVolume *int64
	MinOI     *int64
	MaxSpread *float64
}

// GatesFromRule extracts the liquidity gates of a rule. A nil rule yields
// empty gates.
func GatesFromRule(rule *entity.Rule) LiquidityGates {
	if rule == nil {
		return LiquidityGates{}
	}
	return LiquidityGates{
		MinVolume: rule.MinVolume,
		MinOI:     rule.MinOI,
		MaxSpread: rule.MaxSpread,
	}
}

// RollCalculator computes roll economics and searches option chains for
// replacement candidates. Pure computation, no I/O.
type RollCalculator interface {
	Calculate(position *entity.OptionPosition, candidateStrike float64, candidateExpiration time.Time, candidatePremium float64) (RollEconomics, error)
	Simulate(position *entity.OptionPosition, chain []dto.ChainContract, underlyingPrice float64, band OtmBand, gates LiquidityGates, ref time.Time) ([]dto.RollSuggestion, RollEconomics, error)
	Preview(position *entity.OptionPosition, rule *entity.Rule, underlyingPrice float64, ref time.Time) []dto.RollSuggestion
}

// NewRollCalculator creates a roll calculator.
func NewRollCalculator() RollCalculator {
	return &rollCalculator{}
}

type rollCalculator struct{}

// Calculate returns the roll economics for a well-formed candidate. Rolling
// must move the expiration forward.
func (c *rollCalculator) Calculate(position *entity.OptionPosition, candidateStrike float64, candidateExpiration time.Time, candidatePremium float64) (RollEconomics, error) {
	if !candidateExpiration.After(position.Expiration) {
		return RollEconomics{}, fmt.Errorf("candidate expiration %s not after current %s: %w",
			candidateExpiration.Format("2006-01-02"), position.Expiration.Format("2006-01-02"), common.ErrInvalidCandidate)
	}

	perShare := candidatePremium - position.AvgPremium
	return RollEconomics{
		NetCreditPerShare: perShare,
		NetCredit:         perShare * float64(position.Quantity) * contractMultiplier,
		DaysGained:        utils.DaysToExpiry(candidateExpiration, position.Expiration),
		StrikeDelta:       candidateStrike - position.Strike,
	}, nil
}

// Simulate searches the chain for the contract whose OTM percentage falls
// closest to the band midpoint, among contracts expiring strictly after the
// current position and passing the liquidity gates. Ties break on higher net
// credit, then nearer expiration. The returned slice is sorted best first.
// Returns ErrNoCandidateFound when the chain has no qualifying contract.
func (c *rollCalculator) Simulate(position *entity.OptionPosition, chain []dto.ChainContract, underlyingPrice float64, band OtmBand, gates LiquidityGates, ref time.Time) ([]dto.RollSuggestion, RollEconomics, error) {
	type scored struct {
		suggestion dto.RollSuggestion
		expiration time.Time
		distance   float64
	}

	var candidates []scored
	for _, contract := range chain {
		expiration, err := time.Parse("2006-01-02", contract.Expiration)
		if err != nil {
			continue
		}
		if !expiration.After(position.Expiration) {
			continue
		}

		quote := entity.Quote{Bid: contract.Bid, Ask: contract.Ask}
		spread := quote.SpreadPct()
		if gates.MinVolume != nil && contract.Volume < *gates.MinVolume {
			continue
		}
		if gates.MinOI != nil && contract.OI < *gates.MinOI {
			continue
		}
		if gates.MaxSpread != nil && spread > *gates.MaxSpread {
			continue
		}

		otm := OtmPct(position.Side, contract.Strike, underlyingPrice)
		if otm < band.Low || otm > band.High {
			continue
		}

		premium := quote.Mid()
		dte := utils.DaysToExpiry(expiration, ref)
		netCredit := (premium - position.AvgPremium) * float64(position.Quantity) * contractMultiplier

		candidates = append(candidates, scored{
			suggestion: dto.RollSuggestion{
				Strike:     contract.Strike,
				Expiration: contract.Expiration,
				Dte:        dte,
				OtmPct:     otm,
				Premium:    premium,
				NetCredit:  netCredit,
				Spread:     spread,
				Volume:     contract.Volume,
				OI:         contract.OI,
				Score:      c.score(otm, premium-position.AvgPremium, dte, band, nil),
			},
			expiration: expiration,
			distance:   math.Abs(otm - band.Midpoint()),
		})
	}

	if len(candidates) == 0 {
		return nil, RollEconomics{}, common.ErrNoCandidateFound
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		if candidates[i].suggestion.NetCredit != candidates[j].suggestion.NetCredit {
			return candidates[i].suggestion.NetCredit > candidates[j].suggestion.NetCredit
		}
		return candidates[i].expiration.Before(candidates[j].expiration)
	})

	best := candidates[0]
	economics, err := c.Calculate(position, best.suggestion.Strike, best.expiration, best.suggestion.Premium)
	if err != nil {
		return nil, RollEconomics{}, err
	}

	suggestions := make([]dto.RollSuggestion, 0, len(candidates))
	for _, candidate := range candidates {
		suggestions = append(suggestions, candidate.suggestion)
	}
	return suggestions, economics, nil
}

// Preview builds a synthetic candidate grid around the current underlying
// price with estimated premiums, for alerts raised without live chain data.
// Top suggestions come back sorted by score.
func (c *rollCalculator) Preview(position *entity.OptionPosition, rule *entity.Rule, underlyingPrice float64, ref time.Time) []dto.RollSuggestion {
	band := OtmBand{Low: 0.03, High: 0.08}
	dteMin, dteMax := 21, 45
	if rule != nil {
		if rule.TargetOtmPctLow != nil {
			band.Low = *rule.TargetOtmPctLow
		}
		if rule.TargetOtmPctHigh != nil {
			band.High = *rule.TargetOtmPctHigh
		}
		if rule.DteMin != nil {
			dteMin = *rule.DteMin
		}
		if rule.DteMax != nil {
			dteMax = *rule.DteMax
		}
	}

	strikeIncrements := []float64{0.03, 0.05, 0.08, 0.10, 0.12}
	dteGrid := []int{21, 30, 45, 60}
	currentDte := utils.DaysToExpiry(position.Expiration, ref)
	buyback := EstimatePremium(underlyingPrice, position.Strike, currentDte, position.Side)

	var suggestions []dto.RollSuggestion
	for _, dte := range dteGrid {
		if dte < dteMin || dte > dteMax {
			continue
		}
		expiration := utils.TruncateToDate(ref.UTC()).AddDate(0, 0, dte)
		if !expiration.After(position.Expiration) {
			continue
		}

		for _, increment := range strikeIncrements {
			var strike float64
			if position.Side == entity.SidePut {
				strike = underlyingPrice * (1 - increment)
			} else {
				strike = underlyingPrice * (1 + increment)
			}

			otm := OtmPct(position.Side, strike, underlyingPrice)
			if otm < band.Low || otm > band.High {
				continue
			}

			premium := EstimatePremium(underlyingPrice, strike, dte, position.Side)
			netCredit := premium - buyback

			suggestions = append(suggestions, dto.RollSuggestion{
				Strike:     math.Round(strike*100) / 100,
				Expiration: expiration.Format("2006-01-02"),
				Dte:        dte,
				OtmPct:     math.Round(otm*10000) / 10000,
				Premium:    math.Round(premium*100) / 100,
				NetCredit:  math.Round(netCredit*100) / 100,
				Score:      c.score(otm, netCredit, dte, band, &[2]int{dteMin, dteMax}),
			})
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	if len(suggestions) > 5 {
		suggestions = suggestions[:5]
	}
	return suggestions
}

// score ranks a candidate 0-100: net credit up to 40 points, proximity to the
// OTM band midpoint up to 30, proximity to the DTE window midpoint up to 20,
// liquidity 10.
func (c *rollCalculator) score(otmPct, netCreditPerShare float64, dte int, band OtmBand, dteWindow *[2]int) float64 {
	score := 0.0

	if netCreditPerShare > 0 {
		score += math.Min(netCreditPerShare*10, 40)
	}

	otmDistance := math.Abs(otmPct - band.Midpoint())
	score += math.Max(0, 30-otmDistance*300)

	if dteWindow != nil {
		targetDte := float64(dteWindow[0]+dteWindow[1]) / 2
		score += math.Max(0, 20-math.Abs(float64(dte)-targetDte)/2)
	} else {
		score += 20
	}

	score += 10
	return math.Round(score*100) / 100
}

// EstimatePremium is a rough intrinsic-plus-time-value premium estimate used
// for preview grids when no live option quote exists.
func EstimatePremium(underlyingPrice, strike float64, dte int, side string) float64 {
	var intrinsic float64
	if side == entity.SidePut {
		intrinsic = math.Max(0, strike-underlyingPrice)
	} else {
		intrinsic = math.Max(0, underlyingPrice-strike)
	}

	timeValue := underlyingPrice * 0.02 * (float64(dte) / 30) * 0.3
	if intrinsic == 0 && underlyingPrice > 0 {
		otmDistance := math.Abs(strike-underlyingPrice) / underlyingPrice
		timeValue *= math.Max(0, 1-otmDistance)
	}

	return math.Max(intrinsic+timeValue, 0.01)
}
