package service

import (
	"math"
	"time"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/pkg/logger"
	"golang-options-monitor/pkg/utils"
)

// Match reason codes reported alongside the match decision.
const (
	ReasonMatched               = "matched"
	ReasonInsufficientData      = "insufficient_data"
	ReasonDteOutOfWindow        = "dte_out_of_window"
	ReasonDeltaBelowThreshold   = "delta_below_threshold"
	ReasonOtmOutOfBand          = "otm_out_of_band"
	ReasonPremiumAboveThreshold = "premium_above_threshold"
	ReasonLowVolume             = "low_volume"
	ReasonLowOpenInterest       = "low_open_interest"
	ReasonSpreadTooWide         = "spread_too_wide"
	ReasonTooCloseToStrike      = "too_close_to_strike"
	ReasonPriceToStrikeBelow    = "price_to_strike_below_ratio"
)

// MatchInput is the position and market snapshot a rule is evaluated against.
// UnderlyingQuote and OptionQuote may be nil; predicates that need the missing
// quote cause the evaluation to be skipped, not failed.
type MatchInput struct {
	Position        *entity.OptionPosition
	UnderlyingQuote *entity.Quote
	OptionQuote     *entity.Quote
	Delta           *float64
	ReferenceDate   time.Time
}

// MatchResult is the outcome of evaluating one rule against one position.
type MatchResult struct {
	Matched bool
	// Skipped is set when required market data was missing; the rule is
	// neither matched nor failed for this cycle.
	Skipped bool
	Reason  string
	Dte     int
	OtmPct  float64
}

// RuleMatcher evaluates a rule's configured predicate set against a position
// snapshot. All non-nil predicates must hold (conjunctive).
type RuleMatcher interface {
	Evaluate(rule *entity.Rule, input MatchInput) MatchResult
}

// NewRuleMatcher creates a rule matcher.
func NewRuleMatcher(log *logger.Logger) RuleMatcher {
	return &ruleMatcher{logger: log}
}

type ruleMatcher struct {
	logger *logger.Logger
}

func (m *ruleMatcher) Evaluate(rule *entity.Rule, input MatchInput) MatchResult {
	position := input.Position
	dte := utils.DaysToExpiry(position.Expiration, input.ReferenceDate)

	result := MatchResult{Dte: dte}

	// Expiry window, inclusive on both ends.
	if rule.DteMin != nil && dte < *rule.DteMin {
		result.Reason = ReasonDteOutOfWindow
		return result
	}
	if rule.DteMax != nil && dte > *rule.DteMax {
		result.Reason = ReasonDteOutOfWindow
		return result
	}

	if rule.DeltaThreshold != nil {
		if input.Delta == nil {
			return m.skip(rule, "delta")
		}
		if math.Abs(*input.Delta) < *rule.DeltaThreshold {
			result.Reason = ReasonDeltaBelowThreshold
			return result
		}
	}

	needsUnderlying := rule.TargetOtmPctLow != nil || rule.TargetOtmPctHigh != nil ||
		rule.SpreadThreshold != nil || rule.PriceToStrikeRatio != nil
	if needsUnderlying && input.UnderlyingQuote == nil {
		return m.skip(rule, "underlying quote")
	}

	if rule.TargetOtmPctLow != nil || rule.TargetOtmPctHigh != nil {
		otm := OtmPct(position.Side, position.Strike, input.UnderlyingQuote.Price())
		result.OtmPct = otm
		if rule.TargetOtmPctLow != nil && otm < *rule.TargetOtmPctLow {
			result.Reason = ReasonOtmOutOfBand
			return result
		}
		if rule.TargetOtmPctHigh != nil && otm > *rule.TargetOtmPctHigh {
			result.Reason = ReasonOtmOutOfBand
			return result
		}
	}

	// Minimum distance between underlying price and strike, in percent of the
	// strike. Positions hugging the strike are not worth alerting on.
	if rule.SpreadThreshold != nil && position.Strike > 0 {
		distancePct := math.Abs(input.UnderlyingQuote.Price()-position.Strike) / position.Strike * 100
		if distancePct < *rule.SpreadThreshold {
			result.Reason = ReasonTooCloseToStrike
			return result
		}
	}

	if rule.PriceToStrikeRatio != nil && position.Strike > 0 {
		ratio := input.UnderlyingQuote.Price() / position.Strike
		if ratio < *rule.PriceToStrikeRatio {
			result.Reason = ReasonPriceToStrikeBelow
			return result
		}
	}

	needsOption := rule.PremiumCloseThreshold != nil || rule.MinVolume != nil ||
		rule.MinOI != nil || rule.MaxSpread != nil
	if needsOption && input.OptionQuote == nil {
		return m.skip(rule, "option quote")
	}

	// Profit-take condition: current contract premium at or below threshold.
	if rule.PremiumCloseThreshold != nil {
		if input.OptionQuote.Price() > *rule.PremiumCloseThreshold {
			result.Reason = ReasonPremiumAboveThreshold
			return result
		}
	}

	// Liquidity gates on the option contract quote.
	if rule.MinVolume != nil && input.OptionQuote.Volume < *rule.MinVolume {
		result.Reason = ReasonLowVolume
		return result
	}
	if rule.MinOI != nil && input.OptionQuote.OI < *rule.MinOI {
		result.Reason = ReasonLowOpenInterest
		return result
	}
	if rule.MaxSpread != nil && input.OptionQuote.SpreadPct() > *rule.MaxSpread {
		result.Reason = ReasonSpreadTooWide
		return result
	}

	result.Matched = true
	result.Reason = ReasonMatched
	return result
}

func (m *ruleMatcher) skip(rule *entity.Rule, missing string) MatchResult {
	m.logger.Debug("Skipping rule evaluation, missing market data",
		logger.UintField("rule_id", rule.ID),
		logger.StringField("missing", missing))
	return MatchResult{Skipped: true, Reason: ReasonInsufficientData}
}

// OtmPct returns the out-of-the-money distance as a fraction of the
// underlying price. Negative values mean the position is in the money.
func OtmPct(side string, strike, underlyingPrice float64) float64 {
	if underlyingPrice <= 0 {
		return 0
	}
	if side == entity.SidePut {
		return (underlyingPrice - strike) / underlyingPrice
	}
	return (strike - underlyingPrice) / underlyingPrice
}
