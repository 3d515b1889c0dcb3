package service

import (
	"testing"
	"time"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/pkg/logger"
	"golang-options-monitor/pkg/utils"

	"github.com/stretchr/testify/assert"
)

func callPosition(strike float64, expiration time.Time) *entity.OptionPosition {
	return &entity.OptionPosition{
		ID:         1,
		AccountID:  1,
		AssetID:    1,
		Side:       entity.SideCall,
		Strategy:   entity.StrategyCoveredCall,
		Strike:     strike,
		Expiration: expiration,
		Quantity:   1,
		AvgPremium: 1.50,
		Status:     entity.PositionStatusOpen,
	}
}

func quoteAt(price float64, ts time.Time) *entity.Quote {
	return &entity.Quote{Symbol: "PETR4", Last: price, Timestamp: ts, Source: "test"}
}

func TestRuleMatcherDteWindow(t *testing.T) {
	matcher := NewRuleMatcher(logger.NewNop())
	ref := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	rule := &entity.Rule{
		ID:        1,
		AccountID: 1,
		DteMin:    utils.ToPointer(7),
		DteMax:    utils.ToPointer(30),
	}

	testCases := []struct {
		name    string
		dte     int
		matched bool
	}{
		{name: "below window", dte: 6, matched: false},
		{name: "lower bound inclusive", dte: 7, matched: true},
		{name: "inside window", dte: 20, matched: true},
		{name: "upper bound inclusive", dte: 30, matched: true},
		{name: "above window", dte: 31, matched: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			position := callPosition(64.50, ref.AddDate(0, 0, tc.dte))
			result := matcher.Evaluate(rule, MatchInput{Position: position, ReferenceDate: ref})
			assert.Equal(t, tc.matched, result.Matched)
			assert.Equal(t, tc.dte, result.Dte)
			if !tc.matched {
				assert.Equal(t, ReasonDteOutOfWindow, result.Reason)
			}
		})
	}
}

func TestRuleMatcherDeltaThreshold(t *testing.T) {
	matcher := NewRuleMatcher(logger.NewNop())
	ref := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	position := callPosition(64.50, ref.AddDate(0, 0, 20))
	rule := &entity.Rule{ID: 1, AccountID: 1, DeltaThreshold: utils.ToPointer(0.30)}

	testCases := []struct {
		name    string
		delta   *float64
		matched bool
		skipped bool
		reason  string
	}{
		{name: "above threshold", delta: utils.ToPointer(0.65), matched: true},
		{name: "negative delta uses magnitude", delta: utils.ToPointer(-0.40), matched: true},
		{name: "below threshold", delta: utils.ToPointer(0.10), reason: ReasonDeltaBelowThreshold},
		{name: "missing delta skips", delta: nil, skipped: true, reason: ReasonInsufficientData},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := matcher.Evaluate(rule, MatchInput{Position: position, Delta: tc.delta, ReferenceDate: ref})
			assert.Equal(t, tc.matched, result.Matched)
			assert.Equal(t, tc.skipped, result.Skipped)
			if tc.reason != "" {
				assert.Equal(t, tc.reason, result.Reason)
			}
		})
	}
}

func TestRuleMatcherOtmBand(t *testing.T) {
	matcher := NewRuleMatcher(logger.NewNop())
	ref := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	rule := &entity.Rule{
		ID:               1,
		AccountID:        1,
		TargetOtmPctLow:  utils.ToPointer(0.03),
		TargetOtmPctHigh: utils.ToPointer(0.08),
	}

	testCases := []struct {
		name    string
		side    string
		strike  float64
		price   float64
		matched bool
	}{
		// call OTM = (strike - price) / price
		{name: "call inside band", side: entity.SideCall, strike: 64.50, price: 62.00, matched: true},
		{name: "call too close to money", side: entity.SideCall, strike: 64.50, price: 64.00, matched: false},
		{name: "call too far out", side: entity.SideCall, strike: 70.00, price: 62.00, matched: false},
		// put OTM = (price - strike) / price
		{name: "put inside band", side: entity.SidePut, strike: 60.00, price: 62.50, matched: true},
		{name: "put in the money", side: entity.SidePut, strike: 64.00, price: 62.00, matched: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			position := callPosition(tc.strike, ref.AddDate(0, 0, 20))
			position.Side = tc.side
			result := matcher.Evaluate(rule, MatchInput{
				Position:        position,
				UnderlyingQuote: quoteAt(tc.price, ref),
				ReferenceDate:   ref,
			})
			assert.Equal(t, tc.matched, result.Matched)
			if !tc.matched {
				assert.Equal(t, ReasonOtmOutOfBand, result.Reason)
			}
		})
	}
}

func TestRuleMatcherPremiumCloseThreshold(t *testing.T) {
	matcher := NewRuleMatcher(logger.NewNop())
	ref := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	position := callPosition(64.50, ref.AddDate(0, 0, 20))
	rule := &entity.Rule{ID: 1, AccountID: 1, PremiumCloseThreshold: utils.ToPointer(0.30)}

	t.Run("premium at threshold matches", func(t *testing.T) {
		option := &entity.Quote{Last: 0.30, Timestamp: ref}
		result := matcher.Evaluate(rule, MatchInput{Position: position, OptionQuote: option, ReferenceDate: ref})
		assert.True(t, result.Matched)
	})

	t.Run("premium above threshold fails", func(t *testing.T) {
		option := &entity.Quote{Last: 0.95, Timestamp: ref}
		result := matcher.Evaluate(rule, MatchInput{Position: position, OptionQuote: option, ReferenceDate: ref})
		assert.False(t, result.Matched)
		assert.Equal(t, ReasonPremiumAboveThreshold, result.Reason)
	})

	t.Run("missing option quote skips", func(t *testing.T) {
		result := matcher.Evaluate(rule, MatchInput{Position: position, ReferenceDate: ref})
		assert.True(t, result.Skipped)
		assert.Equal(t, ReasonInsufficientData, result.Reason)
	})
}

func TestRuleMatcherLiquidityGates(t *testing.T) {
	matcher := NewRuleMatcher(logger.NewNop())
	ref := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	position := callPosition(64.50, ref.AddDate(0, 0, 20))
	rule := &entity.Rule{
		ID:        1,
		AccountID: 1,
		MinVolume: utils.ToPointer(int64(100)),
		MinOI:     utils.ToPointer(int64(500)),
		MaxSpread: utils.ToPointer(0.10),
	}

	testCases := []struct {
		name   string
		option entity.Quote
		reason string
	}{
		{
			name:   "liquid contract matches",
			option: entity.Quote{Bid: 1.00, Ask: 1.05, Volume: 200, OI: 1000, Timestamp: ref},
			reason: ReasonMatched,
		},
		{
			name:   "low volume",
			option: entity.Quote{Bid: 1.00, Ask: 1.05, Volume: 50, OI: 1000, Timestamp: ref},
			reason: ReasonLowVolume,
		},
		{
			name:   "low open interest",
			option: entity.Quote{Bid: 1.00, Ask: 1.05, Volume: 200, OI: 100, Timestamp: ref},
			reason: ReasonLowOpenInterest,
		},
		{
			name:   "spread too wide",
			option: entity.Quote{Bid: 1.00, Ask: 1.30, Volume: 200, OI: 1000, Timestamp: ref},
			reason: ReasonSpreadTooWide,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			option := tc.option
			result := matcher.Evaluate(rule, MatchInput{Position: position, OptionQuote: &option, ReferenceDate: ref})
			assert.Equal(t, tc.reason, result.Reason)
			assert.Equal(t, tc.reason == ReasonMatched, result.Matched)
		})
	}
}

func TestRuleMatcherStrikeDistanceGates(t *testing.T) {
	matcher := NewRuleMatcher(logger.NewNop())
	ref := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	position := callPosition(64.50, ref.AddDate(0, 0, 20))

	t.Run("underlying hugging the strike", func(t *testing.T) {
		rule := &entity.Rule{ID: 1, AccountID: 1, SpreadThreshold: utils.ToPointer(2.0)}
		result := matcher.Evaluate(rule, MatchInput{
			Position:        position,
			UnderlyingQuote: quoteAt(64.00, ref), // 0.78% away
			ReferenceDate:   ref,
		})
		assert.False(t, result.Matched)
		assert.Equal(t, ReasonTooCloseToStrike, result.Reason)
	})

	t.Run("price to strike ratio below floor", func(t *testing.T) {
		rule := &entity.Rule{ID: 1, AccountID: 1, PriceToStrikeRatio: utils.ToPointer(0.95)}
		result := matcher.Evaluate(rule, MatchInput{
			Position:        position,
			UnderlyingQuote: quoteAt(58.00, ref), // ratio 0.899
			ReferenceDate:   ref,
		})
		assert.False(t, result.Matched)
		assert.Equal(t, ReasonPriceToStrikeBelow, result.Reason)
	})
}

func TestRuleMatcherConjunctiveEvaluation(t *testing.T) {
	matcher := NewRuleMatcher(logger.NewNop())
	ref := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)

	// Short call, delta 0.65, 20 DTE, 4% OTM: every predicate holds.
	position := callPosition(64.50, ref.AddDate(0, 0, 20))
	rule := &entity.Rule{
		ID:               1,
		AccountID:        1,
		DeltaThreshold:   utils.ToPointer(0.30),
		DteMin:           utils.ToPointer(7),
		DteMax:           utils.ToPointer(30),
		TargetOtmPctLow:  utils.ToPointer(0.03),
		TargetOtmPctHigh: utils.ToPointer(0.08),
	}

	result := matcher.Evaluate(rule, MatchInput{
		Position:        position,
		UnderlyingQuote: quoteAt(62.00, ref), // 4.03% OTM
		Delta:           utils.ToPointer(0.65),
		ReferenceDate:   ref,
	})
	assert.True(t, result.Matched)
	assert.Equal(t, ReasonMatched, result.Reason)
	assert.Equal(t, 20, result.Dte)
	assert.InDelta(t, 0.0403, result.OtmPct, 0.001)
}
