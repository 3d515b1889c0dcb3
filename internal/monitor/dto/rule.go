package dto

// RulePayload is the typed rule configuration shared by create and update
// requests. Every predicate is an explicit optional field, validated at
// construction rather than at evaluation time.
type RulePayload struct {
	AccountID             uint     `json:"account_id"`
	AssetTicker           *string  `json:"asset_ticker,omitempty"`
	IsActive              *bool    `json:"is_active,omitempty"`
	DeltaThreshold        *float64 `json:"delta_threshold,omitempty"`
	DteMin                *int     `json:"dte_min,omitempty"`
	DteMax                *int     `json:"dte_max,omitempty"`
	TargetOtmPctLow       *float64 `json:"target_otm_pct_low,omitempty"`
	TargetOtmPctHigh      *float64 `json:"target_otm_pct_high,omitempty"`
	PremiumCloseThreshold *float64 `json:"premium_close_threshold,omitempty"`
	SpreadThreshold       *float64 `json:"spread_threshold,omitempty"`
	MaxSpread             *float64 `json:"max_spread,omitempty"`
	MinVolume             *int64   `json:"min_volume,omitempty"`
	MinOI                 *int64   `json:"min_oi,omitempty"`
	PriceToStrikeRatio    *float64 `json:"price_to_strike_ratio,omitempty"`
	NotifyChannels        []string `json:"notify_channels,omitempty"`
}

// GetRulesParam carries optional rule list filters.
type GetRulesParam struct {
	AccountID   *uint
	AssetTicker *string
	IsActive    *bool
}
