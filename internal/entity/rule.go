package entity

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Rule is a trigger rule scoped to an account and optionally to one ticker.
// Every non-nil predicate must hold for the rule to match a position; nil
// predicates are not evaluated.
type Rule struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	AccountID             uint           `gorm:"not null;index" json:"account_id"`
	AssetTicker           *string        `gorm:"index" json:"asset_ticker,omitempty"`
	IsActive              bool           `gorm:"not null;default:true" json:"is_active"`
	DeltaThreshold        *float64       `json:"delta_threshold,omitempty"`
	DteMin                *int           `json:"dte_min,omitempty"`
	DteMax                *int           `json:"dte_max,omitempty"`
	TargetOtmPctLow       *float64       `json:"target_otm_pct_low,omitempty"`
	TargetOtmPctHigh      *float64       `json:"target_otm_pct_high,omitempty"`
	PremiumCloseThreshold *float64       `json:"premium_close_threshold,omitempty"`
	SpreadThreshold       *float64       `json:"spread_threshold,omitempty"`
	MaxSpread             *float64       `json:"max_spread,omitempty"`
	MinVolume             *int64         `json:"min_volume,omitempty"`
	MinOI                 *int64         `gorm:"column:min_oi" json:"min_oi,omitempty"`
	PriceToStrikeRatio    *float64       `json:"price_to_strike_ratio,omitempty"`
	NotifyChannels        datatypes.JSON `json:"notify_channels"`
	CreatedAt             time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Rule) TableName() string {
	return "rules"
}

// Channels decodes the notify_channels JSON column.
func (r *Rule) Channels() []string {
	var channels []string
	if len(r.NotifyChannels) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.NotifyChannels, &channels); err != nil {
		return nil
	}
	return channels
}

// AppliesTo reports whether the rule is in scope for a position on the given
// ticker.
func (r *Rule) AppliesTo(position *OptionPosition, ticker string) bool {
	if r.AccountID != position.AccountID {
		return false
	}
	if r.AssetTicker != nil && *r.AssetTicker != ticker {
		return false
	}
	return true
}
