package entity

import (
	"fmt"
	"time"
)

// Option side.
const (
	SideCall = "CALL"
	SidePut  = "PUT"
)

// Option-selling strategies.
const (
	StrategyCoveredCall = "COVERED_CALL"
	StrategyShortPut    = "SHORT_PUT"
	StrategyOther       = "OTHER"
)

// Position status.
const (
	PositionStatusOpen   = "OPEN"
	PositionStatusClosed = "CLOSED"
)

// OptionPosition is a short option position. It is mutated only by the open,
// close and roll operations, never overwritten in place.
type OptionPosition struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	AccountID      uint       `gorm:"not null;index" json:"account_id"`
	AssetID        uint       `gorm:"not null;index" json:"asset_id"`
	Side           string     `gorm:"not null" json:"side"`
	Strategy       string     `gorm:"not null" json:"strategy"`
	Strike         float64    `gorm:"not null" json:"strike"`
	Expiration     time.Time  `gorm:"not null;type:date" json:"expiration"`
	Quantity       int        `gorm:"not null" json:"quantity"`
	AvgPremium     float64    `gorm:"not null" json:"avg_premium"`
	Status         string     `gorm:"not null;default:OPEN;index" json:"status"`
	Notes          string     `json:"notes"`
	ClosingPremium *float64   `json:"closing_premium,omitempty"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
	RolledToID     *uint      `json:"rolled_to_id,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Asset Asset `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
}

func (OptionPosition) TableName() string {
	return "option_positions"
}

// IsOpen reports whether the position is still open.
func (p *OptionPosition) IsOpen() bool {
	return p.Status == PositionStatusOpen
}

// ContractSymbol derives the quote symbol of the position's option contract,
// e.g. "PETR4-C-64.50-20250919". The bridge publishes option quotes under the
// same convention.
func (p *OptionPosition) ContractSymbol(ticker string) string {
	side := "C"
	if p.Side == SidePut {
		side = "P"
	}
	return fmt.Sprintf("%s-%s-%.2f-%s", ticker, side, p.Strike, p.Expiration.Format("20060102"))
}
