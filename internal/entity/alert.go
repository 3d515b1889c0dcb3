package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Alert lifecycle states. PENDING and SENT are the non-terminal states the
// per-day dedup invariant applies to.
const (
	AlertStatusPending      = "PENDING"
	AlertStatusSent         = "SENT"
	AlertStatusAcknowledged = "ACKNOWLEDGED"
	AlertStatusExpired      = "EXPIRED"
)

// Alert trigger reasons.
const (
	AlertReasonRollTrigger       = "roll_trigger"
	AlertReasonExpirationWarning = "expiration_warning"
	AlertReasonProfitTake        = "profit_take"
	AlertReasonManual            = "manual"
)

// Alert is one rule match event for a position, or a manual notification when
// PositionID is nil. At most one PENDING/SENT alert may exist per
// (rule, position, reason, trigger day).
type Alert struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	AccountID   uint           `gorm:"not null;index" json:"account_id"`
	RuleID      *uint          `gorm:"index" json:"rule_id,omitempty"`
	PositionID  *uint          `gorm:"index" json:"position_id,omitempty"`
	Reason      string         `gorm:"not null" json:"reason"`
	Message     string         `json:"message"`
	Status      string         `gorm:"not null;default:PENDING;index" json:"status"`
	Payload     datatypes.JSON `json:"payload"`
	TriggeredAt time.Time      `gorm:"not null" json:"triggered_at"`
	TriggerDay  time.Time      `gorm:"not null;type:date;index" json:"trigger_day"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	Attempts []NotificationAttempt `gorm:"foreignKey:AlertID" json:"attempts,omitempty"`
}

func (Alert) TableName() string {
	return "alerts"
}

// IsTerminal reports whether the alert reached a terminal state.
func (a *Alert) IsTerminal() bool {
	return a.Status == AlertStatusAcknowledged || a.Status == AlertStatusExpired
}
