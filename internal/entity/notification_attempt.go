package entity

import "time"

// Notification attempt outcomes.
const (
	AttemptStatusSuccess  = "SUCCESS"
	AttemptStatusFailed   = "FAILED"
	AttemptStatusRetrying = "RETRYING"
)

// NotificationAttempt is one delivery attempt of an alert on one channel,
// recorded for audit regardless of outcome.
type NotificationAttempt struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AlertID       uint      `gorm:"not null;index" json:"alert_id"`
	Channel       string    `gorm:"not null" json:"channel"`
	AttemptNumber int       `gorm:"not null" json:"attempt_number"`
	Status        string    `gorm:"not null" json:"status"`
	Target        string    `json:"target"`
	ProviderMsgID string    `json:"provider_msg_id"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `gorm:"not null" json:"timestamp"`
}

func (NotificationAttempt) TableName() string {
	return "notification_attempts"
}
