package entity

import "time"

// Asset is an underlying instrument scoped to an account.
type Asset struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID uint      `gorm:"not null;index" json:"account_id"`
	Ticker    string    `gorm:"not null" json:"ticker"`
	Market    string    `json:"market"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Asset) TableName() string {
	return "assets"
}
