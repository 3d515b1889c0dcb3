package entity

import "time"

// Account is a brokerage account. Identity fields are immutable once created.
type Account struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"not null" json:"name"`
	Broker        string    `json:"broker"`
	AccountNumber string    `json:"account_number"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`

	Assets    []Asset          `gorm:"foreignKey:AccountID" json:"assets,omitempty"`
	Positions []OptionPosition `gorm:"foreignKey:AccountID" json:"positions,omitempty"`
}

func (Account) TableName() string {
	return "accounts"
}
