package dto

// CreatePositionRequest is the DTO for opening an option position.
// Expiration uses the YYYY-MM-DD date format.
type CreatePositionRequest struct {
	AccountID  uint    `json:"account_id"`
	AssetID    uint    `json:"asset_id"`
	Side       string  `json:"side"`
	Strategy   string  `json:"strategy"`
	Strike     float64 `json:"strike"`
	Expiration string  `json:"expiration"`
	Quantity   int     `json:"quantity"`
	AvgPremium float64 `json:"avg_premium"`
	Notes      string  `json:"notes"`
}

// ClosePositionRequest is the DTO for closing a position.
type ClosePositionRequest struct {
	ClosingPremium float64 `json:"closing_premium"`
}

// RollPositionRequest is the DTO for rolling a position into a replacement
// contract: the current position is closed and a new one opened atomically.
type RollPositionRequest struct {
	ClosingPremium float64 `json:"closing_premium"`
	Strike         float64 `json:"strike"`
	Expiration     string  `json:"expiration"`
	Premium        float64 `json:"premium"`
	Notes          string  `json:"notes"`
}

// GetPositionsParam carries optional position list filters.
type GetPositionsParam struct {
	AccountID   *uint
	AssetID     *uint
	AssetTicker *string
	Status      *string
}
