package dto

// CreateAccountRequest is the DTO for creating an account.
type CreateAccountRequest struct {
	Name          string `json:"name"`
	Broker        string `json:"broker"`
	AccountNumber string `json:"account_number"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
}

// CreateAssetRequest is the DTO for registering an asset under an account.
type CreateAssetRequest struct {
	AccountID uint   `json:"account_id"`
	Ticker    string `json:"ticker"`
	Market    string `json:"market"`
}
