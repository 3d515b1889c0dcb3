package dto

import "time"

// HeartbeatRequest is the terminal bridge heartbeat payload.
type HeartbeatRequest struct {
	TerminalID    string `json:"terminal_id"`
	AccountNumber string `json:"account_number"`
	Broker        string `json:"broker"`
	Build         string `json:"build"`
	Timestamp     string `json:"timestamp"`
}

// BridgeQuote is one quote snapshot in a bridge batch.
type BridgeQuote struct {
	Symbol    string    `json:"symbol"`
	Bid       float64   `json:"bid"`
	Ask       float64   `json:"ask"`
	Last      float64   `json:"last"`
	Volume    int64     `json:"volume"`
	OI        int64     `json:"oi"`
	Delta     *float64  `json:"delta,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// BridgeQuotesRequest is the bridge quote ingestion payload.
type BridgeQuotesRequest struct {
	TerminalID    string        `json:"terminal_id"`
	AccountNumber string        `json:"account_number"`
	Quotes        []BridgeQuote `json:"quotes"`
}

// BridgeQuotesResponse reports how many quotes in a batch were accepted.
type BridgeQuotesResponse struct {
	Accepted int `json:"accepted"`
}

// SendNotificationRequest is the manual notification payload. It bypasses the
// rule engine but still goes through the dispatch queue.
type SendNotificationRequest struct {
	AccountID uint     `json:"account_id"`
	Message   string   `json:"message"`
	Channels  []string `json:"channels"`
	Phone     string   `json:"phone,omitempty"`
	Email     string   `json:"email,omitempty"`
}
