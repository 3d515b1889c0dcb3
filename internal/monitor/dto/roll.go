package dto

// RollCalculateRequest invokes the deterministic roll economics calculation.
type RollCalculateRequest struct {
	PositionID          uint    `json:"position_id"`
	CandidateStrike     float64 `json:"candidate_strike"`
	CandidateExpiration string  `json:"candidate_expiration"`
	CandidatePremium    float64 `json:"candidate_premium"`
}

// RollEconomicsResponse is the result of a roll calculation.
type RollEconomicsResponse struct {
	NetCreditPerShare float64 `json:"net_credit_per_share"`
	NetCredit         float64 `json:"net_credit"`
	DaysGained        int     `json:"days_gained"`
	StrikeDelta       float64 `json:"strike_delta"`
}

// ChainContract is one option chain entry supplied to the roll simulation.
type ChainContract struct {
	Strike     float64 `json:"strike"`
	Expiration string  `json:"expiration"`
	Bid        float64 `json:"bid"`
	Ask        float64 `json:"ask"`
	Volume     int64   `json:"volume"`
	OI         int64   `json:"oi"`
}

// RollSimulateRequest invokes the candidate search over an option chain. The
// OTM band defaults to the position's originating rule when omitted.
type RollSimulateRequest struct {
	PositionID       uint            `json:"position_id"`
	Chain            []ChainContract `json:"chain"`
	TargetOtmPctLow  *float64        `json:"target_otm_pct_low,omitempty"`
	TargetOtmPctHigh *float64        `json:"target_otm_pct_high,omitempty"`
	UnderlyingPrice  *float64        `json:"underlying_price,omitempty"`
}

// RollSuggestion is one scored roll candidate.
type RollSuggestion struct {
	Strike     float64 `json:"strike"`
	Expiration string  `json:"expiration"`
	Dte        int     `json:"dte"`
	OtmPct     float64 `json:"otm_pct"`
	Premium    float64 `json:"premium"`
	NetCredit  float64 `json:"net_credit"`
	Spread     float64 `json:"spread"`
	Volume     int64   `json:"volume"`
	OI         int64   `json:"oi"`
	Score      float64 `json:"score"`
}

// RollSimulateResponse is the simulation result: the winning candidate, its
// economics and the full scored candidate list.
type RollSimulateResponse struct {
	Best        *RollSuggestion       `json:"best"`
	Economics   RollEconomicsResponse `json:"economics"`
	Suggestions []RollSuggestion      `json:"suggestions"`
}

// RollAnalysisEntry is the per-position row of an account roll analysis.
type RollAnalysisEntry struct {
	PositionID     uint            `json:"position_id"`
	Ticker         string          `json:"ticker"`
	Strike         float64         `json:"strike"`
	Expiration     string          `json:"expiration"`
	Side           string          `json:"side"`
	Dte            int             `json:"dte"`
	BestSuggestion *RollSuggestion `json:"best_suggestion"`
}
