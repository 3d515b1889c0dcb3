package entity

import "time"

// Quote is a market quote snapshot from one source. Quotes are held in the
// in-memory quote store, not persisted.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Bid       float64   `json:"bid"`
	Ask       float64   `json:"ask"`
	Last      float64   `json:"last"`
	Volume    int64     `json:"volume"`
	OI        int64     `json:"oi"`
	Delta     *float64  `json:"delta,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// Price returns the best available price: last trade, falling back to the
// bid/ask midpoint.
func (q *Quote) Price() float64 {
	if q.Last > 0 {
		return q.Last
	}
	return q.Mid()
}

// Mid returns the bid/ask midpoint.
func (q *Quote) Mid() float64 {
	if q.Bid > 0 && q.Ask > 0 {
		return (q.Bid + q.Ask) / 2
	}
	if q.Ask > 0 {
		return q.Ask
	}
	return q.Bid
}

// SpreadPct returns the bid/ask spread as a fraction of the midpoint.
func (q *Quote) SpreadPct() float64 {
	mid := q.Mid()
	if mid <= 0 {
		return 0
	}
	return (q.Ask - q.Bid) / mid
}
