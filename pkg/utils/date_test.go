package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysToExpiry(t *testing.T) {
	expiration := time.Date(2025, 9, 19, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		ref      time.Time
		expected int
	}{
		{
			name:     "thirty days out",
			ref:      time.Date(2025, 8, 20, 10, 30, 0, 0, time.UTC),
			expected: 30,
		},
		{
			name:     "same day morning",
			ref:      time.Date(2025, 9, 19, 9, 0, 0, 0, time.UTC),
			expected: 0,
		},
		{
			name:     "same day evening matches morning",
			ref:      time.Date(2025, 9, 19, 21, 45, 0, 0, time.UTC),
			expected: 0,
		},
		{
			name:     "after expiration",
			ref:      time.Date(2025, 9, 22, 0, 0, 0, 0, time.UTC),
			expected: -3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DaysToExpiry(expiration, tc.ref))
		})
	}
}

func TestTruncateToDate(t *testing.T) {
	ts := time.Date(2025, 8, 20, 17, 42, 13, 999, time.UTC)
	assert.Equal(t, time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC), TruncateToDate(ts))
}
