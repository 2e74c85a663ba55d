package utils

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const day = 24 * time.Hour

// RentalDays is the number of billable days between pickup and return,
// rounded up. A same-day rental bills one day.
func RentalDays(pickup, ret time.Time) int {
	span := ret.Sub(pickup)
	if span <= 0 {
		return 1
	}
	days := int(math.Ceil(float64(span) / float64(day)))
	if days < 1 {
		days = 1
	}
	return days
}

// RentalPrice returns pricePerDay times the billable days.
func RentalPrice(pricePerDay float64, pickup, ret time.Time) float64 {
	return pricePerDay * float64(RentalDays(pickup, ret))
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseDate accepts a calendar date (2006-01-02) or an RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
