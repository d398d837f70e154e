package monitoring

import (
	"time"
)

// A ProgressBar is a tracker of the progress
type ProgressBar struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Finished += amount
}

// Fraction returns the finished share of the total, or 0 when the total is
// unknown.
func (b *ProgressBar) Fraction() float64 {
	if b.Total == 0 {
		return 0
	}

	return float64(b.Finished) / float64(b.Total)
}
