package service

import (
	"context"

	"github.com/reserbit/venue-lifecycle/internal/lifecycle"
	"github.com/reserbit/venue-lifecycle/internal/model"
)

// CounterReader loads a customer's counter snapshot.
type CounterReader interface {
	Get(ctx context.Context, userID uint64) (model.ReliabilityCounters, error)
}

// Score is a customer's reliability at a moment in time.
type Score struct {
	UserID uint64
	Score  int
	Stars  float64
}

// ReliabilityService derives reliability scores from stored counters.
type ReliabilityService struct {
	counters CounterReader
}

// NewReliabilityService returns a ReliabilityService reading from the
// given counter store.
func NewReliabilityService(counters CounterReader) *ReliabilityService {
	return &ReliabilityService{counters: counters}
}

// ScoreFor computes the current score and star display for a customer.
// A customer with no recorded history scores the base value.
func (s *ReliabilityService) ScoreFor(ctx context.Context, userID uint64) (Score, error) {
	c, err := s.counters.Get(ctx, userID)
	if err != nil {
		return Score{}, err
	}
	score := lifecycle.ComputeScore(lifecycle.Counters{
		Honored:           c.Honored,
		NoShows:           c.NoShows,
		LateCancellations: c.LateCancellations,
		VeryLateCancels:   c.VeryLateCancels,
		TotalReservations: c.TotalReservations,
		ReviewsPosted:     c.ReviewsPosted,
		PaidConversions:   c.PaidConversions,
	})
	return Score{
		UserID: userID,
		Score:  score,
		Stars:  lifecycle.ScoreToStars(score),
	}, nil
}
