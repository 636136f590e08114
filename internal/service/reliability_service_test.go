package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reserbit/venue-lifecycle/internal/repository"
)

func TestScoreForNewCustomerIsBase(t *testing.T) {
	svc := NewReliabilityService(newFakeCounterStore())

	s, err := svc.ScoreFor(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 60, s.Score)
	assert.Equal(t, 3.0, s.Stars)
}

func TestScoreForReflectsHistory(t *testing.T) {
	counters := newFakeCounterStore()
	// Four honoured visits against one late cancellation: 60+20-5 = 75.
	counters.bump(7, repository.CounterHonored, 4)
	counters.bump(7, repository.CounterLateCancellations, 1)
	counters.bump(7, repository.CounterTotalReservations, 4)
	svc := NewReliabilityService(counters)

	s, err := svc.ScoreFor(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 75, s.Score)
	assert.Equal(t, 3.75, s.Stars)
}

func TestScoreForClampsAtZero(t *testing.T) {
	counters := newFakeCounterStore()
	counters.bump(7, repository.CounterNoShows, 10)
	svc := NewReliabilityService(counters)

	s, err := svc.ScoreFor(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Score)
	assert.Equal(t, 0.0, s.Stars)
}
