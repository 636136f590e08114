package lifecycle

import "math"

// Counters is a snapshot of one customer's lifetime booking history,
// maintained by the surrounding booking machinery and passed in by
// value so the scoring stays pure.  The engine never mutates it.
type Counters struct {
	Honored           int // reservations honoured (consumed)
	NoShows           int // confirmed no-shows
	LateCancellations int // cancellations in the LATE tier
	VeryLateCancels   int // cancellations in the VERY_LATE tier
	TotalReservations int // lifetime reservations ever made
	ReviewsPosted     int // reviews the customer published
	PaidConversions   int // free-to-paid bundle conversions
}

// Scoring weights.  The base is what a brand-new customer starts at.
const (
	scoreBase           = 60
	scoreMin            = 0
	scoreMax            = 100
	honoredBonus        = 5
	noShowPenalty       = 15
	lateCancelPenalty   = 5
	veryLatePenalty     = 10
	reviewBonus         = 1
	conversionBonus     = 2
	seniorityMinorAt    = 5  // lifetime reservations for the +5 bonus
	seniorityMajorAt    = 20 // lifetime reservations for the +10 bonus
	seniorityMinorBonus = 5
	seniorityMajorBonus = 10
)

// ComputeScore folds a customer's counters into a bounded [0,100]
// reliability score.  The seniority bonus is not cumulative: reaching
// the higher threshold replaces the lower bonus.
func ComputeScore(c Counters) int {
	score := scoreBase
	score += c.Honored * honoredBonus
	score -= c.NoShows * noShowPenalty
	score -= c.LateCancellations * lateCancelPenalty
	score -= c.VeryLateCancels * veryLatePenalty
	score += c.ReviewsPosted * reviewBonus
	score += c.PaidConversions * conversionBonus
	switch {
	case c.TotalReservations >= seniorityMajorAt:
		score += seniorityMajorBonus
	case c.TotalReservations >= seniorityMinorAt:
		score += seniorityMinorBonus
	}
	if score < scoreMin {
		return scoreMin
	}
	if score > scoreMax {
		return scoreMax
	}
	return score
}

// ScoreToStars converts a [0,100] score to the 0-5 star display scale,
// rounded half away from zero to two decimals.  Out-of-range input is
// clamped first so callers can feed raw values.
func ScoreToStars(score int) float64 {
	if score < scoreMin {
		score = scoreMin
	}
	if score > scoreMax {
		score = scoreMax
	}
	return math.Round(float64(score)/20*100) / 100
}

// StarsToScore is the inverse display conversion: stars * 20 rounded
// to the nearest integer and clamped to [0,100].  The two conversions
// round-trip exactly only at whole-star values.
func StarsToScore(stars float64) int {
	score := int(math.Round(stars * 20))
	if score < scoreMin {
		return scoreMin
	}
	if score > scoreMax {
		return scoreMax
	}
	return score
}
