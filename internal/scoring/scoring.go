// Package scoring converts guess errors into point values.
//
// Both score functions decay linearly from a 10000-point maximum and floor at
// zero, so a wild guess is never penalized beyond losing the photo's points.
package scoring

import "math"

const (
	// MaxScore is the per-component maximum for a perfect guess.
	MaxScore = 10000

	// kmPenalty points are lost per kilometer of location error.
	kmPenalty = 5

	// yearPenalty points are lost per year of date error.
	yearPenalty = 400
)

// LocationScore returns the points for a location guess kmError kilometers
// from the true spot: 10000 at 0 km, 0 at 2000 km and beyond.
func LocationScore(kmError float64) int {
	return clamp(int(math.Round(MaxScore - kmError*kmPenalty)))
}

// TimeScore returns the points for a year guess yearError years off:
// 10000 for the exact year, 0 at 25 years and beyond. Symmetric in sign.
func TimeScore(yearError int) int {
	if yearError < 0 {
		yearError = -yearError
	}
	return clamp(MaxScore - yearError*yearPenalty)
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// Mode selects which score components count toward a photo's total. The Daily
// Challenge ranks on location only; Normal mode adds the time score when a
// year guess was made.
type Mode int

const (
	ModeDailyChallenge Mode = iota
	ModeNormal
)

// PhotoTotal combines the component scores of one photo under the mode's
// policy. timeScore is nil when no year guess was made.
func (m Mode) PhotoTotal(locationScore int, timeScore *int) int {
	if m == ModeNormal && timeScore != nil {
		return locationScore + *timeScore
	}
	return locationScore
}
