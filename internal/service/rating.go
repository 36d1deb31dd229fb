package service

import "math"

// KFactor - standard chess K-factor applied to every rating update.
const KFactor = 32

// Outcomes from side A's perspective.
const (
	OutcomeWin  = 1.0
	OutcomeLoss = 0.0
	OutcomeDraw = 0.5
)

// ExpectedScore - the probability-weighted score a player at ratingA expects
// against a player at ratingB.
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingB-ratingA)/400))
}

// UpdateRatings - computes both players' updated ratings from a match
// outcome. Pure and deterministic; fractional results are the source of
// truth, any display rounding happens outside.
func UpdateRatings(ratingA, ratingB, outcomeA float64) (float64, float64) {
	expectedA := ExpectedScore(ratingA, ratingB)
	expectedB := ExpectedScore(ratingB, ratingA)

	newA := ratingA + KFactor*(outcomeA-expectedA)
	newB := ratingB + KFactor*((1-outcomeA)-expectedB)

	return newA, newB
}
