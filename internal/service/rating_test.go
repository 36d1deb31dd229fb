package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectedScore(t *testing.T) {
	t.Run("Equal ratings expect half a point", func(t *testing.T) {
		assert.InDelta(t, 0.5, ExpectedScore(1200, 1200), 1e-9)
	})

	t.Run("A 400 point edge expects roughly ten to one", func(t *testing.T) {
		expected := ExpectedScore(1600, 1200)

		assert.InDelta(t, 10.0/11.0, expected, 1e-9)
	})

	t.Run("The two perspectives sum to one", func(t *testing.T) {
		assert.InDelta(t, 1.0, ExpectedScore(1500, 1100)+ExpectedScore(1100, 1500), 1e-9)
	})
}

func TestUpdateRatings(t *testing.T) {
	t.Run("A win between equals moves 16 points each way", func(t *testing.T) {
		// Given: two players at the default rating
		// When: player A wins
		newA, newB := UpdateRatings(1200, 1200, OutcomeWin)

		// Then: A gains 16 and B loses 16
		assert.InDelta(t, 1216, newA, 1e-9)
		assert.InDelta(t, 1184, newB, 1e-9)
	})

	t.Run("A draw between equals changes nothing", func(t *testing.T) {
		newA, newB := UpdateRatings(1200, 1200, OutcomeDraw)

		assert.InDelta(t, 1200, newA, 1e-9)
		assert.InDelta(t, 1200, newB, 1e-9)
	})

	t.Run("An upset win pays more than an expected win", func(t *testing.T) {
		// Given: an underdog at 1200 facing a favorite at 1600
		// When: the underdog wins
		newUnderdog, newFavorite := UpdateRatings(1200, 1600, OutcomeWin)

		// Then: the underdog gains more than 16 and the favorite loses the same amount
		assert.Greater(t, newUnderdog-1200, 16.0)
		assert.InDelta(t, newUnderdog-1200, 1600-newFavorite, 1e-9)
	})

	t.Run("Losing as the favorite costs rating", func(t *testing.T) {
		newFavorite, newUnderdog := UpdateRatings(1600, 1200, OutcomeLoss)

		assert.Less(t, newFavorite, 1600.0)
		assert.Greater(t, newUnderdog, 1200.0)
	})

	t.Run("Total rating is conserved", func(t *testing.T) {
		newA, newB := UpdateRatings(1321, 1187, OutcomeWin)

		assert.InDelta(t, 1321+1187, newA+newB, 1e-9)
	})
}
