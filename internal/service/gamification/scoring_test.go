package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ConnorBoetig-dev/morepractice-sub001/internal/pkg/errors"
)

func TestScore_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		correct    int
		total      int
		studyMode  bool
		multiplier float64
		xp         int64
	}{
		{"below 70 percent", 20, 30, false, 1.0, 200},
		{"83 percent", 25, 30, false, 1.25, 312},
		{"perfect", 30, 30, false, 1.5, 450},
		{"perfect in study mode", 30, 30, true, 1.5, 337},
		{"exactly 90 percent", 27, 30, false, 1.5, 405},
		{"exactly 80 percent", 8, 10, false, 1.25, 100},
		{"exactly 70 percent", 14, 20, false, 1.10, 154},
		{"zero correct", 0, 10, false, 1.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Score(tt.correct, tt.total, tt.studyMode)

			require.NoError(t, err)
			assert.InDelta(t, tt.multiplier, res.Multiplier, 1e-9)
			assert.Equal(t, tt.xp, res.XPEarned)
			assert.Equal(t, int64(tt.correct*XPPerCorrectAnswer), res.BaseXP)
		})
	}
}

func TestScore_PercentageIsUnrounded(t *testing.T) {
	res, err := Score(20, 30, false)
	require.NoError(t, err)

	assert.InDelta(t, 66.6666, res.ScorePercentage, 0.001)
	assert.False(t, res.IsPerfect())
}

func TestScore_InvalidInput(t *testing.T) {
	cases := [][2]int{{1, 0}, {0, -3}, {-1, 5}, {6, 5}}
	for _, c := range cases {
		_, err := Score(c[0], c[1], false)
		assert.ErrorIs(t, err, apperrors.ErrInvalidAttempt, "correct=%d total=%d", c[0], c[1])
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	}
}

func TestScore_Bounds(t *testing.T) {
	for total := 1; total <= 60; total++ {
		for correct := 0; correct <= total; correct++ {
			res, err := Score(correct, total, false)
			require.NoError(t, err)

			assert.GreaterOrEqual(t, res.ScorePercentage, 0.0)
			assert.LessOrEqual(t, res.ScorePercentage, 100.0)
			assert.GreaterOrEqual(t, res.XPEarned, res.BaseXP)
			assert.LessOrEqual(t, res.XPEarned, res.BaseXP*3/2)

			study, err := Score(correct, total, true)
			require.NoError(t, err)
			assert.LessOrEqual(t, study.XPEarned, res.XPEarned)
		}
	}
}

func TestIsHighScore(t *testing.T) {
	assert.True(t, IsHighScore(9, 10))
	assert.True(t, IsHighScore(27, 30))
	assert.False(t, IsHighScore(26, 30))
	assert.False(t, IsHighScore(0, 0))
}
