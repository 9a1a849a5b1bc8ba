package gamification

import (
	"fmt"
	"math"

	apperrors "github.com/ConnorBoetig-dev/morepractice-sub001/internal/pkg/errors"
)

// XPPerLevelUnit - масштаб кривой уровней: уровень L начинается с (L-1)^2 * 100 XP
const XPPerLevelUnit = 100

// LevelFromXP возвращает уровень для накопленного опыта: floor(sqrt(xp/100)) + 1
func LevelFromXP(xp int64) (int, error) {
	if xp < 0 {
		return 0, fmt.Errorf("%w: %d", apperrors.ErrInvalidXP, xp)
	}
	return int(isqrt(xp/XPPerLevelUnit)) + 1, nil
}

// XPFloorForLevel возвращает минимальный опыт уровня: (level-1)^2 * 100.
// Уровни ниже первого считаются первым.
func XPFloorForLevel(level int) int64 {
	if level < 1 {
		level = 1
	}
	n := int64(level - 1)
	return n * n * XPPerLevelUnit
}

// XPToNextLevel возвращает, сколько опыта осталось до следующего уровня
func XPToNextLevel(xp int64) (int64, error) {
	level, err := LevelFromXP(xp)
	if err != nil {
		return 0, err
	}
	return XPFloorForLevel(level+1) - xp, nil
}

// LevelProgress возвращает долю пройденного пути внутри текущего уровня (0..1)
func LevelProgress(xp int64) float64 {
	level, err := LevelFromXP(xp)
	if err != nil {
		return 0
	}
	floor := XPFloorForLevel(level)
	span := XPFloorForLevel(level+1) - floor
	if span <= 0 {
		return 0
	}
	return float64(xp-floor) / float64(span)
}

// isqrt - целочисленный квадратный корень с поправкой на погрешность float64
func isqrt(n int64) int64 {
	if n <= 0 {
		return 0
	}
	r := int64(math.Sqrt(float64(n)))
	for r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}
