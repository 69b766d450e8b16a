// Package levels maps accumulated points to user levels. Everything here is
// pure: callers decide when to persist a level bump.
//
// The curve is 50 * n^1.4 total points (rounded) to reach level n:
//
//	level 1: 0
//	level 2: 132
//	level 3: 233
package levels

import "math"

// MaxLevel is a safety ceiling for the level walk.
const MaxLevel = 100

// difficultyMultipliers index by difficulty 1..5. Out-of-range difficulties
// earn no bonus.
var difficultyMultipliers = map[int]float64{
	1: 0,
	2: 0.2,
	3: 0.5,
	4: 0.8,
	5: 1.0,
}

// PointsRequiredForLevel returns the total points needed to reach level n.
// Rounded to the nearest point so the published thresholds (132, 233, ...)
// hold exactly.
func PointsRequiredForLevel(n int) int {
	if n <= 1 {
		return 0
	}
	return int(math.Round(50 * math.Pow(float64(n), 1.4)))
}

// LevelFromPoints walks levels upward from 1 while totalPoints covers the next
// threshold. The result never drops below currentStoredLevel: level is
// monotonic even if the points data is inconsistent.
func LevelFromPoints(totalPoints, currentStoredLevel int) int {
	points := max(0, totalPoints)
	stored := max(1, currentStoredLevel)

	level := 1
	for level < MaxLevel && points >= PointsRequiredForLevel(level+1) {
		level++
	}
	return max(level, stored)
}

// BonusPoints returns the difficulty bonus awarded on top of a challenge's
// base points.
func BonusPoints(basePoints, difficulty int) int {
	return int(math.Floor(float64(basePoints) * difficultyMultipliers[difficulty]))
}

// UserLevelInfo is the full derived leveling state for one user.
type UserLevelInfo struct {
	CurrentLevel       int  `json:"current_level"` // effective: max(calculated, stored)
	TotalPoints        int  `json:"total_points"`
	CurrentLevelPoints int  `json:"current_level_points"` // earned within the current level
	PointsToNextLevel  int  `json:"points_to_next_level"`
	ProgressPercent    int  `json:"progress_percent"` // 0..100 within the current level
	IsLevelUp          bool `json:"is_level_up"`      // effective > stored
}

// CalculateUserLevelInfo derives the effective level and in-level progress
// from the stored level and total points.
func CalculateUserLevelInfo(storedLevel, totalPoints int) UserLevelInfo {
	stored := max(1, storedLevel)
	points := max(0, totalPoints)

	effective := LevelFromPoints(points, stored)

	floor := PointsRequiredForLevel(effective)
	ceil := PointsRequiredForLevel(effective + 1)
	span := ceil - floor
	inLevel := max(0, points-floor)
	toNext := max(0, ceil-points)

	percent := 0
	if span > 0 {
		percent = int(math.Floor(float64(inLevel) / float64(span) * 100))
	}
	percent = min(100, max(0, percent))

	return UserLevelInfo{
		CurrentLevel:       effective,
		TotalPoints:        points,
		CurrentLevelPoints: inLevel,
		PointsToNextLevel:  toNext,
		ProgressPercent:    percent,
		IsLevelUp:          effective > stored,
	}
}
