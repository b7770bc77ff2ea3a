package model

import "time"

type UserProgress struct {
	UserID       int64
	TotalPoints  int
	CurrentLevel *LevelDefinition
	UpdatedAt    time.Time
}

// ProgressChange is the outcome of a single AddPoints call.
type ProgressChange struct {
	Amount        int
	PreviousLevel *LevelDefinition
	Progress      *UserProgress
}

func (c *ProgressChange) LeveledUp() bool {
	if c == nil || c.Progress == nil || c.Progress.CurrentLevel == nil {
		return false
	}
	if c.PreviousLevel == nil {
		return true
	}
	return c.Progress.CurrentLevel.Number != c.PreviousLevel.Number
}

type ProgressOverview struct {
	Progress      *UserProgress
	Levels        LevelTable
	NextLevel     *LevelDefinition
	PercentToNext int
	PointsToNext  int
}
