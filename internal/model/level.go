package model

type LevelDefinition struct {
	Number         int
	Name           string
	RequiredPoints int
	BadgeColor     string
}

// LevelTable is the configured set of levels. Order does not matter for lookups.
type LevelTable []LevelDefinition

// LevelFor returns the level with the highest threshold not above totalPoints,
// or nil when no threshold qualifies.
func (t LevelTable) LevelFor(totalPoints int) *LevelDefinition {
	var best *LevelDefinition
	for i := range t {
		l := &t[i]
		if l.RequiredPoints > totalPoints {
			continue
		}
		if best == nil || l.RequiredPoints > best.RequiredPoints {
			best = l
		}
	}
	if best == nil {
		return nil
	}

	level := *best
	return &level
}

// NextAfter returns the level with the lowest threshold strictly above totalPoints.
func (t LevelTable) NextAfter(totalPoints int) *LevelDefinition {
	var next *LevelDefinition
	for i := range t {
		l := &t[i]
		if l.RequiredPoints <= totalPoints {
			continue
		}
		if next == nil || l.RequiredPoints < next.RequiredPoints {
			next = l
		}
	}
	if next == nil {
		return nil
	}

	level := *next
	return &level
}

func (t LevelTable) ByNumber(number *int) *LevelDefinition {
	if number == nil {
		return nil
	}
	for i := range t {
		if t[i].Number == *number {
			level := t[i]
			return &level
		}
	}
	return nil
}

// Conflicts reports whether candidate reuses the number or threshold of an existing level.
func (t LevelTable) Conflicts(candidate LevelDefinition) bool {
	for _, l := range t {
		if l.Number == candidate.Number || l.RequiredPoints == candidate.RequiredPoints {
			return true
		}
	}
	return false
}
