package models

import "sort"

// Level is a named seniority tier. TierOrder imposes the total order between
// tiers (lower = less senior); MinPoints is the balance threshold for reaching
// the tier. The two are expected to move together but this is not validated.
type Level struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:64;uniqueIndex;not null" json:"name"`
	MinPoints int    `gorm:"not null;default:0" json:"min_points"`
	TierOrder int    `gorm:"column:tier_order;not null;default:0" json:"order"`
}

// LevelForPoints resolves the level name for a point balance: the tier with
// the highest qualifying MinPoints wins, a balance below every threshold falls
// back to the least-senior tier, and an empty table yields the empty string.
func LevelForPoints(points int, levels []Level) string {
	if len(levels) == 0 {
		return ""
	}

	sorted := make([]Level, len(levels))
	copy(sorted, levels)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinPoints > sorted[j].MinPoints
	})

	for _, lv := range sorted {
		if lv.MinPoints <= points {
			return lv.Name
		}
	}

	bottom := levels[0]
	for _, lv := range levels[1:] {
		if lv.TierOrder < bottom.TierOrder {
			bottom = lv
		}
	}
	return bottom.Name
}

// FindLevelByName returns the level with the given name, or nil.
func FindLevelByName(levels []Level, name string) *Level {
	for i := range levels {
		if levels[i].Name == name {
			return &levels[i]
		}
	}
	return nil
}

// ApplyPointDelta applies a signed point delta to a staff record, clamping the
// balance at zero, and recomputes the level projection. It reports whether the
// level name changed. The single recompute path shared by award, batch award
// and manual adjustment.
func ApplyPointDelta(staff *Staff, delta int, levels []Level) bool {
	newPoints := staff.Points + delta
	if newPoints < 0 {
		newPoints = 0
	}
	oldLevel := staff.Level
	staff.Points = newPoints
	staff.Level = LevelForPoints(newPoints, levels)
	return staff.Level != oldLevel
}
