// Package notify holds the notification targeting computations and the outbox
// dispatcher. Targeting is pure set arithmetic over staff ids; enqueueing
// happens inside the caller's transaction; delivery is asynchronous and
// best-effort.
package notify

import (
	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/models"
	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/utils"
)

// SelectionDiff is the outcome of comparing an event's confirmed set before
// and after a closure.
type SelectionDiff struct {
	NewlySelected   []uint
	NewlyDeselected []uint
}

// DiffSelection computes who must be told about a closure.
//
// On the first-ever closure everyone who signed up hears the outcome: the
// approved subset as selected, the rest as rejected. On later closures only
// actual status changes are reported, which is what keeps repeated admin
// edits from re-notifying the whole roster.
func DiffSelection(firstClosure bool, signedUp, previouslyConfirmed, approved []uint) SelectionDiff {
	signedUpSet := utils.ToUintSet(signedUp)
	approvedSet := utils.ToUintSet(approved)

	var diff SelectionDiff

	if firstClosure {
		for _, id := range approved {
			if signedUpSet[id] {
				diff.NewlySelected = append(diff.NewlySelected, id)
			}
		}
		for _, id := range signedUp {
			if !approvedSet[id] {
				diff.NewlyDeselected = append(diff.NewlyDeselected, id)
			}
		}
		return diff
	}

	prevSet := utils.ToUintSet(previouslyConfirmed)
	for _, id := range approved {
		if signedUpSet[id] && !prevSet[id] {
			diff.NewlySelected = append(diff.NewlySelected, id)
		}
	}
	for _, id := range previouslyConfirmed {
		if signedUpSet[id] && !approvedSet[id] {
			diff.NewlyDeselected = append(diff.NewlyDeselected, id)
		}
	}
	return diff
}

// EligibleStaff filters staff down to active accounts whose level grants
// access to an event requiring the given level. An empty required level means
// the event is open to everyone; otherwise both the staff level and the
// required level must resolve in the level table and the staff tier must sit
// at or above the required tier.
func EligibleStaff(staff []models.Staff, levels []models.Level, requiredLevel string) []models.Staff {
	out := make([]models.Staff, 0, len(staff))
	for _, s := range staff {
		if s.Status != models.StaffStatusActive {
			continue
		}
		if StaffMeetsLevel(s.Level, requiredLevel, levels) {
			out = append(out, s)
		}
	}
	return out
}

// StaffMeetsLevel reports whether a staff level name satisfies an event's
// required level name under the tier ordering.
func StaffMeetsLevel(staffLevel, requiredLevel string, levels []models.Level) bool {
	if requiredLevel == "" {
		return true
	}
	req := models.FindLevelByName(levels, requiredLevel)
	own := models.FindLevelByName(levels, staffLevel)
	if req == nil || own == nil {
		return false
	}
	return own.TierOrder >= req.TierOrder
}
