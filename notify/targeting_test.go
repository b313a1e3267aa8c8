package notify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/models"
)

func TestDiffSelectionFirstClosure(t *testing.T) {
	signedUp := []uint{1, 2, 3, 4}
	approved := []uint{1, 3}

	diff := DiffSelection(true, signedUp, nil, approved)

	require.ElementsMatch(t, []uint{1, 3}, diff.NewlySelected)
	require.ElementsMatch(t, []uint{2, 4}, diff.NewlyDeselected)
}

func TestDiffSelectionFirstClosureIgnoresUnknownApprovals(t *testing.T) {
	signedUp := []uint{1, 2}
	approved := []uint{1, 99}

	diff := DiffSelection(true, signedUp, nil, approved)

	require.ElementsMatch(t, []uint{1}, diff.NewlySelected)
	require.ElementsMatch(t, []uint{2}, diff.NewlyDeselected)
}

func TestDiffSelectionRecloseIdenticalSetIsSilent(t *testing.T) {
	signedUp := []uint{1, 2, 3}
	previouslyConfirmed := []uint{1, 2}
	approved := []uint{1, 2}

	diff := DiffSelection(false, signedUp, previouslyConfirmed, approved)

	require.Empty(t, diff.NewlySelected)
	require.Empty(t, diff.NewlyDeselected)
}

func TestDiffSelectionRecloseOnlyChangesNotify(t *testing.T) {
	signedUp := []uint{1, 2, 3}
	previouslyConfirmed := []uint{1, 2}
	approved := []uint{1, 3}

	diff := DiffSelection(false, signedUp, previouslyConfirmed, approved)

	require.ElementsMatch(t, []uint{3}, diff.NewlySelected)
	require.ElementsMatch(t, []uint{2}, diff.NewlyDeselected)
}

func TestDiffSelectionShrinkingApprovedSet(t *testing.T) {
	signedUp := []uint{1, 2}
	previouslyConfirmed := []uint{1, 2}
	approved := []uint{1}

	diff := DiffSelection(false, signedUp, previouslyConfirmed, approved)

	require.Empty(t, diff.NewlySelected)
	require.ElementsMatch(t, []uint{2}, diff.NewlyDeselected)
}

func TestDiffSelectionSetsAreDisjointAndWithinRoster(t *testing.T) {
	signedUp := []uint{1, 2, 3, 4, 5}
	previouslyConfirmed := []uint{2, 3}
	approved := []uint{3, 4, 9}

	diff := DiffSelection(false, signedUp, previouslyConfirmed, approved)

	rosterSet := map[uint]bool{}
	for _, id := range signedUp {
		rosterSet[id] = true
	}
	selectedSet := map[uint]bool{}
	for _, id := range diff.NewlySelected {
		require.True(t, rosterSet[id])
		selectedSet[id] = true
	}
	for _, id := range diff.NewlyDeselected {
		require.True(t, rosterSet[id])
		require.False(t, selectedSet[id])
	}
}

func TestEligibleStaff(t *testing.T) {
	levels := []models.Level{
		{ID: 1, Name: "Bronze", MinPoints: 0, TierOrder: 1},
		{ID: 2, Name: "Silver", MinPoints: 500, TierOrder: 2},
		{ID: 3, Name: "Gold", MinPoints: 1500, TierOrder: 3},
	}
	staff := []models.Staff{
		{ID: 1, Status: models.StaffStatusActive, Level: "Bronze"},
		{ID: 2, Status: models.StaffStatusActive, Level: "Silver"},
		{ID: 3, Status: models.StaffStatusActive, Level: "Gold"},
		{ID: 4, Status: models.StaffStatusPending, Level: "Gold"},
		{ID: 5, Status: models.StaffStatusActive, Level: "Unknown"},
	}

	eligible := EligibleStaff(staff, levels, "Silver")
	ids := make([]uint, 0, len(eligible))
	for _, s := range eligible {
		ids = append(ids, s.ID)
	}
	require.ElementsMatch(t, []uint{2, 3}, ids)
}

func TestEligibleStaffEmptyRequiredLevel(t *testing.T) {
	staff := []models.Staff{
		{ID: 1, Status: models.StaffStatusActive, Level: ""},
		{ID: 2, Status: models.StaffStatusInactive, Level: "Gold"},
	}

	eligible := EligibleStaff(staff, nil, "")
	require.Len(t, eligible, 1)
	require.Equal(t, uint(1), eligible[0].ID)
}

func TestStaffMeetsLevel(t *testing.T) {
	levels := []models.Level{
		{ID: 1, Name: "Bronze", TierOrder: 1},
		{ID: 2, Name: "Silver", TierOrder: 2},
	}

	require.True(t, StaffMeetsLevel("Silver", "Bronze", levels))
	require.True(t, StaffMeetsLevel("Silver", "Silver", levels))
	require.False(t, StaffMeetsLevel("Bronze", "Silver", levels))
	require.True(t, StaffMeetsLevel("", "", levels))
	require.False(t, StaffMeetsLevel("", "Bronze", levels))
	require.False(t, StaffMeetsLevel("Bronze", "Platinum", levels))
}
