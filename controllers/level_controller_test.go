package controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/models"
)

func TestListLevelsOrderedByTier(t *testing.T) {
	r, db := newTestRouter(t)
	staff := seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusActive, "Bronze", 0)
	require.NoError(t, db.Create(&models.Level{Name: "Gold", MinPoints: 1500, TierOrder: 3}).Error)
	require.NoError(t, db.Create(&models.Level{Name: "Bronze", MinPoints: 0, TierOrder: 1}).Error)
	require.NoError(t, db.Create(&models.Level{Name: "Silver", MinPoints: 500, TierOrder: 2}).Error)

	w, resp := doRequest(t, r, http.MethodGet, "/api/v1/levels", tokenFor(t, staff), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Levels []models.Level `json:"levels"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Len(t, data.Levels, 3)
	require.Equal(t, "Bronze", data.Levels[0].Name)
	require.Equal(t, "Silver", data.Levels[1].Name)
	require.Equal(t, "Gold", data.Levels[2].Name)
}

func TestCreateLevelDefaultsToTopOfOrdering(t *testing.T) {
	r, db := newTestRouter(t)
	admin := seedAdmin(t, db)
	seedLevels(t, db)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/levels", tokenFor(t, admin), map[string]interface{}{
		"name":       "Platinum",
		"min_points": 3000,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Level models.Level `json:"level"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Equal(t, 4, data.Level.TierOrder)
}

func TestCreateLevelDuplicateName(t *testing.T) {
	r, db := newTestRouter(t)
	admin := seedAdmin(t, db)
	seedLevels(t, db)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/levels", tokenFor(t, admin), map[string]interface{}{
		"name": "Silver",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, 40950, resp.Code)
}

func TestUpdateLevel(t *testing.T) {
	r, db := newTestRouter(t)
	admin := seedAdmin(t, db)
	levels := seedLevels(t, db)

	w, _ := doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/v1/levels/%d", levels[1].ID), tokenFor(t, admin), map[string]interface{}{
		"min_points": 600,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Level
	require.NoError(t, db.First(&updated, levels[1].ID).Error)
	require.Equal(t, 600, updated.MinPoints)
	require.Equal(t, "Silver", updated.Name)
	require.Equal(t, 2, updated.TierOrder)
}

func TestDeleteLevelKeepsStaleReferences(t *testing.T) {
	r, db := newTestRouter(t)
	admin := seedAdmin(t, db)
	levels := seedLevels(t, db)
	alice := seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusActive, "Silver", 600)

	w, _ := doRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/levels/%d", levels[1].ID), tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Staff keep the now-dangling level name.
	var updated models.Staff
	require.NoError(t, db.First(&updated, alice.ID).Error)
	require.Equal(t, "Silver", updated.Level)
}

func TestDeleteLevelMissing(t *testing.T) {
	r, db := newTestRouter(t)
	admin := seedAdmin(t, db)

	w, resp := doRequest(t, r, http.MethodDelete, "/api/v1/levels/9999", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, 40450, resp.Code)
}

func TestReorderLevelSwapsNeighbours(t *testing.T) {
	r, db := newTestRouter(t)
	admin := seedAdmin(t, db)
	levels := seedLevels(t, db)

	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/levels/reorder", tokenFor(t, admin), map[string]interface{}{
		"level_id":  levels[0].ID,
		"direction": "up",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var bronze, silver models.Level
	require.NoError(t, db.First(&bronze, levels[0].ID).Error)
	require.NoError(t, db.First(&silver, levels[1].ID).Error)
	require.Equal(t, 2, bronze.TierOrder)
	require.Equal(t, 1, silver.TierOrder)
}

func TestReorderLevelAtEdge(t *testing.T) {
	r, db := newTestRouter(t)
	admin := seedAdmin(t, db)
	levels := seedLevels(t, db)
	token := tokenFor(t, admin)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/levels/reorder", token, map[string]interface{}{
		"level_id":  levels[0].ID,
		"direction": "down",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, 40054, resp.Code)

	w, resp = doRequest(t, r, http.MethodPost, "/api/v1/levels/reorder", token, map[string]interface{}{
		"level_id":  levels[2].ID,
		"direction": "up",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, 40054, resp.Code)
}

func TestReorderLevelBadDirection(t *testing.T) {
	r, db := newTestRouter(t)
	admin := seedAdmin(t, db)
	levels := seedLevels(t, db)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/levels/reorder", tokenFor(t, admin), map[string]interface{}{
		"level_id":  levels[0].ID,
		"direction": "sideways",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, 40053, resp.Code)
}
