package controllers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/models"
)

func TestRegisterCreatesPendingStaff(t *testing.T) {
	r, db := newTestRouter(t)
	seedLevels(t, db)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 0, resp.Code)

	var staff models.Staff
	require.NoError(t, db.Where("username = ?", "alice").First(&staff).Error)
	require.Equal(t, models.RoleStaff, staff.Role)
	require.Equal(t, models.StaffStatusPending, staff.Status)
	require.Equal(t, "Bronze", staff.Level)
	require.Equal(t, 0, staff.Points)
}

func TestRegisterAdminUsernameIsActivatedImmediately(t *testing.T) {
	r, db := newTestRouter(t)

	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username": "root",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var staff models.Staff
	require.NoError(t, db.Where("username = ?", "root").First(&staff).Error)
	require.Equal(t, models.RoleAdmin, staff.Role)
	require.Equal(t, models.StaffStatusActive, staff.Status)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	r, db := newTestRouter(t)
	seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusActive, "", 0)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username": "alice",
		"password": "password123",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, 40910, resp.Code)
}

func TestLoginAndMe(t *testing.T) {
	r, db := newTestRouter(t)
	seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusActive, "Bronze", 0)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": "alice",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Token string       `json:"token"`
		Staff models.Staff `json:"staff"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.NotEmpty(t, data.Token)

	w, resp = doRequest(t, r, http.MethodGet, "/api/v1/auth/me", data.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var meData struct {
		Staff models.Staff `json:"staff"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &meData))
	require.Equal(t, "alice", meData.Staff.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	r, db := newTestRouter(t)
	seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusActive, "", 0)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": "alice",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, 40110, resp.Code)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	r, db := newTestRouter(t)
	seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusInactive, "", 0)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": "alice",
		"password": "password123",
	})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, 40310, resp.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	r, db := newTestRouter(t)
	staff := seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusActive, "", 0)
	token := tokenFor(t, staff)

	w, _ := doRequest(t, r, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doRequest(t, r, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := doRequest(t, r, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, 40104, resp.Code)
}

func TestLogoutOnlyRevokesThatSession(t *testing.T) {
	r, db := newTestRouter(t)
	staff := seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusActive, "", 0)
	first := tokenFor(t, staff)
	second := tokenFor(t, staff)

	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/auth/logout", first, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doRequest(t, r, http.MethodGet, "/api/v1/auth/me", first, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doRequest(t, r, http.MethodGet, "/api/v1/auth/me", second, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestMeRequiresToken(t *testing.T) {
	r, _ := newTestRouter(t)

	w, _ := doRequest(t, r, http.MethodGet, "/api/v1/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	r, db := newTestRouter(t)
	staff := seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusActive, "", 0)

	w, _ := doRequest(t, r, http.MethodPatch, "/api/v1/auth/profile", tokenFor(t, staff), map[string]interface{}{
		"email":             "new@example.com",
		"notify_channel_id": "12345",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Staff
	require.NoError(t, db.First(&updated, staff.ID).Error)
	require.Equal(t, "new@example.com", updated.Email)
	require.Equal(t, "12345", updated.NotifyChannelID)
}

func TestAdminEndpointsRejectNonAdmin(t *testing.T) {
	r, db := newTestRouter(t)
	staff := seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusActive, "", 0)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/events", tokenFor(t, staff), map[string]interface{}{
		"name":       "Setup Crew",
		"start_date": futureDate(7),
		"points":     100,
	})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, 40301, resp.Code)
}
