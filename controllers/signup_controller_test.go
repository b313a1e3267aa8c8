package controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/models"
)

func TestSignUp(t *testing.T) {
	r, db := newTestRouter(t)
	staff := seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusActive, "Bronze", 0)
	event := seedEvent(t, db, "Setup Crew", models.EventStatusOpen, futureDate(7), 100)

	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/signups", tokenFor(t, staff), map[string]interface{}{
		"event_id": event.ID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var signup models.Signup
	require.NoError(t, db.Where("event_id = ? AND staff_id = ?", event.ID, staff.ID).First(&signup).Error)
	require.False(t, signup.IsSelected)
	require.False(t, signup.SignedUpAt.IsZero())
}

func TestSignUpCutoffRejectsSameDayEvent(t *testing.T) {
	r, db := newTestRouter(t)
	staff := seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusActive, "Bronze", 0)
	event := seedEvent(t, db, "Setup Crew", models.EventStatusOpen, futureDate(0), 100)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/signups", tokenFor(t, staff), map[string]interface{}{
		"event_id": event.ID,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, 40031, resp.Code)
}

func TestSignUpCutoffRejectsPastEvent(t *testing.T) {
	r, db := newTestRouter(t)
	staff := seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusActive, "Bronze", 0)
	event := seedEvent(t, db, "Setup Crew", models.EventStatusOpen, futureDate(-3), 100)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/signups", tokenFor(t, staff), map[string]interface{}{
		"event_id": event.ID,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, 40031, resp.Code)
}

func TestSignUpTomorrowIsAccepted(t *testing.T) {
	r, db := newTestRouter(t)
	staff := seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusActive, "Bronze", 0)
	event := seedEvent(t, db, "Setup Crew", models.EventStatusOpen, futureDate(1), 100)

	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/signups", tokenFor(t, staff), map[string]interface{}{
		"event_id": event.ID,
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestSignUpDuplicate(t *testing.T) {
	r, db := newTestRouter(t)
	staff := seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusActive, "Bronze", 0)
	event := seedEvent(t, db, "Setup Crew", models.EventStatusOpen, futureDate(7), 100)
	token := tokenFor(t, staff)

	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/signups", token, map[string]interface{}{
		"event_id": event.ID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/signups", token, map[string]interface{}{
		"event_id": event.ID,
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, 40930, resp.Code)
}

func TestSignUpUnknownEvent(t *testing.T) {
	r, db := newTestRouter(t)
	staff := seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusActive, "Bronze", 0)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/signups", tokenFor(t, staff), map[string]interface{}{
		"event_id": 9999,
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, 40420, resp.Code)
}

func TestCancelSignUp(t *testing.T) {
	r, db := newTestRouter(t)
	staff := seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusActive, "Bronze", 0)
	event := seedEvent(t, db, "Setup Crew", models.EventStatusOpen, futureDate(7), 100)
	seedSignup(t, db, event.ID, staff.ID, false)

	w, _ := doRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/signups/%d", event.ID), tokenFor(t, staff), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Signup{}).Where("event_id = ?", event.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestCancelSignUpAfterClosureIsSilent(t *testing.T) {
	r, db := newTestRouter(t)
	staff := seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusActive, "Bronze", 0)
	event := seedEvent(t, db, "Setup Crew", models.EventStatusClosed, futureDate(7), 100)
	seedSignup(t, db, event.ID, staff.ID, true)

	w, _ := doRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/signups/%d", event.ID), tokenFor(t, staff), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var notifications int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&notifications).Error)
	require.Zero(t, notifications)
}

func TestCancelSignUpMissing(t *testing.T) {
	r, db := newTestRouter(t)
	staff := seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusActive, "Bronze", 0)
	event := seedEvent(t, db, "Setup Crew", models.EventStatusOpen, futureDate(7), 100)

	w, resp := doRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/signups/%d", event.ID), tokenFor(t, staff), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, 40430, resp.Code)
}

func TestAdminSignUpSkipsExisting(t *testing.T) {
	r, db := newTestRouter(t)
	admin := seedAdmin(t, db)
	alice := seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusActive, "Bronze", 0)
	bob := seedStaff(t, db, "bob", models.RoleStaff, models.StaffStatusActive, "Bronze", 0)
	event := seedEvent(t, db, "Setup Crew", models.EventStatusOpen, futureDate(7), 100)
	seedSignup(t, db, event.ID, alice.ID, false)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/signups/admin", tokenFor(t, admin), map[string]interface{}{
		"event_id":  event.ID,
		"staff_ids": []uint{alice.ID, bob.ID},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Added   []uint `json:"added"`
		Skipped []uint `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.ElementsMatch(t, []uint{bob.ID}, data.Added)
	require.ElementsMatch(t, []uint{alice.ID}, data.Skipped)

	var count int64
	require.NoError(t, db.Model(&models.Signup{}).Where("event_id = ?", event.ID).Count(&count).Error)
	require.Equal(t, int64(2), count)
}

func TestAdminSignUpIgnoresCutoff(t *testing.T) {
	r, db := newTestRouter(t)
	admin := seedAdmin(t, db)
	alice := seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusActive, "Bronze", 0)
	event := seedEvent(t, db, "Setup Crew", models.EventStatusOpen, futureDate(0), 100)

	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/signups/admin", tokenFor(t, admin), map[string]interface{}{
		"event_id":  event.ID,
		"staff_ids": []uint{alice.ID},
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAdminSignUpUnknownStaff(t *testing.T) {
	r, db := newTestRouter(t)
	admin := seedAdmin(t, db)
	alice := seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusActive, "Bronze", 0)
	event := seedEvent(t, db, "Setup Crew", models.EventStatusOpen, futureDate(7), 100)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/signups/admin", tokenFor(t, admin), map[string]interface{}{
		"event_id":  event.ID,
		"staff_ids": []uint{alice.ID, 9999},
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, 40431, resp.Code)

	// Nothing is inserted when any id fails to resolve.
	var count int64
	require.NoError(t, db.Model(&models.Signup{}).Where("event_id = ?", event.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestAdminSignUpCancelledEvent(t *testing.T) {
	r, db := newTestRouter(t)
	admin := seedAdmin(t, db)
	alice := seedStaff(t, db, "alice", models.RoleStaff, models.StaffStatusActive, "Bronze", 0)
	event := seedEvent(t, db, "Setup Crew", models.EventStatusCancelled, futureDate(7), 100)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/signups/admin", tokenFor(t, admin), map[string]interface{}{
		"event_id":  event.ID,
		"staff_ids": []uint{alice.ID},
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, 40931, resp.Code)
}
