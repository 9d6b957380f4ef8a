package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/NewtonAvila/oticas-avila/internal/models"
)

func TestTimeSessionFlow(t *testing.T) {
	app := setupApp(t)
	token, userID := app.registerUser(t, "partner1", "password123")

	// Start a session at 20/h
	rec := app.request("POST", "/api/v1/sessions/start", `{"hourly_rate":20}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start session failed: %d %s", rec.Code, rec.Body.String())
	}
	session := parseJSON(t, rec)["session"].(map[string]interface{})
	sessionID := session["id"].(string)

	// A second start is rejected while one is open
	rec = app.request("POST", "/api/v1/sessions/start", `{"hourly_rate":20}`, token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on double start, got %d", rec.Code)
	}

	// Pause and resume survive round trips
	rec = app.request("POST", "/api/v1/sessions/pause", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("pause failed: %d %s", rec.Code, rec.Body.String())
	}
	rec = app.request("GET", "/api/v1/sessions/current", "", token)
	session = parseJSON(t, rec)["session"].(map[string]interface{})
	if session["paused_at"] == nil {
		t.Error("expected paused_at to be persisted")
	}
	rec = app.request("POST", "/api/v1/sessions/resume", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("resume failed: %d %s", rec.Code, rec.Body.String())
	}

	// Backdate the start so the session has two hours of worked time
	start := time.Now().Add(-2 * time.Hour)
	if err := app.DB.Model(&models.TimeSession{}).Where("id = ?", sessionID).
		Updates(map[string]interface{}{"start_time": start, "paused_millis": 0}).Error; err != nil {
		t.Fatalf("failed to backdate session: %v", err)
	}

	// Stop unpaid: the worked time becomes a time investment
	rec = app.request("POST", "/api/v1/sessions/stop", `{"is_paid":false}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("stop failed: %d %s", rec.Code, rec.Body.String())
	}
	session = parseJSON(t, rec)["session"].(map[string]interface{})
	if session["is_completed"] != true {
		t.Error("expected session to be completed")
	}

	rec = app.request("GET", "/api/v1/investments?mine=true", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list investments failed: %d", rec.Code)
	}
	list := parseJSON(t, rec)
	if list["total_items"] != float64(1) {
		t.Fatalf("expected 1 time investment, got %v", list["total_items"])
	}
	items := list["data"].([]interface{})
	inv := items[0].(map[string]interface{})
	if inv["is_time_investment"] != true {
		t.Error("expected a time investment")
	}
	if inv["user_id"] != userID {
		t.Errorf("expected investment for %s, got %v", userID, inv["user_id"])
	}

	// Deleting the session removes its investment as well
	rec = app.request("DELETE", "/api/v1/sessions/"+sessionID, "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete session failed: %d %s", rec.Code, rec.Body.String())
	}
	rec = app.request("GET", "/api/v1/investments?mine=true", "", token)
	list = parseJSON(t, rec)
	if list["total_items"] != float64(0) {
		t.Errorf("expected 0 investments after delete, got %v", list["total_items"])
	}
}

func TestTimeSessionOwnership(t *testing.T) {
	app := setupApp(t)
	ownerToken, _ := app.registerUser(t, "owner", "password123")
	otherToken, _ := app.registerUser(t, "other", "password123")
	adminToken, _ := app.registerAdmin(t, "chief", "password123")

	// Owner starts and stops a session
	rec := app.request("POST", "/api/v1/sessions/start", `{"hourly_rate":15}`, ownerToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start failed: %d", rec.Code)
	}
	sessionID := parseJSON(t, rec)["session"].(map[string]interface{})["id"].(string)
	rec = app.request("POST", "/api/v1/sessions/stop", `{"is_paid":true}`, ownerToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("stop failed: %d", rec.Code)
	}

	// Another partner cannot edit it
	rec = app.request("PATCH", "/api/v1/sessions/"+sessionID, `{"is_paid":false}`, otherToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d", rec.Code)
	}

	// An admin can
	rec = app.request("PATCH", "/api/v1/sessions/"+sessionID, `{"is_paid":false}`, adminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", rec.Code, rec.Body.String())
	}
}
