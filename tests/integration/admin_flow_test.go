package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestAdminUserManagement(t *testing.T) {
	app := setupApp(t)
	partnerToken, partnerID := app.registerUser(t, "partner1", "password123")
	adminToken, _ := app.registerAdmin(t, "chief", "password123")

	t.Run("partner cannot reach admin routes", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/admin/users", "", partnerToken)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("admin lists users", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/admin/users", "", adminToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		list := parseJSON(t, rec)
		if list["total_items"] != float64(2) {
			t.Errorf("expected 2 users, got %v", list["total_items"])
		}
	})

	t.Run("admin promotes a partner", func(t *testing.T) {
		rec := app.request("PATCH", "/api/v1/admin/users/"+partnerID, `{"is_admin":true}`, adminToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		user := parseJSON(t, rec)["user"].(map[string]interface{})
		if user["is_admin"] != true {
			t.Error("expected user to be admin")
		}
		if user["role"] != "admin" {
			t.Errorf("expected role admin, got %v", user["role"])
		}
	})

	t.Run("admin resets a password", func(t *testing.T) {
		rec := app.request("POST", "/api/v1/admin/users/"+partnerID+"/reset-password",
			`{"new_password":"newsecret1"}`, adminToken)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
		}

		// Old password no longer works, new one does
		rec = app.request("POST", "/api/v1/auth/login",
			`{"username":"partner1","password":"password123"}`, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 with old password, got %d", rec.Code)
		}
		app.loginUser(t, "partner1", "newsecret1")
	})

	t.Run("admin cannot delete itself", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/profile", "", adminToken)
		adminID := parseJSON(t, rec)["user"].(map[string]interface{})["id"].(string)

		rec = app.request("DELETE", "/api/v1/admin/users/"+adminID, "", adminToken)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("admin deletes a partner", func(t *testing.T) {
		rec := app.request("DELETE", fmt.Sprintf("/api/v1/admin/users/%s", partnerID), "", adminToken)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
		}

		rec = app.request("GET", "/api/v1/admin/users", "", adminToken)
		list := parseJSON(t, rec)
		if list["total_items"] != float64(1) {
			t.Errorf("expected 1 user left, got %v", list["total_items"])
		}
	})
}
