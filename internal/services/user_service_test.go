package services

import (
	"testing"

	"github.com/NewtonAvila/oticas-avila/internal/models"
	"github.com/NewtonAvila/oticas-avila/internal/pagination"
	"github.com/NewtonAvila/oticas-avila/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, err := svc.CreateUser("Maria", "secret123", "Maria", "Silva", "maria@example.com")
		testutil.AssertNoError(t, err)

		if user.Username != "maria" {
			t.Errorf("expected lowercased username, got %s", user.Username)
		}
		if user.Password == "secret123" {
			t.Error("password must be stored hashed")
		}
		if user.Role != models.RolePartner || user.IsAdmin {
			t.Error("new users must default to partner role")
		}
	})

	t.Run("duplicate_username", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("maria", "secret123", "", "", "")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateUser("maria", "other", "", "", "")
		testutil.AssertAppError(t, err, "DUPLICATE_USERNAME")
	})

	t.Run("missing_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("", "secret", "", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		_, err = svc.CreateUser("maria", "", "", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestAttemptLogin(t *testing.T) {
	t.Run("valid_credentials", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("maria", "secret123", "", "", "")
		testutil.AssertNoError(t, err)

		user, err := svc.AttemptLogin("maria", "secret123")
		testutil.AssertNoError(t, err)
		if user.Username != "maria" {
			t.Errorf("expected maria, got %s", user.Username)
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("maria", "secret123", "", "", "")
		testutil.AssertNoError(t, err)

		_, err = svc.AttemptLogin("maria", "wrong")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("unknown_user_gets_same_error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.AttemptLogin("nobody", "whatever")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})
}

func TestStoreAndGetRefreshTokenHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)
	user := testutil.CreateTestUser(t, db)

	hash := "abc123hash"
	testutil.AssertNoError(t, svc.StoreRefreshTokenHash(user.ID, hash))

	got, err := svc.GetRefreshTokenHash(user.ID)
	testutil.AssertNoError(t, err)
	if got != hash {
		t.Errorf("expected %q, got %q", hash, got)
	}
}

func TestEnsureAdmin(t *testing.T) {
	t.Run("seeds_when_no_admin_exists", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		testutil.AssertNoError(t, svc.EnsureAdmin("admin", "admin"))

		admin, err := svc.GetUserByUsername("admin")
		testutil.AssertNoError(t, err)
		if !admin.IsAdmin || admin.Role != models.RoleAdmin {
			t.Error("expected seeded admin account")
		}
	})

	t.Run("noop_when_admin_exists", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		testutil.CreateTestAdmin(t, db)

		testutil.AssertNoError(t, svc.EnsureAdmin("admin", "admin"))

		var count int64
		db.Model(&models.User{}).Where("is_admin = ?", true).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 admin, got %d", count)
		}
	})
}

func TestResetPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.AssertNoError(t, svc.StoreRefreshTokenHash(user.ID, "oldhash"))
	testutil.AssertNoError(t, svc.ResetPassword(user.ID, "newpassword"))

	fresh, err := svc.GetUserByID(user.ID)
	testutil.AssertNoError(t, err)
	if !svc.VerifyPassword(fresh, "newpassword") {
		t.Error("expected new password to verify")
	}

	// Refresh token is revoked on reset
	hash, err := svc.GetRefreshTokenHash(user.ID)
	testutil.AssertNoError(t, err)
	if hash != "" {
		t.Errorf("expected refresh hash cleared, got %q", hash)
	}
}

func TestDeleteUser(t *testing.T) {
	t.Run("cascades_investments_and_sessions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)

		testutil.CreateTestInvestment(t, db, user, "100")
		testutil.CreateTestSession(t, db, user, 2, "20")
		keep := testutil.CreateTestInvestment(t, db, other, "50")

		testutil.AssertNoError(t, svc.DeleteUser(user.ID))

		var users, investments, sessions int64
		db.Model(&models.User{}).Where("id = ?", user.ID).Count(&users)
		db.Model(&models.Investment{}).Where("user_id = ?", user.ID).Count(&investments)
		db.Model(&models.TimeSession{}).Where("user_id = ?", user.ID).Count(&sessions)
		if users != 0 || investments != 0 || sessions != 0 {
			t.Errorf("expected full cascade, got %d/%d/%d", users, investments, sessions)
		}

		// Other users' records are untouched
		var keepCount int64
		db.Model(&models.Investment{}).Where("id = ?", keep.ID).Count(&keepCount)
		if keepCount != 1 {
			t.Error("expected other user's investment to survive")
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		err := svc.DeleteUser("00000000-0000-0000-0000-000000000000")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestListUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)

	testutil.CreateTestUser(t, db)
	testutil.CreateTestAdmin(t, db)

	page, err := svc.ListUsers(pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if page.TotalItems != 2 {
		t.Errorf("expected 2 users, got %d", page.TotalItems)
	}
}
