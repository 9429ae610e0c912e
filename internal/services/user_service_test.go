package services

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"goldsphere/internal/models"
	"goldsphere/internal/testutil"
)

// Fixture users sign in with this password.
const fixturePassword = "password123"

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		password  string
		wantEmail string
		wantCode  string
	}{
		{"normalizes_email", "  Vault.Owner@GoldSphere.CH ", "s3cret-bar", "vault.owner@goldsphere.ch", ""},
		{"missing_email", "", "s3cret-bar", "", "INVALID_INPUT"},
		{"missing_password", "owner@goldsphere.ch", "", "", "INVALID_INPUT"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			defer testutil.TeardownTestDB(t, db)
			svc := NewUserService(db)

			user, err := svc.CreateUser(tc.email, tc.password, "Vault", "Owner")
			if tc.wantCode != "" {
				testutil.AssertAppError(t, err, tc.wantCode)
				return
			}
			testutil.AssertNoError(t, err)
			if user.Email != tc.wantEmail {
				t.Errorf("expected email %s, got %s", tc.wantEmail, user.Email)
			}
			if user.Role != models.UserRoleCustomer || !user.IsActive {
				t.Errorf("expected active customer, got role=%s active=%v", user.Role, user.IsActive)
			}
			if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(tc.password)) != nil {
				t.Error("expected stored password to be a bcrypt hash of the input")
			}
		})
	}

	t.Run("duplicate_after_normalization", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("bullion@goldsphere.ch", "first", "", "")
		testutil.AssertNoError(t, err)
		_, err = svc.CreateUser("BULLION@goldsphere.ch", "second", "", "")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})
}

func TestUserLookup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)

	active := testutil.CreateTestUserWithEmail(t, db, "active@goldsphere.ch")
	dormant := testutil.CreateTestUserWithEmail(t, db, "dormant@goldsphere.ch")
	testutil.AssertNoError(t, db.Model(dormant).Update("is_active", false).Error)

	found, err := svc.GetUserByEmail("Active@GoldSphere.ch")
	testutil.AssertNoError(t, err)
	if found.ID != active.ID {
		t.Errorf("expected %s, got %s", active.ID, found.ID)
	}

	_, err = svc.GetUserByEmail("dormant@goldsphere.ch")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")

	// Lookups by id still see deactivated accounts.
	byID, err := svc.GetUserByID(dormant.ID)
	testutil.AssertNoError(t, err)
	if byID.IsActive {
		t.Error("expected dormant account to be inactive")
	}

	_, err = svc.GetUserByID("0190a000-0000-7000-8000-000000000000")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestAttemptLogin(t *testing.T) {
	loadUser := func(t *testing.T, svc UserServicer, id string) *models.User {
		t.Helper()
		user, err := svc.GetUserByID(id)
		testutil.AssertNoError(t, err)
		return user
	}

	t.Run("locks_on_fifth_failure", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)

		for i := 1; i < maxFailedLogins; i++ {
			_, err := svc.AttemptLogin(user.Email, "wrong")
			testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
			if got := loadUser(t, svc, user.ID); got.FailedLoginAttempts != i || got.LockedUntil != nil {
				t.Fatalf("attempt %d: expected %d failures and no lock, got %d/%v", i, i, got.FailedLoginAttempts, got.LockedUntil)
			}
		}

		before := time.Now().UTC()
		_, err := svc.AttemptLogin(user.Email, "wrong")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")

		locked := loadUser(t, svc, user.ID)
		if locked.LockedUntil == nil {
			t.Fatal("expected account to be locked")
		}
		until := locked.LockedUntil.Sub(before)
		if until < lockoutDuration-time.Minute || until > lockoutDuration+time.Minute {
			t.Errorf("expected lock of about %s, got %s", lockoutDuration, until)
		}

		// The right password does not get through while locked.
		_, err = svc.AttemptLogin(user.Email, fixturePassword)
		testutil.AssertAppError(t, err, "ACCOUNT_LOCKED")
		if got := loadUser(t, svc, user.ID); got.FailedLoginAttempts != maxFailedLogins {
			t.Errorf("expected locked attempts not to be counted, got %d", got.FailedLoginAttempts)
		}
	})

	t.Run("expired_lock_allows_login", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.AssertNoError(t, db.Model(user).Updates(map[string]interface{}{
			"failed_login_attempts": maxFailedLogins,
			"locked_until":          time.Now().UTC().Add(-time.Minute),
		}).Error)

		got, err := svc.AttemptLogin(user.Email, fixturePassword)
		testutil.AssertNoError(t, err)
		if got.FailedLoginAttempts != 0 || got.LockedUntil != nil || got.LastLoginAt == nil {
			t.Errorf("expected reset counters and a login stamp, got %+v", got)
		}

		stored := loadUser(t, svc, user.ID)
		if stored.FailedLoginAttempts != 0 || stored.LockedUntil != nil {
			t.Errorf("expected lockout state cleared in storage, got %d/%v", stored.FailedLoginAttempts, stored.LockedUntil)
		}
		if stored.LastLoginAt == nil {
			t.Error("expected last_login_at to be stored")
		}
	})

	t.Run("expired_lock_relocks_on_next_failure", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.AssertNoError(t, db.Model(user).Updates(map[string]interface{}{
			"failed_login_attempts": maxFailedLogins,
			"locked_until":          time.Now().UTC().Add(-time.Minute),
		}).Error)

		_, err := svc.AttemptLogin(user.Email, "wrong")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
		if got := loadUser(t, svc, user.ID); got.LockedUntil == nil || !got.LockedUntil.After(time.Now()) {
			t.Errorf("expected a fresh lock, got %v", got.LockedUntil)
		}
	})

	t.Run("unknown_and_inactive_look_like_wrong_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		dormant := testutil.CreateTestUser(t, db)
		testutil.AssertNoError(t, db.Model(dormant).Update("is_active", false).Error)

		_, err := svc.AttemptLogin("nobody@goldsphere.ch", fixturePassword)
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
		_, err = svc.AttemptLogin(dormant.Email, fixturePassword)
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")

		if got := loadUser(t, svc, dormant.ID); got.FailedLoginAttempts != 0 {
			t.Errorf("expected inactive account counters untouched, got %d", got.FailedLoginAttempts)
		}
	})
}

func TestRefreshTokenHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)
	user := testutil.CreateTestUser(t, db)

	got, err := svc.GetRefreshTokenHash(user.ID)
	testutil.AssertNoError(t, err)
	if got != "" {
		t.Errorf("expected no hash for a fresh account, got %q", got)
	}

	// Rotation replaces the previous hash.
	for _, hash := range []string{
		"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
		"60303ae22b998861bce3b28f33eec1be758a213c86c93c076dbe9f558c11c752",
	} {
		testutil.AssertNoError(t, svc.StoreRefreshTokenHash(user.ID, hash))
		got, err = svc.GetRefreshTokenHash(user.ID)
		testutil.AssertNoError(t, err)
		if got != hash {
			t.Errorf("expected hash %s, got %s", hash, got)
		}
	}

	// An empty hash revokes refresh.
	testutil.AssertNoError(t, svc.StoreRefreshTokenHash(user.ID, ""))
	got, _ = svc.GetRefreshTokenHash(user.ID)
	if got != "" {
		t.Errorf("expected cleared hash, got %q", got)
	}

	missing := "0190a000-0000-7000-8000-000000000000"
	testutil.AssertAppError(t, svc.StoreRefreshTokenHash(missing, "abc"), "USER_NOT_FOUND")
	_, err = svc.GetRefreshTokenHash(missing)
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestSetRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)
	user := testutil.CreateTestUser(t, db)

	for _, role := range []models.UserRole{models.UserRoleAdmin, models.UserRoleCustomer} {
		updated, err := svc.SetRole(user.ID, role)
		testutil.AssertNoError(t, err)
		if updated.Role != role {
			t.Errorf("expected returned role %s, got %s", role, updated.Role)
		}
		reloaded, err := svc.GetUserByID(user.ID)
		testutil.AssertNoError(t, err)
		if reloaded.Role != role {
			t.Errorf("expected stored role %s, got %s", role, reloaded.Role)
		}
	}

	_, err := svc.SetRole(user.ID, models.UserRole("root"))
	testutil.AssertAppError(t, err, "INVALID_INPUT")
	_, err = svc.SetRole("0190a000-0000-7000-8000-000000000000", models.UserRoleAdmin)
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}
