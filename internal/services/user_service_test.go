package services

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"juntos/internal/models"
	"juntos/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, err := svc.CreateUser("  Ana@Example.COM ", "secret123", "Ana")
		testutil.AssertNoError(t, err)

		if user.ID == "" {
			t.Fatal("expected user ID to be set")
		}
		if user.Email != "ana@example.com" {
			t.Errorf("expected normalized email, got %q", user.Email)
		}
		if !user.IsActive {
			t.Error("expected user to be active")
		}
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret123")) != nil {
			t.Error("expected stored password to be a bcrypt hash of the input")
		}
	})

	t.Run("duplicate_email_any_case", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("dup@example.com", "secret123", "First")
		testutil.AssertNoError(t, err)
		_, err = svc.CreateUser("DUP@example.com", "secret123", "Second")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	tests := []struct {
		name     string
		email    string
		password string
		fullName string
	}{
		{"missing_email", "", "secret123", "X"},
		{"missing_password", "a@b.com", "", "X"},
		{"short_password", "a@b.com", "12345", "X"},
		{"missing_name", "a@b.com", "secret123", " "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			defer testutil.TeardownTestDB(t, db)

			_, err := NewUserService(db).CreateUser(tt.email, tt.password, tt.fullName)
			testutil.AssertAppError(t, err, "INVALID_INPUT")
		})
	}
}

func TestAttemptLogin(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		created := testutil.CreateTestUserWithEmail(t, db, "login@test.com")

		user, err := svc.AttemptLogin("LOGIN@test.com", "password123")
		testutil.AssertNoError(t, err)

		if user.ID != created.ID {
			t.Errorf("expected user %s, got %s", created.ID, user.ID)
		}
		if user.LastLoginAt == nil {
			t.Error("expected last login to be stamped")
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestUserWithEmail(t, db, "login@test.com")

		_, err := NewUserService(db).AttemptLogin("login@test.com", "nope")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("unknown_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		_, err := NewUserService(db).AttemptLogin("ghost@test.com", "password123")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("inactive_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUserWithEmail(t, db, "off@test.com")
		db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false)

		_, err := NewUserService(db).AttemptLogin("off@test.com", "password123")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})
}

func TestUpdateProfile(t *testing.T) {
	t.Run("name_and_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)

		updated, err := svc.UpdateProfile(user.ID, ProfileUpdateFields{
			Name:  testutil.Ptr("Bruno"),
			Email: testutil.Ptr("Bruno@Test.com"),
		})
		testutil.AssertNoError(t, err)

		if updated.Name != "Bruno" || updated.Email != "bruno@test.com" {
			t.Errorf("unexpected profile: %s <%s>", updated.Name, updated.Email)
		}
	})

	t.Run("email_taken", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		testutil.CreateTestUserWithEmail(t, db, "taken@test.com")
		user := testutil.CreateTestUser(t, db)

		_, err := svc.UpdateProfile(user.ID, ProfileUpdateFields{Email: testutil.Ptr("taken@test.com")})
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})
}

func TestChangePassword(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUserWithEmail(t, db, "pw@test.com")
		testutil.AssertNoError(t, svc.StoreRefreshTokenHash(user.ID, "abc"))

		testutil.AssertNoError(t, svc.ChangePassword(user.ID, "password123", "newpassword"))

		_, err := svc.AttemptLogin("pw@test.com", "newpassword")
		testutil.AssertNoError(t, err)

		hash, err := svc.GetRefreshTokenHash(user.ID)
		testutil.AssertNoError(t, err)
		if hash != "" {
			t.Error("expected refresh token to be revoked")
		}
	})

	t.Run("wrong_current", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)

		err := NewUserService(db).ChangePassword(user.ID, "wrong", "newpassword")
		testutil.AssertAppError(t, err, "WRONG_PASSWORD")
	})
}

func TestStoreAndGetRefreshTokenHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.AssertNoError(t, svc.StoreRefreshTokenHash(user.ID, "deadbeef"))

	hash, err := svc.GetRefreshTokenHash(user.ID)
	testutil.AssertNoError(t, err)
	if hash != "deadbeef" {
		t.Errorf("expected stored hash, got %q", hash)
	}

	err = svc.StoreRefreshTokenHash("0190a0b0-0000-7000-8000-000000000000", "x")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}
