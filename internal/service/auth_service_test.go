package service

import (
	"testing"
	"time"

	"red-social-server/internal/common"
	"red-social-server/internal/db"
	"red-social-server/internal/model"
	"red-social-server/internal/utils"
)

func TestRegisterUser_Success(t *testing.T) {
	setupTestDB(t)

	user, token, err := RegisterUser("newbie", "Newbie@Example.com", "小新", "passw0rd")
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if user.Email != "newbie@example.com" {
		t.Fatalf("email must be lowercased, got %s", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "passw0rd" {
		t.Fatal("password must be stored hashed")
	}
	if !user.IsActive {
		t.Fatal("new user should be active")
	}

	claims, err := utils.ParseLoginToken(token)
	if err != nil {
		t.Fatalf("ParseLoginToken: %v", err)
	}
	if claims.ID != user.ID || claims.Username != "newbie" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestRegisterUser_RejectsDuplicates(t *testing.T) {
	setupTestDB(t)

	if _, _, err := RegisterUser("dupe", "dupe@example.com", "", "passw0rd"); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, _, err := RegisterUser("dupe", "other@example.com", "", "passw0rd")
	if serviceErr, ok := common.AsServiceError(err); !ok || serviceErr.Code != common.ErrorCodeConflict {
		t.Fatalf("expected conflict for duplicate username, got %v", err)
	}

	_, _, err = RegisterUser("someone", "dupe@example.com", "", "passw0rd")
	if serviceErr, ok := common.AsServiceError(err); !ok || serviceErr.Code != common.ErrorCodeConflict {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
}

func TestRegisterUser_ValidatesInput(t *testing.T) {
	setupTestDB(t)

	cases := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"short username", "ab", "a@b.com", "passw0rd"},
		{"bad email", "gooduser", "not-an-email", "passw0rd"},
		{"weak password", "gooduser", "a@b.com", "short"},
		{"digits only username", "12345", "a@b.com", "passw0rd"},
	}
	for _, tc := range cases {
		_, _, err := RegisterUser(tc.username, tc.email, "", tc.password)
		if serviceErr, ok := common.AsServiceError(err); !ok || serviceErr.Code != common.ErrorCodeValidation {
			t.Fatalf("%s: expected validation_error, got %v", tc.name, err)
		}
	}
}

func TestLoginUser_ByUsernameAndEmail(t *testing.T) {
	setupTestDB(t)

	if _, _, err := RegisterUser("dual", "dual@example.com", "", "passw0rd"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := LoginUser("dual", "passw0rd"); err != nil {
		t.Fatalf("login by username: %v", err)
	}
	if _, _, err := LoginUser("DUAL@example.com", "passw0rd"); err != nil {
		t.Fatalf("login by email: %v", err)
	}

	user, _, err := LoginUser("dual", "passw0rd")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.LastLogin == nil {
		t.Fatal("expected last_login recorded")
	}
}

func TestLoginUser_WrongPassword(t *testing.T) {
	setupTestDB(t)

	if _, _, err := RegisterUser("victim", "victim@example.com", "", "passw0rd"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, err := LoginUser("victim", "wrong-pass")
	if serviceErr, ok := common.AsServiceError(err); !ok || serviceErr.Code != common.ErrorCodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	var user model.User
	if err := db.DB.Where("username = ?", "victim").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.FailedLoginAttempts != 1 {
		t.Fatalf("expected 1 failed attempt, got %d", user.FailedLoginAttempts)
	}
}

func TestLoginUser_LocksAfterFiveFailures(t *testing.T) {
	setupTestDB(t)

	if _, _, err := RegisterUser("locked", "locked@example.com", "", "passw0rd"); err != nil {
		t.Fatalf("register: %v", err)
	}

	for i := 0; i < 5; i++ {
		_, _, err := LoginUser("locked", "wrong-pass")
		if err == nil {
			t.Fatalf("round %d: expected failure", i)
		}
	}

	var user model.User
	if err := db.DB.Where("username = ?", "locked").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.LockedUntil == nil || !user.LockedUntil.After(time.Now()) {
		t.Fatal("expected account locked into the future")
	}

	// 锁定期内即使密码正确也拒绝
	_, _, err := LoginUser("locked", "passw0rd")
	if serviceErr, ok := common.AsServiceError(err); !ok || serviceErr.Code != common.ErrorCodeLocked {
		t.Fatalf("expected account_locked, got %v", err)
	}
}

func TestLoginUser_SuccessResetsFailures(t *testing.T) {
	setupTestDB(t)

	if _, _, err := RegisterUser("resilient", "resilient@example.com", "", "passw0rd"); err != nil {
		t.Fatalf("register: %v", err)
	}

	for i := 0; i < 3; i++ {
		_, _, _ = LoginUser("resilient", "wrong-pass")
	}
	if _, _, err := LoginUser("resilient", "passw0rd"); err != nil {
		t.Fatalf("login after failures: %v", err)
	}

	var user model.User
	if err := db.DB.Where("username = ?", "resilient").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.FailedLoginAttempts != 0 {
		t.Fatalf("expected reset counter, got %d", user.FailedLoginAttempts)
	}
}

func TestLoginUser_UnknownIdentifier(t *testing.T) {
	setupTestDB(t)

	_, _, err := LoginUser("ghost", "whatever1")
	if serviceErr, ok := common.AsServiceError(err); !ok || serviceErr.Code != common.ErrorCodeUnauthorized {
		t.Fatalf("expected unauthorized for unknown user, got %v", err)
	}
}
