package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/amiral-e/esp-back-sub001/internal/models"
)

const testSecret = "test-secret"

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Admin{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id string, admin bool) {
	t.Helper()
	if err := db.Create(&models.User{ID: id, Email: id + "@example.com", Username: id}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if admin {
		if err := db.Create(&models.Admin{UserID: id}).Error; err != nil {
			t.Fatalf("seed admin: %v", err)
		}
	}
}

func TestJWTVerify_ResolvesIdentity(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "jwt-user-1", false)
	v := NewJWTVerifier(testSecret, db)

	tok, err := SignJWT("jwt-user-1", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	identity, err := v.Verify(context.Background(), Credential{Bearer: tok})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.UserID != "jwt-user-1" {
		t.Fatalf("unexpected user id: %q", identity.UserID)
	}
	if identity.Admin {
		t.Fatalf("expected non-admin identity")
	}
}

func TestJWTVerify_AdminFlag(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "jwt-admin-1", true)
	v := NewJWTVerifier(testSecret, db)

	tok, err := SignJWT("jwt-admin-1", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	identity, err := v.Verify(context.Background(), Credential{Bearer: tok})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !identity.Admin {
		t.Fatalf("expected admin identity")
	}
}

func TestJWTVerify_FailureKinds(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "jwt-user-2", false)
	v := NewJWTVerifier(testSecret, db)

	// garbage token
	if _, err := v.Verify(context.Background(), Credential{Bearer: "not-a-token"}); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}

	// wrong secret
	tok, err := SignJWT("jwt-user-2", "other-secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := v.Verify(context.Background(), Credential{Bearer: tok}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}

	// expired
	tok, err = SignJWT("jwt-user-2", testSecret, -time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := v.Verify(context.Background(), Credential{Bearer: tok}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for expired token, got %v", err)
	}

	// valid signature, no profile row
	tok, err = SignJWT("jwt-ghost", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := v.Verify(context.Background(), Credential{Bearer: tok}); !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
}

func TestFromHeader(t *testing.T) {
	h := map[string][]string{}
	if _, err := FromHeader(h); !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}

	h = map[string][]string{"Authorization": {"Basic abc"}}
	if _, err := FromHeader(h); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}

	h = map[string][]string{"Authorization": {"Bearer abc"}, "X-Refresh-Token": {"ref"}}
	cred, err := FromHeader(h)
	if err != nil {
		t.Fatalf("expected credential, got %v", err)
	}
	if cred.Bearer != "abc" || cred.Refresh != "ref" {
		t.Fatalf("unexpected credential: %+v", cred)
	}
}
