package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"juntos/internal/config"
	"juntos/internal/models"
)

func useTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.JWTSecret = "access-secret"
	cfg.JWTRefreshSecret = "refresh-secret"
	config.Set(cfg)
	return cfg
}

func setupAuthRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("userID"), "email": c.GetString("email")})
	})
	return r
}

func requestWithAuth(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	useTestConfig(t)
	user := &models.User{Base: models.Base{ID: "0190f5b2-1c3d-7e4f-8a9b-0c1d2e3f4a5b"}, Email: "ana@juntos.dev"}

	access, err := GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("failed to sign access token: %v", err)
	}
	refresh, err := GenerateRefreshToken(user)
	if err != nil {
		t.Fatalf("failed to sign refresh token: %v", err)
	}

	t.Run("valid_access_token", func(t *testing.T) {
		rec := requestWithAuth(setupAuthRouter(), "Bearer "+access)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		body := parseBody(t, rec)
		if body["user_id"] != user.ID {
			t.Errorf("expected user_id %s, got %v", user.ID, body["user_id"])
		}
	})

	t.Run("missing_header", func(t *testing.T) {
		rec := requestWithAuth(setupAuthRouter(), "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if code := parseBody(t, rec)["code"]; code != "UNAUTHORIZED" {
			t.Errorf("expected UNAUTHORIZED, got %v", code)
		}
	})

	t.Run("malformed_header", func(t *testing.T) {
		rec := requestWithAuth(setupAuthRouter(), "Token "+access)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("refresh_token_rejected", func(t *testing.T) {
		rec := requestWithAuth(setupAuthRouter(), "Bearer "+refresh)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("expired_token", func(t *testing.T) {
		expired, err := signToken(user, tokenTypeAccess, -time.Minute, []byte("access-secret"))
		if err != nil {
			t.Fatalf("failed to sign token: %v", err)
		}
		rec := requestWithAuth(setupAuthRouter(), "Bearer "+expired)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestValidateRefreshToken(t *testing.T) {
	useTestConfig(t)
	user := &models.User{Base: models.Base{ID: "0190f5b2-1c3d-7e4f-8a9b-0c1d2e3f4a5b"}, Email: "ana@juntos.dev"}

	refresh, _ := GenerateRefreshToken(user)
	claims, err := ValidateRefreshToken(refresh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("expected user %s, got %s", user.ID, claims.UserID)
	}

	access, _ := GenerateAccessToken(user)
	if _, err := ValidateRefreshToken(access); err == nil {
		t.Error("expected access token to be rejected as refresh token")
	}
}

func TestHashToken(t *testing.T) {
	if HashToken("a") == HashToken("b") {
		t.Error("expected distinct hashes")
	}
	if len(HashToken("a")) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(HashToken("a")))
	}
}
