package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/jewelmart-backend/pkg/auth"
	"github.com/angelmondragon/jewelmart-backend/pkg/auth/session"
	"github.com/angelmondragon/jewelmart-backend/pkg/config"
	"github.com/angelmondragon/jewelmart-backend/pkg/enums"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "jewelmart", ExpirationMinutes: 60}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(okHandler())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthAllowsValidToken(t *testing.T) {
	userID := uuid.New()
	token, accessID := mintTestToken(t, userID, enums.UserRoleAdmin)

	var captured struct {
		actor    auth.Actor
		accessID string
	}
	handler := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.actor, _ = ActorFromContext(r.Context())
		captured.accessID = AccessIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.actor.UserID != userID || !captured.actor.IsAdmin() {
		t.Fatalf("unexpected actor %+v", captured.actor)
	}
	if captured.accessID != accessID {
		t.Fatalf("expected access id %s got %s", accessID, captured.accessID)
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	token, _ := mintTestToken(t, uuid.New(), enums.UserRoleCustomer)
	handler := Auth(testJWT, stubSessionVerifier{ok: false}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSessionStoreFailureIsDependencyError(t *testing.T) {
	token, _ := mintTestToken(t, uuid.New(), enums.UserRoleCustomer)
	handler := Auth(testJWT, stubSessionVerifier{err: errors.New("redis down")}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name   string
		actor  *auth.Actor
		status int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"customer", &auth.Actor{UserID: uuid.New(), Role: enums.UserRoleCustomer}, http.StatusForbidden},
		{"admin", &auth.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.actor != nil {
				req = req.WithContext(WithActor(req.Context(), *tt.actor))
			}
			rec := httptest.NewRecorder()
			RequireRole(enums.UserRoleAdmin, nil)(okHandler()).ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("expected %d got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestRequireSelfOrAdmin(t *testing.T) {
	owner := uuid.New()
	tests := []struct {
		name   string
		actor  auth.Actor
		param  string
		status int
	}{
		{"owner", auth.Actor{UserID: owner, Role: enums.UserRoleCustomer}, owner.String(), http.StatusOK},
		{"other customer", auth.Actor{UserID: uuid.New(), Role: enums.UserRoleCustomer}, owner.String(), http.StatusForbidden},
		{"admin", auth.Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, owner.String(), http.StatusOK},
		{"malformed id", auth.Actor{UserID: owner, Role: enums.UserRoleCustomer}, "nope", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/cart/"+tt.param, nil)
			rc := chi.NewRouteContext()
			rc.URLParams.Add("userId", tt.param)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rc)
			req = req.WithContext(WithActor(ctx, tt.actor))

			rec := httptest.NewRecorder()
			RequireSelfOrAdmin("userId", nil)(okHandler()).ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("expected %d got %d", tt.status, rec.Code)
			}
		})
	}
}

func mintTestToken(t *testing.T, userID uuid.UUID, role enums.UserRole) (string, string) {
	t.Helper()
	accessID := session.NewAccessID()
	token, err := auth.MintAccessToken(testJWT, time.Now(), auth.AccessTokenPayload{
		UserID: userID,
		Role:   role,
		JTI:    accessID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token, accessID
}

type stubSessionVerifier struct {
	ok  bool
	err error
}

func (s stubSessionVerifier) HasSession(ctx context.Context, accessID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.ok, nil
}
