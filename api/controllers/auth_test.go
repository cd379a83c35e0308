package controllers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/jewelmart-backend/api/middleware"
	authsvc "github.com/angelmondragon/jewelmart-backend/internal/auth"
	"github.com/angelmondragon/jewelmart-backend/internal/users"
	"github.com/angelmondragon/jewelmart-backend/pkg/auth"
	"github.com/angelmondragon/jewelmart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/jewelmart-backend/pkg/errors"
)

type stubAuthService struct {
	signup       *authsvc.SignupResponse
	login        *authsvc.LoginResponse
	pair         *authsvc.TokenPair
	user         *users.UserDTO
	err          error
	lastAccessID string
	lastEmail    string
	lastActor    auth.Actor
	lastUpdate   authsvc.ProfileUpdateRequest
}

func (s *stubAuthService) Signup(ctx context.Context, req authsvc.SignupRequest) (*authsvc.SignupResponse, error) {
	return s.signup, s.err
}

func (s *stubAuthService) Login(ctx context.Context, req authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	return s.login, s.err
}

func (s *stubAuthService) Refresh(ctx context.Context, req authsvc.RefreshRequest) (*authsvc.TokenPair, error) {
	return s.pair, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	s.lastAccessID = accessID
	return s.err
}

func (s *stubAuthService) GetProfile(ctx context.Context, actor auth.Actor, email string) (*users.UserDTO, error) {
	s.lastActor, s.lastEmail = actor, email
	return s.user, s.err
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, actor auth.Actor, email string, req authsvc.ProfileUpdateRequest) (*users.UserDTO, error) {
	s.lastActor, s.lastEmail, s.lastUpdate = actor, email, req
	return s.user, s.err
}

func (s *stubAuthService) ResetPassword(ctx context.Context, actor auth.Actor, req authsvc.ResetPasswordRequest) (*authsvc.MessageResponse, error) {
	s.lastActor = actor
	return &authsvc.MessageResponse{Message: "Password updated successfully."}, s.err
}

func TestAuthSignupCreated(t *testing.T) {
	stub := &stubAuthService{signup: &authsvc.SignupResponse{
		Message: "User registered successfully.",
		User:    &users.UserDTO{ID: uuid.New(), Email: "asha@example.com", Role: enums.UserRoleCustomer},
	}}
	body := `{"email":"asha@example.com","password":"long-enough-pw","username":"asha"}`

	rec := serve(AuthSignup(stub, testLogger), newRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(body), nil, nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	var resp authsvc.SignupResponse
	decodeData(t, rec, &resp)
	if resp.User == nil || resp.User.Email != "asha@example.com" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAuthSignupValidation(t *testing.T) {
	cases := map[string]string{
		"bad email":      `{"email":"nope","password":"long-enough-pw","username":"asha"}`,
		"short password": `{"email":"asha@example.com","password":"short","username":"asha"}`,
		"unknown field":  `{"email":"asha@example.com","password":"long-enough-pw","username":"asha","role":"ADMIN"}`,
		"empty body":     ``,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := serve(AuthSignup(&stubAuthService{}, testLogger), newRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(body), nil, nil))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", rec.Code)
			}
		})
	}
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	stub := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	body := `{"email":"asha@example.com","password":"wrong"}`

	rec := serve(AuthLogin(stub, testLogger), newRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body), nil, nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != string(pkgerrors.CodeUnauthorized) {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestAuthLogoutUsesAccessID(t *testing.T) {
	actor := customer(uuid.New())
	stub := &stubAuthService{}
	req := newRequest(http.MethodPost, "/api/v1/auth/logout", nil, &actor, nil)
	req = req.WithContext(middleware.WithAccessID(req.Context(), "access-123"))

	rec := serve(AuthLogout(stub, testLogger), req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if stub.lastAccessID != "access-123" {
		t.Fatalf("unexpected access id %q", stub.lastAccessID)
	}
}

func TestAuthGetProfileRequiresActor(t *testing.T) {
	rec := serve(AuthGetProfile(&stubAuthService{}, testLogger), newRequest(http.MethodGet, "/api/v1/auth/user?email=a@b.com", nil, nil, nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthUpdateProfileForwardsEmailAndPatch(t *testing.T) {
	actor := customer(uuid.New())
	stub := &stubAuthService{user: &users.UserDTO{ID: actor.UserID}}
	body := `{"username":"asha-k","profile_pic":null}`

	rec := serve(AuthUpdateProfile(stub, testLogger), newRequest(http.MethodPut, "/api/v1/auth/user?email=asha@example.com", strings.NewReader(body), &actor, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if stub.lastEmail != "asha@example.com" || stub.lastActor.UserID != actor.UserID {
		t.Fatalf("unexpected forwarding email=%q actor=%s", stub.lastEmail, stub.lastActor.UserID)
	}
	if stub.lastUpdate.Username == nil || *stub.lastUpdate.Username != "asha-k" {
		t.Fatalf("unexpected username %v", stub.lastUpdate.Username)
	}
	if !stub.lastUpdate.ProfilePic.Set || stub.lastUpdate.ProfilePic.Value != nil {
		t.Fatal("expected explicit null profile_pic to be marked as set")
	}
}

func TestAuthResetPasswordForbidden(t *testing.T) {
	actor := customer(uuid.New())
	stub := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeForbidden, "cannot reset another account")}
	body := `{"email":"other@example.com","new_password":"long-enough-pw"}`

	rec := serve(AuthResetPassword(stub, testLogger), newRequest(http.MethodPut, "/api/v1/auth/reset-password", strings.NewReader(body), &actor, nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}
