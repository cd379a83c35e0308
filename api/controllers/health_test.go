package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/angelmondragon/jewelmart-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/jewelmart-backend/pkg/errors"
)

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthLiveSetsEnvHeader(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	rec := serve(HealthLive(cfg), newRequest(http.MethodGet, "/health/live", nil, nil, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if rec.Header().Get(envHeader) != "dev" {
		t.Fatalf("unexpected env header %q", rec.Header().Get(envHeader))
	}
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "prod"}}
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	rec := serve(HealthReady(cfg, testLogger, map[string]Pinger{"db": ok, "redis": ok}), newRequest(http.MethodGet, "/health/ready", nil, nil, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	rec = serve(HealthReady(cfg, testLogger, map[string]Pinger{"db": ok, "redis": down}), newRequest(http.MethodGet, "/health/ready", nil, nil, nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != string(pkgerrors.CodeDependency) {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestHealthReadySkipsNilDependencies(t *testing.T) {
	cfg := &config.Config{}
	rec := serve(HealthReady(cfg, testLogger, map[string]Pinger{"redis": nil}), newRequest(http.MethodGet, "/health/ready", nil, nil, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}
