package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"bounty-board/filters"
	"bounty-board/lifecycle"
	"bounty-board/middleware"
	"bounty-board/models"
	"bounty-board/services"
)

// emptyStore answers every read with nothing.
type emptyStore struct {
	services.BountyStore
}

func (emptyStore) List(context.Context, filters.Doc, filters.Sort, filters.Pagination) (services.BountyPage, error) {
	return services.BountyPage{}, nil
}

func (emptyStore) Get(context.Context, string) (models.Bounty, error) {
	return models.Bounty{}, services.ErrBountyNotFound
}

func (emptyStore) ChangedSince(context.Context, string, time.Time) ([]models.Bounty, error) {
	return nil, nil
}

type stubValidator struct{}

func (stubValidator) ValidateToken(_ context.Context, token string) (*services.ValidateResponse, error) {
	if token != "good" {
		return nil, errors.New("rejected")
	}
	return &services.ValidateResponse{UserID: "42"}, nil
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(middleware.GatewayAuthMiddleware("gw-token"))
	svc := services.NewBountyService(emptyStore{}, lifecycle.DefaultPolicy(), nil, nil)
	SetupBountyRoutes(app, svc, stubValidator{})
	return app
}

func TestBountyRoutes(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		target  string
		gateway string
		userID  string
		want    int
	}{
		{"list without gateway token", http.MethodGet, "/bounties", "", "", http.StatusUnauthorized},
		{"list with wrong gateway token", http.MethodGet, "/bounties", "Bearer nope", "", http.StatusUnauthorized},
		{"anonymous list", http.MethodGet, "/bounties", "Bearer gw-token", "", http.StatusOK},
		{"raw gateway token", http.MethodGet, "/bounties", "gw-token", "", http.StatusOK},
		{"get missing", http.MethodGet, "/bounties/abc", "Bearer gw-token", "", http.StatusNotFound},
		{"create needs user", http.MethodPost, "/bounties", "Bearer gw-token", "", http.StatusUnauthorized},
		{"claim needs user", http.MethodPatch, "/bounties/abc/claim", "Bearer gw-token", "", http.StatusUnauthorized},
		{"claim missing bounty", http.MethodPatch, "/bounties/abc/claim", "Bearer gw-token", "7", http.StatusNotFound},
		{"stream without token", http.MethodGet, "/bounties/stream", "Bearer gw-token", "", http.StatusBadRequest},
		{"stream with bad token", http.MethodGet, "/bounties/stream?token=bad", "Bearer gw-token", "", http.StatusUnauthorized},
	}

	app := newApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(""))
			if tt.gateway != "" {
				req.Header.Set("Authorization", tt.gateway)
			}
			if tt.userID != "" {
				req.Header.Set("X-User-ID", tt.userID)
			}
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
