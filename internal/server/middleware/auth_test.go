package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newAuthRequest(authorization string, app *App) (*AppContext, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/ingest/documents", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return &AppContext{Context: c, App: app}, rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestAuthMiddlewareRejectsMissingBearer(t *testing.T) {
	for _, header := range []string{"", "Basic abc", "token-without-scheme"} {
		c, rec := newAuthRequest(header, &App{})
		if err := AuthMiddleware(okHandler)(c); err != nil {
			t.Fatalf("unexpected error for header %q: %v", header, err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("unexpected status for header %q: got %d, want 401", header, rec.Code)
		}
	}
}

func TestAuthMiddlewareMasterKeyGrantsRoutePermissions(t *testing.T) {
	app := &App{
		MasterAPIKey:   "master-secret",
		MasterUserID:   1,
		MasterUserRole: "admin",
	}
	c, rec := newAuthRequest("Bearer master-secret", app)

	if err := AuthMiddleware(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("master key was rejected: status %d", rec.Code)
	}

	user := c.User
	if user == nil {
		t.Fatalf("no user attached after master key auth")
	}
	// Every granted permission must guard a mounted route, and every
	// guarded route must be reachable with the master key.
	if !HasPermission(user, "ingest.run") {
		t.Fatalf("master key user missing ingest.run: %v", user.Permissions)
	}
	if len(user.Permissions) != 1 {
		t.Fatalf("unexpected permission grant: %v", user.Permissions)
	}
}

func TestRequirePermissionDeniesMissingPermission(t *testing.T) {
	c, rec := newAuthRequest("", &App{})
	c.User = &AppUser{UserID: 2, Role: "user", Permissions: []string{}}

	if err := RequirePermission("ingest.run")(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d, want 403", rec.Code)
	}
}

func TestRequirePermissionAllowsGrantedPermission(t *testing.T) {
	c, rec := newAuthRequest("", &App{})
	c.User = &AppUser{UserID: 2, Role: "user", Permissions: []string{"ingest.run"}}

	if err := RequirePermission("ingest.run")(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d, want 200", rec.Code)
	}
}
