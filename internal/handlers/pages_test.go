package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rgcsekaraa/todorama/internal/auth"
	"github.com/rgcsekaraa/todorama/internal/handlers"
	"github.com/rgcsekaraa/todorama/internal/middleware"
	"github.com/rgcsekaraa/todorama/internal/models"
)

func newPageRouter(t *testing.T) (*gin.Engine, *auth.Verifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := auth.NewVerifier("test-secret")
	if err != nil {
		t.Fatalf("Failed to create verifier: %v", err)
	}

	pageHandler, err := handlers.NewPageHandler()
	if err != nil {
		t.Fatalf("Failed to load page templates: %v", err)
	}

	router := gin.New()
	router.GET("/", pageHandler.Landing)
	router.GET("/dashboard",
		middleware.RequireSessionPage(verifier, testCookie, "/"),
		pageHandler.Dashboard)

	return router, verifier
}

func TestLandingPage(t *testing.T) {
	router, _ := newPageRouter(t)

	req, _ := http.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Todorama") {
		t.Error("Expected the landing page to mention Todorama")
	}
}

func TestDashboard_RedirectsWithoutSession(t *testing.T) {
	router, _ := newPageRouter(t)

	req, _ := http.NewRequest("GET", "/dashboard", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("Expected status 302, got %d", w.Code)
	}
	if location := w.Header().Get("Location"); location != "/" {
		t.Errorf("Expected redirect to /, got %q", location)
	}
}

func TestDashboard_RendersForSession(t *testing.T) {
	router, verifier := newPageRouter(t)

	token, err := verifier.Issue(models.SessionUser{ID: "user-1", Name: "Ada Lovelace"}, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	req, _ := http.NewRequest("GET", "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Ada Lovelace") {
		t.Error("Expected the dashboard to greet the session user")
	}
}
