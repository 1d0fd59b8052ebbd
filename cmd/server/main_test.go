package main

import (
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/ssat-prep/backend/internal/auth"
	"github.com/ssat-prep/backend/internal/content"
	"github.com/ssat-prep/backend/internal/middleware"
	"github.com/ssat-prep/backend/internal/testjob"
)

// Route matching only; handlers are never invoked so nil dependencies are
// fine.
func TestRouteRegistration(t *testing.T) {
	r := newRouter(
		auth.NewHandler(nil),
		content.NewHandler(nil, nil),
		testjob.NewHandler(nil),
		middleware.New(nil),
	)

	cases := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/auth/register"},
		{"POST", "/api/v1/auth/login"},
		{"GET", "/api/v1/auth/me"},
		{"POST", "/api/v1/generate"},
		{"POST", "/api/v1/generate/complete-test/start"},
		{"GET", "/api/v1/generate/complete-test/some-job-id/status"},
		{"GET", "/api/v1/generate/complete-test/some-job-id/result"},
		{"POST", "/api/v1/admin/generate"},
		{"POST", "/api/v1/admin/generate/complete-test/start"},
		{"GET", "/api/v1/admin/pool/stats"},
		{"GET", "/health"},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		var match mux.RouteMatch
		if !r.Match(req, &match) || match.MatchErr != nil {
			t.Errorf("%s %s is not routed (match err: %v)", tc.method, tc.path, match.MatchErr)
		}
	}
}

func TestStartRouteRequiresStartSegment(t *testing.T) {
	r := newRouter(
		auth.NewHandler(nil),
		content.NewHandler(nil, nil),
		testjob.NewHandler(nil),
		middleware.New(nil),
	)

	req := httptest.NewRequest("POST", "/api/v1/generate/complete-test", nil)
	var match mux.RouteMatch
	if r.Match(req, &match) && match.MatchErr == nil {
		t.Error("bare /generate/complete-test should not be a registered route")
	}
}
