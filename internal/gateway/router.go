// Package gateway dispatches HTTP traffic to the component handlers. The
// routing table is explicit: one block per endpoint, method-checked, with
// the operator endpoints behind the auth middleware.
package gateway

import (
	"net/http"

	"github.com/organ-c/storepulse/internal/auth"
	"github.com/organ-c/storepulse/internal/httpx"
	"github.com/organ-c/storepulse/internal/ingest"
	"github.com/organ-c/storepulse/internal/registry"
	"github.com/organ-c/storepulse/internal/retention"
)

type Router struct {
	Auth      auth.Handler
	Ingest    ingest.Handler
	WS        *registry.Handler
	Retention retention.Handler
	Metrics   http.Handler

	AuthMW func(http.Handler) http.Handler
}

func (rt Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Health.
	if r.Method == http.MethodGet && r.URL.Path == "/healthz" {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
		return
	}

	// Prometheus scrape endpoint.
	if r.URL.Path == "/metrics" && rt.Metrics != nil {
		rt.Metrics.ServeHTTP(w, r)
		return
	}

	// Operator token exchange.
	if r.URL.Path == "/api/v1/auth/token" {
		if r.Method != http.MethodPost {
			httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		rt.Auth.Token(w, r)
		return
	}

	// Observation ingest. No auth: field simulators post here.
	if r.URL.Path == "/api/v1/iot" {
		if r.Method != http.MethodPost {
			httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		rt.Ingest.Ingest(w, r)
		return
	}

	// Real-time subscribers.
	if r.URL.Path == "/ws/alerts" {
		rt.WS.Alerts(w, r)
		return
	}
	if r.URL.Path == "/api/v1/ws/connections" {
		if r.Method != http.MethodGet {
			httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		rt.WS.Connections(w, r)
		return
	}

	// Retention administration.
	if r.URL.Path == "/api/v1/admin/cleanup" {
		if r.Method != http.MethodPost {
			httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		rt.requireAuth(http.HandlerFunc(rt.Retention.Cleanup)).ServeHTTP(w, r)
		return
	}
	if r.URL.Path == "/api/v1/logs/counts" {
		if r.Method != http.MethodGet {
			httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		rt.requireAuth(http.HandlerFunc(rt.Retention.Counts)).ServeHTTP(w, r)
		return
	}

	httpx.WriteError(w, http.StatusNotFound, "not found")
}

func (rt Router) requireAuth(h http.Handler) http.Handler {
	if rt.AuthMW == nil {
		return h
	}
	return rt.AuthMW(h)
}
