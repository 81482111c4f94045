package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bankdash/internal/core"
	"bankdash/internal/dashboard"
	"bankdash/internal/log"
	"bankdash/internal/presentation"
)

// CodeNotReady is returned by the API before the first successful load.
const CodeNotReady = "NOT_READY"

// snapshot returns the current snapshot or writes a 503 explaining why
// there is none.
func (s *Server) snapshot(w http.ResponseWriter) (*dashboard.Snapshot, bool) {
	snap := s.loader.Store().Current()
	if snap != nil {
		return snap, true
	}
	if st := s.loader.Status(); st.Err != nil {
		code := core.ErrorCode(st.Err)
		if code == "" {
			code = core.CodeFetch
		}
		writeJSONError(w, http.StatusServiceUnavailable, st.Message(), code)
		return nil, false
	}
	writeJSONError(w, http.StatusServiceUnavailable, "Dashboard is still loading", CodeNotReady)
	return nil, false
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w); ok {
		writeJSON(w, http.StatusOK, presentation.TransactionsJSON(snap.Transactions))
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w); ok {
		writeJSON(w, http.StatusOK, presentation.SummaryOf(snap))
	}
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w); ok {
		writeJSON(w, http.StatusOK, presentation.CategoriesJSON(snap.Report.Categories))
	}
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w); ok {
		writeJSON(w, http.StatusOK, presentation.MonthlyListJSON(snap.Report.Monthly))
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w); ok {
		writeJSON(w, http.StatusOK, presentation.DashboardOf(snap))
	}
}

type refreshResponse struct {
	Version  uint64    `json:"version"`
	LoadedAt time.Time `json:"loadedAt"`
}

// handleRefresh reloads the statement from the supplier. A failed reload
// keeps the previous snapshot.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.refresh(r.Context())
	if err != nil {
		code := core.ErrorCode(err)
		if code == "" {
			code = core.CodeFetch
		}
		if isHTMX(r) {
			NewHTMXResponse().
				TriggerDashboardRefresh(s.loader.Store().Version()).
				TriggerErrorNotification(dashboard.UserMessage(err)).
				Status(http.StatusBadGateway).
				Write(w)
			return
		}
		writeJSONError(w, http.StatusBadGateway, dashboard.UserMessage(err), code)
		return
	}
	if isHTMX(r) {
		NewHTMXResponse().
			TriggerDashboardRefresh(snap.Version).
			TriggerSuccessNotification("Dashboard refreshed").
			Status(http.StatusNoContent).
			Write(w)
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{Version: snap.Version, LoadedAt: snap.LoadedAt})
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.startedAt).Round(time.Second).String(),
	})
}

// handleReady reports ready once templates are parsed and a statement has
// been loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	st := s.loader.Status()
	switch version := s.loader.Store().Version(); {
	case version > 0 && st.Err == nil:
		checks["dashboard"] = map[string]any{"status": "ok", "version": version}
	case version > 0:
		// stale data is still served
		checks["dashboard"] = map[string]any{"status": "stale", "version": version, "error": st.Message()}
	case st.Err != nil:
		checks["dashboard"] = fmt.Sprintf("failed: %s", st.Message())
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	default:
		checks["dashboard"] = "loading"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	checks["cache"] = map[string]any{"view_entries": s.views.Size(), "status": "ok"}
	checks["rate_limiter"] = map[string]any{"active_clients": s.rateLimiter.ActiveClients(), "status": "ok"}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()
	hits, misses := s.views.Stats()

	w.WriteHeader(http.StatusOK)
	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_requests_in_flight", "gauge", "Requests currently being served", traceMetrics.InFlight)
	metric("uploads_accepted_total", "counter", "Statement uploads accepted", s.metrics.uploadsAccepted.Load())
	metric("uploads_rejected_total", "counter", "Statement uploads rejected", s.metrics.uploadsRejected.Load())
	metric("dashboard_refreshes_total", "counter", "Dashboard reloads requested", s.metrics.refreshes.Load())
	metric("dashboard_snapshot_version", "gauge", "Version of the current snapshot", s.loader.Store().Version())
	metric("view_cache_hits_total", "counter", "Rendered view cache hits", hits)
	metric("view_cache_misses_total", "counter", "Rendered view cache misses", misses)
	metric("view_cache_entries", "gauge", "Rendered views currently cached", s.views.Size())
	metric("rate_limit_hits_total", "counter", "Total rate limit hits", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", s.rateLimiter.ActiveClients())
	metric("suspicious_requests_total", "counter", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)
	metric("blocked_requests_total", "counter", "Total requests blocked", securityMetrics.BlockedRequests)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", time.Since(s.metrics.startedAt).Seconds()))
}

// logRequestError logs err once with the request logger.
func logRequestError(ctx context.Context, msg string, err error, component, op string) {
	log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, msg, err, component, op, log.NewFields())
}
