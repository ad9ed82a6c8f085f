package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"recipehub/internal/log"
)

// handleHealth performs a basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports ready only when the recipe store answers a listing.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{}

	recipes, err := s.catalog.List(ctx)
	if err != nil {
		status, code = "not_ready", http.StatusServiceUnavailable
		checks["recipe_store"] = fmt.Sprintf("failed: %v", err)
		log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
	} else {
		checks["recipe_store"] = map[string]any{"status": "ok", "recipes": len(recipes)}
	}
	checks["rate_limiter"] = map[string]any{
		"status":         "ok",
		"active_clients": s.rateLimiter.ActiveClients(),
	}

	NewResponse().Status(code).JSON(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics writes counters in the Prometheus text exposition format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	traceMetrics := s.traceMiddleware.GetMetrics()
	rateMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.securityDetector.GetMetrics()

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_response_time_avg_microseconds", "gauge", "Mean request latency", traceMetrics.AverageResponseTime)
	metric("recipes_created_total", "counter", "Recipes added through the API", atomic.LoadInt64(&s.appMetrics.recipesCreated))
	metric("recipes_deleted_total", "counter", "Recipes deleted through the API", atomic.LoadInt64(&s.appMetrics.recipesDeleted))
	metric("grocery_lists_total", "counter", "Grocery lists generated", atomic.LoadInt64(&s.appMetrics.groceryLists))
	metric("rate_limit_hits_total", "counter", "Requests rejected by the rate limiter", rateMetrics.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Clients tracked by the rate limiter", rateMetrics.ClientCount)
	metric("suspicious_requests_total", "counter", "Requests flagged as probing", securityMetrics.SuspiciousRequests)
	metric("invalid_forwarded_ip_total", "counter", "Unparseable forwarding headers from trusted proxies", securityMetrics.InvalidIPAttempts)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", int64(time.Since(s.appMetrics.uptime).Seconds()))
}
