package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kova98/nbainsights/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the viewer routes. gatherer backs /metrics.
func NewRouter(dash *DashboardHandler, api *APIHandler, m *metrics.ViewerMetrics, gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", public("dashboard", m, dash.GetDashboard))
	mux.HandleFunc("GET /api/files", public("files", m, api.GetFiles))
	mux.HandleFunc("GET /api/posts", public("posts", m, api.GetPosts))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return mux
}

func public(route string, m *metrics.ViewerMetrics, handler Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ts := time.Now()
		res := handler(w, r)
		elapsedMs := time.Since(ts).Milliseconds()
		slog.Debug("req", "method", r.Method, "path", r.URL.Path, "code", res.Code, "elapsed", elapsedMs)
		if m != nil {
			m.Requests.WithLabelValues(route, strconv.Itoa(res.Code)).Inc()
		}
		writeResult(w, res)
	}
}

func writeResult(w http.ResponseWriter, res Result) {
	if res.Code == http.StatusInternalServerError {
		slog.Error("internal error", "error", res.Error.Error())
	}

	if res.HTML != nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(res.Code)
		if _, err := w.Write(res.HTML); err != nil {
			slog.Error("failed to write response", "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Code)
	if res.Body != nil {
		if err := json.NewEncoder(w).Encode(res.Body); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}
