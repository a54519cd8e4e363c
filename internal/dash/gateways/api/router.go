// Package api exposes the dashboard over HTTP.
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/haukened/pihole-dash/internal/dash/common/log"
)

type Options struct {
	Stats       Stats
	Devices     Devices
	Lists       Lists
	TimedBlocks TimedBlocks
	Logger      log.Logger
	// StaticDir holds the built single-page app. It is optional.
	StaticDir string
}

type handler struct {
	stats    Stats
	devices  Devices
	lists    Lists
	blocks   TimedBlocks
	logger   log.Logger
	validate *validator.Validate
}

// NewRouter builds the complete HTTP handler for the dashboard.
func NewRouter(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	h := &handler{
		stats:    opts.Stats,
		devices:  opts.Devices,
		lists:    opts.Lists,
		blocks:   opts.TimedBlocks,
		logger:   opts.Logger,
		validate: validator.New(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(allowAnyOrigin)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/stats", func(r chi.Router) {
			r.Get("/summary", h.summary)
			r.Get("/top-domains", h.topDomains)
			r.Get("/top-blocked", h.topBlocked)
			r.Get("/over-time", h.overTime)
			r.Get("/hourly-pattern", h.hourlyPattern)
			r.Get("/blocklist-effectiveness", h.blocklistEffectiveness)
		})
		r.Route("/devices", func(r chi.Router) {
			r.Get("/", h.listDevices)
			r.Patch("/{mac}", h.updateDevice)
			r.Get("/{mac}/stats", h.deviceStats)
			r.Get("/{mac}/activity", h.deviceActivity)
			r.Get("/{mac}/top-domains", h.deviceTopDomains)
			r.Get("/{mac}/top-blocked", h.deviceTopBlocked)
		})
		r.Route("/domains", func(r chi.Router) {
			r.Get("/", h.listDomains)
			r.Post("/", h.addDomain)
			r.Get("/presets", h.presets)
			r.Get("/adlists", h.adlists)
			r.Delete("/{id}", h.deleteDomain)
			r.Patch("/{id}", h.toggleDomain)
		})
		r.Route("/logs", func(r chi.Router) {
			r.Get("/", h.queryLog)
			r.Get("/search", h.searchLog)
		})
		r.Route("/timed-blocks", func(r chi.Router) {
			r.Get("/", h.listTimedBlocks)
			r.Post("/", h.createTimedBlocks)
			r.Delete("/{id}", h.cancelTimedBlock)
		})
		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			writeDetail(w, http.StatusNotFound, "Not Found")
		})
	})

	if info, err := os.Stat(opts.StaticDir); opts.StaticDir != "" && err == nil && info.IsDir() {
		r.NotFound(spa(opts.StaticDir))
	}
	return r
}

// spa serves files from dir and falls back to index.html so client-side
// routes resolve.
func spa(dir string) http.HandlerFunc {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeDetail(w, http.StatusNotFound, "Not Found")
			return
		}
		clean := filepath.Clean("/" + strings.TrimPrefix(r.URL.Path, "/"))
		if info, err := os.Stat(filepath.Join(dir, clean)); err == nil && !info.IsDir() {
			files.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, index)
	}
}

func allowAnyOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "*")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug(map[string]any{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
			}, "HTTP request")
		})
	}
}
