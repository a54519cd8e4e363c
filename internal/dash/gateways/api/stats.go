package api

import (
	"context"
	"math"
	"net/http"
	"strings"

	"github.com/haukened/pihole-dash/internal/dash/domain"
)

const (
	maxStatsHours  = 720
	maxSearchHours = 168
	maxLimit       = 100
	maxDays        = 30
	maxPerPage     = 200
)

func (h *handler) summary(w http.ResponseWriter, r *http.Request) {
	hours, err := intQuery(r, "hours", 24, 1, maxStatsHours)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.stats.Summary(r.Context(), hours)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) topDomains(w http.ResponseWriter, r *http.Request) {
	h.top(w, r, h.stats.TopDomains)
}

func (h *handler) topBlocked(w http.ResponseWriter, r *http.Request) {
	h.top(w, r, h.stats.TopBlocked)
}

func (h *handler) top(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context, hours, limit int) ([]domain.DomainCount, error)) {
	limit, err := intQuery(r, "limit", 10, 1, maxLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	hours, err := intQuery(r, "hours", 24, 1, maxStatsHours)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := fetch(r.Context(), hours, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) overTime(w http.ResponseWriter, r *http.Request) {
	hours, err := intQuery(r, "hours", 24, 1, maxStatsHours)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.stats.OverTime(r.Context(), hours)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) hourlyPattern(w http.ResponseWriter, r *http.Request) {
	days, err := intQuery(r, "days", 7, 1, maxDays)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.stats.HourlyPattern(r.Context(), days)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) blocklistEffectiveness(w http.ResponseWriter, r *http.Request) {
	out, err := h.stats.BlocklistEffectiveness(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) queryLog(w http.ResponseWriter, r *http.Request) {
	var f domain.QueryFilter
	var err error
	if f.Page, err = intQuery(r, "page", 1, 1, math.MaxInt32); err != nil {
		h.fail(w, r, err)
		return
	}
	if f.PerPage, err = intQuery(r, "per_page", 50, 1, maxPerPage); err != nil {
		h.fail(w, r, err)
		return
	}
	if f.From, err = optionalInt64Query(r, "from"); err != nil {
		h.fail(w, r, err)
		return
	}
	if f.To, err = optionalInt64Query(r, "to"); err != nil {
		h.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	f.Domain = q.Get("domain")
	f.Client = q.Get("client")
	switch s := domain.StatusFilter(strings.ToLower(q.Get("status"))); s {
	case domain.StatusAny, domain.StatusBlocked, domain.StatusAllowed, domain.StatusCached:
		f.Status = s
	default:
		h.fail(w, r, invalid("status must be one of blocked, allowed, cached"))
		return
	}

	out, err := h.stats.Queries(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) searchLog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		h.fail(w, r, invalid("q is required"))
		return
	}
	hours, err := intQuery(r, "hours", 24, 1, maxSearchHours)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.stats.Search(r.Context(), q, hours)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
