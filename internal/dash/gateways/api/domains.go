package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/haukened/pihole-dash/internal/dash/domain"
)

type addDomainRequest struct {
	Domain  string `json:"domain" validate:"required,max=253"`
	Type    string `json:"type" validate:"omitempty,oneof=blacklist whitelist regex_black regex_white wildcard"`
	Comment string `json:"comment" validate:"max=255"`
}

type toggleDomainRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

func (h *handler) listDomains(w http.ResponseWriter, r *http.Request) {
	var kind *domain.ListKind
	if raw := r.URL.Query().Get("type"); raw != "" {
		k, err := domain.ParseListKind(raw)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		kind = &k
	}
	out, err := h.lists.List(r.Context(), kind)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) addDomain(w http.ResponseWriter, r *http.Request) {
	var req addDomainRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	kind := domain.ListBlacklist
	if req.Type != "" {
		k, err := domain.ParseListKind(req.Type)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		kind = k
	}
	out, err := h.lists.Add(r.Context(), kind, req.Domain, req.Comment)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "output": out})
}

func (h *handler) presets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.lists.Presets())
}

func (h *handler) adlists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.lists.Adlists(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func domainID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, invalid("domain id must be an integer")
	}
	return id, nil
}

func (h *handler) deleteDomain(w http.ResponseWriter, r *http.Request) {
	id, err := domainID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.lists.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) toggleDomain(w http.ResponseWriter, r *http.Request) {
	id, err := domainID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req toggleDomainRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.lists.SetEnabled(r.Context(), id, *req.Enabled); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "enabled": *req.Enabled})
}
