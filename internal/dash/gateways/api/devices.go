package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type updateDeviceRequest struct {
	Nickname string  `json:"nickname" validate:"required,max=64"`
	Icon     *string `json:"icon" validate:"omitempty,max=64"`
}

func (h *handler) listDevices(w http.ResponseWriter, r *http.Request) {
	out, err := h.devices.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) updateDevice(w http.ResponseWriter, r *http.Request) {
	var req updateDeviceRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.devices.SetNickname(r.Context(), chi.URLParam(r, "mac"), req.Nickname, req.Icon)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) deviceStats(w http.ResponseWriter, r *http.Request) {
	hours, err := intQuery(r, "hours", 24, 1, maxStatsHours)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.devices.Stats(r.Context(), chi.URLParam(r, "mac"), hours)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) deviceActivity(w http.ResponseWriter, r *http.Request) {
	hours, err := intQuery(r, "hours", 24, 1, maxSearchHours)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.devices.Activity(r.Context(), chi.URLParam(r, "mac"), hours)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) deviceTopDomains(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 10, 1, maxLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.devices.TopDomains(r.Context(), chi.URLParam(r, "mac"), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) deviceTopBlocked(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 10, 1, maxLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.devices.TopBlocked(r.Context(), chi.URLParam(r, "mac"), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
