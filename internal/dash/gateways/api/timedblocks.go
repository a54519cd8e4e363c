package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/haukened/pihole-dash/internal/dash/domain"
)

const defaultBlockMinutes = 30

type createTimedBlocksRequest struct {
	Domains         []string `json:"domains" validate:"required,min=1,max=50,dive,required"`
	DurationMinutes *int     `json:"duration_minutes" validate:"omitempty,min=1,max=10080"`
}

// batchError reports a failed create together with the blocks that are
// already live.
type batchError struct {
	Detail  string              `json:"detail"`
	Created []domain.TimedBlock `json:"created"`
}

func (h *handler) listTimedBlocks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.blocks.List())
}

// createTimedBlocks blocks each domain in order. It stops at the first
// failure; blocks created before it stay in place and are listed in the
// error body, as is a failed block the scheduler still tracks.
func (h *handler) createTimedBlocks(w http.ResponseWriter, r *http.Request) {
	var req createTimedBlocksRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	minutes := defaultBlockMinutes
	if req.DurationMinutes != nil {
		minutes = *req.DurationMinutes
	}

	out := make([]domain.TimedBlock, 0, len(req.Domains))
	for _, d := range req.Domains {
		b, err := h.blocks.Create(r.Context(), d, minutes)
		if b.ID != "" {
			out = append(out, b)
		}
		if err != nil {
			h.failBatch(w, r, err, out)
			return
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) failBatch(w http.ResponseWriter, r *http.Request, err error, created []domain.TimedBlock) {
	if len(created) == 0 {
		h.fail(w, r, err)
		return
	}
	ids := make([]string, len(created))
	for i, b := range created {
		ids[i] = b.ID
	}
	status := statusFor(err)
	h.logger.Error(map[string]any{
		"method":  r.Method,
		"path":    r.URL.Path,
		"error":   err.Error(),
		"created": ids,
	}, "Timed block batch incomplete")
	writeJSON(w, status, batchError{Detail: err.Error(), Created: created})
}

func (h *handler) cancelTimedBlock(w http.ResponseWriter, r *http.Request) {
	if err := h.blocks.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
