package handlers

import (
	"context"
	"net/http"
	"time"

	"stockbot/src/schemas"
	"stockbot/src/worker/controllers"
)

// Manual runs share the scheduled job's upper bound; a full universe refresh takes minutes.
const manualRunTimeout = 5 * time.Minute

func (h *Handler) RefreshPrices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), manualRunTimeout)
	defer cancel()

	result, err := h.Controller.RefreshPrices(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, schemas.TaskResponse{Task: controllers.PriceRefreshTask, Started: true, Result: result}, http.StatusOK)
}

func (h *Handler) RecomputeRoles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), manualRunTimeout)
	defer cancel()

	result, err := h.Controller.RecomputeRoles(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, schemas.TaskResponse{Task: "role-recompute", Started: true, Result: result}, http.StatusOK)
}

func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.Controller.ListSchedules(), http.StatusOK)
}
