package handlers

import (
	"context"
	"net/http"

	"stockbot/src/schemas"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetRoleConfigs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	configs, err := h.Controller.GetRoleConfigs(ctx, chi.URLParam(r, "guildID"))
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, configs, http.StatusOK)
}

func (h *Handler) PutRoleConfig(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req schemas.RoleConfigRequest
	if err := decodeBody(r, &req); err != nil {
		h.HandleErrors(w, err)
		return
	}

	cfg, err := h.Controller.PutRoleConfig(ctx, chi.URLParam(r, "guildID"), req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, cfg, http.StatusOK)
}

func (h *Handler) DeleteRoleConfig(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.Controller.DeleteRoleConfig(ctx, chi.URLParam(r, "guildID"), chi.URLParam(r, "roleID")); err != nil {
		h.HandleErrors(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) EvaluateRoles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	delta, err := h.Controller.EvaluateRoles(ctx, chi.URLParam(r, "guildID"), chi.URLParam(r, "userID"))
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, delta, http.StatusOK)
}
