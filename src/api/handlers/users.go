package handlers

import (
	"context"
	"net/http"

	"stockbot/src/schemas"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.Controller.GetUser(ctx, chi.URLParam(r, "guildID"), chi.URLParam(r, "userID"))
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, user, http.StatusOK)
}

func (h *Handler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req schemas.BalanceRequest
	if err := decodeBody(r, &req); err != nil {
		h.HandleErrors(w, err)
		return
	}

	user, err := h.Controller.AdjustBalance(ctx, chi.URLParam(r, "guildID"), chi.URLParam(r, "userID"), req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, user, http.StatusOK)
}

func (h *Handler) AdjustShares(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req schemas.SharesRequest
	if err := decodeBody(r, &req); err != nil {
		h.HandleErrors(w, err)
		return
	}

	row, err := h.Controller.AdjustShares(ctx, chi.URLParam(r, "guildID"), chi.URLParam(r, "userID"), chi.URLParam(r, "assetID"), req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, row, http.StatusCreated)
}

func (h *Handler) Donate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req schemas.DonateRequest
	if err := decodeBody(r, &req); err != nil {
		h.HandleErrors(w, err)
		return
	}

	donation, err := h.Controller.Donate(ctx, chi.URLParam(r, "guildID"), chi.URLParam(r, "userID"), req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, donation, http.StatusOK)
}
