package handlers

import (
	"context"
	"net/http"

	"stockbot/src/schemas"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) Trade(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req schemas.TradeRequest
	if err := decodeBody(r, &req); err != nil {
		h.HandleErrors(w, err)
		return
	}

	trade, err := h.Controller.Trade(ctx, chi.URLParam(r, "guildID"), chi.URLParam(r, "userID"), req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, trade, http.StatusCreated)
}

func (h *Handler) BuyAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req schemas.AssetRequest
	if err := decodeBody(r, &req); err != nil {
		h.HandleErrors(w, err)
		return
	}

	trade, err := h.Controller.BuyAll(ctx, chi.URLParam(r, "guildID"), chi.URLParam(r, "userID"), req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, trade, http.StatusCreated)
}

func (h *Handler) Liquidate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req schemas.LiquidateRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			h.HandleErrors(w, err)
			return
		}
	}

	trades, err := h.Controller.Liquidate(ctx, chi.URLParam(r, "guildID"), chi.URLParam(r, "userID"), req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, trades, http.StatusCreated)
}

func (h *Handler) GetTrades(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	trades, err := h.Controller.GetTrades(ctx, chi.URLParam(r, "guildID"), chi.URLParam(r, "userID"), optionalParam(r, "assetId"))
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, trades, http.StatusOK)
}
