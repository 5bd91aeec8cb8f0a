package handlers

import (
	"context"
	"net/http"
	"strconv"

	"stockbot/src/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) SearchAssets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		var err error
		if limit, err = strconv.Atoi(raw); err != nil || limit < 1 {
			h.HandleErrors(w, utils.BadRequest("limit must be a positive integer"))
			return
		}
	}

	assets, err := h.Controller.SearchAssets(ctx, r.URL.Query().Get("q"), limit)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, assets, http.StatusOK)
}

func (h *Handler) GetAssetPrice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	at, err := parseTime(r, "at")
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	price, err := h.Controller.GetAssetPrice(ctx, chi.URLParam(r, "assetID"), at)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, price, http.StatusOK)
}

func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	asset, err := h.Controller.GetAsset(ctx, chi.URLParam(r, "assetID"))
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, asset, http.StatusOK)
}

func (h *Handler) GetAssetChart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	chart, err := h.Controller.GetAssetChart(ctx, chi.URLParam(r, "assetID"))
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respondBytes(w, "text/html; charset=utf-8", chart)
}
