package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"stockbot/src/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	portfolio, err := h.Controller.GetPortfolio(ctx, chi.URLParam(r, "guildID"), chi.URLParam(r, "userID"))
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, portfolio, http.StatusOK)
}

func (h *Handler) GetNetWorth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	asOf, err := parseTime(r, "asOf")
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	worth, err := h.Controller.GetNetWorth(ctx, chi.URLParam(r, "guildID"), chi.URLParam(r, "userID"), asOf)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, worth, http.StatusOK)
}

func (h *Handler) GetHoldings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	asOf, err := parseTime(r, "asOf")
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	holdings, err := h.Controller.GetHoldings(ctx, chi.URLParam(r, "guildID"), chi.URLParam(r, "userID"), optionalParam(r, "assetId"), asOf)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, holdings, http.StatusOK)
}

func (h *Handler) GetGain(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	gain, err := h.Controller.GetGain(ctx, chi.URLParam(r, "guildID"), chi.URLParam(r, "userID"), chi.URLParam(r, "assetID"))
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, gain, http.StatusOK)
}

func (h *Handler) GetWorthSeries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	series, err := h.Controller.GetWorthSeries(ctx, chi.URLParam(r, "guildID"), chi.URLParam(r, "userID"), r.URL.Query().Get("period"))
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, series, http.StatusOK)
}

func (h *Handler) GetWorthChart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	chart, err := h.Controller.GetWorthChart(ctx, chi.URLParam(r, "guildID"), chi.URLParam(r, "userID"), r.URL.Query().Get("period"))
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respondBytes(w, "text/html; charset=utf-8", chart)
}

func (h *Handler) ExportWorth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID := chi.URLParam(r, "userID")
	workbook, err := h.Controller.ExportWorth(ctx, chi.URLParam(r, "guildID"), userID, r.URL.Query().Get("period"))
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "worth-"+userID+".xlsx"))
	h.respondBytes(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}

func (h *Handler) VerifyLedger(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	breaks, err := h.Controller.VerifyLedger(ctx, chi.URLParam(r, "guildID"), chi.URLParam(r, "userID"))
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, breaks, http.StatusOK)
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
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

	board, err := h.Controller.GetLeaderboard(ctx, chi.URLParam(r, "guildID"), limit)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, board, http.StatusOK)
}
