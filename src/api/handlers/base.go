package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"stockbot/src/api/controllers"
	"stockbot/src/clients/yfinance"
	"stockbot/src/services"
	"stockbot/src/utils"
	"stockbot/src/utils/render"
)

const requestTimeout = 10 * time.Second

type Handler struct {
	Controller controllers.IController
}

func NewHandler(controller controllers.IController) *Handler {
	return &Handler{Controller: controller}
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}

func (h *Handler) respondBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// toHTTPError maps domain errors onto status codes.
func toHTTPError(err error) error {
	var httpErr *utils.HTTPError
	var fetchErr *yfinance.FetchError
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.Is(err, context.DeadlineExceeded):
		return utils.NewHTTPError(http.StatusGatewayTimeout, "Request timed out")
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrPriceNotFound),
		errors.Is(err, render.ErrNotEnoughPoints):
		return utils.NotFound(err.Error())
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidTradeType),
		errors.Is(err, services.ErrInvalidPeriod):
		return utils.BadRequest(err.Error())
	case errors.Is(err, services.ErrInsufficientFunds), errors.Is(err, services.ErrInsufficientShares):
		return utils.UnprocessableEntity(err.Error())
	case errors.Is(err, services.ErrThresholdConflict), errors.Is(err, services.ErrConcurrentUpdate):
		return utils.Conflict(err.Error())
	case errors.As(err, &fetchErr), errors.Is(err, yfinance.ErrNoPriceData):
		return utils.BadGateway(err.Error())
	case err != nil:
		return utils.InternalServerError(err.Error())
	default:
		return utils.InternalServerError("Unhandled error")
	}
}

func (h *Handler) HandleErrors(w http.ResponseWriter, err error) {
	var httpErr *utils.HTTPError
	errors.As(toHTTPError(err), &httpErr)
	h.respond(w, nil, map[string]string{"error": httpErr.Message}, httpErr.Code)
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return utils.BadRequest(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

// parseTime accepts RFC3339 timestamps and plain dates. An empty value yields nil.
func parseTime(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(utils.ShortDashDateLayout, raw)
	if err != nil {
		return nil, utils.BadRequest(fmt.Sprintf("invalid %s %q, expected RFC3339 or %s", key, raw, utils.ShortDashDateLayout))
	}
	return &t, nil
}

func optionalParam(r *http.Request, key string) *string {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	return &raw
}
