package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockbot/src/api/controllers"
	"stockbot/src/api/handlers"
	"stockbot/src/clients/yfinance"
	"stockbot/src/schemas"
	"stockbot/src/services"
	"stockbot/src/utils"
	"stockbot/src/utils/render"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingController answers every net worth request with err.
type failingController struct {
	controllers.IController
	err error
}

func (c failingController) GetNetWorth(context.Context, string, string, *time.Time) (*schemas.NetWorthResponse, error) {
	return nil, c.err
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("%w: asset X", services.ErrNotFound), http.StatusNotFound},
		{"missing price", services.ErrPriceNotFound, http.StatusNotFound},
		{"invalid amount", services.ErrInvalidAmount, http.StatusBadRequest},
		{"invalid period", services.ErrInvalidPeriod, http.StatusBadRequest},
		{"insufficient funds", services.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{"threshold conflict", services.ErrThresholdConflict, http.StatusConflict},
		{"concurrent update", services.ErrConcurrentUpdate, http.StatusConflict},
		{"upstream failure", &yfinance.FetchError{Op: "stock price", Symbol: "AAPL", StatusCode: 503, Err: errors.New("unavailable")}, http.StatusBadGateway},
		{"timeout", fmt.Errorf("loading: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"explicit http error", utils.NewHTTPError(http.StatusTeapot, "short and stout"), http.StatusTeapot},
		{"chart without enough points", fmt.Errorf("price chart: %w", render.ErrNotEnoughPoints), http.StatusNotFound},
		{"anything else", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewHandler(failingController{err: tt.err})
			rec := httptest.NewRecorder()
			h.GetNetWorth(rec, httptest.NewRequest(http.MethodGet, "/networth", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}
