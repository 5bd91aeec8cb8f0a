package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"stockbot/src/api/middleware"
	"stockbot/src/utils"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	var fromCtx *logrus.Logger
	handler := middleware.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = utils.LoggerFromContext(r.Context())
		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	t.Run("successful requests are logged at debug", func(t *testing.T) {
		hook.Reset()
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fine", nil))

		require.NotNil(t, fromCtx)
		assert.Same(t, logger, fromCtx)
		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.DebugLevel, entry.Level)
		assert.Equal(t, http.StatusOK, entry.Data["status"])
		assert.Equal(t, 2, entry.Data["bytes"])
	})

	t.Run("server errors are logged as warnings", func(t *testing.T) {
		hook.Reset()
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.WarnLevel, entry.Level)
		assert.Equal(t, "/boom", entry.Data["path"])
	})
}
