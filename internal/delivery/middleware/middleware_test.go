package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"usermgmt/config"
	deliverycontext "usermgmt/internal/delivery/context"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEcho(buf *bytes.Buffer, cfg *config.Config) *echo.Echo {
	logger := slog.New(slog.NewJSONHandler(buf, nil))

	e := echo.New()
	e.Use(NewRequestIDMiddleware(logger).Process)
	e.Use(NewLoggerMiddleware(logger, cfg).Handle)
	e.GET("/users/:email", func(c echo.Context) error {
		return c.String(http.StatusOK, deliverycontext.GetRequestIDFromContext(c.Request().Context()))
	})
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	return e
}

func TestRequestID_GeneratedWhenMissing(t *testing.T) {
	var buf bytes.Buffer
	e := newEcho(&buf, &config.Config{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/a@gmail.com", nil))

	id := rec.Header().Get(deliverycontext.HeaderXRequestID)
	assert.Len(t, id, 36)
	assert.Equal(t, id, rec.Body.String())
}

func TestRequestID_ReusesClientValue(t *testing.T) {
	var buf bytes.Buffer
	e := newEcho(&buf, &config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/users/a@gmail.com", nil)
	req.Header.Set(deliverycontext.HeaderXRequestID, "client-id-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "client-id-1", rec.Header().Get(deliverycontext.HeaderXRequestID))

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "HTTP request", line["msg"])
	assert.Equal(t, "client-id-1", line["request_id"])
	assert.Equal(t, "/users/:email", line["route"])
	assert.EqualValues(t, http.StatusOK, line["status"])
}

func TestRequestID_RejectsMalformedClientValue(t *testing.T) {
	var buf bytes.Buffer
	e := newEcho(&buf, &config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/users/a@gmail.com", nil)
	req.Header.Set(deliverycontext.HeaderXRequestID, strings.Repeat("x", 500))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Len(t, rec.Header().Get(deliverycontext.HeaderXRequestID), 36)
}

func TestLogger_SkipsHealthUnlessDebug(t *testing.T) {
	var buf bytes.Buffer
	e := newEcho(&buf, &config.Config{})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Zero(t, buf.Len())

	cfg := &config.Config{}
	cfg.Env.Debug = true
	e = newEcho(&buf, cfg)

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Contains(t, buf.String(), "/health")
}

func TestLogger_LogsStatusWrittenByErrorHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(NewLoggerMiddleware(logger, &config.Config{}).Handle)
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.EqualValues(t, http.StatusTeapot, line["status"])
	assert.Equal(t, "WARN", line["level"])
}
