package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"assetnexus/internal/config"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}

func TestLoggerTagsService(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "assetnexus", "info").Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "assetnexus", line["service"])
	assert.Equal(t, "hello", line["msg"])
}

func TestSetupTracingDisabled(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), "assetnexus", config.OTelConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(Metrics, AccessLog(logger))
	r.Get("/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("/things/{id}", http.MethodGet, "418"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/42", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("/things/{id}", http.MethodGet, "418")))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "/things/{id}", line["path"])
	assert.EqualValues(t, http.StatusTeapot, line["status"])
}

func TestSetupMetricsExportsOtelInstruments(t *testing.T) {
	reg := prometheus.NewRegistry()
	shutdown, err := SetupMetrics(reg)
	require.NoError(t, err)
	defer shutdown(context.Background())

	counter, err := otel.Meter("assetnexus/test").Int64Counter("events.published")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	families, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "events_published") {
			found = true
			require.NotEmpty(t, mf.GetMetric())
			assert.EqualValues(t, 3, mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found, "events.published not exported")
}
