package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("tier", "premium"),
		attribute.String("seller_id", "456"),
		attribute.String("bound", "floor"),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("tier"), attrs[0].Key)
	assert.Equal(t, attribute.Key("bound"), attrs[1].Key)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordQuote(context.Background(), "default", "none", 15)
	m.RecordInvalidAmount(context.Background(), "quote")
	m.RecordSettlement(context.Background(), "default", "none")
	m.RecordRateLimitDenied(context.Background(), "/api/commission/quote", "client-rate")
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	require.NoError(t, err)
	m.RecordQuote(context.Background(), "default", "none", 15)
}

func TestDomainMetricsReachPrometheusWithoutOTLP(t *testing.T) {
	reg := prometheus.NewRegistry()
	provider, err := NewProvider(nil, Config{Enabled: false}, nil, reg)
	require.NoError(t, err)

	m, err := New(Config{ServiceName: "remag"}, provider)
	require.NoError(t, err)
	m.RecordQuote(context.Background(), "premium", "none", 10)
	m.RecordSettlement(context.Background(), "premium", "none")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "remag_commission_quotes")
	assert.Contains(t, joined, "remag_settlements_recorded")
	assert.Contains(t, joined, "remag_commission_amount")
}

func TestNewProviderWithoutReadersIsNoop(t *testing.T) {
	provider, err := NewProvider(nil, Config{}, nil, nil)
	require.NoError(t, err)
	_, ok := provider.(noop.MeterProvider)
	assert.True(t, ok)
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m, err := NewHTTPMetrics(reg)
	require.NoError(t, err)

	r := gin.New()
	r.Use(GinMiddleware(m))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/health", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unknown", "404")))
}
