package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertBizMetricLine checks that the Prometheus output contains a business metric
// matching the given name, partial label pattern, and value. Uses regex to handle
// extra OTel scope labels injected by the Prometheus exporter.
func assertBizMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	provider.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewBusinessMetrics(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	businessMetrics, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")

	require.NoError(t, err)
	assert.NotNil(t, businessMetrics)
}

func TestBusinessMetrics_RecordOperation(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		bm.RecordOperation(context.Background(), "vault", "key_create", "success")
		bm.RecordOperation(context.Background(), "vault", "key_create", "error")
		bm.RecordOperation(context.Background(), "auth", "admin_init", "success")
	})
}

func TestBusinessMetrics_RecordDuration(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		bm.RecordDuration(context.Background(), "vault", "key_rotate", 123*time.Millisecond, "success")
		bm.RecordDuration(context.Background(), "auth", "admin_authenticate", 2*time.Millisecond, "error")
	})
}

func TestNoOpBusinessMetrics(t *testing.T) {
	noOpMetrics := NewNoOpBusinessMetrics()

	assert.NotPanics(t, func() {
		noOpMetrics.RecordOperation(context.Background(), "vault", "key_create", "success")
		noOpMetrics.RecordDuration(context.Background(), "vault", "key_create", time.Second, "success")
		noOpMetrics.RecordRelease(context.Background(), "weatherapi", ReleaseOutcomeReleased)
	})
}

func TestBusinessMetrics_Integration(t *testing.T) {
	provider, err := NewProvider("integration_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "integration_test")
	require.NoError(t, err)

	ctx := context.Background()

	bm.RecordOperation(ctx, "vault", "key_create", "success")
	bm.RecordOperation(ctx, "vault", "key_create", "success")
	bm.RecordOperation(ctx, "vault", "key_create", "error")
	bm.RecordOperation(ctx, "auth", "admin_init", "success")

	bm.RecordDuration(ctx, "vault", "key_create", 50*time.Millisecond, "success")
	bm.RecordDuration(ctx, "vault", "key_create", 60*time.Millisecond, "success")
	bm.RecordDuration(ctx, "vault", "key_create", 100*time.Millisecond, "error")

	bm.RecordRelease(ctx, "weatherapi", ReleaseOutcomeReleased)
	bm.RecordRelease(ctx, "weatherapi", ReleaseOutcomeReleased)
	bm.RecordRelease(ctx, "weatherapi", ReleaseOutcomeRateLimited)

	output := scrape(t, provider)

	assertBizMetricLine(t, output,
		`integration_test_operations_total`,
		`domain="vault".*operation="key_create".*status="success"`,
		`2`,
	)
	assertBizMetricLine(t, output,
		`integration_test_operations_total`,
		`domain="vault".*operation="key_create".*status="error"`,
		`1`,
	)
	assertBizMetricLine(t, output,
		`integration_test_operations_total`,
		`domain="auth".*operation="admin_init".*status="success"`,
		`1`,
	)
	assertBizMetricLine(t, output,
		`integration_test_operation_duration_seconds_count`,
		`domain="vault".*operation="key_create".*status="success"`,
		`2`,
	)
	assertBizMetricLine(t, output,
		`integration_test_key_releases_total`,
		`outcome="released".*service_name="weatherapi"`,
		`2`,
	)
	assertBizMetricLine(t, output,
		`integration_test_key_releases_total`,
		`outcome="rate_limited".*service_name="weatherapi"`,
		`1`,
	)
}
