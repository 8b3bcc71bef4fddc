package observability

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedHealth struct{ status string }

func (f fixedHealth) Check(context.Context) HealthStatus {
	return HealthStatus{Status: f.status, Timestamp: time.Unix(0, 0).UTC(), Components: map[string]string{"store": f.status}}
}

func TestServer_Health(t *testing.T) {
	tests := []struct {
		status string
		code   int
	}{
		{"up", http.StatusOK},
		{"degraded", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			srv := NewServer("127.0.0.1:0", fixedHealth{status: tt.status})
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.code, rec.Code)
			var got HealthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.status, got.Components["store"])
		})
	}
}

func TestServer_MetricsEndpoint(t *testing.T) {
	FilesAnalyzedTotal.Inc()

	srv := NewServer("127.0.0.1:0", nil)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { _ = srv.Stop(context.Background()) })

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "depgraph_files_analyzed_total"))
}

func TestServer_StartInvalidAddress(t *testing.T) {
	srv := NewServer("not-an-address", nil)
	require.Error(t, srv.Start(context.Background()))
	assert.NoError(t, srv.Stop(context.Background()))
}

func TestInitTracing_RequiresEndpoint(t *testing.T) {
	_, err := InitTracing(context.Background(), TracingConfig{ServiceName: "depgraph"})
	require.Error(t, err)
}
