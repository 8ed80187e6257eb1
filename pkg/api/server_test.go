package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/assetradar/pkg/compare"
	"github.com/carverauto/assetradar/pkg/db/memory"
	"github.com/carverauto/assetradar/pkg/logger"
	"github.com/carverauto/assetradar/pkg/models"
	"github.com/carverauto/assetradar/pkg/registry"
)

func newTestServer(t *testing.T, opts ...func(*Server)) *httptest.Server {
	t.Helper()

	store := memory.New()
	reg := registry.New(store, logger.NewTestLogger())
	require.NoError(t, reg.Provision(context.Background()))

	srv := NewServer(reg, compare.NewBuilder(store, 2), logger.NewTestLogger(), opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return ts
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, url, strings.NewReader(body))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, data
}

func TestAPI_IngestThenRead(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodPost, ts.URL+"/api/v1/sources/hbss/observations",
		`{"observed_at":"2025-03-01T12:00:00Z","fields":{"mac":"aa:bb","host_name":"H1","status":"active"}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var res registry.Result
	require.NoError(t, json.Unmarshal(body, &res))
	assert.True(t, res.Created)
	assert.NotEmpty(t, res.ObservationID)

	resp, body = do(t, http.MethodPost, ts.URL+"/api/v1/sources/security_center/observations",
		`{"observed_at":"2025-03-01T13:00:00Z","fields":{"mac":"AA:BB","ip_address":"10.0.0.5","vulnerability_count":7}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = do(t, http.MethodGet, fmt.Sprintf("%s/api/v1/assets/%d", ts.URL, res.AssetID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var asset models.CanonicalAsset
	require.NoError(t, json.Unmarshal(body, &asset))
	assert.Equal(t, "AA:BB", *asset.MAC)
	assert.Equal(t, "H1", *asset.HostName)
	assert.Equal(t, "10.0.0.5", *asset.IPAddress)
	assert.Equal(t, time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC), asset.LastSeen.UTC())

	resp, body = do(t, http.MethodGet, ts.URL+"/api/v1/sources/security_center/comparison", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rows []models.ComparisonRow
	require.NoError(t, json.Unmarshal(body, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, int64(7), *rows[0].VulnerabilityCount)

	resp, body = do(t, http.MethodGet, ts.URL+"/api/v1/sources/hbss/freshness", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fresh FreshnessResponse
	require.NoError(t, json.Unmarshal(body, &fresh))
	assert.Equal(t, models.SourceHBSS, fresh.Source)
	assert.NotNil(t, fresh.LastUpdate)

	resp, body = do(t, http.MethodGet, ts.URL+"/api/v1/sources/forescout/freshness", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"source":"forescout","last_update":null}`, string(body))
}

func TestAPI_ComparisonStreamsEmptyArrayAndFilters(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodGet, ts.URL+"/api/v1/sources/forescout/comparison", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	for _, mac := range []string{"AA:01", "AA:02", "AA:03"} {
		resp, _ = do(t, http.MethodPost, ts.URL+"/api/v1/sources/forescout/observations",
			fmt.Sprintf(`{"observed_at":"2025-03-01T12:00:00Z","fields":{"mac":%q}}`, mac))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	// AD reports a host name for asset 2 only; the others have no AD row.
	resp, _ = do(t, http.MethodPost, ts.URL+"/api/v1/sources/active_directory/observations",
		`{"observed_at":"2025-03-01T12:00:00Z","asset_id":2,"fields":{"host_name":"H2","department":"Ops"}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = do(t, http.MethodGet, ts.URL+"/api/v1/sources/active_directory/comparison", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rows []models.ComparisonRow
	require.NoError(t, json.Unmarshal(body, &rows))
	assert.Len(t, rows, 3)

	// Canonical MAC is set but AD never reports one.
	resp, body = do(t, http.MethodGet, ts.URL+"/api/v1/sources/active_directory/comparison?discrepancies=only", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rows = nil
	require.NoError(t, json.Unmarshal(body, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].AssetID)
	assert.Equal(t, "Ops", *rows[0].Department)
}

func TestAPI_AmendAndDelete(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodPost, ts.URL+"/api/v1/sources/forescout/observations",
		`{"observed_at":"2025-03-01T12:00:00Z","fields":{"mac":"AA:BB"}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = do(t, http.MethodPatch, ts.URL+"/api/v1/assets/1", `{"location":"DC2","notes":"spare"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var asset models.CanonicalAsset
	require.NoError(t, json.Unmarshal(body, &asset))
	assert.Equal(t, "DC2", *asset.Location)
	assert.Equal(t, "AA:BB", *asset.MAC)

	resp, _ = do(t, http.MethodPatch, ts.URL+"/api/v1/assets/1", `{"host_name":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodDelete, ts.URL+"/api/v1/assets/1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, ts.URL+"/api/v1/assets/1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_ErrorMapping(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name      string
		method    string
		path      string
		body      string
		status    int
		retryable bool
	}{
		{"unknown source", http.MethodPost, "/api/v1/sources/nessus/observations",
			`{"observed_at":"2025-03-01T12:00:00Z","fields":{}}`, http.StatusBadRequest, false},
		{"unknown field", http.MethodPost, "/api/v1/sources/forescout/observations",
			`{"observed_at":"2025-03-01T12:00:00Z","fields":{"status":"x"}}`, http.StatusBadRequest, false},
		{"invalid value", http.MethodPost, "/api/v1/sources/security_center/observations",
			`{"observed_at":"2025-03-01T12:00:00Z","fields":{"vulnerability_count":-1}}`, http.StatusBadRequest, false},
		{"missing observed_at", http.MethodPost, "/api/v1/sources/forescout/observations",
			`{"fields":{"mac":"AA"}}`, http.StatusBadRequest, false},
		{"malformed body", http.MethodPost, "/api/v1/sources/forescout/observations",
			`{"observed_at":`, http.StatusBadRequest, false},
		{"stale asset reference", http.MethodPost, "/api/v1/sources/forescout/observations",
			`{"observed_at":"2025-03-01T12:00:00Z","asset_id":42,"fields":{"mac":"AA"}}`, http.StatusConflict, true},
		{"bad asset id", http.MethodGet, "/api/v1/assets/abc", "", http.StatusBadRequest, false},
		{"missing asset", http.MethodGet, "/api/v1/assets/9", "", http.StatusNotFound, false},
		{"unknown comparison source", http.MethodGet, "/api/v1/sources/nessus/comparison", "", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, tt.method, ts.URL+tt.path, tt.body)
			require.Equal(t, tt.status, resp.StatusCode, string(body))

			var e ErrorResponse
			require.NoError(t, json.Unmarshal(body, &e))
			assert.Equal(t, tt.status, e.Status)
			assert.Equal(t, tt.retryable, e.Retryable)
		})
	}
}

func TestAPI_DuplicateSerialIsConflict(t *testing.T) {
	ts := newTestServer(t)

	for _, body := range []string{
		`{"observed_at":"2025-03-01T12:00:00Z","fields":{"mac":"AA:01","serial_number":"S1"}}`,
		`{"observed_at":"2025-03-01T12:00:00Z","fields":{"mac":"AA:02"}}`,
	} {
		resp, data := do(t, http.MethodPost, ts.URL+"/api/v1/sources/hbss/observations", body)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	}

	resp, _ := do(t, http.MethodPost, ts.URL+"/api/v1/sources/hbss/observations",
		`{"observed_at":"2025-03-01T12:00:00Z","fields":{"mac":"AA:02","serial_number":"S1"}}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = do(t, http.MethodPatch, ts.URL+"/api/v1/assets/2", `{"serial_number":"S1"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_InternalErrorsAreOpaque(t *testing.T) {
	ctrl := gomock.NewController(t)
	mgr := registry.NewMockManager(ctrl)

	mgr.EXPECT().ListSources(gomock.Any()).Return(nil, errors.New("pq: password authentication failed"))

	srv := NewServer(mgr, compare.NewBuilder(memory.New(), 0), logger.NewTestLogger())

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/sources", http.NoBody))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "password")
}

func TestAPI_ExhaustedRaceIsRetryable(t *testing.T) {
	ctrl := gomock.NewController(t)
	mgr := registry.NewMockManager(ctrl)

	mgr.EXPECT().Ingest(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("giving up after 4 attempts: %w", models.ErrResolutionRace))

	srv := NewServer(mgr, compare.NewBuilder(memory.New(), 0), logger.NewTestLogger())

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/sources/forescout/observations",
		strings.NewReader(`{"observed_at":"2025-03-01T12:00:00Z","fields":{"mac":"AA"}}`)))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var e ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &e))
	assert.True(t, e.Retryable)
}

func TestAPI_IngestPassesTypedRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	mgr := registry.NewMockManager(ctrl)

	mgr.EXPECT().Ingest(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *registry.Request) (*registry.Result, error) {
			assert.Equal(t, "Security_Center", req.Source)
			assert.Equal(t, json.Number("12"), req.Fields["vulnerability_count"])
			assert.Nil(t, req.Fields["host_name"])
			assert.Nil(t, req.AssetID)

			return &registry.Result{AssetID: 3, ObservationID: "obs-1"}, nil
		},
	)

	srv := NewServer(mgr, compare.NewBuilder(memory.New(), 0), logger.NewTestLogger())

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/sources/Security_Center/observations",
		strings.NewReader(`{"observed_at":"2025-03-01T12:00:00Z","fields":{"vulnerability_count":12,"host_name":null}}`)))

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"asset_id":3,"observation_id":"obs-1","created":false}`, rr.Body.String())
}

func TestAPI_HealthAndMetricsBypassAPIKey(t *testing.T) {
	ts := newTestServer(t, WithAPIKey("secret"))

	resp, _ := do(t, http.MethodGet, ts.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, ts.URL+"/api/v1/sources", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := do(t, http.MethodGet, ts.URL+"/api/v1/sources?api_key=secret", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []models.SourceRegistryEntry
	require.NoError(t, json.Unmarshal(body, &entries))
	assert.Len(t, entries, 4)

	resp, body = do(t, http.MethodGet, ts.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `assetradar_http_requests_total{code="401",method="GET",route="/api/v1/sources"}`)
}
