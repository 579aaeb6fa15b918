package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/auvplanner/internal/config"
	"github.com/OCAP2/auvplanner/internal/estimator"
	"github.com/OCAP2/auvplanner/internal/planner"
	"github.com/OCAP2/auvplanner/pkg/core"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

type failingPlanner struct{}

func (failingPlanner) Estimate(context.Context, core.MissionInput) (planner.Report, error) {
	return planner.Report{}, errors.New("boom")
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc, err := planner.NewService(planner.Dependencies{
		Estimator: estimator.Default(),
		Logger:    testLogger(),
		CacheSize: 16,
	})
	require.NoError(t, err)

	srv, err := NewServer(config.ServerConfig{Address: ":0"}, testLogger(), svc, NewMetrics())
	require.NoError(t, err)
	return srv
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func postJSON(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestNewServer_RequiresPlanner(t *testing.T) {
	_, err := NewServer(config.ServerConfig{}, testLogger(), nil, nil)
	assert.Error(t, err)
}

func TestEstimateAPI_Success(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, postJSON(`{"depth":10,"speed":1,"batteryCapacity":5,"weight":50,"waypoints":[[0,0],[0,1]]}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report planner.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, 111194.93, report.Result.TotalDistance)
	assert.Equal(t, 3.8, report.Result.BatteryUsageKwh)
	assert.Equal(t, 1.2, report.Result.BatteryRemainingKwh)
	assert.Equal(t, 10.0, report.Input.Depth)
	assert.Contains(t, string(report.Route), "LineString")
}

func TestEstimateAPI_Deficit(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, postJSON(`{"depth":"10","speed":"2","batteryCapacity":"1","weight":"50","waypoints":"[[0,0],[0,1]]"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var report planner.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 15.2, report.Result.BatteryUsageKwh)
	assert.Equal(t, -14.2, report.Result.BatteryRemainingKwh)
	assert.Equal(t, 14.2, report.Result.BatteryNeededKwh)
	assert.False(t, report.Result.Feasible)
}

func TestEstimateAPI_FormBody(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, postForm("/api/v1/estimate", validForm()))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"batteryUsageKwh":3.8`)
}

func TestEstimateAPI_Rejected(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"negative depth", `{"depth":-1,"speed":1,"batteryCapacity":5,"weight":50,"waypoints":[[0,0],[0,1]]}`, estimator.MsgInvalidInput},
		{"zero weight", `{"depth":1,"speed":1,"batteryCapacity":5,"weight":0,"waypoints":[[0,0],[0,1]]}`, estimator.MsgInvalidInput},
		{"single waypoint", `{"depth":1,"speed":1,"batteryCapacity":5,"weight":50,"waypoints":[[0,0]]}`, estimator.MsgInsufficientRoute},
		{"malformed waypoints", `{"depth":1,"speed":1,"batteryCapacity":5,"weight":50,"waypoints":[[0]]}`, estimator.MsgMalformedWaypoints},
		{"cancelling current", `{"depth":1,"speed":1,"batteryCapacity":5,"weight":50,"currentSpeed":1,"currentDirection":180,"waypoints":[[0,0],[1,0]]}`, estimator.MsgNoEffectiveSpeed},
		{"missing field", `{"speed":1}`, "Missing required field: depth."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(srv, postJSON(tt.body))
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMsg, body["error"])
			assert.Equal(t, []any{}, body["waypoints"])
		})
	}
}

func TestEstimateAPI_ErrorNotHTMLEscaped(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, postJSON(`{"depth":-1,"speed":1,"batteryCapacity":5,"weight":50,"waypoints":[[0,0],[0,1]]}`))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), estimator.MsgInvalidInput)
}

func TestEstimateAPI_BodyTooLarge(t *testing.T) {
	srv := newTestServer(t)

	body := `{"pad":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	rec := serve(srv, postJSON(body))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestEstimateAPI_InternalError(t *testing.T) {
	srv, err := NewServer(config.ServerConfig{}, testLogger(), failingPlanner{}, nil)
	require.NoError(t, err)

	rec := serve(srv, postJSON(`{"depth":10,"speed":1,"batteryCapacity":5,"weight":50,"waypoints":[[0,0],[0,1]]}`))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), msgInternal)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestEstimateAPI_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/v1/estimate", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestIndex_Get(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `name="battery_capacity"`)
	assert.NotContains(t, rec.Body.String(), `class="error"`)
}

func TestIndex_SubmitRendersResult(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, postForm("/", validForm()))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "111194.93 m")
	assert.Contains(t, body, "3.8 kWh")
	assert.Contains(t, body, "Mission feasible")
	assert.Contains(t, body, `value="50"`)
}

func TestIndex_SubmitDeficit(t *testing.T) {
	srv := newTestServer(t)

	form := validForm()
	form.Set("speed", "2")
	form.Set("battery_capacity", "1")
	rec := serve(srv, postForm("/", form))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Additional battery needed")
	assert.Contains(t, rec.Body.String(), "14.2 kWh")
}

func TestIndex_SubmitRendersError(t *testing.T) {
	srv := newTestServer(t)

	form := validForm()
	form.Set("waypoints", "[[0,0]]")
	rec := serve(srv, postForm("/", form))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), estimator.MsgInsufficientRoute)
	assert.NotContains(t, rec.Body.String(), "Battery usage")
}

func TestIndex_UnknownPath(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticAssets(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "L.map")
}

func TestProbes(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	srv.SetReady(true)
	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, srv.Shutdown(context.Background()))
	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	serve(srv, postJSON(`{"depth":10,"speed":1,"batteryCapacity":5,"weight":50,"waypoints":[[0,0],[0,1]]}`))
	serve(srv, httptest.NewRequest(http.MethodGet, "/does/not/exist", nil))

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `auvplanner_http_requests_total{code="200",method="POST",path="/api/v1/estimate"} 1`)
	assert.Contains(t, body, `path="other"`)
	assert.Contains(t, body, "auvplanner_http_duration_seconds")
	assert.Contains(t, body, "go_goroutines")
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/", routeLabel("/"))
	assert.Equal(t, "/api/v1/estimate", routeLabel("/api/v1/estimate"))
	assert.Equal(t, "/static/", routeLabel("/static/app.js"))
	assert.Equal(t, "other", routeLabel("/static/"))
	assert.Equal(t, "other", routeLabel("/wp-admin"))
}
