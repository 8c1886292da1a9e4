package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"EngineMirror/internal/domain/models"
	"EngineMirror/internal/domain/service"
	"EngineMirror/pkg/cache"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type staticSnapshots struct{ snap *models.Snapshot }

func (s staticSnapshots) Snapshot() *models.Snapshot { return s.snap }

type fakeController struct {
	refreshed []models.SourceID
	err       error
}

func (f *fakeController) Refresh(_ context.Context, id models.SourceID) error {
	if f.err != nil {
		return f.err
	}
	f.refreshed = append(f.refreshed, id)
	return nil
}

func (f *fakeController) Statuses(context.Context) ([]service.SourceInfo, error) {
	return []service.SourceInfo{{
		SourceStatus: models.SourceStatus{ID: models.SourceSignals, State: models.StateOK, Generation: 4},
		Enabled:      true,
	}}, nil
}

func testSnapshot() *models.Snapshot {
	snap := models.EmptySnapshot()
	snap.Version = 9
	snap.Signals = []models.Signal{{Symbol: "GC=F", Decision: models.DecisionBuy}}
	snap.API = models.APIStatus{State: models.APIOnline}
	for i, text := range []string{"INFO: a", "WARNING: b", "INFO: c", "ERROR: d", "INFO: e"} {
		sev := models.SeverityInfo
		switch {
		case strings.HasPrefix(text, "WARNING"):
			sev = models.SeverityWarn
		case strings.HasPrefix(text, "ERROR"):
			sev = models.SeverityError
		}
		snap.Logs = append(snap.Logs, models.LogLine{Text: text, Severity: sev, Sequence: uint64(i + 1)})
	}
	return snap
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setup(t *testing.T, ctl *fakeController, perMin int) (*echo.Echo, *cache.MemoryCache) {
	t.Helper()
	mc := cache.NewMemoryCache(cache.WithMemoryCleanup(0))
	t.Cleanup(func() { _ = mc.Close() })

	h := NewMirrorHandler(nil, staticSnapshots{testSnapshot()}, ctl, mc, HandlerConfig{
		SnapshotTTL:   time.Minute,
		RefreshPerMin: perMin,
	})
	e := echo.New()
	h.RegisterRoutes(e)
	return e, mc
}

func do(e *echo.Echo, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func TestSnapshotJSONWithETag(t *testing.T) {
	e, mc := setup(t, &fakeController{}, 10)

	rec := do(e, http.MethodGet, "/api/snapshot", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	assert.Contains(t, etag, "-9-json")

	var snap models.Snapshot
	decode(t, rec, &snap)
	assert.Equal(t, uint64(9), snap.Version)
	require.Len(t, snap.Signals, 1)
	assert.Equal(t, 1, mc.Len(), "encoded snapshot cached")

	rec = do(e, http.MethodGet, "/api/snapshot", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, rec.Code)

	rec = do(e, http.MethodGet, "/api/snapshot", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, mc.Len())
}

func TestSnapshotMsgpack(t *testing.T) {
	e, _ := setup(t, &fakeController{}, 10)

	rec := do(e, http.MethodGet, "/api/snapshot", map[string]string{echo.HeaderAccept: "application/msgpack"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/msgpack", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get("ETag"), "-msgpack")

	var env map[string]interface{}
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "OK", env["message"])
	data, ok := env["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, data, "signals")
	assert.Contains(t, data, "version")
}

func TestSignalsEndpoint(t *testing.T) {
	e, _ := setup(t, &fakeController{}, 10)
	rec := do(e, http.MethodGet, "/api/signals", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var sigs []models.Signal
	env := decode(t, rec, &sigs)
	assert.Equal(t, http.StatusOK, env.Status)
	require.Len(t, sigs, 1)
	assert.Equal(t, "GC=F", sigs[0].Symbol)
}

func TestLogsPaging(t *testing.T) {
	e, _ := setup(t, &fakeController{}, 10)

	rec := do(e, http.MethodGet, "/api/logs?after=2&limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page models.LogsResponse
	decode(t, rec, &page)
	require.Len(t, page.Lines, 2)
	assert.Equal(t, uint64(3), page.Lines[0].Sequence)
	assert.Equal(t, uint64(4), page.Next)
	assert.Equal(t, uint64(5), page.Highest)
	assert.True(t, page.More)

	rec = do(e, http.MethodGet, "/api/logs?severity=WARN", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = models.LogsResponse{}
	decode(t, rec, &page)
	require.Len(t, page.Lines, 2)
	assert.Equal(t, models.SeverityWarn, page.Lines[0].Severity)
	assert.Equal(t, models.SeverityError, page.Lines[1].Severity)
	assert.Equal(t, uint64(5), page.Next)
	assert.False(t, page.More)
}

func TestLogsRejectsBadQuery(t *testing.T) {
	e, _ := setup(t, &fakeController{}, 10)
	for _, q := range []string{"limit=0", "limit=5000", "severity=DEBUG", "after=-1"} {
		rec := do(e, http.MethodGet, "/api/logs?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestRefresh(t *testing.T) {
	ctl := &fakeController{}
	e, _ := setup(t, ctl, 1)

	rec := do(e, http.MethodPost, "/api/sources/results/refresh", nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []models.SourceID{models.SourceSignals}, ctl.refreshed)

	rec = do(e, http.MethodPost, "/api/sources/signals/refresh", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = do(e, http.MethodPost, "/api/sources/weather/refresh", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefreshControllerErrors(t *testing.T) {
	e, _ := setup(t, &fakeController{err: service.ErrSourceDisabled}, 10)
	rec := do(e, http.MethodPost, "/api/sources/news/refresh", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	e, _ = setup(t, &fakeController{err: service.ErrNotRunning}, 10)
	rec = do(e, http.MethodPost, "/api/sources/news/refresh", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSourcesAndHealth(t *testing.T) {
	e, _ := setup(t, &fakeController{}, 10)

	rec := do(e, http.MethodGet, "/api/sources", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var infos []service.SourceInfo
	decode(t, rec, &infos)
	require.Len(t, infos, 1)
	assert.Equal(t, uint64(4), infos[0].Generation)

	rec = do(e, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]interface{}
	decode(t, rec, &health)
	assert.Equal(t, float64(9), health["version"])
}
