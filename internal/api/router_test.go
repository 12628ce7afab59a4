package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-sample-pipeline/internal/api/handler"
	"go-sample-pipeline/internal/logging"
	"go-sample-pipeline/internal/metrics"
	"go-sample-pipeline/internal/model"
	"go-sample-pipeline/internal/store"
	"go-sample-pipeline/pkg/router"
	"go-sample-pipeline/pkg/utils"
)

type testServer struct {
	router  *router.Router
	handler *handler.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()

	s, err := store.Open(filepath.Join(dir, "pipeline.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	defaults := model.DefaultRunSpec()
	defaults.ProduceInterval = "0"

	m := metrics.New()
	h := handler.New(context.Background(), s, utils.NewOutputManager(filepath.Join(dir, "outputs")), logging.NewNop(), m, defaults)
	r := router.New(nil)
	RegisterRoutes(r, h, m)
	return &testServer{router: r, handler: h}
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), v))
}

func TestRunLifecycle(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/v1/runs",
		`{"producers":2,"valuesPerProducer":10,"consumers":2,"valuesPerConsumer":10,"summaryFile":"summary.json","seed":5}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var created struct {
		RunID  string            `json:"runID"`
		Status string            `json:"status"`
		Links  map[string]string `json:"links"`
	}
	decode(t, rec, &created)
	require.NotEmpty(t, created.RunID)
	assert.Equal(t, store.StatusPending, created.Status)
	ts.handler.Wait()

	rec = ts.do(http.MethodGet, "/api/v1/runs/"+created.RunID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var run store.RunRecord
	decode(t, rec, &run)
	assert.Equal(t, store.StatusCompleted, run.Status)
	assert.Equal(t, 2, run.Spec.Producers)

	rec = ts.do(http.MethodGet, "/api/v1/runs/"+created.RunID+"/results", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var result store.RunResult
	decode(t, rec, &result)
	assert.Equal(t, int64(20), result.Result.ConsumedCount)
	assert.True(t, strings.HasPrefix(result.Line, "Average: "))

	rec = ts.do(http.MethodGet, "/api/v1/runs/"+created.RunID+"/workers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var workers struct {
		Count int `json:"count"`
	}
	decode(t, rec, &workers)
	assert.Equal(t, 4, workers.Count)

	rec = ts.do(http.MethodGet, created.Links["output"], "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, result.Line+"\n", rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = ts.do(http.MethodGet, "/api/v1/download/"+created.RunID+"/summary.json", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = ts.do(http.MethodGet, "/api/v1/runs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []store.RunRecord
	decode(t, rec, &runs)
	assert.Len(t, runs, 1)

	rec = ts.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pipeline_runs_total")

	rec = ts.do(http.MethodDelete, "/api/v1/runs/"+created.RunID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/v1/runs/"+created.RunID, "").Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, created.Links["output"], "").Code)
}

func TestCreateRunUsesDefaultsForEmptyBody(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/v1/runs", "")
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	ts.handler.Wait()

	var created struct {
		RunID string `json:"runID"`
	}
	decode(t, rec, &created)

	rec = ts.do(http.MethodGet, "/api/v1/runs/"+created.RunID+"/results", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var result store.RunResult
	decode(t, rec, &result)
	assert.Equal(t, int64(1500), result.Result.ExpectedCount)
}

func TestCreateRunRejectsBadConfiguration(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/v1/runs", `{"producers":3,"valuesPerProducer":500,"consumers":10,"valuesPerConsumer":100}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "configuration error")

	rec = ts.do(http.MethodPost, "/api/v1/runs", `{"producers":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/api/v1/runs", "")
	var runs []store.RunRecord
	decode(t, rec, &runs)
	assert.Empty(t, runs)
}

func TestUnknownRun(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/v1/runs/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/v1/runs/nope/results", "").Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, "/api/v1/runs/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/v1/download/nope/result_output.txt", "").Code)

	rec := ts.do(http.MethodGet, "/api/v1/runs/nope/errors", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":0`)
}

func TestSwaggerDocServed(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/runs/{id}/results")
}
