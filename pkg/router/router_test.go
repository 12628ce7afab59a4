package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func text(body string) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, body)
	}
}

func serve(r *Router, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRouterDispatch(t *testing.T) {
	r := New(nil)
	r.POST("/api/v1/runs", text("create"))
	r.GET("/api/v1/runs", text("list"))
	r.GET("/api/v1/runs/*/results", text("results"))
	r.GET("/api/v1/runs/*", text("get"))
	r.DELETE("/api/v1/runs/*", text("delete"))

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodPost, "/api/v1/runs", http.StatusOK, "create"},
		{http.MethodGet, "/api/v1/runs", http.StatusOK, "list"},
		{http.MethodGet, "/api/v1/runs/abc/results", http.StatusOK, "results"},
		{http.MethodGet, "/api/v1/runs/abc", http.StatusOK, "get"},
		{http.MethodDelete, "/api/v1/runs/abc", http.StatusOK, "delete"},
		{http.MethodPut, "/api/v1/runs", http.StatusMethodNotAllowed, ""},
		{http.MethodPost, "/api/v1/runs/abc", http.StatusMethodNotAllowed, ""},
		{http.MethodGet, "/nope", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := serve(r, tt.method, tt.path)
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestMatchWildcardRoute(t *testing.T) {
	assert.True(t, matchWildcardRoute("/a/b/c", "/a/*/c"))
	assert.False(t, matchWildcardRoute("/a/b/d", "/a/*/c"))
	assert.False(t, matchWildcardRoute("/a/b", "/a/*/c"))
	assert.True(t, matchWildcardRoute("/swagger/index.html", "/swagger/*"))
	assert.True(t, matchWildcardRoute("/swagger/a/b", "/swagger/*"))
	assert.False(t, matchWildcardRoute("/other/a", "/swagger/*"))
	assert.True(t, matchWildcardRoute("/api/v1/download/run-1/result_output.txt", "/api/v1/download/*/*"))
}

func TestHandleMountsHandler(t *testing.T) {
	r := New(nil)
	r.Handle("/metrics", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	assert.Equal(t, http.StatusTeapot, serve(r, http.MethodGet, "/metrics").Code)
	assert.Contains(t, r.Routes(), "GET:/metrics")
	assert.True(t, r.Paths()["/metrics"])
}
