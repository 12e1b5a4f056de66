package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"replay_report/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	calls []string
	err   error
}

func (f *fakeRenderer) Render(_ context.Context, param, ext string) ([]byte, string, error) {
	f.calls = append(f.calls, param+"."+ext)
	if f.err != nil {
		return nil, "", f.err
	}
	if ext == "xlsx" {
		return []byte("PK"), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	}
	return []byte("<h2>" + param + ": compare results</h2>"), "text/html; charset=utf-8", nil
}

func setupTestServer(prefix string, r ReportRenderer) *Server {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := config.Config{Report: config.Report{Prefix: prefix}}
	return NewServer(cfg, r, logger)
}

func do(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	rec := do(t, setupTestServer("run42", &fakeRenderer{}), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "replay-report", body["service"])
}

func TestReportPage(t *testing.T) {
	r := &fakeRenderer{}
	s := setupTestServer("run42", r)

	rec := do(t, s, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "run42: compare results")
	assert.Empty(t, rec.Header().Get("Content-Disposition"))

	// каждый запрос строит отчёт заново
	do(t, s, "/report.html")
	assert.Equal(t, []string{"run42.html", "run42.html"}, r.calls)
}

func TestReportNameOverride(t *testing.T) {
	r := &fakeRenderer{}
	rec := do(t, setupTestServer("run42", r), "/?name=replay-7")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"replay-7.html"}, r.calls)
}

func TestReportWorkbook(t *testing.T) {
	rec := do(t, setupTestServer("run42", &fakeRenderer{}), "/report.xlsx")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.Equal(t, `attachment; filename="run42.xlsx"`, rec.Header().Get("Content-Disposition"))
}

func TestReportRenderError(t *testing.T) {
	rec := do(t, setupTestServer("run42", &fakeRenderer{err: errors.New("connection refused")}), "/")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to render report")
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestReportNameRequired(t *testing.T) {
	r := &fakeRenderer{}
	rec := do(t, setupTestServer("", r), "/")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, r.calls)
}
