package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/news-briefing/internal/config"
	"github.com/DeafMist/news-briefing/internal/logger"
	"github.com/DeafMist/news-briefing/internal/newsletter"
)

type stubComposer struct {
	digest *newsletter.Digest
	err    error
}

func (s stubComposer) Compose(context.Context) (*newsletter.Digest, error) {
	return s.digest, s.err
}

func TestHealth(t *testing.T) {
	srv := &server{log: logger.Discard(), composer: stubComposer{}}
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPreviewReturnsHTML(t *testing.T) {
	srv := &server{log: logger.Discard(), composer: stubComposer{digest: &newsletter.Digest{
		Subject: "Your Daily AI News Briefing - March 05, 2025",
		HTML:    "<h1>Your AI-Powered News Briefing</h1>",
	}}, timeout: time.Second}
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Equal(t, "Your Daily AI News Briefing - March 05, 2025", rec.Header().Get("X-Digest-Subject"))
	require.Equal(t, "<h1>Your AI-Powered News Briefing</h1>", rec.Body.String())
}

func TestPreviewComposeError(t *testing.T) {
	srv := &server{log: logger.Discard(), composer: stubComposer{err: errors.New("template broke")}}
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "template broke", body.Error)
}

func TestComposeTimeout(t *testing.T) {
	cfg := &config.Preview{Common: config.Common{
		Topics:           []string{"A", "B"},
		ArticlesPerTopic: 3,
		HTTPTimeout:      10 * time.Second,
		LLMTimeout:       30 * time.Second,
	}}
	require.Equal(t, 200*time.Second, composeTimeout(cfg))
}
