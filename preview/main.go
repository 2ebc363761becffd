package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DeafMist/news-briefing/internal/config"
	"github.com/DeafMist/news-briefing/internal/logger"
	"github.com/DeafMist/news-briefing/internal/newsapi"
	"github.com/DeafMist/news-briefing/internal/newsletter"
	"github.com/DeafMist/news-briefing/internal/summarizer"
)

func main() {
	log := logger.New("preview")
	if err := config.LoadDotEnv(); err != nil {
		log.Error("load .env", slog.Any("err", err))
		os.Exit(1)
	}

	cfg, err := config.LoadPreview()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	news, err := newsapi.New(newsapi.Config{
		BaseURL: cfg.NewsAPIURL,
		APIKey:  cfg.NewsAPIKey,
		Timeout: cfg.HTTPTimeout,
	}, log)
	if err != nil {
		log.Error("init newsapi", slog.Any("err", err))
		os.Exit(1)
	}

	model, err := summarizer.NewOpenAIModel(summarizer.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
	})
	if err != nil {
		log.Error("init llm", slog.Any("err", err))
		os.Exit(1)
	}

	pipeline := newsletter.New(newsletter.Config{
		Topics:           cfg.Topics,
		ArticlesPerTopic: cfg.ArticlesPerTopic,
	}, news, summarizer.NewService(model, cfg.LLMTimeout, log), nil, log)

	srv := &server{log: log, composer: pipeline, timeout: composeTimeout(cfg)}

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      srv.timeout + 5*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("preview server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

// composeTimeout bounds one preview: every topic fetch plus every summary.
func composeTimeout(cfg *config.Preview) time.Duration {
	topics := time.Duration(len(cfg.Topics))
	perTopic := cfg.HTTPTimeout + time.Duration(cfg.ArticlesPerTopic)*cfg.LLMTimeout
	return topics * perTopic
}

type composer interface {
	Compose(ctx context.Context) (*newsletter.Digest, error)
}

type server struct {
	log      *slog.Logger
	composer composer
	timeout  time.Duration
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/preview", s.handlePreview)
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	d, err := s.composer.Compose(ctx)
	if err != nil {
		s.log.Error("compose preview", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Digest-Subject", d.Subject)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(d.HTML))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
