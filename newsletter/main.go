package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/DeafMist/news-briefing/internal/config"
	"github.com/DeafMist/news-briefing/internal/logger"
	"github.com/DeafMist/news-briefing/internal/mailer"
	"github.com/DeafMist/news-briefing/internal/newsapi"
	"github.com/DeafMist/news-briefing/internal/newsletter"
	"github.com/DeafMist/news-briefing/internal/summarizer"
)

func main() {
	base := logger.New("newsletter")
	if err := config.LoadDotEnv(); err != nil {
		base.Error("load .env", slog.Any("err", err))
		os.Exit(1)
	}

	cfg, err := config.LoadNewsletter()
	if err != nil {
		base.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	log, _ := logger.WithRun(base)

	pipeline, err := buildPipeline(cfg, log)
	if err != nil {
		log.Error("init pipeline", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	report := pipeline.Run(ctx)
	log.Info("newsletter generation complete",
		slog.Int("fetch_failures", report.FetchFailures),
		slog.Int("summary_errors", report.SummaryErrors),
		slog.Bool("sent", report.Sent),
		slog.Bool("skipped", report.Skipped),
	)
}

func buildPipeline(cfg *config.Newsletter, log *slog.Logger) (*newsletter.Pipeline, error) {
	news, err := newsapi.New(newsapi.Config{
		BaseURL: cfg.NewsAPIURL,
		APIKey:  cfg.NewsAPIKey,
		Timeout: cfg.HTTPTimeout,
	}, log)
	if err != nil {
		return nil, err
	}

	model, err := summarizer.NewOpenAIModel(summarizer.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
	})
	if err != nil {
		return nil, err
	}

	sender, err := newSender(cfg, log)
	if err != nil {
		return nil, err
	}

	return newsletter.New(newsletter.Config{
		Topics:           cfg.Topics,
		ArticlesPerTopic: cfg.ArticlesPerTopic,
		From:             cfg.SenderEmail,
		To:               []string{cfg.ReceiverEmail},
		SkipEmpty:        cfg.SkipEmpty,
	}, news, summarizer.NewService(model, cfg.LLMTimeout, log), sender, log), nil
}

func newSender(cfg *config.Newsletter, log *slog.Logger) (mailer.Sender, error) {
	switch cfg.MailProvider {
	case config.ProviderSMTP:
		return mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SenderEmail,
			Password: cfg.SenderPassword,
			Timeout:  cfg.SMTPTimeout,
		}), nil
	case config.ProviderResend:
		return mailer.NewResendSender(cfg.ResendAPIKey), nil
	case config.ProviderLog:
		return mailer.NewLogSender(log), nil
	default:
		return nil, fmt.Errorf("unsupported mail provider %q", cfg.MailProvider)
	}
}
