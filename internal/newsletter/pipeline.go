package newsletter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/DeafMist/news-briefing/internal/digest"
	"github.com/DeafMist/news-briefing/internal/mailer"
	"github.com/DeafMist/news-briefing/internal/models"
	"github.com/DeafMist/news-briefing/internal/processing"
)

type articleFetcher interface {
	Fetch(ctx context.Context, topic string, maxCount int) models.FetchResult
}

type articleSummarizer interface {
	Summarize(ctx context.Context, text string) models.Summary
}

// Config holds the per-run settings of the pipeline.
type Config struct {
	Topics           []string
	ArticlesPerTopic int
	From             string
	To               []string
	// SkipEmpty suppresses the email when no topic produced an article.
	SkipEmpty bool
}

// Digest is the composed briefing before it is sent.
type Digest struct {
	Subject  string
	HTML     string
	Text     string
	Sections []models.Section
	Topics   int // sections rendered
	Articles int
}

// Report summarizes a finished run.
type Report struct {
	Topics        int // topics that produced a section
	Articles      int
	FetchFailures int
	SummaryErrors int
	Sent          bool
	Skipped       bool
	SendErr       error
	Duration      time.Duration
}

// Pipeline fetches, summarizes, composes and sends the briefing, one call at a time.
type Pipeline struct {
	cfg        Config
	fetcher    articleFetcher
	summarizer articleSummarizer
	sender     mailer.Sender
	log        *slog.Logger
	now        func() time.Time
}

// New wires a pipeline. sender may be nil when only Compose is used.
func New(cfg Config, fetcher articleFetcher, summarizer articleSummarizer, sender mailer.Sender, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		cfg:        cfg,
		fetcher:    fetcher,
		summarizer: summarizer,
		sender:     sender,
		log:        logger,
		now:        time.Now,
	}
}

// Compose builds the digest. Fetch and summarize failures degrade to skipped
// topics and placeholder summaries; only rendering can fail.
func (p *Pipeline) Compose(ctx context.Context) (*Digest, error) {
	d, _, err := p.compose(ctx)
	return d, err
}

type composeStats struct {
	fetchFailures int
	summaryErrors int
}

func (p *Pipeline) compose(ctx context.Context) (*Digest, composeStats, error) {
	var stats composeStats
	b := digest.NewBuilder()

	for _, topic := range p.cfg.Topics {
		res := p.fetcher.Fetch(ctx, topic, p.cfg.ArticlesPerTopic)
		if res.Err != nil {
			stats.fetchFailures++
		}
		if len(res.Articles) == 0 {
			p.log.Info("no articles found", slog.String("topic", topic))
			continue
		}

		entries := make([]models.Entry, 0, len(res.Articles))
		for _, article := range res.Articles {
			text := processing.SelectCleanContent(article)
			summary := p.summarizer.Summarize(ctx, text)
			if summary.Err != nil {
				stats.summaryErrors++
			}
			entries = append(entries, models.Entry{Article: article, Summary: summary})
		}
		b.AddSection(topic, entries)
	}

	html, err := b.Render()
	if err != nil {
		return nil, stats, err
	}

	return &Digest{
		Subject:  digest.Subject(p.now()),
		HTML:     html,
		Text:     processing.PlainText(html),
		Sections: b.Sections(),
		Topics:   b.TopicCount(),
		Articles: b.ArticleCount(),
	}, stats, nil
}

// Run composes the digest and makes exactly one send attempt. It never fails:
// every outcome, including a failed send, is described by the Report.
func (p *Pipeline) Run(ctx context.Context) Report {
	start := p.now()
	p.log.Info("starting newsletter run", slog.Int("topics", len(p.cfg.Topics)))

	d, stats, err := p.compose(ctx)
	report := Report{FetchFailures: stats.fetchFailures, SummaryErrors: stats.summaryErrors}
	if err != nil {
		p.log.Error("compose digest", slog.Any("err", err))
		report.SendErr = err
		report.Duration = p.now().Sub(start)
		return report
	}
	report.Topics = d.Topics
	report.Articles = d.Articles

	if p.cfg.SkipEmpty && report.Articles == 0 {
		p.log.Info("no articles found for any topic, no email to send")
		report.Skipped = true
		report.Duration = p.now().Sub(start)
		return report
	}

	report.SendErr = p.send(ctx, d)
	report.Sent = report.SendErr == nil
	report.Duration = p.now().Sub(start)

	p.log.Info("newsletter run complete",
		slog.Int("sections", report.Topics),
		slog.Int("articles", report.Articles),
		slog.Bool("sent", report.Sent),
		slog.Duration("duration", report.Duration),
	)
	return report
}

func (p *Pipeline) send(ctx context.Context, d *Digest) error {
	if p.sender == nil {
		err := fmt.Errorf("%w: no sender configured", mailer.ErrSend)
		p.log.Error("send email", slog.Any("err", err))
		return err
	}

	p.log.Info("sending email", slog.Any("to", p.cfg.To), slog.String("subject", d.Subject))

	err := p.sender.Send(ctx, mailer.Message{
		From:    p.cfg.From,
		To:      p.cfg.To,
		Subject: d.Subject,
		HTML:    d.HTML,
		Text:    d.Text,
	})
	switch {
	case err == nil:
		p.log.Info("email sent", slog.Any("to", p.cfg.To))
	case errors.Is(err, mailer.ErrAuth):
		p.log.Error("smtp authentication failed, check SENDER_EMAIL and SENDER_PASSWORD (app password)",
			slog.Any("err", err))
	default:
		p.log.Error("send email", slog.Any("err", err))
	}
	return err
}
