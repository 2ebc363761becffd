package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DeafMist/news-briefing/internal/models"
)

const maxErrorBody = 4 << 10

var (
	// ErrTransport means the request never produced a response.
	ErrTransport = errors.New("news api request failed")
	// ErrStatus means the API answered with a non-success status.
	ErrStatus = errors.New("news api returned an error")
	// ErrDecode means the response body was not the expected JSON.
	ErrDecode = errors.New("decode news api response")
)

// Config describes how to reach the news search endpoint.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client wraps the /v2/everything search endpoint.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	log     *slog.Logger
}

type searchResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []models.Article `json:"articles"`
}

// New instantiates the news API client.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("news api base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse news api base url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		log:     logger,
	}, nil
}

// Fetch returns up to maxCount of the most recent articles for topic. Failures
// are logged and reported through FetchResult.Err; Articles is then empty.
func (c *Client) Fetch(ctx context.Context, topic string, maxCount int) models.FetchResult {
	c.log.Info("fetching articles", slog.String("topic", topic), slog.Int("count", maxCount))

	articles, err := c.search(ctx, topic, maxCount)
	if err != nil {
		c.log.Error("fetch articles", slog.String("topic", topic), slog.Any("err", err))
		return models.FetchResult{Articles: []models.Article{}, Err: err}
	}

	c.log.Info("articles fetched", slog.String("topic", topic), slog.Int("fetched", len(articles)))
	return models.FetchResult{Articles: articles}
}

// FetchArticles is Fetch without the error detail.
func (c *Client) FetchArticles(ctx context.Context, topic string, maxCount int) []models.Article {
	return c.Fetch(ctx, topic, maxCount).Articles
}

func (c *Client) search(ctx context.Context, topic string, maxCount int) ([]models.Article, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse url: %v", ErrTransport, err)
	}
	q := endpoint.Query()
	q.Set("q", topic)
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", strconv.Itoa(maxCount))
	q.Set("apiKey", c.apiKey)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, redact(err, c.apiKey))
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: status %d: %s", ErrStatus, res.StatusCode, errorDetail(body))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if parsed.Status == "error" {
		return nil, fmt.Errorf("%w: %s: %s", ErrStatus, parsed.Code, parsed.Message)
	}
	if parsed.Articles == nil {
		return []models.Article{}, nil
	}

	return parsed.Articles, nil
}

// errorDetail prefers the message of the API's error envelope over the raw body.
func errorDetail(body []byte) string {
	var envelope searchResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		if envelope.Code != "" {
			return envelope.Code + ": " + envelope.Message
		}
		return envelope.Message
	}
	return strings.TrimSpace(string(body))
}

// redact keeps the api key out of logged url errors.
func redact(err error, apiKey string) string {
	msg := err.Error()
	if apiKey == "" {
		return msg
	}
	return strings.ReplaceAll(msg, url.QueryEscape(apiKey), "REDACTED")
}
