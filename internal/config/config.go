package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Mail providers understood by the newsletter job.
const (
	ProviderSMTP   = "smtp"
	ProviderResend = "resend"
	ProviderLog    = "log"
)

const (
	defaultTopics   = "AI in medicine,US economic outlook,NASA Artemis program"
	maxArticleCount = 100
)

// Common contains the news and language-model settings shared by every command.
type Common struct {
	NewsAPIKey       string
	NewsAPIURL       string
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIBaseURL    string
	Topics           []string
	ArticlesPerTopic int
	HTTPTimeout      time.Duration
	LLMTimeout       time.Duration
}

// Newsletter holds configuration for the batch job that builds and sends the digest.
type Newsletter struct {
	Common
	SenderEmail    string
	SenderPassword string
	ReceiverEmail  string
	MailProvider   string
	SMTPHost       string
	SMTPPort       int
	SMTPTimeout    time.Duration
	ResendAPIKey   string
	RunTimeout     time.Duration
	SkipEmpty      bool
}

// Preview configures the local HTTP preview server.
type Preview struct {
	Common
	BindAddr string
}

// LoadDotEnv reads KEY=value pairs from the given files (".env" when none are
// given) without overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// LoadNewsletter builds a Newsletter config from environment variables.
func LoadNewsletter() (*Newsletter, error) {
	common, err := loadCommon()
	if err != nil {
		return nil, err
	}

	c := &Newsletter{
		Common:         *common,
		SenderEmail:    getEnv("SENDER_EMAIL", ""),
		SenderPassword: getEnv("SENDER_PASSWORD", ""),
		ReceiverEmail:  getEnv("RECEIVER_EMAIL", ""),
		MailProvider:   strings.ToLower(getEnv("MAIL_PROVIDER", ProviderSMTP)),
		SMTPHost:       getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:       getInt("SMTP_PORT", 587),
		SMTPTimeout:    getDuration("SMTP_TIMEOUT", "30s"),
		ResendAPIKey:   getEnv("RESEND_API_KEY", ""),
		RunTimeout:     getDuration("RUN_TIMEOUT", "15m"),
		SkipEmpty:      getBool("SKIP_EMPTY_DIGEST", false),
	}

	if c.SenderEmail == "" {
		return nil, fmt.Errorf("SENDER_EMAIL is required")
	}
	if c.ReceiverEmail == "" {
		return nil, fmt.Errorf("RECEIVER_EMAIL is required")
	}

	switch c.MailProvider {
	case ProviderSMTP:
		if c.SenderPassword == "" {
			return nil, fmt.Errorf("SENDER_PASSWORD is required for the smtp mail provider")
		}
		if c.SMTPHost == "" {
			return nil, fmt.Errorf("SMTP_HOST cannot be empty")
		}
		if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
			return nil, fmt.Errorf("SMTP_PORT must be between 1 and 65535")
		}
	case ProviderResend:
		if c.ResendAPIKey == "" {
			return nil, fmt.Errorf("RESEND_API_KEY is required for the resend mail provider")
		}
	case ProviderLog:
	default:
		return nil, fmt.Errorf("unsupported MAIL_PROVIDER %q (supported: smtp, resend, log)", c.MailProvider)
	}

	if c.RunTimeout <= 0 {
		return nil, fmt.Errorf("RUN_TIMEOUT must be positive")
	}

	return c, nil
}

// LoadPreview builds a Preview config from environment variables.
func LoadPreview() (*Preview, error) {
	common, err := loadCommon()
	if err != nil {
		return nil, err
	}

	c := &Preview{
		Common:   *common,
		BindAddr: getEnv("PREVIEW_BIND_ADDR", "127.0.0.1:8080"),
	}

	return c, nil
}

func loadCommon() (*Common, error) {
	c := &Common{
		NewsAPIKey:       getEnv("NEWS_API_KEY", ""),
		NewsAPIURL:       getEnv("NEWS_API_URL", "https://newsapi.org/v2/everything"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		Topics:           splitAndTrim(getEnv("NEWSLETTER_TOPICS", defaultTopics)),
		ArticlesPerTopic: getInt("NEWSLETTER_ARTICLES_PER_TOPIC", 2),
		HTTPTimeout:      getDuration("HTTP_TIMEOUT", "30s"),
		LLMTimeout:       getDuration("LLM_TIMEOUT", "60s"),
	}

	if c.NewsAPIKey == "" {
		return nil, fmt.Errorf("NEWS_API_KEY is required")
	}
	if c.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if len(c.Topics) == 0 {
		return nil, fmt.Errorf("NEWSLETTER_TOPICS must contain at least one topic")
	}
	if c.ArticlesPerTopic <= 0 {
		return nil, fmt.Errorf("NEWSLETTER_ARTICLES_PER_TOPIC must be positive")
	}
	if c.ArticlesPerTopic > maxArticleCount {
		return nil, fmt.Errorf("NEWSLETTER_ARTICLES_PER_TOPIC cannot exceed %d", maxArticleCount)
	}
	if c.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.LLMTimeout <= 0 {
		return nil, fmt.Errorf("LLM_TIMEOUT must be positive")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
