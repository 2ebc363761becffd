package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/news-briefing/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("NEWS_API_KEY", "news-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("SENDER_EMAIL", "sender@example.com")
	t.Setenv("SENDER_PASSWORD", "app-password")
	t.Setenv("RECEIVER_EMAIL", "receiver@example.com")
}

func clearOptional(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"NEWS_API_URL", "OPENAI_MODEL", "OPENAI_BASE_URL", "NEWSLETTER_TOPICS",
		"NEWSLETTER_ARTICLES_PER_TOPIC", "HTTP_TIMEOUT", "LLM_TIMEOUT",
		"MAIL_PROVIDER", "SMTP_HOST", "SMTP_PORT", "SMTP_TIMEOUT",
		"RESEND_API_KEY", "RUN_TIMEOUT", "SKIP_EMPTY_DIGEST", "PREVIEW_BIND_ADDR",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadNewsletterDefaults(t *testing.T) {
	clearOptional(t)
	setRequired(t)

	cfg, err := config.LoadNewsletter()
	require.NoError(t, err)

	require.Equal(t, "news-key", cfg.NewsAPIKey)
	require.Equal(t, "https://newsapi.org/v2/everything", cfg.NewsAPIURL)
	require.Equal(t, "openai-key", cfg.OpenAIAPIKey)
	require.Equal(t, "gpt-3.5-turbo", cfg.OpenAIModel)
	require.Equal(t, []string{"AI in medicine", "US economic outlook", "NASA Artemis program"}, cfg.Topics)
	require.Equal(t, 2, cfg.ArticlesPerTopic)
	require.Equal(t, config.ProviderSMTP, cfg.MailProvider)
	require.Equal(t, "smtp.gmail.com", cfg.SMTPHost)
	require.Equal(t, 587, cfg.SMTPPort)
	require.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 60*time.Second, cfg.LLMTimeout)
	require.Equal(t, 30*time.Second, cfg.SMTPTimeout)
	require.Equal(t, 15*time.Minute, cfg.RunTimeout)
	require.False(t, cfg.SkipEmpty)
}

func TestLoadNewsletterOverrides(t *testing.T) {
	clearOptional(t)
	setRequired(t)
	t.Setenv("NEWSLETTER_TOPICS", " Go , , Rust ")
	t.Setenv("NEWSLETTER_ARTICLES_PER_TOPIC", "5")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("SMTP_HOST", "mail.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_TIMEOUT", "5s")
	t.Setenv("RUN_TIMEOUT", "2m")
	t.Setenv("SKIP_EMPTY_DIGEST", "true")

	cfg, err := config.LoadNewsletter()
	require.NoError(t, err)

	require.Equal(t, []string{"Go", "Rust"}, cfg.Topics)
	require.Equal(t, 5, cfg.ArticlesPerTopic)
	require.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	require.Equal(t, "mail.example.com", cfg.SMTPHost)
	require.Equal(t, 2525, cfg.SMTPPort)
	require.Equal(t, 5*time.Second, cfg.SMTPTimeout)
	require.Equal(t, 2*time.Minute, cfg.RunTimeout)
	require.True(t, cfg.SkipEmpty)
}

func TestLoadNewsletterMissingCredentials(t *testing.T) {
	for _, key := range []string{"NEWS_API_KEY", "OPENAI_API_KEY", "SENDER_EMAIL", "SENDER_PASSWORD", "RECEIVER_EMAIL"} {
		t.Run(key, func(t *testing.T) {
			clearOptional(t)
			setRequired(t)
			t.Setenv(key, "")

			_, err := config.LoadNewsletter()
			require.Error(t, err)
			require.Contains(t, err.Error(), key)
		})
	}
}

func TestLoadNewsletterProviders(t *testing.T) {
	clearOptional(t)
	setRequired(t)
	t.Setenv("SENDER_PASSWORD", "")

	t.Setenv("MAIL_PROVIDER", "log")
	cfg, err := config.LoadNewsletter()
	require.NoError(t, err)
	require.Equal(t, config.ProviderLog, cfg.MailProvider)

	t.Setenv("MAIL_PROVIDER", "Resend")
	_, err = config.LoadNewsletter()
	require.ErrorContains(t, err, "RESEND_API_KEY")

	t.Setenv("RESEND_API_KEY", "re_123")
	cfg, err = config.LoadNewsletter()
	require.NoError(t, err)
	require.Equal(t, config.ProviderResend, cfg.MailProvider)

	t.Setenv("MAIL_PROVIDER", "carrier-pigeon")
	_, err = config.LoadNewsletter()
	require.ErrorContains(t, err, "MAIL_PROVIDER")
}

func TestLoadNewsletterRejectsBadArticleCount(t *testing.T) {
	clearOptional(t)
	setRequired(t)

	t.Setenv("NEWSLETTER_ARTICLES_PER_TOPIC", "0")
	_, err := config.LoadNewsletter()
	require.Error(t, err)

	t.Setenv("NEWSLETTER_ARTICLES_PER_TOPIC", "101")
	_, err = config.LoadNewsletter()
	require.Error(t, err)
}

func TestLoadPreview(t *testing.T) {
	clearOptional(t)
	t.Setenv("NEWS_API_KEY", "news-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("SENDER_EMAIL", "")
	t.Setenv("PREVIEW_BIND_ADDR", ":9090")

	cfg, err := config.LoadPreview()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.BindAddr)
	require.Equal(t, "news-key", cfg.NewsAPIKey)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BRIEFING_DOTENV_A=from-file\nBRIEFING_DOTENV_B=from-file\n"), 0o600))

	t.Setenv("BRIEFING_DOTENV_A", "from-env")
	t.Setenv("BRIEFING_DOTENV_B", "")
	require.NoError(t, os.Unsetenv("BRIEFING_DOTENV_B"))

	require.NoError(t, config.LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	require.Equal(t, "from-env", os.Getenv("BRIEFING_DOTENV_A"))
	require.Equal(t, "from-file", os.Getenv("BRIEFING_DOTENV_B"))
}
