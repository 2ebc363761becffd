package summarizer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/DeafMist/news-briefing/internal/logger"
	"github.com/DeafMist/news-briefing/internal/summarizer"
)

type fakeModel struct {
	calls    int
	messages []llms.MessageContent
	resp     *llms.ContentResponse
	err      error
	block    bool
}

var _ llms.Model = (*fakeModel)(nil)

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	f.messages = messages
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.resp, f.err
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func reply(text string) *llms.ContentResponse {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: text}}}
}

func textOf(t *testing.T, msg llms.MessageContent) string {
	t.Helper()
	require.Len(t, msg.Parts, 1)
	part, ok := msg.Parts[0].(llms.TextContent)
	require.True(t, ok)
	return part.Text
}

func TestSummarizeEmptyInputSkipsModel(t *testing.T) {
	model := &fakeModel{resp: reply("unused")}
	svc := summarizer.NewService(model, time.Second, logger.Discard())

	for _, in := range []string{"", "   \n"} {
		got := svc.Summarize(context.Background(), in)
		require.Equal(t, summarizer.NoContentSummary, got.Text)
		require.ErrorIs(t, got.Err, summarizer.ErrNoContent)
	}
	require.Zero(t, model.calls)
}

func TestSummarizeSendsInstructionAndTrims(t *testing.T) {
	model := &fakeModel{resp: reply("  A short paragraph.\n")}
	svc := summarizer.NewService(model, time.Second, logger.Discard())

	got := svc.Summarize(context.Background(), "c1")
	require.NoError(t, got.Err)
	require.Equal(t, "A short paragraph.", got.Text)

	require.Equal(t, 1, model.calls)
	require.Len(t, model.messages, 2)
	require.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	require.Contains(t, textOf(t, model.messages[0]), "one concise paragraph (3-4 sentences)")
	require.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
	require.Equal(t, "c1", textOf(t, model.messages[1]))
}

func TestSummarizeFailuresUsePlaceholder(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
	}{
		{name: "api error", model: &fakeModel{err: errors.New("401 invalid api key")}},
		{name: "no choices", model: &fakeModel{resp: &llms.ContentResponse{}}},
		{name: "nil response", model: &fakeModel{}},
		{name: "blank completion", model: &fakeModel{resp: reply("  ")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := summarizer.NewService(tt.model, time.Second, logger.Discard())
			got := svc.Summarize(context.Background(), "some text")
			require.Equal(t, summarizer.FailedSummary, got.Text)
			require.ErrorIs(t, got.Err, summarizer.ErrCompletion)
			require.Equal(t, 1, tt.model.calls)
		})
	}
}

func TestSummarizeTimeout(t *testing.T) {
	model := &fakeModel{block: true}
	svc := summarizer.NewService(model, 10*time.Millisecond, logger.Discard())

	got := svc.Summarize(context.Background(), "slow text")
	require.Equal(t, summarizer.FailedSummary, got.Text)
	require.ErrorIs(t, got.Err, summarizer.ErrCompletion)
	require.ErrorIs(t, got.Err, context.DeadlineExceeded)
}

func TestSummarizeNilModel(t *testing.T) {
	svc := summarizer.NewService(nil, 0, nil)
	got := svc.Summarize(context.Background(), "text")
	require.Equal(t, summarizer.FailedSummary, got.Text)
	require.ErrorIs(t, got.Err, summarizer.ErrCompletion)
}

func TestNewOpenAIModelRequiresKey(t *testing.T) {
	_, err := summarizer.NewOpenAIModel(summarizer.OpenAIConfig{})
	require.Error(t, err)

	model, err := summarizer.NewOpenAIModel(summarizer.OpenAIConfig{APIKey: "sk-test", Model: "gpt-3.5-turbo"})
	require.NoError(t, err)
	require.NotNil(t, model)
}
