package llm

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/pkg/anthropic"
	"github.com/sells-group/prospect-cli/pkg/perplexity"
)

type mockAnthropic struct{ mock.Mock }

func (m *mockAnthropic) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

type mockPerplexity struct{ mock.Mock }

func (m *mockPerplexity) ChatCompletion(ctx context.Context, req perplexity.ChatCompletionRequest) (*perplexity.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*perplexity.ChatCompletionResponse), args.Error(1)
}

type funcProvider struct {
	name string
	fn   func(ctx context.Context, req Request) (*Response, error)
}

func (f *funcProvider) Name() string { return f.name }

func (f *funcProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	return f.fn(ctx, req)
}

func TestRequestTurns(t *testing.T) {
	req := Request{Prompt: "find leads"}
	assert.Equal(t, []Message{{Role: "user", Content: "find leads"}}, req.Turns())

	req.Messages = []Message{{Role: "assistant", Content: "Oi"}, {Role: "user", Content: "Olá"}}
	assert.Len(t, req.Turns(), 2)
}

func TestUnauthorized(t *testing.T) {
	err := Unauthorized("gemini", 401, errors.New("API key not valid"))
	assert.True(t, IsUnauthorized(err))
	assert.True(t, resilience.IsPermanent(err))
	assert.False(t, resilience.IsTransient(err))
	assert.Contains(t, err.Error(), "gemini")

	assert.False(t, IsUnauthorized(errors.New("other")))
}

func TestAnthropic_Generate(t *testing.T) {
	client := new(mockAnthropic)
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "claude-test" &&
			req.MaxTokens == 4096 &&
			len(req.System) == 1 && req.System[0].Text == "sys" &&
			len(req.Messages) == 1 && req.Messages[0].Content == "hi"
	})).Return(&anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: "olá"}},
		Usage:   anthropic.TokenUsage{InputTokens: 12, OutputTokens: 3},
	}, nil)

	p := NewAnthropic(client, "claude-test", 0)
	resp, err := p.Generate(context.Background(), Request{System: "sys", Prompt: "hi", WebSearch: true})
	require.NoError(t, err)
	assert.Equal(t, "olá", resp.Text)
	assert.Empty(t, resp.Sources)
	assert.Equal(t, Usage{InputTokens: 12, OutputTokens: 3}, resp.Usage)
	client.AssertExpectations(t)
}

func TestAnthropic_GenerateErrorPassesThrough(t *testing.T) {
	client := new(mockAnthropic)
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	_, err := NewAnthropic(client, "m", 100).Generate(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.False(t, IsUnauthorized(err))
}

func TestPerplexity_Generate(t *testing.T) {
	client := new(mockPerplexity)
	client.On("ChatCompletion", mock.Anything, mock.MatchedBy(func(req perplexity.ChatCompletionRequest) bool {
		return !req.DisableSearch && len(req.Messages) == 2 && req.Messages[0].Role == "system"
	})).Return(&perplexity.ChatCompletionResponse{
		Choices: []perplexity.Choice{{Message: perplexity.Message{Content: "[]"}}},
		SearchResults: []perplexity.SearchResult{
			{Title: "Guia", URL: "https://guia.example"},
			{URL: "https://untitled.example"},
		},
		Usage: perplexity.Usage{PromptTokens: 9, CompletionTokens: 2},
	}, nil)

	resp, err := NewPerplexity(client).Generate(context.Background(), Request{System: "s", Prompt: "p", WebSearch: true})
	require.NoError(t, err)
	assert.Equal(t, "[]", resp.Text)
	assert.Equal(t, []model.GroundingSource{
		{Title: "Guia", URI: "https://guia.example"},
		{Title: "https://untitled.example", URI: "https://untitled.example"},
	}, resp.Sources)
	client.AssertExpectations(t)
}

func TestPerplexity_CitationsFallback(t *testing.T) {
	resp := &perplexity.ChatCompletionResponse{Citations: []string{"https://a.example"}}
	assert.Equal(t, []model.GroundingSource{{Title: "https://a.example", URI: "https://a.example"}}, perplexitySources(resp))
}

func TestPerplexity_ErrorClassification(t *testing.T) {
	tests := []struct {
		status        int
		wantAuth      bool
		wantTransient bool
	}{
		{http.StatusUnauthorized, true, false},
		{http.StatusForbidden, true, false},
		{http.StatusTooManyRequests, false, true},
		{http.StatusBadGateway, false, true},
		{http.StatusBadRequest, false, false},
	}
	for _, tt := range tests {
		client := new(mockPerplexity)
		client.On("ChatCompletion", mock.Anything, mock.Anything).
			Return(nil, &perplexity.APIError{StatusCode: tt.status, Body: "x"})

		_, err := NewPerplexity(client).Generate(context.Background(), Request{Prompt: "p"})
		require.Error(t, err)
		assert.Equal(t, tt.wantAuth, IsUnauthorized(err), tt.status)
		assert.Equal(t, tt.wantTransient, resilience.IsTransient(err), tt.status)
	}
}

func TestGeminiConfig(t *testing.T) {
	cfg := geminiConfig(Request{System: "sys", WebSearch: true, JSON: true, Temperature: Temperature(0.7), MaxTokens: 512})
	require.Len(t, cfg.Tools, 1)
	assert.NotNil(t, cfg.Tools[0].GoogleSearch)
	assert.Empty(t, cfg.ResponseMIMEType, "json mode is not combined with search")
	assert.InDelta(t, 0.7, *cfg.Temperature, 0.0001)
	assert.EqualValues(t, 512, cfg.MaxOutputTokens)
	require.NotNil(t, cfg.SystemInstruction)

	cfg = geminiConfig(Request{JSON: true})
	assert.Empty(t, cfg.Tools)
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	assert.Nil(t, cfg.Temperature)
}

func TestGeminiContents(t *testing.T) {
	contents := geminiContents(Request{Messages: []Message{
		{Role: "assistant", Content: "Oi. Quem é?"},
		{Role: "user", Content: "Sou da agência"},
	}})
	require.Len(t, contents, 2)
	assert.EqualValues(t, "model", contents[0].Role)
	assert.EqualValues(t, "user", contents[1].Role)
}

func TestFromGeminiResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: "```json\n[]"},
				{Text: "\n```"},
			}},
			GroundingMetadata: &genai.GroundingMetadata{GroundingChunks: []*genai.GroundingChunk{
				{Web: &genai.GroundingChunkWeb{URI: "https://maps.example/a", Title: "Padaria A"}},
				{Web: &genai.GroundingChunkWeb{}},
				nil,
			}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 100, CandidatesTokenCount: 40},
	}

	out := fromGeminiResponse(resp)
	assert.Equal(t, "```json\n[]\n```", out.Text)
	assert.Equal(t, []model.GroundingSource{{Title: "Padaria A", URI: "https://maps.example/a"}}, out.Sources)
	assert.Equal(t, Usage{InputTokens: 100, OutputTokens: 40}, out.Usage)

	assert.Empty(t, fromGeminiResponse(nil).Text)
	assert.Empty(t, fromGeminiResponse(&genai.GenerateContentResponse{}).Text)
}

func TestClassifyGeminiError(t *testing.T) {
	assert.True(t, IsUnauthorized(classifyGeminiError(genai.APIError{Code: 400, Message: "API key not valid. Please pass a valid API key.", Status: "INVALID_ARGUMENT"})))
	assert.True(t, IsUnauthorized(classifyGeminiError(genai.APIError{Code: 403, Status: "PERMISSION_DENIED"})))
	assert.True(t, resilience.IsTransient(classifyGeminiError(genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"})))
	assert.True(t, resilience.IsTransient(classifyGeminiError(genai.APIError{Code: 503, Status: "UNAVAILABLE"})))

	plain := classifyGeminiError(errors.New("boom"))
	assert.False(t, IsUnauthorized(plain))
	assert.Contains(t, plain.Error(), "gemini: generate content")
}

func TestResilient_RetriesTransient(t *testing.T) {
	var calls atomic.Int32
	inner := &funcProvider{name: "gemini", fn: func(ctx context.Context, req Request) (*Response, error) {
		if calls.Add(1) < 2 {
			return nil, resilience.NewTransientError(errors.New("503"), 503)
		}
		return &Response{Text: "ok"}, nil
	}}

	p := WithPolicy(inner, Policy{Retry: resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond}})
	resp, err := p.Generate(context.Background(), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "gemini", p.Name())
}

func TestResilient_UnauthorizedNotRetried(t *testing.T) {
	var calls atomic.Int32
	inner := &funcProvider{name: "anthropic", fn: func(ctx context.Context, req Request) (*Response, error) {
		calls.Add(1)
		return nil, Unauthorized("anthropic", 401, errors.New("invalid x-api-key"))
	}}

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{FailureThreshold: 1})
	p := WithPolicy(inner, Policy{
		Retry:   resilience.RetryConfig{MaxAttempts: 5, InitialBackoff: time.Millisecond},
		Breaker: breaker,
	})
	_, err := p.Generate(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, resilience.CircuitClosed, breaker.State())
}

func TestResilient_TimeoutIsTransient(t *testing.T) {
	inner := &funcProvider{name: "gemini", fn: func(ctx context.Context, req Request) (*Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	p := WithPolicy(inner, Policy{
		Timeout: 5 * time.Millisecond,
		Retry:   resilience.RetryConfig{MaxAttempts: 1},
	})
	_, err := p.Generate(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
	assert.Contains(t, err.Error(), "timed out")
}

func TestNew_RequiresCredential(t *testing.T) {
	cfg := &config.Config{}
	_, err := New(context.Background(), cfg, ProviderPerplexity, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROSPECT_PERPLEXITY_KEY")
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), &config.Config{}, "openai", nil)
	require.Error(t, err)
}

func TestNew_BuildsWrappedProviders(t *testing.T) {
	cfg := &config.Config{}
	cfg.Anthropic.Key = "sk-ant"
	cfg.Perplexity.Key = "pplx"
	cfg.LLM.RateLimit = 1
	cfg.LLM.TimeoutSecs = 30

	breakers := resilience.NewServiceBreakers(resilience.DefaultCircuitBreakerConfig())
	for _, name := range []string{ProviderAnthropic, ProviderPerplexity} {
		p, err := New(context.Background(), cfg, name, breakers)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name())
		assert.IsType(t, &Resilient{}, p)
	}
	assert.Len(t, breakers.States(), 2)
}
