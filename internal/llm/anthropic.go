package llm

import (
	"context"

	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/pkg/anthropic"
)

// Anthropic calls the Anthropic Messages API. It has no web grounding, so
// search replies carry no sources and rely on the model's own knowledge.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropic wraps an Anthropic client.
func NewAnthropic(client anthropic.Client, modelName string, maxTokens int64) *Anthropic {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &Anthropic{client: client, model: modelName, maxTokens: maxTokens}
}

// Name implements Provider.
func (a *Anthropic) Name() string { return ProviderAnthropic }

// Generate implements Provider.
func (a *Anthropic) Generate(ctx context.Context, req Request) (*Response, error) {
	msgReq := anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		Temperature: req.Temperature,
	}
	if req.MaxTokens > 0 {
		msgReq.MaxTokens = int64(req.MaxTokens)
	}
	if req.System != "" {
		msgReq.System = []anthropic.SystemBlock{{
			Text:         req.System,
			CacheControl: &anthropic.CacheControl{TTL: "5m"},
		}}
	}
	for _, m := range req.Turns() {
		msgReq.Messages = append(msgReq.Messages, anthropic.Message{Role: m.Role, Content: m.Content})
	}

	resp, err := a.client.CreateMessage(ctx, msgReq)
	if err != nil {
		status := anthropic.StatusCode(err)
		if resilience.IsAuthHTTPStatus(status) {
			return nil, Unauthorized(ProviderAnthropic, status, err)
		}
		return nil, resilience.ClassifyHTTPStatus(err, status)
	}

	resp.Usage.LogCost(a.model, req.Operation)
	return &Response{
		Text: resp.Text(),
		Usage: Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}, nil
}
