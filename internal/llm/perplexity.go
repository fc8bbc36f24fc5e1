package llm

import (
	"context"
	"errors"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/pkg/perplexity"
)

// Perplexity calls the Perplexity Sonar API. It always searches the web
// unless the request opts out; citations become sources.
type Perplexity struct {
	client perplexity.Client
}

// NewPerplexity wraps a Perplexity client.
func NewPerplexity(client perplexity.Client) *Perplexity {
	return &Perplexity{client: client}
}

// Name implements Provider.
func (p *Perplexity) Name() string { return ProviderPerplexity }

// Generate implements Provider.
func (p *Perplexity) Generate(ctx context.Context, req Request) (*Response, error) {
	chat := perplexity.ChatCompletionRequest{
		Temperature:   req.Temperature,
		DisableSearch: !req.WebSearch,
	}
	if req.MaxTokens > 0 {
		n := req.MaxTokens
		chat.MaxTokens = &n
	}
	if req.System != "" {
		chat.Messages = append(chat.Messages, perplexity.Message{Role: "system", Content: req.System})
	}
	for _, m := range req.Turns() {
		chat.Messages = append(chat.Messages, perplexity.Message{Role: m.Role, Content: m.Content})
	}

	resp, err := p.client.ChatCompletion(ctx, chat)
	if err != nil {
		var apiErr *perplexity.APIError
		if errors.As(err, &apiErr) {
			if resilience.IsAuthHTTPStatus(apiErr.StatusCode) {
				return nil, Unauthorized(ProviderPerplexity, apiErr.StatusCode, err)
			}
			return nil, resilience.ClassifyHTTPStatus(err, apiErr.StatusCode)
		}
		return nil, err
	}

	return &Response{
		Text:    resp.Text(),
		Sources: perplexitySources(resp),
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

// perplexitySources prefers titled search results and falls back to bare
// citation URLs.
func perplexitySources(resp *perplexity.ChatCompletionResponse) []model.GroundingSource {
	if len(resp.SearchResults) > 0 {
		out := make([]model.GroundingSource, 0, len(resp.SearchResults))
		for _, r := range resp.SearchResults {
			title := r.Title
			if title == "" {
				title = r.URL
			}
			out = append(out, model.GroundingSource{Title: title, URI: r.URL})
		}
		return out
	}
	out := make([]model.GroundingSource, 0, len(resp.Citations))
	for _, c := range resp.Citations {
		out = append(out, model.GroundingSource{Title: c, URI: c})
	}
	return out
}
