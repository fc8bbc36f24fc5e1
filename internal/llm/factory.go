package llm

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/pkg/anthropic"
	"github.com/sells-group/prospect-cli/pkg/perplexity"
)

// New builds the named provider from configuration, wrapped in the shared
// call policy. breakers may be nil.
func New(ctx context.Context, cfg *config.Config, name string, breakers *resilience.ServiceBreakers) (Provider, error) {
	key := cfg.ProviderKey(name)
	if key == "" {
		return nil, eris.Errorf("llm: no credential configured for provider %q (set PROSPECT_%s_KEY)", name, envName(name))
	}

	var p Provider
	switch name {
	case ProviderGemini:
		g, err := NewGemini(ctx, key, cfg.Gemini.Model)
		if err != nil {
			return nil, err
		}
		p = g
	case ProviderAnthropic:
		p = NewAnthropic(anthropic.NewClient(key), cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)
	case ProviderPerplexity:
		p = NewPerplexity(perplexity.NewClient(key,
			perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
			perplexity.WithModel(cfg.Perplexity.Model),
		))
	default:
		return nil, eris.Errorf("llm: unknown provider %q", name)
	}

	policy := Policy{
		Timeout: time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
		Retry:   resilience.RetryFromConfig(cfg.LLM.RetryAttempts),
	}
	if cfg.LLM.RateLimit > 0 {
		policy.Limiter = rate.NewLimiter(rate.Limit(cfg.LLM.RateLimit), 1)
	}
	if breakers != nil {
		policy.Breaker = breakers.Get(name)
	}
	return WithPolicy(p, policy), nil
}

func envName(provider string) string {
	switch provider {
	case ProviderGemini:
		return "GEMINI"
	case ProviderAnthropic:
		return "ANTHROPIC"
	case ProviderPerplexity:
		return "PERPLEXITY"
	default:
		return "<PROVIDER>"
	}
}
