package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

var knownProviders = map[string]bool{
	"gemini":     true,
	"anthropic":  true,
	"perplexity": true,
}

// Validate checks that the settings required by the given command mode are
// present. Modes: "search", "coach", "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "search":
		errs = append(errs, c.validateProvider("llm.search_provider", c.LLM.SearchProvider)...)
		errs = append(errs, c.validateSearch()...)
	case "coach":
		errs = append(errs, c.validateProvider("llm.coach_provider", c.LLM.CoachProvider)...)
	case "serve":
		errs = append(errs, c.validateProvider("llm.search_provider", c.LLM.SearchProvider)...)
		errs = append(errs, c.validateProvider("llm.coach_provider", c.LLM.CoachProvider)...)
		errs = append(errs, c.validateSearch()...)
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Store.Driver != "sqlite" && c.Store.Driver != "postgres" {
		errs = append(errs, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
	}

	if len(errs) > 0 {
		return eris.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateProvider(key, provider string) []string {
	if !knownProviders[provider] {
		return []string{fmt.Sprintf("%s must be one of gemini, anthropic, perplexity, got %q", key, provider)}
	}
	if c.ProviderKey(provider) == "" {
		return []string{fmt.Sprintf("%s.key is required", provider)}
	}
	return nil
}

func (c *Config) validateSearch() []string {
	var errs []string
	if c.Search.MaxAttempts < 1 || c.Search.MaxAttempts > 10 {
		errs = append(errs, "search.max_attempts must be between 1 and 10")
	}
	if c.Search.OverRequest < 1 || c.Search.OverRequest > 5 {
		errs = append(errs, "search.over_request must be between 1 and 5")
	}
	if c.Search.FanOut < 1 || c.Search.FanOut > 5 {
		errs = append(errs, "search.fan_out must be between 1 and 5")
	}
	return errs
}
