package main

import (
	"context"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/coach"
	"github.com/sells-group/prospect-cli/internal/guard"
	"github.com/sells-group/prospect-cli/internal/leadgen"
	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/phone"
	"github.com/sells-group/prospect-cli/internal/pipeline"
	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/internal/store"
)

// appEnv holds the long-lived dependencies of a command.
type appEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
	Coach    *coach.Coach
	guard    guard.Guard
}

// Close releases the store and guard connections.
func (e *appEnv) Close() {
	if c, ok := e.guard.(io.Closer); ok {
		_ = c.Close()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	return st, nil
}

// initEnv builds the dependencies for mode ("search", "coach" or "serve").
// The searcher is built for search and serve, the coach for coach and serve.
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	env := &appEnv{Store: st}

	breakers := resilience.NewServiceBreakers(resilience.CircuitBreakerConfig{
		FailureThreshold: cfg.LLM.BreakerFails,
		ResetTimeout:     time.Duration(cfg.LLM.BreakerResetS) * time.Second,
	})

	var searcher *leadgen.Searcher
	if mode == "search" || mode == "serve" {
		p, err := llm.New(ctx, cfg, cfg.LLM.SearchProvider, breakers)
		if err != nil {
			env.Close()
			return nil, err
		}
		opts, err := leadgen.OptionsFromConfig(cfg.Search)
		if err != nil {
			env.Close()
			return nil, err
		}
		searcher = leadgen.NewSearcher(p, opts...)
	}

	if mode == "coach" || mode == "serve" {
		p, err := llm.New(ctx, cfg, cfg.LLM.CoachProvider, breakers)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.Coach = coach.New(p)
	}

	g, err := guard.New(cfg.Redis.URL)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.guard = g
	if cfg.Redis.URL != "" {
		zap.L().Info("using redis submission guard")
	}

	env.Pipeline = pipeline.New(st, searcher, g, time.Duration(cfg.Search.GuardTTLSecs)*time.Second)
	return env, nil
}

// allLeads selects every saved lead for whole-pipeline summaries.
var allLeads = store.LeadFilter{Limit: 100_000}

// storePipeline builds a pipeline for commands that only work on saved
// leads and never search.
func storePipeline(st store.Store) *pipeline.Pipeline {
	return pipeline.New(st, nil, nil, 0)
}

// region is the configured dialing rule for WhatsApp links.
func region() phone.Region {
	return phone.Region{CountryCode: cfg.Phone.CountryCode, LocalLengths: cfg.Phone.LocalLengths}
}
