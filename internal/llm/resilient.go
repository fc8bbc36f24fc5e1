package llm

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospect-cli/internal/metrics"
	"github.com/sells-group/prospect-cli/internal/resilience"
)

// Policy bounds every call made through a Resilient provider.
type Policy struct {
	Timeout time.Duration
	Limiter *rate.Limiter
	Breaker *resilience.CircuitBreaker
	Retry   resilience.RetryConfig
}

// Resilient decorates a Provider with rate limiting, a per-call timeout,
// retry of transient failures, and a circuit breaker.
type Resilient struct {
	inner  Provider
	policy Policy
}

// WithPolicy wraps p. Zero-valued policy fields are skipped.
func WithPolicy(p Provider, policy Policy) *Resilient {
	if policy.Retry.OnRetry == nil {
		policy.Retry.OnRetry = resilience.RetryLogger(p.Name(), "generate")
	}
	return &Resilient{inner: p, policy: policy}
}

// Name implements Provider.
func (r *Resilient) Name() string { return r.inner.Name() }

// Generate implements Provider.
func (r *Resilient) Generate(ctx context.Context, req Request) (*Response, error) {
	name := r.inner.Name()
	start := time.Now()

	resp, err := resilience.DoVal(ctx, r.policy.Retry, func(ctx context.Context) (*Response, error) {
		if r.policy.Limiter != nil {
			if err := r.policy.Limiter.Wait(ctx); err != nil {
				return nil, eris.Wrapf(err, "%s: rate limit wait", name)
			}
		}
		if r.policy.Breaker == nil {
			return r.call(ctx, req)
		}
		return resilience.ExecuteVal(ctx, r.policy.Breaker, func(ctx context.Context) (*Response, error) {
			return r.call(ctx, req)
		})
	})

	metrics.ProviderLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	metrics.ProviderCalls.WithLabelValues(name, outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	metrics.ProviderTokens.WithLabelValues(name, "input").Add(float64(resp.Usage.InputTokens))
	metrics.ProviderTokens.WithLabelValues(name, "output").Add(float64(resp.Usage.OutputTokens))
	zap.L().Debug("llm: generated",
		zap.String("provider", name),
		zap.String("operation", req.Operation),
		zap.Bool("web_search", req.WebSearch),
		zap.Int("sources", len(resp.Sources)),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, nil
}

func (r *Resilient) call(ctx context.Context, req Request) (*Response, error) {
	if r.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.policy.Timeout)
		defer cancel()
	}
	resp, err := r.inner.Generate(ctx, req)
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		return nil, resilience.NewTransientError(eris.Wrapf(err, "%s: call timed out", r.inner.Name()), 0)
	}
	return resp, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case resilience.IsPermanent(err):
		return "fatal"
	case resilience.IsTransient(err):
		return "transient"
	default:
		return "error"
	}
}
