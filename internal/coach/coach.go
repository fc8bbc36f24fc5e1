// Package coach generates sales coaching content: cold messages, audits,
// strategy insights, follow-up cadences and objection roleplay. Every tool
// degrades to a built-in Portuguese reply when the provider fails, except
// for a rejected credential which is returned to the caller.
package coach

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/metrics"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/phone"
)

// PitchTemperature favours variety between messages.
const PitchTemperature = 1.5

var (
	// ErrServiceNotConfigured is returned by tools that need a service description.
	ErrServiceNotConfigured = eris.New("coach: service not configured")
	// ErrUnknownProfile is returned for an unknown roleplay persona.
	ErrUnknownProfile = eris.New("coach: unknown roleplay profile")
	// ErrNoTurn is returned when the roleplay history does not end with a
	// salesperson message.
	ErrNoTurn = eris.New("coach: roleplay history must end with a user message")
)

// Coach runs the coaching tools against one provider.
type Coach struct {
	provider llm.Provider

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Coach.
type Option func(*Coach)

// WithRand sets the source used to pick pitch strategies.
func WithRand(r *rand.Rand) Option {
	return func(c *Coach) {
		if r != nil {
			c.rng = r
		}
	}
}

// New creates a Coach.
func New(p llm.Provider, opts ...Option) *Coach {
	c := &Coach{
		provider: p,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Pitch writes a cold message for lead. Without a configured service it
// returns a generic greeting without calling the provider.
func (c *Coach) Pitch(ctx context.Context, lead model.Lead, svc *model.ServiceContext) (string, error) {
	if !svc.Configured() {
		return genericPitch(lead), nil
	}
	text, err := c.generate(ctx, "pitch", llm.Request{
		Prompt:      pitchPrompt(lead, svc, c.strategy()),
		Temperature: llm.Temperature(PitchTemperature),
	})
	if err != nil {
		return "", err
	}
	if text == "" {
		return fallbackPitch(lead), nil
	}
	return text, nil
}

// PitchAll writes cold messages for every lead with a usable phone number,
// keyed by lead ID. At most concurrency calls run at once.
func (c *Coach) PitchAll(ctx context.Context, leads []model.Lead, svc *model.ServiceContext, concurrency int) (map[string]string, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	out := make(map[string]string, len(leads))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, lead := range leads {
		if _, ok := phone.Normalize(lead.Phone); !ok {
			zap.L().Debug("coach: skipping lead without phone", zap.String("lead", lead.Name))
			continue
		}
		g.Go(func() error {
			msg, err := c.Pitch(gctx, lead, svc)
			if err != nil {
				return err
			}
			mu.Lock()
			out[lead.ID] = msg
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "coach: pitch all")
	}
	return out, nil
}

// Audit writes a three-point technical audit of lead's digital presence.
func (c *Coach) Audit(ctx context.Context, lead model.Lead, svc *model.ServiceContext) (string, error) {
	text, err := c.generate(ctx, "audit", llm.Request{Prompt: auditPrompt(lead, svc)})
	if err != nil {
		return "", err
	}
	if text == "" {
		return fallbackAudit, nil
	}
	return text, nil
}

// Insights recommends a niche and ticket for a service.
func (c *Coach) Insights(ctx context.Context, serviceName, description string) (*model.ServiceInsights, error) {
	if strings.TrimSpace(serviceName) == "" {
		return nil, ErrServiceNotConfigured
	}
	text, err := c.generate(ctx, "insights", llm.Request{
		Prompt: insightsPrompt(serviceName, description),
		JSON:   true,
	})
	if err != nil {
		return nil, err
	}

	out, ok := decodeJSON(text, func(in model.ServiceInsights) bool { return in.RecommendedNiche != "" })
	if !ok {
		c.fellBack("insights", nil)
		return fallbackInsights(), nil
	}
	return &out, nil
}

// Sequence designs a five-touch follow-up cadence for the service.
func (c *Coach) Sequence(ctx context.Context, svc *model.ServiceContext) ([]model.SequenceStep, error) {
	if !svc.Configured() {
		return nil, ErrServiceNotConfigured
	}
	text, err := c.generate(ctx, "sequence", llm.Request{
		Prompt: sequencePrompt(svc),
		JSON:   true,
	})
	if err != nil {
		return nil, err
	}

	steps, ok := decodeJSON(text, func(s []model.SequenceStep) bool { return len(s) > 0 })
	if !ok {
		c.fellBack("sequence", nil)
		return fallbackSequence(), nil
	}
	return steps, nil
}

// OpeningLine is the prospect's first message in every roleplay.
func OpeningLine() model.RoleplayMessage { return openingLine }

// Roleplay returns the simulated prospect's reply to the last salesperson
// message in history, with feedback and a 0-10 score for that message.
func (c *Coach) Roleplay(ctx context.Context, profile model.RoleplayProfile, history []model.RoleplayMessage, svc *model.ServiceContext) (model.RoleplayMessage, error) {
	if !profile.Valid() {
		return model.RoleplayMessage{}, eris.Wrapf(ErrUnknownProfile, "%q", profile)
	}
	if len(history) == 0 || history[len(history)-1].Sender != model.SenderUser || strings.TrimSpace(history[len(history)-1].Text) == "" {
		return model.RoleplayMessage{}, ErrNoTurn
	}

	text, err := c.generate(ctx, "roleplay", llm.Request{
		Prompt: roleplayPrompt(profile, history, svc),
		JSON:   true,
	})
	if err != nil {
		return model.RoleplayMessage{}, err
	}

	turn, ok := decodeJSON(text, func(t roleplayTurn) bool { return strings.TrimSpace(t.Text) != "" })
	if !ok {
		c.fellBack("roleplay", nil)
		return fallbackRoleplay, nil
	}
	return model.RoleplayMessage{
		Sender:   model.SenderAI,
		Text:     strings.TrimSpace(turn.Text),
		Feedback: strings.TrimSpace(turn.Feedback),
		Score:    clampScore(turn.Score),
	}, nil
}

// generate calls the provider and returns the trimmed reply. Provider
// failures other than a rejected credential are logged and yield "", so the
// caller serves its fallback.
func (c *Coach) generate(ctx context.Context, tool string, req llm.Request) (string, error) {
	req.Operation = tool
	resp, err := c.provider.Generate(ctx, req)
	if err != nil {
		if llm.IsUnauthorized(err) {
			return "", eris.Wrapf(err, "coach: %s", tool)
		}
		if ctx.Err() != nil {
			return "", eris.Wrapf(ctx.Err(), "coach: %s", tool)
		}
		c.fellBack(tool, err)
		return "", nil
	}
	if resp == nil {
		c.fellBack(tool, nil)
		return "", nil
	}
	return strings.TrimSpace(resp.Text), nil
}

func (c *Coach) fellBack(tool string, err error) {
	metrics.CoachFallbacks.WithLabelValues(tool).Inc()
	zap.L().Warn("coach: serving fallback", zap.String("tool", tool), zap.Error(err))
}

func (c *Coach) strategy() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pitchStrategies[c.rng.IntN(len(pitchStrategies))]
}

func clampScore(s float64) int {
	switch {
	case s < 0:
		return 0
	case s > 10:
		return 10
	default:
		return int(s + 0.5)
	}
}

type roleplayTurn struct {
	Text     string  `json:"text"`
	Feedback string  `json:"feedback"`
	Score    float64 `json:"score"`
}

// decodeJSON returns the first JSON value in text that decodes into T and
// passes valid. Fences and surrounding prose are tolerated.
func decodeJSON[T any](text string, valid func(T) bool) (T, bool) {
	var out T
	ok := llm.DecodeReply(text, func(raw json.RawMessage) bool {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil || !valid(v) {
			return false
		}
		out = v
		return true
	})
	return out, ok
}
