package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/resilience"
)

// Gemini calls Google Gemini through the genai SDK. Web search requests
// enable the Google Search tool and surface its grounding chunks as sources.
type Gemini struct {
	models *genai.Models
	model  string
}

// NewGemini creates a Gemini provider for the Gemini Developer API.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, eris.New("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}
	return &Gemini{models: client.Models, model: modelName}, nil
}

// Name implements Provider.
func (g *Gemini) Name() string { return ProviderGemini }

// Generate implements Provider.
func (g *Gemini) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, geminiContents(req), geminiConfig(req))
	if err != nil {
		return nil, classifyGeminiError(err)
	}
	return fromGeminiResponse(resp), nil
}

func geminiContents(req Request) []*genai.Content {
	turns := req.Turns()
	out := make([]*genai.Content, 0, len(turns))
	for _, m := range turns {
		role := genai.RoleUser
		if m.Role == "assistant" {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(m.Content, genai.Role(role)))
	}
	return out
}

func geminiConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Temperature != nil {
		t := float32(*req.Temperature)
		cfg.Temperature = &t
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.WebSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	} else if req.JSON {
		// Controlled JSON output cannot be combined with the search tool.
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}

func fromGeminiResponse(resp *genai.GenerateContentResponse) *Response {
	out := &Response{}
	if resp == nil {
		return out
	}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return out
	}

	cand := resp.Candidates[0]
	if cand.Content != nil {
		var b strings.Builder
		for _, p := range cand.Content.Parts {
			if p != nil && !p.Thought {
				b.WriteString(p.Text)
			}
		}
		out.Text = b.String()
	}
	if cand.GroundingMetadata != nil {
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			out.Sources = append(out.Sources, model.GroundingSource{
				Title: chunk.Web.Title,
				URI:   chunk.Web.URI,
			})
		}
	}
	return out
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		wrapped := eris.Wrapf(err, "gemini: generate content (%s)", apiErr.Status)
		if apiErr.Code == 400 && strings.Contains(strings.ToUpper(apiErr.Message), "API KEY") {
			return Unauthorized(ProviderGemini, apiErr.Code, err)
		}
		if resilience.IsAuthHTTPStatus(apiErr.Code) {
			return Unauthorized(ProviderGemini, apiErr.Code, err)
		}
		return resilience.ClassifyHTTPStatus(wrapped, apiErr.Code)
	}
	return eris.Wrap(err, "gemini: generate content")
}
