package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// GeminiJudge is a thin wrapper around the official genai client.
// It only focuses on the API call itself. Cross-cutting concerns
// (rate limiting, retries, logging) are applied via Middleware.
type GeminiJudge struct {
	cli   *genai.Client
	model string
}

func NewGeminiJudge(ctx context.Context, model string) (*GeminiJudge, error) {
	// The genai client reads GEMINI_API_KEY from the environment.
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiJudge{cli: cli, model: model}, nil
}

func (g *GeminiJudge) Name() string { return "Gemini:" + g.model }

// Version keys the validation cache. Bump semantics: a different model is a
// different judge, so cached verdicts for other models never collide.
func (g *GeminiJudge) Version() string { return "gemini/" + g.model }

func (g *GeminiJudge) Close() error { return nil }

func (g *GeminiJudge) Evaluate(ctx context.Context, req Request) (Verdict, error) {
	full := Prompt(req) + "\n\n[INPUT]\n" + req.Content

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return Verdict{}, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return Verdict{}, NewPermanentError(ErrInvalidVerdict)
	}
	txt := resp.Candidates[0].Content.Parts[0].Text
	return ParseVerdict(json.RawMessage(txt))
}

// ParseVerdict decodes and normalizes a raw verdict payload. Scores are
// clamped to 0..100; unknown severities degrade to "medium" rather than
// dropping the issue.
func ParseVerdict(raw json.RawMessage) (Verdict, error) {
	var v Verdict
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	if err := dec.Decode(&v); err != nil {
		return Verdict{}, NewPermanentError(fmt.Errorf("judge: %w: %v", ErrInvalidVerdict, err))
	}
	v.Score = clampScore(v.Score)
	if v.SelfConfidence == 0 {
		v.SelfConfidence = 50
	}
	v.SelfConfidence = clampScore(v.SelfConfidence)
	for i := range v.Issues {
		switch v.Issues[i].Severity {
		case "low", "medium", "high", "critical":
		default:
			v.Issues[i].Severity = "medium"
		}
		if v.Issues[i].Priority < 1 {
			v.Issues[i].Priority = 5
		}
		if v.Issues[i].Priority > 10 {
			v.Issues[i].Priority = 10
		}
	}
	return v, nil
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
