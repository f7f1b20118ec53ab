// Package enrich adds optional Claude-generated narrative to computed
// schedule results. Enrichment is advisory only: every failure path
// degrades to templated text derived from the numeric results, and no
// error ever escapes Narrate.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tidwall/gjson"
)

// ErrUnavailable wraps any enrichment failure. Callers inside this package
// use it; callers outside should go through Narrate, which never returns it.
var ErrUnavailable = errors.New("enrichment unavailable")

// DefaultTimeout bounds a single narrative call.
const DefaultTimeout = 30 * time.Second

// Input is the numeric summary handed to the model. Only derived values
// cross this boundary; enrichment can never alter the schedule.
type Input struct {
	ProjectName   string   `json:"project_name"`
	TimelineStart string   `json:"timeline_start"`
	TimelineEnd   string   `json:"timeline_end"`
	Workdays      int      `json:"workdays"`
	TaskCount     int      `json:"task_count"`
	CriticalPath  []string `json:"critical_path"`
	ConflictCount int      `json:"conflict_count"`
	ExpectedDays  float64  `json:"expected_days"`
}

// completeFunc issues one model call and returns the raw text reply.
type completeFunc func(ctx context.Context, system, user string) (string, error)

// Client wraps the Anthropic SDK for narrative generation.
type Client struct {
	complete completeFunc
}

// NewClient creates a narrative client. apiKey defaults to
// ANTHROPIC_API_KEY; model defaults to Claude Sonnet.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	inner := anthropic.NewClient(option.WithAPIKey(apiKey))

	m := anthropic.ModelClaudeSonnet4_5
	if model != "" {
		m = anthropic.Model(model)
	}

	complete := func(ctx context.Context, system, user string) (string, error) {
		resp, err := inner.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     m,
			MaxTokens: int64(1024),
			System: []anthropic.TextBlockParam{
				{Text: system},
			},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
			},
		})
		if err != nil {
			return "", fmt.Errorf("claude API call: %w", err)
		}
		var text string
		for _, block := range resp.Content {
			if block.Type == "text" {
				text += block.Text
			}
		}
		return text, nil
	}

	return &Client{complete: complete}, nil
}

const narrativePrompt = `You are a technical project manager summarising a computed project schedule.

You will receive the numeric results: timeline span, critical path, conflict count, and PERT duration estimate. Produce a short narrative for a status update.

Return JSON with this exact structure:
{"summary": "<2-3 sentence narrative>", "risk": "<one sentence on the main schedule risk>"}

Return ONLY the JSON object. No markdown fences, no commentary outside the JSON.`

// Narrative asks the model for a schedule summary. Returns ErrUnavailable-
// wrapped errors on any failure.
func (c *Client) Narrative(ctx context.Context, in Input) (string, error) {
	user := fmt.Sprintf(
		"Project %q: %d tasks, %s to %s (%d workdays). Critical path: %s. Conflicts: %d. Expected duration: %.1f workdays.",
		in.ProjectName, in.TaskCount, in.TimelineStart, in.TimelineEnd, in.Workdays,
		strings.Join(in.CriticalPath, " -> "), in.ConflictCount, in.ExpectedDays)

	text, err := c.complete(ctx, narrativePrompt, user)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	text = stripJSONFences(text)

	// Tolerant extraction: models sometimes wrap or truncate the JSON.
	// Fall back to the raw reply rather than failing on shape.
	if gjson.Valid(text) {
		summary := gjson.Get(text, "summary").String()
		risk := gjson.Get(text, "risk").String()
		if summary != "" {
			if risk != "" {
				return summary + " Risk: " + risk, nil
			}
			return summary, nil
		}
	}
	if text == "" {
		return "", fmt.Errorf("%w: empty model reply", ErrUnavailable)
	}
	return text, nil
}

// Fallback builds the templated narrative used when enrichment is disabled
// or fails.
func Fallback(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project %s spans %d workdays (%s to %s) across %d tasks.",
		in.ProjectName, in.Workdays, in.TimelineStart, in.TimelineEnd, in.TaskCount)
	if len(in.CriticalPath) > 0 {
		fmt.Fprintf(&b, " The critical path runs %s.", strings.Join(in.CriticalPath, " -> "))
	}
	if in.ConflictCount > 0 {
		fmt.Fprintf(&b, " %d scheduling conflicts need attention.", in.ConflictCount)
	}
	return b.String()
}

// Narrate is the degradation boundary: nil client, timeout, API failure and
// malformed replies all collapse to the templated fallback. The numeric
// schedule is never blocked on this call.
func Narrate(ctx context.Context, c *Client, timeout time.Duration, in Input) string {
	if c == nil {
		return Fallback(in)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := c.Narrative(ctx, in)
	if err != nil {
		return Fallback(in)
	}
	return text
}

// stripJSONFences removes markdown code fences that Claude sometimes adds.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
