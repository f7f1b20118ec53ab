package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func sampleInput() Input {
	return Input{
		ProjectName:   "API Redesign",
		TimelineStart: "2024-01-01",
		TimelineEnd:   "2024-01-19",
		Workdays:      15,
		TaskCount:     6,
		CriticalPath:  []string{"design", "build", "ship"},
		ConflictCount: 2,
		ExpectedDays:  14.5,
	}
}

func fakeClient(reply string, err error) *Client {
	return &Client{complete: func(ctx context.Context, system, user string) (string, error) {
		return reply, err
	}}
}

func TestStripJSONFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"summary":"ok"}`, `{"summary":"ok"}`},
		{"fenced", "```json\n{\"summary\":\"ok\"}\n```", `{"summary":"ok"}`},
		{"fenced no lang", "```\n{\"summary\":\"ok\"}\n```", `{"summary":"ok"}`},
		{"whitespace", "  {\"summary\":\"ok\"}  ", `{"summary":"ok"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripJSONFences(tt.in); got != tt.want {
				t.Errorf("stripJSONFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNarrative_ParsesStructuredReply(t *testing.T) {
	c := fakeClient(`{"summary": "On track for mid January.", "risk": "The build task has no slack."}`, nil)

	got, err := c.Narrative(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "On track for mid January. Risk: The build task has no slack."
	if got != want {
		t.Errorf("narrative = %q, want %q", got, want)
	}
}

func TestNarrative_SummaryWithoutRisk(t *testing.T) {
	c := fakeClient(`{"summary": "On track."}`, nil)

	got, err := c.Narrative(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "On track." {
		t.Errorf("narrative = %q", got)
	}
}

func TestNarrative_FallsBackToRawText(t *testing.T) {
	c := fakeClient("The schedule looks healthy overall.", nil)

	got, err := c.Narrative(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "The schedule looks healthy overall." {
		t.Errorf("narrative = %q", got)
	}
}

func TestNarrative_WrapsAPIError(t *testing.T) {
	c := fakeClient("", errors.New("rate limited"))

	_, err := c.Narrative(context.Background(), sampleInput())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestNarrative_EmptyReplyIsUnavailable(t *testing.T) {
	c := fakeClient("", nil)

	_, err := c.Narrative(context.Background(), sampleInput())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestFallback(t *testing.T) {
	got := Fallback(sampleInput())

	for _, want := range []string{
		"API Redesign",
		"15 workdays",
		"design -> build -> ship",
		"2 scheduling conflicts",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("fallback %q missing %q", got, want)
		}
	}
}

func TestFallback_OmitsEmptySections(t *testing.T) {
	in := sampleInput()
	in.CriticalPath = nil
	in.ConflictCount = 0

	got := Fallback(in)
	if strings.Contains(got, "critical path") {
		t.Errorf("fallback should omit critical path: %q", got)
	}
	if strings.Contains(got, "conflicts") {
		t.Errorf("fallback should omit conflicts: %q", got)
	}
}

func TestNarrate_NilClientDegrades(t *testing.T) {
	in := sampleInput()
	if got := Narrate(context.Background(), nil, DefaultTimeout, in); got != Fallback(in) {
		t.Errorf("nil client should produce fallback, got %q", got)
	}
}

func TestNarrate_FailureDegrades(t *testing.T) {
	in := sampleInput()
	c := fakeClient("", errors.New("connection refused"))

	if got := Narrate(context.Background(), c, time.Second, in); got != Fallback(in) {
		t.Errorf("API failure should produce fallback, got %q", got)
	}
}

func TestNarrate_SuccessPassesThrough(t *testing.T) {
	c := fakeClient(`{"summary": "All good."}`, nil)

	if got := Narrate(context.Background(), c, time.Second, sampleInput()); got != "All good." {
		t.Errorf("narrate = %q, want model summary", got)
	}
}
