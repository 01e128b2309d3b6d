package modelout

import (
	"testing"
)

func TestStripReasoningClosedMarker(t *testing.T) {
	t.Parallel()

	raw := "<think>irrelevant chain of thought</think>\nArticleX\nextra line"
	got := StripReasoning(raw)
	if got != "ArticleX\nextra line" {
		t.Fatalf("unexpected stripped text: %q", got)
	}

	if Label(raw) != "ArticleX" {
		t.Fatalf("expected label ArticleX, got %q", Label(raw))
	}
}

func TestStripReasoningUnclosedMarkerFallsBackToLastLine(t *testing.T) {
	t.Parallel()

	raw := "<think>still reasoning\nmore reasoning\nFinal Answer"
	if got := StripReasoning(raw); got != "Final Answer" {
		t.Fatalf("expected last non-empty line, got %q", got)
	}
}

func TestStripReasoningNestedMarkersKeepLastClose(t *testing.T) {
	t.Parallel()

	raw := "<think>a</think>wrong<think>b</think>right"
	if got := StripReasoning(raw); got != "right" {
		t.Fatalf("expected content after last close marker, got %q", got)
	}
}

func TestStripReasoningIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"<think>x</think>\nTitle A\nrest",
		"plain answer with no markup",
		"<think>never closed\nlast line",
	}

	for _, in := range inputs {
		once := StripReasoning(in)
		twice := StripReasoning(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestLabelKeepsFirstLineOnly(t *testing.T) {
	t.Parallel()

	if got := Label("Title One\nTitle Two\nTitle Three"); got != "Title One" {
		t.Fatalf("expected first line, got %q", got)
	}
}

func TestDecodeObjectDirectJSON(t *testing.T) {
	t.Parallel()

	var out struct {
		IDs []int64 `json:"ids"`
	}
	if err := DecodeObject(`{"ids": [5, 7]}`, &out); err != nil {
		t.Fatalf("DecodeObject error: %v", err)
	}
	if len(out.IDs) != 2 || out.IDs[0] != 5 || out.IDs[1] != 7 {
		t.Fatalf("unexpected ids: %v", out.IDs)
	}
}

func TestDecodeObjectFencedJSON(t *testing.T) {
	t.Parallel()

	raw := "```json\n{\"ids\":[5,7]}\n```"
	var out struct {
		IDs []int64 `json:"ids"`
	}
	if err := DecodeObject(raw, &out); err != nil {
		t.Fatalf("DecodeObject error: %v", err)
	}
	if len(out.IDs) != 2 || out.IDs[0] != 5 || out.IDs[1] != 7 {
		t.Fatalf("unexpected ids: %v", out.IDs)
	}
}

func TestDecodeObjectBareFenceAfterReasoning(t *testing.T) {
	t.Parallel()

	raw := "<think>pick 3 and 9</think>\n```\n{\"ids\":[3,9]}\n```"
	var out struct {
		IDs []int64 `json:"ids"`
	}
	if err := DecodeObject(raw, &out); err != nil {
		t.Fatalf("DecodeObject error: %v", err)
	}
	if len(out.IDs) != 2 || out.IDs[0] != 3 || out.IDs[1] != 9 {
		t.Fatalf("unexpected ids: %v", out.IDs)
	}
}

func TestDecodeObjectFailureCarriesCleanedText(t *testing.T) {
	t.Parallel()

	raw := "<think>hmm</think>\nThe relevant sections are 12 and 48."
	var out struct {
		IDs []int64 `json:"ids"`
	}
	err := DecodeObject(raw, &out)
	if err == nil {
		t.Fatal("expected decode error for prose reply")
	}
	if err.Cleaned != "The relevant sections are 12 and 48." {
		t.Fatalf("unexpected cleaned text: %q", err.Cleaned)
	}

	ids := DigitRuns(err.Cleaned)
	if len(ids) != 2 || ids[0] != 12 || ids[1] != 48 {
		t.Fatalf("unexpected recovered ids: %v", ids)
	}
}

func TestDigitRunsEmpty(t *testing.T) {
	t.Parallel()

	if ids := DigitRuns("no identifiers here"); ids != nil {
		t.Fatalf("expected nil, got %v", ids)
	}
}
