// Package modelout normalizes raw language-model completions into values the
// pipeline can trust. Model output is treated as untrusted input: replies may
// wrap the answer in reasoning markup, fence JSON in markdown, or ignore the
// format instructions entirely. Every entry point degrades to a usable
// fallback instead of failing.
package modelout

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	reasoningOpen  = "<think"
	reasoningClose = "</think>"

	jsonFence = "```json"
	bareFence = "```"
)

var digitRun = regexp.MustCompile(`\d+`)

// StripReasoning removes reasoning markup from a completion. When a close
// marker exists, only the content after the last close marker survives. An
// open marker with no close means the reply was cut off mid-reasoning; the
// last non-empty line is the best candidate for the actual answer, on the
// assumption the model emitted it after it finished thinking. Idempotent:
// stripped text passes through unchanged apart from trimming.
func StripReasoning(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, reasoningOpen) {
		return raw
	}

	if idx := strings.LastIndex(raw, reasoningClose); idx >= 0 {
		return strings.TrimSpace(raw[idx+len(reasoningClose):])
	}

	lines := strings.Split(raw, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// Label extracts a single-line answer (a document or section title) from a
// completion. Anything after the first remaining line is discarded.
func Label(raw string) string {
	cleaned := StripReasoning(raw)
	if idx := strings.IndexByte(cleaned, '\n'); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	return strings.TrimSpace(cleaned)
}

// DecodeError reports that a completion could not be decoded as JSON. Cleaned
// carries the markup-stripped text so callers can run a secondary recovery
// (for example DigitRuns) instead of aborting.
type DecodeError struct {
	Cleaned string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode model output: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeObject parses a completion as JSON into v. It first tries the
// markup-stripped text directly, then retries with one fenced code block
// unwrapped. On failure it returns a *DecodeError; it never panics and never
// surfaces a raw decode fault.
func DecodeObject(raw string, v any) *DecodeError {
	cleaned := StripReasoning(raw)

	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	unfenced := stripFence(cleaned)
	if err := json.Unmarshal([]byte(unfenced), v); err != nil {
		return &DecodeError{Cleaned: cleaned, Err: err}
	}
	return nil
}

// DigitRuns returns every run of consecutive digits in s as int64 values, in
// order of appearance. It is the recovery of last resort for identifier lists
// the model refused to format as JSON.
func DigitRuns(s string) []int64 {
	matches := digitRun.FindAllString(s, -1)
	if len(matches) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// stripFence unwraps the first markdown code fence pair, preferring a
// ```json fence over a bare one. Text without a fence passes through.
func stripFence(s string) string {
	fence := bareFence
	start := strings.Index(s, jsonFence)
	if start >= 0 {
		fence = jsonFence
	} else {
		start = strings.Index(s, bareFence)
		if start < 0 {
			return s
		}
	}

	body := s[start+len(fence):]
	if end := strings.Index(body, bareFence); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}
