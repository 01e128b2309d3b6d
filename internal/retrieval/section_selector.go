package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"docqa/internal/domain"
	"docqa/internal/modelout"
	"docqa/internal/ports"
)

const (
	// SectionSelectCount is how many sections the selector requests per
	// question. The corpus documents are narrow enough that two sections
	// cover a factual question; fewer may survive validation.
	SectionSelectCount = 2

	// TableOfContentsTitle is the reserved title of purely navigational
	// sections. They carry no answerable body text and are excluded both in
	// the prompt and defensively after parsing.
	TableOfContentsTitle = "目录"
)

const sectionSelectPrompt = `You are a retrieval assistant.
Task: from the JSON section listing below, find the %d sections most relevant to the user's question.

Candidate sections (JSON):
%s

Weigh each section's 'title' and 'summary' against the question. Respond with a JSON object holding a single field "ids": the list of numeric ids of the most relevant sections.

Rules:
1. Never return a section whose title is "%s".
2. Return the %d most relevant section ids.
3. Output the JSON object only, with no explanatory text.

Example: {"ids": [3496, 3498]}`

// SectionSelector asks the model for the most relevant section ids within one
// article. Hallucinated ids are an expected condition and are dropped, never
// surfaced as faults.
type SectionSelector struct {
	store     ports.DocumentStore
	completer ports.Completer
	logger    *slog.Logger
}

// NewSectionSelector wires the selector's collaborators.
func NewSectionSelector(store ports.DocumentStore, completer ports.Completer, logger *slog.Logger) *SectionSelector {
	if logger == nil {
		logger = slog.Default()
	}
	return &SectionSelector{store: store, completer: completer, logger: logger}
}

type sectionListing struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Level   int    `json:"level"`
	Summary string `json:"summary"`
}

// Select returns the ids of the sections the model judges most relevant,
// validated against the article's real section set and capped at
// SectionSelectCount, in the model's preference order.
func (s *SectionSelector) Select(ctx context.Context, question string, article domain.Article) ([]int64, error) {
	sections, err := s.store.SectionsByArticleID(ctx, article.ID)
	if err != nil {
		return nil, fmt.Errorf("list sections of %q: %w", article.Title, err)
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("article %q has no sections: %w", article.Title, domain.ErrNoSectionsFound)
	}

	listing := make([]sectionListing, 0, len(sections))
	for _, sec := range sections {
		summary := sec.Summary
		if summary == "" {
			summary = noSummaryPlaceholder
		}
		listing = append(listing, sectionListing{ID: sec.ID, Title: sec.Title, Level: sec.Level, Summary: summary})
	}

	serialized, err := json.MarshalIndent(listing, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize section listing: %w", err)
	}

	raw, err := s.completer.Complete(ctx, ports.CompletionRequest{
		System:   fmt.Sprintf(sectionSelectPrompt, SectionSelectCount, serialized, TableOfContentsTitle, SectionSelectCount),
		User:     question,
		JSONOnly: true,
	})
	if err != nil {
		s.logger.Warn("section selection call failed", "article", article.Title, "error", err)
		return nil, fmt.Errorf("select sections: completion failed (%v): %w", err, domain.ErrNoSectionsFound)
	}

	candidates := parseSectionIDs(raw)
	selected := filterSectionIDs(candidates, sections)
	if len(selected) == 0 {
		s.logger.Warn("no valid section ids in model reply", "article", article.Title, "candidates", candidates)
		return nil, fmt.Errorf("select sections: no valid ids: %w", domain.ErrNoSectionsFound)
	}

	s.logger.Debug("sections selected", "article", article.Title, "ids", selected)
	return selected, nil
}

// parseSectionIDs decodes {"ids": [...]} from the reply, falling back to
// digit-run extraction when the model ignored the JSON instruction.
func parseSectionIDs(raw string) []int64 {
	var out struct {
		IDs []int64 `json:"ids"`
	}
	if err := modelout.DecodeObject(raw, &out); err != nil {
		return modelout.DigitRuns(err.Cleaned)
	}
	return out.IDs
}

// filterSectionIDs keeps candidate ids that exist in the article's section
// set and are not navigation sections, preserving candidate order, deduped,
// capped at SectionSelectCount.
func filterSectionIDs(candidates []int64, sections []domain.Section) []int64 {
	byID := make(map[int64]domain.Section, len(sections))
	for _, sec := range sections {
		byID[sec.ID] = sec
	}

	var selected []int64
	seen := map[int64]struct{}{}
	for _, id := range candidates {
		if len(selected) == SectionSelectCount {
			break
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		sec, ok := byID[id]
		if !ok || sec.Title == TableOfContentsTitle {
			continue
		}
		selected = append(selected, id)
	}
	return selected
}
