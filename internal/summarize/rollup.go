// Package summarize implements the batch rollup that derives section and
// article summaries from stored passage text. It shares the completion
// service and document store with the question pipeline but runs offline,
// article by article.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"docqa/internal/domain"
	"docqa/internal/modelout"
	"docqa/internal/ports"
)

const (
	// MetadataScanLimit bounds how many leading sections are scanned for
	// provenance snippets. Author metadata sits at the front of these
	// documents; scanning further only inflates the prompt.
	MetadataScanLimit = 10

	// MetadataSnippetLimit caps how many provenance snippets feed the
	// whole-article prompt.
	MetadataSnippetLimit = 3
)

// provenanceKeywords flag passages likely to carry author metadata. The
// corpus is Chinese academic reports, so the keywords are the corpus's own.
var provenanceKeywords = []string{
	"作者", "姓名", "学号", "班级", "学校", "指导老师", "导师", "学院", "专业",
}

const sectionPrompt = `Role: you are an academic paper analyst.
Task: read the paper section below and produce a structured section summary.
Requirements:
- Key terms: extract 3-5 terms reflecting the section's core techniques.
- Synopsis: about 150 words covering the section's core argument, proposed method, or experimental findings.
- Data and formulas: if the section contains key formulas or experimental data, mention them in the synopsis.
- Logical role: state the role this section plays in the document's overall structure (background, core algorithm, result validation, and so on).
Section text:
%s`

const articlePrompt = `Role: you are an academic journal editor.
Task: below are the per-section summaries of one paper, possibly preceded by original text fragments that may contain author information. Write a complete document-level summary.
Requirements:
- Basic information: extract and label the author name, student id, class, school, and advisor from the original fragments. For any field not present, write "not found in text".
- Document keywords: the 5-10 most central terms of the whole paper.
- Abstract: about 300 words covering the research background, the problem addressed, the core approach, the experimental validation, and the contribution.
Input:
%s`

// Rollup generates and stores summaries. Re-running it for the same article
// overwrites the stored summaries rather than appending.
type Rollup struct {
	store     ports.DocumentStore
	completer ports.Completer
	logger    *slog.Logger
}

// NewRollup wires the rollup's collaborators.
func NewRollup(store ports.DocumentStore, completer ports.Completer, logger *slog.Logger) *Rollup {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rollup{store: store, completer: completer, logger: logger}
}

// Article summarizes every section of the named article, then derives the
// whole-article summary from the section summaries plus any provenance
// snippets found near the front of the document.
func (r *Rollup) Article(ctx context.Context, title string) error {
	article, found, err := r.store.ArticleByTitle(ctx, title)
	if err != nil {
		return fmt.Errorf("resolve article %q: %w", title, err)
	}
	if !found {
		return fmt.Errorf("summarize: %w", domain.ErrNoDocumentFound)
	}

	sections, err := r.store.SectionsByArticleID(ctx, article.ID)
	if err != nil {
		return fmt.Errorf("list sections of %q: %w", article.Title, err)
	}
	if len(sections) == 0 {
		return fmt.Errorf("summarize %q: %w", article.Title, domain.ErrNoSectionsFound)
	}

	summaries := make([]string, 0, len(sections))
	for _, sec := range sections {
		summary, err := r.summarizeSection(ctx, sec)
		if err != nil {
			return err
		}
		if summary == "" {
			continue
		}
		summaries = append(summaries, fmt.Sprintf("Section: %s\nSummary: %s", sec.Title, summary))
	}

	if len(summaries) == 0 {
		return fmt.Errorf("summarize %q: no section produced a summary: %w", article.Title, domain.ErrContextUnavailable)
	}

	return r.summarizeArticle(ctx, article, sections, summaries)
}

// All summarizes every article that has no stored summary yet.
func (r *Rollup) All(ctx context.Context) error {
	articles, err := r.store.ListArticles(ctx)
	if err != nil {
		return fmt.Errorf("list articles: %w", err)
	}

	for _, art := range articles {
		if art.Summary != "" {
			continue
		}
		r.logger.Info("summarizing article", "article", art.Title)
		if err := r.Article(ctx, art.Title); err != nil {
			return fmt.Errorf("summarize %q: %w", art.Title, err)
		}
	}
	return nil
}

// summarizeSection produces and stores one section summary. Sections without
// passage text are skipped, not failed: a heading with no body is normal.
func (r *Rollup) summarizeSection(ctx context.Context, sec domain.Section) (string, error) {
	text, found, err := r.store.PassageBySectionID(ctx, sec.ID)
	if err != nil {
		return "", fmt.Errorf("fetch passage for section %d: %w", sec.ID, err)
	}
	if !found {
		r.logger.Debug("section has no passage, skipping", "section", sec.Title)
		return "", nil
	}

	raw, err := r.completer.Complete(ctx, ports.CompletionRequest{
		System: fmt.Sprintf(sectionPrompt, text),
	})
	if err != nil {
		return "", fmt.Errorf("summarize section %q: %w", sec.Title, err)
	}

	summary := modelout.StripReasoning(raw)
	if summary == "" {
		r.logger.Warn("empty section summary", "section", sec.Title)
		return "", nil
	}

	if err := r.store.SetSectionSummary(ctx, sec.ID, summary); err != nil {
		return "", fmt.Errorf("store summary for section %d: %w", sec.ID, err)
	}
	return summary, nil
}

func (r *Rollup) summarizeArticle(ctx context.Context, article domain.Article, sections []domain.Section, summaries []string) error {
	snippets, err := r.provenanceSnippets(ctx, sections)
	if err != nil {
		return err
	}

	var input strings.Builder
	if len(snippets) > 0 {
		input.WriteString(strings.Join(snippets, "\n\n"))
		input.WriteString("\n\n")
	}
	input.WriteString("--- Per-section summaries ---\n")
	input.WriteString(strings.Join(summaries, "\n\n"))

	raw, err := r.completer.Complete(ctx, ports.CompletionRequest{
		System: fmt.Sprintf(articlePrompt, input.String()),
	})
	if err != nil {
		return fmt.Errorf("summarize article %q: %w", article.Title, err)
	}

	summary := modelout.StripReasoning(raw)
	if summary == "" {
		return fmt.Errorf("summarize article %q: empty model reply", article.Title)
	}

	if err := r.store.SetArticleSummary(ctx, article.ID, summary); err != nil {
		return fmt.Errorf("store summary for article %d: %w", article.ID, err)
	}

	r.logger.Info("article summary stored", "article", article.Title, "provenance_snippets", len(snippets))
	return nil
}

// provenanceSnippets scans up to MetadataScanLimit leading sections for
// passages containing provenance keywords and collects at most
// MetadataSnippetLimit of them. Both ceilings are hard bounds.
func (r *Rollup) provenanceSnippets(ctx context.Context, sections []domain.Section) ([]string, error) {
	var snippets []string
	for i, sec := range sections {
		if i >= MetadataScanLimit || len(snippets) >= MetadataSnippetLimit {
			break
		}

		text, found, err := r.store.PassageBySectionID(ctx, sec.ID)
		if err != nil {
			return nil, fmt.Errorf("scan section %d for provenance: %w", sec.ID, err)
		}
		if !found || !containsProvenance(text) {
			continue
		}

		r.logger.Debug("provenance snippet found", "section", sec.Title)
		snippets = append(snippets,
			fmt.Sprintf("--- Fragment of section %q (may contain author information) ---\n%s", sec.Title, text))
	}
	return snippets, nil
}

func containsProvenance(text string) bool {
	for _, kw := range provenanceKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
