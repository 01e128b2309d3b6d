package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"docqa/internal/domain"
	"docqa/internal/modelout"
	"docqa/internal/ports"
)

// noSummaryPlaceholder keeps the candidate listing positionally uniform when
// an article has not been summarized yet.
const noSummaryPlaceholder = "no summary available"

const documentSelectPrompt = `You are a document retrieval assistant. Your task is to pick, from the candidate list below, the single document most relevant to the user's question.

Candidate documents, each with a title and a content summary:
%s

Weigh each document's summary against the question and choose the one whose core content matches best.

Rules:
1. You must return exactly one document title.
2. The title must be copied verbatim from the list above, with no changes.
3. Do not use <thinking> tags or other reasoning markup.
4. Do not add numbering, explanations, or any other text; return the bare title only.`

// DocumentSelector asks the model to name the one article most relevant to a
// question, judging by title and summary over the whole corpus.
type DocumentSelector struct {
	store     ports.DocumentStore
	completer ports.Completer
	logger    *slog.Logger
}

// NewDocumentSelector wires the selector's collaborators.
func NewDocumentSelector(store ports.DocumentStore, completer ports.Completer, logger *slog.Logger) *DocumentSelector {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentSelector{store: store, completer: completer, logger: logger}
}

// Select returns the article the model judges most relevant. The model's
// reply is untrusted: it is reduced to a single-line label and resolved
// against the store (exact first, then normalized) before use.
func (s *DocumentSelector) Select(ctx context.Context, question string) (domain.Article, error) {
	articles, err := s.store.ListArticles(ctx)
	if err != nil {
		return domain.Article{}, fmt.Errorf("list articles: %w", err)
	}
	if len(articles) == 0 {
		return domain.Article{}, fmt.Errorf("store holds no articles: %w", domain.ErrNoDocumentFound)
	}

	raw, err := s.completer.Complete(ctx, ports.CompletionRequest{
		System: fmt.Sprintf(documentSelectPrompt, candidateListing(articles)),
		User:   question,
	})
	if err != nil {
		s.logger.Warn("document selection call failed", "error", err)
		return domain.Article{}, fmt.Errorf("select document: completion failed (%v): %w", err, domain.ErrNoDocumentFound)
	}

	title := modelout.Label(raw)
	if title == "" {
		return domain.Article{}, fmt.Errorf("select document: empty reply: %w", domain.ErrNoDocumentFound)
	}

	article, found, err := s.store.ArticleByTitle(ctx, title)
	if err != nil {
		return domain.Article{}, fmt.Errorf("resolve article %q: %w", title, err)
	}
	if !found {
		s.logger.Warn("model returned unknown article title", "title", title)
		return domain.Article{}, fmt.Errorf("select document: unknown title %q: %w", title, domain.ErrNoDocumentFound)
	}

	s.logger.Debug("document selected", "article", article.Title, "id", article.ID)
	return article, nil
}

func candidateListing(articles []domain.Article) string {
	var b strings.Builder
	for _, art := range articles {
		summary := art.Summary
		if summary == "" {
			summary = noSummaryPlaceholder
		}
		fmt.Fprintf(&b, "Title: %s\nSummary: %s\n-------------------\n", art.Title, summary)
	}
	return b.String()
}
