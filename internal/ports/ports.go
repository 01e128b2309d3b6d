package ports

import (
	"context"

	"docqa/internal/domain"
)

// DocumentStore is the read/write-back boundary onto the document corpus. The
// core treats it purely as a query surface and assumes nothing about its
// persistence technology; each call is its own unit of work.
type DocumentStore interface {
	// ListArticles returns every article in insertion order.
	ListArticles(ctx context.Context) ([]domain.Article, error)

	// ArticleByTitle resolves a title exactly first, then with whitespace
	// removed and case folded. found is false when neither matches.
	ArticleByTitle(ctx context.Context, title string) (article domain.Article, found bool, err error)

	// SectionsByArticleID returns the article's sections ordered by id.
	SectionsByArticleID(ctx context.Context, articleID int64) ([]domain.Section, error)

	// PassageBySectionID returns the body text stored for a section. A section
	// legitimately may have none; that is found=false, not an error.
	PassageBySectionID(ctx context.Context, sectionID int64) (text string, found bool, err error)

	// SetSectionSummary overwrites the section's stored summary.
	SetSectionSummary(ctx context.Context, sectionID int64, summary string) error

	// SetArticleSummary overwrites the article's stored summary.
	SetArticleSummary(ctx context.Context, articleID int64, summary string) error
}

// DocumentWriter inserts corpus rows during ingestion. Only the importer
// consumes it; the question pipeline never writes documents.
type DocumentWriter interface {
	InsertArticle(ctx context.Context, title string) (int64, error)
	InsertSection(ctx context.Context, articleID int64, title string, level int) (int64, error)
	InsertPassage(ctx context.Context, sectionID int64, text string) (int64, error)
}

// CompletionRequest carries one round-trip to the language model.
type CompletionRequest struct {
	System string
	User   string
	// JSONOnly asks the backend for a well-formed JSON object. Best-effort
	// only; responses still go through the output parser.
	JSONOnly bool
}

// Completer is the language-model completion service.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
