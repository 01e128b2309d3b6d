package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode"

	sq "github.com/Masterminds/squirrel"

	"docqa/internal/domain"
	"docqa/internal/ports"
)

// PostgresStore exposes the document corpus stored in Postgres. Reads serve
// the question pipeline; summary write-backs serve the rollup; inserts serve
// the importer. Every method is its own unit of work.
type PostgresStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var (
	_ ports.DocumentStore  = (*PostgresStore)(nil)
	_ ports.DocumentWriter = (*PostgresStore)(nil)
)

// NewPostgresStore wires a sql.DB implementation.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureSchema creates the corpus tables when they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS article (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL UNIQUE,
			summary TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS section (
			id BIGSERIAL PRIMARY KEY,
			article_id BIGINT NOT NULL REFERENCES article(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			level INT NOT NULL,
			summary TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS passage (
			id BIGSERIAL PRIMARY KEY,
			section_id BIGINT NOT NULL REFERENCES section(id) ON DELETE CASCADE,
			text_content TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// ListArticles returns every article ordered by id.
func (s *PostgresStore) ListArticles(ctx context.Context) ([]domain.Article, error) {
	query, args, err := s.builder.
		Select("id", "title", "summary").
		From("article").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build articles query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var (
			art     domain.Article
			summary sql.NullString
		)
		if err := rows.Scan(&art.ID, &art.Title, &summary); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		art.Summary = summary.String
		articles = append(articles, art)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return articles, nil
}

// ArticleByTitle resolves a title exactly first. When that misses, it falls
// back to matching with all whitespace removed and case folded, because model
// replies routinely reflow spacing inside long titles.
func (s *PostgresStore) ArticleByTitle(ctx context.Context, title string) (domain.Article, bool, error) {
	query, args, err := s.builder.
		Select("id", "title", "summary").
		From("article").
		Where(sq.Eq{"title": title}).
		ToSql()
	if err != nil {
		return domain.Article{}, false, fmt.Errorf("build article query: %w", err)
	}

	var (
		art     domain.Article
		summary sql.NullString
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&art.ID, &art.Title, &summary)
	switch {
	case err == nil:
		art.Summary = summary.String
		return art, true, nil
	case !errors.Is(err, sql.ErrNoRows):
		return domain.Article{}, false, fmt.Errorf("query article by title: %w", err)
	}

	articles, err := s.ListArticles(ctx)
	if err != nil {
		return domain.Article{}, false, err
	}

	want := NormalizeTitle(title)
	for _, art := range articles {
		if NormalizeTitle(art.Title) == want {
			return art, true, nil
		}
	}

	return domain.Article{}, false, nil
}

// SectionsByArticleID returns the article's sections ordered by id.
func (s *PostgresStore) SectionsByArticleID(ctx context.Context, articleID int64) ([]domain.Section, error) {
	query, args, err := s.builder.
		Select("id", "article_id", "title", "level", "summary").
		From("section").
		Where(sq.Eq{"article_id": articleID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sections query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()

	var sections []domain.Section
	for rows.Next() {
		var (
			sec     domain.Section
			summary sql.NullString
		)
		if err := rows.Scan(&sec.ID, &sec.ArticleID, &sec.Title, &sec.Level, &summary); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sec.Summary = summary.String
		sections = append(sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return sections, nil
}

// PassageBySectionID returns the body text for a section, found=false when
// the section has no stored passage.
func (s *PostgresStore) PassageBySectionID(ctx context.Context, sectionID int64) (string, bool, error) {
	query, args, err := s.builder.
		Select("text_content").
		From("passage").
		Where(sq.Eq{"section_id": sectionID}).
		OrderBy("id").
		Limit(1).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build passage query: %w", err)
	}

	var text sql.NullString
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&text)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("query passage: %w", err)
	case !text.Valid || text.String == "":
		return "", false, nil
	}

	return text.String, true, nil
}

// SetSectionSummary overwrites the section's summary.
func (s *PostgresStore) SetSectionSummary(ctx context.Context, sectionID int64, summary string) error {
	query, args, err := s.builder.
		Update("section").
		Set("summary", summary).
		Where(sq.Eq{"id": sectionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build section summary update: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update section summary: %w", err)
	}
	return nil
}

// SetArticleSummary overwrites the article's summary.
func (s *PostgresStore) SetArticleSummary(ctx context.Context, articleID int64, summary string) error {
	query, args, err := s.builder.
		Update("article").
		Set("summary", summary).
		Where(sq.Eq{"id": articleID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build article summary update: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update article summary: %w", err)
	}
	return nil
}

// InsertArticle creates an article row and returns its id.
func (s *PostgresStore) InsertArticle(ctx context.Context, title string) (int64, error) {
	query, args, err := s.builder.
		Insert("article").
		Columns("title").
		Values(title).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build article insert: %w", err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert article: %w", err)
	}
	return id, nil
}

// InsertSection creates a section row and returns its id.
func (s *PostgresStore) InsertSection(ctx context.Context, articleID int64, title string, level int) (int64, error) {
	query, args, err := s.builder.
		Insert("section").
		Columns("article_id", "title", "level").
		Values(articleID, title, level).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build section insert: %w", err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert section: %w", err)
	}
	return id, nil
}

// InsertPassage creates a passage row and returns its id.
func (s *PostgresStore) InsertPassage(ctx context.Context, sectionID int64, text string) (int64, error) {
	query, args, err := s.builder.
		Insert("passage").
		Columns("section_id", "text_content").
		Values(sectionID, text).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build passage insert: %w", err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert passage: %w", err)
	}
	return id, nil
}

// NormalizeTitle removes all whitespace and lowercases a title for fuzzy
// comparison against model output.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
