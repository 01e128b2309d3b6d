package ingest

import (
	"context"
	"os"
	"strings"
	"testing"

	"docqa/internal/domain"
	"docqa/internal/ports"
)

func TestParseMarkdownHeadingsAndBodies(t *testing.T) {
	t.Parallel()

	md := `# 基于 WebSocket  的即时通讯软件设计与实现

## 引言

即时通讯已经成为基础设施。
本文讨论其设计。

## 系统设计

### 数据库设计

系统持久化使用 MySQL。
`

	title, sections, err := ParseMarkdown(strings.NewReader(md), "fallback")
	if err != nil {
		t.Fatalf("ParseMarkdown error: %v", err)
	}

	if title != "基于 WebSocket 的即时通讯软件设计与实现" {
		t.Fatalf("unexpected article title: %q", title)
	}

	want := []ParsedSection{
		{Title: "基于 WebSocket 的即时通讯软件设计与实现", Level: 1, Content: ""},
		{Title: "引言", Level: 2, Content: "即时通讯已经成为基础设施。\n本文讨论其设计。"},
		{Title: "系统设计", Level: 2, Content: ""},
		{Title: "数据库设计", Level: 3, Content: "系统持久化使用 MySQL。"},
	}

	if len(sections) != len(want) {
		t.Fatalf("expected %d sections, got %d: %+v", len(want), len(sections), sections)
	}
	for i, w := range want {
		if sections[i] != w {
			t.Fatalf("section %d: got %+v, want %+v", i, sections[i], w)
		}
	}
}

func TestParseMarkdownPreambleAndFallbackTitle(t *testing.T) {
	t.Parallel()

	md := "text before any heading\n\nmore text\n"
	title, sections, err := ParseMarkdown(strings.NewReader(md), "my file")
	if err != nil {
		t.Fatalf("ParseMarkdown error: %v", err)
	}
	if title != "my file" {
		t.Fatalf("expected fallback title, got %q", title)
	}
	if len(sections) != 1 || sections[0].Title != "Introduction" || sections[0].Level != 0 {
		t.Fatalf("unexpected sections: %+v", sections)
	}
	if sections[0].Content != "text before any heading\nmore text" {
		t.Fatalf("unexpected preamble content: %q", sections[0].Content)
	}
}

func TestParseMarkdownEmptyInput(t *testing.T) {
	t.Parallel()

	_, sections, err := ParseMarkdown(strings.NewReader(""), "f")
	if err != nil {
		t.Fatalf("ParseMarkdown error: %v", err)
	}
	if len(sections) != 0 {
		t.Fatalf("expected no sections, got %+v", sections)
	}
}

type fakeWriter struct {
	articles   []string
	sections   []string
	passages   []string
	nextID     int64
	existingBy map[string]bool
}

var (
	_ ports.DocumentWriter = (*fakeWriter)(nil)
	_ ports.DocumentStore  = (*fakeWriter)(nil)
)

func (f *fakeWriter) InsertArticle(_ context.Context, title string) (int64, error) {
	f.articles = append(f.articles, title)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeWriter) InsertSection(_ context.Context, _ int64, title string, _ int) (int64, error) {
	f.sections = append(f.sections, title)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeWriter) InsertPassage(_ context.Context, _ int64, text string) (int64, error) {
	f.passages = append(f.passages, text)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeWriter) ListArticles(context.Context) ([]domain.Article, error) { return nil, nil }

func (f *fakeWriter) ArticleByTitle(_ context.Context, title string) (domain.Article, bool, error) {
	return domain.Article{}, f.existingBy[title], nil
}

func (f *fakeWriter) SectionsByArticleID(context.Context, int64) ([]domain.Section, error) {
	return nil, nil
}

func (f *fakeWriter) PassageBySectionID(context.Context, int64) (string, bool, error) {
	return "", false, nil
}

func (f *fakeWriter) SetSectionSummary(context.Context, int64, string) error { return nil }
func (f *fakeWriter) SetArticleSummary(context.Context, int64, string) error { return nil }

func TestImportFileWritesRows(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := dir + "/paper.md"
	md := "# Paper Title\n\n## Body\n\nsome text\n"
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	w := &fakeWriter{existingBy: map[string]bool{}}
	importer := NewImporter(w, w, nil)
	if err := importer.ImportFile(context.Background(), path); err != nil {
		t.Fatalf("ImportFile error: %v", err)
	}

	if len(w.articles) != 1 || w.articles[0] != "Paper Title" {
		t.Fatalf("unexpected articles: %v", w.articles)
	}
	if len(w.sections) != 2 {
		t.Fatalf("unexpected sections: %v", w.sections)
	}
	if len(w.passages) != 1 || w.passages[0] != "some text" {
		t.Fatalf("unexpected passages: %v", w.passages)
	}
}

func TestImportFileSkipsExistingArticle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := dir + "/dup.md"
	if err := os.WriteFile(path, []byte("# Existing\n\nbody\n"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	w := &fakeWriter{existingBy: map[string]bool{"Existing": true}}
	importer := NewImporter(w, w, nil)
	if err := importer.ImportFile(context.Background(), path); err != nil {
		t.Fatalf("ImportFile error: %v", err)
	}
	if len(w.articles) != 0 {
		t.Fatalf("existing article must not be reimported, got %v", w.articles)
	}
}
