package retrieval

import (
	"context"
	"fmt"

	"docqa/internal/domain"
	"docqa/internal/infrastructure/storage"
	"docqa/internal/ports"
)

// fakeStore is an in-memory ports.DocumentStore for pipeline tests.
type fakeStore struct {
	articles []domain.Article
	sections map[int64][]domain.Section
	passages map[int64]string

	passageCalls []int64
}

var _ ports.DocumentStore = (*fakeStore)(nil)

func (f *fakeStore) ListArticles(context.Context) ([]domain.Article, error) {
	return f.articles, nil
}

func (f *fakeStore) ArticleByTitle(_ context.Context, title string) (domain.Article, bool, error) {
	for _, art := range f.articles {
		if art.Title == title {
			return art, true, nil
		}
	}
	want := storage.NormalizeTitle(title)
	for _, art := range f.articles {
		if storage.NormalizeTitle(art.Title) == want {
			return art, true, nil
		}
	}
	return domain.Article{}, false, nil
}

func (f *fakeStore) SectionsByArticleID(_ context.Context, articleID int64) ([]domain.Section, error) {
	return f.sections[articleID], nil
}

func (f *fakeStore) PassageBySectionID(_ context.Context, sectionID int64) (string, bool, error) {
	f.passageCalls = append(f.passageCalls, sectionID)
	text, ok := f.passages[sectionID]
	return text, ok, nil
}

func (f *fakeStore) SetSectionSummary(context.Context, int64, string) error {
	return nil
}

func (f *fakeStore) SetArticleSummary(context.Context, int64, string) error {
	return nil
}

// fakeCompleter replays scripted replies and records every request.
type fakeCompleter struct {
	replies  []string
	err      error
	requests []ports.CompletionRequest
}

var _ ports.Completer = (*fakeCompleter)(nil)

func (f *fakeCompleter) Complete(_ context.Context, req ports.CompletionRequest) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	if len(f.requests) > len(f.replies) {
		return "", fmt.Errorf("no scripted reply for call %d", len(f.requests))
	}
	return f.replies[len(f.requests)-1], nil
}
