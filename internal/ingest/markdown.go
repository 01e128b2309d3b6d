// Package ingest loads markdown documents into the corpus. Heading lines
// become sections (level = heading depth), the text under each heading
// becomes the section's passage, and the first heading names the article.
package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"docqa/internal/ports"
)

// preambleTitle labels text that appears before the first heading.
const preambleTitle = "Introduction"

var (
	headingExpr    = regexp.MustCompile(`^(#+)\s+(.*)`)
	whitespaceExpr = regexp.MustCompile(`\s+`)
)

// ParsedSection is one heading with its accumulated body text. Content is
// empty for headings with no body of their own (a chapter heading directly
// followed by its subsections).
type ParsedSection struct {
	Title   string
	Level   int
	Content string
}

// Importer writes parsed markdown documents through a DocumentWriter.
type Importer struct {
	store  ports.DocumentStore
	writer ports.DocumentWriter
	logger *slog.Logger
}

// NewImporter wires the importer's collaborators.
func NewImporter(store ports.DocumentStore, writer ports.DocumentWriter, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: store, writer: writer, logger: logger}
}

// ImportDir imports every .md file in dir. Files whose article title already
// exists in the store are skipped, not overwritten.
func (i *Importer) ImportDir(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".md") {
			continue
		}
		if err := i.ImportFile(ctx, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// ImportFile imports one markdown file.
func (i *Importer) ImportFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	fallback := collapseWhitespace(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	title, sections, err := ParseMarkdown(f, fallback)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if len(sections) == 0 {
		i.logger.Warn("file has no content, skipping", "path", path)
		return nil
	}

	if _, exists, err := i.store.ArticleByTitle(ctx, title); err != nil {
		return fmt.Errorf("check article %q: %w", title, err)
	} else if exists {
		i.logger.Info("article already imported, skipping", "article", title)
		return nil
	}

	articleID, err := i.writer.InsertArticle(ctx, title)
	if err != nil {
		return fmt.Errorf("insert article %q: %w", title, err)
	}

	var passageCount int
	for _, sec := range sections {
		sectionID, err := i.writer.InsertSection(ctx, articleID, sec.Title, sec.Level)
		if err != nil {
			return fmt.Errorf("insert section %q: %w", sec.Title, err)
		}
		if sec.Content == "" {
			continue
		}
		if _, err := i.writer.InsertPassage(ctx, sectionID, sec.Content); err != nil {
			return fmt.Errorf("insert passage for %q: %w", sec.Title, err)
		}
		passageCount++
	}

	i.logger.Info("article imported", "article", title, "sections", len(sections), "passages", passageCount)
	return nil
}

// ParseMarkdown splits markdown into heading-delimited sections. The first
// heading becomes the article title; fallbackTitle (usually the file name)
// applies when the file has no headings. Preamble text before the first
// heading goes under a level-0 section; blank lines are dropped; whitespace
// runs in titles collapse to single spaces.
func ParseMarkdown(r io.Reader, fallbackTitle string) (string, []ParsedSection, error) {
	articleTitle := fallbackTitle
	current := ParsedSection{Title: preambleTitle, Level: 0}
	inSection := false
	var body []string
	var sections []ParsedSection

	flush := func() {
		current.Content = strings.Join(body, "\n")
		body = nil
		// The preamble pseudo-section only counts when it has text.
		if inSection || current.Content != "" {
			sections = append(sections, current)
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		match := headingExpr.FindStringSubmatch(line)
		if match == nil {
			body = append(body, line)
			continue
		}

		title := collapseWhitespace(match[2])
		if !inSection {
			articleTitle = title
		}

		flush()
		current = ParsedSection{Title: title, Level: len(match[1])}
		inSection = true
	}
	if err := scanner.Err(); err != nil {
		return "", nil, fmt.Errorf("scan markdown: %w", err)
	}
	flush()

	return articleTitle, sections, nil
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceExpr.ReplaceAllString(s, " "))
}
