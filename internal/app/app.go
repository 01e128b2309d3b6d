package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/infrastructure/llm"
	"docqa/internal/infrastructure/storage"
	"docqa/internal/ingest"
	"docqa/internal/logging"
	"docqa/internal/retrieval"
	"docqa/internal/summarize"
)

// Application wires configuration to the question pipeline, the summary
// rollup, and the importer.
type Application struct {
	db       *sql.DB
	store    *storage.PostgresStore
	pipeline *retrieval.Pipeline
	rollup   *summarize.Rollup
	importer *ingest.Importer
	logger   *slog.Logger
}

// New opens the database and builds all use cases.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := storage.NewPostgresStore(db)
	completer := llm.NewClient(cfg.LLM)

	return &Application{
		db:    db,
		store: store,
		pipeline: retrieval.NewPipeline(retrieval.PipelineDeps{
			Store:         store,
			Completer:     completer,
			Logger:        baseLogger.With("component", "pipeline"),
			GapFillProbes: cfg.Retrieval.GapFillProbes,
		}),
		rollup:   summarize.NewRollup(store, completer, baseLogger.With("component", "rollup")),
		importer: ingest.NewImporter(store, store, baseLogger.With("component", "importer")),
		logger:   baseLogger,
	}, nil
}

// Close releases the database handle.
func (a *Application) Close() error {
	return a.db.Close()
}

// Ask answers one question through the retrieval pipeline.
func (a *Application) Ask(ctx context.Context, question string) (domain.Answer, error) {
	return a.pipeline.Answer(ctx, question)
}

// Summarize runs the rollup for one article by title.
func (a *Application) Summarize(ctx context.Context, title string) error {
	return a.rollup.Article(ctx, title)
}

// SummarizeAll runs the rollup for every article without a summary.
func (a *Application) SummarizeAll(ctx context.Context) error {
	return a.rollup.All(ctx)
}

// Import loads markdown documents from a directory into the corpus,
// creating the schema first when needed.
func (a *Application) Import(ctx context.Context, dir string) error {
	if err := a.store.EnsureSchema(ctx); err != nil {
		return err
	}
	return a.importer.ImportDir(ctx, dir)
}

// Articles lists the corpus for display.
func (a *Application) Articles(ctx context.Context) ([]domain.Article, error) {
	return a.store.ListArticles(ctx)
}
