// Package retrieval implements the hierarchical question pipeline: document
// selection, section selection, context assembly, and answer synthesis, each
// stage's output constraining the next. Every model reply passes through the
// modelout parser before it is trusted.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"docqa/internal/domain"
	"docqa/internal/ports"
)

// PipelineDeps wires the pipeline's collaborators.
type PipelineDeps struct {
	Store     ports.DocumentStore
	Completer ports.Completer
	Logger    *slog.Logger

	// GapFillProbes overrides the assembler's probe ceiling; 0 means
	// DefaultGapFillProbes.
	GapFillProbes int
}

// Pipeline answers one question at a time, strictly sequentially, with fresh
// state per invocation. No shared mutable state crosses questions.
type Pipeline struct {
	documents   *DocumentSelector
	sections    *SectionSelector
	assembler   *ContextAssembler
	synthesizer *AnswerSynthesizer
	logger      *slog.Logger
}

// NewPipeline constructs the four stages over shared dependencies.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		documents:   NewDocumentSelector(deps.Store, deps.Completer, logger.With("stage", "document_selector")),
		sections:    NewSectionSelector(deps.Store, deps.Completer, logger.With("stage", "section_selector")),
		assembler:   NewContextAssembler(deps.Store, deps.GapFillProbes, logger.With("stage", "context_assembler")),
		synthesizer: NewAnswerSynthesizer(deps.Completer, logger.With("stage", "answer_synthesizer")),
		logger:      logger,
	}
}

// Answer runs the full funnel for one question. Terminal conditions come back
// as domain sentinel errors wrapped with stage context; the partially filled
// Answer is still returned alongside them so callers can report how far the
// question got.
func (p *Pipeline) Answer(ctx context.Context, question string) (domain.Answer, error) {
	result := domain.Answer{Question: question}

	article, err := p.documents.Select(ctx, question)
	if err != nil {
		return result, err
	}
	result.Article = article.Title

	sectionIDs, err := p.sections.Select(ctx, question, article)
	if err != nil {
		return result, err
	}
	result.SectionIDs = sectionIDs

	passages, dropped, err := p.assembler.Assemble(ctx, sectionIDs)
	result.DroppedSectionIDs = dropped
	if err != nil {
		result.Text = RefusalAnswer
		return result, err
	}
	result.Passages = passages

	answer, err := p.synthesizer.Synthesize(ctx, question, passages)
	if err != nil {
		return result, fmt.Errorf("answer question: %w", err)
	}
	result.Text = answer

	p.logger.Info("question answered",
		"article", result.Article,
		"sections", result.SectionIDs,
		"dropped_sections", result.DroppedSectionIDs)
	return result, nil
}
