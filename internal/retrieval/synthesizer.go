package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"docqa/internal/modelout"
	"docqa/internal/ports"
)

// RefusalAnswer is returned verbatim when no passage content could be
// assembled. The synthesizer is never invoked with empty context.
const RefusalAnswer = "I could not retrieve the content of the relevant sections, so I cannot answer this question."

// passageSeparator keeps section boundaries visible inside the joined context.
const passageSeparator = "\n\n---\n\n"

const synthesizePrompt = `You are a question answering assistant. Answer the user's question using only the document excerpts below.

Rules:
1. Answer directly; keep it to one concise sentence where possible.
2. Use only the provided excerpts, never outside knowledge.
3. If the excerpts do not contain the answer, state that you cannot answer from the provided content.

Document excerpts:
%s`

// AnswerSynthesizer produces the final grounded answer from assembled
// passage text.
type AnswerSynthesizer struct {
	completer ports.Completer
	logger    *slog.Logger
}

// NewAnswerSynthesizer wires the synthesizer's collaborators.
func NewAnswerSynthesizer(completer ports.Completer, logger *slog.Logger) *AnswerSynthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnswerSynthesizer{completer: completer, logger: logger}
}

// Synthesize answers the question strictly from the supplied passages. An
// empty passage list short-circuits to RefusalAnswer without a model call.
func (s *AnswerSynthesizer) Synthesize(ctx context.Context, question string, passages []string) (string, error) {
	if len(passages) == 0 {
		return RefusalAnswer, nil
	}

	raw, err := s.completer.Complete(ctx, ports.CompletionRequest{
		System: fmt.Sprintf(synthesizePrompt, strings.Join(passages, passageSeparator)),
		User:   question,
	})
	if err != nil {
		return "", fmt.Errorf("synthesize answer: %w", err)
	}

	answer := modelout.StripReasoning(raw)
	if answer == "" {
		s.logger.Warn("synthesizer returned empty reply")
		return RefusalAnswer, nil
	}
	return answer, nil
}
