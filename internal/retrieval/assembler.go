package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"docqa/internal/domain"
	"docqa/internal/ports"
)

// DefaultGapFillProbes is the default ceiling on adjacent-id probing when a
// section has no stored passage. Upstream ingestion occasionally offsets
// passage rows by one section id, so probing id+1 recovers most gaps.
const DefaultGapFillProbes = 1

// ContextAssembler resolves selected section ids to passage text. Missing
// passages trigger a bounded gap-fill probe; ids that stay empty after the
// probe ceiling are dropped and reported, never fatal on their own.
type ContextAssembler struct {
	store      ports.DocumentStore
	probeLimit int
	logger     *slog.Logger
}

// NewContextAssembler wires the assembler. probeLimit < 1 falls back to
// DefaultGapFillProbes.
func NewContextAssembler(store ports.DocumentStore, probeLimit int, logger *slog.Logger) *ContextAssembler {
	if probeLimit < 1 {
		probeLimit = DefaultGapFillProbes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextAssembler{store: store, probeLimit: probeLimit, logger: logger}
}

// Assemble fetches passage text for each id in order. The returned dropped
// list names the ids that exhausted gap-fill without content; when every id
// is dropped the result is domain.ErrContextUnavailable.
func (a *ContextAssembler) Assemble(ctx context.Context, sectionIDs []int64) (passages []string, dropped []int64, err error) {
	for _, id := range sectionIDs {
		text, found, err := a.fetchWithGapFill(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if !found {
			a.logger.Warn("section passage missing after gap-fill", "section_id", id, "probe_limit", a.probeLimit)
			dropped = append(dropped, id)
			continue
		}
		passages = append(passages, text)
	}

	if len(passages) == 0 {
		return nil, dropped, fmt.Errorf("assemble context for sections %v: %w", sectionIDs, domain.ErrContextUnavailable)
	}
	return passages, dropped, nil
}

// fetchWithGapFill probes id, id+1, ... id+probeLimit. The ceiling is a hard
// bound on iterations, not a loop condition on missing content.
func (a *ContextAssembler) fetchWithGapFill(ctx context.Context, id int64) (string, bool, error) {
	for offset := int64(0); offset <= int64(a.probeLimit); offset++ {
		text, found, err := a.store.PassageBySectionID(ctx, id+offset)
		if err != nil {
			return "", false, fmt.Errorf("fetch passage for section %d: %w", id+offset, err)
		}
		if found {
			if offset > 0 {
				a.logger.Debug("gap-fill hit", "section_id", id, "offset", offset)
			}
			return text, true, nil
		}
	}
	return "", false, nil
}
