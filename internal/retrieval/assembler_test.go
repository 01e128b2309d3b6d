package retrieval

import (
	"context"
	"errors"
	"testing"

	"docqa/internal/domain"
)

func TestAssemblerFetchesPassagesInOrder(t *testing.T) {
	t.Parallel()

	store := &fakeStore{passages: map[int64]string{4: "four", 7: "seven"}}
	assembler := NewContextAssembler(store, 1, nil)

	passages, dropped, err := assembler.Assemble(context.Background(), []int64{7, 4})
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if len(dropped) != 0 {
		t.Fatalf("unexpected dropped ids: %v", dropped)
	}
	if len(passages) != 2 || passages[0] != "seven" || passages[1] != "four" {
		t.Fatalf("unexpected passages: %v", passages)
	}
}

func TestAssemblerGapFillOffByOne(t *testing.T) {
	t.Parallel()

	// Passage row landed under the next section id.
	store := &fakeStore{passages: map[int64]string{5: "recovered"}}
	assembler := NewContextAssembler(store, 1, nil)

	passages, dropped, err := assembler.Assemble(context.Background(), []int64{4})
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if len(dropped) != 0 {
		t.Fatalf("unexpected dropped ids: %v", dropped)
	}
	if len(passages) != 1 || passages[0] != "recovered" {
		t.Fatalf("unexpected passages: %v", passages)
	}
}

func TestAssemblerGapFillTerminatesWithinBound(t *testing.T) {
	t.Parallel()

	for _, bound := range []int{1, 2, 5} {
		store := &fakeStore{passages: map[int64]string{}}
		assembler := NewContextAssembler(store, bound, nil)

		_, dropped, err := assembler.Assemble(context.Background(), []int64{100})
		if !errors.Is(err, domain.ErrContextUnavailable) {
			t.Fatalf("bound %d: expected ErrContextUnavailable, got %v", bound, err)
		}
		if len(dropped) != 1 || dropped[0] != 100 {
			t.Fatalf("bound %d: expected dropped [100], got %v", bound, dropped)
		}
		if got, want := len(store.passageCalls), bound+1; got != want {
			t.Fatalf("bound %d: expected %d probes, got %d (%v)", bound, want, got, store.passageCalls)
		}
		if last := store.passageCalls[len(store.passageCalls)-1]; last != int64(100+bound) {
			t.Fatalf("bound %d: probing ran past the ceiling to id %d", bound, last)
		}
	}
}

func TestAssemblerReportsPartialContext(t *testing.T) {
	t.Parallel()

	store := &fakeStore{passages: map[int64]string{2: "present"}}
	assembler := NewContextAssembler(store, 1, nil)

	passages, dropped, err := assembler.Assemble(context.Background(), []int64{2, 40})
	if err != nil {
		t.Fatalf("partial context must not be fatal: %v", err)
	}
	if len(passages) != 1 || passages[0] != "present" {
		t.Fatalf("unexpected passages: %v", passages)
	}
	if len(dropped) != 1 || dropped[0] != 40 {
		t.Fatalf("expected dropped [40], got %v", dropped)
	}
}

func TestAssemblerDefaultsProbeLimit(t *testing.T) {
	t.Parallel()

	assembler := NewContextAssembler(&fakeStore{}, 0, nil)
	if assembler.probeLimit != DefaultGapFillProbes {
		t.Fatalf("expected default probe limit %d, got %d", DefaultGapFillProbes, assembler.probeLimit)
	}
}
