package passhash

import (
	"context"
	"errors"
	"fmt"

	"github.com/shandysiswandi/passhash/internal/pkg/goroutine"
)

// Outcome is the result delivered by HashAsync.
type Outcome struct {
	Record *Record
	Err    error
}

// HashAsync runs Hash in a new goroutine. The returned channel receives
// exactly one Outcome and is then closed.
func (h *Hasher) HashAsync(ctx context.Context, password, salt []byte) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		rec, err := h.Hash(ctx, password, salt)
		out <- Outcome{Record: rec, Err: err}
	}()
	return out
}

// HashBatch hashes every password with its own fresh salt, running up to
// MaxConcurrent derivations at once (NumCPU when unset). Records are returned
// in input order. On any failure the joined errors are returned and no records.
func (h *Hasher) HashBatch(ctx context.Context, passwords [][]byte) ([]*Record, error) {
	records := make([]*Record, len(passwords))
	mgr := goroutine.NewManager(h.params.MaxConcurrent)

	for i, password := range passwords {
		err := mgr.Go(ctx, func(ctx context.Context) error {
			rec, err := h.Hash(ctx, password, nil)
			if err != nil {
				return fmt.Errorf("password %d: %w", i, err)
			}
			records[i] = rec
			return nil
		})
		if err != nil {
			return nil, errors.Join(canceledError(err), mgr.Wait())
		}
	}

	if err := mgr.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}
