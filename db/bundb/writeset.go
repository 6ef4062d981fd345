package bundb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// ErrWriteSetTooLarge is returned when a staged write set exceeds the
// per-commit operation cap.
var ErrWriteSetTooLarge = errors.New("write set exceeds max operations per commit")

// Op is one staged write. It runs inside the transaction handed to Commit.
type Op func(ctx context.Context, tx bun.IDB) error

// WriteSet accumulates writes that must land in one atomic commit. The
// settlement orchestrator stages every per-player update plus the settled
// flag into one set; either all of it applies or none of it does.
type WriteSet struct {
	maxOps int
	ops    []Op
}

// NewWriteSet returns an empty set capped at maxOps operations per commit.
// A non-positive cap means unbounded.
func NewWriteSet(maxOps int) *WriteSet {
	return &WriteSet{maxOps: maxOps}
}

// Add stages operations onto the set.
func (w *WriteSet) Add(ops ...Op) {
	w.ops = append(w.ops, ops...)
}

// Len reports how many operations are staged.
func (w *WriteSet) Len() int { return len(w.ops) }

// Commit runs every staged operation inside a single transaction. An empty
// set commits trivially. The set is not cleared; a WriteSet is single-use.
// A nil db runs the ops outside any transaction, for tests built on fakes.
func (w *WriteSet) Commit(ctx context.Context, db *bun.DB) error {
	if len(w.ops) == 0 {
		return nil
	}
	if w.maxOps > 0 && len(w.ops) > w.maxOps {
		return fmt.Errorf("%w: %d staged, cap %d", ErrWriteSetTooLarge, len(w.ops), w.maxOps)
	}
	if db == nil {
		for _, op := range w.ops {
			if err := op(ctx, nil); err != nil {
				return err
			}
		}
		return nil
	}
	return db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, op := range w.ops {
			if err := op(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	})
}

// CommitChunked splits ops into maxOps-sized chunks and commits each chunk
// in its own transaction. Used by season closure, whose per-row snapshot
// writes are individually idempotent, so a failure between chunks is safe
// to retry.
func CommitChunked(ctx context.Context, db *bun.DB, maxOps int, ops []Op) error {
	if maxOps <= 0 {
		maxOps = len(ops)
	}
	for start := 0; start < len(ops); start += maxOps {
		end := start + maxOps
		if end > len(ops) {
			end = len(ops)
		}
		chunk := NewWriteSet(maxOps)
		chunk.Add(ops[start:end]...)
		if err := chunk.Commit(ctx, db); err != nil {
			return fmt.Errorf("failed to commit chunk starting at op %d: %w", start, err)
		}
	}
	return nil
}
