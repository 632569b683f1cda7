// Package pebbleledger records captured frames in a pebble key-value store
// so interrupted runs can resume.
package pebbleledger

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/user/framecast/pkg/ports"
)

// Keys are "run/<runKey>/<big-endian index>", so a prefix scan returns a
// run's frames in ascending order.
const keyPrefix = "run/"

// Ledger implements ports.RunLedger on top of pebble.
type Ledger struct {
	mu     sync.Mutex
	db     *pebble.DB
	closed bool
}

// Open opens or creates a ledger in dir.
func Open(dir string) (*Ledger, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open run ledger: %w", err)
	}
	return &Ledger{db: db}, nil
}

func runPrefix(runKey string) []byte {
	return []byte(keyPrefix + strings.ReplaceAll(runKey, "/", "_") + "/")
}

func frameKey(runKey string, index int) []byte {
	key := runPrefix(runKey)
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(index))
	return append(key, b[:]...)
}

// prefixEnd returns the smallest key greater than every key with prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	end[len(end)-1]++
	return end
}

func (l *Ledger) handle() (*pebble.DB, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, fmt.Errorf("run ledger closed")
	}
	return l.db, nil
}

// Completed returns the frame indices recorded for runKey in ascending order.
func (l *Ledger) Completed(ctx context.Context, runKey string) ([]int, error) {
	db, err := l.handle()
	if err != nil {
		return nil, err
	}

	prefix := runPrefix(runKey)
	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixEnd(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("iterate run ledger: %w", err)
	}
	defer iter.Close()

	var indices []int
	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		suffix := iter.Key()[len(prefix):]
		if len(suffix) != 4 {
			continue
		}
		indices = append(indices, int(binary.BigEndian.Uint32(suffix)))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate run ledger: %w", err)
	}
	return indices, nil
}

// MarkCompleted records index for runKey. Writes are synced so a crash
// right after a capture does not lose the entry.
func (l *Ledger) MarkCompleted(ctx context.Context, runKey string, index int) error {
	if index < 0 {
		return fmt.Errorf("invalid frame index %d", index)
	}
	db, err := l.handle()
	if err != nil {
		return err
	}
	if err := db.Set(frameKey(runKey, index), nil, pebble.Sync); err != nil {
		return fmt.Errorf("record frame %d: %w", index, err)
	}
	return nil
}

// Reset removes every entry of runKey.
func (l *Ledger) Reset(ctx context.Context, runKey string) error {
	db, err := l.handle()
	if err != nil {
		return err
	}
	prefix := runPrefix(runKey)
	if err := db.DeleteRange(prefix, prefixEnd(prefix), pebble.Sync); err != nil {
		return fmt.Errorf("reset run ledger: %w", err)
	}
	return nil
}

// Close closes the underlying store. It is safe to call more than once.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.db.Close()
}

var _ ports.RunLedger = (*Ledger)(nil)
