// Package redisledger records captured frames in Redis so several hosts
// can share one resume ledger.
package redisledger

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/user/framecast/pkg/ports"
)

// DefaultNamespace prefixes every key written by the ledger.
const DefaultNamespace = "framecast:ledger"

// Ledger implements ports.RunLedger with one sorted set per run key,
// scored by frame index.
type Ledger struct {
	rdb       *redis.Client
	namespace string
}

// New wraps an existing client. Close closes the client.
func New(rdb *redis.Client, namespace string) *Ledger {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Ledger{rdb: rdb, namespace: namespace}
}

// Dial connects to the server at addr and checks it is reachable.
func Dial(ctx context.Context, addr, namespace string) (*Ledger, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to run ledger at %s: %w", addr, err)
	}
	return New(rdb, namespace), nil
}

func (l *Ledger) key(runKey string) string {
	return l.namespace + ":" + runKey
}

// Completed returns the frame indices recorded for runKey in ascending order.
func (l *Ledger) Completed(ctx context.Context, runKey string) ([]int, error) {
	members, err := l.rdb.ZRange(ctx, l.key(runKey), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read run ledger: %w", err)
	}
	indices := make([]int, 0, len(members))
	for _, m := range members {
		i, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		indices = append(indices, i)
	}
	return indices, nil
}

// MarkCompleted records index for runKey.
func (l *Ledger) MarkCompleted(ctx context.Context, runKey string, index int) error {
	if index < 0 {
		return fmt.Errorf("invalid frame index %d", index)
	}
	z := redis.Z{Score: float64(index), Member: strconv.Itoa(index)}
	if err := l.rdb.ZAdd(ctx, l.key(runKey), z).Err(); err != nil {
		return fmt.Errorf("record frame %d: %w", index, err)
	}
	return nil
}

// Reset removes every entry of runKey.
func (l *Ledger) Reset(ctx context.Context, runKey string) error {
	if err := l.rdb.Del(ctx, l.key(runKey)).Err(); err != nil {
		return fmt.Errorf("reset run ledger: %w", err)
	}
	return nil
}

// Close closes the client.
func (l *Ledger) Close() error {
	return l.rdb.Close()
}

var _ ports.RunLedger = (*Ledger)(nil)
