package redisledger

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// dialTest connects to FRAMECAST_REDIS_ADDR, skipping when it is unset.
func dialTest(t *testing.T) *Ledger {
	t.Helper()
	addr := os.Getenv("FRAMECAST_REDIS_ADDR")
	if addr == "" {
		t.Skip("FRAMECAST_REDIS_ADDR not set")
	}
	l, err := Dial(context.Background(), addr, "framecast-test:"+uuid.NewString())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestNew_DefaultNamespace(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	l := New(rdb, "")
	defer l.Close()

	if got := l.key("intro-1280x720"); got != DefaultNamespace+":intro-1280x720" {
		t.Errorf("key = %q", got)
	}
}

func TestLedger_NegativeIndex(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	l := New(rdb, "x")
	defer l.Close()

	if err := l.MarkCompleted(context.Background(), "run", -1); err == nil {
		t.Error("expected error for a negative index")
	}
}

func TestLedger_MarkAndList(t *testing.T) {
	ctx := context.Background()
	l := dialTest(t)

	for _, i := range []int{300, 2, 0, 1, 2} {
		if err := l.MarkCompleted(ctx, "intro", i); err != nil {
			t.Fatalf("MarkCompleted(%d) failed: %v", i, err)
		}
	}
	l.MarkCompleted(ctx, "other", 7)

	got, err := l.Completed(ctx, "intro")
	if err != nil {
		t.Fatalf("Completed failed: %v", err)
	}
	want := []int{0, 1, 2, 300}
	if len(got) != len(want) {
		t.Fatalf("Completed = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Completed = %v, want %v", got, want)
		}
	}

	if err := l.Reset(ctx, "intro"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if got, _ := l.Completed(ctx, "intro"); len(got) != 0 {
		t.Errorf("after reset = %v", got)
	}
	if got, _ := l.Completed(ctx, "other"); len(got) != 1 {
		t.Errorf("other after reset = %v", got)
	}
}
