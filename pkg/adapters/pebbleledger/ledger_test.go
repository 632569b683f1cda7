package pebbleledger

import (
	"context"
	"testing"
)

func openTemp(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestLedger_MarkAndList(t *testing.T) {
	ctx := context.Background()
	l := openTemp(t)

	for _, i := range []int{300, 2, 0, 1} {
		if err := l.MarkCompleted(ctx, "intro-1920x1080", i); err != nil {
			t.Fatalf("MarkCompleted(%d) failed: %v", i, err)
		}
	}
	l.MarkCompleted(ctx, "other", 7)

	got, err := l.Completed(ctx, "intro-1920x1080")
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
}

func TestLedger_Reset(t *testing.T) {
	ctx := context.Background()
	l := openTemp(t)

	l.MarkCompleted(ctx, "a", 1)
	l.MarkCompleted(ctx, "b", 1)
	if err := l.Reset(ctx, "a"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if got, _ := l.Completed(ctx, "a"); len(got) != 0 {
		t.Errorf("a after reset = %v", got)
	}
	if got, _ := l.Completed(ctx, "b"); len(got) != 1 {
		t.Errorf("b after reset of a = %v", got)
	}
}

func TestLedger_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	l, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	l.MarkCompleted(ctx, "run", 4)
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	l, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	if got, _ := l.Completed(ctx, "run"); len(got) != 1 || got[0] != 4 {
		t.Errorf("Completed after reopen = %v", got)
	}
}

func TestLedger_Closed(t *testing.T) {
	l, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	l.Close()
	if err := l.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
	if err := l.MarkCompleted(context.Background(), "run", 0); err == nil {
		t.Error("expected error after Close")
	}
}
