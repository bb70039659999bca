package kv

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/starford/pocketnotes/internal/checksum"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type changeLog struct {
	mu   sync.Mutex
	sums []string
}

func (c *changeLog) record(_, sum string) {
	c.mu.Lock()
	c.sums = append(c.sums, sum)
	c.mu.Unlock()
}

func (c *changeLog) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.sums...)
}

func TestWatch_ReportsWriteAndRemove(t *testing.T) {
	s, _ := NewFS(t.TempDir())
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var log changeLog
	go Watch(ctx, s, "@test:notes", logger, log.record)
	time.Sleep(100 * time.Millisecond)

	_ = s.Set(context.Background(), "@test:notes", []byte("[]"))
	want := checksum.Sum([]byte("[]"))
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		sums := log.snapshot()
		return len(sums) > 0 && sums[len(sums)-1] == want
	}, "write not reported")

	_ = s.Remove(context.Background(), "@test:notes")
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		sums := log.snapshot()
		return len(sums) > 0 && sums[len(sums)-1] == checksum.Empty
	}, "remove not reported")
}

func TestWatch_IgnoresOtherKeysAndSameContent(t *testing.T) {
	s, _ := NewFS(t.TempDir())
	ctx := context.Background()
	_ = s.Set(ctx, "@test:notes", []byte("[]"))

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var log changeLog
	go Watch(wctx, s, "@test:notes", logger, log.record)
	time.Sleep(100 * time.Millisecond)

	_ = s.Set(ctx, "@test:other", []byte("x"))
	_ = s.Set(ctx, "@test:notes", []byte("[]"))
	time.Sleep(500 * time.Millisecond)

	if sums := log.snapshot(); len(sums) != 0 {
		t.Errorf("unexpected change reports: %v", sums)
	}
}
