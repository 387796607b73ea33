package config

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestWatchPushesReloadedOptionsOnWrite(t *testing.T) {
	path := writeOptionsFile(t, `{"min_size": "1MiB"}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := Watch(ctx, path, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("watch failed: %v", err)
	}

	if err := os.WriteFile(path, []byte(`{"min_size": "5MiB"}`), 0644); err != nil {
		t.Fatalf("failed to rewrite options file: %v", err)
	}

	select {
	case opts := <-updates:
		if opts.MinSize != "5MiB" {
			t.Errorf("expected reloaded min_size 5MiB, got %q", opts.MinSize)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload after write")
	}
}
