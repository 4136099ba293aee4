package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/onelane/onelane/internal/logging"
)

func resetLogsFlags(t *testing.T) {
	t.Helper()
	reset := func() {
		logsFile = ""
		logsTail = 50
		logsFollow = false
		logsLevel = ""
		logsComponent = ""
		logsCar = ""
		logsContains = ""
		logsSince = ""
		logsExport = ""
		logsFormat = "json"
	}
	reset()
	t.Cleanup(reset)
}

func TestBuildLogFilter(t *testing.T) {
	t.Run("plain criteria copy through", func(t *testing.T) {
		resetLogsFlags(t)
		logsLevel = "warn"
		logsComponent = "bridge"
		logsCar = "car 03"
		logsContains = "admitted"

		filter, err := buildLogFilter()
		if err != nil {
			t.Fatalf("buildLogFilter() error = %v", err)
		}

		if filter.Level != "warn" || filter.Component != "bridge" {
			t.Errorf("filter = %+v, want level and component set", filter)
		}
		if filter.Car != "car 03" || filter.MessageContains != "admitted" {
			t.Errorf("filter = %+v, want car and contains set", filter)
		}
		if !filter.Since.IsZero() {
			t.Errorf("Since = %v, want zero without --since", filter.Since)
		}
	})

	t.Run("since becomes an absolute time", func(t *testing.T) {
		resetLogsFlags(t)
		logsSince = "10m"

		filter, err := buildLogFilter()
		if err != nil {
			t.Fatalf("buildLogFilter() error = %v", err)
		}

		want := time.Now().Add(-10 * time.Minute)
		if diff := filter.Since.Sub(want); diff < -time.Second || diff > time.Second {
			t.Errorf("Since = %v, want about %v", filter.Since, want)
		}
	})

	t.Run("bad since duration fails", func(t *testing.T) {
		resetLogsFlags(t)
		logsSince = "fortnight"

		if _, err := buildLogFilter(); err == nil {
			t.Error("expected an error for an unparseable duration")
		}
	})
}

// syncBuffer guards a bytes.Buffer written by the follow goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// waitForOutput polls the buffer until the fragment shows up.
func waitForOutput(t *testing.T, buf *syncBuffer, fragment string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for !strings.Contains(buf.String(), fragment) {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %q in output:\n%s", fragment, buf.String())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func appendLine(t *testing.T, path, line string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("opening log for append: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		t.Fatalf("appending log line: %v", err)
	}
}

func TestFollowLogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	if err := os.WriteFile(path, []byte(`{"time":"2026-08-25T10:00:00Z","level":"INFO","msg":"history"}`+"\n"), 0644); err != nil {
		t.Fatalf("seeding log file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var buf syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- followLogs(ctx, &buf, path, logging.LogFilter{Level: "info"})
	}()

	// The banner prints after the seek, so new lines appended from
	// here on are guaranteed to be seen.
	waitForOutput(t, &buf, "following")

	appendLine(t, path, `{"time":"2026-08-25T10:00:01Z","level":"DEBUG","msg":"filtered out"}`)
	appendLine(t, path, `{"time":"2026-08-25T10:00:02Z","level":"INFO","msg":"car 01 admitted"}`)
	waitForOutput(t, &buf, "car 01 admitted")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("followLogs() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("followLogs did not return after cancellation")
	}

	out := buf.String()
	if strings.Contains(out, "history") {
		t.Error("follow mode should start at the end of the file")
	}
	if strings.Contains(out, "filtered out") {
		t.Error("follow mode should honor the level filter")
	}
}

func TestFollowLogs_MissingFile(t *testing.T) {
	var buf syncBuffer
	err := followLogs(context.Background(), &buf, filepath.Join(t.TempDir(), "absent.log"), logging.LogFilter{})
	if err == nil {
		t.Error("expected an error for a missing log file")
	}
}
