// Package testutil holds helpers shared by package tests.
package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/tweakrunner/internal/ctxlog"
)

// LogsEnv dumps captured logs after each test when set to "true".
const LogsEnv = "TWEAKRUNNER_TEST_LOGS"

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// NewLogger returns a debug-level text logger writing into a buffer. The
// buffer is dumped through t.Logf when LogsEnv is "true".
func NewLogger(t *testing.T) (*slog.Logger, *SafeBuffer) {
	t.Helper()

	logs := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() {
		if os.Getenv(LogsEnv) == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return logger, logs
}

// Context returns a background context carrying a test logger.
func Context(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()
	logger, logs := NewLogger(t)
	return ctxlog.WithLogger(context.Background(), logger), logs
}

// AssertLogged fails the test when no captured log line contains every
// substring.
func AssertLogged(t *testing.T, logs *SafeBuffer, substrings ...string) {
	t.Helper()

	for _, line := range strings.Split(logs.String(), "\n") {
		matched := true
		for _, s := range substrings {
			if !strings.Contains(line, s) {
				matched = false
				break
			}
		}
		if matched {
			return
		}
	}
	require.Failf(t, "log line not found", "no log line contains all of %q", substrings)
}
