package app

import (
	"os"
	"testing"

	"github.com/vk/tweakrunner/internal/config"
	"github.com/vk/tweakrunner/internal/testutil"
)

// TestConfig returns a debug configuration storing settings in dir.
func TestConfig(dir string) *config.Config {
	return &config.Config{
		SettingsDir: dir,
		HostVersion: config.DefaultHostVersion,
		Log:         config.LogConfig{Level: "debug", Format: "text"},
		Remote:      config.RemoteConfig{Namespace: config.DefaultNamespace, Timeout: config.DefaultTimeout},
	}
}

// SetupAppTest creates a new app instance for system testing.
func SetupAppTest(t *testing.T, cfg *config.Config, modules ...Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	cfg.Log.Level = "debug"
	testApp, err := NewApp(logBuffer, cfg, modules...)
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}

	t.Cleanup(func() {
		if os.Getenv(testutil.LogsEnv) == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
