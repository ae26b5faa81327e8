package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/nfrund/notebook/internal/config"
	"github.com/nfrund/notebook/internal/logging"
)

// ConfigForTests loads .env.test from the project root into the test's
// environment and returns the resulting config. Tests are skipped when the
// file is missing, since they need a running database.
func ConfigForTests(t *testing.T) config.Provider {
	t.Helper()

	path, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
			break
		}
		if path == filepath.Dir(path) {
			t.Fatalf("could not find project root with go.mod")
		}
		path = filepath.Dir(path)
	}

	env, err := godotenv.Read(filepath.Join(path, ".env.test"))
	if err != nil {
		t.Skipf("no .env.test in %s: %v", path, err)
	}
	for key, value := range env {
		t.Setenv(key, value)
	}

	logging.New()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	return cfg
}
