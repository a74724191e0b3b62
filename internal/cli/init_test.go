package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/khanglvm/delta-ego/internal/config"
)

func TestInitCommand(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.dir, "fresh.yaml")
	env.config = path

	out, err := env.run(t, "--catalogue", env.catalogue, "init")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out, "✓ Wrote "+path) {
		t.Errorf("unexpected output: %q", out)
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.Catalogue != env.catalogue {
		t.Errorf("catalogue = %q, want %q", cfg.Catalogue, env.catalogue)
	}
	if cfg.Search.Mode != config.DefaultMode {
		t.Errorf("mode = %q, want the default", cfg.Search.Mode)
	}

	// The written file is immediately usable.
	if _, err := env.run(t, "search", "-V", "0", "-A", "0", "-D", "0"); err != nil {
		t.Errorf("search with the initialized config failed: %v", err)
	}
}

func TestInitCommandExisting(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "init")
	if err == nil || !strings.Contains(err.Error(), "--force") {
		t.Fatalf("init over an existing config should point at --force, got %v", err)
	}

	if _, err := env.run(t, "init", "--force"); err != nil {
		t.Fatalf("init --force failed: %v", err)
	}
	cfg, err := config.LoadFrom(env.config)
	if err != nil {
		t.Fatalf("config does not load: %v", err)
	}
	if cfg.Search.K != config.DefaultK {
		t.Errorf("k = %d, want the default %d", cfg.Search.K, config.DefaultK)
	}
}
