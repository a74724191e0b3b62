package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testCatalogue = `term	valence	arousal	dominance
joy	0.8	0.6	0.7
joyful	0.85	0.65	0.6
fear	-0.7	0.8	-0.6
calm	0.4	-0.6	0.2
sad	-0.6	-0.4	-0.3
broken	oops	0.1	0.1
`

// testEnv is an isolated home with a catalogue and a config that logs
// searches into the temp directory.
type testEnv struct {
	dir       string
	config    string
	catalogue string
	history   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("DELTA_EGO_CONFIG", "")
	t.Setenv("DELTA_EGO_CATALOGUE", "")

	env := &testEnv{
		dir:       dir,
		config:    filepath.Join(dir, "config.json"),
		catalogue: filepath.Join(dir, "vad.tsv"),
		history:   filepath.Join(dir, "history.db"),
	}
	if err := os.WriteFile(env.catalogue, []byte(testCatalogue), 0644); err != nil {
		t.Fatalf("failed to write catalogue: %v", err)
	}
	cfg := `{
  "catalogue": "` + env.catalogue + `",
  "search": {"k": 3, "mode": "knn~l2 -S"},
  "storage": {"enabled": true, "path": "` + env.history + `"}
}`
	if err := os.WriteFile(env.config, []byte(cfg), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return env
}

// run executes the root command with --config pointing at the test config.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return e.runWithInput(t, "", args...)
}

func (e *testEnv) runWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	root.SetArgs(append([]string{"--config", e.config}, args...))

	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(input))

	err := root.Execute()
	return buf.String(), err
}
