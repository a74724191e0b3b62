/*
Package cli implements the delta-ego commands.

Every command resolves its configuration the same way: the --config flag,
then $DELTA_EGO_CONFIG, then ~/.delta-ego.json. A missing file is not an
error; the defaults are used instead. --catalogue overrides the catalogue
path from any of those sources.
*/
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/khanglvm/delta-ego/internal/catalogue"
	"github.com/khanglvm/delta-ego/internal/config"
	"github.com/khanglvm/delta-ego/internal/search"
	"github.com/khanglvm/delta-ego/internal/session"
	"github.com/khanglvm/delta-ego/internal/storage"
	"github.com/khanglvm/delta-ego/internal/tracking"
)

// Global flags shared by all commands.
var (
	configFlag    string
	catalogueFlag string
)

// AddGlobalFlags registers --config and --catalogue on the root command.
func AddGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default: $DELTA_EGO_CONFIG or ~/.delta-ego.json)")
	root.PersistentFlags().StringVar(&catalogueFlag, "catalogue", "", "VAD catalogue file (overrides config)")
}

// configPath returns the path commands read and write.
func configPath() (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	return config.GetDefaultConfigPath()
}

// loadConfig reads the configuration, falling back to the defaults.
func loadConfig() (*config.Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if catalogueFlag != "" {
		cfg.Catalogue = catalogueFlag
	}
	return cfg, nil
}

// openCatalogue loads the configured catalogue and logs skipped rows.
func openCatalogue(cfg *config.Config) (*catalogue.Catalogue, *catalogue.LoadReport, error) {
	if cfg.Catalogue == "" {
		return nil, nil, fmt.Errorf("no catalogue configured\n💡 Pass --catalogue, set %s, or add \"catalogue\" to the config file", config.EnvCatalogue)
	}
	return catalogue.Load(cfg.Catalogue)
}

// openSearcher loads the catalogue and builds both indexes.
func openSearcher(cfg *config.Config) (*search.Searcher, error) {
	c, _, err := openCatalogue(cfg)
	if err != nil {
		return nil, err
	}
	return search.NewSearcher(c)
}

// openStorage returns the search log, or nil when it is disabled.
// The returned storage is not initialized yet.
func openStorage(cfg *config.Config) *storage.SQLiteStorage {
	if !cfg.StorageEnabled() {
		return nil
	}
	return storage.NewStorage(cfg.Storage.Path)
}

// newTracker starts a background tracker when storage is enabled.
// Stop must be called to flush pending events.
func newTracker(cfg *config.Config) (*tracking.Tracker, *storage.SQLiteStorage) {
	store := openStorage(cfg)
	if store == nil {
		return nil, nil
	}
	tracker := tracking.NewTracker(store)
	if days := cfg.Storage.RetentionDays; days > 0 {
		if err := store.Cleanup(retention(days)); err != nil {
			log.Printf("Warning: failed to prune search history: %v", err)
		}
	}
	return tracker, store
}

// sessionOptions maps the configuration onto a session.
func sessionOptions(cfg *config.Config, tracker *tracking.Tracker) session.Options {
	opts := session.Options{
		HistoryLimit:  cfg.Session.HistoryLimit,
		AnalysisLimit: cfg.Session.AnalysisLimit,
		AutoAnalyze:   cfg.Session.AutoAnalyze,
		Axis:          cfg.EGO,
		Weights:       cfg.Weights,
		Variables:     cfg.Variables,
	}
	if tracker != nil {
		opts.Recorder = tracker
	}
	return opts
}

// writeJSON pretty-prints v.
func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
