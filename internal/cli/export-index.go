package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/khanglvm/delta-ego/internal/catalogue"
)

// NewExportIndexCmd creates the export-index command.
func NewExportIndexCmd() *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export-index",
		Short: "Export the validated catalogue for grep/jq search",
		Long: `Write the loaded catalogue, with invalid rows already dropped, to a file.

Default output: ~/.delta-ego-index.jsonl
Formats: jsonl (one entry per line), json, csv, tsv`,
		Example: `  # Export to default location
  delta-ego export-index

  # Cleaned TSV copy of a messy lexicon
  delta-ego export-index --catalogue raw.csv --format tsv --output clean.tsv

Grep usage examples:
  # Find a term
  grep '"term":"anxious"' ~/.delta-ego-index.jsonl

  # Strongly negative terms
  jq -c 'select(.valence < -0.8)' ~/.delta-ego-index.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportIndex(format, output)
		},
	}

	cmd.Flags().StringVar(&format, "format", catalogue.ExportJSONL, "Output format: json, jsonl, csv or tsv")
	cmd.Flags().StringVar(&output, "output", "", "Output path (default: ~/.delta-ego-index.<format>)")

	return cmd
}

// runExportIndex executes the export-index command.
func runExportIndex(format, output string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, report, err := openCatalogue(cfg)
	if err != nil {
		return err
	}

	if output == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		output = filepath.Join(home, ".delta-ego-index."+format)
	}

	lockFile, err := acquireFileLock(output)
	if err != nil {
		return fmt.Errorf("failed to acquire file lock: %w", err)
	}
	defer releaseFileLock(lockFile)

	if err := writeIndex(c, output, format); err != nil {
		return err
	}

	fmt.Printf("✓ Exported %d entries to %s\n", c.Len(), output)
	if n := len(report.Warnings); n > 0 {
		fmt.Printf("  (%d invalid rows skipped)\n", n)
	}
	return nil
}

// writeIndex writes the catalogue to path. The file is only replaced once
// the whole catalogue has been encoded.
func writeIndex(c *catalogue.Catalogue, path, format string) error {
	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}

	if err := catalogue.Write(file, c, format); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write index file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// acquireFileLock acquires an exclusive lock on the index file.
func acquireFileLock(path string) (*os.File, error) {
	lockPath := path + ".lock"
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	// Non-blocking: a second export fails fast instead of queueing.
	err = unix.Flock(int(lockFile.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		lockFile.Close()
		return nil, fmt.Errorf("failed to acquire lock (another export in progress?): %w", err)
	}

	return lockFile, nil
}

// releaseFileLock releases the file lock and removes the lock file.
func releaseFileLock(lockFile *os.File) error {
	if lockFile == nil {
		return nil
	}

	lockPath := lockFile.Name()
	unix.Flock(int(lockFile.Fd()), unix.LOCK_UN)
	lockFile.Close()

	return os.Remove(lockPath)
}
