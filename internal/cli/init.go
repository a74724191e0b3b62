package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/khanglvm/delta-ego/internal/config"
)

// NewInitCmd creates the 'init' command that writes a default configuration.
func NewInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Long: `Write a configuration file with every default filled in.

The format follows the file extension: .yaml and .yml are written as YAML,
anything else as JSON. An existing file is kept unless --force is given;
the previous version is saved next to it with a .bak suffix.`,
		Example: `  delta-ego init --catalogue ~/lexicons/nrc-vad.tsv
  delta-ego init --config ./delta-ego.yaml --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists: %s\n💡 Use --force to overwrite it", path)
			}

			cfg := config.NewConfig()
			cfg.Catalogue = catalogueFlag
			if cfg.Catalogue == "" {
				cfg.Catalogue = os.Getenv(config.EnvCatalogue)
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}
