package cli

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/khanglvm/delta-ego/internal/config"
	"github.com/khanglvm/delta-ego/internal/mcp"
	"github.com/khanglvm/delta-ego/internal/session"
	"github.com/khanglvm/delta-ego/internal/storage"
)

// NewServeCmd creates the 'serve' command for running the MCP server.
//
// The server exposes vad_search, vad_analyze, vad_lookup and vad_history
// over stdio, all sharing one session for the configured actor.
func NewServeCmd() *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio transport)",
		Long: `Start the delta-ego MCP server using stdio transport.

This server exposes 4 tools to AI clients:
  • vad_search  - Rank emotion terms around a VAD point
  • vad_analyze - Analyze the session trajectory
  • vad_lookup  - Find emotion terms by word
  • vad_history - List logged searches

A default configuration is created on first run.`,
		Example: `  # Run directly
  delta-ego serve

  # Register with an MCP client
  claude mcp add delta-ego -- delta-ego serve --catalogue ~/vad.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(actor)
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "Session actor (default from config)")

	return cmd
}

// runServe starts the MCP server with stdio transport and signal handling.
func runServe(actor string) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if catalogueFlag != "" {
		cfg.Catalogue = catalogueFlag
	}

	searcher, err := openSearcher(cfg)
	if err != nil {
		return err
	}
	defer searcher.Close()

	tracker, store := newTracker(cfg)
	var history storage.Storage
	if tracker != nil {
		defer store.Close()
		defer tracker.Stop()
		history = store
	}

	if actor == "" {
		actor = cfg.Session.Actor
	}
	sess := session.New(actor, searcher, sessionOptions(cfg, tracker))
	server := mcp.NewServer(sess, searcher, *cfg.Search, history)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run()
	}()

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v, shutting down gracefully...", sig)
		return nil
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
