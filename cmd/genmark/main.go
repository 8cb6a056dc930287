// Command genmark is the terminal client for the marketing content
// assistant backend: an interactive UI plus scripting subcommands.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jask/genmark/internal/api"
	"github.com/jask/genmark/internal/config"
	"github.com/jask/genmark/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries what every subcommand needs once flags are parsed.
type cli struct {
	apiURL string
	cfg    config.Config
	log    *slog.Logger
	client *api.Client
	closer io.Closer
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "genmark",
		Short:         "Competitor analysis, prompt ideas and content generation from the terminal",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.closer != nil {
				return c.closer.Close()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd)
		},
	}
	root.PersistentFlags().StringVar(&c.apiURL, "api-url", "", "backend base URL (overrides config)")

	root.AddCommand(tuiCmd(c))
	root.AddCommand(analyzeCmd(c))
	root.AddCommand(analysesCmd(c))
	root.AddCommand(promptsCmd(c))
	root.AddCommand(contentCmd(c))
	root.AddCommand(keysCmd(c))
	root.AddCommand(settingsCmd(c))
	root.AddCommand(initCmd(c))
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.apiURL != "" {
		cfg.API.BaseURL = c.apiURL
	}
	if cmd.Name() != "init" {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config %s: %w", config.Path(), err)
		}
	}
	c.cfg = cfg

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	// the terminal belongs to the UI, so it logs to a file
	out := cmd.ErrOrStderr()
	if isTUI(cmd) {
		f, err := openLogFile(cfg.Log.File)
		if err != nil {
			return err
		}
		out, c.closer = f, f
	}
	c.log = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))

	c.client, err = api.New(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(c.log),
		api.WithDetailCache(cfg.API.CacheSize),
	)
	return err
}

func isTUI(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == "tui"
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func (c *cli) defaults() tui.Defaults {
	// validated in setup
	provider, _ := api.ParseProvider(c.cfg.UI.DefaultProvider)
	kind, _ := api.ParseAnalysisType(c.cfg.UI.DefaultAnalysisType)
	ctype, _ := api.ParseContentType(c.cfg.UI.DefaultContentType)
	return tui.Defaults{
		Provider:     provider,
		AnalysisType: kind,
		ContentType:  ctype,
		NumIdeas:     c.cfg.UI.DefaultNumIdeas,
		ExportDir:    c.cfg.Export.Dir,
	}
}

func (c *cli) runTUI(cmd *cobra.Command) error {
	c.log.Info("starting ui", "api", c.client.BaseURL())
	app := tui.New(cmd.Context(), c.client, c.defaults(), tui.WithLogger(c.log))
	_, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	return err
}

func tuiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive terminal UI (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd)
		},
	}
}

func initCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the local config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Save(c.cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (api %s)\n", path, c.cfg.API.BaseURL)
			return nil
		},
	}
}
