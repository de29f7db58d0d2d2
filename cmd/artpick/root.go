package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/mmcdole/artpick/internal/adapter"
	"github.com/mmcdole/artpick/internal/adapter/source/artic"
	"github.com/mmcdole/artpick/internal/domain"
	"github.com/mmcdole/artpick/internal/service"
	"github.com/mmcdole/artpick/internal/store"
	"github.com/mmcdole/artpick/internal/tui"
)

var errNotTerminal = errors.New("stdout is not a terminal; use --select to run without the interface")

type rootOptions struct {
	configPath string
	pageSize   int
	baseURL    string
	selectN    int
	output     string
}

// selectionReport is what headless mode prints
type selectionReport struct {
	Requested int                     `json:"requested" yaml:"requested"`
	Selected  int                     `json:"selected" yaml:"selected"`
	Total     int                     `json:"total,omitempty" yaml:"total,omitempty"`
	Error     string                  `json:"error,omitempty" yaml:"error,omitempty"`
	Entries   []domain.SelectionEntry `json:"entries" yaml:"entries"`
}

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func newRootCmd(version string) *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:   "artpick",
		Short: "Browse the artworks catalogue and select records across pages",
		Long: "artpick pages through the Art Institute of Chicago artworks API in a table.\n" +
			"The selection survives navigation and can be extended to the first N records\n" +
			"of the catalogue, fetching pages that were never displayed.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `  # Browse interactively
  artpick

  # Print the first 40 records as YAML without the interface
  artpick --select 40

  # Same, as JSON, 24 records per request
  artpick --select 40 --output json --page-size 24`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default is the user config dir)")
	flags.IntVar(&opts.pageSize, "page-size", 0, "records per page (overrides table.page_size)")
	flags.StringVar(&opts.baseURL, "base-url", "", "API base URL (overrides source.base_url)")
	flags.IntVar(&opts.selectN, "select", 0, "select the first N records, print them and exit")
	flags.StringVarP(&opts.output, "output", "o", "yaml", "headless output format: yaml or json")

	return cmd
}

func run(cmd *cobra.Command, opts rootOptions) error {
	headless := cmd.Flags().Changed("select")
	if opts.output != "yaml" && opts.output != "json" {
		return fmt.Errorf("unknown output format %q", opts.output)
	}
	if !headless && !isTerminal(os.Stdout) {
		return errNotTerminal
	}

	cfg, err := adapter.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("page-size") {
		cfg.Table.PageSize = opts.pageSize
	}
	if opts.baseURL != "" {
		cfg.Source.BaseURL = opts.baseURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sessionID := uuid.NewString()
	logger, closeLog, err := adapter.SetupLogger(&cfg.Logging, sessionID)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		defer closeLog()
	}
	slog.SetDefault(logger)

	logger.Info("starting artpick", "version", cmd.Version, "headless", headless)

	client := artic.NewClient(cfg.Source.BaseURL, artic.Options{
		Timeout:    cfg.Source.Timeout,
		MaxRetries: cfg.Source.MaxRetries,
		UserAgent:  cfg.Source.UserAgent,
	}, logger)

	records, err := store.NewRecordStore(cfg.SpillPath(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to create record store: %w", err)
	}
	defer func() {
		if err := records.Close(); err != nil {
			logger.Warn("failed to close record store", "error", err)
		}
	}()

	ctrl := service.NewController(service.NewPageFetcher(client, logger), records, cfg.Table.PageSize, logger)
	defer ctrl.Close()

	if headless {
		return runHeadless(cmd.Context(), cmd.OutOrStdout(), ctrl, opts.selectN, opts.output, logger)
	}
	return runTUI(ctrl, cfg.Table.PageSizes, logger)
}

func runTUI(ctrl *service.Controller, pageSizes []int, logger *slog.Logger) error {
	p := tea.NewProgram(
		tui.NewModel(ctrl, pageSizes),
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runHeadless selects the first n records and prints them. A failure part
// way through still prints what was selected before returning the error.
func runHeadless(ctx context.Context, out io.Writer, ctrl *service.Controller, n int, format string, logger *slog.Logger) error {
	if n < 1 {
		return fmt.Errorf("--select must be at least 1, got %d", n)
	}

	snap := ctrl.Snapshot()
	if _, err := ctrl.ChangePage(ctx, 1, snap.PageSize); err != nil {
		return fmt.Errorf("failed to load first page: %w", err)
	}

	snap, selErr := ctrl.SelectFirstN(ctx, n, func(collected, wanted int) {
		logger.Debug("select progress", "collected", collected, "wanted", wanted)
	})

	report := selectionReport{
		Requested: n,
		Selected:  snap.SelectedCount,
		Entries:   snap.Selected,
	}
	if snap.TotalKnown() {
		report.Total = snap.TotalRecords
	}
	if selErr != nil {
		report.Error = selErr.Error()
	}

	if err := writeReport(out, report, format); err != nil {
		return err
	}
	if selErr != nil {
		return fmt.Errorf("selection incomplete: %w", selErr)
	}
	return nil
}

func writeReport(out io.Writer, report selectionReport, format string) error {
	if report.Entries == nil {
		report.Entries = []domain.SelectionEntry{}
	}
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	default:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	}
}
