package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/nao1215/revigodl/internal/config"
	"github.com/nao1215/revigodl/internal/database"
	"github.com/nao1215/revigodl/internal/report"
	"github.com/spf13/cobra"
)

var (
	// errInvalidRunID is returned when the history argument is not a positive integer.
	errInvalidRunID = errors.New("invalid run ID")

	// errRunNotFound is returned when no run has the requested ID.
	errRunNotFound = errors.New("run not found")
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List recorded runs or show one of them",
		Long: `History lists runs recorded with --history (or "history: true" in the
configuration file), newest first. With a run ID it prints that run's
summary, artifacts included.

Examples:
  # Show the last 20 runs as a markdown table
  revigodl history

  # Show the last 5 runs as JSON
  revigodl history --limit 5 --format json

  # Show run 3 in detail
  revigodl history 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit, "Maximum number of runs to list")
	cmd.Flags().String("format", config.DefaultSummaryFormat, "Output format: text, markdown or json")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	if err := loadConfigFile(cmd, cfg); err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if limit <= 0 {
		return fmt.Errorf("%w: %d", config.ErrInvalidHistoryLimit, limit)
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	w, err := report.NewWriter(report.Format(format), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	var runID int64
	if len(args) == 1 {
		if runID, err = strconv.ParseInt(args[0], 10, 64); err != nil || runID <= 0 {
			return fmt.Errorf("%w: %q", errInvalidRunID, args[0])
		}
	}

	db, err := database.Open(cfg.HistoryDir, database.Options{EnableWAL: true})
	if errors.Is(err, database.ErrNotFound) {
		if runID != 0 {
			return fmt.Errorf("%w: %d", errRunNotFound, runID)
		}
		_, err = w.WriteHistory(nil)
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	if runID != 0 {
		run, err := db.GetRun(cmd.Context(), runID)
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("%w: %d", errRunNotFound, runID)
		}
		_, err = w.WriteRun(run)
		return err
	}

	records, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	_, err = w.WriteHistory(records)
	return err
}
