package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/revigodl/internal/artifact"
	"github.com/nao1215/revigodl/internal/config"
	"github.com/nao1215/revigodl/internal/database"
	"github.com/nao1215/revigodl/internal/log"
	"github.com/nao1215/revigodl/internal/model"
	"github.com/nao1215/revigodl/internal/pipeline"
	"github.com/nao1215/revigodl/internal/report"
	"github.com/nao1215/revigodl/internal/rscript"
	"github.com/nao1215/revigodl/internal/session"
	"github.com/spf13/cobra"
)

// errNoInputArg is returned when the GO list argument is missing.
var errNoInputArg = errors.New("requires exactly one GO list file argument")

// suppressionFlags maps each artifact to its suppression flag.
var suppressionFlags = []struct {
	kind      model.ArtifactKind
	name      string
	shorthand string
	usage     string
}{
	{model.TreemapScript, "notreemapr", "t", "Do not write the treemap R script (and do not render it)"},
	{model.TreemapTable, "notreemapcsv", "c", "Do not write the treemap CSV table"},
	{model.ScatterScript, "noscatterr", "s", "Do not write the scatterplot R script (and do not render it)"},
	{model.ScatterTable, "noscattercsv", "a", "Do not write the scatterplot CSV table"},
}

// NewRootCmd creates the root command for revigodl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revigodl [flags] <gofile>",
		Short: "Download REVIGO treemap and scatterplot results for a GO list",
		Long: `revigodl submits a GO enrichment result to the REVIGO web service and
downloads what it generates:

  treemap.R     R script drawing the treemap (rendered with R)
  treemap.csv   table behind the treemap
  scatter.R     R script drawing the scatterplot (rendered with R, saved
                as revigo_scatter.pdf)
  scatter.csv   table behind the scatterplot

The input file holds one GO term per line: the GO id, a TAB, and the p-value.
A file named like a subcommand (history, init, version) runs that command
instead; pass it as ./history.

Examples:
  # Download everything into the current directory
  revigodl go_terms.txt

  # Prefix every output with "run1_"
  revigodl -p run1 go_terms.txt

  # Only keep the CSV tables
  revigodl -t -s go_terms.txt

  # Record the run and print a summary
  revigodl --history --summary go_terms.txt`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("%w, got %d", errNoInputArg, len(args))
			}
			return nil
		},
		RunE:          runRootCmd,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("config", "",
		"Configuration file path (default: .revigodl in current directory, XDG config or home directory)")

	cmd.Flags().StringP("prefix", "p", "", "Prefix for all output files (a trailing \"_\" is added)")
	for _, f := range suppressionFlags {
		cmd.Flags().BoolP(f.name, f.shorthand, false, f.usage)
	}

	cmd.Flags().StringP("output-dir", "o", config.DefaultOutputDir, "Directory to write the artifacts to")
	cmd.Flags().String("url", config.DefaultServiceURL, "REVIGO service root URL")
	cmd.Flags().String("r-command", config.DefaultRCommand, "Command used to render R scripts; the script name is appended")
	cmd.Flags().String("user-agent", config.DefaultUserAgent, "User-Agent header sent to REVIGO")
	cmd.Flags().Duration("timeout", config.DefaultTimeout, "Timeout for each HTTP request (0 means none)")
	cmd.Flags().Bool("history", false, "Record the run in the history database")
	cmd.Flags().Bool("summary", false, "Print a summary of the run to stdout")
	cmd.Flags().String("format", config.DefaultSummaryFormat, "Summary format: text, markdown or json")

	// Add subcommands
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runRootCmd executes the download.
func runRootCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runDownload(ctx, cfg, logger, cmd.OutOrStdout())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// loadConfigFile applies the configuration file to cfg.
// If the user explicitly specified a path, a missing file is an error;
// otherwise the defaults are kept.
func loadConfigFile(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath == "" {
		if cfg.ConfigFilePath != "" {
			return fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
		}
		return nil
	}

	file, err := config.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	cfg.ApplyFile(file)
	return nil
}

// buildConfig creates a Config from the configuration file and cobra flags.
// Flags the user set explicitly override the file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	if err := loadConfigFile(cmd, cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	var err error

	if len(args) > 0 {
		cfg.InputPath = args[0]
	}
	cfg.Verbose = getVerboseFlag(cmd)

	if cfg.Prefix, err = flags.GetString("prefix"); err != nil {
		return nil, err
	}
	for _, f := range suppressionFlags {
		suppressed, err := flags.GetBool(f.name)
		if err != nil {
			return nil, err
		}
		cfg.SetSuppressed(f.kind, suppressed)
	}

	stringFlags := []struct {
		name string
		dst  *string
	}{
		{"output-dir", &cfg.OutputDir},
		{"url", &cfg.ServiceURL},
		{"r-command", &cfg.RCommand},
		{"user-agent", &cfg.UserAgent},
		{"format", &cfg.SummaryFormat},
	}
	for _, f := range stringFlags {
		if !flags.Changed(f.name) {
			continue
		}
		if *f.dst, err = flags.GetString(f.name); err != nil {
			return nil, err
		}
	}

	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("history") {
		if cfg.SaveHistory, err = flags.GetBool("history"); err != nil {
			return nil, err
		}
	}
	if cfg.Summary, err = flags.GetBool("summary"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
func setupLogger(w io.Writer, verbose bool) *slog.Logger {
	return log.NewSecureLogger(w, verbose)
}

// runDownload submits the GO list and downloads the artifacts.
func runDownload(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	var summary report.Writer
	if cfg.Summary {
		var err error
		summary, err = report.NewWriter(report.Format(cfg.SummaryFormat), out)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
	}

	doc, err := model.ReadDocument(cfg.InputPath)
	if err != nil {
		return err
	}

	browser, err := session.New(
		session.WithUserAgent(cfg.UserAgent),
		session.WithTimeout(cfg.Timeout),
		session.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	runner, err := rscript.NewCommandRunner(cfg.RCommand, logger)
	if err != nil {
		return err
	}

	prefix := cfg.OutputPrefix()
	run := model.NewRun(doc, cfg.ServiceURL, prefix)
	p := pipeline.Default(
		browser,
		artifact.NewWriter(cfg.OutputDir, prefix),
		runner,
		pipeline.Settings{ServiceURL: cfg.ServiceURL, Suppressed: cfg.Suppress},
		pipeline.WithLogger(logger),
	)

	logger.Info("starting download",
		"input", doc.Path,
		"digest", doc.Digest,
		"service", cfg.ServiceURL,
		"prefix", prefix,
		"outputDir", cfg.OutputDir,
	)

	runErr := p.Execute(ctx, run)
	run.Finish(runErr)

	if cfg.SaveHistory {
		saveRun(ctx, cfg.HistoryDir, run, logger)
	}
	if summary != nil {
		if _, err := summary.WriteRun(run); err != nil {
			logger.Warn("failed to write summary", "error", err)
		}
	}
	return runErr
}

// saveRun records run in the history database. Failures are logged and do
// not change the outcome of the run.
func saveRun(ctx context.Context, dir string, run *model.Run, logger *slog.Logger) {
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		logger.Warn("failed to open history database", "dir", dir, "error", err)
		return
	}
	defer db.Close()

	// The run context may already be cancelled; the record is still wanted.
	id, err := db.SaveRun(context.WithoutCancel(ctx), run)
	if err != nil {
		logger.Warn("failed to save run", "error", err)
		return
	}
	logger.Info("run saved to history", "id", id, "db", db.Path())
}
