package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"doclink/internal/analysis"
	"doclink/internal/config"
	"doclink/internal/graph"
	"doclink/internal/pipeline"
	"doclink/internal/storage"
)

var (
	rootCmd = &cobra.Command{
		Use:           "doclink",
		Short:         "Resolve inheritance, mixins and borrows between JSDoc doclets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	configPath string
	dbPath     string
	verbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorColor.Sprint("error: ")+err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "doclink.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the run history database (SQLite)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	resolveCmd.Flags().StringVarP(&dumpPath, "dump", "o", "", "Write the resolved doclets as JSON")
	resolveCmd.Flags().StringVar(&metricsPath, "metrics", "", "Write Prometheus metrics to a textfile")
	resolveCmd.Flags().BoolVar(&inheritUndocumented, "inherit-undocumented", false, "Also inherit members without a description")
	resolveCmd.Flags().BoolVar(&showInfo, "info", false, "Print info diagnostics too")

	queryCmd.Flags().StringVar(&runID, "run", "", "Run id (defaults to the latest run)")
	queryCmd.Flags().StringVar(&kind, "kind", "", "Only doclets of this kind")
	queryCmd.Flags().StringVar(&memberof, "memberof", "", "Only direct members of this longname")
	queryCmd.Flags().BoolVar(&asJSON, "json", false, "Print full doclets as JSON")

	impactCmd.Flags().StringVar(&runID, "run", "", "Run id (defaults to the latest run)")
	impactCmd.Flags().StringVar(&fromDump, "from", "", "Read the resolved doclets from a JSON dump instead of the database")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(runsCmd)
}

// loadConfig applies command line overrides on top of the config file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		cfg.Output.Database = dbPath
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func openStore() (*storage.SQLiteStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Output.Database == "" {
		return nil, errors.New("no database configured; pass --db or set output.database")
	}
	return storage.NewSQLiteStore(cfg.Output.Database)
}

// pickRun returns id, or the latest run when id is empty.
func pickRun(ctx context.Context, store storage.RunStore, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	run, err := store.LatestRun(ctx)
	if err != nil {
		return "", fmt.Errorf("no run to query: %w", err)
	}
	return run.ID, nil
}

var (
	dumpPath            string
	metricsPath         string
	inheritUndocumented bool
	showInfo            bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [path]",
	Short: "Extract doclets from a project and resolve their relationships",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if len(args) > 0 {
			cfg.Project.Root = args[0]
		}
		if dumpPath != "" {
			cfg.Output.Dump = dumpPath
		}
		if metricsPath != "" {
			cfg.Output.Metrics = metricsPath
		}
		if inheritUndocumented {
			cfg.Resolve.InheritUndocumented = true
		}

		fmt.Fprintf(cmd.OutOrStdout(), "📂 Resolving %s\n", cfg.Project.Root)
		runner := pipeline.NewRunner(cfg, afero.NewOsFs(), cfg.NewLogger(cmd.ErrOrStderr()))
		report, err := runner.Run(cmd.Context())
		if err != nil {
			return err
		}

		printReport(cmd.OutOrStdout(), report, showInfo)
		return nil
	},
}

var (
	runID    string
	kind     string
	memberof string
	asJSON   bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "List doclets of a saved run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		id, err := pickRun(ctx, store, runID)
		if err != nil {
			return err
		}

		var col *graph.Collection
		switch {
		case kind != "":
			docs, err := store.QueryByKind(ctx, id, kind)
			if err != nil {
				return err
			}
			col = graph.NewCollection(docs)
		case memberof != "":
			docs, err := store.Children(ctx, id, memberof)
			if err != nil {
				return err
			}
			col = graph.NewCollection(docs)
		default:
			if col, err = store.LoadRun(ctx, id); err != nil {
				return err
			}
		}

		if asJSON {
			return graph.WriteJSON(cmd.OutOrStdout(), col)
		}
		printDoclets(cmd.OutOrStdout(), col.Doclets())
		return nil
	},
}

var fromDump string

var impactCmd = &cobra.Command{
	Use:   "impact <longname>",
	Short: "Show which doclets derive their content from a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		col, err := loadResolved(cmd.Context())
		if err != nil {
			return err
		}

		report, err := analysis.NewAnalyzer(col).AnalyzeImpact(args[0])
		if err != nil {
			return err
		}
		printImpact(cmd.OutOrStdout(), report)
		return nil
	},
}

func loadResolved(ctx context.Context) (*graph.Collection, error) {
	if fromDump != "" {
		return graph.LoadFile(afero.NewOsFs(), fromDump)
	}
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	id, err := pickRun(ctx, store, runID)
	if err != nil {
		return nil, err
	}
	return store.LoadRun(ctx, id)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List saved runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Runs(cmd.Context())
		if err != nil {
			return err
		}
		printRuns(cmd.OutOrStdout(), runs)
		return nil
	},
}
