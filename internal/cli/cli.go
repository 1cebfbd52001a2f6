// Package cli provides the command-line interface for offline crisis detection.
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"liquidity-crisis/internal/analysis"
	"liquidity-crisis/internal/config"
	"liquidity-crisis/internal/data"
	"liquidity-crisis/internal/logging"
	"liquidity-crisis/internal/model"
	"liquidity-crisis/internal/pipeline"
	"liquidity-crisis/internal/predict"
	"liquidity-crisis/internal/report"
)

// Exit codes. ExitValidation covers bad input; ExitInternal covers an
// unusable model and filesystem failures.
const (
	ExitSuccess    = 0
	ExitValidation = 1
	ExitInternal   = 2
)

// CLI holds the command-line interface state.
type CLI struct {
	rootCmd *cobra.Command
	out     io.Writer
	errOut  io.Writer
	cfg     *config.Config
	logger  *slog.Logger

	// Global flags
	configPath string
	modelPath  string
	dataPath   string
	verbose    bool
}

// New creates a new CLI writing results to out and diagnostics to errOut.
func New(out, errOut io.Writer) *CLI {
	c := &CLI{out: out, errOut: errOut}
	c.rootCmd = c.newRootCmd()
	return c
}

// Execute runs the CLI with args and returns an exit code.
func (c *CLI) Execute(args []string) int {
	c.rootCmd.SetArgs(args)
	if err := c.rootCmd.Execute(); err != nil {
		fmt.Fprintf(c.errOut, "error: %v\n", err)
		return exitCode(err)
	}
	return ExitSuccess
}

func exitCode(err error) int {
	var (
		modelErr *pipeline.ModelError
		pathErr  *fs.PathError
	)
	switch {
	case errors.As(err, &modelErr), errors.As(err, &pathErr), errors.Is(err, analysis.ErrNonFinite):
		return ExitInternal
	default:
		return ExitValidation
	}
}

func (c *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cli",
		Short: "Detect liquidity crises in historical crypto datasets",
		Long: `Applies a pre-trained liquidity model to a CSV dataset, flags the rows whose
predicted liquidity falls below the bottom-decile threshold of their
cryptocurrency, and exports the augmented dataset.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initConfig()
		},
	}
	cmd.SetOut(c.out)
	cmd.SetErr(c.errOut)

	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file (optional)")
	cmd.PersistentFlags().StringVar(&c.modelPath, "model", "", "model artifact path (overrides config)")
	cmd.PersistentFlags().StringVar(&c.dataPath, "data", "", "dataset CSV path")
	cmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log pipeline details to stderr")

	cmd.AddCommand(
		c.newDetectCmd(),
		c.newGroupsCmd(),
		c.newOverviewCmd(),
		c.newModelCmd(),
	)
	return cmd
}

func (c *CLI) initConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.modelPath != "" {
		cfg.Model.Path = c.modelPath
	}
	c.cfg = cfg

	logCfg := config.LoggingConfig{Level: "warn", Format: "text"}
	if c.verbose {
		logCfg.Level = "debug"
	}
	c.logger = logging.New(logCfg, c.errOut)
	return nil
}

func (c *CLI) engine() *pipeline.Engine {
	return pipeline.New(predict.NewFileHandle(c.cfg.Model.Path), c.cfg, nil, c.logger)
}

// loadDataset reads --data and returns it with an engine bound to the configured model.
func (c *CLI) loadDataset() (*pipeline.Engine, *model.Dataset, error) {
	if c.dataPath == "" {
		return nil, nil, fmt.Errorf("--data is required")
	}
	ds, err := data.LoadDatasetCSV(c.dataPath)
	if err != nil {
		return nil, nil, err
	}
	return c.engine(), ds, nil
}

func (c *CLI) newDetectCmd() *cobra.Command {
	var (
		crypto   string
		outPath  string
		xlsxPath string
		pngPath  string
	)
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Run crisis detection for one cryptocurrency",
		Example: `  cli detect --data history.csv --crypto BTC --model liquidity_prediction_model.yaml \
      --out results/predictions_with_crisis.csv --chart results/liquidity.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, ds, err := c.loadDataset()
			if err != nil {
				return err
			}
			res, err := engine.Run(ds, crypto)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Data for %s: %d rows\n", res.Group, len(res.Predictions))
			for _, line := range report.Lines(res) {
				fmt.Fprintln(w, line)
			}

			if outPath != "" {
				if err := pipeline.WriteCSVFile(outPath, res); err != nil {
					return err
				}
				fmt.Fprintf(w, "Wrote %d rows to %s\n", len(res.Predictions), outPath)
			}
			if xlsxPath != "" {
				if err := pipeline.WriteXLSXFile(xlsxPath, res); err != nil {
					return err
				}
				fmt.Fprintf(w, "Wrote workbook to %s\n", xlsxPath)
			}
			if pngPath != "" {
				if err := writeChart(pngPath, res); err != nil {
					return err
				}
				fmt.Fprintf(w, "Wrote chart to %s\n", pngPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&crypto, "crypto", "", "cryptocurrency to analyze (default: first in dataset)")
	cmd.Flags().StringVar(&outPath, "out", "", "augmented CSV output path")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "augmented XLSX output path")
	cmd.Flags().StringVar(&pngPath, "chart", "", "PNG chart output path")
	return cmd
}

func (c *CLI) newGroupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List the cryptocurrencies found in a dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, ds, err := c.loadDataset()
			if err != nil {
				return err
			}
			groups, err := engine.Groups(ds)
			if err != nil {
				return err
			}
			for _, g := range groups {
				fmt.Fprintln(cmd.OutOrStdout(), g)
			}
			return nil
		},
	}
}

func (c *CLI) newOverviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Rank every cryptocurrency of a dataset by crisis share",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, ds, err := c.loadDataset()
			if err != nil {
				return err
			}
			ranked, err := engine.Overview(ds)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "rank\tcrypto\trows\tcrisis_days\tshare\tthreshold")
			for i, g := range ranked {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%.3f\t%s\n",
					i+1, g.Group, g.Count, g.CrisisCount, g.CrisisShare, report.FormatThreshold(g.Threshold))
			}
			return tw.Flush()
		},
	}
}

func (c *CLI) newModelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "model",
		Short: "Show the model artifact and its feature schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := predict.NewFileHandle(c.cfg.Model.Path).Get()
			if err != nil {
				return &pipeline.ModelError{Err: err}
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "model: %s\n", provider.Name())
			fmt.Fprintf(w, "path: %s\n", c.cfg.Model.Path)
			fmt.Fprintln(w, "features:")
			for i, f := range provider.Features() {
				fmt.Fprintf(w, "  %d. %s\n", i+1, f)
			}
			return nil
		},
	}
}

func writeChart(path string, res *pipeline.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.RenderChart(f, res, report.DefaultChartOptions()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
