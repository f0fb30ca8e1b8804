// Command titanic trains and compares survival classifiers on the Titanic
// passenger dataset: it loads the CSV, prints the inferred schema, runs the
// preprocessing pipeline and reports each model's held-out accuracy.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"titanicml/pkg/config"
	"titanicml/pkg/dataset"
	"titanicml/pkg/run"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "titanic:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	root := &cobra.Command{
		Use:           "titanic",
		Short:         "Train and evaluate survival classifiers on the Titanic dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging and metrics")

	loadConfig := func(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return cfg, nil, err
		}
		if verbose {
			cfg.Verbose = true
		}
		log, err := newLogger(cfg.Verbose)
		if err != nil {
			return cfg, nil, err
		}
		return cfg, log, nil
	}

	root.AddCommand(newRunCmd(loadConfig))
	root.AddCommand(newSchemaCmd(loadConfig))
	root.AddCommand(newPrepCmd(loadConfig))
	return root
}

type configLoader func(cmd *cobra.Command) (config.Config, *zap.Logger, error)

func newRunCmd(load configLoader) *cobra.Command {
	var (
		data      string
		testRatio float64
		seed      int64
		cvFolds   int
		chart     string
		saveDir   string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline and print per-model accuracy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()
			if cmd.Flags().Changed("data") {
				cfg.Data = data
			}
			if cmd.Flags().Changed("test-ratio") {
				cfg.Split.TestRatio = testRatio
			}
			if cmd.Flags().Changed("seed") {
				cfg.Split.Seed = seed
			}
			if cmd.Flags().Changed("cv") {
				cfg.Split.CVFolds = cvFolds
			}
			if cmd.Flags().Changed("chart") {
				cfg.Chart = chart
			}
			if cmd.Flags().Changed("save-dir") {
				cfg.SaveDir = saveDir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run.Execute(cfg, log, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "path to the passenger CSV")
	cmd.Flags().Float64Var(&testRatio, "test-ratio", 0.2, "held-out fraction")
	cmd.Flags().Int64Var(&seed, "seed", 42, "split and model seed")
	cmd.Flags().IntVar(&cvFolds, "cv", 0, "k-fold cross-validation instead of a single split")
	cmd.Flags().StringVar(&chart, "chart", "", "write an accuracy bar chart PNG")
	cmd.Flags().StringVar(&saveDir, "save-dir", "", "persist serializable fitted models here")
	return cmd
}

func newSchemaCmd(load configLoader) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the inferred schema of the dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()
			if cmd.Flags().Changed("data") {
				cfg.Data = data
			}
			frame, err := dataset.ReadCSV(cfg.Data, log)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), frame.Schema().String())
			return nil
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "path to the passenger CSV")
	return cmd
}

func newPrepCmd(load configLoader) *cobra.Command {
	var (
		data   string
		output string
	)
	cmd := &cobra.Command{
		Use:   "prep",
		Short: "Run preprocessing only and write the feature matrix as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()
			if cmd.Flags().Changed("data") {
				cfg.Data = data
			}
			return run.Prepare(cfg, output, log)
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "path to the passenger CSV")
	cmd.Flags().StringVar(&output, "output", "prepared.csv", "output CSV path")
	return cmd
}

// newLogger builds the stderr logger: info-level console output when
// verbose, warnings only otherwise. Report lines go to stdout either way.
func newLogger(verbose bool) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.InfoLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
