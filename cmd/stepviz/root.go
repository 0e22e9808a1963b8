package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepviz"
	"github.com/aretw0/stepviz/internal/config"
	"github.com/aretw0/stepviz/internal/logging"
	"github.com/aretw0/stepviz/pkg/adapters/memory"
	"github.com/aretw0/stepviz/pkg/domain"
	"github.com/aretw0/stepviz/pkg/observability"
)

var (
	cfgFile  string
	logLevel string

	cfg    = config.Default()
	logger = logging.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "stepviz",
	Short: "stepviz animates algorithms one step at a time",
	Long: `stepviz records backtracking searches and binary search tree operations as
step sequences you can play, pause and scrub, and runs sorting and searching
algorithms live against a shared array you can watch and cancel.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			loaded.Log.Level = logLevel
		}
		level, err := logging.ParseLevel(loaded.Log.Level)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = logging.NewWithWriter(os.Stderr, level, loaded.Log.Format == "json")
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "stepviz.yaml", "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
}

// newEngine builds an engine from the loaded config. Without a cache option
// sequences are kept in memory for the life of the process.
func newEngine(hooks domain.LifecycleHooks, opts ...stepviz.Option) *stepviz.Engine {
	base := []stepviz.Option{
		stepviz.WithLogger(logger),
		stepviz.WithDelay(cfg.Delay()),
		stepviz.WithBasePeriod(cfg.BasePeriod()),
		stepviz.WithLifecycleHooks(observability.LogHooks(logger).Merge(hooks)),
		stepviz.WithCache(memory.New()),
	}
	return stepviz.New(append(base, opts...)...)
}
