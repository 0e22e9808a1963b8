package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepviz/pkg/domain"
	"github.com/aretw0/stepviz/pkg/executor"
)

var sortCmd = &cobra.Command{
	Use:       "sort <algorithm>",
	Short:     "Run a sorting algorithm live",
	Long:      `Runs a sorting algorithm against --values, or --size random values, and draws every comparison and swap as it happens. q or Ctrl-C stops the run.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: executor.Names(executor.KindSort),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLive(cmd, args[0], executor.KindSort)
	},
}

var searchCmd = &cobra.Command{
	Use:       "search <algorithm>",
	Short:     "Run a searching algorithm live",
	Long:      `Runs a searching algorithm for --target against --values, or --size random values. Random input is sorted for binary search.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: executor.Names(executor.KindSearch),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLive(cmd, args[0], executor.KindSearch)
	},
}

func runLive(cmd *cobra.Command, name string, kind executor.Kind) error {
	alg, err := executor.Lookup(name)
	if err != nil {
		return err
	}
	if alg.Kind != kind {
		return fmt.Errorf("%w: %q is not a %s algorithm", domain.ErrUnknownAlgorithm, name, cmd.Name())
	}

	values, _ := cmd.Flags().GetIntSlice("values")
	size, _ := cmd.Flags().GetInt("size")
	target, _ := cmd.Flags().GetInt("target")
	values, err = executor.InputFor(alg, values, size)
	if err != nil {
		return err
	}

	r, restore, err := newRunner(cmd, nil)
	defer restore()
	if err != nil {
		return err
	}

	eng := newEngine(domain.LifecycleHooks{})
	l := eng.NewLivePlayer()
	if err := l.SetSpeed(speedFlag(cmd)); err != nil {
		return err
	}
	out, err := r.Live(cmd.Context(), l, alg.Name, values, target)
	if err != nil {
		return err
	}
	logger.Debug("live run finished", "algorithm", alg.Name, "status", out.Status,
		"comparisons", out.Stats.Comparisons, "swaps", out.Stats.Swaps)
	if out.Status == domain.RunFailed {
		if out.Err != nil {
			return out.Err
		}
		return fmt.Errorf("%s failed: %s", alg.Name, out.Error)
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{sortCmd, searchCmd} {
		addPresentFlags(c)
		c.Flags().IntSlice("values", nil, "Input values; random when empty")
		c.Flags().IntP("size", "n", 16, "Number of random values")
		rootCmd.AddCommand(c)
	}
	searchCmd.Flags().IntP("target", "t", 0, "Value to look for")
}
