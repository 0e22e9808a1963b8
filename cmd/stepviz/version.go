package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepviz"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of stepviz",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "stepviz version %s\n", strings.TrimSpace(stepviz.Version))
	},
}

var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List the available algorithms by kind",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stepviz.Algorithms())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(algorithmsCmd)
}
