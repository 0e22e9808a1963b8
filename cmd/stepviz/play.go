package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepviz/pkg/backtrack"
	"github.com/aretw0/stepviz/pkg/bst"
	"github.com/aretw0/stepviz/pkg/domain"
)

var queensCmd = &cobra.Command{
	Use:   "queens [n]",
	Short: "Play the N-Queens backtracking search",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := cfg.Params()
		params.Algorithm = "queens"
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: board size %q", domain.ErrInvalidParams, args[0])
			}
			params.Size = n
		}
		return playProducer(cmd, params)
	},
}

var permuteCmd = &cobra.Command{
	Use:   "permute <value>...",
	Short: "Play the generation of every permutation of the values",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseInts(args)
		if err != nil {
			return err
		}
		params := cfg.Params()
		params.Algorithm = "permutations"
		params.Values = values
		return playProducer(cmd, params)
	},
}

var subsetsCmd = &cobra.Command{
	Use:   "subsets <value>...",
	Short: "Play the search for subsets of the values that add up to --target",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseInts(args)
		if err != nil {
			return err
		}
		target, _ := cmd.Flags().GetInt("target")
		params := cfg.Params()
		params.Algorithm = "subset-sum"
		params.Values = values
		params.Target = target
		return playProducer(cmd, params)
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree <insert|search|delete|inorder|preorder|postorder> [key]",
	Short: "Play one binary search tree operation",
	Long: `Builds a tree from --keys, inserted in order, and plays the narrated steps of
one operation on it. insert, search and delete take a key argument.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, _ := cmd.Flags().GetIntSlice("keys")
		arg := ""
		if len(args) == 2 {
			arg = args[1]
		}

		tree := bst.New(keys...)
		eng := newEngine(domain.LifecycleHooks{})
		seq, err := eng.ApplyTree(cmd.Context(), args[0], tree, arg)
		if err != nil {
			return err
		}

		r, restore, err := newRunner(cmd, bst.Pseudocode)
		defer restore()
		if err != nil {
			return err
		}
		p := eng.NewPlayer(domain.Params{Speed: speedFlag(cmd)})
		if err := p.Load(seq); err != nil {
			return err
		}
		if err := r.Play(cmd.Context(), p); err != nil {
			return err
		}
		return r.Handler.SystemOutput(cmd.Context(), "inorder: "+joinInts(tree.Inorder()))
	},
}

// playProducer materializes params and plays the sequence until it ends or
// the user quits.
func playProducer(cmd *cobra.Command, params domain.Params) error {
	params.Speed = speedFlag(cmd)
	eng := newEngine(domain.LifecycleHooks{})
	seq, err := eng.Produce(cmd.Context(), params)
	if err != nil {
		return err
	}

	listing, _ := backtrack.Pseudocode(params.Algorithm)
	r, restore, err := newRunner(cmd, listing)
	defer restore()
	if err != nil {
		return err
	}

	p := eng.NewPlayer(params)
	if err := p.Load(seq); err != nil {
		return err
	}
	if err := r.Play(cmd.Context(), p); err != nil {
		return err
	}
	return r.Handler.SystemOutput(cmd.Context(), fmt.Sprintf("%s: %d steps", params.Algorithm, seq.Len()))
}

func parseInts(args []string) ([]int, error) {
	out := make([]int, 0, len(args))
	for _, a := range args {
		for _, field := range strings.Split(a, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			v, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not an integer", domain.ErrInvalidParams, field)
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}

func init() {
	for _, c := range []*cobra.Command{queensCmd, permuteCmd, subsetsCmd, treeCmd} {
		addPresentFlags(c)
		rootCmd.AddCommand(c)
	}
	subsetsCmd.Flags().IntP("target", "t", 0, "Sum the subsets must reach")
	treeCmd.Flags().IntSlice("keys", nil, "Keys inserted into the tree before the operation")
}
