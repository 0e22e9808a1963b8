package backtrack

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/stepviz/pkg/domain"
)

// Producer builds a sequence from parameters.
type Producer func(p domain.Params) (*domain.Sequence, error)

var producers = map[string]Producer{
	"queens": func(p domain.Params) (*domain.Sequence, error) {
		return Queens(p.Size)
	},
	"permutations": func(p domain.Params) (*domain.Sequence, error) {
		return Permutations(p.Values)
	},
	"subset-sum": func(p domain.Params) (*domain.Sequence, error) {
		return SubsetSum(p.Values, p.Target)
	},
}

var aliases = map[string]string{
	"n-queens": "queens",
	"nqueens":  "queens",
	"permute":  "permutations",
	"subsets":  "subset-sum",
}

// Produce dispatches to the producer registered under p.Algorithm.
func Produce(p domain.Params) (*domain.Sequence, error) {
	name := Canonical(p.Algorithm)
	fn, ok := producers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAlgorithm, p.Algorithm)
	}
	return fn(p)
}

// Canonical resolves aliases and case to a registered producer name.
func Canonical(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[name]; ok {
		return alias
	}
	return name
}

// Names lists the registered producers.
func Names() []string {
	names := make([]string, 0, len(producers))
	for name := range producers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pseudocode returns the listing for a producer.
func Pseudocode(name string) ([]string, bool) {
	switch Canonical(name) {
	case "queens":
		return QueensPseudocode, true
	case "permutations":
		return PermutationsPseudocode, true
	case "subset-sum":
		return SubsetSumPseudocode, true
	}
	return nil, false
}
