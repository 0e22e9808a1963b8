package executor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/stepviz/pkg/domain"
)

// Kind decides how a completed run is finalized.
type Kind int

const (
	// KindSort runs end with every element marked sorted.
	KindSort Kind = iota
	// KindSearch runs keep their overlay; the hit, if any, is marked found.
	KindSearch
)

// Algorithm is a live algorithm body plus its preconditions.
type Algorithm struct {
	Name     string
	Kind     Kind
	Validate func(values []int, target int) error
	Body     func(r *Run) error
}

var registry = map[string]Algorithm{}

func register(alg Algorithm) {
	registry[alg.Name] = alg
}

func init() {
	register(Algorithm{Name: "bubble", Kind: KindSort, Body: bubbleSort})
	register(Algorithm{Name: "selection", Kind: KindSort, Body: selectionSort})
	register(Algorithm{Name: "insertion", Kind: KindSort, Body: insertionSort})
	register(Algorithm{Name: "quick", Kind: KindSort, Body: quickSort})
	register(Algorithm{Name: "merge", Kind: KindSort, Body: mergeSort})
	register(Algorithm{Name: "heap", Kind: KindSort, Body: heapSort})
	register(Algorithm{Name: "sleep", Kind: KindSort, Validate: nonNegative, Body: sleepSort})
	register(Algorithm{Name: "linear", Kind: KindSearch, Body: linearSearch})
	register(Algorithm{Name: "binary", Kind: KindSearch, Validate: ascending, Body: binarySearch})
}

// Lookup returns the algorithm registered under name. A trailing "-sort" or
// "-search" suffix is accepted.
func Lookup(name string) (Algorithm, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimSuffix(strings.TrimSuffix(key, "-sort"), "-search")
	alg, ok := registry[key]
	if !ok {
		return Algorithm{}, fmt.Errorf("%w: %q", domain.ErrUnknownAlgorithm, name)
	}
	return alg, nil
}

// Names lists registered algorithms of the given kind.
func Names(kind Kind) []string {
	var names []string
	for name, alg := range registry {
		if alg.Kind == kind {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// MaxSleepValue bounds sleep sort inputs, which wait v pacing units each.
const MaxSleepValue = 10_000

func nonNegative(values []int, _ int) error {
	for _, v := range values {
		if v < 0 || v > MaxSleepValue {
			return fmt.Errorf("%w: sleep sort needs values between 0 and %d, got %d", domain.ErrInvalidParams, MaxSleepValue, v)
		}
	}
	return nil
}

func ascending(values []int, _ int) error {
	if !sort.IntsAreSorted(values) {
		return fmt.Errorf("%w: binary search needs an ascending array", domain.ErrInvalidParams)
	}
	return nil
}
