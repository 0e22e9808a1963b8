package executor

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/aretw0/stepviz/pkg/domain"
)

// MaxValues bounds generated live inputs.
const MaxValues = 256

// RandomValues returns n values in [1, 99]. Ascending sorts them, as binary
// search requires.
func RandomValues(n int, ascending bool) ([]int, error) {
	if n < 1 || n > MaxValues {
		return nil, fmt.Errorf("%w: size must be between 1 and %d, got %d", domain.ErrInvalidParams, MaxValues, n)
	}
	values := make([]int, n)
	for i := range values {
		values[i] = 1 + rand.IntN(99)
	}
	if ascending {
		sort.Ints(values)
	}
	return values, nil
}

// InputFor returns values when given, or n random values suited to alg.
func InputFor(alg Algorithm, values []int, n int) ([]int, error) {
	if len(values) > 0 {
		return values, nil
	}
	return RandomValues(n, alg.Validate != nil && alg.Kind == KindSearch)
}
