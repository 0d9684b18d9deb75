package evals

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"godice/domain/core"
)

// Count counts how many drawn elements land in a target set. With an
// empty target set every outcome counts.
type Count[O cmp.Ordered] struct {
	targets map[O]struct{}
	key     string
}

// NewCount creates a counting evaluator over the given targets.
func NewCount[O cmp.Ordered](targets ...O) *Count[O] {
	c := &Count[O]{targets: make(map[O]struct{}, len(targets))}
	sorted := slices.Clone(targets)
	slices.Sort(sorted)
	var sb strings.Builder
	sb.WriteString("evals.count")
	for _, t := range sorted {
		c.targets[t] = struct{}{}
		fmt.Fprintf(&sb, ":%v", t)
	}
	c.key = sb.String()
	return c
}

// NextState adds the outcome's counts when the outcome is a target.
func (c *Count[O]) NextState(state int, _ core.Order, outcome O, counts []int) (int, bool, error) {
	if len(c.targets) > 0 {
		if _, ok := c.targets[outcome]; !ok {
			return state, false, nil
		}
	}
	for _, n := range counts {
		state += n
	}
	return state, false, nil
}

// ResultKey identifies count results in the whole-result cache.
func (c *Count[O]) ResultKey() string { return c.key }
