// Package testkit provides the dice, deck, and pool fixtures the test
// suites share.
package testkit

import (
	"fmt"

	"godice/domain/dist"
	"godice/domain/pool"
)

// D builds a fair die with faces 1..sides.
func D(sides int) *dist.Die[int] {
	faces := make([]int, sides)
	for i := range sides {
		faces[i] = i + 1
	}
	d, err := dist.Uniform(faces...)
	if err != nil {
		panic(fmt.Sprintf("testkit: d%d: %v", sides, err))
	}
	return d
}

// D6 is a fair six-sided die.
func D6() *dist.Die[int] { return D(6) }

// D10 is a fair ten-sided die.
func D10() *dist.Die[int] { return D(10) }

// Coin is a two-outcome die: 0 (tails) and 1 (heads), weight 1 each.
func Coin() *dist.Die[int] {
	d, err := dist.Uniform(0, 1)
	if err != nil {
		panic(fmt.Sprintf("testkit: coin: %v", err))
	}
	return d
}

// WeightedDie builds a die from explicit face weights.
func WeightedDie(weights map[int]int) *dist.Die[int] {
	d, err := dist.FromCounts(weights)
	if err != nil {
		panic(fmt.Sprintf("testkit: weighted die: %v", err))
	}
	return d
}

// PoolOf builds a pool of n identical dice.
func PoolOf(n int, die *dist.Die[int]) *pool.Pool[int] {
	dice := make([]*dist.Die[int], n)
	for i := range n {
		dice[i] = die
	}
	p, err := pool.NewPool(dice...)
	if err != nil {
		panic(fmt.Sprintf("testkit: pool of %d: %v", n, err))
	}
	return p
}

// MiniDeck builds a small card deck keyed by rank: copies of each of the
// ranks 1..ranks.
func MiniDeck(ranks, copies int) *dist.Die[int] {
	weights := make(map[int]int, ranks)
	for r := 1; r <= ranks; r++ {
		weights[r] = copies
	}
	return WeightedDie(weights)
}
