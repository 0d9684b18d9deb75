package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Domain-specific hash types. GeneratorHash identifies a generator's
// structural description, PopKey a memoized per-outcome count distribution,
// ResultKey a whole-evaluation result.
type (
	GeneratorHash Hash
	PopKey        Hash
	ResultKey     Hash
)

// String conversions
func (h GeneratorHash) String() string { return Hash(h).String() }
func (h PopKey) String() string        { return Hash(h).String() }
func (h ResultKey) String() string     { return Hash(h).String() }

// StateKey builds a canonical structural key for an opaque state value.
// The dynamic type is included so identically-shaped states of different
// types never collide.
func StateKey(state any) string {
	return fmt.Sprintf("%T|%+v", state, state)
}

// Hash computation helpers

// ComputeGeneratorHash hashes a generator's structural description: a kind
// tag plus canonical part strings supplied by the generator itself.
func ComputeGeneratorHash(kind string, parts ...string) GeneratorHash {
	var data strings.Builder
	data.WriteString(kind)
	for _, p := range parts {
		data.WriteString("\x1f")
		data.WriteString(p)
	}
	return GeneratorHash(NewHash([]byte(data.String())))
}

// ComputePopKey keys a generator's local count distribution by structural
// description, residual state, the outcome being popped, and the sweep
// order. The outcome position fixes the remaining-outcome suffix.
func ComputePopKey(gen GeneratorHash, stateKey string, outcome any, order Order) PopKey {
	var data strings.Builder
	data.WriteString(gen.String())
	data.WriteString("\x1f")
	data.WriteString(stateKey)
	data.WriteString("\x1f")
	fmt.Fprintf(&data, "%T|%v", outcome, outcome)
	data.WriteString("\x1f")
	data.WriteString(order.String())
	return PopKey(NewHash([]byte(data.String())))
}

// ComputeResultKey keys a whole-evaluation result by evaluator identity,
// the structural descriptions of every generator, and the sweep order.
func ComputeResultKey(evaluatorKey string, gens []GeneratorHash, order Order) ResultKey {
	var data strings.Builder
	data.WriteString(evaluatorKey)
	for _, g := range gens {
		data.WriteString("\x1f")
		data.WriteString(g.String())
	}
	data.WriteString("\x1f")
	data.WriteString(order.String())
	return ResultKey(NewHash([]byte(data.String())))
}
