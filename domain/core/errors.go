package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Order negotiation errors
	ErrUnsupportedOrder = errors.New("unsupported outcome order")
	ErrOrderConflict    = errors.New("no outcome order accepted by all participants")

	// Configuration errors
	ErrInvalidPool      = errors.New("invalid pool specification")
	ErrInvalidDeal      = errors.New("invalid deal specification")
	ErrInvalidOperator  = errors.New("invalid multiset operator")
	ErrInvalidEvaluator = errors.New("invalid evaluator configuration")
	ErrNegativeCount    = errors.New("negative count violates operator policy")
	ErrNegativeWeight   = errors.New("negative weight")
	ErrNonFinalizable   = errors.New("evaluator state not assignable to result outcome")

	// Internal consistency errors
	ErrStateNotExhausted = errors.New("generator state not exhausted at end of sweep")

	// Fixed-point solver errors
	ErrStateSpaceExceeded = errors.New("fixed-point state space exceeded limit")
	ErrIterationLimit     = errors.New("fixed-point iteration limit exceeded")
	ErrNoAbsorption       = errors.New("fixed-point process cannot reach an absorbing state")
)

// Error constructors with context
func NewPoolError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidPool, reason)
}

func NewDealError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidDeal, reason)
}

func NewOperatorError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidOperator, reason)
}

func NewOrderConflictError(first, second Order) error {
	return fmt.Errorf("%w: tried %s then %s", ErrOrderConflict, first, second)
}

func NewExhaustionError(generator int, state string) error {
	return fmt.Errorf("%w: generator %d left in state %s", ErrStateNotExhausted, generator, state)
}

// Error checking helpers
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidPool) ||
		errors.Is(err, ErrInvalidDeal) ||
		errors.Is(err, ErrInvalidOperator) ||
		errors.Is(err, ErrInvalidEvaluator) ||
		errors.Is(err, ErrOrderConflict) ||
		errors.Is(err, ErrNonFinalizable)
}

func IsInternalError(err error) bool {
	return errors.Is(err, ErrStateNotExhausted) || errors.Is(err, ErrNegativeWeight)
}

func IsFixedPointError(err error) bool {
	return errors.Is(err, ErrStateSpaceExceeded) ||
		errors.Is(err, ErrIterationLimit) ||
		errors.Is(err, ErrNoAbsorption)
}
