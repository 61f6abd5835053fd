package tree

import "errors"

var (
	// ErrInvalidTransition is returned when an operation is not allowed in
	// the node's current bud state.
	ErrInvalidTransition = errors.New("invalid bud state transition")

	// ErrAlreadyPresent is returned when a structural mutation would be
	// applied a second time.
	ErrAlreadyPresent = errors.New("already present")

	// ErrNoEligibleNode is returned when a selection finds no candidate.
	ErrNoEligibleNode = errors.New("no eligible node")

	// ErrOrderOutOfRange is returned for orders with no branch bucket.
	ErrOrderOutOfRange = errors.New("order out of range")
)
