package model

import (
	"errors"
	"fmt"
)

var (
	// Asset was never minted or has no content
	ErrNotFound = errors.New("not found")

	// Caller lacks the required relationship with the asset
	ErrUnauthorized = errors.New("unauthorized")

	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidRecipient    = fmt.Errorf("%w: invalid recipient", ErrInvalidInput)
	ErrInvalidPrice        = fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	ErrInsufficientPayment = fmt.Errorf("%w: payment must equal the price", ErrInvalidInput)

	ErrNotListed     = errors.New("asset is not listed for sale")
	ErrAlreadyListed = errors.New("asset is already listed for sale")

	// Same action on the same asset is still in flight
	ErrAlreadyPending = errors.New("action already pending")

	// Submitter declined to sign or the call was malformed before dispatch
	ErrRejected = errors.New("rejected by the user")

	// Ledger executed the transaction and it failed
	ErrReverted = errors.New("transaction reverted")

	ErrUnresolvableContent = errors.New("content unresolvable")
	ErrMalformedContent    = errors.New("content malformed")
)

// True for errors of the taxonomy above, other errors are unexpected
func IsKnown(err error) bool {
	for _, target := range []error{
		ErrNotFound,
		ErrUnauthorized,
		ErrInvalidInput,
		ErrNotListed,
		ErrAlreadyListed,
		ErrAlreadyPending,
		ErrRejected,
		ErrReverted,
		ErrUnresolvableContent,
		ErrMalformedContent,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
