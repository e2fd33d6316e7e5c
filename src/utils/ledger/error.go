package ledger

import "errors"

var (
	ErrUnknownReceipt  = errors.New("unknown receipt")
	ErrNoContract      = errors.New("contract address not configured")
	ErrSignerMissing   = errors.New("no private key configured, writes are disabled")
	ErrUnknownMintedId = errors.New("failed to determine minted asset id")
)
