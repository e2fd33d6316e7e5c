package ledger

import (
	"context"

	"github.com/warp-contracts/market/src/utils/config"
)

// Ledger selected by config.Ledger.Kind
func New(ctx context.Context, cfg *config.Config) (Ledger, error) {
	if cfg.Ledger.Kind == config.LedgerKindMemory {
		return NewMemory(cfg.Ledger.MemorySymbol), nil
	}
	return NewClient(ctx, cfg)
}

// Signer of the configured private key
func NewSigner(config *config.Config) (Signer, error) {
	if config.Ledger.PrivateKey == "" {
		return nil, ErrSignerMissing
	}
	return NewKeySigner(config.Ledger.PrivateKey)
}
