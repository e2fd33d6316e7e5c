package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	LedgerKindRPC    = "rpc"
	LedgerKindMemory = "memory"
)

type Ledger struct {
	// rpc - JSON-RPC node, memory - in-process contract, used in development and tests
	Kind string

	// JSON-RPC endpoint of the node
	RpcUrl string

	// Address of the DigitalAsset contract
	ContractAddress string

	// Hex encoded private key used to sign transactions. Empty disables writes.
	PrivateKey string

	// Symbol reported by the in-memory contract
	MemorySymbol string

	// Timeout of a single read call
	CallTimeout time.Duration

	// Receipt polling
	ConfirmationMaxInterval time.Duration
	ConfirmationMaxElapsed  time.Duration
}

func setLedgerDefaults() {
	viper.SetDefault("Ledger.Kind", LedgerKindRPC)
	viper.SetDefault("Ledger.RpcUrl", "http://127.0.0.1:8545")
	viper.SetDefault("Ledger.ContractAddress", "")
	viper.SetDefault("Ledger.PrivateKey", "")
	viper.SetDefault("Ledger.MemorySymbol", "DA")
	viper.SetDefault("Ledger.CallTimeout", "15s")
	viper.SetDefault("Ledger.ConfirmationMaxInterval", "4s")
	viper.SetDefault("Ledger.ConfirmationMaxElapsed", "3m")
}
