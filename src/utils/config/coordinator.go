package config

import (
	"time"

	"github.com/spf13/viper"
)

type Coordinator struct {
	// Max time spent waiting for a transaction to be included
	ConfirmationTimeout time.Duration

	// Capacity of the channel with finished transactions
	OutputBufferSize int
}

func setCoordinatorDefaults() {
	viper.SetDefault("Coordinator.ConfirmationTimeout", "5m")
	viper.SetDefault("Coordinator.OutputBufferSize", "100")
}
