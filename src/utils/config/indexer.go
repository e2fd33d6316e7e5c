package config

import (
	"github.com/spf13/viper"
)

type Indexer struct {
	// Max number of assets processed concurrently in one pass
	MaxWorkers int

	// Max number of assets waiting for a worker
	MaxQueueSize int
}

func setIndexerDefaults() {
	viper.SetDefault("Indexer.MaxWorkers", "12")
	viper.SetDefault("Indexer.MaxQueueSize", "64")
}
