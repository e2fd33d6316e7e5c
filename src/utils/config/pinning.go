package config

import (
	"time"

	"github.com/spf13/viper"
)

type Pinning struct {
	// Pinata API
	ApiUrl    string
	ApiKey    string
	ApiSecret string

	// Takes precedence over the key pair when set
	Jwt string

	// CID version of pinned content
	CidVersion int

	// Scheme of the returned content addresses
	Scheme string

	// Upload timeout
	RequestTimeout time.Duration

	// Max uploads per second
	Limit int
}

func setPinningDefaults() {
	viper.SetDefault("Pinning.ApiUrl", "https://api.pinata.cloud")
	viper.SetDefault("Pinning.ApiKey", "")
	viper.SetDefault("Pinning.ApiSecret", "")
	viper.SetDefault("Pinning.Jwt", "")
	viper.SetDefault("Pinning.CidVersion", "1")
	viper.SetDefault("Pinning.Scheme", "ipfs")
	viper.SetDefault("Pinning.RequestTimeout", "2m")
	viper.SetDefault("Pinning.Limit", "3")
}
