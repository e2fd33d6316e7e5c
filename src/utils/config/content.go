package config

import (
	"time"

	"github.com/spf13/viper"
)

type Content struct {
	// Gateway URL templates tried in order. Placeholders: {scheme}, {address}
	Gateways []string

	// Timeout of a single gateway request
	RequestTimeout time.Duration

	// Retries of 5xx responses on the same gateway
	RetryCount int

	// Requests per second sent to a single gateway host
	Limit float64

	// Longest accepted document in bytes, 0 disables the check
	MaxBodySize int64

	// Transport
	DialerTimeout       time.Duration
	DialerKeepAlive     time.Duration
	TLSHandshakeTimeout time.Duration
	IdleConnTimeout     time.Duration
	MaxIdleConnsPerHost int
}

func setContentDefaults() {
	viper.SetDefault("Content.Gateways", []string{
		"https://nftstorage.link/{scheme}/{address}",
		"https://ipfs.io/{scheme}/{address}",
		"https://cloudflare-ipfs.com/{scheme}/{address}",
		"https://dweb.link/{scheme}/{address}",
	})
	viper.SetDefault("Content.RequestTimeout", "10s")
	viper.SetDefault("Content.RetryCount", "1")
	viper.SetDefault("Content.Limit", "20")
	viper.SetDefault("Content.MaxBodySize", "1048576")
	viper.SetDefault("Content.DialerTimeout", "5s")
	viper.SetDefault("Content.DialerKeepAlive", "15s")
	viper.SetDefault("Content.TLSHandshakeTimeout", "5s")
	viper.SetDefault("Content.IdleConnTimeout", "30s")
	viper.SetDefault("Content.MaxIdleConnsPerHost", "8")
}
