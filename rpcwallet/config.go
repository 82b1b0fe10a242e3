package rpcwallet

import (
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/walletmux/provider"
)

const (
	defaultPollInterval = 4 * time.Second
	defaultRateLimit    = 20
	defaultBurst        = 5
	defaultCallTimeout  = 10 * time.Second
	defaultConcurrency  = 16
	defaultMaxFailures  = 5
	defaultCooldown     = 30 * time.Second
)

// Config describes one remote wallet.
type Config struct {
	// UUID identifies the wallet. Derived from URL when empty.
	UUID string `yaml:"uuid" mapstructure:"uuid"`
	Name string `yaml:"name" mapstructure:"name" validate:"required"`
	Icon string `yaml:"icon" mapstructure:"icon" validate:"omitempty,url"`
	RDNS string `yaml:"rdns" mapstructure:"rdns" validate:"omitempty,rdns"`
	// URL is the JSON-RPC endpoint (http, https, ws or wss).
	URL string `yaml:"url" mapstructure:"url" validate:"required,url"`

	// PollInterval is how often the watcher checks chain and accounts.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	// CallTimeout bounds watcher polls.
	CallTimeout time.Duration `yaml:"call_timeout" mapstructure:"call_timeout"`
	// RateLimit is the maximum requests per second sent to the endpoint.
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit" validate:"min=0"`
	Burst     int     `yaml:"burst" mapstructure:"burst" validate:"min=0"`
	// MaxConcurrent caps requests in flight to the endpoint.
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent" validate:"min=0"`
	// MaxFailures consecutive transport failures open the circuit; requests
	// then fail fast until Cooldown has passed.
	MaxFailures int           `yaml:"max_failures" mapstructure:"max_failures" validate:"min=0"`
	Cooldown    time.Duration `yaml:"cooldown" mapstructure:"cooldown"`
}

// ApplyDefaults fills in zero values.
func (c *Config) ApplyDefaults() {
	if c.UUID == "" && c.URL != "" {
		c.UUID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(c.URL)).String()
	}
	if c.PollInterval == 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.CallTimeout == 0 {
		c.CallTimeout = defaultCallTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = defaultRateLimit
	}
	if c.Burst == 0 {
		c.Burst = defaultBurst
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = defaultConcurrency
	}
	if c.MaxFailures == 0 {
		c.MaxFailures = defaultMaxFailures
	}
	if c.Cooldown == 0 {
		c.Cooldown = defaultCooldown
	}
}

// Info returns the announced metadata for this wallet.
func (c Config) Info() provider.ProviderInfo {
	return provider.ProviderInfo{
		UUID: c.UUID,
		Name: c.Name,
		Icon: c.Icon,
		RDNS: c.RDNS,
	}
}
