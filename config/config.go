package config

import (
	"fmt"

	"github.com/kbukum/walletmux/bridge"
	"github.com/kbukum/walletmux/observability"
	"github.com/kbukum/walletmux/rpcwallet"
	"github.com/kbukum/walletmux/validation"
)

// Config is the walletmux daemon configuration.
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Bridge    bridge.Config        `yaml:"bridge" mapstructure:"bridge"`
	Wallets   []rpcwallet.Config   `yaml:"wallets" mapstructure:"wallets" validate:"dive"`
	Preferred []string             `yaml:"preferred" mapstructure:"preferred"`
	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults fills in defaults for every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Bridge.ApplyDefaults()
	for i := range c.Wallets {
		c.Wallets[i].ApplyDefaults()
	}
	c.Telemetry.ApplyDefaults()
}

// Validate checks the whole configuration. Call ApplyDefaults first so
// derived wallet UUIDs are present.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Bridge.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return err
	}
	seen := make(map[string]string, len(c.Wallets))
	for _, w := range c.Wallets {
		if prev, ok := seen[w.UUID]; ok {
			return fmt.Errorf("wallets: %q and %q share uuid %s", prev, w.Name, w.UUID)
		}
		seen[w.UUID] = w.Name
	}
	return nil
}
