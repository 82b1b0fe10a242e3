package bridge

import "fmt"

// Config holds bridge HTTP configuration.
type Config struct {
	Host            string   `yaml:"host" mapstructure:"host"`
	Port            int      `yaml:"port" mapstructure:"port" validate:"min=0,max=65535"`
	ReadTimeout     int      `yaml:"read_timeout" mapstructure:"read_timeout"`         // seconds
	WriteTimeout    int      `yaml:"write_timeout" mapstructure:"write_timeout"`       // seconds
	IdleTimeout     int      `yaml:"idle_timeout" mapstructure:"idle_timeout"`         // seconds
	ShutdownTimeout int      `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"` // seconds
	KeepAlive       int      `yaml:"keep_alive" mapstructure:"keep_alive"`             // seconds between SSE comments
	MaxBodyBytes    int64    `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	AllowedOrigins  []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8546
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 60
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 120
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 5
	}
	if c.KeepAlive == 0 {
		c.KeepAlive = 30
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = 1 << 20
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("bridge.port must be between 0 and 65535 (got: %d)", c.Port)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.IdleTimeout < 0 || c.ShutdownTimeout < 0 {
		return fmt.Errorf("bridge timeouts must be non-negative")
	}
	return nil
}

// Addr returns host:port.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
