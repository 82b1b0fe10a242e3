// Package config loads walletmux configuration.
//
// Values come from a YAML file, an optional .env file and WALLETMUX_*
// environment variables, in increasing order of precedence:
//
//	cfg, err := config.Load("walletmux", config.WithConfigFile("walletmux.yml"))
//
// Nested keys map to upper-case, underscore-separated variables, e.g.
// WALLETMUX_BRIDGE_PORT or WALLETMUX_LOGGING_LEVEL.
package config
