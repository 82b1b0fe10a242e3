// Package version reports walletmux build information.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/walletmux/version.Version=v0.3.0" ./cmd/walletmux
//
// Missing values fall back to the module's embedded VCS settings.
package version
