package provider

import (
	apperrors "github.com/kbukum/walletmux/errors"
	"github.com/kbukum/walletmux/validation"
)

// ProviderInfo is the metadata a wallet announces about itself.
type ProviderInfo struct {
	UUID string `json:"uuid" validate:"required"`
	Name string `json:"name" validate:"required"`
	// Icon is a URL or data URI.
	Icon string `json:"icon,omitempty" validate:"omitempty,url"`
	// RDNS is the wallet's reverse-DNS identifier, e.g. "io.metamask".
	RDNS string `json:"rdns,omitempty" validate:"omitempty,rdns"`
}

// Detail is an announcement: wallet metadata plus its provider.
type Detail struct {
	Info     ProviderInfo `json:"info"`
	Provider Provider     `json:"-"`
}

// Validate checks that the announcement can be registered.
func (d Detail) Validate() error {
	if d.Provider == nil {
		return apperrors.InvalidAnnouncement("provider is nil")
	}
	if err := validation.Validate(d.Info); err != nil {
		appErr := apperrors.InvalidAnnouncement("invalid provider info").WithCause(err)
		if ve, ok := apperrors.AsAppError(err); ok {
			if fields, ok := ve.Details["fields"]; ok {
				appErr.WithDetail("fields", fields)
			}
		}
		return appErr
	}
	return nil
}
