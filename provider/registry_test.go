package provider_test

import (
	"errors"
	"testing"

	apperrors "github.com/kbukum/walletmux/errors"
	"github.com/kbukum/walletmux/provider"
	"github.com/kbukum/walletmux/provider/providertest"
)

func TestRegistry_AnnounceAndLookup(t *testing.T) {
	r := provider.NewRegistry()
	w := providertest.New()

	rec, err := r.Announce(providertest.Detail("p1", "Wallet One", w))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.UUID() != "p1" || rec.Info().Name != "Wallet One" {
		t.Errorf("unexpected record info %+v", rec.Info())
	}
	if len(rec.Accounts()) != 0 {
		t.Errorf("expected empty account cache, got %v", rec.Accounts())
	}

	got, ok := r.Lookup("p1")
	if !ok || got != rec {
		t.Fatalf("expected lookup to return announced record")
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Error("expected lookup of unknown uuid to fail")
	}
}

func TestRegistry_ReannounceOverwrites(t *testing.T) {
	r := provider.NewRegistry()
	first := providertest.New()
	second := providertest.New()

	old, _ := r.Announce(providertest.Detail("p1", "Old", first))
	rec, err := r.Announce(providertest.Detail("p1", "New", second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec == old {
		t.Fatal("expected a fresh record on re-announce")
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 record, got %d", r.Len())
	}
	got, _ := r.Lookup("p1")
	if got.Info().Name != "New" || got.Provider() != second {
		t.Errorf("expected last announcement to win, got %+v", got.Info())
	}
}

func TestRegistry_RejectsInvalidAnnouncements(t *testing.T) {
	w := providertest.New()
	tests := []struct {
		name   string
		detail provider.Detail
	}{
		{"missing uuid", provider.Detail{Info: provider.ProviderInfo{Name: "x"}, Provider: w}},
		{"missing name", provider.Detail{Info: provider.ProviderInfo{UUID: "u"}, Provider: w}},
		{"nil provider", provider.Detail{Info: provider.ProviderInfo{UUID: "u", Name: "x"}}},
		{"bad rdns", provider.Detail{Info: provider.ProviderInfo{UUID: "u", Name: "x", RDNS: "nodots"}, Provider: w}},
		{"bad icon", provider.Detail{Info: provider.ProviderInfo{UUID: "u", Name: "x", Icon: "not a url"}, Provider: w}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := provider.NewRegistry()
			_, err := r.Announce(tt.detail)
			if err == nil {
				t.Fatal("expected error")
			}
			appErr, ok := apperrors.AsAppError(err)
			if !ok || appErr.Code != apperrors.ErrCodeInvalidAnnouncement {
				t.Errorf("expected INVALID_ANNOUNCEMENT, got %v", err)
			}
			if r.Len() != 0 {
				t.Errorf("expected nothing registered, got %d", r.Len())
			}
		})
	}
}

func TestRegistry_AcceptsIconAndRDNS(t *testing.T) {
	r := provider.NewRegistry()
	d := provider.Detail{
		Info: provider.ProviderInfo{
			UUID: "350670db-19fa-4704-a166-e52e178b59d2",
			Name: "Example Wallet",
			Icon: "data:image/svg+xml;base64,PHN2Zy8+",
			RDNS: "com.example.wallet",
		},
		Provider: providertest.New(),
	}
	if _, err := r.Announce(d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegistry_ListSorted(t *testing.T) {
	r := provider.NewRegistry()
	_, _ = r.Announce(providertest.Detail("b", "Zeta", providertest.New()))
	_, _ = r.Announce(providertest.Detail("c", "Alpha", providertest.New()))
	_, _ = r.Announce(providertest.Detail("a", "Alpha", providertest.New()))

	list := r.List()
	want := []string{"a", "c", "b"}
	if len(list) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(list))
	}
	for i, rec := range list {
		if rec.UUID() != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], rec.UUID())
		}
	}
}

func TestDetail_ValidateCarriesFieldErrors(t *testing.T) {
	err := provider.Detail{Provider: providertest.New()}.Validate()
	if !errors.Is(err, apperrors.InvalidAnnouncement("")) {
		t.Fatalf("expected INVALID_ANNOUNCEMENT, got %v", err)
	}
	appErr, _ := apperrors.AsAppError(err)
	if _, ok := appErr.Details["fields"]; !ok {
		t.Errorf("expected field details, got %v", appErr.Details)
	}
}
