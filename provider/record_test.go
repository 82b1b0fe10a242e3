package provider

import (
	"encoding/json"
	"math/big"
	"reflect"
	"testing"
)

func TestDecodeAccounts(t *testing.T) {
	const lower = "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"
	const checksummed = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

	tests := []struct {
		name string
		in   any
		want []string
		ok   bool
	}{
		{"string slice", []string{lower}, []string{checksummed}, true},
		{"any slice", []any{lower}, []string{checksummed}, true},
		{"raw json", json.RawMessage(`["` + lower + `"]`), []string{checksummed}, true},
		{"empty", []string{}, []string{}, true},
		{"non-address kept", []string{"alice"}, []string{"alice"}, true},
		{"mixed any slice", []any{lower, 1}, nil, false},
		{"bad json", json.RawMessage(`{}`), nil, false},
		{"unsupported", 42, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := decodeAccounts(tt.in)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDecodeChainID(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
		ok   bool
	}{
		{"hex", "0x1", "0x1", true},
		{"hex leading zeros", "0x01", "0x1", true},
		{"bare prefix", "0x", "", false},
		{"decimal", "137", "0x89", true},
		{"raw json", json.RawMessage(`"0xa"`), "0xa", true},
		{"int", 10, "0xa", true},
		{"uint64", uint64(1), "0x1", true},
		{"float64", float64(56), "0x38", true},
		{"big", big.NewInt(250), "0xfa", true},
		{"negative", -1, "", false},
		{"empty", "", "", false},
		{"garbage", "mainnet", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := decodeChainID(tt.in)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v (%q)", tt.ok, ok, got)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRecord_ObserveResultAndEvents(t *testing.T) {
	rec := newRecord(Detail{Info: ProviderInfo{UUID: "u", Name: "n"}})
	if len(rec.Accounts()) != 0 || rec.ChainID() != "" {
		t.Fatal("expected empty cache on a new record")
	}

	rec.observeResult("eth_chainId", "0x1")
	rec.observeResult("eth_accounts", []string{"0x0000000000000000000000000000000000000001"})
	if rec.ChainID() != "0x1" {
		t.Errorf("expected chain 0x1, got %q", rec.ChainID())
	}
	if got := rec.Accounts(); len(got) != 1 {
		t.Errorf("expected one account, got %v", got)
	}

	rec.observeEvent(Event{Name: EventChainChanged, Data: "0x89"})
	if rec.ChainID() != "0x89" {
		t.Errorf("expected chain 0x89 after chainChanged, got %q", rec.ChainID())
	}
	rec.observeEvent(Event{Name: EventAccountsChanged, Data: []string{}})
	if got := rec.Accounts(); len(got) != 0 {
		t.Errorf("expected accounts cleared, got %v", got)
	}
	rec.observeEvent(Event{Name: EventConnect, Data: ConnectInfo{ChainID: "0xa"}})
	if rec.ChainID() != "0xa" {
		t.Errorf("expected chain 0xa after connect, got %q", rec.ChainID())
	}
	rec.observeEvent(Event{Name: EventConnect, Data: map[string]any{"chainId": "0x38"}})
	if rec.ChainID() != "0x38" {
		t.Errorf("expected chain 0x38 after connect map, got %q", rec.ChainID())
	}

	n, ok := rec.ChainIDBig()
	if !ok || n.Int64() != 56 {
		t.Errorf("expected chain 56, got %v (ok=%v)", n, ok)
	}

	rec.observeResult("eth_sendTransaction", "0xhash")
	if rec.ChainID() != "0x38" {
		t.Errorf("expected unrelated method to leave cache alone, got %q", rec.ChainID())
	}
}

func TestRecord_AccountsReturnsCopy(t *testing.T) {
	rec := newRecord(Detail{Info: ProviderInfo{UUID: "u", Name: "n"}})
	rec.setAccounts([]string{"a"})
	got := rec.Accounts()
	got[0] = "mutated"
	if rec.Accounts()[0] != "a" {
		t.Error("expected Accounts to return a copy")
	}
}
