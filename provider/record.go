package provider

import (
	"encoding/json"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Record is a registered wallet: its announcement plus the accounts and chain
// last observed from it. Info and Provider never change; the cache does.
type Record struct {
	info     ProviderInfo
	provider Provider

	mu       sync.RWMutex
	accounts []string
	chainID  string
}

func newRecord(d Detail) *Record {
	return &Record{info: d.Info, provider: d.Provider}
}

// Info returns the announced metadata.
func (r *Record) Info() ProviderInfo { return r.info }

// UUID returns the announced uuid.
func (r *Record) UUID() string { return r.info.UUID }

// Provider returns the wallet's provider.
func (r *Record) Provider() Provider { return r.provider }

// Accounts returns a copy of the cached accounts. It is empty until the wallet
// reports accounts.
func (r *Record) Accounts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.accounts))
	copy(out, r.accounts)
	return out
}

// ChainID returns the cached chain id as a 0x-prefixed hex quantity, or "".
func (r *Record) ChainID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.chainID
}

// ChainIDBig returns the cached chain id as an integer.
func (r *Record) ChainIDBig() (*big.Int, bool) {
	id := r.ChainID()
	if id == "" {
		return nil, false
	}
	n, err := hexutil.DecodeBig(id)
	if err != nil {
		return nil, false
	}
	return n, true
}

// Snapshot is a point-in-time copy of a Record.
type Snapshot struct {
	Info     ProviderInfo `json:"info"`
	Accounts []string     `json:"accounts"`
	ChainID  string       `json:"chainId,omitempty"`
}

// Snapshot copies the record's metadata and cache.
func (r *Record) Snapshot() Snapshot {
	return Snapshot{Info: r.info, Accounts: r.Accounts(), ChainID: r.ChainID()}
}

// observeResult updates the cache from a successful request.
func (r *Record) observeResult(method string, result any) {
	switch method {
	case "eth_accounts", "eth_requestAccounts":
		if accounts, ok := decodeAccounts(result); ok {
			r.setAccounts(accounts)
		}
	case "eth_chainId":
		if id, ok := decodeChainID(result); ok {
			r.setChainID(id)
		}
	}
}

// observeEvent updates the cache from a relayed event.
func (r *Record) observeEvent(ev Event) {
	switch ev.Name {
	case EventAccountsChanged:
		if accounts, ok := decodeAccounts(ev.Data); ok {
			r.setAccounts(accounts)
		}
	case EventChainChanged:
		if id, ok := decodeChainID(ev.Data); ok {
			r.setChainID(id)
		}
	case EventConnect:
		if id, ok := decodeConnectChainID(ev.Data); ok {
			r.setChainID(id)
		}
	}
}

func (r *Record) setAccounts(accounts []string) {
	r.mu.Lock()
	r.accounts = accounts
	r.mu.Unlock()
}

func (r *Record) setChainID(id string) {
	r.mu.Lock()
	r.chainID = id
	r.mu.Unlock()
}

// decodeAccounts accepts []string, []any of strings, or a JSON array.
// Hex addresses are normalized to their checksummed form.
func decodeAccounts(v any) ([]string, bool) {
	var raw []string
	switch t := v.(type) {
	case []string:
		raw = t
	case []any:
		raw = make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			raw = append(raw, s)
		}
	case json.RawMessage:
		if err := json.Unmarshal(t, &raw); err != nil {
			return nil, false
		}
	case []byte:
		if err := json.Unmarshal(t, &raw); err != nil {
			return nil, false
		}
	default:
		return nil, false
	}

	out := make([]string, len(raw))
	for i, a := range raw {
		if common.IsHexAddress(a) {
			out[i] = common.HexToAddress(a).Hex()
		} else {
			out[i] = a
		}
	}
	return out, true
}

// decodeChainID accepts a hex or decimal string, an integer, or a JSON string.
// The result is a canonical 0x-prefixed quantity.
func decodeChainID(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return canonicalChainID(t)
	case json.RawMessage:
		var s string
		if err := json.Unmarshal(t, &s); err != nil {
			return "", false
		}
		return canonicalChainID(s)
	case uint64:
		return hexutil.EncodeUint64(t), true
	case int:
		if t < 0 {
			return "", false
		}
		return hexutil.EncodeUint64(uint64(t)), true
	case int64:
		if t < 0 {
			return "", false
		}
		return hexutil.EncodeUint64(uint64(t)), true
	case float64:
		if t < 0 || t != float64(uint64(t)) {
			return "", false
		}
		return hexutil.EncodeUint64(uint64(t)), true
	case *big.Int:
		if t == nil || t.Sign() < 0 {
			return "", false
		}
		return hexutil.EncodeBig(t), true
	}
	return "", false
}

func decodeConnectChainID(v any) (string, bool) {
	switch t := v.(type) {
	case ConnectInfo:
		return canonicalChainID(t.ChainID)
	case *ConnectInfo:
		if t == nil {
			return "", false
		}
		return canonicalChainID(t.ChainID)
	case map[string]any:
		return decodeChainID(t["chainId"])
	case json.RawMessage:
		var info ConnectInfo
		if err := json.Unmarshal(t, &info); err != nil {
			return "", false
		}
		return canonicalChainID(info.ChainID)
	}
	return "", false
}

func canonicalChainID(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok || n.Sign() < 0 {
		return "", false
	}
	return hexutil.EncodeBig(n), true
}
