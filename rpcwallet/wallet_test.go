package rpcwallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/walletmux/component"
	apperrors "github.com/kbukum/walletmux/errors"
	"github.com/kbukum/walletmux/provider"
	"github.com/kbukum/walletmux/provider/providertest"
)

// fakeNode is a minimal JSON-RPC endpoint with mutable state.
type fakeNode struct {
	mu       sync.Mutex
	chainID  string
	accounts []string
	down     bool
	errs     map[string]map[string]any
	last     map[string]any
	hits     int
}

func newFakeNode() *fakeNode {
	return &fakeNode{chainID: "0x1", accounts: []string{}, errs: map[string]map[string]any{}}
}

func (n *fakeNode) set(fn func(n *fakeNode)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fn(n)
}

func (n *fakeNode) lastRequest() map[string]any {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.hits++
	if n.down {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
		return
	}

	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	n.last = req

	resp := map[string]any{"jsonrpc": "2.0", "id": req["id"]}
	method, _ := req["method"].(string)
	switch {
	case n.errs[method] != nil:
		resp["error"] = n.errs[method]
	case method == "eth_chainId":
		resp["result"] = n.chainID
	case method == "eth_accounts":
		resp["result"] = n.accounts
	case method == "echo":
		resp["result"] = req["params"]
	default:
		resp["error"] = map[string]any{"code": -32601, "message": "the method " + method + " does not exist/is not available"}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func dialFake(t *testing.T, node *fakeNode) (*Wallet, *httptest.Server) {
	t.Helper()
	return dialFakeWith(t, node, nil)
}

func dialFakeWith(t *testing.T, node *fakeNode, tweak func(*Config)) (*Wallet, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(node)
	t.Cleanup(server.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cfg := Config{
		Name:         "Local Node",
		URL:          server.URL,
		PollInterval: time.Hour,
		CallTimeout:  2 * time.Second,
		RateLimit:    1000,
		Burst:        100,
	}
	if tweak != nil {
		tweak(&cfg)
	}
	w, err := Dial(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(w.Close)
	return w, server
}

func TestRequest_ReturnsRawResult(t *testing.T) {
	t.Parallel()

	w, _ := dialFake(t, newFakeNode())
	result, err := w.Request(context.Background(), provider.RequestArguments{Method: "eth_chainId"})
	require.NoError(t, err)

	raw, ok := result.(json.RawMessage)
	require.True(t, ok, "expected json.RawMessage, got %T", result)
	assert.JSONEq(t, `"0x1"`, string(raw))
}

func TestRequest_SpreadsParams(t *testing.T) {
	t.Parallel()

	node := newFakeNode()
	w, _ := dialFake(t, node)

	result, err := w.Request(context.Background(), provider.RequestArguments{
		Method: "echo",
		Params: []any{"0xabc", "latest"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `["0xabc","latest"]`, string(result.(json.RawMessage)))

	_, err = w.Request(context.Background(), provider.RequestArguments{
		Method: "echo",
		Params: json.RawMessage(`[{"to":"0x1"}]`),
	})
	require.NoError(t, err)
	params, ok := node.lastRequest()["params"].([]any)
	require.True(t, ok)
	require.Len(t, params, 1)
	assert.Equal(t, map[string]any{"to": "0x1"}, params[0])
}

func TestRequest_PreservesRPCError(t *testing.T) {
	t.Parallel()

	node := newFakeNode()
	node.set(func(n *fakeNode) {
		n.errs["eth_requestAccounts"] = map[string]any{
			"code":    4001,
			"message": "User rejected the request.",
			"data":    map[string]any{"reason": "denied"},
		}
	})
	w, _ := dialFake(t, node)

	_, err := w.Request(context.Background(), provider.RequestArguments{Method: "eth_requestAccounts"})
	require.Error(t, err)

	rpcErr, ok := apperrors.AsProviderRPCError(err)
	require.True(t, ok, "expected ProviderRPCError, got %T", err)
	assert.Equal(t, apperrors.CodeUserRejectedRequest, rpcErr.Code)
	assert.Equal(t, "User rejected the request.", rpcErr.Message)
	assert.True(t, rpcErr.UserRejected())
	assert.NotNil(t, rpcErr.Data)
}

func TestRequest_UnknownMethod(t *testing.T) {
	t.Parallel()

	w, _ := dialFake(t, newFakeNode())
	_, err := w.Request(context.Background(), provider.RequestArguments{Method: "eth_unknown"})
	rpcErr, ok := apperrors.AsProviderRPCError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeMethodNotFound, rpcErr.Code)
}

func TestRequest_TransportFailureIsDisconnected(t *testing.T) {
	t.Parallel()

	node := newFakeNode()
	node.set(func(n *fakeNode) { n.down = true })
	w, _ := dialFake(t, node)

	_, err := w.Request(context.Background(), provider.RequestArguments{Method: "eth_chainId"})
	rpcErr, ok := apperrors.AsProviderRPCError(err)
	require.True(t, ok, "expected ProviderRPCError, got %v", err)
	assert.Equal(t, apperrors.CodeDisconnected, rpcErr.Code)
}

func TestRequest_EmptyMethod(t *testing.T) {
	t.Parallel()

	w, _ := dialFake(t, newFakeNode())
	_, err := w.Request(context.Background(), provider.RequestArguments{})
	rpcErr, ok := apperrors.AsProviderRPCError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidRequest, rpcErr.Code)
}

func TestRequest_CanceledContext(t *testing.T) {
	t.Parallel()

	w, _ := dialFake(t, newFakeNode())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := w.Request(ctx, provider.RequestArguments{Method: "eth_chainId"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSpreadParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want int
		err  bool
	}{
		{"nil", nil, 0, false},
		{"any slice", []any{1, "a"}, 2, false},
		{"string slice", []string{"a", "b", "c"}, 3, false},
		{"raw array", json.RawMessage(`[1,2]`), 2, false},
		{"raw null", json.RawMessage(`null`), 0, false},
		{"raw object", json.RawMessage(`{"a":1}`), 1, false},
		{"raw invalid", json.RawMessage(`{`), 0, true},
		{"scalar", "0x1", 1, false},
		{"map", map[string]any{"a": 1}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := spreadParams(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestConfig_DerivedUUIDIsStable(t *testing.T) {
	t.Parallel()

	a := Config{Name: "n", URL: "http://localhost:8545"}
	b := Config{Name: "other", URL: "http://localhost:8545"}
	c := Config{Name: "n", URL: "http://localhost:8546"}
	a.ApplyDefaults()
	b.ApplyDefaults()
	c.ApplyDefaults()

	assert.NotEmpty(t, a.UUID)
	assert.Equal(t, a.UUID, b.UUID)
	assert.NotEqual(t, a.UUID, c.UUID)

	explicit := Config{UUID: "fixed", URL: "http://localhost:8545"}
	explicit.ApplyDefaults()
	assert.Equal(t, "fixed", explicit.UUID)
	assert.Equal(t, defaultPollInterval, explicit.PollInterval)
}

func TestDial_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := Dial(context.Background(), Config{URL: "http://localhost:8545"})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, appErr.Code)
}

func TestDetail_Announceable(t *testing.T) {
	t.Parallel()

	w, _ := dialFake(t, newFakeNode())
	d := w.Detail()
	require.NoError(t, d.Validate())
	assert.Equal(t, "Local Node", d.Info.Name)
	assert.Same(t, w, d.Provider)
}

func TestRequest_CircuitOpensOnTransportFailures(t *testing.T) {
	t.Parallel()

	node := newFakeNode()
	w, _ := dialFakeWith(t, node, func(c *Config) {
		c.MaxFailures = 2
		c.Cooldown = 100 * time.Millisecond
	})
	ctx := context.Background()
	args := provider.RequestArguments{Method: "eth_chainId"}

	node.set(func(n *fakeNode) { n.errs["eth_chainId"] = map[string]any{"code": 4001, "message": "rejected"} })
	for i := 0; i < 3; i++ {
		_, err := w.Request(ctx, args)
		rpcErr, ok := apperrors.AsProviderRPCError(err)
		require.True(t, ok)
		assert.Equal(t, 4001, rpcErr.Code, "wallet errors keep the circuit closed")
	}

	node.set(func(n *fakeNode) {
		delete(n.errs, "eth_chainId")
		n.down = true
	})
	for i := 0; i < 2; i++ {
		_, err := w.Request(ctx, args)
		rpcErr, ok := apperrors.AsProviderRPCError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeDisconnected, rpcErr.Code)
	}

	var hits int
	node.set(func(n *fakeNode) { hits = n.hits })
	_, err := w.Request(ctx, args)
	rpcErr, ok := apperrors.AsProviderRPCError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeDisconnected, rpcErr.Code)
	assert.Contains(t, rpcErr.Data, "circuit breaker is open")
	node.set(func(n *fakeNode) { assert.Equal(t, hits, n.hits, "open circuit must not reach the endpoint") })

	node.set(func(n *fakeNode) { n.down = false })
	time.Sleep(150 * time.Millisecond)
	res, err := w.Request(ctx, args)
	require.NoError(t, err)
	assert.JSONEq(t, `"0x1"`, string(res.(json.RawMessage)))
}

func TestRequest_BulkheadRejectionIsLimitExceeded(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		entered <- struct{}{}
		<-release
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req["id"], "result": "0x1"})
	}))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	w, err := Dial(ctx, Config{
		Name:          "Busy Node",
		URL:           server.URL,
		PollInterval:  time.Hour,
		CallTimeout:   50 * time.Millisecond,
		RateLimit:     1000,
		Burst:         100,
		MaxConcurrent: 1,
	})
	require.NoError(t, err)
	t.Cleanup(w.Close)

	args := provider.RequestArguments{Method: "eth_chainId"}
	first := make(chan error, 1)
	go func() {
		_, err := w.Request(ctx, args)
		first <- err
	}()
	select {
	case <-entered:
	case <-ctx.Done():
		t.Fatal("first request never reached the node")
	}

	_, err = w.Request(ctx, args)
	rpcErr, ok := apperrors.AsProviderRPCError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, apperrors.CodeLimitExceeded, rpcErr.Code)
	assert.Contains(t, rpcErr.Data, "bulkhead")

	close(release)
	require.NoError(t, <-first)
}

func TestWatcher_EmitsLifecycleEvents(t *testing.T) {
	t.Parallel()

	const addr = "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"
	node := newFakeNode()
	node.set(func(n *fakeNode) { n.accounts = []string{addr} })
	w, _ := dialFake(t, node)

	rec := &providertest.Recorder{}
	for _, ev := range provider.DefaultEvents() {
		w.On(ev, rec)
	}

	ctx := context.Background()
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Start(ctx))
	defer func() { _ = w.Stop(ctx) }()

	events := rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, provider.EventConnect, events[0].Name)
	assert.Equal(t, provider.ConnectInfo{ChainID: "0x1"}, events[0].Data)
	assert.Equal(t, provider.EventAccountsChanged, events[1].Name)
	assert.Equal(t, []string{"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"}, events[1].Data)
	assert.Equal(t, component.StatusHealthy, w.Health(ctx).Status)

	w.Poll(ctx)
	assert.Equal(t, 2, rec.Len(), "no change, no events")

	node.set(func(n *fakeNode) { n.chainID = "0x89" })
	w.Poll(ctx)
	events = rec.Events()
	require.Len(t, events, 3)
	assert.Equal(t, provider.EventChainChanged, events[2].Name)
	assert.Equal(t, "0x89", events[2].Data)

	node.set(func(n *fakeNode) { n.down = true })
	w.Poll(ctx)
	w.Poll(ctx)
	events = rec.Events()
	require.Len(t, events, 4, "disconnect is emitted once")
	assert.Equal(t, provider.EventDisconnect, events[3].Name)
	disc, ok := events[3].Data.(*apperrors.ProviderRPCError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeDisconnected, disc.Code)
	assert.Equal(t, component.StatusUnhealthy, w.Health(ctx).Status)

	node.set(func(n *fakeNode) {
		n.down = false
		n.accounts = []string{}
	})
	w.Poll(ctx)
	events = rec.Events()
	require.Len(t, events, 6)
	assert.Equal(t, provider.EventConnect, events[4].Name)
	assert.Equal(t, provider.EventAccountsChanged, events[5].Name)
	assert.Equal(t, []string{}, events[5].Data)
}

func TestWatcher_HealthBeforeStart(t *testing.T) {
	t.Parallel()

	w, _ := dialFake(t, newFakeNode())
	h := w.Health(context.Background())
	assert.Equal(t, component.StatusDegraded, h.Status)
	assert.Equal(t, "wallet:Local Node", h.Name)
	assert.NoError(t, w.Stop(context.Background()))
}

func TestWatcher_ThroughProxy(t *testing.T) {
	t.Parallel()

	node := newFakeNode()
	w, _ := dialFake(t, node)

	p := provider.NewProxy()
	defer p.Close()
	require.NoError(t, p.Announce(w.Detail()))
	require.True(t, p.SetCurrentProvider(w.Config().UUID))

	rec := &providertest.Recorder{}
	p.On(provider.EventChainChanged, rec)

	ctx := context.Background()
	require.NoError(t, w.Start(ctx))
	defer func() { _ = w.Stop(ctx) }()

	node.set(func(n *fakeNode) { n.chainID = "0xa" })
	w.Poll(ctx)

	require.Equal(t, 1, rec.Len())
	cur, _ := p.Current()
	assert.Equal(t, "0xa", cur.ChainID())

	result, err := p.Request(ctx, provider.RequestArguments{Method: "eth_chainId"})
	require.NoError(t, err)
	assert.JSONEq(t, `"0xa"`, string(result.(json.RawMessage)))
}
