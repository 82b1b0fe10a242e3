package rpcwallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"

	apperrors "github.com/kbukum/walletmux/errors"
	"github.com/kbukum/walletmux/logger"
	"github.com/kbukum/walletmux/provider"
	"github.com/kbukum/walletmux/resilience"
	"github.com/kbukum/walletmux/validation"
)

// Wallet is a provider.Provider backed by a JSON-RPC endpoint.
type Wallet struct {
	cfg      Config
	client   *rpc.Client
	limiter  *rate.Limiter
	breaker  *resilience.CircuitBreaker
	bulkhead *resilience.Bulkhead
	emitter  *provider.Emitter
	log      *logger.Logger

	mu      sync.Mutex
	state   watchState
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

var _ provider.Provider = (*Wallet)(nil)

// Dial connects to cfg.URL and returns a Wallet.
func Dial(ctx context.Context, cfg Config) (*Wallet, error) {
	cfg.ApplyDefaults()
	if err := validation.Validate(cfg); err != nil {
		return nil, err
	}
	client, err := rpc.DialContext(ctx, cfg.URL)
	if err != nil {
		return nil, apperrors.ConnectionFailed(cfg.Name).WithCause(err)
	}
	return New(client, cfg), nil
}

// New wraps an existing client.
func New(client *rpc.Client, cfg Config) *Wallet {
	cfg.ApplyDefaults()
	w := &Wallet{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		emitter: provider.NewEmitter(),
		log: logger.Get("rpcwallet").WithFields(logger.Fields(
			logger.FieldProvider, cfg.Name,
			logger.FieldProviderUUID, cfg.UUID,
		)),
	}
	w.breaker = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:          cfg.Name,
		MaxFailures:   cfg.MaxFailures,
		Cooldown:      cfg.Cooldown,
		IsFailure:     isTransportFailure,
		OnStateChange: w.logBreaker,
	})
	w.bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{
		Name:          cfg.Name,
		MaxConcurrent: cfg.MaxConcurrent,
		MaxWait:       cfg.CallTimeout,
	})
	return w
}

// Config returns the wallet's configuration with defaults applied.
func (w *Wallet) Config() Config { return w.cfg }

// Detail returns the announcement for this wallet.
func (w *Wallet) Detail() provider.Detail {
	return provider.Detail{Info: w.cfg.Info(), Provider: w}
}

// Request sends args to the endpoint. The result is the raw JSON value.
// JSON-RPC errors are returned as *errors.ProviderRPCError with the remote
// code and data; transport failures use code 4900.
func (w *Wallet) Request(ctx context.Context, args provider.RequestArguments) (any, error) {
	if args.Method == "" {
		return nil, apperrors.NewProviderRPCError(apperrors.CodeInvalidRequest, "method is required")
	}
	params, err := spreadParams(args.Params)
	if err != nil {
		return nil, apperrors.NewProviderRPCError(apperrors.CodeInvalidParams, err.Error())
	}
	if err := w.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var result json.RawMessage
	err = w.bulkhead.Execute(ctx, func() error {
		return w.breaker.Execute(func() error {
			return w.client.CallContext(ctx, &result, args.Method, params...)
		})
	})
	if err != nil {
		return nil, w.translate(ctx, err)
	}
	return result, nil
}

// On implements provider.Provider.
func (w *Wallet) On(event string, l provider.Listener) { w.emitter.On(event, l) }

// RemoveListener implements provider.Provider.
func (w *Wallet) RemoveListener(event string, l provider.Listener) {
	w.emitter.RemoveListener(event, l)
}

// Close stops the watcher and closes the client.
func (w *Wallet) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = w.Stop(ctx)
	w.client.Close()
}

// translate maps a client error to what the provider surface returns.
func (w *Wallet) translate(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		out := apperrors.NewProviderRPCError(apperrors.CodeDisconnected, "The provider is disconnected from all chains.")
		out.Data = err.Error()
		return out
	case errors.Is(err, resilience.ErrBulkheadFull), errors.Is(err, resilience.ErrBulkheadTimeout):
		out := apperrors.NewProviderRPCError(apperrors.CodeLimitExceeded, "Request limit exceeded.")
		out.Data = err.Error()
		return out
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		out := apperrors.NewProviderRPCError(rpcErr.ErrorCode(), rpcErr.Error())
		var dataErr rpc.DataError
		if errors.As(err, &dataErr) {
			out.Data = dataErr.ErrorData()
		}
		return out
	}
	w.log.Warn("endpoint unreachable", logger.Fields(
		logger.FieldEndpoint, w.cfg.URL,
		logger.FieldError, err.Error(),
	))
	out := apperrors.NewProviderRPCError(apperrors.CodeDisconnected, "The provider is disconnected from all chains.")
	out.Data = err.Error()
	return out
}

// isTransportFailure reports whether err means the endpoint is unreachable.
// JSON-RPC errors are answers from a live endpoint; cancellation is the
// caller's doing.
func isTransportFailure(err error) bool {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

func (w *Wallet) logBreaker(_ string, from, to resilience.State) {
	fields := logger.Fields(
		logger.FieldEndpoint, w.cfg.URL,
		"from", from.String(),
		"to", to.String(),
	)
	if to == resilience.StateOpen {
		w.log.Warn("circuit opened, failing fast", fields)
		return
	}
	w.log.Info("circuit state changed", fields)
}

// spreadParams turns request params into positional JSON-RPC arguments.
// nil means none, a slice or JSON array is spread, anything else is sent as
// the single argument.
func spreadParams(params any) ([]any, error) {
	switch p := params.(type) {
	case nil:
		return nil, nil
	case []any:
		return p, nil
	case []string:
		out := make([]any, len(p))
		for i, s := range p {
			out[i] = s
		}
		return out, nil
	case json.RawMessage:
		return spreadRaw(p)
	case []byte:
		return spreadRaw(p)
	default:
		return []any{p}, nil
	}
}

func spreadRaw(raw []byte) ([]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		if !json.Valid(raw) {
			return nil, fmt.Errorf("params are not valid JSON")
		}
		return []any{json.RawMessage(raw)}, nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out, nil
}
