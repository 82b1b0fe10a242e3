package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/walletmux/errors"
	"github.com/kbukum/walletmux/logger"
	"github.com/kbukum/walletmux/provider"
)

// rpcRequest is a JSON-RPC 2.0 request envelope.
type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// rpcResponse is a JSON-RPC 2.0 response envelope.
type rpcResponse struct {
	JSONRPC string                      `json:"jsonrpc"`
	ID      json.RawMessage             `json:"id"`
	Result  any                         `json:"result,omitempty"`
	Error   *apperrors.ProviderRPCError `json:"error,omitempty"`
}

var nullID = json.RawMessage("null")

// handleRPC forwards single and batch JSON-RPC requests through the proxy.
// Notifications are forwarded but never answered; a request or batch made
// only of notifications gets 204 No Content.
func (s *Server) handleRPC(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusOK, errorResponse(nullID, apperrors.NewProviderRPCError(apperrors.CodeParseError, "Parse error")))
		return
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var batch []json.RawMessage
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			c.JSON(http.StatusOK, errorResponse(nullID, apperrors.NewProviderRPCError(apperrors.CodeParseError, "Parse error")))
			return
		}
		if len(batch) == 0 {
			c.JSON(http.StatusOK, errorResponse(nullID, apperrors.NewProviderRPCError(apperrors.CodeInvalidRequest, "Invalid Request")))
			return
		}
		out := make([]rpcResponse, 0, len(batch))
		for _, raw := range batch {
			if resp, ok := s.call(c.Request.Context(), raw); ok {
				out = append(out, resp)
			}
		}
		if len(out) == 0 {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, out)
		return
	}

	resp, ok := s.call(c.Request.Context(), trimmed)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// call decodes one envelope and runs it against the proxy. It reports false
// for a notification, which must not be answered. Invalid envelopes are always
// answered, with a null id when none could be read.
func (s *Server) call(ctx context.Context, raw json.RawMessage) (rpcResponse, bool) {
	var req rpcRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) || !json.Valid(raw) {
			return errorResponse(nullID, apperrors.NewProviderRPCError(apperrors.CodeParseError, "Parse error")), true
		}
		return errorResponse(nullID, apperrors.NewProviderRPCError(apperrors.CodeInvalidRequest, "Invalid Request")), true
	}
	notification := len(req.ID) == 0
	id := req.ID
	if notification {
		id = nullID
	}
	if req.Method == "" {
		return errorResponse(id, apperrors.NewProviderRPCError(apperrors.CodeInvalidRequest, "Invalid Request: method is required")), true
	}

	args := provider.RequestArguments{Method: req.Method}
	if len(req.Params) > 0 && string(req.Params) != "null" {
		args.Params = req.Params
	}

	result, err := s.proxy.Request(ctx, args)
	if notification {
		if err != nil {
			s.log.Debug("notification failed", logger.Fields(
				logger.FieldMethod, req.Method,
				logger.FieldError, err.Error(),
			))
		}
		return rpcResponse{}, false
	}
	if err != nil {
		return errorResponse(id, toRPCError(err)), true
	}
	if result == nil {
		result = nullID
	}
	return rpcResponse{JSONRPC: "2.0", ID: id, Result: result}, true
}

func errorResponse(id json.RawMessage, err *apperrors.ProviderRPCError) rpcResponse {
	return rpcResponse{JSONRPC: "2.0", ID: id, Error: err}
}

// toRPCError maps a proxy error to a JSON-RPC error object. Wallet errors
// pass through unchanged.
func toRPCError(err error) *apperrors.ProviderRPCError {
	if rpcErr, ok := apperrors.AsProviderRPCError(err); ok {
		return rpcErr
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		if appErr.Code == apperrors.ErrCodeNoActiveProvider {
			out := apperrors.NewProviderRPCError(apperrors.CodeDisconnected, appErr.Message)
			out.Data = map[string]any{"code": appErr.Code}
			return out
		}
		out := apperrors.NewProviderRPCError(apperrors.CodeInternalError, appErr.Message)
		out.Data = map[string]any{"code": appErr.Code}
		return out
	}
	out := apperrors.NewProviderRPCError(apperrors.CodeInternalError, "Internal error")
	out.Data = err.Error()
	return out
}
