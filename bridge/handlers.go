package bridge

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/walletmux/component"
	apperrors "github.com/kbukum/walletmux/errors"
	"github.com/kbukum/walletmux/provider"
	"github.com/kbukum/walletmux/sse"
)

// providerView is the JSON shape of an announced wallet.
type providerView struct {
	provider.ProviderInfo
	Accounts []string `json:"accounts"`
	ChainID  string   `json:"chainId,omitempty"`
	// NetworkID is ChainID in decimal.
	NetworkID string `json:"networkId,omitempty"`
	Active    bool   `json:"active"`
}

func newProviderView(rec *provider.Record, active bool) providerView {
	snap := rec.Snapshot()
	view := providerView{
		ProviderInfo: snap.Info,
		Accounts:     snap.Accounts,
		ChainID:      snap.ChainID,
		Active:       active,
	}
	if n, ok := rec.ChainIDBig(); ok {
		view.NetworkID = n.String()
	}
	return view
}

type selectRequest struct {
	UUID string `json:"uuid"`
}

func (s *Server) handleProviders(c *gin.Context) {
	cur, _ := s.proxy.Current()
	records := s.proxy.Providers()
	out := make([]providerView, 0, len(records))
	for _, rec := range records {
		out = append(out, newProviderView(rec, rec == cur))
	}
	c.JSON(http.StatusOK, gin.H{"providers": out})
}

func (s *Server) handleCurrent(c *gin.Context) {
	cur, ok := s.proxy.Current()
	if !ok {
		writeAppError(c, apperrors.NoActiveProvider())
		return
	}
	c.JSON(http.StatusOK, newProviderView(cur, true))
}

// handleSelect sets the active wallet. An empty uuid clears the selection;
// an unknown uuid clears it too and answers 404.
func (s *Server) handleSelect(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAppError(c, apperrors.InvalidInput("uuid", err.Error()))
		return
	}
	if !s.proxy.SetCurrentProvider(req.UUID) {
		if req.UUID == "" {
			c.Status(http.StatusNoContent)
			return
		}
		writeAppError(c, apperrors.ProviderNotFound(req.UUID))
		return
	}
	cur, _ := s.proxy.Current()
	c.JSON(http.StatusOK, newProviderView(cur, true))
}

func (s *Server) handleEvents(c *gin.Context) {
	if s.hub == nil {
		writeAppError(c, apperrors.New(apperrors.ErrCodeServiceUnavailable, "Event stream is not enabled.", http.StatusServiceUnavailable))
		return
	}
	var events []string
	if raw := c.Query("events"); raw != "" {
		for _, e := range strings.Split(raw, ",") {
			if e = strings.TrimSpace(e); e != "" {
				events = append(events, e)
			}
		}
	}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	stop := context.AfterFunc(s.streamContext(), cancel)
	defer stop()

	sse.ServeSSE(s.hub, c.Writer, c.Request.WithContext(ctx), uuid.NewString(), events...)
}

func (s *Server) handleHealth(c *gin.Context) {
	reports := []component.Health{s.Health(c.Request.Context())}
	if s.health != nil {
		reports = s.health(c.Request.Context())
	}
	status := component.Overall(reports)

	code := http.StatusOK
	if status == component.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	cur, ok := s.proxy.Current()
	body := gin.H{
		"status":     status,
		"components": reports,
		"providers":  len(s.proxy.Providers()),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}
	if ok {
		body["active"] = cur.UUID()
	}
	c.JSON(code, body)
}

func writeAppError(c *gin.Context, err *apperrors.AppError) {
	c.JSON(err.HTTPStatus, err.ToResponse())
}
