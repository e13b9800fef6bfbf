package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plcopy/internal/shared"
	"golang.org/x/oauth2"
)

// CallbackServer is a short-lived loopback server that receives one OAuth redirect.
type CallbackServer struct {
	handler  *OAuthHandler
	srv      *http.Server
	listener net.Listener
	errs     chan error
	logger   *log.Logger
}

// NewCallbackServer routes [CallbackPath] to handler through the logging middleware.
func NewCallbackServer(handler *OAuthHandler, logger *log.Logger) *CallbackServer {
	router := NewBasicRouter()
	router.Use(Recoverer(logger), RequestLogger(logger))
	router.Handler(handler)

	return &CallbackServer{
		handler: handler,
		srv:     &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second},
		errs:    make(chan error, 1),
		logger:  logger,
	}
}

// Listen binds addr and starts serving in the background. Port 0 picks a free port.
func (c *CallbackServer) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	c.listener = ln

	go func() {
		if err := c.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.errs <- err
		}
	}()
	c.logger.Debug("callback server listening", "addr", ln.Addr().String())
	return nil
}

// CallbackURL is the redirect URI served by the bound listener.
func (c *CallbackServer) CallbackURL() string {
	return "http://" + c.listener.Addr().String() + CallbackPath
}

// Wait blocks until the callback completes, the server fails, ctx ends or timeout elapses.
//
// The server is shut down before Wait returns.
func (c *CallbackServer) Wait(ctx context.Context, timeout time.Duration) (*oauth2.Token, error) {
	defer c.shutdown()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-c.handler.Result():
		if result.Err != nil {
			return nil, result.Err
		}
		if result.Token == nil {
			return nil, fmt.Errorf("%w: no token received", shared.ErrNotAuthenticated)
		}
		return result.Token, nil
	case err := <-c.errs:
		return nil, fmt.Errorf("callback server failed: %w", err)
	case <-timer.C:
		return nil, fmt.Errorf("%w: no authorization received after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *CallbackServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.srv.Shutdown(ctx); err != nil {
		c.logger.Warn("error shutting down callback server", "error", err)
	}
}
