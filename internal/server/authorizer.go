package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/music-exporter/internal/shared"
)

// Authorizer sends the user to a consent page and captures the redirect with a [CallbackListener].
//
// It satisfies platforms.CodeSource.
type Authorizer struct {
	Host        string
	Port        int
	Output      io.Writer
	OpenBrowser bool
	Logger      *log.Logger

	openBrowser func(string) error
}

// NewAuthorizer builds an [Authorizer] from the server section of the config.
func NewAuthorizer(cfg shared.ServerConfig, out io.Writer, logger *log.Logger) *Authorizer {
	return &Authorizer{
		Host:        cfg.Host,
		Port:        cfg.Port,
		Output:      out,
		OpenBrowser: cfg.OpenBrowser,
		Logger:      logger,
	}
}

// Code binds the callback listener, prints authURL and waits for the redirect.
//
// Failing to open a browser is only logged: the printed URL still works.
func (a *Authorizer) Code(ctx context.Context, authURL string) (string, error) {
	logger := a.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	host := a.Host
	if host == "" {
		host = "127.0.0.1"
	}

	l, err := Listen(ctx, net.JoinHostPort(host, strconv.Itoa(a.Port)), logger)
	if err != nil {
		return "", err
	}

	out := a.Output
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, "Open this URL in your browser to authorize:\n\n  %s\n\n", authURL)

	if a.OpenBrowser {
		open := a.openBrowser
		if open == nil {
			open = shared.OpenBrowser
		}
		if err := open(authURL); err != nil {
			logger.Warn("failed to open browser", "error", err)
		}
	}

	return l.Wait(ctx)
}
