package server

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/music-exporter/internal/shared"
)

const (
	successBody = "Authorization complete. You can close this window and return to the terminal.\n"
	failureBody = "Authorization failed: no code in the redirect.\n"
)

// callbackResult is the single value produced by the accept task.
type callbackResult struct {
	code string
	err  error
}

// CallbackListener captures one OAuth2 redirect on a loopback address.
//
// It accepts exactly one connection. Whatever that request carries, the listener is finished afterwards.
type CallbackListener struct {
	ln     net.Listener
	result <-chan callbackResult
	cancel context.CancelFunc
	logger *log.Logger
}

// Listen binds addr and starts waiting for the redirect in the background.
func Listen(ctx context.Context, addr string, logger *log.Logger) (*CallbackListener, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, shared.AuthorizationError("failed to bind callback listener on "+addr, err)
	}

	result := make(chan callbackResult, 1)
	taskCtx, cancel := context.WithCancel(ctx)

	l := &CallbackListener{
		ln:     ln,
		result: result,
		cancel: cancel,
		logger: shared.WithLogger(logger, "addr", ln.Addr().String()),
	}

	go l.serve(taskCtx, result)

	l.logger.Debug("waiting for authorization redirect")
	return l, nil
}

// Addr is the bound address. With port 0 it carries the port picked by the system.
func (l *CallbackListener) Addr() net.Addr {
	return l.ln.Addr()
}

// Wait blocks until the redirect has been handled or ctx is done.
//
// Cancellation aborts the accept task and returns an [shared.ErrAuthorization] wrapping the context error.
// The socket is released on every path. Wait must be called at most once.
func (l *CallbackListener) Wait(ctx context.Context) (string, error) {
	defer l.Close()

	select {
	case r := <-l.result:
		return r.code, r.err
	case <-ctx.Done():
		l.Close()
		<-l.result
		l.logger.Debug("authorization wait cancelled")
		return "", shared.AuthorizationError("authorization cancelled", ctx.Err())
	}
}

// Close stops the accept task and releases the socket. It is safe to call more than once.
func (l *CallbackListener) Close() {
	l.cancel()
	l.ln.Close()
}

// serve owns the send side of result and writes it exactly once.
func (l *CallbackListener) serve(ctx context.Context, result chan<- callbackResult) {
	code, err := l.handle(ctx)
	result <- callbackResult{code: code, err: err}
}

func (l *CallbackListener) handle(ctx context.Context) (string, error) {
	conn, err := l.ln.Accept()
	l.ln.Close()
	if err != nil {
		if ctx.Err() != nil {
			return "", shared.AuthorizationError("authorization cancelled", ctx.Err())
		}
		return "", shared.AuthorizationError("failed to accept callback connection", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	req, err := http.ReadRequest(bufio.NewReader(conn))
	if err != nil {
		l.reply(conn, http.StatusBadRequest, failureBody)
		return "", shared.AuthorizationError("unreadable callback request", err)
	}

	l.logger.Debug("callback received", "method", req.Method, "path", req.URL.Path)

	query, err := url.ParseQuery(req.URL.RawQuery)
	if err != nil {
		l.reply(conn, http.StatusBadRequest, failureBody)
		return "", shared.AuthorizationError("unparsable callback query", err)
	}

	code := query.Get("code")
	if code == "" {
		l.reply(conn, http.StatusBadRequest, failureBody)
		return "", shared.AuthorizationError(missingCodeMessage(query), nil)
	}

	l.reply(conn, http.StatusOK, successBody)
	return code, nil
}

// missingCodeMessage includes the provider's error parameters when the redirect carries them.
func missingCodeMessage(query url.Values) string {
	msg := "callback carried no authorization code"
	if e := query.Get("error"); e != "" {
		msg = fmt.Sprintf("%s: %s", msg, e)
		if desc := query.Get("error_description"); desc != "" {
			msg = fmt.Sprintf("%s (%s)", msg, desc)
		}
	}
	return msg
}

func (l *CallbackListener) reply(w io.Writer, status int, body string) {
	resp := &http.Response{
		StatusCode:    status,
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": {"text/plain; charset=utf-8"}},
		ContentLength: int64(len(body)),
		Body:          io.NopCloser(strings.NewReader(body)),
		Close:         true,
	}

	if err := resp.Write(w); err != nil {
		l.logger.Warn("failed to write callback response", "status", status, "error", err)
	}
}
