package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/music-exporter/internal/shared"
)

func listen(t *testing.T) *CallbackListener {
	t.Helper()
	l, err := Listen(context.Background(), "127.0.0.1:0", shared.NewLogger(io.Discard))
	if err != nil {
		t.Fatalf("Listen returned error: %v", err)
	}
	t.Cleanup(l.Close)
	return l
}

func get(t *testing.T, rawURL string) (int, string) {
	t.Helper()
	resp, err := http.Get(rawURL)
	if err != nil {
		t.Fatalf("GET %s failed: %v", rawURL, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find a free port: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestCallbackListener(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers the code", func(t *testing.T) {
		l := listen(t)

		status, body := get(t, "http://"+l.Addr().String()+"/?code=abc123")
		if status != http.StatusOK {
			t.Errorf("expected 200, got %d", status)
		}
		if !strings.Contains(body, "Authorization complete") {
			t.Errorf("unexpected body %q", body)
		}

		code, err := l.Wait(ctx)
		if err != nil {
			t.Fatalf("Wait returned error: %v", err)
		}
		if code != "abc123" {
			t.Errorf("expected abc123, got %q", code)
		}
	})

	t.Run("any path is accepted", func(t *testing.T) {
		l := listen(t)

		status, _ := get(t, "http://"+l.Addr().String()+"/callback?state=x&code=xyz")
		if status != http.StatusOK {
			t.Errorf("expected 200, got %d", status)
		}

		if code, err := l.Wait(ctx); err != nil || code != "xyz" {
			t.Errorf("expected xyz, got %q, %v", code, err)
		}
	})

	t.Run("missing code", func(t *testing.T) {
		l := listen(t)

		status, _ := get(t, "http://"+l.Addr().String()+"/?foo=1")
		if status != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", status)
		}

		code, err := l.Wait(ctx)
		if !errors.Is(err, shared.ErrAuthorization) {
			t.Errorf("expected authorization error, got %v", err)
		}
		if code != "" {
			t.Errorf("expected no code, got %q", code)
		}
	})

	t.Run("empty code", func(t *testing.T) {
		l := listen(t)

		if status, _ := get(t, "http://"+l.Addr().String()+"/?code="); status != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", status)
		}
		if _, err := l.Wait(ctx); !errors.Is(err, shared.ErrAuthorization) {
			t.Errorf("expected authorization error, got %v", err)
		}
	})

	t.Run("provider error is reported", func(t *testing.T) {
		l := listen(t)

		get(t, "http://"+l.Addr().String()+"/?error=access_denied&error_description=user+said+no")

		_, err := l.Wait(ctx)
		if err == nil {
			t.Fatal("expected an error")
		}
		if !strings.Contains(err.Error(), "access_denied") || !strings.Contains(err.Error(), "user said no") {
			t.Errorf("expected provider error in message, got %v", err)
		}
	})

	t.Run("unparsable query", func(t *testing.T) {
		l := listen(t)

		conn, err := net.Dial("tcp", l.Addr().String())
		if err != nil {
			t.Fatalf("dial failed: %v", err)
		}
		defer conn.Close()

		if _, err := io.WriteString(conn, "GET /?code=%zz HTTP/1.1\r\nHost: localhost\r\n\r\n"); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		reply, _ := io.ReadAll(conn)
		if !bytes.HasPrefix(reply, []byte("HTTP/1.1 400")) {
			t.Errorf("expected a 400 reply, got %q", reply)
		}

		if _, err := l.Wait(ctx); !errors.Is(err, shared.ErrAuthorization) {
			t.Errorf("expected authorization error, got %v", err)
		}
	})

	t.Run("accepts a single connection", func(t *testing.T) {
		l := listen(t)
		addr := l.Addr().String()

		get(t, "http://"+addr+"/?code=first")
		if code, _ := l.Wait(ctx); code != "first" {
			t.Errorf("expected first, got %q", code)
		}

		if conn, err := net.Dial("tcp", addr); err == nil {
			conn.Close()
			t.Error("expected the listener to be closed after one request")
		}
	})

	t.Run("cancelled before any connection", func(t *testing.T) {
		l := listen(t)
		addr := l.Addr().String()

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		code, err := l.Wait(cctx)
		if !errors.Is(err, shared.ErrAuthorization) || !errors.Is(err, context.Canceled) {
			t.Errorf("expected cancelled authorization error, got %v", err)
		}
		if code != "" {
			t.Errorf("expected no code, got %q", code)
		}

		if conn, err := net.Dial("tcp", addr); err == nil {
			conn.Close()
			t.Error("expected the socket to be released")
		}
	})

	t.Run("cancellation aborts an in-flight connection", func(t *testing.T) {
		l := listen(t)

		conn, err := net.Dial("tcp", l.Addr().String())
		if err != nil {
			t.Fatalf("dial failed: %v", err)
		}
		defer conn.Close()

		cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			_, err := l.Wait(cctx)
			done <- err
		}()

		select {
		case err := <-done:
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("expected deadline error, got %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("Wait did not return after cancellation")
		}
	})

	t.Run("bind failure", func(t *testing.T) {
		l := listen(t)

		_, err := Listen(ctx, l.Addr().String(), shared.NewLogger(io.Discard))
		if !errors.Is(err, shared.ErrAuthorization) {
			t.Errorf("expected authorization error, got %v", err)
		}
	})
}

func TestAuthorizer(t *testing.T) {
	ctx := context.Background()

	t.Run("prints the URL and returns the code", func(t *testing.T) {
		port := freePort(t)
		var out bytes.Buffer
		opened := ""

		a := NewAuthorizer(shared.ServerConfig{Host: "127.0.0.1", Port: port, OpenBrowser: true}, &out, shared.NewLogger(io.Discard))
		a.openBrowser = func(u string) error {
			opened = u
			get(t, "http://127.0.0.1:"+strconv.Itoa(port)+"/?code=from-browser")
			return nil
		}

		code, err := a.Code(ctx, "https://accounts.example.com/authorize?client_id=id")
		if err != nil {
			t.Fatalf("Code returned error: %v", err)
		}
		if code != "from-browser" {
			t.Errorf("expected from-browser, got %q", code)
		}
		if opened != "https://accounts.example.com/authorize?client_id=id" {
			t.Errorf("browser opened %q", opened)
		}
		if !strings.Contains(out.String(), "https://accounts.example.com/authorize?client_id=id") {
			t.Errorf("expected URL in output, got %q", out.String())
		}
	})

	t.Run("browser failure is not fatal", func(t *testing.T) {
		port := freePort(t)

		a := NewAuthorizer(shared.ServerConfig{Host: "127.0.0.1", Port: port, OpenBrowser: true}, io.Discard, shared.NewLogger(io.Discard))
		a.openBrowser = func(string) error {
			get(t, "http://127.0.0.1:"+strconv.Itoa(port)+"/?code=ok")
			return shared.ErrNotImplemented
		}

		if code, err := a.Code(ctx, "https://example.com"); err != nil || code != "ok" {
			t.Errorf("expected ok, got %q, %v", code, err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		a := NewAuthorizer(shared.ServerConfig{Host: "127.0.0.1", Port: freePort(t)}, io.Discard, shared.NewLogger(io.Discard))
		if _, err := a.Code(cctx, "https://example.com"); !errors.Is(err, shared.ErrAuthorization) {
			t.Errorf("expected authorization error, got %v", err)
		}
	})
}
