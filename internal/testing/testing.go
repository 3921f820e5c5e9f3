// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/music-exporter/internal/models"
	"github.com/desertthunder/music-exporter/internal/platforms"
)

// StaticCode is a [platforms.CodeSource] that returns a fixed code and records the authorize URL it was given.
type StaticCode struct {
	Value   string
	Err     error
	AuthURL string
	Calls   int
}

func (s *StaticCode) Code(ctx context.Context, authURL string) (string, error) {
	s.Calls++
	s.AuthURL = authURL
	return s.Value, s.Err
}

// StubPager is a [platforms.Pager] serving canned pages in order.
//
// Each page but the last points at the next one; AuthorizeErr and FetchErrAt inject failures.
type StubPager struct {
	PlatformName string
	Pages        [][]models.MusicRecord
	AuthorizeErr error
	FetchErr     error
	FetchErrAt   int

	Authorized bool
	Fetches    int
}

func (s *StubPager) Name() string {
	if s.PlatformName == "" {
		return "stub"
	}
	return s.PlatformName
}

func (s *StubPager) Authorize(ctx context.Context) error {
	if s.AuthorizeErr != nil {
		return s.AuthorizeErr
	}
	s.Authorized = true
	return nil
}

func (s *StubPager) FetchPage(ctx context.Context, cursor platforms.Cursor) (platforms.Page, error) {
	index := s.Fetches
	s.Fetches++

	if s.FetchErr != nil && index == s.FetchErrAt {
		return platforms.Page{}, s.FetchErr
	}
	if index >= len(s.Pages) {
		return platforms.Page{}, nil
	}

	page := platforms.Page{Records: s.Pages[index]}
	if index+1 < len(s.Pages) {
		page.Next = platforms.CursorOf(string(rune('a' + index)))
	}
	return page, nil
}

// Record builds a catalog record with only a title and author.
func Record(title, author string) models.MusicRecord {
	return models.MusicRecord{Title: title, Author: author}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails once maxWrites writes have gone through
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// MustChdir changes into dir and restores the previous working directory when the test ends.
func MustChdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
