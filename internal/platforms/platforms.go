package platforms

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/music-exporter/internal/models"
	"github.com/desertthunder/music-exporter/internal/shared"
)

// PageSize is the maximum page size accepted by every supported platform.
const PageSize = 50

// Kind names one of the supported platforms.
type Kind int

const (
	Deezer Kind = iota
	Spotify
	YouTube
)

// Kinds returns every supported platform in declaration order.
func Kinds() []Kind {
	return []Kind{Deezer, Spotify, YouTube}
}

func (k Kind) String() string {
	switch k {
	case Deezer:
		return "deezer"
	case Spotify:
		return "spotify"
	case YouTube:
		return "youtube"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a case-insensitive platform name to its [Kind].
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "deezer":
		return Deezer, nil
	case "spotify":
		return Spotify, nil
	case "youtube", "yt":
		return YouTube, nil
	default:
		return 0, shared.ConfigError(fmt.Sprintf("unknown platform %q", name), nil)
	}
}

// Cursor is an opaque pagination token. The zero value requests the first page
// and, when returned as [Page.Next], means there are no more pages.
type Cursor struct {
	token string
}

// CursorOf wraps a platform-specific continuation token.
// An empty token yields the zero cursor.
func CursorOf(token string) Cursor {
	return Cursor{token: token}
}

// IsZero reports whether c is the first-page / last-page cursor.
func (c Cursor) IsZero() bool {
	return c.token == ""
}

func (c Cursor) String() string {
	if c.IsZero() {
		return "<start>"
	}
	return c.token
}

// Page is one batch of records plus the cursor of the following batch.
type Page struct {
	Records []models.MusicRecord
	Next    Cursor
}

// Pager is the capability set shared by all platforms.
type Pager interface {
	Name() string
	// Authorize obtains whatever session the platform needs. It must succeed before FetchPage.
	Authorize(ctx context.Context) error
	// FetchPage returns the page at cursor; the zero cursor is the first page.
	FetchPage(ctx context.Context, cursor Cursor) (Page, error)
}

// Client is the closed set of platform implementations: [*DeezerClient], [*SpotifyClient] and [*YouTubeClient].
type Client interface {
	Pager
	Kind() Kind
	platform()
}

// CodeSource produces an OAuth2 authorization code for the given authorize URL,
// typically by sending the user there and waiting for the redirect.
type CodeSource interface {
	Code(ctx context.Context, authURL string) (string, error)
}

// Options carries the dependencies and settings shared by all platform clients.
type Options struct {
	Credentials shared.CredentialsConfig
	RedirectURI string
	Codes       CodeSource
	HTTPClient  *http.Client
	Logger      *log.Logger
}

// New builds the client for kind. Missing required credentials are reported as a [shared.ErrConfig].
func New(kind Kind, opts Options) (Client, error) {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	logger := shared.WithLogger(opts.Logger, "platform", kind.String())

	switch kind {
	case Deezer:
		return NewDeezerClient(opts.Credentials.Deezer, opts.HTTPClient, logger)
	case Spotify:
		return NewSpotifyClient(opts.Credentials.Spotify, opts.RedirectURI, opts.Codes, opts.HTTPClient, logger)
	case YouTube:
		return NewYouTubeClient(opts.Credentials.YouTube, opts.RedirectURI, opts.Codes, opts.HTTPClient, logger)
	default:
		return nil, shared.ConfigError(fmt.Sprintf("unsupported platform %v", kind), nil)
	}
}

// AuthStyle names how a platform authorizes, without needing credentials.
func AuthStyle(kind Kind) string {
	switch kind {
	case Deezer:
		return "session cookie"
	case Spotify:
		return "OAuth2 authorization code"
	case YouTube:
		return "OAuth2 authorization code + API key"
	default:
		return "unknown"
	}
}

// Describe returns a short description of the client's authorization style.
func Describe(c Client) string {
	switch c := c.(type) {
	case *DeezerClient:
		return "session cookie for user " + c.userID
	case *SpotifyClient:
		return "OAuth2 authorization code, exchanged with client credentials"
	case *YouTubeClient:
		if c.playlistID != "" {
			return "OAuth2 authorization code with API key, playlist " + c.playlistID
		}
		return "OAuth2 authorization code with API key, liked videos"
	default:
		panic(fmt.Sprintf("unhandled platform client %T", c))
	}
}

// FetchAll authorizes nothing; it pages through p from the first cursor until the
// platform reports no next cursor. onPage, when set, sees the 1-based page number
// and the number of records fetched so far.
func FetchAll(ctx context.Context, p Pager, onPage func(page, fetched int)) ([]models.MusicRecord, error) {
	var (
		records []models.MusicRecord
		cursor  Cursor
	)

	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return nil, shared.TransportError(fmt.Sprintf("%s pagination cancelled before page %d", p.Name(), n), err)
		}

		page, err := p.FetchPage(ctx, cursor)
		if err != nil {
			return nil, err
		}

		records = append(records, page.Records...)
		if onPage != nil {
			onPage(n, len(records))
		}

		if page.Next.IsZero() {
			return records, nil
		}
		cursor = page.Next
	}
}
