// Spotify API implementation of [Client]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/get-users-saved-tracks
package platforms

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/music-exporter/internal/models"
	"github.com/desertthunder/music-exporter/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date"`
	Images      []SpotifyImage `json:"images"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        SpotifyAlbum    `json:"album"`
	ExternalURLs externalURLs    `json:"external_urls"`
}

// SpotifySavedTrack represents a track saved in the user's library.
type SpotifySavedTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPaginatedTracks represents a paginated response of saved tracks.
type SpotifyPaginatedTracks struct {
	Items    []SpotifySavedTrack `json:"items"`
	Total    int                 `json:"total"`
	Limit    int                 `json:"limit"`
	Offset   int                 `json:"offset"`
	Next     *string             `json:"next"`
	Previous *string             `json:"previous"`
}

// SpotifyClient fetches the user's saved tracks.
//
// The authorization code is exchanged with HTTP Basic client authentication.
type SpotifyClient struct {
	config     *oauth2.Config
	token      *oauth2.Token
	codes      CodeSource
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewSpotifyClient creates a client for the application in creds, redirecting to redirectURI.
func NewSpotifyClient(creds shared.SpotifyConfig, redirectURI string, codes CodeSource, httpClient *http.Client, logger *log.Logger) (*SpotifyClient, error) {
	if strings.TrimSpace(creds.ClientID) == "" {
		return nil, shared.ConfigError("missing Spotify client id", nil)
	}
	if strings.TrimSpace(creds.ClientSecret) == "" {
		return nil, shared.ConfigError("missing Spotify client secret", nil)
	}

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{"playlist-read-private", "user-library-read"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   spotifyAuthURL,
			TokenURL:  spotifyTokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	return &SpotifyClient{
		config:     config,
		codes:      codes,
		baseURL:    spotifyBaseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

func (c *SpotifyClient) Name() string { return "Spotify" }
func (c *SpotifyClient) Kind() Kind   { return Spotify }
func (c *SpotifyClient) platform()    {}

// AuthURL returns the consent URL the user must visit.
func (c *SpotifyClient) AuthURL() string {
	return c.config.AuthCodeURL("")
}

// Authorize obtains an authorization code from the code source and exchanges it for a bearer token.
func (c *SpotifyClient) Authorize(ctx context.Context) error {
	code, err := authorizeCode(ctx, c.codes, c.config, c.Name())
	if err != nil {
		return err
	}

	token, err := exchange(ctx, c.config, c.httpClient, code, c.Name())
	if err != nil {
		return err
	}

	c.token = token
	c.logger.Debug("authorized", "token_type", token.Type(), "expires", token.Expiry)
	return nil
}

// FetchPage fetches one page of saved tracks. The cursor is the numeric offset of the first track.
func (c *SpotifyClient) FetchPage(ctx context.Context, cursor Cursor) (Page, error) {
	if c.token == nil {
		return Page{}, notAuthorized(c.Name())
	}

	offset := 0
	if !cursor.IsZero() {
		n, err := strconv.Atoi(cursor.token)
		if err != nil {
			return Page{}, shared.ParseError("invalid Spotify cursor "+cursor.token, err)
		}
		offset = n
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(PageSize))
	query.Set("offset", strconv.Itoa(offset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/me/tracks?"+query.Encode(), nil)
	if err != nil {
		return Page{}, shared.TransportError("failed to build Spotify request", err)
	}
	c.token.SetAuthHeader(req)

	var resp SpotifyPaginatedTracks
	if err := doJSON(c.httpClient, req, c.Name(), &resp); err != nil {
		return Page{}, err
	}

	records := make([]models.MusicRecord, 0, len(resp.Items))
	for _, item := range resp.Items {
		// unavailable and local files come back as a null or nameless track
		if item.Track == nil || strings.TrimSpace(item.Track.Name) == "" {
			c.logger.Debug("skipping unavailable track", "added_at", item.AddedAt)
			continue
		}
		records = append(records, item.Track.Record())
	}

	var next Cursor
	if resp.Next != nil && *resp.Next != "" {
		next = CursorOf(strconv.Itoa(offset + PageSize))
	}

	c.logger.Debug("fetched page", "offset", offset, "records", len(records), "total", resp.Total)
	return Page{Records: records, Next: next}, nil
}

// Record maps the track onto a catalog record.
func (t SpotifyTrack) Record() models.MusicRecord {
	author := "Unknown"
	if len(t.Artists) > 0 && t.Artists[0].Name != "" {
		author = t.Artists[0].Name
	}

	var thumbnail *string
	if len(t.Album.Images) > 0 {
		thumbnail = models.Optional(t.Album.Images[0].URL)
	}

	return models.MusicRecord{
		Author:    author,
		Title:     t.Name,
		URL:       models.Optional(t.ExternalURLs.Spotify),
		Thumbnail: thumbnail,
		Date:      models.Optional(t.Album.ReleaseDate),
		Album:     models.Optional(t.Album.Name),
	}
}
