// Deezer implementation of [Client]
//
// Deezer has no public OAuth flow for personal libraries, so requests are authenticated with
// the browser session cookie of a logged-in user.
package platforms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/music-exporter/internal/models"
	"github.com/desertthunder/music-exporter/internal/shared"
)

const deezerBaseURL = "https://api.deezer.com"

// DeezerTrack is a track of the user's favourites list.
type DeezerTrack struct {
	ID     int64        `json:"id"`
	Title  string       `json:"title"`
	Link   string       `json:"link"`
	Artist DeezerArtist `json:"artist"`
	Album  DeezerAlbum  `json:"album"`
}

// DeezerArtist is the artist summary embedded in a track.
type DeezerArtist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DeezerAlbum is the album summary embedded in a track.
type DeezerAlbum struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Cover string `json:"cover"`
}

// DeezerError is returned in the body, with a 200 status, when a request is rejected.
type DeezerError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// DeezerTracksPage is a page of /user/{id}/tracks.
type DeezerTracksPage struct {
	Data  []DeezerTrack `json:"data"`
	Total int           `json:"total"`
	Next  *string       `json:"next"`
	Error *DeezerError  `json:"error"`
}

// DeezerClient fetches a user's favourite tracks using a session cookie.
type DeezerClient struct {
	cookie     string
	userID     string
	baseURL    string
	authorized bool
	httpClient *http.Client
	logger     *log.Logger
}

// NewDeezerClient creates a client for the user in creds.
func NewDeezerClient(creds shared.DeezerConfig, httpClient *http.Client, logger *log.Logger) (*DeezerClient, error) {
	if strings.TrimSpace(creds.Cookie) == "" {
		return nil, shared.ConfigError("missing Deezer cookie", nil)
	}
	if strings.TrimSpace(creds.UserID) == "" {
		return nil, shared.ConfigError("missing Deezer user id", nil)
	}

	return &DeezerClient{
		cookie:     strings.TrimSpace(creds.Cookie),
		userID:     strings.TrimSpace(creds.UserID),
		baseURL:    deezerBaseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

func (c *DeezerClient) Name() string { return "Deezer" }
func (c *DeezerClient) Kind() Kind   { return Deezer }
func (c *DeezerClient) platform()    {}

// Authorize validates the static credentials. No request is made.
func (c *DeezerClient) Authorize(ctx context.Context) error {
	if _, err := strconv.ParseUint(c.userID, 10, 64); err != nil {
		return shared.ConfigError(fmt.Sprintf("Deezer user id %q is not numeric", c.userID), err)
	}
	c.authorized = true
	c.logger.Debug("using session cookie", "user", c.userID)
	return nil
}

// FetchPage fetches one page of favourites. The cursor is the numeric index of the first track.
func (c *DeezerClient) FetchPage(ctx context.Context, cursor Cursor) (Page, error) {
	if !c.authorized {
		return Page{}, notAuthorized(c.Name())
	}

	index := "0"
	if !cursor.IsZero() {
		index = cursor.token
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(PageSize))
	query.Set("index", index)
	endpoint := fmt.Sprintf("%s/user/%s/tracks?%s", c.baseURL, url.PathEscape(c.userID), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Page{}, shared.TransportError("failed to build Deezer request", err)
	}
	req.Header.Set("Cookie", c.cookie)

	var resp DeezerTracksPage
	if err := doJSON(c.httpClient, req, c.Name(), &resp); err != nil {
		return Page{}, err
	}
	if resp.Error != nil {
		return Page{}, shared.TransportError(
			fmt.Sprintf("Deezer API error: %s (code %d)", resp.Error.Type, resp.Error.Code),
			fmt.Errorf("%s", resp.Error.Message),
		)
	}

	next, err := deezerNextCursor(resp.Next)
	if err != nil {
		return Page{}, err
	}

	records := make([]models.MusicRecord, 0, len(resp.Data))
	for _, track := range resp.Data {
		records = append(records, track.Record())
	}

	c.logger.Debug("fetched page", "index", index, "records", len(records), "total", resp.Total)
	return Page{Records: records, Next: next}, nil
}

// deezerNextCursor extracts the index parameter of the next page URL.
func deezerNextCursor(next *string) (Cursor, error) {
	if next == nil || *next == "" {
		return Cursor{}, nil
	}

	u, err := url.Parse(*next)
	if err != nil {
		return Cursor{}, shared.ParseError("invalid Deezer next URL", err)
	}

	index := u.Query().Get("index")
	if _, err := strconv.Atoi(index); err != nil {
		return Cursor{}, shared.ParseError(fmt.Sprintf("Deezer next URL has no numeric index: %s", *next), err)
	}

	return CursorOf(index), nil
}

// Record maps the track onto a catalog record.
func (t DeezerTrack) Record() models.MusicRecord {
	return models.MusicRecord{
		Author:    t.Artist.Name,
		Title:     t.Title,
		URL:       models.Optional(t.Link),
		Thumbnail: models.Optional(t.Album.Cover),
		Album:     models.Optional(t.Album.Title),
	}
}
