// YouTube Data API implementation of [Client]
//
// Reads the items of the authenticated user's liked videos playlist, or of an explicitly configured playlist.
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
	"golang.org/x/oauth2"
)

const (
	youtubeAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	youtubeTokenURL = "https://oauth2.googleapis.com/token"
	youtubeBaseURL  = "https://youtube.googleapis.com/youtube/v3"
	youtubeScope    = "https://www.googleapis.com/auth/youtube.readonly"
)

// YouTubeChannelList is the response of channels?mine=true.
type YouTubeChannelList struct {
	Items []YouTubeChannel `json:"items"`
}

// YouTubeChannel carries the ids of the channel's special playlists.
type YouTubeChannel struct {
	ID             string `json:"id"`
	ContentDetails struct {
		RelatedPlaylists struct {
			Likes   string `json:"likes"`
			Uploads string `json:"uploads"`
		} `json:"relatedPlaylists"`
	} `json:"contentDetails"`
}

// YouTubePlaylistItems is a page of playlistItems.
type YouTubePlaylistItems struct {
	Items         []YouTubePlaylistItem `json:"items"`
	NextPageToken string                `json:"nextPageToken"`
	PageInfo      struct {
		TotalResults int `json:"totalResults"`
	} `json:"pageInfo"`
}

// YouTubePlaylistItem is one video of a playlist.
type YouTubePlaylistItem struct {
	Snippet struct {
		Title                  string  `json:"title"`
		PublishedAt            string  `json:"publishedAt"`
		VideoOwnerChannelTitle *string `json:"videoOwnerChannelTitle"`
		ResourceID             struct {
			VideoID string `json:"videoId"`
		} `json:"resourceId"`
	} `json:"snippet"`
	ContentDetails struct {
		VideoID string `json:"videoId"`
	} `json:"contentDetails"`
}

// YouTubeClient fetches liked videos with an OAuth2 bearer token plus an API key.
type YouTubeClient struct {
	config     *oauth2.Config
	token      *oauth2.Token
	apiKey     string
	playlistID string
	codes      CodeSource
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewYouTubeClient creates a client for the application in creds, redirecting to redirectURI.
func NewYouTubeClient(creds shared.YouTubeConfig, redirectURI string, codes CodeSource, httpClient *http.Client, logger *log.Logger) (*YouTubeClient, error) {
	switch {
	case strings.TrimSpace(creds.ClientID) == "":
		return nil, shared.ConfigError("missing YouTube client id", nil)
	case strings.TrimSpace(creds.ClientSecret) == "":
		return nil, shared.ConfigError("missing YouTube client secret", nil)
	case strings.TrimSpace(creds.APIKey) == "":
		return nil, shared.ConfigError("missing YouTube API key", nil)
	}

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{youtubeScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:   youtubeAuthURL,
			TokenURL:  youtubeTokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	return &YouTubeClient{
		config:     config,
		apiKey:     creds.APIKey,
		playlistID: strings.TrimSpace(creds.PlaylistID),
		codes:      codes,
		baseURL:    youtubeBaseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

func (c *YouTubeClient) Name() string { return "YouTube" }
func (c *YouTubeClient) Kind() Kind   { return YouTube }
func (c *YouTubeClient) platform()    {}

// Authorize obtains an authorization code from the code source and exchanges it for a bearer token.
func (c *YouTubeClient) Authorize(ctx context.Context) error {
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

func (c *YouTubeClient) get(ctx context.Context, path string, query url.Values, out any) error {
	query.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return shared.TransportError("failed to build YouTube request", err)
	}
	c.token.SetAuthHeader(req)

	return doJSON(c.httpClient, req, c.Name(), out)
}

// likedPlaylist looks up the id of the authenticated channel's liked videos playlist.
func (c *YouTubeClient) likedPlaylist(ctx context.Context) (string, error) {
	query := url.Values{}
	query.Set("part", "contentDetails")
	query.Set("mine", "true")

	var resp YouTubeChannelList
	if err := c.get(ctx, "/channels", query, &resp); err != nil {
		return "", err
	}

	if len(resp.Items) == 0 {
		return "", shared.ParseError("YouTube returned no channel for the authorized user", nil)
	}

	likes := resp.Items[0].ContentDetails.RelatedPlaylists.Likes
	if likes == "" {
		return "", shared.ParseError("YouTube channel has no liked videos playlist", nil)
	}

	return likes, nil
}

// FetchPage fetches one page of playlist items. The cursor is YouTube's page token.
//
// Before the first page the liked playlist id is resolved unless one was configured.
func (c *YouTubeClient) FetchPage(ctx context.Context, cursor Cursor) (Page, error) {
	if c.token == nil {
		return Page{}, notAuthorized(c.Name())
	}

	if c.playlistID == "" {
		id, err := c.likedPlaylist(ctx)
		if err != nil {
			return Page{}, err
		}
		c.playlistID = id
		c.logger.Debug("resolved liked playlist", "playlist", id)
	}

	query := url.Values{}
	query.Set("part", "snippet,contentDetails")
	query.Set("maxResults", strconv.Itoa(PageSize))
	query.Set("playlistId", c.playlistID)
	if !cursor.IsZero() {
		query.Set("pageToken", cursor.token)
	}

	var resp YouTubePlaylistItems
	if err := c.get(ctx, "/playlistItems", query, &resp); err != nil {
		return Page{}, err
	}

	records := make([]models.MusicRecord, 0, len(resp.Items))
	for _, item := range resp.Items {
		records = append(records, item.Record())
	}

	c.logger.Debug("fetched page", "cursor", cursor, "records", len(records), "total", resp.PageInfo.TotalResults)
	return Page{Records: records, Next: CursorOf(resp.NextPageToken)}, nil
}

func (item YouTubePlaylistItem) videoID() string {
	if item.ContentDetails.VideoID != "" {
		return item.ContentDetails.VideoID
	}
	return item.Snippet.ResourceID.VideoID
}

// Record maps the playlist item onto a catalog record.
func (item YouTubePlaylistItem) Record() models.MusicRecord {
	id := item.videoID()

	return models.MusicRecord{
		Author:    CleanAuthor(item.Snippet.VideoOwnerChannelTitle),
		Title:     CleanTitle(item.Snippet.Title),
		URL:       models.Optional(fmt.Sprintf("https://www.youtube.com/watch?v=%s", id)),
		Thumbnail: models.Optional(fmt.Sprintf("https://img.youtube.com/vi/%s/default.jpg", id)),
		Date:      models.Optional(item.Snippet.PublishedAt),
	}
}
