package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/sonicsync/sonicsync/internal/model"
)

const (
	apiBaseURL = "https://api.spotify.com/v1"
	tokenURL   = "https://accounts.spotify.com/api/token"

	// pageLimit is the Web API maximum page size for playlist tracks.
	pageLimit = 100
)

var (
	// ErrInvalidReference means the input is not a recognizable playlist
	// URL, URI or ID.
	ErrInvalidReference = errors.New("spotify: invalid playlist reference")

	// ErrNotPublic means the playlist exists but is not readable with
	// client credentials.
	ErrNotPublic = errors.New("spotify: playlist not found or not public")

	// ErrUpstream means the API answered with an unexpected failure.
	ErrUpstream = errors.New("spotify: upstream error")
)

// playlistIDRes match the playlist reference shapes users paste in.
var playlistIDRes = []*regexp.Regexp{
	regexp.MustCompile(`playlist/([a-zA-Z0-9]+)`),
	regexp.MustCompile(`playlist:([a-zA-Z0-9]+)`),
}

var bareIDRe = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// ExtractPlaylistID pulls the playlist ID out of a share URL, a Spotify
// URI or a bare ID.
func ExtractPlaylistID(reference string) (string, error) {
	reference = strings.TrimSpace(reference)
	for _, re := range playlistIDRes {
		if m := re.FindStringSubmatch(reference); m != nil {
			return m[1], nil
		}
	}
	if bareIDRe.MatchString(reference) {
		return reference, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidReference, reference)
}

// PlaylistInfo is the playlist-level metadata shown before a download
// starts.
type PlaylistInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	TotalTracks int    `json:"total_tracks"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Client talks to the Spotify Web API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewClient creates a Client authenticating with the client-credentials
// flow. The returned client refreshes its token transparently.
func NewClient(clientID, clientSecret string, logger *zap.Logger) *Client {
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	return &Client{
		httpClient: cfg.Client(context.Background()),
		baseURL:    apiBaseURL,
		logger:     logger,
	}
}

// NewClientForEndpoint creates a Client against a custom API base URL
// with a plain HTTP client. Intended for tests.
func NewClientForEndpoint(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// apiTrackPage mirrors the playlist tracks endpoint response shape.
type apiTrackPage struct {
	Items []struct {
		Track *struct {
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			DurationMS int `json:"duration_ms"`
			Album      struct {
				Images []struct {
					URL string `json:"url"`
				} `json:"images"`
			} `json:"album"`
		} `json:"track"`
	} `json:"items"`
	Next string `json:"next"`
}

type apiPlaylist struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Owner       struct {
		DisplayName string `json:"display_name"`
	} `json:"owner"`
	Tracks struct {
		Total int `json:"total"`
	} `json:"tracks"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

// PlaylistTracks fetches every track of the playlist, following
// pagination. Local files and ghost entries (null track objects) are
// skipped. Multiple artists join into one comma-separated credit.
func (c *Client) PlaylistTracks(ctx context.Context, reference string) ([]model.TrackDescriptor, error) {
	id, err := ExtractPlaylistID(reference)
	if err != nil {
		return nil, err
	}

	c.logger.Info("fetching playlist tracks", zap.String("playlist_id", id))

	next := fmt.Sprintf("%s/playlists/%s/tracks?limit=%d", c.baseURL, url.PathEscape(id), pageLimit)

	var tracks []model.TrackDescriptor
	for next != "" {
		var page apiTrackPage
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			t := item.Track
			if t == nil || t.Name == "" {
				continue
			}

			names := make([]string, 0, len(t.Artists))
			for _, a := range t.Artists {
				names = append(names, a.Name)
			}

			desc := model.TrackDescriptor{
				Title:    t.Name,
				Artist:   strings.Join(names, ", "),
				Duration: time.Duration(t.DurationMS) * time.Millisecond,
			}
			if len(t.Album.Images) > 0 {
				desc.ArtworkURL = t.Album.Images[0].URL
			}
			tracks = append(tracks, desc)
		}

		next = page.Next
	}

	c.logger.Info("fetched playlist tracks", zap.Int("count", len(tracks)))
	return tracks, nil
}

// PlaylistInfo fetches the playlist-level metadata.
func (c *Client) PlaylistInfo(ctx context.Context, reference string) (*PlaylistInfo, error) {
	id, err := ExtractPlaylistID(reference)
	if err != nil {
		return nil, err
	}

	var pl apiPlaylist
	endpoint := fmt.Sprintf("%s/playlists/%s", c.baseURL, url.PathEscape(id))
	if err := c.getJSON(ctx, endpoint, &pl); err != nil {
		return nil, err
	}

	info := &PlaylistInfo{
		Name:        pl.Name,
		Description: pl.Description,
		Owner:       pl.Owner.DisplayName,
		TotalTracks: pl.Tracks.Total,
	}
	if len(pl.Images) > 0 {
		info.ImageURL = pl.Images[0].URL
	}
	return info, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusForbidden:
		return ErrNotPublic
	default:
		return fmt.Errorf("%w: HTTP %d", ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	return nil
}
