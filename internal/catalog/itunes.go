// iTunes Search API client.
//
// Response types based on https://performance-partners.apple.com/search-api
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kmoran-dev/soundshelf/internal/domain"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://itunes.apple.com"

const (
	maxSearchLimit   = 200
	maxTrendingLimit = 50
)

// Song is a catalog search result. Only songs with a preview URL are
// returned; the player cannot do anything with the rest.
type Song struct {
	TrackID          int64  `json:"trackId"`
	TrackName        string `json:"trackName"`
	ArtistName       string `json:"artistName"`
	CollectionName   string `json:"collectionName"`
	ArtworkURL100    string `json:"artworkUrl100"`
	ArtworkURL60     string `json:"artworkUrl60"`
	PreviewURL       string `json:"previewUrl"`
	TrackTimeMillis  int    `json:"trackTimeMillis"`
	ReleaseDate      string `json:"releaseDate"`
	PrimaryGenreName string `json:"primaryGenreName"`
}

type searchResponse struct {
	ResultCount int    `json:"resultCount"`
	Results     []Song `json:"results"`
}

type topSongsFeed struct {
	Feed struct {
		Entry []struct {
			ID struct {
				Attributes struct {
					ID string `json:"im:id"`
				} `json:"attributes"`
			} `json:"id"`
		} `json:"entry"`
	} `json:"feed"`
}

// Client talks to the iTunes Search API. Outbound requests are throttled
// so a burst of proxied searches cannot hammer the upstream service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewClient creates a catalog client. baseURL may be empty to use the
// public iTunes endpoint; tests point it at a local server.
func NewClient(baseURL string, timeout time.Duration, requestsPerSecond float64) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Search looks up songs matching the given term. The limit is clamped to
// the API maximum; results without a preview URL are dropped.
func (c *Client) Search(ctx context.Context, term string, limit int) ([]Song, error) {
	if term == "" {
		return nil, fmt.Errorf("%w: search term is required", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 25
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	q := url.Values{}
	q.Set("term", term)
	q.Set("media", "music")
	q.Set("entity", "song")
	q.Set("limit", strconv.Itoa(limit))

	var resp searchResponse
	if err := c.getJSON(ctx, c.baseURL+"/search?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	return withPreviews(resp.Results), nil
}

// Trending returns the current top songs. It reads the top-songs RSS feed
// and resolves each entry through the lookup endpoint, keeping songs that
// have previews.
func (c *Client) Trending(ctx context.Context, limit int) ([]Song, error) {
	if limit <= 0 {
		limit = 12
	}
	if limit > maxTrendingLimit {
		limit = maxTrendingLimit
	}

	var feed topSongsFeed
	feedURL := fmt.Sprintf("%s/us/rss/topsongs/limit=%d/json", c.baseURL, limit)
	if err := c.getJSON(ctx, feedURL, &feed); err != nil {
		return nil, err
	}

	var songs []Song
	for _, entry := range feed.Feed.Entry {
		if entry.ID.Attributes.ID == "" {
			continue
		}

		var lookup searchResponse
		lookupURL := c.baseURL + "/lookup?id=" + url.QueryEscape(entry.ID.Attributes.ID) + "&entity=song"
		if err := c.getJSON(ctx, lookupURL, &lookup); err != nil {
			// A single broken feed entry should not sink the whole
			// response.
			continue
		}
		songs = append(songs, withPreviews(lookup.Results)...)

		if len(songs) >= limit {
			break
		}
	}

	if len(songs) > limit {
		songs = songs[:limit]
	}
	return songs, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog request: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}

func withPreviews(songs []Song) []Song {
	out := make([]Song, 0, len(songs))
	for _, s := range songs {
		if s.PreviewURL != "" {
			out = append(out, s)
		}
	}
	return out
}
