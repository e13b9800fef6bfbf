// YouTube Data API v3 implementation of [PlaylistService]
//
// Reads use the API key; writes are authorized with an OAuth2 bearer token.
// Reference: https://developers.google.com/youtube/v3/docs/playlistItems
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plcopy/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultYTBaseURL = "https://www.googleapis.com/youtube/v3"
	googleAuthURL    = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL   = "https://oauth2.googleapis.com/token"
	youtubeScope     = "https://www.googleapis.com/auth/youtube"
	videoKind        = "youtube#video"

	// unparsedErrorMessage is reported when a failed response has no structured error payload.
	unparsedErrorMessage = "could not parse detailed error message from API response"
)

// YouTubeResourceID identifies the resource a playlist item points at.
type YouTubeResourceID struct {
	Kind    string `json:"kind"`
	VideoID string `json:"videoId,omitempty"`
}

// YouTubeSnippet is the snippet part of a playlistItem resource.
type YouTubeSnippet struct {
	PlaylistID string             `json:"playlistId"`
	Title      string             `json:"title,omitempty"`
	Position   int                `json:"position,omitempty"`
	ResourceID *YouTubeResourceID `json:"resourceId,omitempty"`
}

// YouTubePlaylistItem represents a playlistItem resource.
type YouTubePlaylistItem struct {
	ID      string          `json:"id,omitempty"`
	Snippet *YouTubeSnippet `json:"snippet,omitempty"`
}

// YouTubePlaylistItemList is one page of a playlistItems.list response.
type YouTubePlaylistItemList struct {
	NextPageToken string                `json:"nextPageToken"`
	Items         []YouTubePlaylistItem `json:"items"`
	PageInfo      struct {
		TotalResults   int `json:"totalResults"`
		ResultsPerPage int `json:"resultsPerPage"`
	} `json:"pageInfo"`
}

// videoID resolves snippet.resourceId.videoId, returning "" when any level is missing.
func (i YouTubePlaylistItem) videoID() string {
	if i.Snippet == nil || i.Snippet.ResourceID == nil {
		return ""
	}
	return i.Snippet.ResourceID.VideoID
}

// APIError is a non-2xx answer from the Data API.
//
// Message and Reason come from the structured error payload when present.
// When the body could not be parsed, Message holds a generic notice and Parsed is false.
type APIError struct {
	StatusCode int
	Message    string
	Reason     string
	Parsed     bool
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("youtube API error (status %d, reason %s): %s", e.StatusCode, e.Reason, e.Message)
	}
	return fmt.Sprintf("youtube API error (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap maps the status onto the shared sentinel errors.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return shared.ErrTokenExpired
	}
	return shared.ErrAPIRequest
}

// parseAPIError builds an [APIError] from a failed response body.
func parseAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Errors  []struct {
				Reason  string `json:"reason"`
				Message string `json:"message"`
			} `json:"errors"`
		} `json:"error"`
	}

	apiErr := &APIError{StatusCode: status, Message: unparsedErrorMessage}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error == nil {
		return apiErr
	}

	apiErr.Parsed = true
	apiErr.Message = payload.Error.Message
	if len(payload.Error.Errors) > 0 {
		apiErr.Reason = payload.Error.Errors[0].Reason
	}
	return apiErr
}

// YouTubeOpts configures a [YouTubeService].
type YouTubeOpts struct {
	BaseURL           string
	APIKey            string
	PageSize          int
	RequestsPerSecond float64 // 0 disables client-side pacing
	TokenSource       oauth2.TokenSource
	HTTPClient        *http.Client
	Logger            *log.Logger
}

// YouTubeService implements [PlaylistService] against the YouTube Data API.
type YouTubeService struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient *http.Client
	authClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

var _ PlaylistService = (*YouTubeService)(nil)

// NewYouTubeService creates a new YouTube service instance.
func NewYouTubeService(opts YouTubeOpts) *YouTubeService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultYTBaseURL
	}
	if opts.PageSize <= 0 || opts.PageSize > shared.MaxPageSize {
		opts.PageSize = shared.MaxPageSize
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	svc := &YouTubeService{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		pageSize:   opts.PageSize,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}

	if opts.TokenSource != nil {
		svc.authClient = &http.Client{
			Transport: &oauth2.Transport{
				Source: oauth2.ReuseTokenSource(nil, opts.TokenSource),
				Base:   opts.HTTPClient.Transport,
			},
			Timeout: opts.HTTPClient.Timeout,
		}
	}

	if opts.RequestsPerSecond > 0 {
		svc.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return svc
}

// OAuthConfig returns the OAuth client for the youtube scope.
//
// Endpoints default to Google's when the config leaves them empty.
func OAuthConfig(cfg shared.YouTubeConfig, redirectURL string) *oauth2.Config {
	endpoint := oauth2.Endpoint{AuthURL: cfg.AuthURL, TokenURL: cfg.TokenURL}
	if endpoint.AuthURL == "" {
		endpoint.AuthURL = googleAuthURL
	}
	if endpoint.TokenURL == "" {
		endpoint.TokenURL = googleTokenURL
	}

	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{youtubeScope},
		Endpoint:     endpoint,
	}
}

// AuthCodeURL returns the consent page URL for conf.
//
// Offline access with forced consent makes Google issue a refresh token on every sign-in.
func AuthCodeURL(conf *oauth2.Config, state string) string {
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// NewTokenSource builds the bearer credential used for writes.
//
// With a refresh token and client credentials the source refreshes expired access tokens
// against Google's token endpoint; otherwise the configured access token is used as-is.
func NewTokenSource(ctx context.Context, cfg shared.YouTubeConfig) (oauth2.TokenSource, error) {
	if cfg.CanRefresh() {
		return OAuthConfig(cfg, "").TokenSource(ctx, &oauth2.Token{
			AccessToken:  cfg.AccessToken,
			RefreshToken: cfg.RefreshToken,
		}), nil
	}

	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("%w: access_token or refresh credentials are required", shared.ErrMissingCredentials)
	}

	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"}), nil
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube"
}

// do sends req with the given client after waiting on the limiter and returns the body of a 2xx response.
func (y *YouTubeService) do(ctx context.Context, client *http.Client, req *http.Request) ([]byte, error) {
	if y.limiter != nil {
		if err := y.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseAPIError(resp.StatusCode, body)
	}

	return body, nil
}

// listPage fetches a single page of playlistID starting at pageToken.
func (y *YouTubeService) listPage(ctx context.Context, playlistID, pageToken string) (*YouTubePlaylistItemList, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("playlistId", playlistID)
	params.Set("maxResults", fmt.Sprint(y.pageSize))
	if y.apiKey != "" {
		params.Set("key", y.apiKey)
	}
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.baseURL+"/playlistItems?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := y.do(ctx, y.httpClient, req)
	if err != nil {
		return nil, err
	}

	var page YouTubePlaylistItemList
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &page, nil
}

// ListPlaylistItems retrieves every item of a playlist, following nextPageToken.
//
// Calls GET /playlistItems?part=snippet. Entries without a resolvable video ID are skipped.
// Any failure aborts the whole listing: the returned slice is nil and the error wraps [shared.ErrListingFailed].
func (y *YouTubeService) ListPlaylistItems(ctx context.Context, playlistID string) ([]PlaylistItem, error) {
	var items []PlaylistItem
	seen := make(map[string]struct{})
	pageToken := ""

	for page := 1; ; page++ {
		resp, err := y.listPage(ctx, playlistID, pageToken)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", shared.ErrListingFailed, page, err)
		}

		for _, raw := range resp.Items {
			videoID := raw.videoID()
			if videoID == "" {
				y.logger.Debug("skipping entry without video id", "item", raw.ID, "page", page)
				continue
			}
			items = append(items, PlaylistItem{
				ID:       raw.ID,
				VideoID:  videoID,
				Title:    raw.Snippet.Title,
				Position: raw.Snippet.Position,
			})
		}

		y.logger.Debug("fetched page", "playlist", playlistID, "page", page, "items", len(resp.Items), "total", resp.PageInfo.TotalResults)

		if resp.NextPageToken == "" {
			break
		}
		if _, dup := seen[resp.NextPageToken]; dup {
			return nil, fmt.Errorf("%w: %w %q", shared.ErrListingFailed, shared.ErrPaginationLoop, resp.NextPageToken)
		}
		seen[resp.NextPageToken] = struct{}{}
		pageToken = resp.NextPageToken
	}

	if items == nil {
		items = []PlaylistItem{}
	}
	return items, nil
}

// InsertPlaylistItem appends a video to a playlist.
//
// Calls POST /playlistItems?part=snippet with a bearer token. Failures carry an [*APIError] when the API answered.
func (y *YouTubeService) InsertPlaylistItem(ctx context.Context, playlistID, videoID string) error {
	if y.authClient == nil {
		return fmt.Errorf("%w: no bearer token configured", shared.ErrNotAuthenticated)
	}

	payload, err := json.Marshal(YouTubePlaylistItem{
		Snippet: &YouTubeSnippet{
			PlaylistID: playlistID,
			ResourceID: &YouTubeResourceID{Kind: videoKind, VideoID: videoID},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal playlist item: %w", err)
	}

	params := url.Values{}
	params.Set("part", "snippet")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.baseURL+"/playlistItems?"+params.Encode(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := y.do(ctx, y.authClient, req)
	if err != nil {
		return err
	}

	var created YouTubePlaylistItem
	if err := json.Unmarshal(body, &created); err == nil && created.ID != "" {
		y.logger.Debug("inserted playlist item", "video", videoID, "item", created.ID)
	}
	return nil
}

// ErrorDetail returns a human-readable reason for a failed call.
//
// Structured API errors yield their message and reason; anything else falls back to err.Error().
func ErrorDetail(err error) (message, reason string) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message, apiErr.Reason
	}
	if err == nil {
		return "", ""
	}
	return err.Error(), ""
}
