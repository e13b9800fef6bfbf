package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/plcopy/internal/shared"
	"golang.org/x/oauth2"
)

// pagedPlaylist serves n generated items ("vid-0".."vid-n-1") in pages of the requested size.
func pagedPlaylist(t *testing.T, n int, requests *int32) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requests, 1)

		if r.URL.Path != "/playlistItems" {
			t.Errorf("expected path /playlistItems, got %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("expected GET method, got %s", r.Method)
		}

		q := r.URL.Query()
		if q.Get("part") != "snippet" || q.Get("playlistId") != "PLsrc" || q.Get("key") != "api-key" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}

		size, _ := strconv.Atoi(q.Get("maxResults"))
		if size != 50 {
			t.Errorf("expected maxResults=50, got %d", size)
		}

		start := 0
		if tok := q.Get("pageToken"); tok != "" {
			start, _ = strconv.Atoi(tok)
		}
		end := min(start+size, n)

		page := YouTubePlaylistItemList{}
		page.PageInfo.TotalResults = n
		for i := start; i < end; i++ {
			page.Items = append(page.Items, YouTubePlaylistItem{
				ID: fmt.Sprintf("item-%d", i),
				Snippet: &YouTubeSnippet{
					PlaylistID: "PLsrc",
					Title:      fmt.Sprintf("Video %d", i),
					Position:   i,
					ResourceID: &YouTubeResourceID{Kind: videoKind, VideoID: fmt.Sprintf("vid-%d", i)},
				},
			})
		}
		if end < n {
			page.NextPageToken = strconv.Itoa(end)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(page)
	}
}

func newTestService(url string) *YouTubeService {
	return NewYouTubeService(YouTubeOpts{
		BaseURL:     url,
		APIKey:      "api-key",
		TokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "secret-token"}),
	})
}

func TestYouTubeService(t *testing.T) {
	t.Run("NewYouTubeService", func(t *testing.T) {
		t.Run("applies defaults", func(t *testing.T) {
			svc := NewYouTubeService(YouTubeOpts{})
			if svc.baseURL != defaultYTBaseURL {
				t.Errorf("expected baseURL to be %s, got %s", defaultYTBaseURL, svc.baseURL)
			}
			if svc.pageSize != shared.MaxPageSize {
				t.Errorf("expected page size %d, got %d", shared.MaxPageSize, svc.pageSize)
			}
			if svc.authClient != nil {
				t.Error("expected no auth client without a token source")
			}
			if svc.limiter != nil {
				t.Error("expected no limiter by default")
			}
		})

		t.Run("clamps page size", func(t *testing.T) {
			if svc := NewYouTubeService(YouTubeOpts{PageSize: 500}); svc.pageSize != shared.MaxPageSize {
				t.Errorf("expected page size to be clamped, got %d", svc.pageSize)
			}
			if svc := NewYouTubeService(YouTubeOpts{PageSize: 10}); svc.pageSize != 10 {
				t.Errorf("expected page size 10, got %d", svc.pageSize)
			}
		})

		t.Run("creates limiter", func(t *testing.T) {
			if svc := NewYouTubeService(YouTubeOpts{RequestsPerSecond: 2}); svc.limiter == nil {
				t.Error("expected limiter to be configured")
			}
		})
	})

	t.Run("Name", func(t *testing.T) {
		if svc := NewYouTubeService(YouTubeOpts{}); svc.Name() != "YouTube" {
			t.Errorf("expected name to be 'YouTube', got %s", svc.Name())
		}
	})

	t.Run("ListPlaylistItems", func(t *testing.T) {
		tc := []struct {
			name      string
			n         int
			wantPages int32
		}{
			{name: "empty playlist", n: 0, wantPages: 1},
			{name: "single page", n: 7, wantPages: 1},
			{name: "exact page boundary", n: 50, wantPages: 1},
			{name: "multiple pages", n: 120, wantPages: 3},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				var requests int32
				server := httptest.NewServer(pagedPlaylist(t, tt.n, &requests))
				defer server.Close()

				items, err := newTestService(server.URL).ListPlaylistItems(context.Background(), "PLsrc")
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}

				if len(items) != tt.n {
					t.Fatalf("expected %d items, got %d", tt.n, len(items))
				}
				if items == nil {
					t.Error("expected empty, non-nil slice")
				}
				for i, item := range items {
					if want := fmt.Sprintf("vid-%d", i); item.VideoID != want {
						t.Fatalf("item %d: expected %s, got %s", i, want, item.VideoID)
					}
				}
				if requests != tt.wantPages {
					t.Errorf("expected %d page requests, got %d", tt.wantPages, requests)
				}
			})
		}
	})

	t.Run("ListPlaylistItems skips entries without video id", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"items":[
				{"id":"a","snippet":{"title":"A","resourceId":{"kind":"youtube#video","videoId":"A"}}},
				{"id":"deleted","snippet":{"title":"Deleted video","resourceId":{"kind":"youtube#video"}}},
				{"id":"no-resource","snippet":{"title":"Private"}},
				{"id":"no-snippet"},
				{"id":"b","snippet":{"title":"B","position":4,"resourceId":{"kind":"youtube#video","videoId":"B"}}}
			]}`)
		}))
		defer server.Close()

		items, err := newTestService(server.URL).ListPlaylistItems(context.Background(), "PLsrc")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		ids := VideoIDs(items)
		if len(ids) != 2 || ids[0] != "A" || ids[1] != "B" {
			t.Fatalf("expected [A B], got %v", ids)
		}
		if items[1].Title != "B" || items[1].Position != 4 {
			t.Errorf("expected snippet fields to be carried over, got %+v", items[1])
		}
	})

	t.Run("ListPlaylistItems discards partial results on failure", func(t *testing.T) {
		var requests int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&requests, 1) == 1 {
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, `{"nextPageToken":"p2","items":[{"snippet":{"resourceId":{"videoId":"A"}}}]}`)
				return
			}
			w.WriteHeader(http.StatusForbidden)
			io.WriteString(w, `{"error":{"code":403,"message":"quota exceeded","errors":[{"reason":"quotaExceeded"}]}}`)
		}))
		defer server.Close()

		items, err := newTestService(server.URL).ListPlaylistItems(context.Background(), "PLsrc")
		if items != nil {
			t.Errorf("expected nil items, got %v", items)
		}
		if !errors.Is(err, shared.ErrListingFailed) {
			t.Fatalf("expected ErrListingFailed, got %v", err)
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Reason != "quotaExceeded" {
			t.Errorf("expected quotaExceeded APIError, got %v", err)
		}
	})

	t.Run("ListPlaylistItems fails on undecodable page", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "<html>not json</html>")
		}))
		defer server.Close()

		items, err := newTestService(server.URL).ListPlaylistItems(context.Background(), "PLsrc")
		if items != nil || !errors.Is(err, shared.ErrListingFailed) {
			t.Fatalf("expected listing failure, got %v / %v", items, err)
		}
	})

	t.Run("ListPlaylistItems fails on transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := newTestService(url).ListPlaylistItems(context.Background(), "PLsrc")
		if !errors.Is(err, shared.ErrListingFailed) || !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected wrapped transport failure, got %v", err)
		}
	})

	t.Run("ListPlaylistItems stops on repeating token", func(t *testing.T) {
		var requests int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&requests, 1) > 10 {
				t.Error("listing did not terminate")
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			io.WriteString(w, `{"nextPageToken":"same","items":[{"snippet":{"resourceId":{"videoId":"A"}}}]}`)
		}))
		defer server.Close()

		_, err := newTestService(server.URL).ListPlaylistItems(context.Background(), "PLsrc")
		if !errors.Is(err, shared.ErrPaginationLoop) {
			t.Fatalf("expected ErrPaginationLoop, got %v", err)
		}
		if requests != 2 {
			t.Errorf("expected 2 requests before detecting the loop, got %d", requests)
		}
	})

	t.Run("InsertPlaylistItem", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST method, got %s", r.Method)
			}
			if r.URL.Path != "/playlistItems" || r.URL.Query().Get("part") != "snippet" {
				t.Errorf("unexpected request URL %s", r.URL)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
				t.Errorf("expected bearer token, got %q", got)
			}
			if got := r.Header.Get("Content-Type"); got != "application/json" {
				t.Errorf("expected JSON content type, got %q", got)
			}

			var body YouTubePlaylistItem
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Snippet == nil || body.Snippet.PlaylistID != "PLdest" {
				t.Fatalf("expected destination playlist in body, got %+v", body.Snippet)
			}
			if rid := body.Snippet.ResourceID; rid == nil || rid.Kind != "youtube#video" || rid.VideoID != "vid-1" {
				t.Errorf("unexpected resourceId %+v", rid)
			}

			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"id":"new-item","snippet":{"playlistId":"PLdest"}}`)
		}))
		defer server.Close()

		if err := newTestService(server.URL).InsertPlaylistItem(context.Background(), "PLdest", "vid-1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("InsertPlaylistItem surfaces structured errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			io.WriteString(w, `{"error":{"code":403,"message":"The request cannot be completed because you have exceeded your quota.","errors":[{"message":"quota","domain":"youtube.quota","reason":"quotaExceeded"}]}}`)
		}))
		defer server.Close()

		err := newTestService(server.URL).InsertPlaylistItem(context.Background(), "PLdest", "vid-1")

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %v", err)
		}
		if !apiErr.Parsed || apiErr.StatusCode != http.StatusForbidden || apiErr.Reason != "quotaExceeded" {
			t.Errorf("unexpected APIError %+v", apiErr)
		}
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Error("expected APIError to unwrap to ErrAPIRequest")
		}

		msg, reason := ErrorDetail(err)
		if reason != "quotaExceeded" || msg == "" {
			t.Errorf("ErrorDetail() = %q, %q", msg, reason)
		}
	})

	t.Run("InsertPlaylistItem reports unparseable errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			io.WriteString(w, "upstream connect error")
		}))
		defer server.Close()

		err := newTestService(server.URL).InsertPlaylistItem(context.Background(), "PLdest", "vid-1")

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %v", err)
		}
		if apiErr.Parsed || apiErr.Message != unparsedErrorMessage {
			t.Errorf("expected generic parse notice, got %+v", apiErr)
		}
	})

	t.Run("InsertPlaylistItem maps 401 to expired token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"error":{"code":401,"message":"Invalid Credentials","errors":[{"reason":"authError"}]}}`)
		}))
		defer server.Close()

		err := newTestService(server.URL).InsertPlaylistItem(context.Background(), "PLdest", "vid-1")
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Fatalf("expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("InsertPlaylistItem without token", func(t *testing.T) {
		svc := NewYouTubeService(YouTubeOpts{BaseURL: "http://127.0.0.1:0"})
		if err := svc.InsertPlaylistItem(context.Background(), "PLdest", "vid-1"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestNewTokenSource(t *testing.T) {
	t.Run("static token", func(t *testing.T) {
		ts, err := NewTokenSource(context.Background(), shared.YouTubeConfig{AccessToken: "abc"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tok, err := ts.Token()
		if err != nil {
			t.Fatalf("expected token, got %v", err)
		}
		if tok.AccessToken != "abc" || tok.Type() != "Bearer" {
			t.Errorf("unexpected token %+v", tok)
		}
	})

	t.Run("refreshing source", func(t *testing.T) {
		ts, err := NewTokenSource(context.Background(), shared.YouTubeConfig{
			RefreshToken: "r", ClientID: "id", ClientSecret: "secret",
		})
		if err != nil || ts == nil {
			t.Fatalf("expected token source, got %v", err)
		}
	})

	t.Run("refresh hits configured token endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Errorf("failed to parse form: %v", err)
			}
			if got := r.PostForm.Get("refresh_token"); got != "r" {
				t.Errorf("expected refresh token r, got %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"fresh","token_type":"Bearer","expires_in":3600}`))
		}))
		defer srv.Close()

		ts, err := NewTokenSource(context.Background(), shared.YouTubeConfig{
			RefreshToken: "r", ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL,
		})
		if err != nil {
			t.Fatalf("expected token source, got %v", err)
		}
		tok, err := ts.Token()
		if err != nil {
			t.Fatalf("refresh failed: %v", err)
		}
		if tok.AccessToken != "fresh" {
			t.Errorf("expected refreshed token, got %q", tok.AccessToken)
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		if _, err := NewTokenSource(context.Background(), shared.YouTubeConfig{}); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Fatalf("expected ErrMissingCredentials, got %v", err)
		}
	})
}

func TestOAuthConfig(t *testing.T) {
	t.Run("defaults to google endpoints", func(t *testing.T) {
		conf := OAuthConfig(shared.YouTubeConfig{ClientID: "id", ClientSecret: "secret"}, "http://localhost:8085/callback")
		if conf.Endpoint.AuthURL != googleAuthURL || conf.Endpoint.TokenURL != googleTokenURL {
			t.Errorf("unexpected endpoint %+v", conf.Endpoint)
		}
		if len(conf.Scopes) != 1 || conf.Scopes[0] != youtubeScope {
			t.Errorf("unexpected scopes %v", conf.Scopes)
		}
	})

	t.Run("auth code URL requests offline access", func(t *testing.T) {
		conf := OAuthConfig(shared.YouTubeConfig{ClientID: "id", AuthURL: "http://auth.test/o"}, "http://localhost:8085/callback")
		u, err := url.Parse(AuthCodeURL(conf, "state-123"))
		if err != nil {
			t.Fatalf("invalid URL: %v", err)
		}
		q := u.Query()
		if u.Host != "auth.test" {
			t.Errorf("expected configured auth host, got %s", u.Host)
		}
		for key, want := range map[string]string{
			"state":         "state-123",
			"access_type":   "offline",
			"prompt":        "consent",
			"client_id":     "id",
			"redirect_uri":  "http://localhost:8085/callback",
			"response_type": "code",
		} {
			if got := q.Get(key); got != want {
				t.Errorf("%s: expected %q, got %q", key, want, got)
			}
		}
	})
}

func TestParseAPIError(t *testing.T) {
	tc := []struct {
		name       string
		body       string
		wantParsed bool
		wantMsg    string
		wantReason string
	}{
		{name: "full payload", body: `{"error":{"message":"Playlist not found","errors":[{"reason":"playlistNotFound"}]}}`, wantParsed: true, wantMsg: "Playlist not found", wantReason: "playlistNotFound"},
		{name: "no errors array", body: `{"error":{"message":"Backend Error"}}`, wantParsed: true, wantMsg: "Backend Error"},
		{name: "json without error", body: `{"status":"bad"}`, wantMsg: unparsedErrorMessage},
		{name: "not json", body: `Service Unavailable`, wantMsg: unparsedErrorMessage},
		{name: "empty", body: ``, wantMsg: unparsedErrorMessage},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := parseAPIError(http.StatusBadRequest, []byte(tt.body))
			if got.Parsed != tt.wantParsed || got.Message != tt.wantMsg || got.Reason != tt.wantReason {
				t.Errorf("parseAPIError() = %+v", got)
			}
		})
	}
}
