package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/plcopy/internal/shared"
	"golang.org/x/oauth2"
)

// CallbackPath is where the authorization server redirects the browser.
const CallbackPath = "/callback"

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>plcopy: signed in</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #ff0033; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ YouTube access granted</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`

// OAuthResult is the outcome of a single authorization callback.
type OAuthResult struct {
	Token *oauth2.Token
	Err   error
}

// OAuthHandler completes the authorization code flow on [CallbackPath].
//
// Only the first callback is honored; later requests are rejected so a replayed code is never exchanged.
type OAuthHandler struct {
	config *oauth2.Config
	state  string
	result chan OAuthResult
	once   sync.Once
	mu     sync.Mutex
	hit    bool
}

// NewOAuthHandler creates a handler that expects state back from the authorization server.
func NewOAuthHandler(config *oauth2.Config, state string) *OAuthHandler {
	return &OAuthHandler{
		config: config,
		state:  state,
		result: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{CallbackPath}
}

// ServeHTTP validates the state, exchanges the code and publishes the token on [OAuthHandler.Result].
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.hit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.hit = true
	h.mu.Unlock()

	q := r.URL.Query()
	if q.Get("state") != h.state {
		h.send(OAuthResult{Err: fmt.Errorf("%w: state mismatch", shared.ErrNotAuthenticated)})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := q.Get("code")
	if code == "" {
		h.send(OAuthResult{Err: fmt.Errorf("%w: %s %s", shared.ErrNotAuthenticated, q.Get("error"), q.Get("error_description"))})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(r.Context(), code)
	if err != nil {
		h.send(OAuthResult{Err: fmt.Errorf("%w: token exchange failed: %v", shared.ErrNotAuthenticated, err)})
		http.Error(w, "Token exchange failed", http.StatusBadGateway)
		return
	}
	h.send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

func (h *OAuthHandler) send(result OAuthResult) {
	h.once.Do(func() {
		h.result <- result
		close(h.result)
	})
}

// Result receives exactly one [OAuthResult] and is then closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.result
}
