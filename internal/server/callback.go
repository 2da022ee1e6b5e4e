package server

import (
	"context"
	"html/template"
	"net/http"
	"net/url"
	"sync"

	"github.com/desertthunder/lectern/internal/session"
)

// Resolver completes a session from callback query parameters.
type Resolver interface {
	Resolve(ctx context.Context, query url.Values) (*session.ResolveResult, error)
}

// CallbackResult is the outcome of the single resolved callback.
type CallbackResult struct {
	Session *session.ResolveResult
	err     error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// CallbackHandler receives the OAuth redirect on any route.
type CallbackHandler struct {
	resolver   Resolver
	resultChan chan CallbackResult
	once       sync.Once
	mu         sync.Mutex
	handled    bool
}

// NewCallbackHandler creates a [CallbackHandler] that resolves tokens with resolver.
func NewCallbackHandler(resolver Resolver) *CallbackHandler {
	return &CallbackHandler{
		resolver:   resolver,
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/"}
}

// ServeHTTP resolves the first request carrying a token.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/favicon.ico" {
		http.NotFound(w, r)
		return
	}

	if r.URL.Query().Get(session.TokenParam) == "" {
		renderPage(w, http.StatusOK, page{Title: "Waiting for sign-in", Message: "No sign-in token on this page yet."})
		return
	}

	h.mu.Lock()
	if h.handled {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.handled = true
	h.mu.Unlock()

	result, err := h.resolver.Resolve(context.WithoutCancel(r.Context()), r.URL.Query())
	h.Send(CallbackResult{Session: result, err: err})

	if err != nil {
		renderPage(w, http.StatusBadRequest, page{Title: "Sign-in failed", Message: err.Error(), Failed: true})
		return
	}

	msg := "You can close this window and return to the terminal."
	if result != nil && result.User != nil && result.User.Email != "" {
		msg = "Signed in as " + result.User.Email + ". " + msg
	}
	renderPage(w, http.StatusOK, page{Title: "Sign-in successful", Message: msg})
}

// Send delivers the result (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving the callback outcome.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

type page struct {
	Title   string
	Message string
	Failed  bool
}

var pageTemplate = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f0f4ff; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: {{if .Failed}}#d64545{{else}}#009FFD{{end}}; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <p>{{.Message}}</p>
    </div>
</body>
</html>
`))

func renderPage(w http.ResponseWriter, status int, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	pageTemplate.Execute(w, p)
}
