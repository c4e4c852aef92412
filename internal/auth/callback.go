package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// callbackResult carries the outcome of one captured redirect.
type callbackResult struct {
	cred *Credential
	err  error
}

// CallbackServer runs a short-lived loopback HTTP server that captures
// the authorization redirect and feeds it to a Flow.
//
// The implicit grant needs one extra hop: the token travels in the URL
// fragment, which browsers never send to the server. The first request
// is answered with a small page whose script re-requests the callback
// path with the fragment contents copied into a query parameter.
type CallbackServer struct {
	flow   Flow
	addr   string
	path   string
	logger zerolog.Logger

	results chan callbackResult
	once    sync.Once
}

// NewCallbackServer creates a callback server bound to the redirect
// URI's host and port.
func NewCallbackServer(flow Flow, redirectURI string, logger zerolog.Logger) (*CallbackServer, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI: %w", err)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return &CallbackServer{
		flow:    flow,
		addr:    u.Host,
		path:    path,
		logger:  logger.With().Str("component", "callback").Logger(),
		results: make(chan callbackResult, 1),
	}, nil
}

// Listen serves until a redirect produces a credential or a terminal
// error, then shuts the server down. Redirects that carry no grant are
// answered but do not complete the wait.
func (s *CallbackServer) Listen(ctx context.Context) (*Credential, error) {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.handleRedirect)

	server := &http.Server{Handler: mux}
	serveErr := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	s.logger.Info().Str("addr", s.addr).Str("path", s.path).Msg("Waiting for authorization redirect")

	var result callbackResult
	select {
	case result = <-s.results:
	case err := <-serveErr:
		result = callbackResult{err: err}
	case <-ctx.Done():
		result = callbackResult{err: ctx.Err()}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)

	return result.cred, result.err
}

func (s *CallbackServer) handleRedirect(w http.ResponseWriter, r *http.Request) {
	redirect := *r.URL

	q := redirect.Query()
	if errParam := q.Get("error"); errParam != "" {
		s.complete(callbackResult{err: fmt.Errorf("authorization failed: %s", errParam)})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	if frag := q.Get("fragment"); frag != "" {
		// Second hop of the implicit grant: the fragment the page read
		// out of location.hash, now visible server side. The relay
		// parameter is grant material too; drop it from the query so
		// the rewritten URL does not carry it.
		redirect.Fragment = frag
		q.Del("fragment")
		redirect.RawQuery = q.Encode()
	} else if q.Get("code") == "" {
		// No code and no relayed fragment. Either this is the first hop
		// of the implicit grant or a stray request; the shim page
		// resolves which.
		s.serveFragmentShim(w)
		return
	}

	cred, err := s.flow.HandleRedirect(r.Context(), &redirect)
	if err != nil {
		s.complete(callbackResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}
	if cred == nil {
		// The redirect carried no grant; keep waiting.
		http.Error(w, "No authorization grant present", http.StatusBadRequest)
		return
	}

	s.complete(callbackResult{cred: cred})
	s.serveSuccess(w, StripGrant(&redirect).RequestURI())
}

// complete delivers the result exactly once; later redirects are
// answered but ignored.
func (s *CallbackServer) complete(result callbackResult) {
	s.once.Do(func() {
		s.results <- result
	})
}

func (s *CallbackServer) serveFragmentShim(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>Completing Authorization</title></head>
<body>
<p>Completing authorization…</p>
<script>
	var hash = window.location.hash;
	if (hash && hash.length > 1) {
		window.location.replace(window.location.pathname + "?fragment=" + encodeURIComponent(hash.substring(1)));
	} else {
		document.body.textContent = "No authorization data found in the redirect.";
	}
</script>
</body>
</html>
`)
}

// serveSuccess renders the confirmation page. cleanURI is the redirect
// URL with grant material stripped; the page rewrites the address bar
// to it so the consumed code or token does not linger in the location.
func (s *CallbackServer) serveSuccess(w http.ResponseWriter, cleanURI string) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <script>history.replaceState(null, "", %q)</script>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Authorization Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`, cleanURI)
}
