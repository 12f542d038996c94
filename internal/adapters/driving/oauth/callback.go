// Package oauth runs the loopback half of an OAuth authorization-code flow:
// a local callback server and the browser hand-off.
package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"
)

// ErrStateMismatch is returned when the callback state does not match the
// state sent with the authorization request.
var ErrStateMismatch = errors.New("oauth: state mismatch")

// CallbackServer receives the authorization code on /callback.
type CallbackServer struct {
	mu            sync.Mutex
	port          int
	expectedState string
	codeChan      chan string
	errChan       chan error
	server        *http.Server
	listener      net.Listener
}

// NewCallbackServer creates a callback server for expectedState.
// Port 0 picks a free port on Start.
func NewCallbackServer(port int, expectedState string) *CallbackServer {
	return &CallbackServer{
		port:          port,
		expectedState: expectedState,
		codeChan:      make(chan string, 1),
		errChan:       make(chan error, 1),
	}
}

// Start listens on 127.0.0.1 and serves callbacks in the background.
func (s *CallbackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handleCallback)
	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.fail(err)
		}
	}()
	return nil
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if errParam := q.Get("error"); errParam != "" {
		s.fail(fmt.Errorf("oauth error: %s %s", errParam, q.Get("error_description")))
		fmt.Fprint(w, resultPage("Authorization failed", errParam))
		return
	}
	if q.Get("state") != s.expectedState {
		s.fail(ErrStateMismatch)
		fmt.Fprint(w, resultPage("Authorization failed", "invalid state parameter"))
		return
	}
	code := q.Get("code")
	if code == "" {
		s.fail(errors.New("oauth: no authorization code received"))
		fmt.Fprint(w, resultPage("Authorization failed", "no code received"))
		return
	}

	select {
	case s.codeChan <- code:
	default:
	}
	fmt.Fprint(w, resultPage("Authorization successful", "You can close this window and return to the terminal."))
}

func (s *CallbackServer) fail(err error) {
	select {
	case s.errChan <- err:
	default:
	}
}

// WaitForCode blocks until a code or error arrives, or ctx is done.
func (s *CallbackServer) WaitForCode(ctx context.Context) (string, error) {
	select {
	case code := <-s.codeChan:
		return code, nil
	case err := <-s.errChan:
		return "", err
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for authorization callback: %w", ctx.Err())
	}
}

// Stop shuts the server down. Safe to call more than once.
func (s *CallbackServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Port returns the listening port.
func (s *CallbackServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// RedirectURI returns the redirect URI to register with the provider.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://127.0.0.1:%d/callback", s.Port())
}

func resultPage(title, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>flightdeck</title>
<style>body{font-family:-apple-system,sans-serif;text-align:center;padding-top:20vh;color:#333F50}p{color:#7B8088}</style>
</head>
<body><h1>%s</h1><p>%s</p></body>
</html>`, html.EscapeString(title), html.EscapeString(message))
}

// OpenBrowser opens url in the default browser.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}

// NewState returns a random state value for one authorization request.
func NewState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
