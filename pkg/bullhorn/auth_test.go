package bullhorn

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeOAuth simulates Bullhorn's three-step auth flow: authorize redirect,
// token exchange and REST login.
type fakeOAuth struct {
	srv *httptest.Server

	mu             sync.Mutex
	authorizeCalls int
	tokenCalls     int
	refreshCalls   int
	loginCalls     int

	oauthError     string // authorize redirects with error instead of code
	tokenStatus    int    // non-zero forces the token endpoint to fail
	tokenExpiresIn int
}

func newFakeOAuth(t *testing.T) *fakeOAuth {
	t.Helper()
	f := &fakeOAuth{tokenExpiresIn: 600}
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/authorize", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.authorizeCalls++
		f.mu.Unlock()
		if f.oauthError != "" {
			http.Redirect(w, r, "http://localhost/callback?error="+f.oauthError+"&error_description=bad+credentials", http.StatusFound)
			return
		}
		http.Redirect(w, r, "http://localhost/callback?code=authcode123", http.StatusFound)
	})
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		if r.URL.Query().Get("grant_type") == "refresh_token" {
			f.refreshCalls++
		} else {
			f.tokenCalls++
		}
		calls := f.tokenCalls + f.refreshCalls
		f.mu.Unlock()
		if f.tokenStatus != 0 {
			w.WriteHeader(f.tokenStatus)
			fmt.Fprint(w, `{"error":"invalid_client"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"at-%d","refresh_token":"rt-%d","expires_in":%d}`, calls, calls, f.tokenExpiresIn)
	})
	mux.HandleFunc("/rest-services/login", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.loginCalls++
		calls := f.loginCalls
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"BhRestToken":"bhtok-%d","restUrl":"%s/rest/"}`, calls, f.srv.URL)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeOAuth) counts() (authorize, token, refresh, login int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authorizeCalls, f.tokenCalls, f.refreshCalls, f.loginCalls
}

func testAuthenticator(f *fakeOAuth) *Authenticator {
	cfg := &Config{
		ClientID:     "client-id",
		ClientSecret: "sekrit-client-secret",
		Username:     "apiuser",
		Password:     "hunter2-password",
		AuthURL:      f.srv.URL,
		LoginURL:     f.srv.URL,
	}
	return NewAuthenticator(cfg.withDefaults(), zerolog.Nop())
}

func TestSessionPerformsFullExchangeOnce(t *testing.T) {
	f := newFakeOAuth(t)
	auth := testAuthenticator(f)

	sess, err := auth.Session(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.RestToken != "bhtok-1" {
		t.Fatalf("unexpected rest token %q", sess.RestToken)
	}
	if !strings.HasSuffix(sess.RestURL, "/rest/") {
		t.Fatalf("unexpected rest url %q", sess.RestURL)
	}

	// Second call must be a pure cache hit.
	if _, err := auth.Session(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	authorize, token, refresh, login := f.counts()
	if authorize != 1 || token != 1 || refresh != 0 || login != 1 {
		t.Fatalf("expected exactly one exchange, got authorize=%d token=%d refresh=%d login=%d", authorize, token, refresh, login)
	}
}

func TestSessionRefreshesAtExpiry(t *testing.T) {
	f := newFakeOAuth(t)
	f.tokenExpiresIn = 3600 // keep the access token alive past the session
	auth := testAuthenticator(f)

	now := time.Now()
	auth.now = func() time.Time { return now }

	if _, err := auth.Session(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Inside the safety margin the cached session must not be reused.
	now = now.Add(defaultTokenTTL - 30*time.Second)
	sess, err := auth.Session(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.RestToken != "bhtok-2" {
		t.Fatalf("expected refreshed session, got %q", sess.RestToken)
	}

	// The access token was still valid, so the refresh token path must have
	// been used instead of a second full authorize.
	authorize, _, refresh, login := f.counts()
	if authorize != 1 {
		t.Fatalf("expected 1 authorize call, got %d", authorize)
	}
	if refresh != 1 {
		t.Fatalf("expected 1 refresh-token exchange, got %d", refresh)
	}
	if login != 2 {
		t.Fatalf("expected 2 REST logins, got %d", login)
	}
}

func TestForceRefreshDiscardsCachedSession(t *testing.T) {
	f := newFakeOAuth(t)
	auth := testAuthenticator(f)

	first, err := auth.Session(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := auth.ForceRefresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.RestToken == second.RestToken {
		t.Fatalf("force refresh returned the stale session token %q", first.RestToken)
	}
	if _, _, _, login := f.counts(); login != 2 {
		t.Fatalf("expected 2 REST logins, got %d", login)
	}
}

func TestAuthorizeOAuthErrorSurfacedWithoutCredentials(t *testing.T) {
	f := newFakeOAuth(t)
	f.oauthError = "access_denied"
	auth := testAuthenticator(f)

	_, err := auth.Session(context.Background())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if !strings.Contains(authErr.Detail, "access_denied") {
		t.Fatalf("expected remote error detail, got %q", authErr.Detail)
	}
	for _, secret := range []string{"hunter2-password", "sekrit-client-secret"} {
		if strings.Contains(err.Error(), secret) {
			t.Fatalf("credential leaked into error message: %v", err)
		}
	}
}

func TestNetworkFailureErrorOmitsCredentials(t *testing.T) {
	// Point the exchange at a dead endpoint so the transport itself fails;
	// the request URL carries the credentials and must not leak.
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	cfg := &Config{
		ClientID:     "client-id",
		ClientSecret: "sekrit-client-secret",
		Username:     "apiuser",
		Password:     "hunter2-password",
		AuthURL:      dead.URL,
		LoginURL:     dead.URL,
	}
	auth := NewAuthenticator(cfg.withDefaults(), zerolog.Nop())

	_, err := auth.Session(context.Background())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	msg := err.Error()
	for _, secret := range []string{"hunter2-password", "sekrit-client-secret", "password=", "client_secret="} {
		if strings.Contains(msg, secret) {
			t.Fatalf("credential leaked into transport error message: %q", msg)
		}
	}
	if strings.Contains(msg, dead.URL) {
		t.Fatalf("request URL leaked into transport error message: %q", msg)
	}
}

func TestTokenExchangeFailureRetriesFromScratch(t *testing.T) {
	f := newFakeOAuth(t)
	f.tokenStatus = http.StatusBadRequest
	auth := testAuthenticator(f)

	if _, err := auth.Session(context.Background()); err == nil {
		t.Fatalf("expected token exchange failure")
	}

	// No backoff state is retained; the next call starts a fresh exchange.
	f.tokenStatus = 0
	sess, err := auth.Session(context.Background())
	if err != nil {
		t.Fatalf("unexpected error after recovery: %v", err)
	}
	if sess.RestToken == "" {
		t.Fatalf("expected a session after recovery")
	}
	if authorize, _, _, _ := f.counts(); authorize != 2 {
		t.Fatalf("expected 2 authorize attempts, got %d", authorize)
	}
}

func TestConcurrentSessionCallsShareOneExchange(t *testing.T) {
	f := newFakeOAuth(t)
	auth := testAuthenticator(f)

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := auth.Session(context.Background())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	authorize, token, _, login := f.counts()
	if authorize != 1 || token != 1 || login != 1 {
		t.Fatalf("expected a single shared exchange, got authorize=%d token=%d login=%d", authorize, token, login)
	}
}
