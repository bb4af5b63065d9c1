package bullhorn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// expiryMargin is subtracted from token lifetimes so a token is never
	// used within a minute of its remote-declared expiry.
	expiryMargin = 60 * time.Second

	// defaultTokenTTL applies when the token response omits expires_in.
	// Bullhorn access tokens and REST sessions are valid for 10 minutes.
	defaultTokenTTL = 600 * time.Second

	authTimeout = 30 * time.Second
)

// Session is an active Bullhorn REST session: the BhRestToken attached to
// every API call and the caller-specific REST base URL returned by login.
type Session struct {
	RestToken string
	RestURL   string
	ExpiresAt time.Time
}

// Authenticator owns the OAuth credential exchange and the cached REST
// session. It hands out a currently-valid session on demand, refreshing
// transparently; callers never manage tokens themselves.
//
// The flow is Bullhorn's three-step exchange:
//  1. GET  {auth_url}/oauth/authorize  -> auth code via redirect Location
//  2. POST {auth_url}/oauth/token      -> access token (+ refresh token)
//  3. GET  {login_url}/rest-services/login -> BhRestToken + restUrl
type Authenticator struct {
	cfg  *Config
	http *http.Client
	log  zerolog.Logger
	now  func() time.Time

	mu           sync.Mutex
	session      *Session
	accessToken  string
	refreshToken string
	tokenExpiry  time.Time
}

// NewAuthenticator creates an authenticator. No network traffic happens
// until the first Session call.
func NewAuthenticator(cfg *Config, log zerolog.Logger) *Authenticator {
	return &Authenticator{
		cfg: cfg,
		http: &http.Client{
			Timeout: authTimeout,
			// The authorize step reports the auth code in a redirect
			// Location; the redirect must not be followed.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		log: log.With().Str("component", "bullhorn-auth").Logger(),
		now: time.Now,
	}
}

// Session returns a currently-valid REST session, performing the credential
// exchange if none is cached or the cached one is inside the expiry margin.
// Concurrent callers are serialized; a caller that blocked behind a refresh
// receives the session the refresh produced.
func (a *Authenticator) Session(ctx context.Context) (*Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != nil && a.now().Before(a.session.ExpiresAt.Add(-expiryMargin)) {
		return a.session, nil
	}
	if err := a.refreshSessionLocked(ctx); err != nil {
		return nil, err
	}
	return a.session, nil
}

// ForceRefresh discards the cached session and performs the exchange
// immediately. Used by the API client after the remote service rejects a
// session as invalid.
func (a *Authenticator) ForceRefresh(ctx context.Context) (*Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.session = nil
	if err := a.refreshSessionLocked(ctx); err != nil {
		return nil, err
	}
	return a.session, nil
}

func (a *Authenticator) refreshSessionLocked(ctx context.Context) error {
	// Prefer the refresh token while the access token window is still open;
	// fall back to the full username/password exchange on any failure.
	if a.refreshToken != "" && a.now().Before(a.tokenExpiry.Add(-expiryMargin)) {
		if err := a.refreshAccessToken(ctx); err != nil {
			a.log.Debug().Err(err).Msg("Refresh token exchange failed, falling back to full auth")
			if err := a.fullAuth(ctx); err != nil {
				return err
			}
		}
	} else {
		if err := a.fullAuth(ctx); err != nil {
			return err
		}
	}
	return a.restLogin(ctx)
}

func (a *Authenticator) fullAuth(ctx context.Context) error {
	code, err := a.authorize(ctx)
	if err != nil {
		return err
	}
	return a.exchangeCode(ctx, code)
}

// authorize performs the username/password login against the OAuth
// authorize endpoint and extracts the auth code from the redirect.
func (a *Authenticator) authorize(ctx context.Context) (string, error) {
	params := url.Values{
		"client_id":     {a.cfg.ClientID},
		"response_type": {"code"},
		"action":        {"Login"},
		"username":      {a.cfg.Username},
		"password":      {a.cfg.Password},
	}

	endpoint := a.cfg.AuthURL + "/oauth/authorize?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", &AuthError{Stage: "authorize", Detail: err.Error()}
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return "", &AuthError{Stage: "authorize", Detail: "network error: " + redactNetErr(err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
	default:
		return "", &AuthError{Stage: "authorize", Detail: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	location, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		return "", &AuthError{Stage: "authorize", Detail: "invalid redirect location"}
	}
	query := location.Query()
	if code := query.Get("code"); code != "" {
		return code, nil
	}
	if oauthErr := query.Get("error"); oauthErr != "" {
		return "", &AuthError{
			Stage:  "authorize",
			Detail: strings.TrimSpace(oauthErr + " " + query.Get("error_description")),
		}
	}
	return "", &AuthError{Stage: "authorize", Detail: "redirect contained no auth code"}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

func (a *Authenticator) exchangeCode(ctx context.Context, code string) error {
	params := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {a.cfg.ClientID},
		"client_secret": {a.cfg.ClientSecret},
	}
	return a.tokenRequest(ctx, "token", params)
}

func (a *Authenticator) refreshAccessToken(ctx context.Context) error {
	params := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {a.refreshToken},
		"client_id":     {a.cfg.ClientID},
		"client_secret": {a.cfg.ClientSecret},
	}
	return a.tokenRequest(ctx, "refresh", params)
}

func (a *Authenticator) tokenRequest(ctx context.Context, stage string, params url.Values) error {
	endpoint := a.cfg.AuthURL + "/oauth/token?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return &AuthError{Stage: stage, Detail: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := a.http.Do(req)
	if err != nil {
		return &AuthError{Stage: stage, Detail: "network error: " + redactNetErr(err)}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &AuthError{Stage: stage, Detail: fmt.Sprintf("status %d: %s", resp.StatusCode, truncateBody(body))}
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return &AuthError{Stage: stage, Detail: "malformed token response"}
	}
	if token.AccessToken == "" {
		return &AuthError{Stage: stage, Detail: "token response missing access_token"}
	}

	ttl := defaultTokenTTL
	if token.ExpiresIn > 0 {
		ttl = time.Duration(token.ExpiresIn) * time.Second
	}
	a.accessToken = token.AccessToken
	if token.RefreshToken != "" {
		a.refreshToken = token.RefreshToken
	}
	a.tokenExpiry = a.now().Add(ttl)
	return nil
}

type loginResponse struct {
	BhRestToken string `json:"BhRestToken"`
	RestURL     string `json:"restUrl"`
}

func (a *Authenticator) restLogin(ctx context.Context) error {
	if a.accessToken == "" {
		return &AuthError{Stage: "login", Detail: "no access token available"}
	}

	params := url.Values{
		"version":      {"*"},
		"access_token": {a.accessToken},
	}
	endpoint := a.cfg.LoginURL + "/rest-services/login?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &AuthError{Stage: "login", Detail: err.Error()}
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return &AuthError{Stage: "login", Detail: "network error: " + redactNetErr(err)}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &AuthError{Stage: "login", Detail: fmt.Sprintf("status %d: %s", resp.StatusCode, truncateBody(body))}
	}

	var login loginResponse
	if err := json.Unmarshal(body, &login); err != nil {
		return &AuthError{Stage: "login", Detail: "malformed login response"}
	}
	if login.BhRestToken == "" || login.RestURL == "" {
		return &AuthError{Stage: "login", Detail: "login response missing BhRestToken or restUrl"}
	}

	a.session = &Session{
		RestToken: login.BhRestToken,
		RestURL:   strings.TrimRight(login.RestURL, "/") + "/",
		ExpiresAt: a.now().Add(defaultTokenTTL),
	}
	a.log.Debug().Time("expires_at", a.session.ExpiresAt).Msg("Obtained Bullhorn REST session")
	return nil
}

// redactNetErr strips the request URL from a transport error. Auth endpoint
// URLs carry the password, client secret and access token in their query
// strings and must never reach an error message.
func redactNetErr(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	return err.Error()
}

func truncateBody(body []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "…"
	}
	return s
}
