package bullhorn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const requestTimeout = 30 * time.Second

// SessionSource hands out valid REST sessions and force-refreshes them after
// the remote service rejects one. Satisfied by *Authenticator.
type SessionSource interface {
	Session(ctx context.Context) (*Session, error)
	ForceRefresh(ctx context.Context) (*Session, error)
}

// Client performs read-only calls against the Bullhorn REST API, attaching a
// valid BhRestToken and retrying exactly once after a session invalidation.
type Client struct {
	auth SessionSource
	http *http.Client
	log  zerolog.Logger
}

// NewClient creates a client backed by the given session source.
func NewClient(auth SessionSource, log zerolog.Logger) *Client {
	return &Client{
		auth: auth,
		http: &http.Client{Timeout: requestTimeout},
		log:  log.With().Str("component", "bullhorn-client").Logger(),
	}
}

// SearchOptions tune a Lucene search call. An empty Fields value falls back
// to the entity default field set; Count is clamped into [1, 500], so a zero
// count requests a single record — callers wanting a default supply it.
type SearchOptions struct {
	Fields string
	Count  int
	Start  int
	Sort   string
}

// QueryOptions tune a SQL-like query call.
type QueryOptions struct {
	Fields  string
	Count   int
	Start   int
	OrderBy string
}

// Record is a single entity returned by the API, a field name to value
// mapping shaped entirely by the remote service.
type Record = map[string]any

// Search runs a Lucene query against /search/{entity} and returns the
// matching records. A query matching nothing returns an empty slice, not an
// error.
func (c *Client) Search(ctx context.Context, entity, query string, opts SearchOptions) ([]Record, error) {
	fields := opts.Fields
	if fields == "" {
		fields = DefaultFields(entity, "id")
	}

	params := url.Values{
		"query":  {query},
		"fields": {fields},
		"count":  {strconv.Itoa(ClampCount(opts.Count))},
		"start":  {strconv.Itoa(opts.Start)},
	}
	if opts.Sort != "" {
		params.Set("sort", opts.Sort)
	}

	body, err := c.request(ctx, "search/"+entity, params)
	if err != nil {
		return nil, err
	}
	return decodeRecordList(body)
}

// Query runs a SQL-like where clause against /query/{entity}.
func (c *Client) Query(ctx context.Context, entity, where string, opts QueryOptions) ([]Record, error) {
	fields := opts.Fields
	if fields == "" {
		fields = DefaultFields(entity, "id")
	}

	params := url.Values{
		"where":  {where},
		"fields": {fields},
		"count":  {strconv.Itoa(ClampCount(opts.Count))},
		"start":  {strconv.Itoa(opts.Start)},
	}
	if opts.OrderBy != "" {
		params.Set("orderBy", opts.OrderBy)
	}

	body, err := c.request(ctx, "query/"+entity, params)
	if err != nil {
		return nil, err
	}
	return decodeRecordList(body)
}

// Get fetches a single entity by id. A missing record yields *NotFoundError,
// distinct from a zero-result search.
func (c *Client) Get(ctx context.Context, entity string, id int, fields string) (Record, error) {
	if fields == "" {
		fields = DefaultFields(entity, "*")
	}

	params := url.Values{"fields": {fields}}
	body, err := c.request(ctx, fmt.Sprintf("entity/%s/%d", entity, id), params)
	if err != nil {
		var remoteErr *RemoteError
		if errors.As(err, &remoteErr) && remoteErr.StatusCode == http.StatusNotFound {
			return nil, &NotFoundError{Entity: entity, ID: id}
		}
		return nil, err
	}

	var payload struct {
		Data Record `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding entity response: %w", err)
	}
	if len(payload.Data) == 0 {
		return nil, &NotFoundError{Entity: entity, ID: id}
	}
	return payload.Data, nil
}

// Meta fetches the field metadata for an entity type from /meta/{entity}.
func (c *Client) Meta(ctx context.Context, entity string) (Record, error) {
	body, err := c.request(ctx, "meta/"+entity, url.Values{"fields": {"*"}})
	if err != nil {
		return nil, err
	}
	var meta Record
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("decoding meta response: %w", err)
	}
	return meta, nil
}

// request issues an authenticated GET against the session REST URL. On an
// invalid-session response it force-refreshes the session and retries the
// call exactly once; a second rejection surfaces as an auth error rather
// than looping.
func (c *Client) request(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	sess, err := c.auth.Session(ctx)
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, sess, endpoint, params)
	if !errors.Is(err, errSessionExpired) {
		return body, err
	}

	c.log.Debug().Str("endpoint", endpoint).Msg("Session rejected, refreshing and retrying once")
	sess, err = c.auth.ForceRefresh(ctx)
	if err != nil {
		return nil, err
	}
	body, err = c.do(ctx, sess, endpoint, params)
	if errors.Is(err, errSessionExpired) {
		return nil, &AuthError{Stage: "session", Detail: "session rejected again after refresh"}
	}
	return body, err
}

func (c *Client) do(ctx context.Context, sess *Session, endpoint string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sess.RestURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("BhRestToken", sess.RestToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bullhorn request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, errSessionExpired
	case resp.StatusCode != http.StatusOK:
		return nil, &RemoteError{StatusCode: resp.StatusCode, Detail: truncateBody(body)}
	}
	return body, nil
}

func decodeRecordList(body []byte) ([]Record, error) {
	var payload struct {
		Data []Record `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	if payload.Data == nil {
		return []Record{}, nil
	}
	return payload.Data, nil
}
