package osuapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/mapperinfluences/backend/internal/apperror"
)

const (
	apiBase     = "https://osu.ppy.sh/api/v2"
	oauthToken  = "https://osu.ppy.sh/oauth/token"
	chunkSize   = 50
)

// Requester is the single-host upstream client surface: auth, single-
// record fetches, search, and a generic batched-by-id fetch. It has
// two implementations — HTTPRequester talks to the real osu! API;
// ReplayRequester is a test double that serves canned records from
// in-memory maps keyed by id. Both must be safe for concurrent use.
type Requester interface {
	GetAuthToken(ctx context.Context, code string) (AuthToken, error)
	GetCredentialsToken(ctx context.Context) (AuthToken, error)
	GetTokenUser(ctx context.Context, bearer string) (User, error)
	GetUser(ctx context.Context, bearer string, id uint32) (User, error)
	GetBeatmap(ctx context.Context, bearer string, id uint32) (Beatmap, error)
	GetBeatmapset(ctx context.Context, bearer string, id uint32) (Beatmapset, error)
	SearchUser(ctx context.Context, bearer, query string) ([]SearchUserData, error)
	SearchMap(ctx context.Context, bearer, query string) ([]Beatmapset, error)
	RequestMultipleUsers(ctx context.Context, bearer string, ids []uint32) ([]User, error)
	RequestMultipleBeatmaps(ctx context.Context, bearer string, ids []uint32) ([]Beatmap, error)
}

// HTTPRequester is the real osu! v2 API client: a shared http.Client
// plus a counting semaphore bounding total in-flight requests to
// concurrentRequests. Every call acquires a permit for its whole
// round trip; authorization is always "Bearer <token>"; timeouts and
// retries are the caller's responsibility (see internal/retry).
type HTTPRequester struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	redirectURI  string
	sem          chan struct{}
}

// NewHTTPRequester builds a Requester bound to concurrentRequests
// simultaneous upstream calls.
func NewHTTPRequester(clientID, clientSecret, redirectURI string, concurrentRequests int) *HTTPRequester {
	return &HTTPRequester{
		httpClient:   &http.Client{},
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		sem:          make(chan struct{}, concurrentRequests),
	}
}

func (r *HTTPRequester) acquire(ctx context.Context) error {
	select {
	case r.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *HTTPRequester) release() { <-r.sem }

func (r *HTTPRequester) do(ctx context.Context, method, rawURL, bearer string, body io.Reader, out any) error {
	if err := r.acquire(ctx); err != nil {
		return apperror.Internal(err)
	}
	defer r.release()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return apperror.Internal(err)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return apperror.Internal(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.Internal(err)
	}
	if resp.StatusCode >= 300 {
		return apperror.Internal(fmt.Errorf("upstream %s returned %d: %s", rawURL, resp.StatusCode, string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// GetAuthToken exchanges an OAuth2 authorization code for a user
// access token.
func (r *HTTPRequester) GetAuthToken(ctx context.Context, code string) (AuthToken, error) {
	form := url.Values{
		"client_id":     {r.clientID},
		"client_secret": {r.clientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {r.redirectURI},
	}
	var token AuthToken
	err := r.do(ctx, http.MethodPost, oauthToken, "", strings.NewReader(form.Encode()), &token)
	return token, err
}

// GetCredentialsToken acquires a machine-to-machine client-credentials
// token for the public scope.
func (r *HTTPRequester) GetCredentialsToken(ctx context.Context) (AuthToken, error) {
	form := url.Values{
		"client_id":     {r.clientID},
		"client_secret": {r.clientSecret},
		"grant_type":    {"client_credentials"},
		"scope":         {"public"},
	}
	var token AuthToken
	err := r.do(ctx, http.MethodPost, oauthToken, "", strings.NewReader(form.Encode()), &token)
	return token, err
}

// GetTokenUser fetches the profile owning bearer (GET /me).
func (r *HTTPRequester) GetTokenUser(ctx context.Context, bearer string) (User, error) {
	var u User
	err := r.do(ctx, http.MethodGet, apiBase+"/me", bearer, nil, &u)
	return u, err
}

// GetUser fetches a single user by id.
func (r *HTTPRequester) GetUser(ctx context.Context, bearer string, id uint32) (User, error) {
	var u User
	err := r.do(ctx, http.MethodGet, fmt.Sprintf("%s/users/%d", apiBase, id), bearer, nil, &u)
	return u, err
}

// GetBeatmap fetches a single beatmap difficulty by id.
func (r *HTTPRequester) GetBeatmap(ctx context.Context, bearer string, id uint32) (Beatmap, error) {
	var b Beatmap
	err := r.do(ctx, http.MethodGet, fmt.Sprintf("%s/beatmaps/%d", apiBase, id), bearer, nil, &b)
	return b, err
}

// GetBeatmapset fetches a beatmapset by id.
func (r *HTTPRequester) GetBeatmapset(ctx context.Context, bearer string, id uint32) (Beatmapset, error) {
	var b Beatmapset
	err := r.do(ctx, http.MethodGet, fmt.Sprintf("%s/beatmapsets/%d", apiBase, id), bearer, nil, &b)
	return b, err
}

// SearchUser proxies the osu! user search.
func (r *HTTPRequester) SearchUser(ctx context.Context, bearer, query string) ([]SearchUserData, error) {
	var resp SearchUserResponse
	u := fmt.Sprintf("%s/search?mode=user&query=%s", apiBase, url.QueryEscape(query))
	err := r.do(ctx, http.MethodGet, u, bearer, nil, &resp)
	return resp.User.Data, err
}

// SearchMap proxies the osu! beatmapset search.
func (r *HTTPRequester) SearchMap(ctx context.Context, bearer, query string) ([]Beatmapset, error) {
	var resp SearchMapResponse
	u := fmt.Sprintf("%s/beatmapsets/search?q=%s", apiBase, url.QueryEscape(query))
	err := r.do(ctx, http.MethodGet, u, bearer, nil, &resp)
	return resp.Beatmapsets, err
}

// RequestMultipleUsers splits ids into chunks of 50, issues one
// request per chunk in parallel, strips the single outer object
// wrapper from each chunk response, and concatenates the inner
// arrays. Fails the entire call if any chunk fails.
func (r *HTTPRequester) RequestMultipleUsers(ctx context.Context, bearer string, ids []uint32) ([]User, error) {
	chunks := chunkIDs(ids, chunkSize)
	results := make([][]User, len(chunks))
	errs := make([]error, len(chunks))

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk []uint32) {
			defer wg.Done()
			u := apiBase + "/users?" + idsQuery(chunk)
			var resp MultiUserResponse
			errs[i] = r.do(ctx, http.MethodGet, u, bearer, nil, &resp)
			results[i] = resp.Users
		}(i, chunk)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	var out []User
	for _, chunk := range results {
		out = append(out, chunk...)
	}
	return out, nil
}

// RequestMultipleBeatmaps is RequestMultipleUsers for beatmaps.
func (r *HTTPRequester) RequestMultipleBeatmaps(ctx context.Context, bearer string, ids []uint32) ([]Beatmap, error) {
	chunks := chunkIDs(ids, chunkSize)
	results := make([][]Beatmap, len(chunks))
	errs := make([]error, len(chunks))

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk []uint32) {
			defer wg.Done()
			u := apiBase + "/beatmaps?" + idsQuery(chunk)
			var resp MultiBeatmapResponse
			errs[i] = r.do(ctx, http.MethodGet, u, bearer, nil, &resp)
			results[i] = resp.Beatmaps
		}(i, chunk)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	var out []Beatmap
	for _, chunk := range results {
		out = append(out, chunk...)
	}
	return out, nil
}

func chunkIDs(ids []uint32, size int) [][]uint32 {
	var chunks [][]uint32
	for size < len(ids) {
		ids, chunks = ids[size:], append(chunks, ids[0:size:size])
	}
	return append(chunks, ids)
}

func idsQuery(ids []uint32) string {
	values := url.Values{}
	for _, id := range ids {
		values.Add("ids[]", strconv.FormatUint(uint64(id), 10))
	}
	return values.Encode()
}
