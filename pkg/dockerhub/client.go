package dockerhub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lodthe/fromcheck/internal/metrics"

	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
	"go.uber.org/ratelimit"
)

const DockerHubURL = "https://hub.docker.com/v2"
const DefaultMaxRPS = 5
const DefaultPageSize = 200
const DefaultMaxPages = 1
const DefaultTimeout = 15 * time.Second

var ErrRepositoryNotFound = errors.New("repository not found")
var ErrRateLimited = errors.New("rate limited by the registry")
var ErrUnauthorized = errors.New("unauthorized")

// StatusError is returned when the registry responds with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.Message != "" {
		msg += ": " + e.Message
	}

	return msg
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrRepositoryNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	default:
		return false
	}
}

type Config struct {
	APIURL string
	MaxRPS int

	// PageSize is the number of tags requested per page.
	PageSize int

	// MaxPages limits how many pages are fetched. Docker Hub returns the most
	// recently updated tags first, so one page is usually enough.
	// Zero selects DefaultMaxPages, a negative value fetches every page.
	MaxPages int

	Timeout time.Duration
}

func (c *Config) setDefaults() {
	if c.APIURL == "" {
		c.APIURL = DockerHubURL
	}
	c.APIURL = strings.TrimSuffix(c.APIURL, "/")

	if c.MaxRPS <= 0 {
		c.MaxRPS = DefaultMaxRPS
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.MaxPages == 0 {
		c.MaxPages = DefaultMaxPages
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

type Client struct {
	cfg Config
	rl  ratelimit.Limiter

	cli *http.Client

	mu    sync.RWMutex
	token string
}

func NewClient(cfg Config, httpCli ...*http.Client) *Client {
	cfg.setDefaults()

	c := &Client{
		cfg: cfg,
		rl:  ratelimit.New(cfg.MaxRPS),
		cli: &http.Client{Timeout: cfg.Timeout},
	}
	if len(httpCli) == 1 {
		c.cli = httpCli[0]
	}

	return c
}

// Login exchanges Docker Hub credentials for a token that is sent with
// every subsequent request.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body, err := json.Marshal(loginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return errors.Wrap(err, "marshal failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL+"/users/login", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create a request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp := new(loginResponse)
	err = c.do(req, resp)
	if err != nil {
		return errors.Wrap(err, "login failed")
	}

	if resp.Token == "" {
		return errors.New("login response does not contain a token")
	}

	c.mu.Lock()
	c.token = resp.Token
	c.mu.Unlock()

	return nil
}

// GetTags fetches tags of the given repository (e.g. "library/ubuntu").
func (c *Client) GetTags(ctx context.Context, repository string) ([]ImageTag, error) {
	nextURL := c.tagsURL(repository)

	var tags []ImageTag
	for page := 1; ; page++ {
		resp, err := c.getTags(ctx, nextURL)
		if err != nil {
			return nil, err
		}

		tags = append(tags, resp.Results...)
		if resp.Next == nil || *resp.Next == "" {
			break
		}
		if c.cfg.MaxPages > 0 && page >= c.cfg.MaxPages {
			break
		}

		nextURL = *resp.Next
	}

	return tags, nil
}

func (c *Client) tagsURL(repository string) string {
	q := url.Values{}
	q.Set("page_size", strconv.Itoa(c.cfg.PageSize))

	return fmt.Sprintf("%s/repositories/%s/tags/?%s", c.cfg.APIURL, repository, q.Encode())
}

func (c *Client) getTags(ctx context.Context, rawURL string) (*GetImageTagsResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.rl.Take()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create a request")
	}

	response := new(GetImageTagsResponse)
	err = c.do(req, response)
	if err != nil {
		return nil, err
	}

	return response, nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	startedAt := time.Now()
	resp, err := c.cli.Do(req)
	if err != nil {
		metrics.Registry.NewRequest("error", time.Since(startedAt))
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	metrics.Registry.NewRequest(strconv.Itoa(resp.StatusCode), time.Since(startedAt))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "body read failed")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
		}

		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil {
			statusErr.Message = errResp.Message
			if statusErr.Message == "" {
				statusErr.Message = errResp.Detail
			}
		}

		return statusErr
	}

	err = json.Unmarshal(body, out)
	if err != nil {
		zlog.Error().Err(err).Str("url", req.URL.String()).Str("body", string(body)).Msg("failed to decode registry response")

		return errors.Wrap(err, "unmarshal failed")
	}

	return nil
}
