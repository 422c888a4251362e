// Package api is the client of the remote catalog service: course and exam
// collections plus the per-user saved-course store.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/acvora/acvora/pkg/catalog"
	"github.com/acvora/acvora/pkg/whttp"
)

const (
	DefaultBaseURL   = "https://acvora-07fo.onrender.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRetries   = 3
	DefaultRateLimit = 5 // requests per second
)

// ErrUnexpectedStatus is wrapped by every non-2xx response error.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Client talks to the catalog API.
type Client struct {
	baseURL string
	timeout time.Duration
	retries int
	proxy   string
	http    *retryablehttp.Client
	// writes to the saved-course store are sent exactly once
	once    *retryablehttp.Client
	limiter *rate.Limiter
	log     logrus.FieldLogger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithTimeout sets the per-attempt HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.timeout = timeout }
}

// WithRetries sets how often failed requests are retried
func WithRetries(n int) ClientOption {
	return func(c *Client) { c.retries = n }
}

// WithProxy routes requests through an HTTP proxy
func WithProxy(proxy string) ClientOption {
	return func(c *Client) { c.proxy = proxy }
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithLogger sets the logger
func WithLogger(l logrus.FieldLogger) ClientOption {
	return func(c *Client) { c.log = l }
}

// NewClient creates a client for the API at baseURL ("" selects the default).
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	silent := logrus.New()
	silent.SetOutput(io.Discard)
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		retries: DefaultRetries,
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		log:     silent,
	}
	for _, opt := range opts {
		opt(c)
	}

	hc, err := whttp.NewClient(whttp.ClientConfig{Timeout: c.timeout, RetryMax: c.retries, Proxy: c.proxy})
	if err != nil {
		return nil, err
	}
	c.http = hc

	once, err := whttp.NewClient(whttp.ClientConfig{Timeout: c.timeout, RetryMax: 0, Proxy: c.proxy})
	if err != nil {
		return nil, err
	}
	c.once = once
	return c, nil
}

// BaseURL is the API root, also used to resolve institute image paths.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*whttp.WHTTPRes, error) {
	return c.send(ctx, c.http, method, path, body)
}

// doOnce sends a single attempt; a failed write is reported, never repeated.
func (c *Client) doOnce(ctx context.Context, method, path string, body []byte) (*whttp.WHTTPRes, error) {
	return c.send(ctx, c.once, method, path, body)
}

func (c *Client) send(ctx context.Context, hc *retryablehttp.Client, method, path string, body []byte) (*whttp.WHTTPRes, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	u := c.baseURL + path
	c.log.Debugf("%s %s", method, u)

	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{Method: method, URL: u, Body: body}, hc)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s: %w %d", method, path, ErrUnexpectedStatus, res.StatusCode)
	}
	return res, nil
}

// Courses fetches the whole course catalog.
func (c *Client) Courses(ctx context.Context) ([]catalog.Course, error) {
	res, err := c.do(ctx, http.MethodGet, "/api/courses", nil)
	if err != nil {
		return nil, err
	}
	return catalog.ParseCourses(res.BodyString)
}

// Exams fetches every exam.
func (c *Client) Exams(ctx context.Context) ([]catalog.Exam, error) {
	res, err := c.do(ctx, http.MethodGet, "/api/exams", nil)
	if err != nil {
		return nil, err
	}
	return catalog.ParseExams(res.BodyString)
}

// ListSaved returns the string-normalized course ids saved by userID.
func (c *Client) ListSaved(ctx context.Context, userID string) ([]string, error) {
	res, err := c.do(ctx, http.MethodGet, "/api/savedCourses/"+url.PathEscape(userID), nil)
	if err != nil {
		return nil, err
	}
	if !gjson.Valid(res.BodyString) || !gjson.Parse(res.BodyString).IsArray() {
		return nil, fmt.Errorf("saved courses: %w", catalog.ErrNotArray)
	}
	ids := []string{}
	for _, rec := range gjson.Get(res.BodyString, "#.courseId").Array() {
		if id := rec.String(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// CreateSaved stores a saved-course record for userID.
func (c *Client) CreateSaved(ctx context.Context, userID string, rec catalog.SavedCourse) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = c.doOnce(ctx, http.MethodPost, "/api/savedCourses/"+url.PathEscape(userID), body)
	return err
}

// DeleteSaved removes the saved-course record of courseID for userID.
func (c *Client) DeleteSaved(ctx context.Context, userID, courseID string) error {
	_, err := c.doOnce(ctx, http.MethodDelete, "/api/savedCourses/"+url.PathEscape(userID)+"/"+url.PathEscape(courseID), nil)
	return err
}
