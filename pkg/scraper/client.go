package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/yotamroshuji/cheese-fork/pkg/logger"
)

const DefaultBaseURL = "https://shnaton.huji.ac.il/index.php"

// ErrCourseNotFound is returned when the catalog has no entry for the requested course and year.
var ErrCourseNotFound = errors.New("course not found in catalog")

// ClientOptions tunes the HTTP behaviour of the catalog client
type ClientOptions struct {
	BaseURL string
	Timeout time.Duration
	// CloseConnections opens a fresh connection for every request. Slower, but the
	// catalog server occasionally breaks reused connections.
	CloseConnections bool
	Retries          int
}

// Client handles HTTP requests to the course catalog
type Client struct {
	httpClient *http.Client
	baseURL    string
	closeConns bool
	retries    int
}

// NewClient creates a new catalog client
func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Retries <= 0 {
		opts.Retries = 3
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DisableKeepAlives = opts.CloseConnections

	return &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		baseURL:    opts.BaseURL,
		closeConns: opts.CloseConnections,
		retries:    opts.Retries,
	}
}

// get performs a GET on the catalog, retrying transport errors and 502/503/504 responses.
// A 404 is reported as ErrCourseNotFound.
func (c *Client) get(ctx context.Context, query url.Values) (*http.Response, error) {
	reqURL := c.baseURL + "?" + query.Encode()

	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Close = c.closeConns
		req.Header.Set("User-Agent", "cheesefork/1.0")

		resp, err := c.httpClient.Do(req)
		switch {
		case err != nil:
			lastErr = err
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return nil, ErrCourseNotFound
		case resp.StatusCode == http.StatusBadGateway ||
			resp.StatusCode == http.StatusServiceUnavailable ||
			resp.StatusCode == http.StatusGatewayTimeout:
			resp.Body.Close()
			lastErr = fmt.Errorf("transient status code: %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status code %d when fetching %s", resp.StatusCode, reqURL)
		default:
			return resp, nil
		}

		if attempt == c.retries-1 {
			break
		}
		logger.L().Debug("catalog request failed, retrying", "url", reqURL, "attempt", attempt+1, "error", lastErr)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * retryBackoff):
		}
	}

	return nil, fmt.Errorf("failed to fetch %s after %d attempts: %w", reqURL, c.retries, lastErr)
}

var retryBackoff = time.Second

// FetchCourse downloads and parses a single course page. Exams live on a separate
// page and are only requested when withExams is set.
func (c *Client) FetchCourse(ctx context.Context, courseID string, year int, withExams bool) (*RawCourse, error) {
	resp, err := c.get(ctx, courseQuery("Simple", courseID, year))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	course, err := ParseCourse(resp.Body)
	if err != nil {
		return nil, err
	}

	if !withExams {
		return course, nil
	}

	examResp, err := c.get(ctx, courseQuery("Exams", courseID, year))
	if errors.Is(err, ErrCourseNotFound) {
		return course, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exams: %w", err)
	}
	defer examResp.Body.Close()

	course.Exams, err = ParseExams(examResp.Body)
	if err != nil {
		return nil, err
	}
	return course, nil
}

func courseQuery(action, courseID string, year int) url.Values {
	q := url.Values{}
	q.Set("peula", action)
	q.Set("course", courseID)
	q.Set("year", fmt.Sprint(year))
	return q
}
