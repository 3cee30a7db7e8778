package fetcher

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
)

// ErrEndOfPagination signals normal loop termination: the remote API
// either rejected the page index (HTTP 400 past the last page) or
// returned an empty result list.
var ErrEndOfPagination = errors.New("end of pagination")

// Post is one raw record from the WordPress posts endpoint. Only the
// rendered fields the harvester consumes are decoded.
type Post struct {
	ID    int64  `json:"id"`
	Link  string `json:"link"`
	Title struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
	Content struct {
		Rendered string `json:"rendered"`
	} `json:"content"`
}

// Client fetches paginated post lists from the remote API. After each
// successful page fetch it waits for a fixed delay to bound the
// request rate.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	pageSize   int
	delay      time.Duration
}

func NewClient(baseURL, userAgent string, pageSize int, timeout, delay time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  userAgent,
		pageSize:   pageSize,
		delay:      delay,
	}
}

// FetchPage retrieves one page of posts for a category. It returns
// ErrEndOfPagination when the category has no further pages; any other
// error is transient and ends the category's pagination for this run.
func (c *Client) FetchPage(ctx context.Context, categoryID, page int) ([]Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(categoryID, page), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return nil, ErrEndOfPagination
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var posts []Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}

	if len(posts) == 0 {
		return nil, ErrEndOfPagination
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	return posts, nil
}

func (c *Client) pageURL(categoryID, page int) string {
	params := url.Values{}
	params.Set("categories", strconv.Itoa(categoryID))
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(c.pageSize))

	return c.baseURL + "?" + params.Encode()
}

// wait blocks for the configured inter-request delay, honoring
// cancellation.
func (c *Client) wait(ctx context.Context) error {
	if c.delay <= 0 {
		return nil
	}

	timer := time.NewTimer(c.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
