// Package listapi is a thin client for a document-oriented list store exposed
// over HTTP (a SharePoint-style REST surface). It knows nothing about the
// notification domain: callers read and append rows of named collections.
package listapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jpillora/backoff"

	"github.com/MinaWilson92/prochub/share/logger"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultPageSize  = 500
	maxWriteAttempts = 3
)

type Config struct {
	BaseURL  string `mapstructure:"base_url"`
	Timeout  time.Duration
	PageSize int
}

type Client struct {
	cfg Config
	hc  *http.Client
	l   *logger.Logger
}

func NewClient(cfg Config, l *logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: cfg.Timeout},
		l:   l,
	}
}

type listItemsResponse struct {
	D struct {
		Results []Item `json:"results"`
		Next    string `json:"__next"`
	} `json:"d"`
}

type contextInfoResponse struct {
	D struct {
		GetContextWebInformation struct {
			FormDigestValue string `json:"FormDigestValue"`
		} `json:"GetContextWebInformation"`
	} `json:"d"`
}

// GetItems reads every row of the named collection, following pagination
// until the store reports no further page.
func (c *Client) GetItems(ctx context.Context, collection string) ([]Item, error) {
	next := fmt.Sprintf("%s/web/lists/getbytitle('%s')/items?$top=%d",
		c.cfg.BaseURL, url.PathEscape(collection), c.cfg.PageSize)

	var items []Item
	for next != "" {
		page, err := c.getPage(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("failed to read collection %s: %w", collection, err)
		}
		items = append(items, page.D.Results...)
		next = page.D.Next
	}

	c.l.Debugf("read %d items from %s", len(items), collection)
	return items, nil
}

func (c *Client) getPage(ctx context.Context, pageURL string) (*listItemsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json;odata=verbose")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var page listItemsResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode list response: %w", err)
	}
	return &page, nil
}

// AddItem appends a row to the named collection. A request digest is acquired
// immediately before each attempt, never reused: the store treats digests as
// short-lived.
func (c *Client) AddItem(ctx context.Context, collection string, fields map[string]interface{}) error {
	b := &backoff.Backoff{
		Min:    250 * time.Millisecond,
		Max:    2 * time.Second,
		Jitter: true,
	}

	var lastErr error
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(b.Duration()):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		retryable, err := c.addItemOnce(ctx, collection, fields)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			break
		}
		c.l.Debugf("write to %s failed (attempt %d): %v", collection, attempt+1, err)
	}

	return fmt.Errorf("failed to append to collection %s: %w", collection, lastErr)
}

func (c *Client) addItemOnce(ctx context.Context, collection string, fields map[string]interface{}) (retryable bool, err error) {
	digest, err := c.acquireDigest(ctx)
	if err != nil {
		return true, fmt.Errorf("failed to acquire request digest: %w", err)
	}

	body, err := json.Marshal(fields)
	if err != nil {
		return false, fmt.Errorf("failed to encode item: %w", err)
	}

	writeURL := fmt.Sprintf("%s/web/lists/getbytitle('%s')/items", c.cfg.BaseURL, url.PathEscape(collection))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, writeURL, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json;odata=verbose")
	req.Header.Set("Content-Type", "application/json;odata=verbose")
	req.Header.Set("X-RequestDigest", digest)

	resp, err := c.hc.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, respBody)
	}

	return false, nil
}

func (c *Client) acquireDigest(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/contextinfo", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json;odata=verbose")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var info contextInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("failed to decode contextinfo response: %w", err)
	}
	if info.D.GetContextWebInformation.FormDigestValue == "" {
		return "", fmt.Errorf("empty form digest value")
	}
	return info.D.GetContextWebInformation.FormDigestValue, nil
}
