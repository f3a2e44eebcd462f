package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/wppops/asat-validator/pkg/types"
)

// Client defaults
const (
	DefaultTimeout   = 10 * time.Second
	DefaultCacheSize = 4096
)

// Gateway is the order-management backend surface the validator depends on
type Gateway interface {
	// OrderDetail fetches the validation snapshot for one order
	OrderDetail(ctx context.Context, orderID string) (*types.OrderDetail, error)

	// SiblingOrders lists the other orders for an article, excluding excludeOrderID
	SiblingOrders(ctx context.Context, articleID, excludeOrderID string) ([]types.SiblingOrder, error)

	// HasCreditMemo reports whether the given canceled order carries a credit memo
	HasCreditMemo(ctx context.Context, orderID string) (bool, error)

	// Resend asks the backend to resubmit an approved order
	Resend(ctx context.Context, orderID string) error
}

// Config configures the backend client
type Config struct {
	BaseURL   string // Admin backend root
	ResendURL string // Resend service root; may differ from BaseURL
	Username  string
	Password  string
	Timeout   time.Duration // Per-attempt timeout
	CacheSize int           // Decoded order payload cache entries
}

// Client is the HTTP implementation of Gateway. One Client holds one
// authenticated cookie session. Decoded order payloads are cached per order
// id so credit-memo checks against already-fetched orders skip the network,
// and concurrent fetches for the same id are coalesced.
type Client struct {
	baseURL   string
	resendURL string
	username  string
	password  string

	httpClient *http.Client
	retry      RetryConfig

	cache *lru.Cache[string, *orderPayload]
	fetch singleflight.Group
}

// NewClient creates a Client with a fresh cookie session. Login must be
// called before any other operation.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL", ErrMissingEndpoint)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	size := cfg.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *orderPayload](size)
	if err != nil {
		return nil, fmt.Errorf("create payload cache: %w", err)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		resendURL:  strings.TrimSuffix(cfg.ResendURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: timeout, Jar: jar},
		retry:      DefaultRetryConfig(),
		cache:      cache,
	}, nil
}

// Login authenticates against the backend; the session cookie lands on the
// client's jar and rides along on every later call
func (c *Client) Login(ctx context.Context) error {
	body, err := json.Marshal(map[string]any{
		"username":   c.username,
		"password":   c.password,
		"rememberMe": false,
	})
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	_, err = retryWithBackoff(ctx, c.retry, func() (struct{}, error) {
		return struct{}{}, c.doJSON(ctx, http.MethodPost, c.baseURL+"/authenticate", body, nil)
	})
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}

	return nil
}

// OrderDetail implements Gateway
func (c *Client) OrderDetail(ctx context.Context, orderID string) (*types.OrderDetail, error) {
	payload, err := c.fetchPayload(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("order %s detail: %w", orderID, err)
	}
	return decodeOrderDetail(orderID, payload)
}

// SiblingOrders implements Gateway
func (c *Client) SiblingOrders(ctx context.Context, articleID, excludeOrderID string) ([]types.SiblingOrder, error) {
	dhID := stripArticlePrefix(articleID)
	if dhID == "" {
		return nil, fmt.Errorf("%w: order has no article id", ErrBadPayload)
	}

	payload, err := retryWithBackoff(ctx, c.retry, func() (*siblingsPayload, error) {
		endpoint := fmt.Sprintf("%s/orderManagement/orders?dhId=%s", c.baseURL, url.QueryEscape(dhID))
		var sp siblingsPayload
		if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &sp); err != nil {
			return nil, err
		}
		return &sp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("article %s orders: %w", articleID, err)
	}

	return decodeSiblings(payload, excludeOrderID), nil
}

// HasCreditMemo implements Gateway. It rides on the same payload cache as
// OrderDetail, so checking a sibling that the batch already validated costs
// nothing.
func (c *Client) HasCreditMemo(ctx context.Context, orderID string) (bool, error) {
	payload, err := c.fetchPayload(ctx, orderID)
	if err != nil {
		return false, fmt.Errorf("order %s credit memo: %w", orderID, err)
	}
	if payload.OrderDetails == nil {
		return false, fmt.Errorf("order %s credit memo: %w: missing orderDetails", orderID, ErrBadPayload)
	}
	return historyHasCreditMemo(payload.OrderDetails.OrderHistory), nil
}

// Resend implements Gateway. It is deliberately single-shot: a retry after
// an ambiguous failure could double-send the order.
func (c *Client) Resend(ctx context.Context, orderID string) error {
	if c.resendURL == "" {
		return fmt.Errorf("%w: resend URL", ErrMissingEndpoint)
	}

	endpoint := fmt.Sprintf("%s/v1/orders/resend?orderIds=%s", c.resendURL, url.QueryEscape(orderID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("resend order %s: %w", orderID, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("resend order %s: %w", orderID, ErrUnauthorized)
	default:
		return fmt.Errorf("resend order %s: status %d: %s", orderID, resp.StatusCode, backendMessage(resp.Body))
	}
}

// fetchPayload returns the decoded order payload for an order id, consulting
// the cache first and collapsing concurrent fetches for the same id
func (c *Client) fetchPayload(ctx context.Context, orderID string) (*orderPayload, error) {
	if payload, ok := c.cache.Get(orderID); ok {
		return payload, nil
	}

	v, err, _ := c.fetch.Do(orderID, func() (any, error) {
		// A racing fetch may have landed while this call waited its turn
		if payload, ok := c.cache.Get(orderID); ok {
			return payload, nil
		}

		payload, err := retryWithBackoff(ctx, c.retry, func() (*orderPayload, error) {
			endpoint := fmt.Sprintf("%s/orderManagement/orders/%s", c.baseURL, url.PathEscape(orderID))
			var p orderPayload
			if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &p); err != nil {
				return nil, err
			}
			return &p, nil
		})
		if err != nil {
			return nil, err
		}

		c.cache.Add(orderID, payload)
		return payload, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*orderPayload), nil
}

// doJSON performs one HTTP attempt and decodes a JSON body into out (out may
// be nil). Status mapping: 401/403 → ErrUnauthorized, 404 → ErrNotFound,
// 429/5xx → transient (retryable), other non-2xx → permanent.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Transport failures and per-attempt timeouts are worth a retry
		return markTransient(fmt.Errorf("backend call: %w", err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return markTransient(fmt.Errorf("backend error %d: %s", resp.StatusCode, backendMessage(resp.Body)))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("backend error %d: %s", resp.StatusCode, backendMessage(resp.Body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	return nil
}

// backendMessage extracts the human-readable error from a failure body
func backendMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return "no response body"
	}

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}

	return strings.TrimSpace(string(raw))
}
