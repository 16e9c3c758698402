package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/0xVantrex/hillersons-spaces-sub000/internal/client/identity"
	"github.com/0xVantrex/hillersons-spaces-sub000/internal/domain"
)

// Client talks to the remote cart service over its HTTP surface.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

func New(baseURL string, log *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
	}
}

type itemsDTO struct {
	Items []domain.CartItem `json:"items"`
}

type guestSaveDTO struct {
	Items     []domain.CartItem `json:"items"`
	SessionID string            `json:"sessionId"`
}

// FetchUserCart loads the authenticated cart. A body that does not decode
// reads as an empty cart: checkout must not be blocked by a degraded
// response, only by an unreachable or failing service.
func (c *Client) FetchUserCart(ctx context.Context, cred identity.Credential) ([]domain.CartItem, error) {
	return c.fetch(ctx, c.baseURL+"/cart", cred.Token)
}

func (c *Client) SaveUserCart(ctx context.Context, cred identity.Credential, items []domain.CartItem) error {
	body, err := json.Marshal(itemsDTO{Items: domain.CloneItems(items)})
	if err != nil {
		return err
	}
	return c.send(ctx, http.MethodPost, c.baseURL+"/cart", cred.Token, body)
}

func (c *Client) ClearUserCart(ctx context.Context, cred identity.Credential) error {
	return c.send(ctx, http.MethodDelete, c.baseURL+"/cart", cred.Token, nil)
}

func (c *Client) FetchGuestCart(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	return c.fetch(ctx, c.guestURL(sessionID), "")
}

// SaveGuestCart pushes the full guest item list. Empty lists are skipped
// outright; the server would ignore them anyway.
func (c *Client) SaveGuestCart(ctx context.Context, sessionID string, items []domain.CartItem) error {
	if len(items) == 0 {
		return nil
	}

	body, err := json.Marshal(guestSaveDTO{Items: domain.CloneItems(items), SessionID: sessionID})
	if err != nil {
		return err
	}
	return c.send(ctx, http.MethodPost, c.baseURL+"/cart/guest", "", body)
}

func (c *Client) ClearGuestCart(ctx context.Context, sessionID string) error {
	return c.send(ctx, http.MethodDelete, c.guestURL(sessionID), "", nil)
}

func (c *Client) guestURL(sessionID string) string {
	return c.baseURL + "/cart/guest?sessionId=" + url.QueryEscape(sessionID)
}

func (c *Client) fetch(ctx context.Context, rawURL, token string) ([]domain.CartItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cart fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cart fetch failed: status %d", resp.StatusCode)
	}

	var dto itemsDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		c.log.Warn("malformed cart response, treating as empty", "err", err)
		return []domain.CartItem{}, nil
	}

	return domain.CloneItems(dto.Items), nil
}

func (c *Client) send(ctx context.Context, method, rawURL, token string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cart push failed: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("cart push failed: status %d", resp.StatusCode)
	}

	return nil
}
