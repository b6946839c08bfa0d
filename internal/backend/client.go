package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout bounds every backend round trip.
	DefaultTimeout = 5 * time.Second

	// DefaultMenuLimit is how many items one menu fetch asks for.
	DefaultMenuLimit = 200

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 4 << 10
)

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	MenuLimit int
	Window    Window
}

// Client talks to the restaurant backend over its JSON API.
// It is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	menuLimit int
	window    Window
	log       zerolog.Logger
}

var _ Service = (*Client)(nil)

// NewClient creates a Client. Zero-valued config fields take defaults.
func NewClient(cfg ClientConfig, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MenuLimit <= 0 {
		cfg.MenuLimit = DefaultMenuLimit
	}
	if cfg.Window == (Window{}) {
		cfg.Window = DefaultWindow
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		http:      &http.Client{Timeout: cfg.Timeout},
		menuLimit: cfg.MenuLimit,
		window:    cfg.Window,
		log:       logger.With().Str("component", "backend").Logger(),
	}
}

// ─── Menu ────────────────────────────────────────────────────────────────────

// ListMenu fetches the menu in one request.
func (c *Client) ListMenu(ctx context.Context) ([]MenuItem, error) {
	var body struct {
		Data struct {
			Items []MenuItem `json:"items"`
		} `json:"data"`
	}
	path := "/api/menu?limit=" + strconv.Itoa(c.menuLimit)
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &body); err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	return body.Data.Items, nil
}

// Categories returns the menu categories in alphabetical order.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var body struct {
		Categories map[string]int `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/menu/categories", nil, http.StatusOK, &body); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	names := make([]string, 0, len(body.Categories))
	for name := range body.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ─── Orders ──────────────────────────────────────────────────────────────────

// CreateOrder places an order. The backend answers 201 on success.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	var body struct {
		Data Order `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/orders", req, http.StatusCreated, &body); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &body.Data, nil
}

// ─── Reservations ────────────────────────────────────────────────────────────

// CheckAvailability asks whether a slot is bookable. When it is not, nearby
// alternatives inside the opening window are probed.
func (c *Client) CheckAvailability(ctx context.Context, req AvailabilityRequest) (*Availability, error) {
	avail, err := c.checkSlot(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("check availability: %w", err)
	}
	if avail.Available {
		return avail, nil
	}

	alts, err := ProbeAlternatives(ctx, req, c.window, func(ctx context.Context, r AvailabilityRequest) (bool, error) {
		a, err := c.checkSlot(ctx, r)
		if err != nil {
			return false, err
		}
		return a.Available, nil
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("alternative probing stopped early")
	}
	avail.Alternatives = alts
	return avail, nil
}

func (c *Client) checkSlot(ctx context.Context, req AvailabilityRequest) (*Availability, error) {
	var avail Availability
	if err := c.do(ctx, http.MethodPost, "/api/reservations/availability", req, http.StatusOK, &avail); err != nil {
		return nil, err
	}
	return &avail, nil
}

// CreateReservation books a table. The backend answers 201 on success.
func (c *Client) CreateReservation(ctx context.Context, req ReservationRequest) (*Reservation, error) {
	var body struct {
		Data Reservation `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/reservations", req, http.StatusCreated, &body); err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}
	return &body.Data, nil
}

// ─── Transport ───────────────────────────────────────────────────────────────

func (c *Client) do(ctx context.Context, method, path string, in any, want int, out any) error {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode != want {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// errorMessage extracts the backend's {"message": "..."} if present.
func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		return body.Error
	}
	return strings.TrimSpace(string(data))
}
