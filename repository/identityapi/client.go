package identityapi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskboard/backend/domain"
	"github.com/taskboard/backend/repository"
)

// Config holds identity provider connection settings.
type Config struct {
	// URL is the provider's auth API base, e.g. https://x.example.co/auth/v1.
	URL     string
	AnonKey string
	Timeout time.Duration
}

// Client talks to a GoTrue-style identity provider over REST.
type Client struct {
	cfg    Config
	http   *fasthttp.Client
	logger *zap.Logger
}

// NewClient validates the configuration and builds the provider client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, domain.NewError(domain.ErrCodeUnavailable, "identity provider is not configured")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg: cfg,
		http: &fasthttp.Client{
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		},
		logger: logger,
	}, nil
}

// NewClientWithHTTP is NewClient with an injected fasthttp client.
func NewClientWithHTTP(cfg Config, hc *fasthttp.Client, logger *zap.Logger) (*Client, error) {
	client, err := NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	if hc != nil {
		client.http = hc
	}
	return client, nil
}

func (c *Client) Resolve(ctx context.Context, token string) (*domain.Identity, error) {
	status, body, err := c.do(ctx, fasthttp.MethodGet, "/user", c.cfg.AnonKey, token, nil)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnavailable, "Authentication service is unavailable", err)
	}

	switch {
	case status == fasthttp.StatusOK:
		return decodeIdentity(body)
	case status == fasthttp.StatusUnauthorized || status == fasthttp.StatusForbidden:
		return nil, domain.ErrUnauthorized
	default:
		return nil, c.unexpected("resolve token", status, body)
	}
}

func (c *Client) Update(ctx context.Context, cap repository.Capability, userID string, patch repository.IdentityPatch) (*domain.Identity, error) {
	payload := map[string]any{}
	if patch.Email != "" {
		payload["email"] = patch.Email
	}

	var (
		status int
		body   []byte
		err    error
	)
	if cap.Admin() {
		// The admin endpoint is the reliable path for backend-initiated
		// updates; it does not depend on the caller's token staying valid.
		if patch.Metadata != nil {
			payload["user_metadata"] = patch.Metadata
		}
		path := "/admin/users/" + userID
		status, body, err = c.do(ctx, fasthttp.MethodPut, path, cap.ServiceKey, cap.ServiceKey, payload)
	} else {
		if patch.Metadata != nil {
			payload["data"] = patch.Metadata
		}
		status, body, err = c.do(ctx, fasthttp.MethodPut, "/user", c.cfg.AnonKey, cap.Token, payload)
	}
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnavailable, "Authentication service is unavailable", err)
	}

	switch {
	case status >= 200 && status < 300:
		return decodeIdentity(body)
	case status == fasthttp.StatusUnauthorized || status == fasthttp.StatusForbidden:
		return nil, domain.ErrUnauthorized
	case status == fasthttp.StatusUnprocessableEntity || status == fasthttp.StatusBadRequest:
		return nil, domain.WrapError(domain.ErrCodeValidation, "Failed to update profile", bodyError(body))
	default:
		return nil, c.unexpected("update identity", status, body)
	}
}

func (c *Client) DeleteUser(ctx context.Context, cap repository.Capability, userID string) error {
	if !cap.Admin() {
		return domain.NewError(domain.ErrCodeUnavailable, "identity deletion requires a service role key")
	}

	path := "/admin/users/" + userID
	status, body, err := c.do(ctx, fasthttp.MethodDelete, path, cap.ServiceKey, cap.ServiceKey, nil)
	if err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "Authentication service is unavailable", err)
	}
	if status >= 200 && status < 300 {
		return nil
	}
	return c.unexpected("delete identity", status, body)
}

func (c *Client) Ping(ctx context.Context) error {
	status, _, err := c.do(ctx, fasthttp.MethodGet, "/health", c.cfg.AnonKey, "", nil)
	if err != nil {
		return err
	}
	if status >= fasthttp.StatusInternalServerError {
		return fmt.Errorf("identity provider health returned %d", status)
	}
	return nil
}

// do performs one HTTP round trip and returns the status plus a copy of
// the response body. A non-nil error means the provider was unreachable.
func (c *Client) do(ctx context.Context, method, path, apiKey, bearer string, payload any) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.cfg.URL + path)
	req.Header.SetMethod(method)
	if apiKey != "" {
		req.Header.Set("apikey", apiKey)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	if err := c.http.DoTimeout(req, resp, c.cfg.Timeout); err != nil {
		return 0, nil, err
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return resp.StatusCode(), body, nil
}

func (c *Client) unexpected(op string, status int, body []byte) error {
	c.logger.Error("identity provider call failed",
		zap.String("operation", op),
		zap.Int("status", status),
	)
	return domain.WrapError(domain.ErrCodeUnavailable, "Authentication service is unavailable",
		fmt.Errorf("%s: status %d: %w", op, status, bodyError(body)))
}

func decodeIdentity(body []byte) (*domain.Identity, error) {
	var identity domain.Identity
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnavailable, "Authentication service is unavailable", err)
	}
	return &identity, nil
}

// bodyError extracts the provider's error message, falling back to the
// raw body.
func bodyError(body []byte) error {
	var parsed struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch {
		case parsed.Message != "":
			return fmt.Errorf("%s", parsed.Message)
		case parsed.Msg != "":
			return fmt.Errorf("%s", parsed.Msg)
		case parsed.Error != "":
			return fmt.Errorf("%s", parsed.Error)
		}
	}
	return fmt.Errorf("%s", string(body))
}
