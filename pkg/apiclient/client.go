package apiclient

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/taskboard/backend/api/transport"
	"github.com/taskboard/backend/domain"
)

// TokenFunc supplies the current bearer token for a request, mirroring
// a session store the UI refreshes behind the scenes.
type TokenFunc func() string

// Client is a typed client for the taskboard API. Every failure it
// returns is a *Failure with a stable, user-safe message.
type Client struct {
	baseURL string
	token   TokenFunc
	http    *fasthttp.Client
	timeout time.Duration
}

// New builds a client for the given API base URL, e.g. http://localhost:3000.
func New(baseURL string, token TokenFunc) *Client {
	return NewWithHTTP(baseURL, token, &fasthttp.Client{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})
}

// NewWithHTTP is New with an injected fasthttp client.
func NewWithHTTP(baseURL string, token TokenFunc, hc *fasthttp.Client) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    hc,
		timeout: 10 * time.Second,
	}
}

// ListTasks fetches the caller's tasks, optionally filtered by status.
func (c *Client) ListTasks(ctx context.Context, status string) ([]domain.Task, error) {
	path := "/api/tasks"
	if status != "" {
		path += "?status=" + status
	}

	var out transport.TaskListResponse
	if err := c.do(ctx, fasthttp.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, req transport.TaskCreateRequest) (*domain.Task, error) {
	var out transport.TaskResponse
	if err := c.do(ctx, fasthttp.MethodPost, "/api/tasks", req, &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}

// UpdateTask sends a partial update; only the provided fields change.
func (c *Client) UpdateTask(ctx context.Context, id string, fields map[string]any) (*domain.Task, error) {
	var out transport.TaskResponse
	if err := c.do(ctx, fasthttp.MethodPut, "/api/tasks/"+id, fields, &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}

// UpdateTaskStatus is the move operation: a partial update touching only
// the status column.
func (c *Client) UpdateTaskStatus(ctx context.Context, id string, status domain.Status) (*domain.Task, error) {
	return c.UpdateTask(ctx, id, map[string]any{"status": status.String()})
}

// DeleteTask removes a task and returns its prior state.
func (c *Client) DeleteTask(ctx context.Context, id string) (*domain.Task, error) {
	var out transport.TaskResponse
	if err := c.do(ctx, fasthttp.MethodDelete, "/api/tasks/"+id, nil, &out); err != nil {
		return nil, err
	}
	return out.Task, nil
}

func (c *Client) GetProfile(ctx context.Context) (*domain.Profile, error) {
	var out transport.ProfileResponse
	if err := c.do(ctx, fasthttp.MethodGet, "/api/profile", nil, &out); err != nil {
		return nil, err
	}
	return out.Profile, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req transport.ProfileUpdateRequest) (*domain.Profile, error) {
	var out transport.ProfileResponse
	if err := c.do(ctx, fasthttp.MethodPut, "/api/profile", req, &out); err != nil {
		return nil, err
	}
	return out.Profile, nil
}

func (c *Client) DeleteAccount(ctx context.Context) (*transport.AccountDeleteResponse, error) {
	var out transport.AccountDeleteResponse
	if err := c.do(ctx, fasthttp.MethodDelete, "/api/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	if err := ctx.Err(); err != nil {
		return &Failure{Kind: FailureConnection, Message: msgConnection, Detail: err.Error()}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return &Failure{Kind: FailureGeneric, Message: msgGeneric, Detail: err.Error()}
		}
		req.SetBody(body)
	}

	if err := c.http.DoTimeout(req, resp, c.timeout); err != nil {
		return &Failure{Kind: FailureConnection, Message: msgConnection, Detail: err.Error()}
	}

	status := resp.StatusCode()
	if status >= 200 && status < 300 {
		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return &Failure{Kind: FailureGeneric, Message: msgGeneric, Detail: err.Error()}
			}
		}
		return nil
	}

	return classifyStatus(status, resp.Body())
}
