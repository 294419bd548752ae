// Package client is a typed HTTP client for the HR API, used by the smoke
// command and end to end tests.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"hrms.org/internal/auth"
	"hrms.org/internal/records"
)

// Error is a non-2xx API response.
type Error struct {
	Status    int    `json:"-"`
	Detail    string `json:"detail"`
	RequestID string `json:"request_id"`
}

func (e *Error) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("api: %d %s (request %s)", e.Status, e.Detail, e.RequestID)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Detail)
}

// Option configures Client.
type Option func(*resty.Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

// WithRetries retries network failures and 5xx responses n times.
func WithRetries(n int) Option {
	return func(c *resty.Client) {
		c.SetRetryCount(n).
			SetRetryWaitTime(100 * time.Millisecond).
			SetRetryMaxWaitTime(2 * time.Second).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err != nil || (r != nil && r.StatusCode() >= http.StatusInternalServerError)
			})
	}
}

// Client calls the API on behalf of one session.
type Client struct {
	http  *resty.Client
	token string
}

// New builds a client for the API rooted at baseURL (e.g. http://localhost:8000).
func New(baseURL string, opts ...Option) *Client {
	rc := resty.New().SetBaseURL(strings.TrimRight(baseURL, "/"))
	for _, opt := range opts {
		opt(rc)
	}
	rc.SetHeader("Accept", "application/json")
	return &Client{http: rc}
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	return &Client{http: c.http, token: token}
}

// Token returns the bearer token in use.
func (c *Client) Token() string { return c.token }

func (c *Client) call(ctx context.Context, method, path string, body, out any, query map[string]string) error {
	apiErr := &Error{}
	req := c.http.R().SetContext(ctx).SetError(apiErr)
	if c.token != "" {
		req.SetAuthToken(c.token)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	if resp.IsError() {
		apiErr.Status = resp.StatusCode()
		if apiErr.Detail == "" {
			apiErr.Detail = http.StatusText(resp.StatusCode())
		}
		return apiErr
	}
	return nil
}

// Signup registers an identity of role. payload carries the role specific
// profile fields. The returned client is authenticated as the new identity.
func (c *Client) Signup(ctx context.Context, role auth.Role, payload any) (*Client, auth.Identity, error) {
	var res auth.AuthResult
	if err := c.call(ctx, http.MethodPost, "/api/auth/signup/"+string(role), payload, &res, nil); err != nil {
		return nil, auth.Identity{}, err
	}
	return c.WithToken(res.Token), res.User, nil
}

// Login authenticates and returns a client bound to the issued token.
func (c *Client) Login(ctx context.Context, email, password string) (*Client, auth.Identity, error) {
	var res auth.AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.call(ctx, http.MethodPost, "/api/auth/login", body, &res, nil); err != nil {
		return nil, auth.Identity{}, err
	}
	return c.WithToken(res.Token), res.User, nil
}

// Me returns the authenticated identity.
func (c *Client) Me(ctx context.Context) (auth.Identity, error) {
	var id auth.Identity
	err := c.call(ctx, http.MethodGet, "/api/auth/me", nil, &id, nil)
	return id, err
}

// Users lists the identities visible to the caller.
func (c *Client) Users(ctx context.Context) ([]auth.Identity, error) {
	var out []auth.Identity
	err := c.call(ctx, http.MethodGet, "/api/users", nil, &out, nil)
	return out, err
}

// Dashboard returns the caller's dashboard.
func (c *Client) Dashboard(ctx context.Context) (records.Dashboard, error) {
	var out records.Dashboard
	err := c.call(ctx, http.MethodGet, "/api/dashboard/stats", nil, &out, nil)
	return out, err
}

type envelope[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// CreateOnboarding opens the onboarding record of userID.
func (c *Client) CreateOnboarding(ctx context.Context, userID string) (records.Onboarding, error) {
	var out envelope[records.Onboarding]
	err := c.call(ctx, http.MethodPost, "/api/onboarding/create", nil, &out, map[string]string{"user_id": userID})
	return out.Data, err
}

// Onboarding fetches the onboarding record of userID.
func (c *Client) Onboarding(ctx context.Context, userID string) (records.Onboarding, error) {
	var out records.Onboarding
	err := c.call(ctx, http.MethodGet, "/api/onboarding/"+userID, nil, &out, nil)
	return out, err
}

// CreateTask assigns a task.
func (c *Client) CreateTask(ctx context.Context, in records.TaskInput) (records.Task, error) {
	var out envelope[records.Task]
	err := c.call(ctx, http.MethodPost, "/api/performance/task/create", in, &out, nil)
	return out.Data, err
}

// Tasks lists the tasks of userID.
func (c *Client) Tasks(ctx context.Context, userID string) ([]records.Task, error) {
	var out []records.Task
	err := c.call(ctx, http.MethodGet, "/api/performance/tasks/"+userID, nil, &out, nil)
	return out, err
}

// CheckIn opens today's attendance record.
func (c *Client) CheckIn(ctx context.Context) (records.Attendance, error) {
	var out envelope[records.Attendance]
	err := c.call(ctx, http.MethodPost, "/api/attendance/checkin", nil, &out, nil)
	return out.Data, err
}

// ApplyLeave files a leave request.
func (c *Client) ApplyLeave(ctx context.Context, in records.LeaveInput) (records.Leave, error) {
	var out envelope[records.Leave]
	err := c.call(ctx, http.MethodPost, "/api/attendance/leave/apply", in, &out, nil)
	return out.Data, err
}

// DecideLeave approves or rejects a leave request.
func (c *Client) DecideLeave(ctx context.Context, leaveID, status string) (records.Leave, error) {
	var out envelope[records.Leave]
	err := c.call(ctx, http.MethodPut, "/api/attendance/leave/approve/"+leaveID, nil, &out, map[string]string{"status": status})
	return out.Data, err
}
