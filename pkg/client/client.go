package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Anshika-404/MockMate/internal/models"
)

// Client is a Go SDK for the interview-engine API. Authenticated endpoints
// require a session established through SignIn; the client carries the
// session cookie on subsequent requests.
type Client struct {
	baseURL      string
	cookieName   string
	sessionToken string
	httpClient   *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithCookieName overrides the session cookie name
func WithCookieName(name string) Option {
	return func(c *Client) {
		c.cookieName = name
	}
}

// NewClient creates a new interview-engine client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		cookieName: "session",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignUpRequest registers a new account against a verified identity token.
type SignUpRequest struct {
	IDToken string `json:"id_token"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// SignUp creates an account. The caller still needs to SignIn afterwards.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	_, err = c.doEnvelope(ctx, "POST", "/api/v1/auth/signup", bytes.NewReader(body))
	return err
}

// SignIn establishes a session and stores the session cookie on the client.
func (c *Client) SignIn(ctx context.Context, email, idToken string) error {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"id_token": idToken,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v1/auth/signin", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == c.cookieName {
			c.sessionToken = cookie.Value
			return nil
		}
	}
	return fmt.Errorf("no session cookie in sign-in response")
}

// SignOut destroys the server-side session and drops the local cookie.
func (c *Client) SignOut(ctx context.Context) error {
	_, err := c.doEnvelope(ctx, "POST", "/api/v1/auth/signout", nil)
	c.sessionToken = ""
	return err
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	data, err := c.doEnvelope(ctx, "GET", "/api/v1/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &user, nil
}

// GenerateRequest asks the engine to generate interview questions. The
// field names follow the public generate contract.
type GenerateRequest struct {
	Type      string `json:"type"`
	Role      string `json:"role"`
	Level     string `json:"level"`
	Techstack string `json:"techstack"`
	Amount    int    `json:"amount"`
	UserID    string `json:"userid"`
}

// Generate creates a new interview with AI-generated questions. This
// endpoint uses a plain response shape rather than the API envelope.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) ([]string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, "POST", "/api/vapi/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var result struct {
		Success   bool     `json:"success"`
		Questions []string `json:"questions"`
		Error     string   `json:"error"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("API error: %s", result.Error)
	}
	return result.Questions, nil
}

// Dashboard returns the signed-in user's interviews and the community feed.
func (c *Client) Dashboard(ctx context.Context) (*models.DashboardResponse, error) {
	data, err := c.doEnvelope(ctx, "GET", "/api/v1/dashboard", nil)
	if err != nil {
		return nil, err
	}

	var resp models.DashboardResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &resp, nil
}

// GetInterview retrieves an interview by ID
func (c *Client) GetInterview(ctx context.Context, id string) (*models.Interview, error) {
	data, err := c.doEnvelope(ctx, "GET", fmt.Sprintf("/api/v1/interviews/%s", id), nil)
	if err != nil {
		return nil, err
	}

	var iv models.Interview
	if err := json.Unmarshal(data, &iv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &iv, nil
}

// GetFeedback retrieves the signed-in user's feedback for an interview
func (c *Client) GetFeedback(ctx context.Context, interviewID string) (*models.Feedback, error) {
	data, err := c.doEnvelope(ctx, "GET", fmt.Sprintf("/api/v1/interviews/%s/feedback", interviewID), nil)
	if err != nil {
		return nil, err
	}

	var fb models.Feedback
	if err := json.Unmarshal(data, &fb); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &fb, nil
}

// RegenerateFeedback re-runs feedback generation for an interview and
// returns the feedback document ID.
func (c *Client) RegenerateFeedback(ctx context.Context, interviewID string) (string, error) {
	data, err := c.doEnvelope(ctx, "POST", fmt.Sprintf("/api/v1/interviews/%s/feedback", interviewID), bytes.NewReader([]byte("{}")))
	if err != nil {
		return "", err
	}

	var result struct {
		Success    bool   `json:"success"`
		FeedbackID string `json:"feedback_id"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return result.FeedbackID, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, "GET", "/health", nil)
	return err
}

// doEnvelope performs a request and unwraps the standard API envelope.
func (c *Client) doEnvelope(ctx context.Context, method, path string, body io.Reader) (json.RawMessage, error) {
	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	var env apiEnvelope
	if err := json.Unmarshal(resp, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if !env.Success {
		if env.Error != nil {
			return nil, fmt.Errorf("API error: %s - %s", env.Error.Code, env.Error.Message)
		}
		return nil, fmt.Errorf("API error: request failed")
	}
	return env.Data, nil
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.sessionToken != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: c.sessionToken})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
