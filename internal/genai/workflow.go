package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const workflowTimeout = 120 * time.Second

// WorkflowClient invokes the external workflow service that turns a
// free-text prompt into generated interview questions. The response
// contract is a single text field carrying the model output verbatim;
// nothing on the remote side enforces its shape.
type WorkflowClient struct {
	baseURL    string
	workflowID string
	token      string
	httpClient *http.Client
}

// NewWorkflowClient creates a client for the given workflow endpoint.
func NewWorkflowClient(baseURL, workflowID, token string) *WorkflowClient {
	return &WorkflowClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		workflowID: workflowID,
		token:      token,
		httpClient: &http.Client{Timeout: workflowTimeout},
	}
}

type workflowRequest struct {
	Input string `json:"input"`
}

type workflowResponse struct {
	Output struct {
		Text string `json:"text"`
	} `json:"output"`
}

// Run executes the workflow with the given prompt and returns the raw text
// output. No retry: an upstream failure is terminal for the request.
func (c *WorkflowClient) Run(ctx context.Context, input string) (string, error) {
	body, err := json.Marshal(workflowRequest{Input: input})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/workflows/%s/run", c.baseURL, c.workflowID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("running workflow: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("workflow returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var wr workflowResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return "", fmt.Errorf("decoding workflow response: %w", err)
	}

	return wr.Output.Text, nil
}
