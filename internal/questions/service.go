package questions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Anshika-404/MockMate/internal/covers"
	"github.com/Anshika-404/MockMate/internal/models"
)

var (
	// ErrNotConfigured means the workflow service credentials are missing.
	ErrNotConfigured = errors.New("missing workflow service configuration")
	// ErrBadAIResponse means the workflow output was not a JSON array of
	// strings. Terminal for the request: no retry, nothing persisted.
	ErrBadAIResponse = errors.New("bad AI response")
)

// Workflow runs the external question-generation workflow.
type Workflow interface {
	Run(ctx context.Context, input string) (string, error)
}

// InterviewStore is the subset of storage the orchestrator needs.
type InterviewStore interface {
	CreateInterview(ctx context.Context, iv *models.Interview) error
}

// Service orchestrates question generation: prompt the workflow service,
// strict-parse its output, persist the finalized interview.
type Service struct {
	workflow Workflow
	store    InterviewStore
	covers   *covers.Picker
}

// NewService creates a question-generation service. A nil workflow marks
// the service unconfigured; Generate then fails with ErrNotConfigured.
func NewService(workflow Workflow, store InterviewStore, picker *covers.Picker) *Service {
	return &Service{workflow: workflow, store: store, covers: picker}
}

// Generate runs the full question-generation flow and returns the
// persisted interview. The cover image is chosen before the interview id
// exists, so the choice is independent of the record.
func (s *Service) Generate(ctx context.Context, req models.GenerateRequest) (*models.Interview, error) {
	if s.workflow == nil {
		return nil, ErrNotConfigured
	}

	prompt := BuildPrompt(req.Role, req.Level, req.Techstack, req.Type, req.Amount)

	output, err := s.workflow.Run(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("workflow run failed: %w", err)
	}

	parsed, err := parseQuestions(output)
	if err != nil {
		slog.Error("failed to parse workflow output", "error", err, "output", output)
		return nil, ErrBadAIResponse
	}

	interview := &models.Interview{
		ID:         uuid.NewString(),
		UserID:     req.UserID,
		Role:       req.Role,
		Level:      req.Level,
		Type:       req.Type,
		Techstack:  SplitTechstack(req.Techstack),
		Questions:  parsed,
		Finalized:  true,
		CoverImage: s.covers.Pick(),
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.store.CreateInterview(ctx, interview); err != nil {
		return nil, fmt.Errorf("failed to persist interview: %w", err)
	}

	return interview, nil
}

// parseQuestions strict-parses the workflow output as a JSON array of
// strings. Anything else, including a JSON value of another shape, fails.
func parseQuestions(output string) ([]string, error) {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return nil, fmt.Errorf("empty output")
	}

	var parsed []string
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return nil, fmt.Errorf("output is not a JSON array of strings: %w", err)
	}

	return parsed, nil
}
