package feedback

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Anshika-404/MockMate/internal/genai"
	"github.com/Anshika-404/MockMate/internal/models"
)

// Generator performs a structured-generation call against a fixed schema.
type Generator interface {
	GenerateObject(ctx context.Context, prompt string, schema *genai.Schema, out any) error
}

// Store is the subset of storage the orchestrator needs.
type Store interface {
	GetFeedbackByInterviewAndUser(ctx context.Context, interviewID, userID string) (*models.Feedback, error)
	UpsertFeedback(ctx context.Context, f *models.Feedback) error
	SetInterviewFeedback(ctx context.Context, id, feedbackID string) error
}

// Params are the inputs to one feedback generation. FeedbackID is optional;
// when set, the record at that id is overwritten (regeneration).
type Params struct {
	InterviewID string
	UserID      string
	Transcript  []models.TranscriptTurn
	FeedbackID  string
}

// Result reports the outcome of a generation call. On failure no partial
// feedback is persisted.
type Result struct {
	Success    bool   `json:"success"`
	FeedbackID string `json:"feedback_id,omitempty"`
}

// Service orchestrates feedback generation: format the transcript, call the
// structured-generation service, persist the result, and back-link it onto
// the interview.
type Service struct {
	generator Generator
	store     Store
}

// NewService creates a feedback service. A nil generator marks the service
// unconfigured; Generate then reports failure without calling upstream.
func NewService(generator Generator, store Store) *Service {
	return &Service{generator: generator, store: store}
}

// Generate runs the full feedback flow. Upstream failures are caught and
// converted into Result{Success: false}; they never propagate as errors.
//
// The feedback write and the interview back-reference update are two
// separate statements. A crash between them leaves a feedback record the
// interview does not point at — an accepted inconsistency window.
func (s *Service) Generate(ctx context.Context, params Params) Result {
	if s.generator == nil {
		slog.Error("feedback generation not configured")
		return Result{Success: false}
	}

	prompt := BuildPrompt(params.Transcript)

	var generated generatedFeedback
	if err := s.generator.GenerateObject(ctx, prompt, resultSchema(), &generated); err != nil {
		slog.Error("feedback generation failed", "error", err, "interview_id", params.InterviewID)
		return Result{Success: false}
	}

	feedbackID := params.FeedbackID
	if feedbackID == "" {
		// Lookup before write keeps the at-most-one-per-pair rule
		// advisory: concurrent callers can still both miss and insert.
		existing, err := s.store.GetFeedbackByInterviewAndUser(ctx, params.InterviewID, params.UserID)
		if err != nil {
			slog.Error("feedback lookup failed", "error", err, "interview_id", params.InterviewID)
			return Result{Success: false}
		}
		if existing != nil {
			feedbackID = existing.ID
		} else {
			feedbackID = uuid.NewString()
		}
	}

	record := &models.Feedback{
		ID:                  feedbackID,
		InterviewID:         params.InterviewID,
		UserID:              params.UserID,
		TotalScore:          generated.TotalScore,
		CategoryScores:      generated.CategoryScores,
		Strengths:           generated.Strengths,
		AreasForImprovement: generated.AreasForImprovement,
		FinalAssessment:     generated.FinalAssessment,
		CreatedAt:           time.Now().UTC(),
	}

	if err := s.store.UpsertFeedback(ctx, record); err != nil {
		slog.Error("failed to persist feedback", "error", err, "interview_id", params.InterviewID)
		return Result{Success: false}
	}

	if err := s.store.SetInterviewFeedback(ctx, params.InterviewID, feedbackID); err != nil {
		// Feedback exists but the interview does not reference it yet.
		slog.Error("failed to back-link feedback", "error", err, "interview_id", params.InterviewID, "feedback_id", feedbackID)
		return Result{Success: false}
	}

	return Result{Success: true, FeedbackID: feedbackID}
}

// Find returns the feedback for an (interview, user) pair, or nil when none
// exists.
func (s *Service) Find(ctx context.Context, interviewID, userID string) (*models.Feedback, error) {
	return s.store.GetFeedbackByInterviewAndUser(ctx, interviewID, userID)
}
