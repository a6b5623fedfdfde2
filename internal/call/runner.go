package call

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Anshika-404/MockMate/internal/feedback"
	"github.com/Anshika-404/MockMate/internal/models"
)

// HomePath is the fallback landing view after a failed completion.
const HomePath = "/"

// InterviewFinalizer persists a completed session transcript.
type InterviewFinalizer interface {
	SetInterviewTranscript(ctx context.Context, id string, transcript []models.TranscriptTurn) error
}

// FeedbackGenerator runs the feedback orchestrator.
type FeedbackGenerator interface {
	Generate(ctx context.Context, params feedback.Params) feedback.Result
}

// Runner executes the end-of-call sequence: persist the transcript onto
// the interview, generate feedback, and pick the view the client should
// navigate to.
type Runner struct {
	interviews InterviewFinalizer
	feedback   FeedbackGenerator
}

// NewRunner creates a completion runner.
func NewRunner(interviews InterviewFinalizer, generator FeedbackGenerator) *Runner {
	return &Runner{interviews: interviews, feedback: generator}
}

// Finish runs the completion sequence for a finished session. The one-shot
// guard on the session makes this safe to call more than once; only the
// first call on a finished, non-empty session does any work. The returned
// path is where the client should navigate, or "" when nothing ran.
func (r *Runner) Finish(ctx context.Context, s *Session) string {
	if !s.CompleteOnce() {
		return ""
	}

	transcript := s.Transcript()

	if err := r.interviews.SetInterviewTranscript(ctx, s.InterviewID, transcript); err != nil {
		slog.Error("failed to finalize interview", "error", err, "interview_id", s.InterviewID)
		return HomePath
	}

	result := r.feedback.Generate(ctx, feedback.Params{
		InterviewID: s.InterviewID,
		UserID:      s.UserID,
		Transcript:  transcript,
	})
	if !result.Success {
		// Silent fallback: the client lands on the home view with no
		// diagnostic.
		return HomePath
	}

	return FeedbackPath(s.InterviewID)
}

// FeedbackPath returns the feedback view path for an interview.
func FeedbackPath(interviewID string) string {
	return fmt.Sprintf("/interview/%s/feedback", interviewID)
}
