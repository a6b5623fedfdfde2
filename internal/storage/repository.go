package storage

import (
	"context"
	"time"

	"github.com/Anshika-404/MockMate/internal/models"
)

// Repository defines the interface for interview persistence. Lookups
// return (nil, nil) when no record matches; absence is not an error.
type Repository interface {
	// Users
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)

	// Interviews
	CreateInterview(ctx context.Context, iv *models.Interview) error
	GetInterview(ctx context.Context, id string) (*models.Interview, error)
	ListInterviewsByUser(ctx context.Context, userID string) ([]*models.Interview, error)
	ListAvailableInterviews(ctx context.Context, excludeUserID string, limit int) ([]*models.Interview, error)
	SetInterviewFeedback(ctx context.Context, id, feedbackID string) error
	SetInterviewTranscript(ctx context.Context, id string, transcript []models.TranscriptTurn) error
	ListStaleInterviews(ctx context.Context, olderThan time.Time) ([]*models.Interview, error)
	DeleteInterview(ctx context.Context, id string) error

	// Feedback
	GetFeedbackByInterviewAndUser(ctx context.Context, interviewID, userID string) (*models.Feedback, error)
	UpsertFeedback(ctx context.Context, f *models.Feedback) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
