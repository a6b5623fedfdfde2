package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Anshika-404/MockMate/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25 // default
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5 // default
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// --- Users ---

// CreateUser inserts a new user record. The id comes from the identity
// provider; a duplicate id is reported as an error.
func (r *PostgresRepository) CreateUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (id, name, email, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query, u.ID, u.Name, u.Email, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUser retrieves a user by id
func (r *PostgresRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, name, email, created_at
		FROM users
		WHERE id = $1
	`

	var u models.User
	err := r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

// --- Interviews ---

const interviewColumns = `id, user_id, role, level, type, techstack, questions, transcript, finalized, cover_image, feedback_id, created_at`

// CreateInterview inserts a new interview. CreatedAt is assigned here if
// the caller left it zero.
func (r *PostgresRepository) CreateInterview(ctx context.Context, iv *models.Interview) error {
	if iv.CreatedAt.IsZero() {
		iv.CreatedAt = time.Now().UTC()
	}

	techstackJSON, err := json.Marshal(iv.Techstack)
	if err != nil {
		return fmt.Errorf("failed to marshal techstack: %w", err)
	}

	questionsJSON, err := json.Marshal(iv.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}

	transcriptJSON, err := marshalTranscript(iv.Transcript)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO interviews (id, user_id, role, level, type, techstack, questions, transcript, finalized, cover_image, feedback_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.pool.Exec(ctx, query,
		iv.ID,
		iv.UserID,
		iv.Role,
		iv.Level,
		iv.Type,
		techstackJSON,
		questionsJSON,
		transcriptJSON,
		iv.Finalized,
		nullableText(iv.CoverImage),
		nullableText(iv.FeedbackID),
		iv.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}

	return nil
}

// GetInterview retrieves an interview by id
func (r *PostgresRepository) GetInterview(ctx context.Context, id string) (*models.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews WHERE id = $1`

	iv, err := scanInterview(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}

	return iv, nil
}

// ListInterviewsByUser returns a user's interviews, newest first
func (r *PostgresRepository) ListInterviewsByUser(ctx context.Context, userID string) ([]*models.Interview, error) {
	query := `
		SELECT ` + interviewColumns + `
		FROM interviews
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()

	return collectInterviews(rows)
}

// ListAvailableInterviews returns finalized interviews owned by other users,
// newest first. A non-positive limit yields an empty result, not an error.
func (r *PostgresRepository) ListAvailableInterviews(ctx context.Context, excludeUserID string, limit int) ([]*models.Interview, error) {
	if limit <= 0 {
		return []*models.Interview{}, nil
	}

	query := `
		SELECT ` + interviewColumns + `
		FROM interviews
		WHERE finalized = TRUE
		  AND user_id <> $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, excludeUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list available interviews: %w", err)
	}
	defer rows.Close()

	return collectInterviews(rows)
}

// SetInterviewFeedback attaches a feedback back-reference to an interview
func (r *PostgresRepository) SetInterviewFeedback(ctx context.Context, id, feedbackID string) error {
	query := `UPDATE interviews SET feedback_id = $2 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, feedbackID)
	if err != nil {
		return fmt.Errorf("failed to set interview feedback: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("interview not found: %s", id)
	}

	return nil
}

// SetInterviewTranscript stores a completed session transcript and marks
// the interview finalized.
func (r *PostgresRepository) SetInterviewTranscript(ctx context.Context, id string, transcript []models.TranscriptTurn) error {
	transcriptJSON, err := marshalTranscript(transcript)
	if err != nil {
		return err
	}

	query := `UPDATE interviews SET transcript = $2, finalized = TRUE WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, transcriptJSON)
	if err != nil {
		return fmt.Errorf("failed to set interview transcript: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("interview not found: %s", id)
	}

	return nil
}

// ListStaleInterviews returns non-finalized interviews created before the
// cutoff. Used by the janitor. In-app writes finalize immediately, so this
// only surfaces rows inserted by external tooling.
func (r *PostgresRepository) ListStaleInterviews(ctx context.Context, olderThan time.Time) ([]*models.Interview, error) {
	query := `
		SELECT ` + interviewColumns + `
		FROM interviews
		WHERE finalized = FALSE
		  AND created_at < $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, olderThan)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale interviews: %w", err)
	}
	defer rows.Close()

	return collectInterviews(rows)
}

// DeleteInterview deletes an interview by id
func (r *PostgresRepository) DeleteInterview(ctx context.Context, id string) error {
	query := `DELETE FROM interviews WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete interview: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("interview not found: %s", id)
	}

	return nil
}

// --- Feedback ---

// GetFeedbackByInterviewAndUser returns the feedback for an (interview,
// user) pair. At most one record is expected; if the advisory invariant has
// been violated the first match wins.
func (r *PostgresRepository) GetFeedbackByInterviewAndUser(ctx context.Context, interviewID, userID string) (*models.Feedback, error) {
	query := `
		SELECT id, interview_id, user_id, total_score, category_scores, strengths, areas_for_improvement, final_assessment, created_at
		FROM feedback
		WHERE interview_id = $1 AND user_id = $2
		ORDER BY created_at ASC
		LIMIT 1
	`

	var f models.Feedback
	var categoryJSON, strengthsJSON, areasJSON []byte

	err := r.pool.QueryRow(ctx, query, interviewID, userID).Scan(
		&f.ID,
		&f.InterviewID,
		&f.UserID,
		&f.TotalScore,
		&categoryJSON,
		&strengthsJSON,
		&areasJSON,
		&f.FinalAssessment,
		&f.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}

	if err := json.Unmarshal(categoryJSON, &f.CategoryScores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal category scores: %w", err)
	}
	if err := json.Unmarshal(strengthsJSON, &f.Strengths); err != nil {
		return nil, fmt.Errorf("failed to unmarshal strengths: %w", err)
	}
	if err := json.Unmarshal(areasJSON, &f.AreasForImprovement); err != nil {
		return nil, fmt.Errorf("failed to unmarshal areas for improvement: %w", err)
	}

	return &f, nil
}

// UpsertFeedback writes a feedback record. When the id already exists the
// record is overwritten in place (regeneration path); otherwise a new row
// is inserted.
func (r *PostgresRepository) UpsertFeedback(ctx context.Context, f *models.Feedback) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}

	categoryJSON, err := json.Marshal(f.CategoryScores)
	if err != nil {
		return fmt.Errorf("failed to marshal category scores: %w", err)
	}

	strengthsJSON, err := json.Marshal(f.Strengths)
	if err != nil {
		return fmt.Errorf("failed to marshal strengths: %w", err)
	}

	areasJSON, err := json.Marshal(f.AreasForImprovement)
	if err != nil {
		return fmt.Errorf("failed to marshal areas for improvement: %w", err)
	}

	query := `
		INSERT INTO feedback (id, interview_id, user_id, total_score, category_scores, strengths, areas_for_improvement, final_assessment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET interview_id = EXCLUDED.interview_id,
		    user_id = EXCLUDED.user_id,
		    total_score = EXCLUDED.total_score,
		    category_scores = EXCLUDED.category_scores,
		    strengths = EXCLUDED.strengths,
		    areas_for_improvement = EXCLUDED.areas_for_improvement,
		    final_assessment = EXCLUDED.final_assessment,
		    created_at = EXCLUDED.created_at
	`

	_, err = r.pool.Exec(ctx, query,
		f.ID,
		f.InterviewID,
		f.UserID,
		f.TotalScore,
		categoryJSON,
		strengthsJSON,
		areasJSON,
		f.FinalAssessment,
		f.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert feedback: %w", err)
	}

	return nil
}

// --- Scan helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInterview(row rowScanner) (*models.Interview, error) {
	var iv models.Interview
	var techstackJSON, questionsJSON, transcriptJSON []byte
	var coverImage, feedbackID *string

	err := row.Scan(
		&iv.ID,
		&iv.UserID,
		&iv.Role,
		&iv.Level,
		&iv.Type,
		&techstackJSON,
		&questionsJSON,
		&transcriptJSON,
		&iv.Finalized,
		&coverImage,
		&feedbackID,
		&iv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if coverImage != nil {
		iv.CoverImage = *coverImage
	}
	if feedbackID != nil {
		iv.FeedbackID = *feedbackID
	}

	if err := json.Unmarshal(techstackJSON, &iv.Techstack); err != nil {
		return nil, fmt.Errorf("failed to unmarshal techstack: %w", err)
	}
	if err := json.Unmarshal(questionsJSON, &iv.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	if transcriptJSON != nil {
		if err := json.Unmarshal(transcriptJSON, &iv.Transcript); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
		}
	}

	return &iv, nil
}

func collectInterviews(rows pgx.Rows) ([]*models.Interview, error) {
	interviews := []*models.Interview{}

	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interview: %w", err)
		}
		interviews = append(interviews, iv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interviews: %w", err)
	}

	return interviews, nil
}

func marshalTranscript(transcript []models.TranscriptTurn) ([]byte, error) {
	if transcript == nil {
		return nil, nil
	}
	data, err := json.Marshal(transcript)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transcript: %w", err)
	}
	return data, nil
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
