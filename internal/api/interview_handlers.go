package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Anshika-404/MockMate/internal/feedback"
	"github.com/Anshika-404/MockMate/internal/models"
)

const availableInterviewsLimit = 20

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	yours, err := s.interviews.ListInterviewsByUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to list interviews", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load dashboard")
		return
	}

	available, err := s.interviews.ListAvailableInterviews(r.Context(), user.ID, availableInterviewsLimit)
	if err != nil {
		slog.Error("failed to list available interviews", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load dashboard")
		return
	}

	resp := models.DashboardResponse{
		YourInterviews:      s.buildCards(r, user.ID, yours),
		AvailableInterviews: s.buildCards(r, user.ID, available),
	}

	respondJSON(w, http.StatusOK, resp)
}

// buildCards decorates interviews with the viewing user's feedback summary.
// A feedback lookup failure degrades to a bare card rather than failing
// the whole dashboard.
func (s *Server) buildCards(r *http.Request, userID string, interviews []*models.Interview) []models.InterviewCard {
	cards := make([]models.InterviewCard, 0, len(interviews))

	for _, iv := range interviews {
		card := models.InterviewCard{Interview: iv}

		fb, err := s.feedback.Find(r.Context(), iv.ID, userID)
		if err != nil {
			slog.Warn("feedback lookup failed", "error", err, "interview_id", iv.ID)
		} else if fb != nil {
			score := fb.TotalScore
			card.TotalScore = &score
			card.FinalAssessment = fb.FinalAssessment
		}

		cards = append(cards, card)
	}

	return cards
}

func (s *Server) handleGetInterview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "interview id is required")
		return
	}

	iv, err := s.interviews.GetInterview(r.Context(), id)
	if err != nil {
		slog.Error("failed to get interview", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get interview")
		return
	}

	if iv == nil {
		respondError(w, http.StatusNotFound, "not_found", "interview not found")
		return
	}

	respondJSON(w, http.StatusOK, iv)
}

func (s *Server) handleGetFeedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user := UserFromContext(r.Context())

	fb, err := s.feedback.Find(r.Context(), id, user.ID)
	if err != nil {
		slog.Error("failed to get feedback", "error", err, "interview_id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get feedback")
		return
	}

	if fb == nil {
		respondError(w, http.StatusNotFound, "not_found", "feedback not found")
		return
	}

	respondJSON(w, http.StatusOK, fb)
}

type regenerateRequest struct {
	FeedbackID string                  `json:"feedback_id,omitempty"`
	Transcript []models.TranscriptTurn `json:"transcript,omitempty"`
}

// handleRegenerateFeedback re-runs feedback generation for an interview,
// overwriting an existing record when feedback_id is supplied. The
// transcript defaults to the one stored on the interview.
func (s *Server) handleRegenerateFeedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user := UserFromContext(r.Context())

	var req regenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	transcript := req.Transcript
	if len(transcript) == 0 {
		iv, err := s.interviews.GetInterview(r.Context(), id)
		if err != nil {
			slog.Error("failed to get interview", "error", err, "id", id)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to get interview")
			return
		}
		if iv == nil {
			respondError(w, http.StatusNotFound, "not_found", "interview not found")
			return
		}
		transcript = iv.Transcript
	}

	if len(transcript) == 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "interview has no transcript")
		return
	}

	result := s.feedback.Generate(r.Context(), feedback.Params{
		InterviewID: id,
		UserID:      user.ID,
		Transcript:  transcript,
		FeedbackID:  req.FeedbackID,
	})

	if !result.Success {
		respondError(w, http.StatusInternalServerError, "generation_failed", "failed to generate feedback")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
