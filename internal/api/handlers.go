package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Anshika-404/MockMate/internal/auth"
	"github.com/Anshika-404/MockMate/internal/models"
	"github.com/Anshika-404/MockMate/internal/questions"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	for _, p := range s.health {
		if err := p.Ping(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Question generation

// generateResponse is the legacy wire contract of POST /api/vapi/generate.
type generateResponse struct {
	Success   bool     `json:"success"`
	Questions []string `json:"questions,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func writeGenerate(w http.ResponseWriter, status int, resp generateResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode generate response", "error", err)
	}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGenerate(w, http.StatusBadRequest, generateResponse{Success: false, Error: "invalid JSON body"})
		return
	}

	interview, err := s.questions.Generate(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, questions.ErrNotConfigured):
			writeGenerate(w, http.StatusInternalServerError, generateResponse{Success: false, Error: "Missing VAPI environment variables"})
		case errors.Is(err, questions.ErrBadAIResponse):
			writeGenerate(w, http.StatusInternalServerError, generateResponse{Success: false, Error: "Bad AI response"})
		default:
			slog.Error("question generation failed", "error", err)
			writeGenerate(w, http.StatusInternalServerError, generateResponse{Success: false, Error: "failed to generate questions"})
		}
		return
	}

	writeGenerate(w, http.StatusOK, generateResponse{Success: true, Questions: interview.Questions})
}

// Auth handlers

type signUpRequest struct {
	IDToken string `json:"id_token"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.IDToken == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "id_token is required")
		return
	}

	user, err := s.auth.SignUp(r.Context(), req.IDToken, req.Name, req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			respondError(w, http.StatusConflict, "user_exists", "User already exists. Please sign in.")
			return
		}
		// Deliberately generic: the response does not reveal which part
		// of the credential check failed.
		respondError(w, http.StatusBadRequest, "signup_failed", "Failed to create account. Please try again.")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message": "Account created successfully. Please sign in.",
		"user_id": user.ID,
	})
}

type signInRequest struct {
	Email   string `json:"email"`
	IDToken string `json:"id_token"`
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	token, err := s.auth.SignIn(r.Context(), req.Email, req.IDToken)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "signin_failed", "Failed to log into account. Please try again.")
		return
	}

	http.SetCookie(w, s.auth.SessionCookie(token))
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "signed in",
	})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.auth.CookieName()); err == nil {
		if err := s.auth.Destroy(r.Context(), cookie.Value); err != nil {
			slog.Warn("failed to destroy session", "error", err)
		}
	}

	http.SetCookie(w, s.auth.ClearCookie())
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "signed out",
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, UserFromContext(r.Context()))
}
