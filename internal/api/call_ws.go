package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Anshika-404/MockMate/internal/call"
	"github.com/Anshika-404/MockMate/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleCallWS bridges the external voice-session SDK to the call state
// machine. The client relays SDK events (call-start, call-end, transcript
// chunks, ...) over the socket; the server accumulates the transcript and,
// when the call finishes with a non-empty transcript, runs the completion
// sequence exactly once and tells the client where to navigate.
func (s *Server) handleCallWS(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "id")
	user := UserFromContext(r.Context())

	iv, err := s.interviews.GetInterview(r.Context(), interviewID)
	if err != nil {
		slog.Error("failed to get interview", "error", err, "id", interviewID)
		http.Error(w, "failed to get interview", http.StatusInternalServerError)
		return
	}
	if iv == nil {
		http.Error(w, "interview not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	sess := call.NewSession(interviewID, user.ID)
	if err := sess.Begin(); err != nil {
		slog.Error("failed to start call session", "error", err)
		s.sendCallMessage(conn, models.CallMessage{Type: "error", Error: "failed to start call"})
		return
	}

	s.registry.Add(sess)
	defer s.registry.Remove(sess.ID)

	slog.Info("call session connected",
		"session_id", sess.ID,
		"interview_id", interviewID,
		"user_id", user.ID,
	)

	s.sendCallMessage(conn, models.CallMessage{Type: "status", Status: sess.Status()})

	// The completion sequence outlives the socket: once started it is not
	// cancellable.
	finishCtx := context.Background()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read error", "error", err)
			}
			break
		}

		var ev models.CallEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			slog.Debug("invalid call event", "error", err)
			continue
		}

		prev := sess.Status()
		status, err := sess.HandleEvent(ev)
		if err != nil {
			slog.Warn("rejected call event", "error", err, "session_id", sess.ID, "type", ev.Type)
			s.sendCallMessage(conn, models.CallMessage{Type: "error", Error: err.Error()})
			continue
		}

		if status != prev {
			s.sendCallMessage(conn, models.CallMessage{Type: "status", Status: status})
		}

		if status == models.CallFinished {
			if url := s.runner.Finish(finishCtx, sess); url != "" {
				s.sendCallMessage(conn, models.CallMessage{Type: "navigate", URL: url})
			}
			break
		}
	}

	// A dropped connection counts as manual termination; the one-shot
	// guard makes this a no-op when the call already completed.
	sess.Disconnect()
	if url := s.runner.Finish(finishCtx, sess); url != "" {
		s.sendCallMessage(conn, models.CallMessage{Type: "navigate", URL: url})
	}

	slog.Info("call session disconnected", "session_id", sess.ID, "interview_id", interviewID)
}

func (s *Server) sendCallMessage(conn *websocket.Conn, msg models.CallMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal call message", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Debug("failed to send call message", "error", err)
	}
}
