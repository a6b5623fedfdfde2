package call

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Anshika-404/MockMate/internal/models"
)

// Session is the state machine for one live interview call. Transitions
// are driven by events relayed from the external voice-session SDK; the
// transition table lives on models.CallStatus. Transcript turns accumulate
// in arrival order with no deduplication or reordering — ordering is
// whatever the external transport delivered.
type Session struct {
	ID          string
	InterviewID string
	UserID      string

	mu         sync.Mutex
	status     models.CallStatus
	transcript []models.TranscriptTurn
	speaking   bool
	completed  bool
	lastEvent  time.Time
}

// NewSession creates an inactive session for the given interview.
func NewSession(interviewID, userID string) *Session {
	return &Session{
		ID:          uuid.NewString(),
		InterviewID: interviewID,
		UserID:      userID,
		status:      models.CallInactive,
		lastEvent:   time.Now(),
	}
}

// Begin moves the session from inactive to connecting. Called when the
// gateway connection is established, before the SDK reports call-start.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transition(models.CallConnecting)
}

// HandleEvent applies one SDK event and returns the resulting status.
// Unknown event types are ignored; invalid transitions are rejected.
func (s *Session) HandleEvent(ev models.CallEvent) (models.CallStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastEvent = time.Now()

	switch ev.Type {
	case models.EventCallStart:
		if err := s.transition(models.CallActive); err != nil {
			return s.status, err
		}

	case models.EventCallEnd:
		if err := s.transition(models.CallFinished); err != nil {
			return s.status, err
		}

	case models.EventSpeechStart:
		s.speaking = true

	case models.EventSpeechEnd:
		s.speaking = false

	case models.EventTranscript:
		// Only finalized chunks become transcript turns; interim
		// recognition results are dropped.
		if ev.TranscriptType == "final" && !s.status.IsTerminal() {
			s.transcript = append(s.transcript, models.TranscriptTurn{
				Role:    ev.Role,
				Content: ev.Transcript,
			})
		}

	case models.EventError:
		slog.Warn("voice session error", "session_id", s.ID, "interview_id", s.InterviewID, "message", ev.Message)

	default:
		slog.Debug("ignoring unknown call event", "type", ev.Type, "session_id", s.ID)
	}

	return s.status, nil
}

// Disconnect forces the session to finished, the manual-termination path.
// Disconnecting an already finished session is a no-op.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.IsTerminal() {
		return
	}
	if s.status == models.CallInactive {
		// Never left the ground; mark finished directly so the janitor
		// does not keep the session around.
		s.status = models.CallFinished
		return
	}
	if err := s.transition(models.CallFinished); err != nil {
		slog.Warn("disconnect transition rejected", "session_id", s.ID, "error", err)
	}
}

// CompleteOnce reports whether the end-of-call sequence should run. It
// returns true exactly once, and only for a finished session with a
// non-empty transcript; re-entry never re-triggers.
func (s *Session) CompleteOnce() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != models.CallFinished || s.completed || len(s.transcript) == 0 {
		return false
	}
	s.completed = true
	return true
}

// Status returns the current call status.
func (s *Session) Status() models.CallStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Transcript returns a copy of the accumulated turns.
func (s *Session) Transcript() []models.TranscriptTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.TranscriptTurn, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Speaking reports whether the remote party is currently speaking.
func (s *Session) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

// LastEvent returns the time of the most recent event.
func (s *Session) LastEvent() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastEvent
}

// transition applies a status change, enforcing the transition table.
// Callers must hold s.mu.
func (s *Session) transition(next models.CallStatus) error {
	if !s.status.CanTransition(next) {
		return fmt.Errorf("invalid call transition %s -> %s", s.status, next)
	}
	s.status = next
	return nil
}
