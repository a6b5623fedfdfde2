package models

import "time"

// TranscriptTurn is one (speaker role, utterance) pair in interview order.
type TranscriptTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Interview represents one mock-interview record. Transcript stays empty
// until a voice session completes; Finalized flips to true once question
// generation or a session has produced a displayable record.
type Interview struct {
	ID         string           `json:"id"`
	UserID     string           `json:"user_id"`
	Role       string           `json:"role"`
	Level      string           `json:"level"`
	Type       string           `json:"type"`
	Techstack  []string         `json:"techstack"`
	Questions  []string         `json:"questions"`
	Transcript []TranscriptTurn `json:"transcript,omitempty"`
	Finalized  bool             `json:"finalized"`
	CoverImage string           `json:"cover_image,omitempty"`
	FeedbackID string           `json:"feedback_id,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// GenerateRequest is the body of POST /api/vapi/generate. Techstack arrives
// as a single comma-joined string and is split before persisting.
type GenerateRequest struct {
	Type      string `json:"type"`
	Role      string `json:"role"`
	Level     string `json:"level"`
	Techstack string `json:"techstack"`
	Amount    int    `json:"amount"`
	UserID    string `json:"userid"`
}

// InterviewCard is a dashboard entry: the interview plus the feedback
// summary for the viewing user, when one exists.
type InterviewCard struct {
	Interview       *Interview `json:"interview"`
	TotalScore      *int       `json:"total_score,omitempty"`
	FinalAssessment string     `json:"final_assessment,omitempty"`
}

// DashboardResponse holds both dashboard sections. Slices are always
// non-nil so empty states serialize as [] rather than null.
type DashboardResponse struct {
	YourInterviews      []InterviewCard `json:"your_interviews"`
	AvailableInterviews []InterviewCard `json:"available_interviews"`
}
