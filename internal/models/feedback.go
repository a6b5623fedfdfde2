package models

import "time"

// FeedbackCategories is the closed set of scored categories. Order matters
// for prompt rendering.
var FeedbackCategories = []string{
	"Communication Skills",
	"Technical Knowledge",
	"Problem-Solving",
	"Cultural & Role Fit",
	"Confidence & Clarity",
}

// Feedback is the structured evaluation of one interview transcript.
// At most one record is expected per (interview id, user id) pair; that
// invariant is advisory, enforced by a lookup before write.
type Feedback struct {
	ID                  string         `json:"id"`
	InterviewID         string         `json:"interview_id"`
	UserID              string         `json:"user_id"`
	TotalScore          int            `json:"total_score"`
	CategoryScores      map[string]int `json:"category_scores"`
	Strengths           []string       `json:"strengths"`
	AreasForImprovement []string       `json:"areas_for_improvement"`
	FinalAssessment     string         `json:"final_assessment"`
	CreatedAt           time.Time      `json:"created_at"`
}
