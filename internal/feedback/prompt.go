package feedback

import (
	"fmt"
	"strings"

	"github.com/Anshika-404/MockMate/internal/genai"
	"github.com/Anshika-404/MockMate/internal/models"
)

const gradingInstructions = `You are an AI interviewer analyzing a mock interview. Your task is to evaluate the candidate based on structured categories. Be thorough and detailed in your analysis. Don't be lenient with the candidate. If there are mistakes or areas for improvement, point them out.`

// FormatTranscript renders the transcript as a flat "- role: utterance"
// block, preserving turn order and speaker labels verbatim.
func FormatTranscript(transcript []models.TranscriptTurn) string {
	var sb strings.Builder
	for _, turn := range transcript {
		fmt.Fprintf(&sb, "- %s: %s\n", turn.Role, turn.Content)
	}
	return sb.String()
}

// BuildPrompt assembles the grading prompt for the structured-generation
// call.
func BuildPrompt(transcript []models.TranscriptTurn) string {
	var sb strings.Builder
	sb.WriteString(gradingInstructions)
	sb.WriteString("\nTranscript:\n")
	sb.WriteString(FormatTranscript(transcript))
	return sb.String()
}

// resultSchema is the fixed target schema for feedback generation: a total
// score, the five named category scores, strengths, improvement areas, and
// a narrative assessment.
func resultSchema() *genai.Schema {
	scoreProps := make(map[string]genai.SchemaProperty, len(models.FeedbackCategories))
	for _, category := range models.FeedbackCategories {
		scoreProps[category] = genai.SchemaProperty{Type: "integer", Description: "Score from 0 to 100"}
	}

	return &genai.Schema{
		Type: "object",
		Properties: map[string]genai.SchemaProperty{
			"totalScore": {Type: "integer", Description: "Overall score from 0 to 100"},
			"categoryScores": {
				Type:       "object",
				Properties: scoreProps,
				Required:   append([]string(nil), models.FeedbackCategories...),
			},
			"strengths":           {Type: "array", Items: &genai.SchemaProperty{Type: "string"}},
			"areasForImprovement": {Type: "array", Items: &genai.SchemaProperty{Type: "string"}},
			"finalAssessment":     {Type: "string", Description: "Narrative assessment of the candidate"},
		},
		Required: []string{"totalScore", "categoryScores", "strengths", "areasForImprovement", "finalAssessment"},
	}
}

// generatedFeedback mirrors the structured-generation output schema.
type generatedFeedback struct {
	TotalScore          int            `json:"totalScore"`
	CategoryScores      map[string]int `json:"categoryScores"`
	Strengths           []string       `json:"strengths"`
	AreasForImprovement []string       `json:"areasForImprovement"`
	FinalAssessment     string         `json:"finalAssessment"`
}
