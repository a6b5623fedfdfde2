package questions

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the single natural-language instruction sent to the
// workflow service. The closing demand for a bare JSON array is what the
// strict parser downstream relies on.
func BuildPrompt(role, level, techstack, focus string, amount int) string {
	var sb strings.Builder

	sb.WriteString("Prepare questions for a job interview.\n")
	fmt.Fprintf(&sb, "The job role is %s.\n", role)
	fmt.Fprintf(&sb, "The job experience level is %s.\n", level)
	fmt.Fprintf(&sb, "The tech stack used in the job is: %s.\n", techstack)
	fmt.Fprintf(&sb, "The focus between behavioural and technical questions should lean towards: %s.\n", focus)
	fmt.Fprintf(&sb, "The amount of questions required is: %d.\n", amount)
	sb.WriteString("Please return only the questions in JSON format:\n")
	sb.WriteString(`["Question 1", "Question 2", "Question 3"]`)

	return sb.String()
}

// SplitTechstack splits the comma-joined techstack input into trimmed
// entries, dropping empties.
func SplitTechstack(techstack string) []string {
	parts := strings.Split(techstack, ",")
	stack := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			stack = append(stack, trimmed)
		}
	}
	return stack
}
