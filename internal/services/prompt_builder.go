package services

import (
	"fmt"
	"strings"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
)

// Prompt assembly is deliberately pure: the same agent, contest and
// guidance always produce byte-identical prompts, which is what makes
// debug-log entries reproducible.

const writerScaffolding = `You are a creative writer. Write an original literary text following the instructions below.

Respond in exactly this format:
Title: <the title of your text>
Text: <the full text>

Do not add anything before the Title line or after the text.`

const judgeScaffolding = `You are a literary judge. Read every submission carefully and rank them from best to worst.

Respond with a numbered list, one line per submission, best first, in exactly this format:
1. <submission title> - <a short justification>
2. <submission title> - <a short justification>

Every submission must appear exactly once, using its exact title.`

// BuildWriterPrompt assembles the writer prompt from the agent
// personality and the user's guidance.
func BuildWriterPrompt(personality, title, guidance string) string {
	var b strings.Builder

	b.WriteString(writerScaffolding)
	b.WriteString("\n\nYour persona:\n")
	b.WriteString(strings.TrimSpace(personality))

	if title = strings.TrimSpace(title); title != "" {
		fmt.Fprintf(&b, "\n\nThe text must be titled %q.", title)
	}
	if guidance = strings.TrimSpace(guidance); guidance != "" {
		b.WriteString("\n\nInstructions from the requester:\n")
		b.WriteString(guidance)
	}

	return b.String()
}

// BuildJudgePrompt assembles the judge prompt from the agent
// personality, the contest description and the candidate submissions.
func BuildJudgePrompt(personality string, contest *models.Contest, submissions []models.Submission) string {
	var b strings.Builder

	b.WriteString(judgeScaffolding)
	b.WriteString("\n\nYour persona:\n")
	b.WriteString(strings.TrimSpace(personality))

	fmt.Fprintf(&b, "\n\nContest: %s\n", contest.Title)
	if desc := strings.TrimSpace(contest.Description); desc != "" {
		b.WriteString(desc)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nThere are %d submissions:\n", len(submissions))
	for i, sub := range submissions {
		fmt.Fprintf(&b, "\n--- Submission %d: %s ---\n%s\n", i+1, sub.Title, sub.Content)
	}

	return b.String()
}
