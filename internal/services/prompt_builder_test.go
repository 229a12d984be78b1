package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
)

func TestBuildWriterPromptIncludesAllParts(t *testing.T) {
	prompt := BuildWriterPrompt("A melancholic poet.", "Autumn", "Keep it under 300 words.")

	assert.Contains(t, prompt, "Title:")
	assert.Contains(t, prompt, "Text:")
	assert.Contains(t, prompt, "A melancholic poet.")
	assert.Contains(t, prompt, `"Autumn"`)
	assert.Contains(t, prompt, "Keep it under 300 words.")
}

func TestBuildWriterPromptOmitsEmptyParts(t *testing.T) {
	prompt := BuildWriterPrompt("A poet.", "", "  ")

	assert.NotContains(t, prompt, "must be titled")
	assert.NotContains(t, prompt, "Instructions from the requester")
}

func TestBuildWriterPromptDeterministic(t *testing.T) {
	a := BuildWriterPrompt("p", "t", "g")
	b := BuildWriterPrompt("p", "t", "g")
	assert.Equal(t, a, b)
}

func TestBuildJudgePromptListsAllSubmissions(t *testing.T) {
	contest := &models.Contest{Title: "Spring Stories", Description: "Short fiction about renewal."}
	subs := []models.Submission{
		{ID: 1, Title: "Thaw", Content: "The river broke free."},
		{ID: 2, Title: "Seedlings", Content: "Green shoots in black soil."},
	}

	prompt := BuildJudgePrompt("A stern critic.", contest, subs)

	assert.Contains(t, prompt, "A stern critic.")
	assert.Contains(t, prompt, "Spring Stories")
	assert.Contains(t, prompt, "Short fiction about renewal.")
	assert.Contains(t, prompt, "There are 2 submissions")
	assert.Contains(t, prompt, "Submission 1: Thaw")
	assert.Contains(t, prompt, "The river broke free.")
	assert.Contains(t, prompt, "Submission 2: Seedlings")
}
