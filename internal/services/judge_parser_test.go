package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
)

func judgeSubmissions() []models.Submission {
	return []models.Submission{
		{ID: 11, ContestID: 1, Title: "The Glass Orchard", Content: "..."},
		{ID: 22, ContestID: 1, Title: "Night Ferry", Content: "..."},
		{ID: 33, ContestID: 1, Title: "Paper Crowns", Content: "..."},
	}
}

func TestParseJudgeResponseFullRanking(t *testing.T) {
	raw := `Here is my ranking:
1. Night Ferry - Striking imagery and a confident voice.
2. Paper Crowns - Charming but uneven pacing.
3. The Glass Orchard - Ambitious, though the ending falters.`

	out := ParseJudgeResponse(raw, judgeSubmissions())
	assert.True(t, out.ParsingSuccess)
	assert.Len(t, out.Votes, 3)

	assert.Equal(t, uint(22), out.Votes[0].SubmissionID)
	assert.NotNil(t, out.Votes[0].Place)
	assert.Equal(t, 1, *out.Votes[0].Place)
	assert.Equal(t, "Striking imagery and a confident voice.", out.Votes[0].Comment)

	assert.Equal(t, uint(33), out.Votes[1].SubmissionID)
	assert.Equal(t, 2, *out.Votes[1].Place)

	assert.Equal(t, uint(11), out.Votes[2].SubmissionID)
	assert.Equal(t, 3, *out.Votes[2].Place)
}

func TestParseJudgeResponsePlaceOnlyTopThree(t *testing.T) {
	subs := []models.Submission{
		{ID: 1, Title: "Alpha"},
		{ID: 2, Title: "Beta"},
		{ID: 3, Title: "Gamma"},
		{ID: 4, Title: "Delta"},
	}
	raw := "1. Alpha - a\n2. Beta - b\n3. Gamma - c\n4. Delta - d"

	out := ParseJudgeResponse(raw, subs)
	assert.True(t, out.ParsingSuccess)
	assert.Len(t, out.Votes, 4)
	assert.NotNil(t, out.Votes[2].Place)
	assert.Nil(t, out.Votes[3].Place)
}

func TestParseJudgeResponseNormalizesTitles(t *testing.T) {
	raw := `1. "NIGHT   ferry" - loved it
2. 'paper crowns' - fine
3. The Glass Orchard - okay`

	out := ParseJudgeResponse(raw, judgeSubmissions())
	assert.True(t, out.ParsingSuccess)
	assert.Equal(t, uint(22), out.Votes[0].SubmissionID)
	assert.Equal(t, uint(33), out.Votes[1].SubmissionID)
}

func TestParseJudgeResponseUnknownTitleFails(t *testing.T) {
	raw := "1. Night Ferry - good\n2. Paper Crowns - fine\n3. A Title Nobody Submitted - what"

	out := ParseJudgeResponse(raw, judgeSubmissions())
	assert.False(t, out.ParsingSuccess)
	assert.Empty(t, out.Votes)
}

func TestParseJudgeResponseMissingSubmissionFails(t *testing.T) {
	raw := "1. Night Ferry - good\n2. Paper Crowns - fine"

	out := ParseJudgeResponse(raw, judgeSubmissions())
	assert.False(t, out.ParsingSuccess)
	assert.Empty(t, out.Votes)
}

func TestParseJudgeResponseDuplicateEntryFails(t *testing.T) {
	raw := "1. Night Ferry - good\n2. Night Ferry - again\n3. Paper Crowns - fine"

	out := ParseJudgeResponse(raw, judgeSubmissions())
	assert.False(t, out.ParsingSuccess)
	assert.Empty(t, out.Votes)
}

func TestParseJudgeResponseDuplicateRankFails(t *testing.T) {
	raw := "1. Night Ferry - good\n1. Paper Crowns - also first?\n3. The Glass Orchard - ok"

	out := ParseJudgeResponse(raw, judgeSubmissions())
	assert.False(t, out.ParsingSuccess)
}

func TestParseJudgeResponseGapInRanksFails(t *testing.T) {
	raw := "1. Night Ferry - good\n2. Paper Crowns - fine\n4. The Glass Orchard - late"

	out := ParseJudgeResponse(raw, judgeSubmissions())
	assert.False(t, out.ParsingSuccess)
}

func TestParseJudgeResponseAmbiguousCandidateTitlesFail(t *testing.T) {
	subs := []models.Submission{
		{ID: 1, Title: "Echoes"},
		{ID: 2, Title: "  echoes "},
	}
	raw := "1. Echoes - which one?\n2. Echoes - indeed"

	out := ParseJudgeResponse(raw, subs)
	assert.False(t, out.ParsingSuccess)
	assert.Empty(t, out.Votes)
}

func TestParseJudgeResponseTitleContainingSeparator(t *testing.T) {
	subs := []models.Submission{
		{ID: 7, Title: "Life - A Study"},
		{ID: 8, Title: "Short"},
	}
	// The separator split chops the first title; resolution must retry
	// with the full entry text.
	raw := "1. Life - A Study\n2. Short - brief but complete"

	out := ParseJudgeResponse(raw, subs)
	assert.True(t, out.ParsingSuccess)
	assert.Equal(t, uint(7), out.Votes[0].SubmissionID)
	assert.Equal(t, uint(8), out.Votes[1].SubmissionID)
}

func TestParseJudgeResponseParenthesisNumbering(t *testing.T) {
	raw := "1) Night Ferry - a\n2) Paper Crowns - b\n3) The Glass Orchard - c"

	out := ParseJudgeResponse(raw, judgeSubmissions())
	assert.True(t, out.ParsingSuccess)
}

func TestParseJudgeResponseNoSubmissions(t *testing.T) {
	out := ParseJudgeResponse("1. Anything - x", nil)
	assert.False(t, out.ParsingSuccess)
	assert.Empty(t, out.Votes)
}
