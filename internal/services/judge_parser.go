package services

import (
	"regexp"
	"strings"

	"github.com/altovacio/duelo-de-plumas-sub002/internal/models"
)

// JudgeVote is one judge decision about one submission. Place is 1-3
// for podium positions and nil otherwise.
type JudgeVote struct {
	SubmissionID uint   `json:"submission_id"`
	Place        *int   `json:"place,omitempty"`
	Comment      string `json:"comment"`
}

// JudgeOutput is the structured result extracted from a judge model
// response. On any parse or mapping failure Votes is empty and
// ParsingSuccess is false: a partial ranking would corrupt downstream
// tallying, so the only safe degraded result is no result.
type JudgeOutput struct {
	Votes          []JudgeVote `json:"votes"`
	RawResponse    string      `json:"raw_response"`
	ParsingSuccess bool        `json:"parsing_success"`
}

var rankingLineRe = regexp.MustCompile(`^\s*(\d+)[.)]\s*(.+)$`)

// ParseJudgeResponse parses a numbered ranking list and maps each entry
// back to a candidate submission. Titles are matched case-insensitively
// after normalization; a title that matches no submission, a submission
// never mentioned, or any duplicate is a hard failure.
func ParseJudgeResponse(raw string, submissions []models.Submission) *JudgeOutput {
	failed := &JudgeOutput{Votes: []JudgeVote{}, RawResponse: raw}

	byTitle := make(map[string]uint, len(submissions))
	for _, sub := range submissions {
		key := normalizeTitle(sub.Title)
		if key == "" {
			return failed
		}
		if _, dup := byTitle[key]; dup {
			// Two submissions share a normalized title; any mapping
			// would be a guess.
			return failed
		}
		byTitle[key] = sub.ID
	}

	type rankedVote struct {
		rank int
		vote JudgeVote
	}

	var ranked []rankedVote
	seenSubmissions := make(map[uint]bool, len(submissions))
	seenRanks := make(map[int]bool)

	for _, line := range strings.Split(raw, "\n") {
		m := rankingLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		rank := parseRank(m[1])
		if rank == 0 || seenRanks[rank] {
			return failed
		}

		title, comment := splitRankingEntry(m[2])
		subID, ok := resolveTitle(byTitle, title, m[2])
		if !ok {
			return failed
		}
		if seenSubmissions[subID] {
			return failed
		}
		seenRanks[rank] = true
		seenSubmissions[subID] = true

		vote := JudgeVote{SubmissionID: subID, Comment: comment}
		if rank <= 3 {
			place := rank
			vote.Place = &place
		}
		ranked = append(ranked, rankedVote{rank: rank, vote: vote})
	}

	// Every candidate must resolve to exactly one entry.
	if len(ranked) != len(submissions) || len(submissions) == 0 {
		return failed
	}

	// Ranks must be exactly 1..N so the minimum-placement rule holds.
	for rank := 1; rank <= len(ranked); rank++ {
		if !seenRanks[rank] {
			return failed
		}
	}

	votes := make([]JudgeVote, len(ranked))
	for _, rv := range ranked {
		votes[rv.rank-1] = rv.vote
	}

	return &JudgeOutput{Votes: votes, RawResponse: raw, ParsingSuccess: true}
}

func parseRank(s string) int {
	rank := 0
	for _, r := range s {
		rank = rank*10 + int(r-'0')
		if rank > 1000 {
			return 0
		}
	}
	return rank
}

// splitRankingEntry separates "<title> - <comment>" into its parts.
func splitRankingEntry(entry string) (title, comment string) {
	for _, sep := range []string{" - ", " — ", " – ", ": "} {
		if idx := strings.Index(entry, sep); idx > 0 {
			return strings.TrimSpace(entry[:idx]), strings.TrimSpace(entry[idx+len(sep):])
		}
	}
	return strings.TrimSpace(entry), ""
}

// resolveTitle maps a parsed title to a submission id. If the separator
// split produced no match, the full entry text is tried as well, since
// titles themselves may contain a separator.
func resolveTitle(byTitle map[string]uint, title, fullEntry string) (uint, bool) {
	if id, ok := byTitle[normalizeTitle(title)]; ok {
		return id, true
	}
	if id, ok := byTitle[normalizeTitle(fullEntry)]; ok {
		return id, true
	}
	return 0, false
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func normalizeTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'“”‘’*`)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}
