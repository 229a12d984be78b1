package services

import (
	"regexp"
	"strings"
)

// WriterOutput is the structured result extracted from a writer model
// response. Content is always non-empty: a response the primary parser
// cannot handle degrades through fallback strategies instead of
// failing, because the provider call has already been paid for.
type WriterOutput struct {
	Title          string `json:"title"`
	Content        string `json:"content"`
	RawResponse    string `json:"raw_response"`
	ParsingSuccess bool   `json:"parsing_success"`
}

const (
	maxTitleLength      = 200
	defaultWriterTitle  = "Untitled"
	defaultWriterOutput = "The model returned an empty response."
)

type writerParseStatus int

const (
	writerParseSuccess writerParseStatus = iota
	writerParseFallback
	writerParseFailure
)

// A writerStrategy attempts one extraction approach. Strategies run in
// order; the first that does not report failure wins, and only the
// primary marker strategy reports success.
type writerStrategy func(raw, fallbackTitle string) (*WriterOutput, writerParseStatus)

var writerStrategies = []writerStrategy{
	parseWriterMarkers,
	parseWriterFirstLine,
	parseWriterFallbackTitle,
	parseWriterSynthesizedTitle,
	parseWriterDefault,
}

var (
	titleMarkerRe = regexp.MustCompile(`(?mi)^\s*title\s*:\s*(.+)$`)
	textMarkerRe  = regexp.MustCompile(`(?si)\btext\s*:\s*(.+)$`)
)

// ParseWriterResponse extracts title and content from a raw writer
// response. ParsingSuccess is true only when the explicit
// "Title:"/"Text:" markers were found and valid.
func ParseWriterResponse(raw, fallbackTitle string) *WriterOutput {
	for _, strategy := range writerStrategies {
		out, status := strategy(raw, fallbackTitle)
		if status == writerParseFailure {
			continue
		}
		out.RawResponse = raw
		out.ParsingSuccess = status == writerParseSuccess
		return out
	}

	// Unreachable: the last strategy never fails.
	return &WriterOutput{
		Title:       defaultWriterTitle,
		Content:     defaultWriterOutput,
		RawResponse: raw,
	}
}

// Primary strategy: explicit Title:/Text: markers.
func parseWriterMarkers(raw, _ string) (*WriterOutput, writerParseStatus) {
	titleMatch := titleMarkerRe.FindStringSubmatch(raw)
	textMatch := textMarkerRe.FindStringSubmatch(raw)
	if titleMatch == nil || textMatch == nil {
		return nil, writerParseFailure
	}

	title := sanitizeTitle(titleMatch[1])
	content := strings.TrimSpace(textMatch[1])
	if title == "" || len(title) > maxTitleLength || content == "" {
		return nil, writerParseFailure
	}

	return &WriterOutput{Title: title, Content: content}, writerParseSuccess
}

// Fallback 1: the first non-empty line is the title, the rest is content.
func parseWriterFirstLine(raw, _ string) (*WriterOutput, writerParseStatus) {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		title := sanitizeTitle(line)
		if title == "" {
			continue
		}
		content := strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		if len(title) > maxTitleLength || content == "" {
			return nil, writerParseFailure
		}
		return &WriterOutput{Title: title, Content: content}, writerParseFallback
	}
	return nil, writerParseFailure
}

// Fallback 2: caller-supplied title over the whole response.
func parseWriterFallbackTitle(raw, fallbackTitle string) (*WriterOutput, writerParseStatus) {
	title := sanitizeTitle(fallbackTitle)
	content := strings.TrimSpace(raw)
	if title == "" || content == "" {
		return nil, writerParseFailure
	}
	return &WriterOutput{Title: title, Content: content}, writerParseFallback
}

// Fallback 3: synthesize a title from the content itself.
func parseWriterSynthesizedTitle(raw, _ string) (*WriterOutput, writerParseStatus) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return nil, writerParseFailure
	}

	words := strings.Fields(content)
	n := len(words)
	if n > 8 {
		n = 8
	}
	title := sanitizeTitle(strings.Join(words[:n], " "))
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength]
	}
	return &WriterOutput{Title: title, Content: content}, writerParseFallback
}

// Last resort: literal defaults, never fails.
func parseWriterDefault(raw, _ string) (*WriterOutput, writerParseStatus) {
	content := strings.TrimSpace(raw)
	if content == "" {
		content = defaultWriterOutput
	}
	return &WriterOutput{Title: defaultWriterTitle, Content: content}, writerParseFallback
}

func sanitizeTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'*#`)
	return strings.TrimSpace(s)
}
