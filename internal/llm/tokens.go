package llm

// EstimateTokens approximates the token count of a text using a
// characters-per-token ratio. Rough, but good enough for pre-call cost
// estimates; billing always uses the usage reported by the provider.
func EstimateTokens(text string) int {
	return charsToTokens(len(text), 4)
}

func charsToTokens(chars, charsPerToken int) int {
	if charsPerToken <= 0 {
		charsPerToken = 4
	}
	return (chars + charsPerToken - 1) / charsPerToken
}
