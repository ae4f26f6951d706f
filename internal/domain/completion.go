package domain

// Completion is the result of one call to an AI provider.
type Completion struct {
	Text  string
	Model string
	// TokensUsed is nil when the provider does not report usage.
	TokensUsed *int
}
