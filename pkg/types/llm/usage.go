package llm

// Usage accumulates token counts reported by the backend.
type Usage struct {
	InputTokens     int // prompt tokens of chat completions
	OutputTokens    int // completion tokens of chat completions
	EmbeddingTokens int // tokens sent to the embedding model
	Requests        int // number of successful backend calls
}

// TotalTokens returns the sum of all token counters.
func (u *Usage) TotalTokens() int {
	return u.InputTokens + u.OutputTokens + u.EmbeddingTokens
}

// Add folds another usage record into u.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.EmbeddingTokens += other.EmbeddingTokens
	u.Requests += other.Requests
}
