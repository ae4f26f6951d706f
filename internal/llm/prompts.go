package llm

const systemPrompt = `You are a helpful assistant. Provide clear, accurate, and concise answers.`

const (
	maxAnswerTokens   = 500
	answerTemperature = 0.7
)

// FallbackAnswer is stored when the provider fails or times out.
const FallbackAnswer = "I apologize, but I am currently experiencing technical difficulties. Please try again later."

// emptyAnswer is used when the provider succeeds but returns no text.
const emptyAnswer = "I apologize, but I could not generate a response at this time."
