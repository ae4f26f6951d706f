package llm

import "net/http"

const (
	cerebrasAPIURL = "https://api.cerebras.ai/v1/chat/completions"
	cerebrasModel  = "llama-3.3-70b"
)

// CerebrasClient uses the OpenAI-compatible request/response format.
type CerebrasClient struct {
	chatCompleter
}

func NewCerebrasClient(apiKey, model string) *CerebrasClient {
	if model == "" {
		model = cerebrasModel
	}
	return &CerebrasClient{chatCompleter{
		name:       "cerebras",
		url:        cerebrasAPIURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{},
	}}
}
