package llm

import (
	"context"
	"fmt"

	"github.com/technofriends/youtube-insights/models"
)

// Provider identifies one supported LLM backend. The set is a closed
// enumeration: anything outside it fails with ErrUnknownProvider before any
// network call.
type Provider string

const (
	ProviderOpenAI     Provider = "OpenAI"
	ProviderAnthropic  Provider = "Anthropic"
	ProviderGroq       Provider = "Groq"
	ProviderPerplexity Provider = "Perplexity"
)

// ErrUnknownProvider marks a candidate whose provider is outside the
// supported set.
type ErrUnknownProvider struct {
	Provider string
}

func (e *ErrUnknownProvider) Error() string {
	return fmt.Sprintf("unknown provider: %s", e.Provider)
}

// transcriptSeparator joins the user prompt and the transcript inside the
// user-role message.
const transcriptSeparator = "\n\nTranscript:\n"

// ChatModel sends one system+user message pair to a single backend and
// returns the response text.
type ChatModel interface {
	Complete(ctx context.Context, model, systemMessage, userMessage string) (string, error)
}

// Credentials carries the per-provider API keys, sourced from the
// environment.
type Credentials struct {
	OpenAIKey     string
	AnthropicKey  string
	GroqKey       string
	PerplexityKey string
}

// Registry resolves provider names onto their clients and performs single
// invocations. Clients are constructed once; each invocation is otherwise
// stateless.
type Registry struct {
	clients map[Provider]ChatModel
}

func NewRegistry(creds Credentials) *Registry {
	return &Registry{
		clients: map[Provider]ChatModel{
			ProviderOpenAI:     NewOpenAICompatClient(openAIBaseURL, creds.OpenAIKey),
			ProviderGroq:       NewOpenAICompatClient(groqBaseURL, creds.GroqKey),
			ProviderPerplexity: NewOpenAICompatClient(perplexityBaseURL, creds.PerplexityKey),
			ProviderAnthropic:  NewAnthropicClient(creds.AnthropicKey),
		},
	}
}

// NewRegistryWithClients builds a registry over explicit clients, used by
// tests.
func NewRegistryWithClients(clients map[Provider]ChatModel) *Registry {
	return &Registry{clients: clients}
}

// Invoke sends the two-part message for one candidate and normalizes the
// response. Provider-side errors are returned as plain errors; they never
// panic past this boundary.
func (r *Registry) Invoke(
	ctx context.Context,
	candidate models.Candidate,
	systemPrompt, userPrompt, transcript string,
) (models.ModelResult, error) {
	client, ok := r.clients[Provider(candidate.Provider)]
	if !ok {
		return models.ModelResult{}, &ErrUnknownProvider{Provider: candidate.Provider}
	}

	userMessage := userPrompt + transcriptSeparator + transcript

	text, err := client.Complete(ctx, candidate.Model, systemPrompt, userMessage)
	if err != nil {
		return models.ModelResult{}, fmt.Errorf("%s: %w", candidate.Label(), err)
	}

	return models.ModelResult{
		Result: text,
		Model:  candidate.Label(),
	}, nil
}
