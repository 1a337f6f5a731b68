package models

import "fmt"

// Strategy selects how model candidates are tried and which results are kept.
// Values match the Output Strategy column in the configuration table.
type Strategy string

const (
	// StrategyFirstResult short-circuits on the first successful candidate.
	StrategyFirstResult Strategy = "First Result"
	// StrategyReturnAll tries every candidate and accumulates all successes.
	StrategyReturnAll Strategy = "Return All"
)

// Candidate is one (provider, model name) pair in caller-specified priority
// order.
type Candidate struct {
	Provider string
	Model    string
}

func (c Candidate) Label() string {
	return fmt.Sprintf("%s - %s", c.Provider, c.Model)
}

// ProcessingConfig is one configuration row resolved by application section.
// Providers and Models are parallel sequences: position i pairs Providers[i]
// with Models[i].
type ProcessingConfig struct {
	Providers    []string `json:"model_providers"`
	Models       []string `json:"model_names"`
	SystemPrompt string   `json:"system_prompt"`
	UserPrompt   string   `json:"user_prompt"`
	Strategy     Strategy `json:"output_strategy"`
	IsActive     bool     `json:"is_active"`
}

// Candidates pairs providers with model names. The two sequences must have
// equal length; zero length is valid and means no candidates.
func (c ProcessingConfig) Candidates() ([]Candidate, error) {
	if len(c.Providers) != len(c.Models) {
		return nil, fmt.Errorf(
			"mismatched model configuration: %d providers, %d models",
			len(c.Providers), len(c.Models),
		)
	}
	candidates := make([]Candidate, 0, len(c.Providers))
	for i, provider := range c.Providers {
		candidates = append(candidates, Candidate{Provider: provider, Model: c.Models[i]})
	}
	return candidates, nil
}
