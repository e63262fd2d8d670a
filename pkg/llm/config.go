package llm

import "time"

const defaultStageTimeout = 120 * time.Second

// StageConfig is the explicit per-stage provider configuration injected into
// each stage executor at construction. There is no process-global credential
// state in the pipeline; an executor built with a blank APIKey for a keyed
// provider fails its credential precondition.
type StageConfig struct {
	Provider    string        `json:"provider"` // "openai", "anthropic", "googleai", "ollama", "mock"
	APIKey      string        `json:"-"`
	Model       string        `json:"model"`
	BaseURL     string        `json:"base_url,omitempty"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Timeout     time.Duration `json:"timeout"`
}

// RequiresKey reports whether the configured provider needs an API key.
// Local and test backends do not.
func (c StageConfig) RequiresKey() bool {
	switch c.Provider {
	case "ollama", "mock":
		return false
	default:
		return true
	}
}

// Configured reports whether the stage's credential precondition holds.
func (c StageConfig) Configured() bool {
	return !c.RequiresKey() || c.APIKey != ""
}

// CallTimeout returns the per-call timeout, defaulting when unset.
func (c StageConfig) CallTimeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultStageTimeout
	}

	return c.Timeout
}

// CredentialName returns the conventional environment credential name for
// the configured provider, used in credential-gap notifications.
func (c StageConfig) CredentialName() string {
	switch c.Provider {
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "googleai":
		return "GOOGLE_API_KEY"
	default:
		return "API_KEY"
	}
}
