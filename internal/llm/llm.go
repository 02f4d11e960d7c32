// Package llm wraps the model providers behind one small client interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrEmptyResponse = errors.New("llm: empty response from model")

// Request is one generation call. System carries the fixed instruction,
// Prompt the user-turn content. Temperature biases decoding; the artifact
// pipeline runs at 0 to favor schema-consistent output.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
}

// Usage is the provider-reported token accounting for one call. Providers
// that do not report usage return nil; that is not an error.
type Usage struct {
	PromptTokens int32 `json:"prompt_tokens"`
	OutputTokens int32 `json:"output_tokens"`
}

// Response is the raw model output plus optional usage metadata.
type Response struct {
	Text  string
	Usage *Usage
}

// Client is one LLM provider.
type Client interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Response, error)
	Close() error
}

// FromEnv builds the provider selected by LLM_PROVIDER (gemini, groq,
// fake). With no selection, the first provider with credentials wins and
// the fake keeps the service usable offline.
func FromEnv(ctx context.Context) (Client, error) {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	switch provider {
	case "gemini":
		return NewGeminiClient(ctx, os.Getenv("GEMINI_MODEL"))
	case "groq":
		return NewGroqClient("", os.Getenv("GROQ_MODEL"))
	case "fake":
		return NewFakeClient(), nil
	case "":
		if os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("GOOGLE_API_KEY") != "" {
			return NewGeminiClient(ctx, os.Getenv("GEMINI_MODEL"))
		}
		if os.Getenv("GROQ_API_KEY") != "" {
			return NewGroqClient("", os.Getenv("GROQ_MODEL"))
		}
		return NewFakeClient(), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", provider)
	}
}
