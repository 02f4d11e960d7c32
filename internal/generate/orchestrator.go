// Package generate invokes the LLM with the constrained artifact prompt and
// gates the output through the validator.
package generate

import (
	"context"
	"fmt"
	"log"
	"strings"

	"codecanvas/internal/artifact"
	"codecanvas/internal/classify"
	"codecanvas/internal/llm"
)

// GenerationError reports that the model failed to produce a valid
// artifact. The remediation is always "retry": the orchestrator performs no
// auto-repair beyond the fence/preamble tolerance the validator already has.
type GenerationError struct {
	Cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate: model did not produce a valid artifact: %v", e.Cause)
}

func (e *GenerationError) Unwrap() error { return e.Cause }

// Result is a validated artifact plus whatever usage metadata the provider
// reported. Usage may be nil; the usage-accounting collaborator tolerates
// that.
type Result struct {
	Artifact *artifact.Artifact `json:"artifact"`
	Model    string             `json:"model"`
	Usage    *llm.Usage         `json:"usage,omitempty"`
}

type Orchestrator struct {
	client llm.Client
}

func New(client llm.Client) *Orchestrator {
	return &Orchestrator{client: client}
}

// Generate runs one prompt through the model and validator. Preference
// hints ride along in the user turn; decoding runs at temperature 0.
func (o *Orchestrator) Generate(ctx context.Context, prompt string, prefs Preferences) (*Result, error) {
	if o == nil || o.client == nil {
		return nil, fmt.Errorf("generate: no LLM client configured")
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("generate: prompt is empty")
	}

	resp, err := o.client.Generate(ctx, llm.Request{
		System:      systemInstruction,
		Prompt:      userPrompt(prompt, prefs),
		Temperature: 0,
	})
	if err != nil {
		return nil, &GenerationError{Cause: err}
	}

	a, err := artifact.Parse(resp.Text)
	if err != nil {
		return nil, &GenerationError{Cause: err}
	}
	if mm := classify.Check(a); mm != nil {
		// declared type still routes; the mismatch is a defect signal
		log.Printf("generate: %v", mm)
	}
	return &Result{Artifact: a, Model: o.client.Name(), Usage: resp.Usage}, nil
}
