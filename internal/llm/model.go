// Package llm is the boundary to the language model that writes study plans
// and answers questions.
package llm

//go:generate go tool mockgen -source=model.go -destination=llmmock/mock_model.go -package=llmmock
//go:generate go tool mockgen -source=copilot_client_wrappers.go -destination=mock_copilot_client_wrappers_test.go -package=llm

import "context"

// OutputSpec asks the model for a structured answer matching Schema.
type OutputSpec struct {
	Name        string
	Description string
	Schema      map[string]any
}

type Request struct {
	System string
	Prompt string
	Output *OutputSpec
}

// Reply carries whatever the model produced. Structured is set when the model
// answered through the output spec; Text is the plain assistant message.
type Reply struct {
	Text       string
	Structured any
}

type Model interface {
	Generate(ctx context.Context, req Request) (*Reply, error)
}
