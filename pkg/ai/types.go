package ai

import "context"

// Request is a single completion exchange with the AI gateway.
type Request struct {
	// Operation labels the call for metrics and tracing (e.g. "generate").
	Operation   string
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// ChatMessage is one turn of a multi-turn chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Gateway abstracts the text-completion endpoint every AI-backed feature
// talks to. Implementations must classify failures using the sentinel
// errors in this package.
type Gateway interface {
	Complete(ctx context.Context, req Request) (string, error)
	StreamChat(ctx context.Context, system string, messages []ChatMessage, onDelta func(delta string) error) error
}
