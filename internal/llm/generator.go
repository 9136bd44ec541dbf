// Package llm generates answers from retrieved context via a chat model.
package llm

import "context"

// SystemPrompt instructs the model to answer strictly from the supplied
// context. Kept as one block so the served behavior is easy to audit.
const SystemPrompt = `You are a helpful assistant that answers questions based on the provided context.
Use only the information in the context to answer. If the context does not
contain the answer, say that you don't know. Be concise and accurate.`

// FallbackAnswer is returned to the user when the model produces no usable text.
const FallbackAnswer = "I couldn't generate an answer."

// Request carries everything a generation call needs.
type Request struct {
	// Context is the retrieved chunk text the answer must be grounded in.
	Context string

	// History is the rendered conversation history, empty when memory is
	// disabled or the session is new.
	History string

	// Question is the user's question, verbatim.
	Question string
}

// Generator produces an answer for a request.
type Generator interface {
	Generate(ctx context.Context, req *Request) (string, error)
	Provider() string
	Close() error
}
