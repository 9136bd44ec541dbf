package llm

import "strings"

// userPrompt renders the request into the single user message sent to the
// model: optional conversation history, the retrieved context, then the
// question.
func userPrompt(req *Request) string {
	var b strings.Builder
	if req.History != "" {
		b.WriteString("Conversation so far:\n")
		b.WriteString(req.History)
		b.WriteString("\n\n")
	}
	b.WriteString("Context:\n")
	if req.Context != "" {
		b.WriteString(req.Context)
	} else {
		b.WriteString("(no relevant documents found)")
	}
	b.WriteString("\n\nQuestion: ")
	b.WriteString(req.Question)
	return b.String()
}
