// Package llm provides chat-completion clients for the assistant. It
// supports Gemini, Anthropic and OpenAI, with retry logic and client-side
// rate limiting.
package llm
