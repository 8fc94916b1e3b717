// Package nlp provides the conversational generation boundary.
//
// Retrieval and citation selection live outside this package: callers
// search the rule index themselves and pass only the message sequence
// here. A Client implementation turns that sequence into a reply and
// nothing else, so swapping providers never changes what gets cited.
//
// # Supported Providers
//
//   - Gemini (gemini-2.0-flash by default)
//   - OpenAI and OpenAI-compatible services via go-openai
//
// Wrap a client with NewRetryClient for bounded retry and with
// NewCircuitBreakerClient to stop hammering a failing provider.
package nlp
