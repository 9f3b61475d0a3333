// Package llm provides chat clients for language model services.
// It supports a locally hosted Ollama server as well as the OpenAI and Anthropic
// APIs behind one Client interface.
package llm
