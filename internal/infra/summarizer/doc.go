// Package summarizer hides vendor-specific LLM request shapes behind a
// uniform provider contract. Three adapters (Anthropic, OpenAI, Google)
// implement Provider; New (factory.go) picks one from configured API keys. The
// summarization pipeline itself lives in usecase/summarize, one layer up.
package summarizer
