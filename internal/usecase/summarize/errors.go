package summarize

import "errors"

// ErrNoProvider is returned when Summarize is called on a Service with no
// configured LLM provider.
var ErrNoProvider = errors.New("summarize: no provider configured")
