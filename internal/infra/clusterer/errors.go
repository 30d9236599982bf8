package clusterer

import "errors"

// ErrNoProvider is returned when Cluster needs an LLM call (two or more
// articles, no usable cache entry) but no provider is configured.
var ErrNoProvider = errors.New("clusterer: no provider configured")
