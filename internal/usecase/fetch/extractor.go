package fetch

// Dispatcher turns raw HTML into ExtractedContent. A concrete dispatcher
// runs the three-stage chain: a site-specific extractor keyed by host
// suffix, then a generic reader-mode extractor, then a heuristic DOM-based
// fallback — returning the first stage whose content meets MinContentLength.
// Dispatchers must not perform network I/O; they operate on HTML already
// fetched by the caller.
type Dispatcher interface {
	Dispatch(url string, html []byte) (ExtractedContent, error)
}
