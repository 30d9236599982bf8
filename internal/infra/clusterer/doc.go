// Package clusterer groups a set of articles into labeled topic clusters
// using a single fixed-tier LLM call through summarizer.Provider. Unlike
// the summarize package, clustering always runs at the fast tier: grouping
// titles and short summaries into topics doesn't need the standard tier's
// extra capability.
package clusterer
