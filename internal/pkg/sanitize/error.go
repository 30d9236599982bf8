// Package sanitize masks secrets that leak into error messages from
// upstream responses (LLM provider bodies, IMAP server errors, DB DSNs)
// before they reach logs.
package sanitize

import "regexp"

var (
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	openaiKeyPattern    = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)
	dbPasswordPattern   = regexp.MustCompile(`://([^:]+):([^@]+)@`)
	bearerTokenPattern  = regexp.MustCompile(`(?i)bearer [a-zA-Z0-9._-]+`)
)

// Error returns err's message with known secret shapes masked.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// String applies the same masking as Error directly to a string, for
// sanitizing non-error text (e.g. fetched page bodies surfaced in logs).
func String(msg string) string {
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	msg = bearerTokenPattern.ReplaceAllString(msg, "Bearer ****")
	return msg
}
