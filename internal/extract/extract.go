// Package extract recovers per-element values from a generated text block
// that follows the line-oriented "id: value" convention.
//
// Extraction is first-match: when several lines start with the same id, the
// earliest one wins and every later one is ignored. Requests that reuse an id
// will therefore see the same value attached to each occurrence.
package extract

import "strings"

// Extract returns the value of the first line in text that starts with id
// followed immediately by a colon. Leading whitespace on the line is ignored.
// Everything after that first colon is returned, trimmed; later colons are part
// of the value. The boolean is false when no line matches.
func Extract(text, id string) (string, bool) {
	if id == "" {
		return "", false
	}
	prefix := id + ":"

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimLeft(line, " \t")
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		return strings.TrimSpace(line[len(prefix):]), true
	}
	return "", false
}
