package reflection

import (
	"strings"
	"time"

	"daybook-hq/daybook/pkg/store"
)

const systemPrompt = `You are a reflective journaling assistant. Given a user's journal entries for one week, write a weekly reflection. Respond with a single JSON object with these fields: "summary" (2-4 sentences, warm and specific), "highlights" (array of up to 3 short strings), "mood" (object with "avg_valence", a number from -1 to 1, and "top_labels", an array of up to 3 mood words).`

// buildPrompt concatenates the week's entries into a bounded prompt body.
// Entries are appended oldest first, one line each, until adding the next
// line would exceed maxBytes. Unbounded prompt input is a cost risk, so the
// cap is enforced here rather than trusted to callers.
func buildPrompt(entries []store.Entry, maxBytes int) string {
	var b strings.Builder
	for _, e := range entries {
		line := "- (" + e.CreatedAt.UTC().Format(time.RFC3339) + ") " + e.Content + "\n"
		if b.Len()+len(line) > maxBytes {
			break
		}
		b.WriteString(line)
	}
	return b.String()
}
