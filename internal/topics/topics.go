// Package topics extracts topic keywords from generated fact text. The track
// uses them to seed the next batch with something more specific than the
// item's broad topic (e.g. "octopus" instead of "animals").
package topics

import (
	"strings"

	"github.com/tsawler/prose/v3"
)

// stopwords are noun-tagged tokens that carry no topical signal
var stopwords = map[string]bool{
	"thing": true, "things": true, "something": true, "someone": true,
	"time": true, "times": true, "day": true, "days": true, "year": true,
	"years": true, "way": true, "ways": true, "part": true, "parts": true,
	"group": true, "size": true, "kind": true, "lot": true,
}

// Keywords pulls topical keywords from text, named entities first, then
// plain nouns, in order of appearance. Returns nil when nothing useful is
// found (or the text fails to parse).
func Keywords(text string) []string {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil
	}

	var keywords []string
	seen := make(map[string]bool)

	add := func(word string) {
		w := strings.ToLower(strings.TrimSpace(word))
		if len(w) < 3 || stopwords[w] || seen[w] {
			return
		}
		seen[w] = true
		keywords = append(keywords, w)
	}

	for _, ent := range doc.Entities() {
		add(ent.Text)
	}
	for _, tok := range doc.Tokens() {
		if strings.HasPrefix(tok.Tag, "NN") {
			add(tok.Text)
		}
	}

	return keywords
}

// Seed picks a single seed topic from text, falling back when extraction
// comes up empty.
func Seed(text, fallback string) string {
	kws := Keywords(text)
	if len(kws) == 0 {
		return fallback
	}
	return kws[0]
}
