package style

import (
	"strings"
	"unicode"
)

// Opener classifies how a sentence starts
type Opener int

const (
	OpenerNeutral Opener = iota
	OpenerSoftened
	OpenerImperative
)

// softenedOpeners are hedges and positive framings. They are checked before imperatives.
var softenedOpeners = []string{
	"perhaps", "maybe", "you might", "you could", "it might", "it may", "consider", "i wonder",
	"i hope", "i really", "i like", "i appreciate", "i am pleased", "i enjoyed", "i was impressed",
	"great", "nice", "well done", "good work", "excellent", "it is great",
}

// imperativeVerbs open direct instructions
var imperativeVerbs = []string{
	"fix", "add", "address", "use", "make", "handle", "split", "replace", "remove", "write",
	"review", "separate", "ensure", "refactor", "rework", "resolve", "correct", "rectify",
	"revisit", "focus", "start", "check", "move", "introduce", "improve", "continue",
	"prioritise", "prioritize", "test", "avoid", "keep", "take", "complete",
}

// Classify reports whether a sentence opens softened, imperative or neutral
func Classify(sentence string) Opener {
	s := strings.ToLower(strings.TrimLeftFunc(sentence, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}))
	if hasOpener(s, softenedOpeners) {
		return OpenerSoftened
	}
	if hasOpener(s, imperativeVerbs) {
		return OpenerImperative
	}
	return OpenerNeutral
}

func hasOpener(s string, openers []string) bool {
	for _, o := range openers {
		if !strings.HasPrefix(s, o) {
			continue
		}
		rest := s[len(o):]
		if rest == "" {
			return true
		}
		if r := []rune(rest)[0]; !unicode.IsLetter(r) && r != '\'' {
			return true
		}
	}
	return false
}
