package feedback

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gradeassist/pkg/models"
)

// clause is one unit of a composed sentence. Every clause after the first is introduced by lead,
// a connector that never carries punctuation of its own.
type clause struct {
	lead string
	text string
}

// joinClauses builds one sentence. The language level decides the punctuation between clauses:
// basic uses connectors only, intermediate one comma, advanced a comma and then semicolons.
func joinClauses(level models.LanguageLevel, clauses []clause) string {
	var b strings.Builder
	for i, c := range clauses {
		if i == 0 {
			b.WriteString(capitalize(c.text))
			continue
		}
		sep := " "
		switch level {
		case models.LevelBasic:
		case models.LevelIntermediate:
			if i == 1 {
				sep = ", "
			}
		default:
			sep = "; "
			if i == 1 {
				sep = ", "
			}
		}
		b.WriteString(sep)
		b.WriteString(c.lead)
		b.WriteString(" ")
		b.WriteString(c.text)
	}
	b.WriteString(".")
	return b.String()
}

var clausesPerLength = map[models.SentenceLength]int{
	models.LengthShort:  1,
	models.LengthMedium: 2,
	models.LengthLong:   3,
}

var minClausesPerLevel = map[models.LanguageLevel]int{
	models.LevelBasic:        1,
	models.LevelIntermediate: 2,
	models.LevelAdvanced:     3,
}

// clauseTarget is how many clauses a sentence carries for the profile
func clauseTarget(p models.StyleProfile) int {
	n := clausesPerLength[p.PreferredSentenceLength]
	if m := minClausesPerLevel[p.LanguageLevel]; m > n {
		n = m
	}
	if n == 0 {
		n = 2
	}
	return n
}

var wordCapPerLength = map[models.SentenceLength]int{
	models.LengthShort:  8,
	models.LengthMedium: 12,
	models.LengthLong:   16,
}

var subjectCapPerLength = map[models.SentenceLength]int{
	models.LengthShort:  6,
	models.LengthMedium: 8,
	models.LengthLong:   10,
}

const minWordCap = 4

// wordCaps returns the word limits for inserted finding text and the assignment subject.
// When the language level needs more clauses than the length allows, the limits shrink
// so the sentence stays close to the preferred length.
func wordCaps(p models.StyleProfile, n int) (text, subject int) {
	text = wordCapPerLength[p.PreferredSentenceLength]
	subject = subjectCapPerLength[p.PreferredSentenceLength]
	if want := clausesPerLength[p.PreferredSentenceLength]; want > 0 && n > want {
		text = max(text*want/n, minWordCap)
		subject = max(subject*want/n, minWordCap)
	}
	return text, subject
}

// pick takes the first n candidates and pads with fillers
func pick(n int, candidates []clause, fillers []clause) []clause {
	out := make([]clause, 0, n)
	for _, c := range candidates {
		if len(out) == n {
			return out
		}
		out = append(out, c)
	}
	for _, f := range fillers {
		if len(out) == n {
			break
		}
		out = append(out, f)
	}
	return out
}

var clauseBreak = regexp.MustCompile(`[.!?,;:](\s|$)|\n`)

// firstClause reduces analyzer text to its first clause so inserted text never adds punctuation of its own
func firstClause(s string, maxWords int) string {
	s = strings.TrimSpace(s)
	if loc := clauseBreak.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	words := strings.Fields(s)
	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
	}
	words = trimStopwords(words)
	return strings.TrimRight(strings.Join(words, " "), ".!?,;:-")
}

// trimStopwords drops dangling function words left behind by truncation
func trimStopwords(words []string) []string {
	for len(words) > 1 && stopwords[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	return words
}

// inline prepares finding text for use mid-sentence
func inline(s string, maxWords int) string {
	return lowerFirst(firstClause(s, maxWords))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// lowerFirst lowercases the first letter unless the first word looks like an acronym
func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || !unicode.IsUpper(r) {
		return s
	}
	if next, _ := utf8.DecodeRuneInString(s[size:]); unicode.IsUpper(next) || unicode.IsDigit(next) {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

type levelPhrases map[models.LanguageLevel]string

func (l levelPhrases) at(level models.LanguageLevel) string {
	if s, ok := l[level]; ok {
		return s
	}
	return l[models.LevelIntermediate]
}

var (
	softIssueOpeners = map[models.Tone]levelPhrases{
		models.ToneEncouraging: {
			models.LevelBasic:        "You could look again at",
			models.LevelIntermediate: "You might want to revisit",
			models.LevelAdvanced:     "You might consider revisiting",
		},
		models.ToneEncouragingDirect: {
			models.LevelBasic:        "Perhaps look again at",
			models.LevelIntermediate: "Perhaps revisit",
			models.LevelAdvanced:     "Perhaps reconsider",
		},
	}

	imperativeIssueOpeners = map[models.Tone]levelPhrases{
		models.ToneDirect: {
			models.LevelBasic:        "Fix",
			models.LevelIntermediate: "Address",
			models.LevelAdvanced:     "Rectify",
		},
		models.ToneCritical: {
			models.LevelBasic:        "Fix",
			models.LevelIntermediate: "Fix",
			models.LevelAdvanced:     "Correct",
		},
	}

	neutralIssueOpeners = levelPhrases{
		models.LevelBasic:        "One problem is",
		models.LevelIntermediate: "One point to note is",
		models.LevelAdvanced:     "One consideration is",
	}

	fixLeads = map[models.Tone]string{
		models.ToneEncouraging: "and perhaps",
		models.ToneDirect:      "so",
		models.ToneCritical:    "and you must",
		models.ToneNeutral:     "so",
	}

	reasonLeads = levelPhrases{
		models.LevelBasic:        "as",
		models.LevelIntermediate: "since",
		models.LevelAdvanced:     "given that",
	}

	issueFillers = []clause{
		{"which", "affects overall quality"},
		{"and", "it needs attention"},
		{"so", "look at it again"},
	}
)

// issueOpener picks the opener for the idx-th issue sentence. Mixed tone alternates
// imperative and softened sentences starting with an imperative one.
func issueOpener(tone models.Tone, level models.LanguageLevel, idx int) (opener, fixLead string) {
	switch tone {
	case models.ToneEncouraging:
		return softIssueOpeners[tone].at(level), fixLeads[tone]
	case models.ToneEncouragingDirect:
		if idx%2 == 1 {
			return softIssueOpeners[tone].at(level), "and perhaps"
		}
		return imperativeIssueOpeners[models.ToneDirect].at(level), "so"
	case models.ToneDirect, models.ToneCritical:
		return imperativeIssueOpeners[tone].at(level), fixLeads[tone]
	default:
		return neutralIssueOpeners.at(level), fixLeads[models.ToneNeutral]
	}
}

var (
	positiveStrengthOpeners = levelPhrases{
		models.LevelBasic:        "I like",
		models.LevelIntermediate: "I really like",
		models.LevelAdvanced:     "I really appreciate",
	}

	strengthOpeners = map[models.Tone]levelPhrases{
		models.ToneDirect: {
			models.LevelBasic:        "Your submission shows",
			models.LevelIntermediate: "Your submission shows",
			models.LevelAdvanced:     "Your submission demonstrates",
		},
		models.ToneCritical: {
			models.LevelBasic:        "The submission does show",
			models.LevelIntermediate: "The submission does show",
			models.LevelAdvanced:     "The submission does demonstrate",
		},
		models.ToneNeutral: {
			models.LevelBasic:        "The submission shows",
			models.LevelIntermediate: "The submission shows",
			models.LevelAdvanced:     "The submission demonstrates",
		},
	}

	furtherStrengthOpeners = levelPhrases{
		models.LevelBasic:        "Another strength is",
		models.LevelIntermediate: "Another strength is",
		models.LevelAdvanced:     "A further strength is",
	}

	strengthFillers = []clause{
		{"which", "shows real skill"},
		{"and", "it is worth keeping"},
		{"so", "keep that approach"},
	}
)

// strengthOpener picks the opener for the idx-th strength sentence. Mixed tone opens
// with positive framing once and continues neutrally.
func strengthOpener(tone models.Tone, level models.LanguageLevel, idx int) string {
	switch tone {
	case models.ToneEncouraging:
		return positiveStrengthOpeners.at(level)
	case models.ToneEncouragingDirect:
		if idx == 0 {
			return positiveStrengthOpeners.at(level)
		}
		return furtherStrengthOpeners.at(level)
	}
	if phrases, ok := strengthOpeners[tone]; ok {
		return phrases.at(level)
	}
	return strengthOpeners[models.ToneNeutral].at(level)
}

var (
	overviewOpeners = map[models.Tone]levelPhrases{
		models.ToneEncouraging: {
			models.LevelBasic:        "I am pleased with your work on",
			models.LevelIntermediate: "I am pleased with your work on",
			models.LevelAdvanced:     "I am pleased with your work on",
		},
		models.ToneDirect: {
			models.LevelBasic:        "Here is my feedback on",
			models.LevelIntermediate: "Here is my feedback on",
			models.LevelAdvanced:     "Here is my assessment of",
		},
		models.ToneNeutral: {
			models.LevelBasic:        "This feedback covers",
			models.LevelIntermediate: "This feedback covers",
			models.LevelAdvanced:     "This feedback addresses",
		},
	}

	overviewFillers = []clause{
		{"and", "the details follow"},
		{"which", "the sections below explain"},
		{"so", "read on for details"},
	}
)

func overviewOpener(tone models.Tone, level models.LanguageLevel) string {
	switch tone {
	case models.ToneEncouraging, models.ToneEncouragingDirect:
		return overviewOpeners[models.ToneEncouraging].at(level)
	case models.ToneDirect, models.ToneCritical:
		return overviewOpeners[models.ToneDirect].at(level)
	}
	return overviewOpeners[models.ToneNeutral].at(level)
}

var gradeFillers = []clause{
	{"based on", "the findings above"},
	{"which", "reflects these points"},
	{"and", "it follows from them"},
}

// closingClauses returns the tone's closing sentence for the grade paragraph.
// next is the label of the grade above the recommendation, empty at the top of the scale.
func closingClauses(tone models.Tone, next string) []clause {
	switch tone {
	case models.ToneEncouraging:
		return []clause{
			{"", "I hope you are proud of this work"},
			{"and", "I look forward to more"},
			{"as", "you are making progress"},
		}
	case models.ToneEncouragingDirect:
		if next == "" {
			return []clause{
				{"", "Continue in the same way"},
				{"and", "keep building on this"},
				{"as", "you are making progress"},
			}
		}
		return []clause{
			{"", "Address the points above"},
			{"and", "you can reach " + next},
			{"as", "you are making progress"},
		}
	case models.ToneDirect:
		return []clause{
			{"", "Address the points above"},
			{"and", "check each against the assignment"},
			{"before", "your next submission"},
		}
	case models.ToneCritical:
		return []clause{
			{"", "Fix the points above"},
			{"and", "expect the same standard"},
			{"before", "your next submission"},
		}
	}
	return []clause{
		{"", "The points above summarise the next steps"},
		{"and", "the grade reflects them"},
		{"so", "use them next time"},
	}
}

// assignmentVerbs mark a subject phrase that reads as a task ("build a web shop")
var assignmentVerbs = map[string]bool{
	"build": true, "create": true, "implement": true, "write": true, "design": true,
	"develop": true, "make": true, "add": true, "use": true, "construct": true,
	"program": true, "solve": true, "extend": true, "refactor": true, "model": true,
	"deploy": true, "test": true, "produce": true, "compose": true, "analyse": true, "analyze": true,
}

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "and": true, "or": true, "to": true,
	"with": true, "for": true, "in": true, "on": true, "that": true, "which": true, "by": true,
	"into": true, "from": true, "at": true, "as": true, "is": true, "are": true, "be": true,
	"was": true, "your": true, "their": true, "its": true,
}

var subjectLeadIns = []string{"please ", "you should ", "you will ", "your task is to ", "the task is to ", "in this assignment you will ", "in this assignment "}

// sanitizeSubject turns free text into a short phrase safe to embed in the overview sentence
func sanitizeSubject(s string, maxWords int) string {
	s = firstClause(s, 0)
	lower := strings.ToLower(s)
	for _, lead := range subjectLeadIns {
		if strings.HasPrefix(lower, lead) {
			s = s[len(lead):]
			lower = lower[len(lead):]
		}
	}
	words := strings.Fields(strings.Trim(s, `"'`))
	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
	}
	if len(words) == 1 && stopwords[strings.ToLower(words[0])] {
		return ""
	}
	return lowerFirst(strings.Join(trimStopwords(words), " "))
}

// assignmentPhrase embeds a subject phrase as the object of the overview opener
func assignmentPhrase(subject string) string {
	if subject == "" {
		return "this assignment"
	}
	first := strings.ToLower(strings.Fields(subject)[0])
	if assignmentVerbs[first] {
		return "the assignment to " + subject
	}
	return "the assignment on " + subject
}
