package fidelity

import (
	"math"
	"regexp"
	"strings"

	"github.com/gradeassist/internal/style"
	"github.com/gradeassist/pkg/models"
)

// Sub-score weights of the personality match
const (
	WeightTone    = 0.35
	WeightLevel   = 0.25
	WeightLength  = 0.20
	WeightFraming = 0.20
)

// Breakdown explains a fidelity score
type Breakdown struct {
	Total int `json:"total"`

	Tone    float64 `json:"tone"`
	Level   float64 `json:"language_level"`
	Length  float64 `json:"sentence_length"`
	Framing float64 `json:"salutation_signoff"`

	Sentences     int                   `json:"sentences"`
	SoftenedRatio float64               `json:"softened_ratio"`
	Complexity    float64               `json:"complexity"`
	AvgWords      float64               `json:"avg_words"`
	LengthBucket  models.SentenceLength `json:"length_bucket,omitempty"`
	HasSalutation bool                  `json:"has_salutation"`
	HasSignoff    bool                  `json:"has_signoff"`
}

// Score returns the 0-100 personality match of a draft against a profile
func Score(draft models.FeedbackDraft, profile models.StyleProfile) int {
	return Analyze(draft.Text, profile).Total
}

// Analyze measures the surface style of text. It is deterministic in its inputs.
func Analyze(text string, profile models.StyleProfile) Breakdown {
	p := style.WithDefaults(profile)
	body, hasSal, hasSign := style.NewFrame(p).Strip(text)

	b := Breakdown{HasSalutation: hasSal, HasSignoff: hasSign}
	switch {
	case hasSal && hasSign:
		b.Framing = 100
	case hasSal || hasSign:
		b.Framing = 50
	}

	list := splitSentences(body)
	b.Sentences = len(list)
	if len(list) > 0 {
		var soft, imperative, clauses, words int
		for _, s := range list {
			switch style.Classify(s) {
			case style.OpenerSoftened:
				soft++
			case style.OpenerImperative:
				imperative++
			}
			clauses += 1 + len(clauseSeparator.FindAllStringIndex(s, -1))
			words += len(strings.Fields(s))
		}

		b.SoftenedRatio = 0.5
		if soft+imperative > 0 {
			b.SoftenedRatio = float64(soft) / float64(soft+imperative)
		}
		b.Tone = style.ToneBand(p.Tone).Score(b.SoftenedRatio)

		avgClauses := float64(clauses) / float64(len(list))
		b.Complexity = clamp01((avgClauses - 1) / 3)
		b.Level = style.LevelBand(p.LanguageLevel).Score(b.Complexity)

		b.AvgWords = float64(words) / float64(len(list))
		b.LengthBucket = style.LengthBucket(b.AvgWords)
		b.Length = lengthScore(b.LengthBucket, p.PreferredSentenceLength)
	}

	total := WeightTone*b.Tone + WeightLevel*b.Level + WeightLength*b.Length + WeightFraming*b.Framing
	b.Total = int(math.Max(0, math.Min(100, math.Round(total))))
	return b
}

// lengthScore rewards the preferred bucket and penalizes distance from it
func lengthScore(got, want models.SentenceLength) float64 {
	d := got.Index() - want.Index()
	if d < 0 {
		d = -d
	}
	switch d {
	case 0:
		return 100
	case 1:
		return 60
	default:
		return 20
	}
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

var (
	clauseSeparator = regexp.MustCompile(`[,;:]\s`)
	listMarker      = regexp.MustCompile(`^(\d+[.)]|[-*•])\s+`)
	sentenceEnd     = regexp.MustCompile(`[.!?]+(\s+|$)`)
)

// splitSentences splits per line, drops list markers and then splits after terminal punctuation
func splitSentences(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		line = listMarker.ReplaceAllString(strings.TrimSpace(line), "")
		if line == "" {
			continue
		}
		start := 0
		for _, loc := range sentenceEnd.FindAllStringIndex(line, -1) {
			if s := strings.TrimSpace(line[start:loc[1]]); s != "" {
				out = append(out, s)
			}
			start = loc[1]
		}
		if tail := strings.TrimSpace(line[start:]); tail != "" {
			out = append(out, tail)
		}
	}
	return out
}
