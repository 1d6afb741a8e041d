package models

// Tone describes how a teacher balances encouragement and directness
type Tone string

const (
	ToneEncouraging       Tone = "encouraging"
	ToneDirect            Tone = "direct"
	ToneEncouragingDirect Tone = "encouraging+direct"
	ToneNeutral           Tone = "neutral"
	ToneCritical          Tone = "critical"
)

// Tones lists every recognized tone
var Tones = []Tone{ToneEncouraging, ToneDirect, ToneEncouragingDirect, ToneNeutral, ToneCritical}

// Valid reports whether t is a recognized tone
func (t Tone) Valid() bool {
	for _, known := range Tones {
		if t == known {
			return true
		}
	}
	return false
}

// LanguageLevel describes the register a teacher writes in
type LanguageLevel string

const (
	LevelBasic        LanguageLevel = "basic"
	LevelIntermediate LanguageLevel = "intermediate"
	LevelAdvanced     LanguageLevel = "advanced"
)

// LanguageLevels lists every recognized language level
var LanguageLevels = []LanguageLevel{LevelBasic, LevelIntermediate, LevelAdvanced}

// Valid reports whether l is a recognized language level
func (l LanguageLevel) Valid() bool {
	for _, known := range LanguageLevels {
		if l == known {
			return true
		}
	}
	return false
}

// SentenceLength is a bucket of average sentence length
type SentenceLength string

const (
	LengthShort  SentenceLength = "short"
	LengthMedium SentenceLength = "medium"
	LengthLong   SentenceLength = "long"
)

// SentenceLengths lists the buckets from shortest to longest
var SentenceLengths = []SentenceLength{LengthShort, LengthMedium, LengthLong}

// Valid reports whether s is a recognized bucket
func (s SentenceLength) Valid() bool {
	return s.Index() >= 0
}

// Index returns the position of s in SentenceLengths, or -1
func (s SentenceLength) Index() int {
	for i, known := range SentenceLengths {
		if s == known {
			return i
		}
	}
	return -1
}

// StyleProfile represents a teacher's feedback-writing conventions.
// It is built from historical feedback elsewhere and is read-only here.
type StyleProfile struct {
	TeacherID               string         `json:"teacher_id" koanf:"teacher_id"`
	DisplayName             string         `json:"display_name" koanf:"display_name"`
	Tone                    Tone           `json:"tone" koanf:"tone"`
	LanguageLevel           LanguageLevel  `json:"language_level" koanf:"language_level"`
	FocusAreas              []string       `json:"focus_areas" koanf:"focus_areas"`
	Salutation              string         `json:"salutation" koanf:"salutation"`
	Signoff                 string         `json:"signoff" koanf:"signoff"`
	PreferredSentenceLength SentenceLength `json:"preferred_sentence_length" koanf:"sentence_length"`
}
