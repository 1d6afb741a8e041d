package style

import (
	"math"

	"github.com/gradeassist/pkg/models"
)

// Band is an inclusive range of a normalized style measure
type Band struct {
	Lo, Hi float64
}

func (b Band) center() float64    { return (b.Lo + b.Hi) / 2 }
func (b Band) halfWidth() float64 { return (b.Hi - b.Lo) / 2 }

// Contains reports whether x lies inside the band
func (b Band) Contains(x float64) bool { return x >= b.Lo && x <= b.Hi }

// Score is 100 inside the band, decaying linearly to 0 at distance 0.5 from the band center
func (b Band) Score(x float64) float64 {
	if b.Contains(x) {
		return 100
	}
	d := math.Abs(x - b.center())
	hw := b.halfWidth()
	if d >= 0.5 || hw >= 0.5 {
		return 0
	}
	return 100 * (0.5 - d) / (0.5 - hw)
}

var toneBands = map[models.Tone]Band{
	models.ToneEncouraging:       {0.65, 1},
	models.ToneEncouragingDirect: {0.3, 0.7},
	models.ToneNeutral:           {0.3, 0.7},
	models.ToneDirect:            {0, 0.35},
	models.ToneCritical:          {0, 0.15},
}

var levelBands = map[models.LanguageLevel]Band{
	models.LevelBasic:        {0, 0.17},
	models.LevelIntermediate: {0.17, 0.5},
	models.LevelAdvanced:     {0.5, 1},
}

// ToneBand is the expected softened-opener ratio for a tone
func ToneBand(t models.Tone) Band {
	if b, ok := toneBands[t]; ok {
		return b
	}
	return toneBands[models.ToneNeutral]
}

// LevelBand is the expected clause complexity for a language level
func LevelBand(l models.LanguageLevel) Band {
	if b, ok := levelBands[l]; ok {
		return b
	}
	return levelBands[models.LevelIntermediate]
}

const (
	ShortMaxWords  = 12
	MediumMaxWords = 20
)

// LengthBucket maps an average sentence word count to its bucket
func LengthBucket(avgWords float64) models.SentenceLength {
	switch {
	case avgWords <= ShortMaxWords:
		return models.LengthShort
	case avgWords <= MediumMaxWords:
		return models.LengthMedium
	default:
		return models.LengthLong
	}
}
