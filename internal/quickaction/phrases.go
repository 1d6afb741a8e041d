package quickaction

import "github.com/gradeassist/pkg/models"

type tonePhrases map[models.Tone]string

func (t tonePhrases) at(tone models.Tone) string {
	if s, ok := t[tone]; ok {
		return s
	}
	return t[models.ToneNeutral]
}

var (
	strengthIntensifiers = tonePhrases{
		models.ToneEncouraging:       "Great work on these parts of the assignment.",
		models.ToneEncouragingDirect: "Well done on these parts of the assignment.",
		models.ToneDirect:            "These parts of the assignment work well.",
		models.ToneCritical:          "These parts of the assignment meet the standard.",
		models.ToneNeutral:           "These parts of the assignment work well.",
	}

	improvementIntros = tonePhrases{
		models.ToneEncouraging:       "You might find these improvements helpful.",
		models.ToneEncouragingDirect: "Consider these improvements.",
		models.ToneDirect:            "Make these improvements.",
		models.ToneCritical:          "Make these improvements before resubmitting.",
		models.ToneNeutral:           "Suggested improvements follow.",
	}

	nextStepIntros = tonePhrases{
		models.ToneEncouraging:       "You could take these next steps.",
		models.ToneEncouragingDirect: "Take these next steps.",
		models.ToneDirect:            "Take these next steps.",
		models.ToneCritical:          "Complete these next steps before resubmitting.",
		models.ToneNeutral:           "Possible next steps follow.",
	}
)

const maxNextSteps = 3
