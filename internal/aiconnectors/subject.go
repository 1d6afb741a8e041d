package aiconnectors

import (
	"context"
	"errors"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"github.com/gradeassist/pkg/models"
)

var subjectPrompt = prompts.NewPromptTemplate(
	`You summarize programming assignments for a teacher's feedback letter.
Reply with a noun phrase of at most six words naming what the student had to build.
No sentence, no quotes, no trailing punctuation.

Assignment:
{{.assignment}}
{{if .notes}}
Teacher notes:
{{.notes}}
{{end}}`,
	[]string{"assignment", "notes"},
)

// ErrEmptySubject is returned when the model produced no usable phrase
var ErrEmptySubject = errors.New("llm returned an empty subject")

// SubjectSource asks a model for the assignment subject used in the feedback overview
type SubjectSource struct {
	connector *Connector
}

// NewSubjectSource wraps a connector
func NewSubjectSource(c *Connector) *SubjectSource {
	return &SubjectSource{connector: c}
}

// Subject returns a short phrase such as "a product listing with a cart"
func (s *SubjectSource) Subject(ctx context.Context, in models.Instructions) (string, error) {
	if strings.TrimSpace(in.AssignmentText) == "" && strings.TrimSpace(in.AdditionalNotes) == "" {
		return "", nil
	}
	prompt, err := subjectPrompt.Format(map[string]any{
		"assignment": strings.TrimSpace(in.AssignmentText),
		"notes":      strings.TrimSpace(in.AdditionalNotes),
	})
	if err != nil {
		return "", err
	}

	out, err := s.connector.Call(ctx, prompt)
	if err != nil {
		return "", err
	}
	subject := cleanSubject(out)
	if subject == "" {
		return "", ErrEmptySubject
	}
	return subject, nil
}

// cleanSubject keeps the first line and drops quotes and closing punctuation
func cleanSubject(raw string) string {
	line := strings.TrimSpace(raw)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	line = strings.Trim(line, "\"'`*")
	line = strings.TrimRight(line, ".!?;: ")
	return strings.TrimSpace(line)
}
