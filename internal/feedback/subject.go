package feedback

import (
	"context"

	"github.com/gradeassist/pkg/models"
)

// SubjectSource supplies the short phrase the overview uses to name what the assignment was about
type SubjectSource interface {
	Subject(ctx context.Context, instructions models.Instructions) (string, error)
}

// SubjectFunc adapts a function to SubjectSource
type SubjectFunc func(ctx context.Context, instructions models.Instructions) (string, error)

func (f SubjectFunc) Subject(ctx context.Context, instructions models.Instructions) (string, error) {
	return f(ctx, instructions)
}

// HeuristicSubject takes the first clause of the assignment text, falling back to the notes
type HeuristicSubject struct{}

func (HeuristicSubject) Subject(_ context.Context, instructions models.Instructions) (string, error) {
	if subject := sanitizeSubject(instructions.AssignmentText, 0); subject != "" {
		return subject, nil
	}
	return sanitizeSubject(instructions.AdditionalNotes, 0), nil
}
