package findings

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gradeassist/pkg/models"
)

// ErrInvalidFinding is returned when a finding breaks the analyzer contract
var ErrInvalidFinding = errors.New("findings: invalid finding")

// Store holds the immutable findings of one assessment run, keyed by id and kept in analyzer order
type Store struct {
	order []string
	byID  map[string]models.Finding
}

// NewStore validates and copies the findings. Strength severities are cleared.
func NewStore(list []models.Finding) (*Store, error) {
	s := &Store{
		order: make([]string, 0, len(list)),
		byID:  make(map[string]models.Finding, len(list)),
	}

	for i, f := range list {
		f.ID = strings.TrimSpace(f.ID)
		f.Title = strings.TrimSpace(f.Title)
		if f.ID == "" {
			return nil, fmt.Errorf("%w: finding %d has no id", ErrInvalidFinding, i)
		}
		if _, dup := s.byID[f.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidFinding, f.ID)
		}
		if f.Title == "" {
			return nil, fmt.Errorf("%w: finding %q has no title", ErrInvalidFinding, f.ID)
		}

		switch f.Kind {
		case models.KindIssue:
			if !f.Severity.Valid() {
				return nil, fmt.Errorf("%w: issue %q has severity %q", ErrInvalidFinding, f.ID, f.Severity)
			}
		case models.KindStrength:
			f.Severity = models.SeverityNone
		default:
			return nil, fmt.Errorf("%w: finding %q has kind %q", ErrInvalidFinding, f.ID, f.Kind)
		}

		s.order = append(s.order, f.ID)
		s.byID[f.ID] = f
	}

	return s, nil
}

// MustStore is NewStore for fixtures; it panics on invalid input
func MustStore(list []models.Finding) *Store {
	s, err := NewStore(list)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of findings
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Get returns the finding with the given id
func (s *Store) Get(id string) (models.Finding, bool) {
	if s == nil {
		return models.Finding{}, false
	}
	f, ok := s.byID[id]
	return f, ok
}

// IDs returns all finding ids in insertion order
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// All returns a copy of every finding in insertion order
func (s *Store) All() []models.Finding {
	return s.filter(func(models.Finding) bool { return true })
}

// Issues returns the issues in insertion order
func (s *Store) Issues() []models.Finding {
	return s.filter(models.Finding.IsIssue)
}

// Strengths returns the strengths in insertion order
func (s *Store) Strengths() []models.Finding {
	return s.filter(models.Finding.IsStrength)
}

// IssuesBySeverity returns the issues ordered high to low, ties kept in insertion order
func (s *Store) IssuesBySeverity() []models.Finding {
	issues := s.Issues()
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Severity.Weight() > issues[j].Severity.Weight()
	})
	return issues
}

// CountBySeverity returns the number of issues at the given severity
func (s *Store) CountBySeverity(sev models.Severity) int {
	n := 0
	for _, f := range s.Issues() {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

func (s *Store) filter(keep func(models.Finding) bool) []models.Finding {
	if s == nil {
		return nil
	}
	out := make([]models.Finding, 0, len(s.order))
	for _, id := range s.order {
		if f := s.byID[id]; keep(f) {
			out = append(out, f)
		}
	}
	return out
}
