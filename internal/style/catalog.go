package style

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/gradeassist/pkg/models"
)

// Catalog holds the normalized teacher profiles known to this instance
type Catalog struct {
	profiles map[string]models.StyleProfile
}

// NewCatalog normalizes each configured profile. The map key becomes the teacher id when the profile has none.
func NewCatalog(configured map[string]models.StyleProfile) (*Catalog, error) {
	c := &Catalog{profiles: make(map[string]models.StyleProfile, len(configured))}
	for key, p := range configured {
		if p.TeacherID == "" {
			p.TeacherID = key
		}
		normalized, err := Normalize(p)
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", key, err)
		}
		c.profiles[normalized.TeacherID] = normalized
	}
	log.Debug().Int("profiles", len(c.profiles)).Msg("Loaded style profile catalog")
	return c, nil
}

// Get returns the profile for a teacher id
func (c *Catalog) Get(teacherID string) (models.StyleProfile, bool) {
	if c == nil {
		return models.StyleProfile{}, false
	}
	p, ok := c.profiles[teacherID]
	return p, ok
}

// List returns every profile ordered by teacher id
func (c *Catalog) List() []models.StyleProfile {
	if c == nil {
		return nil
	}
	out := make([]models.StyleProfile, 0, len(c.profiles))
	for _, p := range c.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeacherID < out[j].TeacherID })
	return out
}
