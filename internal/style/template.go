package style

import (
	"regexp"
	"strings"

	"github.com/gradeassist/pkg/models"
)

const (
	PlaceholderStudent = "{{student}}"
	PlaceholderTeacher = "{{teacher}}"
)

// studentSlot also swallows the space before the placeholder so "Hi {{student}}," renders as "Hi," without a name
var studentSlot = regexp.MustCompile(` ?\{\{student\}\}`)

// RenderSalutation fills the profile's salutation template
func RenderSalutation(p models.StyleProfile, student string) string {
	return render(p.Salutation, p.DisplayName, student)
}

// RenderSignoff fills the profile's signoff template
func RenderSignoff(p models.StyleProfile) string {
	return render(p.Signoff, p.DisplayName, "")
}

func render(tpl, teacher, student string) string {
	out := strings.ReplaceAll(strings.TrimSpace(tpl), PlaceholderTeacher, teacher)
	student = strings.TrimSpace(student)
	if student == "" {
		out = studentSlot.ReplaceAllString(out, "")
	} else {
		out = strings.ReplaceAll(out, PlaceholderStudent, student)
	}
	return strings.TrimSpace(out)
}

// templatePattern quotes the template literally; the student slot matches any name on the line, or none
func templatePattern(tpl, teacher string) string {
	withTeacher := strings.TrimSpace(strings.ReplaceAll(strings.TrimSpace(tpl), PlaceholderTeacher, teacher))
	parts := studentSlot.Split(withTeacher, -1)
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return strings.Join(parts, `(?: ?[^\n]+?)?`)
}

// Frame recognizes a profile's salutation at the start of a draft and its signoff at the end
type Frame struct {
	salutation *regexp.Regexp
	signoff    *regexp.Regexp
}

// NewFrame compiles the salutation and signoff matchers for p
func NewFrame(p models.StyleProfile) Frame {
	var f Frame
	if pat := templatePattern(p.Salutation, p.DisplayName); pat != "" {
		f.salutation = regexp.MustCompile(`\A` + pat)
	}
	if pat := templatePattern(p.Signoff, p.DisplayName); pat != "" {
		f.signoff = regexp.MustCompile(pat + `\z`)
	}
	return f
}

// Strip removes the salutation and signoff from text and reports which were present verbatim
func (f Frame) Strip(text string) (body string, hasSalutation, hasSignoff bool) {
	body = strings.TrimSpace(text)
	if f.salutation != nil {
		if loc := f.salutation.FindStringIndex(body); loc != nil {
			hasSalutation = true
			body = body[loc[1]:]
		}
	}
	if f.signoff != nil {
		if loc := f.signoff.FindStringIndex(body); loc != nil {
			hasSignoff = true
			body = body[:loc[0]]
		}
	}
	return strings.TrimSpace(body), hasSalutation, hasSignoff
}
