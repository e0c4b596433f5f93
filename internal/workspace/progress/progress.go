// Package progress derives a 0-100 completion percentage for a project.
package progress

import (
	"math"

	"github.com/studiodesk/studio-backend/internal/workspace/domain"
)

// projectWeights apply when a project has no sections.
// on-review is 50 here and 60 in sectionWeights; both values are kept as
// stored data was produced with them.
var projectWeights = map[domain.Status]int{
	domain.StatusInProgress: 25,
	domain.StatusOnReview:   50,
	domain.StatusCorrection: 40,
	domain.StatusAccepted:   100,
	domain.LegacySketch:     25,
	domain.LegacyCompleted:  100,
	domain.LegacyDelivered:  100,
}

var sectionWeights = map[domain.Status]int{
	domain.StatusInProgress: 25,
	domain.StatusOnReview:   60,
	domain.StatusCorrection: 40,
	domain.StatusAccepted:   100,
	domain.LegacySketch:     25,
	domain.LegacyChecked:    100,
	domain.LegacyCompleted:  100,
	domain.LegacyDelivered:  100,
}

// ProjectWeight returns the no-section weight for a project status, 0 when unknown.
func ProjectWeight(s domain.Status) int {
	return projectWeights[s]
}

// SectionWeight returns the weight of one section status, 0 when unknown.
// An unset status counts as in-progress.
func SectionWeight(s domain.Status) int {
	if s == "" {
		s = domain.StatusInProgress
	}
	return sectionWeights[s]
}

// Of returns the completion percentage of p.
func Of(p *domain.Project) int {
	if len(p.Sections) == 0 {
		return ProjectWeight(p.Status)
	}

	total := 0
	for _, s := range p.Sections {
		total += SectionWeight(s.Status)
	}
	return int(math.Round(float64(total) / float64(len(p.Sections))))
}

// Entry is one row of a progress report.
type Entry struct {
	ProjectID domain.ID     `json:"project_id"`
	Name      string        `json:"name"`
	Status    domain.Status `json:"status"`
	Progress  int           `json:"progress"`
}

// Report computes progress for every project, preserving order.
func Report(projects []domain.Project) []Entry {
	out := make([]Entry, 0, len(projects))
	for i := range projects {
		p := &projects[i]
		out = append(out, Entry{
			ProjectID: p.ID,
			Name:      p.Name,
			Status:    p.Status,
			Progress:  Of(p),
		})
	}
	return out
}
