// Package workload computes per-engineer section load and picks engineers
// for automatic assignment.
package workload

import (
	"sort"
	"time"

	"github.com/studiodesk/studio-backend/internal/workspace/domain"
)

// HoursPerActiveSection is the flat estimate added for each active section.
const HoursPerActiveSection = 8

// DefaultPosition is used for registry records without a position.
const DefaultPosition = "Инженер"

// Load is the workload of one engineer at a point in time.
type Load struct {
	Name            string `json:"name"`
	Position        string `json:"position"`
	TotalSections   int    `json:"total_sections"`
	ActiveSections  int    `json:"active_sections"`
	OverdueSections int    `json:"overdue_sections"`
	EstimatedHours  int    `json:"estimated_hours"`
	ProjectCount    int    `json:"project_count"`
}

// Report keeps one Load per registered employee in registry order.
type Report struct {
	Order  []string         `json:"order"`
	ByName map[string]*Load `json:"by_name"`

	// keys maps NameKey of a reference to the registry spelling.
	keys map[string]string
}

// Lookup finds the entry for a name reference using the registry's
// case-insensitive name rule.
func (r Report) Lookup(name string) *Load {
	if display, ok := r.keys[domain.NameKey(name)]; ok {
		return r.ByName[display]
	}
	return nil
}

// Loads returns the entries in registry order.
func (r Report) Loads() []Load {
	out := make([]Load, 0, len(r.Order))
	for _, name := range r.Order {
		out = append(out, *r.ByName[name])
	}
	return out
}

// Compute builds the workload of every employee. Employees with no sections
// still appear. Sections whose engineer is not a registered employee are
// ignored, as are closed projects. Engineer names match the registry
// case-insensitively. A section is overdue when its due date is before the
// start of today and it is not accepted.
func Compute(projects []domain.Project, employees []domain.Employee, now time.Time) Report {
	r := Report{
		Order:  make([]string, 0, len(employees)),
		ByName: make(map[string]*Load, len(employees)),
		keys:   make(map[string]string, len(employees)),
	}
	for _, e := range employees {
		key := domain.NameKey(e.Name)
		if _, dup := r.keys[key]; dup || key == "" {
			continue
		}
		r.keys[key] = e.Name
		pos := e.Position
		if pos == "" {
			pos = DefaultPosition
		}
		r.Order = append(r.Order, e.Name)
		r.ByName[e.Name] = &Load{Name: e.Name, Position: pos}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	projectsByEngineer := make(map[string]map[domain.ID]struct{})

	for _, p := range projects {
		if p.IsClosed() {
			continue
		}
		for _, s := range p.Sections {
			w := r.Lookup(s.Engineer)
			if w == nil {
				continue
			}

			w.TotalSections++
			if projectsByEngineer[w.Name] == nil {
				projectsByEngineer[w.Name] = make(map[domain.ID]struct{})
			}
			projectsByEngineer[w.Name][p.ID] = struct{}{}

			if s.Status == domain.StatusInProgress || s.Status == domain.StatusOnReview {
				w.ActiveSections++
				w.EstimatedHours += HoursPerActiveSection
			}

			if s.DueDate != "" && s.Status != domain.StatusAccepted {
				due, err := time.ParseInLocation("2006-01-02", s.DueDate, now.Location())
				if err == nil && due.Before(today) {
					w.OverdueSections++
				}
			}
		}
	}

	for name, set := range projectsByEngineer {
		r.ByName[name].ProjectCount = len(set)
	}
	return r
}

// Best returns the candidate with the fewest overdue sections, then the
// fewest active sections, skipping excluded names. Ties keep registry order.
// It returns nil when no candidate remains.
func (r Report) Best(exclude []string) *Load {
	candidates := make([]*Load, 0, len(r.Order))
	for _, name := range r.Order {
		if contains(exclude, name) {
			continue
		}
		candidates = append(candidates, r.ByName[name])
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.OverdueSections != b.OverdueSections {
			return a.OverdueSections < b.OverdueSections
		}
		return a.ActiveSections < b.ActiveSections
	})
	best := *candidates[0]
	return &best
}

// FindBestEngineer computes the workload and returns the best candidate.
func FindBestEngineer(projects []domain.Project, employees []domain.Employee, exclude []string, now time.Time) *Load {
	return Compute(projects, employees, now).Best(exclude)
}

// Assignment records one section handed to an engineer.
type Assignment struct {
	SectionID   domain.ID `json:"section_id"`
	SectionName string    `json:"section_name"`
	Engineer    string    `json:"engineer"`
}

// AssignSection gives one section of p to the current best engineer,
// overwriting any previous assignment.
func AssignSection(s *domain.State, p *domain.Project, sectionID domain.ID, now time.Time) (*Assignment, error) {
	sec := p.FindSection(sectionID)
	if sec == nil {
		return nil, domain.ErrSectionNotFound
	}
	best := FindBestEngineer(s.Projects, s.Employees, nil, now)
	if best == nil {
		return nil, domain.ErrNoEngineers
	}
	sec.Engineer = best.Name
	return &Assignment{SectionID: sec.ID, SectionName: sec.Name, Engineer: best.Name}, nil
}

// AssignProject gives every unassigned section of p to an engineer. The
// workload is recomputed after each assignment so a batch spreads across
// the team. p must point into s.Projects.
func AssignProject(s *domain.State, p *domain.Project, now time.Time) []Assignment {
	out := make([]Assignment, 0)
	for i := range p.Sections {
		sec := &p.Sections[i]
		if sec.Engineer != "" {
			continue
		}
		best := FindBestEngineer(s.Projects, s.Employees, nil, now)
		if best == nil {
			break
		}
		sec.Engineer = best.Name
		out = append(out, Assignment{SectionID: sec.ID, SectionName: sec.Name, Engineer: best.Name})
	}
	return out
}

func contains(list []string, name string) bool {
	for _, v := range list {
		if domain.SameName(v, name) {
			return true
		}
	}
	return false
}
