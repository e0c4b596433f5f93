package workload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiodesk/studio-backend/internal/workspace/domain"
)

var now = time.Date(2026, time.May, 20, 15, 0, 0, 0, time.UTC)

func employees(names ...string) []domain.Employee {
	out := make([]domain.Employee, 0, len(names))
	for _, n := range names {
		out = append(out, domain.Employee{ID: domain.ID("e-" + n), Name: n})
	}
	return out
}

func TestCompute(t *testing.T) {
	projects := []domain.Project{
		{ID: "p1", Status: domain.StatusInProgress, Sections: []domain.Section{
			{ID: "s1", Engineer: "A", Status: domain.StatusInProgress, DueDate: "2026-05-19"},
			{ID: "s2", Engineer: "A", Status: domain.StatusAccepted, DueDate: "2026-05-01"},
			{ID: "s3", Engineer: "A", Status: domain.StatusOnReview, DueDate: "2026-05-20"},
			{ID: "s4", Engineer: "Ghost", Status: domain.StatusInProgress},
		}},
		{ID: "p2", Status: domain.StatusCorrection, Sections: []domain.Section{
			{ID: "s1", Engineer: "A", Status: domain.StatusCorrection, DueDate: "2026-04-01"},
		}},
		{ID: "p3", Status: domain.LegacyArchive, Sections: []domain.Section{
			{ID: "s1", Engineer: "B", Status: domain.StatusInProgress},
		}},
		{ID: "p4", Status: domain.LegacyCompleted, Sections: []domain.Section{
			{ID: "s1", Engineer: "B", Status: domain.StatusOnReview},
		}},
	}
	for i := range projects {
		projects[i].Normalize()
	}
	require.Equal(t, domain.StatusAccepted, projects[3].Status)

	r := Compute(projects, employees("A", "B"), now)
	require.Len(t, r.Order, 2)

	a := r.ByName["A"]
	assert.Equal(t, 4, a.TotalSections)
	assert.Equal(t, 2, a.ActiveSections)
	assert.Equal(t, 2, a.OverdueSections)
	assert.Equal(t, 16, a.EstimatedHours)
	assert.Equal(t, 2, a.ProjectCount)
	assert.Equal(t, DefaultPosition, a.Position)

	b := r.ByName["B"]
	assert.Equal(t, 0, b.TotalSections, "archived and completed projects are skipped")
	assert.Equal(t, 0, b.ProjectCount)
	_, ghost := r.ByName["Ghost"]
	assert.False(t, ghost)
}

func TestCompute_NameCase(t *testing.T) {
	projects := []domain.Project{
		{ID: "p1", Status: domain.StatusInProgress, Sections: []domain.Section{
			{ID: "s1", Engineer: "anna", Status: domain.StatusInProgress, DueDate: "2026-05-01"},
			{ID: "s2", Engineer: " ANNA ", Status: domain.StatusOnReview},
		}},
	}

	r := Compute(projects, employees("Anna", "Bob", "anna"), now)
	assert.Equal(t, []string{"Anna", "Bob"}, r.Order)

	anna := r.Lookup("anna")
	require.NotNil(t, anna)
	assert.Equal(t, "Anna", anna.Name)
	assert.Equal(t, 2, anna.TotalSections)
	assert.Equal(t, 2, anna.ActiveSections)
	assert.Equal(t, 1, anna.OverdueSections)
	assert.Equal(t, 1, anna.ProjectCount)

	assert.Equal(t, "Bob", r.Best(nil).Name)
	assert.Equal(t, "Anna", r.Best([]string{"bob"}).Name)
}

func TestBest(t *testing.T) {
	t.Run("fewer overdue wins regardless of active count", func(t *testing.T) {
		r := Report{
			Order: []string{"A", "B"},
			ByName: map[string]*Load{
				"A": {Name: "A", OverdueSections: 1, ActiveSections: 2},
				"B": {Name: "B", OverdueSections: 0, ActiveSections: 5},
			},
		}
		best := r.Best(nil)
		require.NotNil(t, best)
		assert.Equal(t, "B", best.Name)
	})

	t.Run("ties on overdue broken by active then registry order", func(t *testing.T) {
		r := Report{
			Order: []string{"A", "B", "C"},
			ByName: map[string]*Load{
				"A": {Name: "A", ActiveSections: 3},
				"B": {Name: "B", ActiveSections: 1},
				"C": {Name: "C", ActiveSections: 1},
			},
		}
		assert.Equal(t, "B", r.Best(nil).Name)
		assert.Equal(t, "C", r.Best([]string{"B"}).Name)
	})

	t.Run("nil without engineers", func(t *testing.T) {
		assert.Nil(t, Compute(nil, nil, now).Best(nil))
		r := Compute(nil, employees("A"), now)
		assert.Nil(t, r.Best([]string{"A"}))
	})
}

func TestAssignProject(t *testing.T) {
	s := &domain.State{
		Employees: employees("A", "B"),
		Projects: []domain.Project{
			{ID: "p1", Status: domain.StatusInProgress, Sections: []domain.Section{
				{ID: "s1", Name: "AR", Status: domain.StatusInProgress},
				{ID: "s2", Name: "KR", Status: domain.StatusInProgress},
				{ID: "s3", Name: "OV", Engineer: "B", Status: domain.StatusAccepted},
				{ID: "s4", Name: "VK", Status: domain.StatusInProgress},
			}},
		},
	}

	got := AssignProject(s, &s.Projects[0], now)
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].Engineer)
	assert.Equal(t, "B", got[1].Engineer)
	assert.Equal(t, "A", got[2].Engineer)
	assert.Equal(t, "B", s.Projects[0].Sections[2].Engineer, "assigned sections are left alone")
	for _, sec := range s.Projects[0].Sections {
		assert.NotEmpty(t, sec.Engineer)
	}
}

func TestAssignSection(t *testing.T) {
	s := &domain.State{
		Employees: employees("A"),
		Projects:  []domain.Project{{ID: "p1", Sections: []domain.Section{{ID: "s1"}}}},
	}

	a, err := AssignSection(s, &s.Projects[0], "s1", now)
	require.NoError(t, err)
	assert.Equal(t, "A", a.Engineer)

	_, err = AssignSection(s, &s.Projects[0], "missing", now)
	assert.ErrorIs(t, err, domain.ErrSectionNotFound)

	s.Employees = nil
	_, err = AssignSection(s, &s.Projects[0], "s1", now)
	assert.ErrorIs(t, err, domain.ErrNoEngineers)
}
