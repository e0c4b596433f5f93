package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/studiodesk/studio-backend/internal/workspace/domain"
)

func TestOf_NoSections(t *testing.T) {
	cases := []struct {
		status domain.Status
		want   int
	}{
		{domain.StatusInProgress, 25},
		{domain.StatusOnReview, 50},
		{domain.StatusCorrection, 40},
		{domain.StatusAccepted, 100},
		{domain.LegacySketch, 25},
		{domain.LegacyDelivered, 100},
		{"unknown", 0},
		{"", 0},
	}
	for _, tc := range cases {
		p := &domain.Project{Status: tc.status}
		assert.Equal(t, tc.want, Of(p), "status %q", tc.status)
	}
}

func TestOf_WithSections(t *testing.T) {
	t.Run("averages and rounds", func(t *testing.T) {
		p := &domain.Project{Sections: []domain.Section{
			{ID: "1", Status: domain.StatusAccepted},
			{ID: "2", Status: domain.StatusInProgress},
		}}
		assert.Equal(t, 63, Of(p))
	})

	t.Run("section on-review weighs 60", func(t *testing.T) {
		p := &domain.Project{Status: domain.StatusOnReview, Sections: []domain.Section{
			{ID: "1", Status: domain.StatusOnReview},
		}}
		assert.Equal(t, 60, Of(p))
	})

	t.Run("empty section status counts as in-progress, unknown as zero", func(t *testing.T) {
		p := &domain.Project{Sections: []domain.Section{
			{ID: "1"},
			{ID: "2", Status: "weird"},
			{ID: "3", Status: domain.LegacyChecked},
		}}
		// (25 + 0 + 100) / 3 = 41.67
		assert.Equal(t, 42, Of(p))
	})

	t.Run("project status is ignored once sections exist", func(t *testing.T) {
		p := &domain.Project{Status: domain.StatusAccepted, Sections: []domain.Section{
			{ID: "1", Status: domain.StatusCorrection},
		}}
		assert.Equal(t, 40, Of(p))
	})
}

func TestReport(t *testing.T) {
	projects := []domain.Project{
		{ID: "a", Name: "House", Status: domain.StatusAccepted},
		{ID: "b", Name: "Office", Status: domain.StatusOnReview},
	}
	r := Report(projects)
	if assert.Len(t, r, 2) {
		assert.Equal(t, domain.ID("a"), r[0].ProjectID)
		assert.Equal(t, 100, r[0].Progress)
		assert.Equal(t, 50, r[1].Progress)
	}
}
