// internal/engine/qualify/qualify_test.go
package qualify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"talent-engine/internal/models"
)

func TestQualify(t *testing.T) {
	tests := []struct {
		name      string
		profile   *models.Profile
		signals   *models.SignalSet
		qualified bool
	}{
		{
			name:      "nil profile never qualifies",
			profile:   nil,
			signals:   &models.SignalSet{},
			qualified: false,
		},
		{
			name:      "opt-in flag alone qualifies",
			profile:   &models.Profile{TalentOpt: true},
			signals:   nil,
			qualified: true,
		},
		{
			name:      "no flag, no signals",
			profile:   &models.Profile{},
			signals:   &models.SignalSet{},
			qualified: false,
		},
		{
			name:      "no flag, nil signal set",
			profile:   &models.Profile{},
			signals:   nil,
			qualified: false,
		},
		{
			name:    "assessment alone qualifies",
			profile: &models.Profile{},
			signals: &models.SignalSet{
				Assessment: &models.AssessmentScore{Realistic: 12},
			},
			qualified: true,
		},
		{
			name:    "interview alone qualifies",
			profile: &models.Profile{},
			signals: &models.SignalSet{
				Interview: &models.InterviewSummary{Seniority: models.SeniorityMid},
			},
			qualified: true,
		},
		{
			// An orphaned skill assignment with talentOpt=false still
			// qualifies. Intentional: signals imply intent.
			name:    "single orphaned skill qualifies",
			profile: &models.Profile{TalentOpt: false},
			signals: &models.SignalSet{
				Skills: []models.SkillAssignment{{FreeText: "Go", Level: 3}},
			},
			qualified: true,
		},
		{
			name:    "portfolio alone qualifies",
			profile: &models.Profile{},
			signals: &models.SignalSet{
				Portfolio: []models.PortfolioItem{{Kind: "pdf", Title: "Case study"}},
			},
			qualified: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.qualified, Qualify(tt.profile, tt.signals))
		})
	}
}

// Adding any signal to an unqualified profile never un-qualifies it, and
// setting the opt-in flag qualifies regardless of signals.
func TestQualify_Monotonic(t *testing.T) {
	base := &models.Profile{TalentOpt: false}

	additions := []*models.SignalSet{
		{Assessment: &models.AssessmentScore{}},
		{Interview: &models.InterviewSummary{}},
		{Skills: []models.SkillAssignment{{CatalogID: "skill-1", Level: 1}}},
		{Portfolio: []models.PortfolioItem{{Kind: "link"}}},
	}

	assert.False(t, Qualify(base, &models.SignalSet{}))
	for _, s := range additions {
		assert.True(t, Qualify(base, s))
	}

	opted := &models.Profile{TalentOpt: true}
	assert.True(t, Qualify(opted, nil))
	assert.True(t, Qualify(opted, &models.SignalSet{}))
	for _, s := range additions {
		assert.True(t, Qualify(opted, s))
	}
}
