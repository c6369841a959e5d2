// internal/engine/score/score_test.go
package score

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent-engine/internal/common/logger"
	"talent-engine/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestEngine(t *testing.T) *Engine {
	return NewEngine(logger.NewTestLogger(t))
}

func vec(vals ...int) *[models.AssessmentDimensions]int {
	var v [models.AssessmentDimensions]int
	copy(v[:], vals)
	return &v
}

// ==========================
// Assessment Distance
// ==========================

func TestAssessmentDistanceScore(t *testing.T) {
	tests := []struct {
		name      string
		candidate *[models.AssessmentDimensions]int
		target    *[models.AssessmentDimensions]int
		scaleMax  int
		expected  int
	}{
		{
			name:      "identical vectors score 100",
			candidate: vec(30, 0, 0, 0, 0, 0),
			target:    vec(30, 0, 0, 0, 0, 0),
			scaleMax:  30,
			expected:  100,
		},
		{
			name:      "maximally distant vectors score 0",
			candidate: vec(0, 0, 0, 0, 0, 0),
			target:    vec(30, 30, 30, 30, 30, 30),
			scaleMax:  30,
			expected:  0,
		},
		{
			name:      "half distance scores 50",
			candidate: vec(15, 15, 15, 15, 15, 15),
			target:    vec(30, 30, 30, 30, 30, 30),
			scaleMax:  30,
			expected:  50,
		},
		{
			name:      "missing candidate vector is neutral",
			candidate: nil,
			target:    vec(30, 0, 0, 0, 0, 0),
			scaleMax:  30,
			expected:  NeutralAssessmentScore,
		},
		{
			name:      "missing target vector is neutral",
			candidate: vec(30, 0, 0, 0, 0, 0),
			target:    nil,
			scaleMax:  30,
			expected:  NeutralAssessmentScore,
		},
		{
			name:      "hundred scale",
			candidate: vec(100, 100, 100, 100, 100, 100),
			target:    vec(0, 0, 0, 0, 0, 0),
			scaleMax:  100,
			expected:  0,
		},
		{
			name:      "unset scale max falls back to native scale",
			candidate: vec(30, 0, 0, 0, 0, 0),
			target:    vec(30, 0, 0, 0, 0, 0),
			scaleMax:  0,
			expected:  100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := assessmentDistanceScore(tt.candidate, tt.target, tt.scaleMax)
			assert.Equal(t, tt.expected, got)
		})
	}
}

// Scaling both vectors and the scale max by the same constant leaves the
// score unchanged.
func TestAssessmentDistanceScore_ScaleInvariance(t *testing.T) {
	base := assessmentDistanceScore(vec(10, 20, 5, 0, 30, 15), vec(30, 0, 15, 10, 30, 5), 30)

	scale := func(v *[models.AssessmentDimensions]int, k int) *[models.AssessmentDimensions]int {
		var out [models.AssessmentDimensions]int
		for i := range v {
			out[i] = v[i] * k
		}
		return &out
	}

	for _, k := range []int{2, 5, 10} {
		scaled := assessmentDistanceScore(
			scale(vec(10, 20, 5, 0, 30, 15), k),
			scale(vec(30, 0, 15, 10, 30, 5), k),
			30*k,
		)
		assert.Equal(t, base, scaled, "scaling by %d changed the score", k)
	}
}

// ==========================
// Skills Overlap
// ==========================

func TestSkillsOverlap(t *testing.T) {
	tests := []struct {
		name            string
		candidate       []string
		required        []string
		expectedScore   int
		expectedMatched []string
		expectedMissing []string
	}{
		{
			name:            "half overlap",
			candidate:       []string{"Go", "SQL"},
			required:        []string{"Go", "Rust"},
			expectedScore:   50,
			expectedMatched: []string{"Go"},
			expectedMissing: []string{"Rust"},
		},
		{
			name:            "case insensitive",
			candidate:       []string{"go", "postgresql"},
			required:        []string{"GO", "PostgreSQL"},
			expectedScore:   100,
			expectedMatched: []string{"GO", "PostgreSQL"},
			expectedMissing: []string{},
		},
		{
			name:            "empty required is vacuously satisfied",
			candidate:       []string{"Go", "SQL"},
			required:        nil,
			expectedScore:   100,
			expectedMatched: []string{"Go", "SQL"},
			expectedMissing: []string{},
		},
		{
			name:            "no overlap",
			candidate:       []string{"Painting"},
			required:        []string{"Go", "Rust", "SQL"},
			expectedScore:   0,
			expectedMatched: []string{},
			expectedMissing: []string{"Go", "Rust", "SQL"},
		},
		{
			name:            "rounding one third",
			candidate:       []string{"Go"},
			required:        []string{"Go", "Rust", "SQL"},
			expectedScore:   33,
			expectedMatched: []string{"Go"},
			expectedMissing: []string{"Rust", "SQL"},
		},
		{
			name:            "no candidate skills",
			candidate:       nil,
			required:        []string{"Go"},
			expectedScore:   0,
			expectedMatched: []string{},
			expectedMissing: []string{"Go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, matched, missing := skillsOverlap(tt.candidate, tt.required)
			assert.Equal(t, tt.expectedScore, score)
			assert.Equal(t, tt.expectedMatched, matched)
			assert.Equal(t, tt.expectedMissing, missing)
		})
	}
}

// ==========================
// Composite Score
// ==========================

func TestEngine_Score_Composite(t *testing.T) {
	tests := []struct {
		name     string
		cand     Candidate
		target   models.TargetProfile
		expected models.MatchResult
	}{
		{
			name: "perfect match with seniority bonus",
			cand: Candidate{
				ProfileID:  "p1",
				Seniority:  models.SenioritySenior,
				WorkType:   models.WorkTypeRemote,
				Assessment: vec(30, 10, 5, 0, 20, 15),
				SkillNames: []string{"Go", "SQL"},
			},
			target: models.TargetProfile{
				Assessment:     vec(30, 10, 5, 0, 20, 15),
				ScaleMax:       30,
				RequiredSkills: []string{"Go", "SQL"},
				Seniorities:    []models.Seniority{models.SenioritySenior},
				WorkTypes:      []models.WorkType{models.WorkTypeRemote},
			},
			// 100*0.30 + 100*0.50 + 20 = 100
			expected: models.MatchResult{
				ProfileID:       "p1",
				Total:           100,
				AssessmentScore: 100,
				SkillsScore:     100,
				SeniorityMatch:  true,
				WorkTypeMatch:   true,
				MatchedSkills:   []string{"Go", "SQL"},
				MissingSkills:   []string{},
			},
		},
		{
			name: "half skills, neutral assessment, no seniority bonus",
			cand: Candidate{
				ProfileID:  "p2",
				Seniority:  models.SeniorityJunior,
				WorkType:   models.WorkTypeOnsite,
				SkillNames: []string{"Go", "SQL"},
			},
			target: models.TargetProfile{
				ScaleMax:       30,
				RequiredSkills: []string{"Go", "Rust"},
				Seniorities:    []models.Seniority{models.SenioritySenior},
				WorkTypes:      []models.WorkType{models.WorkTypeRemote},
			},
			// 50*0.30 + 50*0.50 + 0 = 40
			expected: models.MatchResult{
				ProfileID:       "p2",
				Total:           40,
				AssessmentScore: NeutralAssessmentScore,
				SkillsScore:     50,
				SeniorityMatch:  false,
				WorkTypeMatch:   false,
				MatchedSkills:   []string{"Go"},
				MissingSkills:   []string{"Rust"},
			},
		},
		{
			name: "empty accepted sets grant bonus and work-type match",
			cand: Candidate{
				ProfileID:  "p3",
				Seniority:  models.SeniorityMid,
				WorkType:   models.WorkTypeHybrid,
				Assessment: vec(0, 0, 0, 0, 0, 0),
				SkillNames: nil,
			},
			target: models.TargetProfile{
				Assessment: vec(30, 30, 30, 30, 30, 30),
				ScaleMax:   30,
			},
			// 0*0.30 + 100*0.50 + 20 = 70
			expected: models.MatchResult{
				ProfileID:       "p3",
				Total:           70,
				AssessmentScore: 0,
				SkillsScore:     100,
				SeniorityMatch:  true,
				WorkTypeMatch:   true,
				MatchedSkills:   []string{},
				MissingSkills:   []string{},
			},
		},
		{
			name: "work-type any matches requested set",
			cand: Candidate{
				ProfileID:  "p4",
				WorkType:   models.WorkTypeAny,
				SkillNames: []string{"Go"},
			},
			target: models.TargetProfile{
				ScaleMax:       30,
				RequiredSkills: []string{"Go"},
				WorkTypes:      []models.WorkType{models.WorkTypeOnsite},
			},
			// 50*0.30 + 100*0.50 + 20 = 85
			expected: models.MatchResult{
				ProfileID:       "p4",
				Total:           85,
				AssessmentScore: NeutralAssessmentScore,
				SkillsScore:     100,
				SeniorityMatch:  true,
				WorkTypeMatch:   true,
				MatchedSkills:   []string{"Go"},
				MissingSkills:   []string{},
			},
		},
	}

	engine := newTestEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Score(tt.cand, tt.target)
			assert.Equal(t, tt.expected, got)
		})
	}
}

// ==========================
// Ranking
// ==========================

func TestEngine_ScoreAndRank_AvailabilityTrumpsFit(t *testing.T) {
	engine := newTestEngine(t)
	target := models.TargetProfile{
		ScaleMax:       30,
		RequiredSkills: []string{"Go"},
	}

	candidates := []Candidate{
		{ProfileID: "idle-strong", LookingForWork: false, SkillNames: []string{"Go"}},
		{ProfileID: "looking-weak", LookingForWork: true, SkillNames: nil},
		{ProfileID: "looking-strong", LookingForWork: true, SkillNames: []string{"Go"}},
	}

	ranked, err := engine.ScoreAndRank(context.Background(), candidates, target)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	// Everyone looking for work ranks ahead of the strongest idle
	// candidate, regardless of score.
	assert.Equal(t, "looking-strong", ranked[0].Candidate.ProfileID)
	assert.Equal(t, "looking-weak", ranked[1].Candidate.ProfileID)
	assert.Equal(t, "idle-strong", ranked[2].Candidate.ProfileID)

	assert.Greater(t, ranked[2].Result.Total, ranked[1].Result.Total)
}

func TestEngine_ScoreAndRank_TieBreaksOnAvailability(t *testing.T) {
	engine := newTestEngine(t)
	target := models.TargetProfile{ScaleMax: 30}

	candidates := []Candidate{
		{ProfileID: "idle", LookingForWork: false, SkillNames: []string{"Go"}},
		{ProfileID: "looking", LookingForWork: true, SkillNames: []string{"Go"}},
	}

	ranked, err := engine.ScoreAndRank(context.Background(), candidates, target)
	require.NoError(t, err)

	assert.Equal(t, ranked[0].Result.Total, ranked[1].Result.Total)
	assert.Equal(t, "looking", ranked[0].Candidate.ProfileID)
}

func TestEngine_ScoreAndRank_LargeSetStableOrder(t *testing.T) {
	engine := newTestEngine(t)
	target := models.TargetProfile{ScaleMax: 30, RequiredSkills: []string{"Go", "SQL"}}

	var candidates []Candidate
	for i := 0; i < 500; i++ {
		skills := []string{"Go"}
		if i%2 == 0 {
			skills = append(skills, "SQL")
		}
		candidates = append(candidates, Candidate{
			ProfileID:      string(rune('a'+i%26)) + "-cand",
			LookingForWork: i%3 == 0,
			SkillNames:     skills,
		})
	}

	first, err := engine.ScoreAndRank(context.Background(), candidates, target)
	require.NoError(t, err)
	second, err := engine.ScoreAndRank(context.Background(), candidates, target)
	require.NoError(t, err)

	// Ranking depends only on computed fields, never on completion order.
	assert.Equal(t, first, second)
}

func TestEngine_ScoreAndRank_CancelledContext(t *testing.T) {
	engine := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	candidates := make([]Candidate, 100)
	_, err := engine.ScoreAndRank(ctx, candidates, models.TargetProfile{ScaleMax: 30})
	assert.Error(t, err)
}
