// internal/models/signals.go
package models

import (
	"errors"
	"sort"
	"time"
)

// Seniority is the level assigned by the AI interview.
type Seniority string

const (
	SeniorityJunior Seniority = "Junior"
	SeniorityMid    Seniority = "Mid"
	SenioritySenior Seniority = "Senior"
	SeniorityLead   Seniority = "Lead"
	SeniorityCLevel Seniority = "C-Level"
)

// AssessmentDimensions is the number of dimensions in an assessment vector.
const AssessmentDimensions = 6

// Letters of the six assessment dimensions, in vector order:
// Realistic, Investigative, Artistic, Social, Enterprising, Conventional.
var dimensionLetters = [AssessmentDimensions]byte{'R', 'I', 'A', 'S', 'E', 'C'}

// AssessmentScore is a completed psychometric assessment: a six-dimension
// integer vector plus the derived three-letter dominant-dimension code.
type AssessmentScore struct {
	ProfileID     string    `json:"profileId" db:"profile_id"`
	Realistic     int       `json:"realistic" db:"realistic"`
	Investigative int       `json:"investigative" db:"investigative"`
	Artistic      int       `json:"artistic" db:"artistic"`
	Social        int       `json:"social" db:"social"`
	Enterprising  int       `json:"enterprising" db:"enterprising"`
	Conventional  int       `json:"conventional" db:"conventional"`
	DominantCode  string    `json:"dominantCode" db:"dominant_code"`
	CompletedAt   time.Time `json:"completedAt" db:"completed_at"`
}

// Vector returns the six dimension scores in canonical order.
func (a *AssessmentScore) Vector() [AssessmentDimensions]int {
	return [AssessmentDimensions]int{
		a.Realistic, a.Investigative, a.Artistic,
		a.Social, a.Enterprising, a.Conventional,
	}
}

// ComputeDominantCode derives the three-letter code from the three highest
// dimensions. Ties resolve in canonical dimension order, which keeps the
// code stable across recomputation.
func (a *AssessmentScore) ComputeDominantCode() string {
	type dim struct {
		letter byte
		score  int
		order  int
	}
	dims := make([]dim, AssessmentDimensions)
	vec := a.Vector()
	for i := 0; i < AssessmentDimensions; i++ {
		dims[i] = dim{letter: dimensionLetters[i], score: vec[i], order: i}
	}
	sort.SliceStable(dims, func(i, j int) bool {
		if dims[i].score != dims[j].score {
			return dims[i].score > dims[j].score
		}
		return dims[i].order < dims[j].order
	})
	return string([]byte{dims[0].letter, dims[1].letter, dims[2].letter})
}

// InterviewSummary is the outcome of an AI interview session.
type InterviewSummary struct {
	ProfileID  string    `json:"profileId" db:"profile_id"`
	Summary    string    `json:"summary" db:"summary"`
	SoftSkills []string  `json:"softSkills" db:"soft_skills"`
	Values     []string  `json:"values" db:"values"`
	Risks      []string  `json:"risks" db:"risks"`
	Seniority  Seniority `json:"seniority" db:"seniority"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

var ErrAmbiguousSkillRef = errors.New("skill assignment must reference exactly one of catalog id or free-text name")

// SkillAssignment links a profile to a skill. Exactly one of CatalogID or
// FreeText is set, never both, never neither.
type SkillAssignment struct {
	ID        string `json:"id" db:"id"`
	ProfileID string `json:"profileId" db:"profile_id"`
	CatalogID string `json:"catalogId,omitempty" db:"catalog_id"`
	FreeText  string `json:"freeText,omitempty" db:"free_text"`
	Level     int    `json:"level" db:"level"` // proficiency 1-5
	SortOrder int    `json:"sortOrder" db:"sort_order"`
}

// Validate enforces the one-of invariant on the skill reference.
func (s *SkillAssignment) Validate() error {
	if (s.CatalogID == "") == (s.FreeText == "") {
		return ErrAmbiguousSkillRef
	}
	return nil
}

// PortfolioItem is a typed attachment reference on a profile.
type PortfolioItem struct {
	ID        string `json:"id" db:"id"`
	ProfileID string `json:"profileId" db:"profile_id"`
	Kind      string `json:"kind" db:"kind"`
	Title     string `json:"title" db:"title"`
	FileRef   string `json:"fileRef" db:"file_ref"`
	SortOrder int    `json:"sortOrder" db:"sort_order"`
}

// SignalSet is the assembled (not persisted) view of a profile's signals.
// ResolvedSkills, TopSkills and SkillsCount are computed once by the
// aggregator; consumers must not recompute them.
type SignalSet struct {
	Assessment *AssessmentScore  `json:"assessment,omitempty"`
	Interview  *InterviewSummary `json:"interview,omitempty"`
	Skills     []SkillAssignment `json:"skills"`
	Portfolio  []PortfolioItem   `json:"portfolio"`

	// Derived by the aggregator.
	ResolvedSkills []string `json:"resolvedSkills"`
	TopSkills      []string `json:"topSkills"`
	SkillsCount    int      `json:"skillsCount"`
}

// Empty reports whether the set carries no signal at all.
func (s *SignalSet) Empty() bool {
	if s == nil {
		return true
	}
	return s.Assessment == nil &&
		s.Interview == nil &&
		len(s.Skills) == 0 &&
		len(s.Portfolio) == 0
}
