// internal/models/filters.go
package models

// SearchFilterSet is the immutable filter input to a talent search. The
// zero value matches every qualified profile.
type SearchFilterSet struct {
	Query string `json:"query"`

	LookingForWorkOnly bool `json:"lookingForWorkOnly"`
	AssessedOnly       bool `json:"assessedOnly"`

	DominantCodes []string    `json:"dominantCodes"`
	SkillIDs      []string    `json:"skillIds"`
	SoftSkills    []string    `json:"softSkills"`
	Locations     []string    `json:"locations"`
	Seniorities   []Seniority `json:"seniorities"`
	WorkTypes     []WorkType  `json:"workTypes"`

	// Experience bounds in years; nil means unbounded on that side.
	MinExperience *int `json:"minExperience,omitempty"`
	MaxExperience *int `json:"maxExperience,omitempty"`
}

// HasExperienceBounds reports whether either experience bound is set.
func (f *SearchFilterSet) HasExperienceBounds() bool {
	return f.MinExperience != nil || f.MaxExperience != nil
}
