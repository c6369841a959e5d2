// internal/models/match.go
package models

import "time"

// TargetProfile is the requirement a candidate is scored against.
type TargetProfile struct {
	// Assessment is the target six-dimension vector, nil when the caller
	// supplies no psychometric target.
	Assessment *[AssessmentDimensions]int `json:"assessment,omitempty"`

	// ScaleMax is the maximum value of a single assessment dimension in
	// whatever scale the vectors are expressed. The engine never assumes it.
	ScaleMax int `json:"scaleMax"`

	RequiredSkills []string    `json:"requiredSkills"`
	Seniorities    []Seniority `json:"seniorities"`
	WorkTypes      []WorkType  `json:"workTypes"`
}

// MatchResult is the scored outcome for one candidate.
type MatchResult struct {
	ProfileID string `json:"profileId"`

	Total           int `json:"total"`
	AssessmentScore int `json:"assessmentScore"`
	SkillsScore     int `json:"skillsScore"`

	SeniorityMatch bool `json:"seniorityMatch"`
	WorkTypeMatch  bool `json:"workTypeMatch"`

	MatchedSkills []string `json:"matchedSkills"`
	MissingSkills []string `json:"missingSkills"`
}

// CandidateSummary is the list-view row returned by the search pipeline.
type CandidateSummary struct {
	ProfileID       string    `json:"profileId"`
	Name            string    `json:"name"`
	Headline        string    `json:"headline"`
	Location        string    `json:"location"`
	ExperienceYears int       `json:"experienceYears"`
	LookingForWork  bool      `json:"lookingForWork"`
	WorkType        WorkType  `json:"workType"`
	Seniority       Seniority `json:"seniority,omitempty"`
	DominantCode    string    `json:"dominantCode,omitempty"`
	TopSkills       []string  `json:"topSkills"`
	SkillsCount     int       `json:"skillsCount"`
	HasAssessment   bool      `json:"hasAssessment"`
	CreatedAt       time.Time `json:"createdAt"`
}
