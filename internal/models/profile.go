// internal/models/profile.go
package models

import "time"

// Visibility controls who may see a profile in search results.
type Visibility string

const (
	VisibilityPrivate     Visibility = "private"
	VisibilitySubscribers Visibility = "visible-to-subscribers"
)

// WorkType is the profile owner's preferred work arrangement.
type WorkType string

const (
	WorkTypeRemote WorkType = "remote"
	WorkTypeHybrid WorkType = "hybrid"
	WorkTypeOnsite WorkType = "onsite"
	WorkTypeAny    WorkType = "any"
)

// Matches reports whether a preference is compatible with a requested work type.
// "any" is compatible in both directions.
func (w WorkType) Matches(other WorkType) bool {
	if w == WorkTypeAny || other == WorkTypeAny {
		return true
	}
	return w == other
}

// Profile is a person record. Created at account creation, mutated by the
// owner or import flows, never hard-deleted by this subsystem.
type Profile struct {
	ID              string     `json:"id" db:"id"`
	FirstName       string     `json:"firstName" db:"first_name"`
	LastName        string     `json:"lastName" db:"last_name"`
	Email           string     `json:"email" db:"email"`
	Headline        string     `json:"headline" db:"headline"`
	Location        string     `json:"location" db:"location"`
	ExperienceYears int        `json:"experienceYears" db:"experience_years"`
	TalentOpt       bool       `json:"talentOpt" db:"talent_opt"`
	Visibility      Visibility `json:"visibility" db:"visibility"`
	LookingForWork  bool       `json:"lookingForWork" db:"looking_for_work"`
	WorkType        WorkType   `json:"workType" db:"work_type"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// FullName joins first and last name for display.
func (p *Profile) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
