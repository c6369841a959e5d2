// internal/models/records.go
package models

// User-owned child lists keyed by profile id. SortOrder is presentational;
// the records are otherwise independent of the matching core except as
// dedup targets in the CV import flow.

type ExperienceRecord struct {
	ID          string `json:"id" db:"id"`
	ProfileID   string `json:"profileId" db:"profile_id"`
	Company     string `json:"company" db:"company"`
	Role        string `json:"role" db:"role"`
	StartDate   string `json:"startDate" db:"start_date"`
	EndDate     string `json:"endDate,omitempty" db:"end_date"`
	Description string `json:"description,omitempty" db:"description"`
	SortOrder   int    `json:"sortOrder" db:"sort_order"`
}

type EducationRecord struct {
	ID          string `json:"id" db:"id"`
	ProfileID   string `json:"profileId" db:"profile_id"`
	Institution string `json:"institution" db:"institution"`
	Degree      string `json:"degree" db:"degree"`
	Field       string `json:"field,omitempty" db:"field"`
	StartYear   int    `json:"startYear,omitempty" db:"start_year"`
	EndYear     int    `json:"endYear,omitempty" db:"end_year"`
	SortOrder   int    `json:"sortOrder" db:"sort_order"`
}

type CertificationRecord struct {
	ID        string `json:"id" db:"id"`
	ProfileID string `json:"profileId" db:"profile_id"`
	Name      string `json:"name" db:"name"`
	Issuer    string `json:"issuer,omitempty" db:"issuer"`
	Year      int    `json:"year,omitempty" db:"year"`
	SortOrder int    `json:"sortOrder" db:"sort_order"`
}

type LanguageRecord struct {
	ID        string `json:"id" db:"id"`
	ProfileID string `json:"profileId" db:"profile_id"`
	Name      string `json:"name" db:"name"`
	Level     string `json:"level,omitempty" db:"level"`
	SortOrder int    `json:"sortOrder" db:"sort_order"`
}
