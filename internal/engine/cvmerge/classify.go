// internal/engine/cvmerge/classify.go

// Package cvmerge classifies items parsed from an uploaded CV as new or
// duplicate against a candidate's existing profile data, and commits the
// approved subset per entity kind.
package cvmerge

import (
	"talent-engine/internal/engine/normalize"
	"talent-engine/internal/models"
)

// ItemKind names one batched entity kind of a CV import.
type ItemKind string

const (
	KindExperience    ItemKind = "experience"
	KindEducation     ItemKind = "education"
	KindCertification ItemKind = "certification"
	KindLanguage      ItemKind = "language"
	KindSkill         ItemKind = "skill"
)

// AllKinds in presentation order.
var AllKinds = []ItemKind{KindExperience, KindEducation, KindCertification, KindLanguage, KindSkill}

// ParsedSkill is a skill extracted from a document. Always free text; the
// parser has no notion of the skill catalog.
type ParsedSkill struct {
	Name  string `json:"name"`
	Level int    `json:"level,omitempty"`
}

// ParsedDocument is the structured output of the external CV parser.
type ParsedDocument struct {
	Experience     []models.ExperienceRecord    `json:"experience"`
	Education      []models.EducationRecord     `json:"education"`
	Certifications []models.CertificationRecord `json:"certifications"`
	Languages      []models.LanguageRecord      `json:"languages"`
	Skills         []ParsedSkill                `json:"skills"`
}

// ExistingRecords is the candidate's current profile data the parsed batch
// is classified against. SkillNames must be the union of catalog-resolved
// and free-text skill names.
type ExistingRecords struct {
	Experience     []models.ExperienceRecord
	Education      []models.EducationRecord
	Certifications []models.CertificationRecord
	Languages      []models.LanguageRecord
	SkillNames     []string
}

// ItemFlags is the per-item classification outcome. Selected is the default
// for the caller's confirmation step; the caller may flip it per item
// before committing.
type ItemFlags struct {
	Duplicate bool `json:"duplicate"`
	Selected  bool `json:"selected"`
}

// MergePlan carries one flag slice per kind, index-parallel to the
// document's item slices.
type MergePlan struct {
	Experience     []ItemFlags `json:"experience"`
	Education      []ItemFlags `json:"education"`
	Certifications []ItemFlags `json:"certifications"`
	Languages      []ItemFlags `json:"languages"`
	Skills         []ItemFlags `json:"skills"`
}

// Classify marks every parsed item as new or duplicate against the existing
// records. Non-duplicates come back pre-selected, duplicates pre-deselected.
// Pure; no store access.
func Classify(doc *ParsedDocument, existing *ExistingRecords) *MergePlan {
	if existing == nil {
		existing = &ExistingRecords{}
	}
	plan := &MergePlan{
		Experience:     make([]ItemFlags, len(doc.Experience)),
		Education:      make([]ItemFlags, len(doc.Education)),
		Certifications: make([]ItemFlags, len(doc.Certifications)),
		Languages:      make([]ItemFlags, len(doc.Languages)),
		Skills:         make([]ItemFlags, len(doc.Skills)),
	}

	for i, item := range doc.Experience {
		plan.Experience[i] = flag(isDuplicateExperience(item, existing.Experience))
	}
	for i, item := range doc.Education {
		plan.Education[i] = flag(isDuplicateEducation(item, existing.Education))
	}
	for i, item := range doc.Certifications {
		plan.Certifications[i] = flag(isDuplicateCertification(item, existing.Certifications))
	}
	for i, item := range doc.Languages {
		plan.Languages[i] = flag(isDuplicateLanguage(item, existing.Languages))
	}

	existingSkills := normalize.FoldSet(existing.SkillNames)
	for i, item := range doc.Skills {
		_, dup := existingSkills[normalize.Fold(item.Name)]
		plan.Skills[i] = flag(dup)
	}

	return plan
}

func flag(duplicate bool) ItemFlags {
	return ItemFlags{Duplicate: duplicate, Selected: !duplicate}
}

// Duplicate identity is per kind: the fields users would recognize as "the
// same entry", folded case- and whitespace-insensitively. Empty fields
// compare as empty strings, not as wildcards.

func isDuplicateExperience(item models.ExperienceRecord, existing []models.ExperienceRecord) bool {
	for _, e := range existing {
		if normalize.EqualPair(item.Company, item.Role, e.Company, e.Role) {
			return true
		}
	}
	return false
}

func isDuplicateEducation(item models.EducationRecord, existing []models.EducationRecord) bool {
	for _, e := range existing {
		if normalize.EqualPair(item.Institution, item.Degree, e.Institution, e.Degree) {
			return true
		}
	}
	return false
}

func isDuplicateCertification(item models.CertificationRecord, existing []models.CertificationRecord) bool {
	for _, e := range existing {
		if normalize.Equal(item.Name, e.Name) {
			return true
		}
	}
	return false
}

func isDuplicateLanguage(item models.LanguageRecord, existing []models.LanguageRecord) bool {
	for _, e := range existing {
		if normalize.Equal(item.Name, e.Name) {
			return true
		}
	}
	return false
}
