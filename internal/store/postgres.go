// internal/store/postgres.go

// Package store implements the data-store collaborators consumed by the
// engine packages: filtered profile fetch, batched-by-id signal fetches,
// catalog resolution and per-kind record inserts.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"talent-engine/internal/common/logger"
	"talent-engine/internal/engine/cvmerge"
	"talent-engine/internal/engine/search"
	"talent-engine/internal/models"
)

type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "store"}),
	}
}

// ==========================
// PROFILE FETCH (TIER 1)
// ==========================

const profileColumns = `id, first_name, last_name, email, headline, location,
	       experience_years, talent_opt, visibility, looking_for_work,
	       work_type, created_at, updated_at`

// FetchProfiles runs the Tier-1 predicate set. Rows come back newest first;
// derived predicates and counting happen in the pipeline, not here.
func (s *PostgresStore) FetchProfiles(ctx context.Context, q search.StoreQuery) ([]models.Profile, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.VisibleOnly {
		where = append(where, fmt.Sprintf("visibility = %s", arg(string(models.VisibilitySubscribers))))
	}
	if q.LookingForWorkOnly {
		where = append(where, "looking_for_work = TRUE")
	}
	if len(q.IDs) > 0 {
		where = append(where, fmt.Sprintf("id = ANY(%s)", arg(pq.Array(q.IDs))))
	}
	if q.Text != "" {
		p := arg("%" + q.Text + "%")
		where = append(where, fmt.Sprintf(
			"(first_name ILIKE %s OR last_name ILIKE %s OR email ILIKE %s OR headline ILIKE %s)",
			p, p, p, p))
	}
	if len(q.Locations) > 0 {
		lowered := make([]string, len(q.Locations))
		for i, l := range q.Locations {
			lowered[i] = strings.ToLower(strings.TrimSpace(l))
		}
		where = append(where, fmt.Sprintf("LOWER(location) = ANY(%s)", arg(pq.Array(lowered))))
	}
	if len(q.WorkTypes) > 0 {
		types := make([]string, len(q.WorkTypes))
		for i, w := range q.WorkTypes {
			types[i] = string(w)
		}
		// A profile declaring "any" is compatible with every requested type.
		where = append(where, fmt.Sprintf("(work_type = ANY(%s) OR work_type = 'any')", arg(pq.Array(types))))
	}
	if q.MinExperience != nil {
		where = append(where, fmt.Sprintf("experience_years >= %s", arg(*q.MinExperience)))
	}
	if q.MaxExperience != nil {
		where = append(where, fmt.Sprintf("experience_years <= %s", arg(*q.MaxExperience)))
	}

	query := "SELECT " + profileColumns + "\n\tFROM profiles"
	if len(where) > 0 {
		query += "\n\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\tORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("profile query failed: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(
			&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Headline, &p.Location,
			&p.ExperienceYears, &p.TalentOpt, &p.Visibility, &p.LookingForWork,
			&p.WorkType, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("profile scan failed: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("profile rows failed: %w", err)
	}
	return profiles, nil
}

// ==========================
// SIGNAL FETCHES (BATCHED BY ID)
// ==========================

func (s *PostgresStore) AssessmentsByProfile(ctx context.Context, profileIDs []string) (map[string]*models.AssessmentScore, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT profile_id, realistic, investigative, artistic, social,
		       enterprising, conventional, dominant_code, completed_at
		FROM assessments
		WHERE profile_id = ANY($1)`, pq.Array(profileIDs))
	if err != nil {
		return nil, fmt.Errorf("assessment query failed: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*models.AssessmentScore)
	for rows.Next() {
		var a models.AssessmentScore
		if err := rows.Scan(
			&a.ProfileID, &a.Realistic, &a.Investigative, &a.Artistic,
			&a.Social, &a.Enterprising, &a.Conventional,
			&a.DominantCode, &a.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("assessment scan failed: %w", err)
		}
		if a.DominantCode == "" {
			a.DominantCode = a.ComputeDominantCode()
		}
		out[a.ProfileID] = &a
	}
	return out, rows.Err()
}

func (s *PostgresStore) InterviewsByProfile(ctx context.Context, profileIDs []string) (map[string]*models.InterviewSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT profile_id, summary, soft_skills, values, risks, seniority, created_at
		FROM interview_summaries
		WHERE profile_id = ANY($1)`, pq.Array(profileIDs))
	if err != nil {
		return nil, fmt.Errorf("interview query failed: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*models.InterviewSummary)
	for rows.Next() {
		var i models.InterviewSummary
		if err := rows.Scan(
			&i.ProfileID, &i.Summary,
			pq.Array(&i.SoftSkills), pq.Array(&i.Values), pq.Array(&i.Risks),
			&i.Seniority, &i.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("interview scan failed: %w", err)
		}
		out[i.ProfileID] = &i
	}
	return out, rows.Err()
}

func (s *PostgresStore) SkillsByProfile(ctx context.Context, profileIDs []string) (map[string][]models.SkillAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, profile_id, COALESCE(catalog_id, ''), COALESCE(free_text, ''),
		       level, sort_order
		FROM profile_skills
		WHERE profile_id = ANY($1)
		ORDER BY profile_id, sort_order`, pq.Array(profileIDs))
	if err != nil {
		return nil, fmt.Errorf("skill query failed: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.SkillAssignment)
	for rows.Next() {
		var a models.SkillAssignment
		if err := rows.Scan(&a.ID, &a.ProfileID, &a.CatalogID, &a.FreeText, &a.Level, &a.SortOrder); err != nil {
			return nil, fmt.Errorf("skill scan failed: %w", err)
		}
		out[a.ProfileID] = append(out[a.ProfileID], a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) PortfolioByProfile(ctx context.Context, profileIDs []string) (map[string][]models.PortfolioItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, profile_id, kind, title, file_ref, sort_order
		FROM portfolio_items
		WHERE profile_id = ANY($1)
		ORDER BY profile_id, sort_order`, pq.Array(profileIDs))
	if err != nil {
		return nil, fmt.Errorf("portfolio query failed: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.PortfolioItem)
	for rows.Next() {
		var p models.PortfolioItem
		if err := rows.Scan(&p.ID, &p.ProfileID, &p.Kind, &p.Title, &p.FileRef, &p.SortOrder); err != nil {
			return nil, fmt.Errorf("portfolio scan failed: %w", err)
		}
		out[p.ProfileID] = append(out[p.ProfileID], p)
	}
	return out, rows.Err()
}

// ==========================
// SKILL CATALOG
// ==========================

// SkillNames resolves catalog ids to display names. Usually consumed
// through the redis read-through cache rather than directly.
func (s *PostgresStore) SkillNames(ctx context.Context, catalogIDs []string) (map[string]string, error) {
	if len(catalogIDs) == 0 {
		return map[string]string{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name
		FROM skill_catalog
		WHERE id = ANY($1)`, pq.Array(catalogIDs))
	if err != nil {
		return nil, fmt.Errorf("catalog query failed: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string, len(catalogIDs))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("catalog scan failed: %w", err)
		}
		out[id] = name
	}
	return out, rows.Err()
}

// ==========================
// EXISTING RECORDS (CV IMPORT)
// ==========================

// ExistingRecords loads the profile data a parsed CV batch is classified
// against. SkillNames is the union of catalog-resolved and free-text names.
func (s *PostgresStore) ExistingRecords(ctx context.Context, profileID string) (*cvmerge.ExistingRecords, error) {
	ids := []string{profileID}

	out := &cvmerge.ExistingRecords{}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, profile_id, company, role, COALESCE(start_date, ''), COALESCE(end_date, ''),
		       COALESCE(description, ''), sort_order
		FROM experience_records
		WHERE profile_id = $1
		ORDER BY sort_order`, profileID)
	if err != nil {
		return nil, fmt.Errorf("experience query failed: %w", err)
	}
	for rows.Next() {
		var r models.ExperienceRecord
		if err := rows.Scan(&r.ID, &r.ProfileID, &r.Company, &r.Role, &r.StartDate, &r.EndDate, &r.Description, &r.SortOrder); err != nil {
			rows.Close()
			return nil, fmt.Errorf("experience scan failed: %w", err)
		}
		out.Experience = append(out.Experience, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("experience rows failed: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, profile_id, institution, degree, COALESCE(field, ''),
		       COALESCE(start_year, 0), COALESCE(end_year, 0), sort_order
		FROM education_records
		WHERE profile_id = $1
		ORDER BY sort_order`, profileID)
	if err != nil {
		return nil, fmt.Errorf("education query failed: %w", err)
	}
	for rows.Next() {
		var r models.EducationRecord
		if err := rows.Scan(&r.ID, &r.ProfileID, &r.Institution, &r.Degree, &r.Field, &r.StartYear, &r.EndYear, &r.SortOrder); err != nil {
			rows.Close()
			return nil, fmt.Errorf("education scan failed: %w", err)
		}
		out.Education = append(out.Education, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("education rows failed: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, profile_id, name, COALESCE(issuer, ''), COALESCE(year, 0), sort_order
		FROM certification_records
		WHERE profile_id = $1
		ORDER BY sort_order`, profileID)
	if err != nil {
		return nil, fmt.Errorf("certification query failed: %w", err)
	}
	for rows.Next() {
		var r models.CertificationRecord
		if err := rows.Scan(&r.ID, &r.ProfileID, &r.Name, &r.Issuer, &r.Year, &r.SortOrder); err != nil {
			rows.Close()
			return nil, fmt.Errorf("certification scan failed: %w", err)
		}
		out.Certifications = append(out.Certifications, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("certification rows failed: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, profile_id, name, COALESCE(level, ''), sort_order
		FROM language_records
		WHERE profile_id = $1
		ORDER BY sort_order`, profileID)
	if err != nil {
		return nil, fmt.Errorf("language query failed: %w", err)
	}
	for rows.Next() {
		var r models.LanguageRecord
		if err := rows.Scan(&r.ID, &r.ProfileID, &r.Name, &r.Level, &r.SortOrder); err != nil {
			rows.Close()
			return nil, fmt.Errorf("language scan failed: %w", err)
		}
		out.Languages = append(out.Languages, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("language rows failed: %w", err)
	}

	skills, err := s.SkillsByProfile(ctx, ids)
	if err != nil {
		return nil, err
	}
	var catalogIDs []string
	for _, sk := range skills[profileID] {
		if sk.CatalogID != "" {
			catalogIDs = append(catalogIDs, sk.CatalogID)
		}
	}
	names, err := s.SkillNames(ctx, catalogIDs)
	if err != nil {
		return nil, err
	}
	for _, sk := range skills[profileID] {
		switch {
		case sk.FreeText != "":
			out.SkillNames = append(out.SkillNames, sk.FreeText)
		case names[sk.CatalogID] != "":
			out.SkillNames = append(out.SkillNames, names[sk.CatalogID])
		}
	}

	return out, nil
}

// ==========================
// RECORD INSERTS (CV IMPORT)
// ==========================

// Each kind's batch commits inside one transaction so a failed row leaves
// nothing of that kind behind. Cross-kind atomicity is explicitly not
// provided here; the merge committer aggregates per-kind outcomes.

func (s *PostgresStore) InsertExperience(ctx context.Context, records []models.ExperienceRecord) error {
	return s.withTx(ctx, "experience", func(tx *sql.Tx) error {
		for _, r := range records {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO experience_records (id, profile_id, company, role, start_date, end_date, description, sort_order)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				r.ID, r.ProfileID, r.Company, r.Role, r.StartDate, r.EndDate, r.Description, r.SortOrder,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PostgresStore) InsertEducation(ctx context.Context, records []models.EducationRecord) error {
	return s.withTx(ctx, "education", func(tx *sql.Tx) error {
		for _, r := range records {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO education_records (id, profile_id, institution, degree, field, start_year, end_year, sort_order)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				r.ID, r.ProfileID, r.Institution, r.Degree, r.Field, r.StartYear, r.EndYear, r.SortOrder,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PostgresStore) InsertCertifications(ctx context.Context, records []models.CertificationRecord) error {
	return s.withTx(ctx, "certification", func(tx *sql.Tx) error {
		for _, r := range records {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO certification_records (id, profile_id, name, issuer, year, sort_order)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				r.ID, r.ProfileID, r.Name, r.Issuer, r.Year, r.SortOrder,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PostgresStore) InsertLanguages(ctx context.Context, records []models.LanguageRecord) error {
	return s.withTx(ctx, "language", func(tx *sql.Tx) error {
		for _, r := range records {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO language_records (id, profile_id, name, level, sort_order)
				VALUES ($1, $2, $3, $4, $5)`,
				r.ID, r.ProfileID, r.Name, r.Level, r.SortOrder,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PostgresStore) InsertSkills(ctx context.Context, profileID string, skills []models.SkillAssignment) error {
	for _, sk := range skills {
		if err := sk.Validate(); err != nil {
			return err
		}
	}
	return s.withTx(ctx, "skill", func(tx *sql.Tx) error {
		for _, sk := range skills {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO profile_skills (id, profile_id, catalog_id, free_text, level, sort_order)
				VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6)`,
				sk.ID, profileID, sk.CatalogID, sk.FreeText, sk.Level, sk.SortOrder,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PostgresStore) withTx(ctx context.Context, kind string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s batch begin failed: %w", kind, err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed", map[string]interface{}{
				"kind":  kind,
				"error": rbErr,
			})
		}
		return fmt.Errorf("%s batch insert failed: %w", kind, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s batch commit failed: %w", kind, err)
	}
	return nil
}
