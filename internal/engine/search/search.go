// internal/engine/search/search.go

// Package search orchestrates the talent search: store-level predicates,
// qualification, derived-predicate filtering, counting and pagination.
package search

import (
	"context"
	"sort"
	"time"

	"talent-engine/internal/common/errors"
	"talent-engine/internal/common/logger"
	"talent-engine/internal/common/metrics"
	"talent-engine/internal/common/observability"
	"talent-engine/internal/engine/normalize"
	"talent-engine/internal/engine/qualify"
	"talent-engine/internal/models"
)

// StoreQuery is the Tier-1 predicate set pushed down to the store. Only
// predicates that need no joined data belong here.
type StoreQuery struct {
	// Text matches name/email/headline by substring. Ignored when IDs is
	// set (the text index already resolved the query).
	Text string

	// IDs restricts the fetch to a known id set from the text index.
	IDs []string

	LookingForWorkOnly bool
	Locations          []string
	WorkTypes          []models.WorkType
	MinExperience      *int
	MaxExperience      *int

	// VisibleOnly excludes private profiles. Search sets it; statistics
	// aggregation does not, since pool membership ignores visibility.
	VisibleOnly bool
}

// ProfileSource is the filtered-row fetch primitive from the data store.
// Rows come back ordered by creation time descending; no total is implied.
type ProfileSource interface {
	FetchProfiles(ctx context.Context, q StoreQuery) ([]models.Profile, error)
}

// TextIndex resolves a free-text query to profile ids. Optional; when nil
// the text predicate is pushed to the store instead.
type TextIndex interface {
	SearchProfileIDs(ctx context.Context, query string) ([]string, error)
}

// SignalAggregator attaches per-candidate signal summaries.
type SignalAggregator interface {
	Aggregate(ctx context.Context, profileIDs []string) (map[string]*models.SignalSet, error)
}

type Config struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Result is one page of a search plus the full-set count and facets.
type Result struct {
	Results    []models.CandidateSummary `json:"results"`
	TotalCount int                       `json:"totalCount"`
	Page       int                       `json:"page"`
	PageSize   int                       `json:"pageSize"`
	Facets     Facets                    `json:"facets"`
}

// Facets are distributions over the fully filtered set, computed in the
// same pass as the count.
type Facets struct {
	Seniorities map[models.Seniority]int `json:"seniorities"`
	WorkTypes   map[models.WorkType]int  `json:"workTypes"`
}

// TalentStats summarizes the talent pool using the same qualification rule
// as search.
type TalentStats struct {
	Total          int `json:"total"`
	LookingForWork int `json:"lookingForWork"`
	Assessed       int `json:"assessed"`
}

type Pipeline struct {
	config   *Config
	profiles ProfileSource
	agg      SignalAggregator
	text     TextIndex
	logger   logger.Logger
	obs      *observability.Observability
}

func NewPipeline(config *Config, profiles ProfileSource, agg SignalAggregator, text TextIndex, obs *observability.Observability, log logger.Logger) *Pipeline {
	return &Pipeline{
		config:   config,
		profiles: profiles,
		agg:      agg,
		text:     text,
		logger:   log.WithFields(map[string]interface{}{"component": "search"}),
		obs:      obs,
	}
}

// Search runs the full pipeline and returns one page. The entire filtered
// set is counted before the page slice is taken; Tier-2 filters can drop
// rows Tier 1 admitted, and the caller's pager must reflect the true total.
// Every page request re-runs the query; a cached filtered set could serve
// stale qualification verdicts.
func (p *Pipeline) Search(ctx context.Context, filters models.SearchFilterSet, page, pageSize int) (*Result, error) {
	start := time.Now()

	page, pageSize, err := p.normalizePaging(page, pageSize)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if err := validateFilters(&filters); err != nil {
		metrics.SearchesTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	query := StoreQuery{
		Text:               filters.Query,
		LookingForWorkOnly: filters.LookingForWorkOnly,
		Locations:          filters.Locations,
		WorkTypes:          filters.WorkTypes,
		MinExperience:      filters.MinExperience,
		MaxExperience:      filters.MaxExperience,
		VisibleOnly:        true,
	}

	if p.text != nil && filters.Query != "" {
		ids, err := p.text.SearchProfileIDs(ctx, filters.Query)
		if err != nil {
			metrics.SearchesTotal.WithLabelValues("error").Inc()
			return nil, errors.NewCollaboratorError(errors.ErrCodeSearchQueryFailed, "text index query failed", err)
		}
		if len(ids) == 0 {
			metrics.SearchesTotal.WithLabelValues("ok").Inc()
			return emptyResult(page, pageSize), nil
		}
		query.Text = ""
		query.IDs = ids
	}

	rows, err := p.profiles.FetchProfiles(ctx, query)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		return nil, errors.NewCollaboratorError(errors.ErrCodeQueryExecutionFailed, "profile fetch failed", err)
	}
	if len(rows) == 0 {
		// Valid zero-result page. Short-circuit before the aggregator so
		// we never issue batched fetches against an empty id set.
		metrics.SearchesTotal.WithLabelValues("ok").Inc()
		return emptyResult(page, pageSize), nil
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}

	signals, err := p.agg.Aggregate(ctx, ids)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	filtered := make([]models.Profile, 0, len(rows))
	for _, row := range rows {
		if matchesDerived(&row, signals[row.ID], &filters) {
			filtered = append(filtered, row)
		}
	}

	// Stable order by creation time descending; ties keep store order.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	result := &Result{
		TotalCount: len(filtered),
		Page:       page,
		PageSize:   pageSize,
		Facets:     computeFacets(filtered, signals),
	}

	pageRows := paginate(filtered, page, pageSize)
	result.Results = make([]models.CandidateSummary, 0, len(pageRows))
	for _, row := range pageRows {
		result.Results = append(result.Results, buildSummary(&row, signals[row.ID]))
	}

	elapsed := time.Since(start)
	metrics.SearchesTotal.WithLabelValues("ok").Inc()
	metrics.SearchDuration.Observe(elapsed.Seconds())
	if p.obs != nil {
		p.obs.RecordOperation(ctx, "search", "ok")
		p.obs.RecordDuration(ctx, "search", elapsed)
	}

	p.logger.Info("search completed", map[string]interface{}{
		"fetched":    len(rows),
		"totalCount": result.TotalCount,
		"page":       page,
		"pageSize":   pageSize,
		"durationMs": elapsed.Milliseconds(),
	})

	return result, nil
}

// Stats computes talent-pool statistics over all profiles, qualified by the
// same rule the search uses.
func (p *Pipeline) Stats(ctx context.Context) (*TalentStats, error) {
	rows, err := p.profiles.FetchProfiles(ctx, StoreQuery{})
	if err != nil {
		return nil, errors.NewCollaboratorError(errors.ErrCodeQueryExecutionFailed, "profile fetch failed", err)
	}
	if len(rows) == 0 {
		return &TalentStats{}, nil
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	signals, err := p.agg.Aggregate(ctx, ids)
	if err != nil {
		return nil, err
	}

	stats := &TalentStats{}
	for _, row := range rows {
		set := signals[row.ID]
		if !qualify.Qualify(&row, set) {
			continue
		}
		stats.Total++
		if row.LookingForWork {
			stats.LookingForWork++
		}
		if set != nil && set.Assessment != nil {
			stats.Assessed++
		}
	}
	return stats, nil
}

func (p *Pipeline) normalizePaging(page, pageSize int) (int, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = p.config.DefaultPageSize
	}
	if pageSize > p.config.MaxPageSize {
		pageSize = p.config.MaxPageSize
	}
	return page, pageSize, nil
}

// validateFilters rejects malformed filter sets before any fetch.
func validateFilters(f *models.SearchFilterSet) error {
	if f.MinExperience != nil && f.MaxExperience != nil && *f.MinExperience > *f.MaxExperience {
		return errors.NewInvalidExperienceRangeError(*f.MinExperience, *f.MaxExperience)
	}
	if f.MinExperience != nil && *f.MinExperience < 0 {
		return errors.NewInvalidFilterError("minExperience must not be negative")
	}
	return nil
}

// matchesDerived applies the Tier-2 predicates that need joined signals.
func matchesDerived(profile *models.Profile, signals *models.SignalSet, f *models.SearchFilterSet) bool {
	if !qualify.Qualify(profile, signals) {
		return false
	}

	hasAssessment := signals != nil && signals.Assessment != nil
	if f.AssessedOnly && !hasAssessment {
		return false
	}

	if len(f.DominantCodes) > 0 {
		if !hasAssessment {
			return false
		}
		found := false
		for _, code := range f.DominantCodes {
			if normalize.ContainsFold(signals.Assessment.DominantCode, code) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(f.Seniorities) > 0 {
		if signals == nil || signals.Interview == nil {
			return false
		}
		found := false
		for _, s := range f.Seniorities {
			if signals.Interview.Seniority == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(f.SoftSkills) > 0 {
		if signals == nil || signals.Interview == nil {
			return false
		}
		found := false
	outer:
		for _, want := range f.SoftSkills {
			for _, tag := range signals.Interview.SoftSkills {
				if normalize.ContainsFold(tag, want) {
					found = true
					break outer
				}
			}
		}
		if !found {
			return false
		}
	}

	if len(f.SkillIDs) > 0 {
		if signals == nil {
			return false
		}
		found := false
	skills:
		for _, id := range f.SkillIDs {
			for _, s := range signals.Skills {
				if s.CatalogID != "" && s.CatalogID == id {
					found = true
					break skills
				}
			}
		}
		if !found {
			return false
		}
	}

	return true
}

func computeFacets(rows []models.Profile, signals map[string]*models.SignalSet) Facets {
	f := Facets{
		Seniorities: map[models.Seniority]int{},
		WorkTypes:   map[models.WorkType]int{},
	}
	for _, row := range rows {
		f.WorkTypes[row.WorkType]++
		if set := signals[row.ID]; set != nil && set.Interview != nil {
			f.Seniorities[set.Interview.Seniority]++
		}
	}
	return f
}

// paginate slices the fully filtered set; offset past the end yields an
// empty page, never an error.
func paginate(rows []models.Profile, page, pageSize int) []models.Profile {
	offset := (page - 1) * pageSize
	if offset >= len(rows) {
		return nil
	}
	end := offset + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func buildSummary(profile *models.Profile, signals *models.SignalSet) models.CandidateSummary {
	s := models.CandidateSummary{
		ProfileID:       profile.ID,
		Name:            profile.FullName(),
		Headline:        profile.Headline,
		Location:        profile.Location,
		ExperienceYears: profile.ExperienceYears,
		LookingForWork:  profile.LookingForWork,
		WorkType:        profile.WorkType,
		CreatedAt:       profile.CreatedAt,
		TopSkills:       []string{},
	}
	if signals != nil {
		s.TopSkills = signals.TopSkills
		s.SkillsCount = signals.SkillsCount
		if signals.Assessment != nil {
			s.HasAssessment = true
			s.DominantCode = signals.Assessment.DominantCode
		}
		if signals.Interview != nil {
			s.Seniority = signals.Interview.Seniority
		}
	}
	return s
}

func emptyResult(page, pageSize int) *Result {
	return &Result{
		Results:    []models.CandidateSummary{},
		TotalCount: 0,
		Page:       page,
		PageSize:   pageSize,
		Facets: Facets{
			Seniorities: map[models.Seniority]int{},
			WorkTypes:   map[models.WorkType]int{},
		},
	}
}
