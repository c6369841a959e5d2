// internal/engine/aggregate/aggregate.go

// Package aggregate joins a batch of candidates' skills, assessment results
// and interview sessions into per-candidate signal summaries. One batched
// fetch per signal category; fanning out per profile is a performance
// defect at the volumes the pipeline targets.
package aggregate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"talent-engine/internal/common/errors"
	"talent-engine/internal/common/logger"
	"talent-engine/internal/models"
)

// SignalSource is the batched-by-id fetch primitive per signal category,
// implemented by the store.
type SignalSource interface {
	AssessmentsByProfile(ctx context.Context, profileIDs []string) (map[string]*models.AssessmentScore, error)
	InterviewsByProfile(ctx context.Context, profileIDs []string) (map[string]*models.InterviewSummary, error)
	SkillsByProfile(ctx context.Context, profileIDs []string) (map[string][]models.SkillAssignment, error)
	PortfolioByProfile(ctx context.Context, profileIDs []string) (map[string][]models.PortfolioItem, error)
}

// CatalogResolver resolves catalog skill ids to display names. The postgres
// store provides one, optionally wrapped in the redis read-through cache.
type CatalogResolver interface {
	SkillNames(ctx context.Context, catalogIDs []string) (map[string]string, error)
}

// TopSkillCount is how many resolved skill names the list view shows.
const TopSkillCount = 3

type Aggregator struct {
	source  SignalSource
	catalog CatalogResolver
	logger  logger.Logger
}

func NewAggregator(source SignalSource, catalog CatalogResolver, log logger.Logger) *Aggregator {
	return &Aggregator{
		source:  source,
		catalog: catalog,
		logger:  log.WithFields(map[string]interface{}{"component": "aggregate"}),
	}
}

// Aggregate assembles a SignalSet per profile id. The four category fetches
// are independent and run concurrently; all must complete before the result
// is usable, since any category can feed qualification or a derived filter.
// An empty id batch returns an empty map without touching the store.
func (a *Aggregator) Aggregate(ctx context.Context, profileIDs []string) (map[string]*models.SignalSet, error) {
	if len(profileIDs) == 0 {
		return map[string]*models.SignalSet{}, nil
	}

	var (
		assessments map[string]*models.AssessmentScore
		interviews  map[string]*models.InterviewSummary
		skills      map[string][]models.SkillAssignment
		portfolio   map[string][]models.PortfolioItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		assessments, err = a.source.AssessmentsByProfile(gctx, profileIDs)
		return err
	})
	g.Go(func() error {
		var err error
		interviews, err = a.source.InterviewsByProfile(gctx, profileIDs)
		return err
	})
	g.Go(func() error {
		var err error
		skills, err = a.source.SkillsByProfile(gctx, profileIDs)
		return err
	})
	g.Go(func() error {
		var err error
		portfolio, err = a.source.PortfolioByProfile(gctx, profileIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.NewCollaboratorError(errors.ErrCodeSignalFetchFailed, "signal category fetch failed", err)
	}

	catalogNames, err := a.resolveCatalogNames(ctx, skills)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*models.SignalSet, len(profileIDs))
	for _, id := range profileIDs {
		set := &models.SignalSet{
			Assessment: assessments[id],
			Interview:  interviews[id],
			Skills:     skills[id],
			Portfolio:  portfolio[id],
		}
		set.ResolvedSkills = resolveSkillNames(set.Skills, catalogNames)
		set.SkillsCount = len(set.ResolvedSkills)
		if len(set.ResolvedSkills) > TopSkillCount {
			set.TopSkills = set.ResolvedSkills[:TopSkillCount]
		} else {
			set.TopSkills = set.ResolvedSkills
		}
		out[id] = set
	}

	a.logger.Debug("signals aggregated", map[string]interface{}{
		"profiles": len(profileIDs),
	})
	return out, nil
}

// resolveCatalogNames collects every catalog reference in the batch and
// resolves them in one call.
func (a *Aggregator) resolveCatalogNames(ctx context.Context, skills map[string][]models.SkillAssignment) (map[string]string, error) {
	seen := map[string]struct{}{}
	var ids []string
	for _, list := range skills {
		for _, s := range list {
			if s.CatalogID == "" {
				continue
			}
			if _, ok := seen[s.CatalogID]; ok {
				continue
			}
			seen[s.CatalogID] = struct{}{}
			ids = append(ids, s.CatalogID)
		}
	}
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	names, err := a.catalog.SkillNames(ctx, ids)
	if err != nil {
		return nil, errors.NewCollaboratorError(errors.ErrCodeCatalogFetchFailed, "skill catalog resolve failed", err)
	}
	return names, nil
}

// resolveSkillNames maps assignments to display names in insertion order.
// The catalog name wins over the free-text name whenever the reference
// resolves; unresolvable catalog references are kept under their raw id so
// the skill does not silently vanish from summaries.
func resolveSkillNames(assignments []models.SkillAssignment, catalogNames map[string]string) []string {
	names := make([]string, 0, len(assignments))
	for _, s := range assignments {
		switch {
		case s.CatalogID != "":
			if name, ok := catalogNames[s.CatalogID]; ok && name != "" {
				names = append(names, name)
			} else {
				names = append(names, s.CatalogID)
			}
		case s.FreeText != "":
			names = append(names, s.FreeText)
		}
	}
	return names
}
