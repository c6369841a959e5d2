// internal/engine/aggregate/aggregate_test.go
package aggregate

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enginerrors "talent-engine/internal/common/errors"
	"talent-engine/internal/common/logger"
	"talent-engine/internal/models"
)

// ==========================
// Test Doubles
// ==========================

type fakeSource struct {
	assessments map[string]*models.AssessmentScore
	interviews  map[string]*models.InterviewSummary
	skills      map[string][]models.SkillAssignment
	portfolio   map[string][]models.PortfolioItem

	failCategory string
	fetchCalls   int32
}

func (f *fakeSource) AssessmentsByProfile(_ context.Context, _ []string) (map[string]*models.AssessmentScore, error) {
	atomic.AddInt32(&f.fetchCalls, 1)
	if f.failCategory == "assessment" {
		return nil, errors.New("connection reset")
	}
	return f.assessments, nil
}

func (f *fakeSource) InterviewsByProfile(_ context.Context, _ []string) (map[string]*models.InterviewSummary, error) {
	atomic.AddInt32(&f.fetchCalls, 1)
	if f.failCategory == "interview" {
		return nil, errors.New("connection reset")
	}
	return f.interviews, nil
}

func (f *fakeSource) SkillsByProfile(_ context.Context, _ []string) (map[string][]models.SkillAssignment, error) {
	atomic.AddInt32(&f.fetchCalls, 1)
	if f.failCategory == "skills" {
		return nil, errors.New("connection reset")
	}
	return f.skills, nil
}

func (f *fakeSource) PortfolioByProfile(_ context.Context, _ []string) (map[string][]models.PortfolioItem, error) {
	atomic.AddInt32(&f.fetchCalls, 1)
	if f.failCategory == "portfolio" {
		return nil, errors.New("connection reset")
	}
	return f.portfolio, nil
}

type fakeCatalog struct {
	names map[string]string
	calls int32
	err   error
}

func (f *fakeCatalog) SkillNames(_ context.Context, ids []string) (map[string]string, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]string{}
	for _, id := range ids {
		if name, ok := f.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func newTestAggregator(t *testing.T, src *fakeSource, cat *fakeCatalog) *Aggregator {
	return NewAggregator(src, cat, logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestAggregator_Aggregate(t *testing.T) {
	src := &fakeSource{
		assessments: map[string]*models.AssessmentScore{
			"p1": {ProfileID: "p1", Realistic: 25, DominantCode: "RIA"},
		},
		interviews: map[string]*models.InterviewSummary{
			"p2": {ProfileID: "p2", Seniority: models.SenioritySenior, SoftSkills: []string{"Leadership"}},
		},
		skills: map[string][]models.SkillAssignment{
			"p1": {
				{ProfileID: "p1", CatalogID: "cat-go", Level: 4},
				{ProfileID: "p1", FreeText: "Kubernetes", Level: 3},
				{ProfileID: "p1", CatalogID: "cat-sql", Level: 3},
				{ProfileID: "p1", FreeText: "Terraform", Level: 2},
			},
		},
		portfolio: map[string][]models.PortfolioItem{
			"p2": {{ProfileID: "p2", Kind: "pdf", Title: "Case study"}},
		},
	}
	cat := &fakeCatalog{names: map[string]string{"cat-go": "Go", "cat-sql": "SQL"}}

	agg := newTestAggregator(t, src, cat)
	sets, err := agg.Aggregate(context.Background(), []string{"p1", "p2", "p3"})
	require.NoError(t, err)
	require.Len(t, sets, 3)

	p1 := sets["p1"]
	require.NotNil(t, p1)
	assert.NotNil(t, p1.Assessment)
	assert.Nil(t, p1.Interview)
	// catalog name preferred over raw reference, insertion order preserved
	assert.Equal(t, []string{"Go", "Kubernetes", "SQL", "Terraform"}, p1.ResolvedSkills)
	assert.Equal(t, []string{"Go", "Kubernetes", "SQL"}, p1.TopSkills)
	assert.Equal(t, 4, p1.SkillsCount)

	p2 := sets["p2"]
	require.NotNil(t, p2)
	assert.Nil(t, p2.Assessment)
	assert.NotNil(t, p2.Interview)
	assert.Len(t, p2.Portfolio, 1)
	assert.Empty(t, p2.ResolvedSkills)
	assert.Equal(t, 0, p2.SkillsCount)
	assert.False(t, p2.Empty())

	// p3 has no signals at all
	p3 := sets["p3"]
	require.NotNil(t, p3)
	assert.True(t, p3.Empty())
}

func TestAggregator_Aggregate_EmptyBatch(t *testing.T) {
	src := &fakeSource{}
	cat := &fakeCatalog{}

	agg := newTestAggregator(t, src, cat)
	sets, err := agg.Aggregate(context.Background(), nil)

	// an empty id set must not error and must not hit the store
	require.NoError(t, err)
	assert.Empty(t, sets)
	assert.Zero(t, atomic.LoadInt32(&src.fetchCalls))
	assert.Zero(t, atomic.LoadInt32(&cat.calls))
}

func TestAggregator_Aggregate_OneBatchedCatalogResolve(t *testing.T) {
	src := &fakeSource{
		skills: map[string][]models.SkillAssignment{
			"p1": {{CatalogID: "cat-go"}},
			"p2": {{CatalogID: "cat-go"}, {CatalogID: "cat-sql"}},
			"p3": {{CatalogID: "cat-sql"}},
		},
	}
	cat := &fakeCatalog{names: map[string]string{"cat-go": "Go", "cat-sql": "SQL"}}

	agg := newTestAggregator(t, src, cat)
	_, err := agg.Aggregate(context.Background(), []string{"p1", "p2", "p3"})
	require.NoError(t, err)

	// per-profile catalog lookups would be a fan-out defect
	assert.Equal(t, int32(1), atomic.LoadInt32(&cat.calls))
}

func TestAggregator_Aggregate_UnresolvedCatalogRefKeepsRawID(t *testing.T) {
	src := &fakeSource{
		skills: map[string][]models.SkillAssignment{
			"p1": {{CatalogID: "cat-unknown"}},
		},
	}
	cat := &fakeCatalog{names: map[string]string{}}

	agg := newTestAggregator(t, src, cat)
	sets, err := agg.Aggregate(context.Background(), []string{"p1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cat-unknown"}, sets["p1"].ResolvedSkills)
}

// ==========================
// Failure Semantics
// ==========================

func TestAggregator_Aggregate_CategoryFailureIsCollaboratorError(t *testing.T) {
	for _, category := range []string{"assessment", "interview", "skills", "portfolio"} {
		t.Run(category, func(t *testing.T) {
			src := &fakeSource{failCategory: category}
			agg := newTestAggregator(t, src, &fakeCatalog{})

			_, err := agg.Aggregate(context.Background(), []string{"p1"})
			require.Error(t, err)
			assert.True(t, enginerrors.IsCollaborator(err))
			assert.False(t, enginerrors.IsInput(err))
		})
	}
}

func TestAggregator_Aggregate_CatalogFailure(t *testing.T) {
	src := &fakeSource{
		skills: map[string][]models.SkillAssignment{"p1": {{CatalogID: "cat-go"}}},
	}
	cat := &fakeCatalog{err: errors.New("redis down")}

	agg := newTestAggregator(t, src, cat)
	_, err := agg.Aggregate(context.Background(), []string{"p1"})
	require.Error(t, err)
	assert.True(t, enginerrors.IsCollaborator(err))
}

func TestAggregator_Aggregate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	blocking := &ctxSource{}
	agg := NewAggregator(blocking, &fakeCatalog{}, logger.NewNoOpLogger())

	_, err := agg.Aggregate(ctx, []string{"p1"})
	assert.Error(t, err)
}

// ctxSource honors cancellation like a real store client would.
type ctxSource struct{}

func (c *ctxSource) AssessmentsByProfile(ctx context.Context, _ []string) (map[string]*models.AssessmentScore, error) {
	return nil, ctx.Err()
}

func (c *ctxSource) InterviewsByProfile(ctx context.Context, _ []string) (map[string]*models.InterviewSummary, error) {
	return nil, ctx.Err()
}

func (c *ctxSource) SkillsByProfile(ctx context.Context, _ []string) (map[string][]models.SkillAssignment, error) {
	return nil, ctx.Err()
}

func (c *ctxSource) PortfolioByProfile(ctx context.Context, _ []string) (map[string][]models.PortfolioItem, error) {
	return nil, ctx.Err()
}
