// internal/engine/score/score.go

// Package score computes the composite match score of a candidate against
// a target requirement profile.
package score

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"talent-engine/internal/common/logger"
	"talent-engine/internal/common/metrics"
	"talent-engine/internal/engine/normalize"
	"talent-engine/internal/models"
)

// Product constants. The weighting and the neutral default were fixed by
// observed product behavior; changing one should be a one-line diff here.
const (
	WeightAssessment = 0.30
	WeightSkills     = 0.50
	SeniorityBonus   = 20

	// NeutralAssessmentScore is used when either assessment vector is
	// absent. Missing data must not read as maximal dissimilarity.
	NeutralAssessmentScore = 50

	// DefaultScaleMax is the native per-dimension assessment maximum.
	DefaultScaleMax = 30
)

// Candidate carries the per-candidate inputs the scorer needs. SkillNames
// are the aggregator's resolved names.
type Candidate struct {
	ProfileID      string
	LookingForWork bool
	Seniority      models.Seniority
	WorkType       models.WorkType
	Assessment     *[models.AssessmentDimensions]int
	SkillNames     []string
}

// ScoredCandidate pairs a candidate with its match result for ranking.
type ScoredCandidate struct {
	Candidate Candidate
	Result    models.MatchResult
}

type Engine struct {
	logger logger.Logger
}

func NewEngine(log logger.Logger) *Engine {
	return &Engine{
		logger: log.WithFields(map[string]interface{}{"component": "score"}),
	}
}

// Score computes the match result of a single candidate against the target.
// Pure computation, no I/O.
func (e *Engine) Score(c Candidate, target models.TargetProfile) models.MatchResult {
	result := models.MatchResult{ProfileID: c.ProfileID}

	result.AssessmentScore = assessmentDistanceScore(c.Assessment, target.Assessment, target.ScaleMax)
	result.SkillsScore, result.MatchedSkills, result.MissingSkills = skillsOverlap(c.SkillNames, target.RequiredSkills)
	result.SeniorityMatch = seniorityAccepted(c.Seniority, target.Seniorities)
	result.WorkTypeMatch = workTypeAccepted(c.WorkType, target.WorkTypes)

	bonus := 0.0
	if result.SeniorityMatch {
		bonus = SeniorityBonus
	}
	result.Total = int(math.Round(
		float64(result.AssessmentScore)*WeightAssessment +
			float64(result.SkillsScore)*WeightSkills +
			bonus))

	metrics.CandidatesScored.Inc()
	return result
}

// ScoreAndRank scores every candidate (in parallel for large sets) and
// returns them ranked: lookingForWork first, then total descending. The
// two-level sort is a product decision; availability trumps fit and must
// not be folded into the score.
func (e *Engine) ScoreAndRank(ctx context.Context, candidates []Candidate, target models.TargetProfile) ([]ScoredCandidate, error) {
	scored := make([]ScoredCandidate, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			scored[i] = ScoredCandidate{Candidate: c, Result: e.Score(c, target)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Sort on computed fields only, so the order is independent of
	// goroutine completion order.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Candidate.LookingForWork != scored[j].Candidate.LookingForWork {
			return scored[i].Candidate.LookingForWork
		}
		return scored[i].Result.Total > scored[j].Result.Total
	})

	return scored, nil
}

// assessmentDistanceScore maps the summed absolute dimension differences to
// 0-100. The scale max is a parameter: 30 on the native scale, 100 when
// vectors arrive normalized. Absent data on either side yields the neutral
// default rather than zero.
func assessmentDistanceScore(candidate, target *[models.AssessmentDimensions]int, scaleMax int) int {
	if candidate == nil || target == nil {
		return NeutralAssessmentScore
	}
	if scaleMax <= 0 {
		scaleMax = DefaultScaleMax
	}

	totalDiff := 0
	for d := 0; d < models.AssessmentDimensions; d++ {
		diff := candidate[d] - target[d]
		if diff < 0 {
			diff = -diff
		}
		totalDiff += diff
	}

	maxDiff := models.AssessmentDimensions * scaleMax
	score := int(math.Round(100 * (1 - float64(totalDiff)/float64(maxDiff))))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// skillsOverlap computes the case-insensitive intersection of the
// candidate's skills with the required list. Both the overlap and the
// missing list are returned since callers render both. An empty required
// list is vacuously satisfied: score 100, every candidate skill counts as
// overlap.
func skillsOverlap(candidateSkills, required []string) (int, []string, []string) {
	if len(required) == 0 {
		matched := make([]string, len(candidateSkills))
		copy(matched, candidateSkills)
		return 100, matched, []string{}
	}

	candidateSet := normalize.FoldSet(candidateSkills)

	matched := []string{}
	missing := []string{}
	for _, req := range required {
		if _, ok := candidateSet[normalize.Fold(req)]; ok {
			matched = append(matched, req)
		} else {
			missing = append(missing, req)
		}
	}

	score := int(math.Round(100 * float64(len(matched)) / float64(len(required))))
	return score, matched, missing
}

func seniorityAccepted(s models.Seniority, accepted []models.Seniority) bool {
	if len(accepted) == 0 {
		return true
	}
	for _, a := range accepted {
		if s == a {
			return true
		}
	}
	return false
}

func workTypeAccepted(w models.WorkType, accepted []models.WorkType) bool {
	if len(accepted) == 0 {
		return true
	}
	for _, a := range accepted {
		if w.Matches(a) {
			return true
		}
	}
	return false
}
