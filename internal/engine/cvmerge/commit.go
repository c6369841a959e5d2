// internal/engine/cvmerge/commit.go
package cvmerge

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"talent-engine/internal/common/errors"
	"talent-engine/internal/common/logger"
	"talent-engine/internal/common/metrics"
	"talent-engine/internal/models"
)

// RecordStore is the batched-insert primitive per entity kind. Each call
// must insert all rows or none of them.
type RecordStore interface {
	InsertExperience(ctx context.Context, records []models.ExperienceRecord) error
	InsertEducation(ctx context.Context, records []models.EducationRecord) error
	InsertCertifications(ctx context.Context, records []models.CertificationRecord) error
	InsertLanguages(ctx context.Context, records []models.LanguageRecord) error
	InsertSkills(ctx context.Context, profileID string, skills []models.SkillAssignment) error
}

// CommitResult reports what landed. Inserted maps kind to row count;
// kinds with nothing selected are omitted.
type CommitResult struct {
	Inserted map[ItemKind]int `json:"inserted"`
}

type Committer struct {
	store  RecordStore
	logger logger.Logger
}

func NewCommitter(store RecordStore, log logger.Logger) *Committer {
	return &Committer{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "cvmerge"}),
	}
}

// Commit inserts the selected items of each kind. Kinds run concurrently;
// within a kind the rows are ordered by sortOrder and inserted as one
// batch. A failed kind does not roll back kinds that already committed;
// the returned PartialCommitError says which kinds landed so the caller
// can re-offer only the failed subset.
func (c *Committer) Commit(ctx context.Context, profileID string, doc *ParsedDocument, plan *MergePlan) (*CommitResult, error) {
	if doc == nil || plan == nil {
		return nil, errors.NewInvalidDocumentError("nil document or merge plan")
	}

	batches := c.buildBatches(profileID, doc, plan)

	result := &CommitResult{Inserted: make(map[ItemKind]int)}
	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		committed []string
		failed    = make(map[string]error)
	)

	for _, b := range batches {
		b := b
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := b.insert(ctx, c.store)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[string(b.kind)] = err
				metrics.MergeCommitsTotal.WithLabelValues(string(b.kind), "error").Inc()
				return
			}
			committed = append(committed, string(b.kind))
			result.Inserted[b.kind] = b.size
			metrics.MergeCommitsTotal.WithLabelValues(string(b.kind), "ok").Inc()
		}()
	}
	wg.Wait()

	if len(failed) > 0 {
		sort.Strings(committed)
		c.logger.Warn("merge commit partially failed", map[string]interface{}{
			"profileId": profileID,
			"committed": committed,
			"failed":    len(failed),
		})
		return result, &errors.PartialCommitError{Committed: committed, Failed: failed}
	}

	c.logger.Info("merge commit completed", map[string]interface{}{
		"profileId": profileID,
		"kinds":     len(batches),
	})
	return result, nil
}

// kindBatch is one kind's prepared insert.
type kindBatch struct {
	kind   ItemKind
	size   int
	insert func(ctx context.Context, store RecordStore) error
}

// buildBatches materializes the selected rows per kind, assigning fresh ids
// and sequential sort orders. Kinds with no selected items get no batch.
func (c *Committer) buildBatches(profileID string, doc *ParsedDocument, plan *MergePlan) []kindBatch {
	var batches []kindBatch

	if rows := selectRows(doc.Experience, plan.Experience); len(rows) > 0 {
		for i := range rows {
			rows[i].ID = uuid.New().String()
			rows[i].ProfileID = profileID
			rows[i].SortOrder = i
		}
		batches = append(batches, kindBatch{KindExperience, len(rows), func(ctx context.Context, store RecordStore) error {
			return store.InsertExperience(ctx, rows)
		}})
	}

	if rows := selectRows(doc.Education, plan.Education); len(rows) > 0 {
		for i := range rows {
			rows[i].ID = uuid.New().String()
			rows[i].ProfileID = profileID
			rows[i].SortOrder = i
		}
		batches = append(batches, kindBatch{KindEducation, len(rows), func(ctx context.Context, store RecordStore) error {
			return store.InsertEducation(ctx, rows)
		}})
	}

	if rows := selectRows(doc.Certifications, plan.Certifications); len(rows) > 0 {
		for i := range rows {
			rows[i].ID = uuid.New().String()
			rows[i].ProfileID = profileID
			rows[i].SortOrder = i
		}
		batches = append(batches, kindBatch{KindCertification, len(rows), func(ctx context.Context, store RecordStore) error {
			return store.InsertCertifications(ctx, rows)
		}})
	}

	if rows := selectRows(doc.Languages, plan.Languages); len(rows) > 0 {
		for i := range rows {
			rows[i].ID = uuid.New().String()
			rows[i].ProfileID = profileID
			rows[i].SortOrder = i
		}
		batches = append(batches, kindBatch{KindLanguage, len(rows), func(ctx context.Context, store RecordStore) error {
			return store.InsertLanguages(ctx, rows)
		}})
	}

	if parsed := selectRows(doc.Skills, plan.Skills); len(parsed) > 0 {
		skills := make([]models.SkillAssignment, len(parsed))
		for i, s := range parsed {
			skills[i] = models.SkillAssignment{
				ID:        uuid.New().String(),
				ProfileID: profileID,
				FreeText:  s.Name,
				Level:     s.Level,
				SortOrder: i,
			}
		}
		batches = append(batches, kindBatch{KindSkill, len(skills), func(ctx context.Context, store RecordStore) error {
			return store.InsertSkills(ctx, profileID, skills)
		}})
	}

	return batches
}

// selectRows keeps the items the plan marks selected, preserving document
// order. A plan shorter than the item list drops the unflagged tail.
func selectRows[T any](items []T, flags []ItemFlags) []T {
	var out []T
	for i := range items {
		if i < len(flags) && flags[i].Selected {
			out = append(out, items[i])
		}
	}
	return out
}
