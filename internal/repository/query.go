package repository

import (
	"sort"

	"notekeeper/internal/domain"
)

// SortField names a note attribute a pipeline may sort on.
type SortField string

// SortFieldUpdatedAt sorts on the last-update timestamp.
const SortFieldUpdatedAt SortField = "updatedAt"

// MatchStage filters notes whose tag set is a superset of TagsAll.
type MatchStage struct {
	TagsAll []string
}

// SortStage orders notes on a field.
type SortStage struct {
	Field      SortField
	Descending bool
}

// PageStage selects a window of the sequence.
type PageStage struct {
	Skip  int
	Limit int
}

// NotePipeline is an ordered match -> sort -> paginate query plan. Match and
// Sort are optional; Page always applies. Absent a sort stage, notes keep
// their natural (insertion) order.
type NotePipeline struct {
	Match *MatchStage
	Sort  *SortStage
	Page  PageStage
}

// Apply executes the pipeline over a sequence already in natural order.
// Implementations that cannot push the stages into the storage engine run
// this over the fetched set.
func (p NotePipeline) Apply(notes []domain.Note) []domain.Note {
	result := notes

	if p.Match != nil {
		matched := make([]domain.Note, 0, len(result))
		for _, note := range result {
			if note.HasAllTags(p.Match.TagsAll) {
				matched = append(matched, note)
			}
		}
		result = matched
	}

	if p.Sort != nil {
		sorted := make([]domain.Note, len(result))
		copy(sorted, result)
		sort.SliceStable(sorted, func(i, j int) bool {
			var less bool
			switch p.Sort.Field {
			case SortFieldUpdatedAt:
				less = sorted[i].UpdatedAt.Before(sorted[j].UpdatedAt)
			default:
				less = sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
			}
			if p.Sort.Descending {
				return !less && !equalSortKey(sorted[i], sorted[j], p.Sort.Field)
			}
			return less
		})
		result = sorted
	}

	if p.Page.Skip >= len(result) {
		return []domain.Note{}
	}
	result = result[p.Page.Skip:]
	if p.Page.Limit > 0 && len(result) > p.Page.Limit {
		result = result[:p.Page.Limit]
	}

	out := make([]domain.Note, len(result))
	copy(out, result)
	return out
}

func equalSortKey(a, b domain.Note, field SortField) bool {
	switch field {
	case SortFieldUpdatedAt:
		return a.UpdatedAt.Equal(b.UpdatedAt)
	default:
		return a.CreatedAt.Equal(b.CreatedAt)
	}
}
