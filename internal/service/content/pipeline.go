package content

import (
	"strings"

	"notekeeper/internal/repository"
)

const (
	// notesPerPage is the fixed page size for note listings.
	notesPerPage = 5

	// tagSeparator splits the raw tags query parameter into required tags.
	tagSeparator = "_"

	sortKeyUpdateDate = "updateDate"
	orderNewestFirst  = "new"
	orderOldestFirst  = "old"
)

// filterModeKind enumerates the mutually exclusive filter modes of a list
// query. Exactly one mode is selected per call.
type filterModeKind int

const (
	filterNone filterModeKind = iota
	filterBySort
	filterByTags
)

type filterMode struct {
	kind       filterModeKind
	descending bool
	tags       []string
}

// resolveFilterMode performs the exhaustive mode decision: tags win over
// sort, and an unrecognized sort/order combination degrades to plain
// pagination rather than producing no response.
func resolveFilterMode(sortKey, order, rawTags string) filterMode {
	switch {
	case rawTags != "":
		return filterMode{kind: filterByTags, tags: splitTags(rawTags)}
	case sortKey == sortKeyUpdateDate && (order == orderNewestFirst || order == orderOldestFirst):
		return filterMode{kind: filterBySort, descending: order == orderNewestFirst}
	default:
		return filterMode{kind: filterNone}
	}
}

// splitTags splits the raw parameter into a deduplicated set of required
// tags, dropping empty fragments.
func splitTags(raw string) []string {
	parts := strings.Split(raw, tagSeparator)
	seen := make(map[string]bool, len(parts))
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		tags = append(tags, part)
	}
	return tags
}

// BuildNotePipeline turns request-level sort/filter/pagination parameters
// into one deterministic query plan. Stages always compose in match -> sort
// -> paginate order: the pagination window applies whichever filter mode is
// active. Page defaults to 1 and the page size is fixed at notesPerPage.
func BuildNotePipeline(page int, sortKey, order, rawTags string) repository.NotePipeline {
	if page < 1 {
		page = 1
	}
	pipeline := repository.NotePipeline{
		Page: repository.PageStage{
			Skip:  (page - 1) * notesPerPage,
			Limit: notesPerPage,
		},
	}

	switch mode := resolveFilterMode(sortKey, order, rawTags); mode.kind {
	case filterByTags:
		pipeline.Match = &repository.MatchStage{TagsAll: mode.tags}
	case filterBySort:
		pipeline.Sort = &repository.SortStage{
			Field:      repository.SortFieldUpdatedAt,
			Descending: mode.descending,
		}
	case filterNone:
		// Plain pagination in natural order.
	}
	return pipeline
}
