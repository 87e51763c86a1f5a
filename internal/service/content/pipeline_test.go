package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notekeeper/internal/repository"
)

func TestBuildNotePipelinePagination(t *testing.T) {
	t.Run("DefaultsToFirstPage", func(t *testing.T) {
		p := BuildNotePipeline(0, "", "", "")
		assert.Equal(t, 0, p.Page.Skip)
		assert.Equal(t, notesPerPage, p.Page.Limit)
		assert.Nil(t, p.Match)
		assert.Nil(t, p.Sort)
	})

	t.Run("SkipGrowsWithPage", func(t *testing.T) {
		p := BuildNotePipeline(3, "", "", "")
		assert.Equal(t, 10, p.Page.Skip)
		assert.Equal(t, notesPerPage, p.Page.Limit)
	})
}

func TestBuildNotePipelineTagMode(t *testing.T) {
	p := BuildNotePipeline(2, "", "", "work_urgent_work")

	require.NotNil(t, p.Match)
	assert.Equal(t, []string{"work", "urgent"}, p.Match.TagsAll)
	assert.Nil(t, p.Sort)

	// Pagination still applies in tag mode.
	assert.Equal(t, notesPerPage, p.Page.Skip)
	assert.Equal(t, notesPerPage, p.Page.Limit)
}

func TestBuildNotePipelineSortMode(t *testing.T) {
	t.Run("NewestFirst", func(t *testing.T) {
		p := BuildNotePipeline(1, "updateDate", "new", "")
		require.NotNil(t, p.Sort)
		assert.Equal(t, repository.SortFieldUpdatedAt, p.Sort.Field)
		assert.True(t, p.Sort.Descending)
		assert.Nil(t, p.Match)
		assert.Equal(t, notesPerPage, p.Page.Limit)
	})

	t.Run("OldestFirst", func(t *testing.T) {
		p := BuildNotePipeline(1, "updateDate", "old", "")
		require.NotNil(t, p.Sort)
		assert.False(t, p.Sort.Descending)
	})

	t.Run("UnknownOrderDegradesToPlainPagination", func(t *testing.T) {
		p := BuildNotePipeline(1, "updateDate", "sideways", "")
		assert.Nil(t, p.Sort)
		assert.Nil(t, p.Match)
	})
}

func TestBuildNotePipelineModeExclusivity(t *testing.T) {
	// Tags win over sort; exactly one filter stage is active.
	p := BuildNotePipeline(1, "updateDate", "new", "a_b")
	assert.NotNil(t, p.Match)
	assert.Nil(t, p.Sort)
}

func TestSplitTagsDropsEmptyFragments(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitTags("a__b_"))
	assert.Empty(t, splitTags("_"))
}
