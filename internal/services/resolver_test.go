package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookdesk/bookdesk/internal/models"
)

// stubSearcher maps queries to canned results or errors.
type stubSearcher struct {
	results map[string][]models.Book
	errs    map[string]error
	calls   []string
}

func (s *stubSearcher) Search(ctx context.Context, query string, limit int) ([]models.Book, error) {
	s.calls = append(s.calls, query)
	if err, ok := s.errs[query]; ok {
		return nil, err
	}
	return s.results[query], nil
}

func TestResolveRoundTrip(t *testing.T) {
	match := models.Book{Title: "쎈 수학1", Author: "홍범준", Discount: "15300", ISBN: "9791159245145"}
	searcher := &stubSearcher{results: map[string][]models.Book{"쎈 수1": {match}}}
	resolver := NewLineItemResolver(searcher)

	processed := resolver.Resolve(context.Background(), []models.ExtractedItem{
		{Title: "쎈 수1", Quantity: 3},
	})

	require.Len(t, processed, 1)
	item := processed[0]
	assert.True(t, item.IsResolved())
	assert.Equal(t, "쎈 수1", item.SourceTitle)
	assert.Equal(t, 3, item.Quantity)
	require.NotNil(t, item.Book)
	assert.Equal(t, match, *item.Book)
}

func TestResolveClassification(t *testing.T) {
	searcher := &stubSearcher{
		results: map[string][]models.Book{
			"쎈 수1":      {{Title: "쎈 수학1", ISBN: "111"}},
			"마플 시너지 수2": {{Title: "마플 시너지 수학2", ISBN: "222"}},
		},
		errs: map[string]error{
			"깨진 검색": errors.New("network down"),
		},
	}
	resolver := NewLineItemResolver(searcher)

	input := []models.ExtractedItem{
		{Title: "쎈 수1", Quantity: 3},
		{Title: "없는책", Quantity: 1},
		{Title: "깨진 검색", Quantity: 2},
		{Title: "마플 시너지 수2", Quantity: 1},
	}

	processed := resolver.Resolve(context.Background(), input)

	// One output per input, input order preserved
	require.Len(t, processed, len(input))
	assert.Equal(t, []string{"쎈 수1", "없는책", "깨진 검색", "마플 시너지 수2"}, searcher.calls)

	assert.Equal(t, models.ItemResolved, processed[0].State)
	assert.Equal(t, models.ItemUnresolved, processed[1].State)
	assert.Equal(t, models.ItemUnresolved, processed[2].State)
	assert.Equal(t, models.ItemResolved, processed[3].State)

	// Unresolved items keep the source title and quantity for review
	assert.Equal(t, "깨진 검색", processed[2].Title)
	assert.Equal(t, 2, processed[2].Quantity)
	assert.Nil(t, processed[2].Book)
}

func TestResolveEmptyInput(t *testing.T) {
	resolver := NewLineItemResolver(&stubSearcher{})

	processed := resolver.Resolve(context.Background(), nil)
	assert.NotNil(t, processed)
	assert.Empty(t, processed)
}
