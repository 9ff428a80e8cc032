package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookdesk/bookdesk/internal/models"
)

// stubGenerator replays canned responses per model name.
type stubGenerator struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func (g *stubGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	g.calls = append(g.calls, model)
	if err, ok := g.errs[model]; ok {
		return "", err
	}
	return g.responses[model], nil
}

func TestParseExtractedItems(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []models.ExtractedItem
		wantErr error
	}{
		{
			name: "plain array",
			raw:  `[{"title": "쎈 수1", "quantity": 3}, {"title": "마플 시너지 수2", "quantity": 1}]`,
			want: []models.ExtractedItem{
				{Title: "쎈 수1", Quantity: 3},
				{Title: "마플 시너지 수2", Quantity: 1},
			},
		},
		{
			name: "code fences with leading prose",
			raw:  "Here is the parsed order:\n```json\n[{\"title\": \"개념원리 대수\", \"quantity\": 2}]\n```\n",
			want: []models.ExtractedItem{{Title: "개념원리 대수", Quantity: 2}},
		},
		{
			name: "object with items field",
			raw:  `{"items": [{"title": "쎈 수1", "quantity": 1}]}`,
			want: []models.ExtractedItem{{Title: "쎈 수1", Quantity: 1}},
		},
		{
			name: "missing quantity defaults to 1",
			raw:  `[{"title": "개념원리 대수"}]`,
			want: []models.ExtractedItem{{Title: "개념원리 대수", Quantity: 1}},
		},
		{
			name: "string quantity is coerced",
			raw:  `[{"title": "쎈 수1", "quantity": "3"}]`,
			want: []models.ExtractedItem{{Title: "쎈 수1", Quantity: 3}},
		},
		{
			name: "non-numeric quantity defaults to 1",
			raw:  `[{"title": "쎈 수1", "quantity": "three"}]`,
			want: []models.ExtractedItem{{Title: "쎈 수1", Quantity: 1}},
		},
		{
			name: "zero quantity defaults to 1",
			raw:  `[{"title": "쎈 수1", "quantity": 0}]`,
			want: []models.ExtractedItem{{Title: "쎈 수1", Quantity: 1}},
		},
		{
			name: "elements without a title are dropped",
			raw:  `[{"title": "쎈 수1", "quantity": 2}, {"quantity": 5}, {"title": "  "}]`,
			want: []models.ExtractedItem{{Title: "쎈 수1", Quantity: 2}},
		},
		{
			name:    "no parseable structure",
			raw:     "I could not find any book orders in that text.",
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "broken json",
			raw:     `[{"title": "쎈 수1", "quantity": }]`,
			wantErr: ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseExtractedItems(tt.raw)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractEmptyText(t *testing.T) {
	extractor := NewOrderExtractor(&stubGenerator{}, []string{"model-a"})

	_, err := extractor.Extract(context.Background(), "   \n\t ")
	require.ErrorIs(t, err, ErrEmptyText)
}

func TestExtractModelFallback(t *testing.T) {
	gen := &stubGenerator{
		responses: map[string]string{
			"model-b": `[{"title": "쎈 수1", "quantity": 3}]`,
		},
		errs: map[string]error{
			"model-a": errors.New("overloaded"),
		},
	}
	extractor := NewOrderExtractor(gen, []string{"model-a", "model-b"})

	items, err := extractor.Extract(context.Background(), "쎈 수1 3권")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "쎈 수1", items[0].Title)
	assert.Equal(t, 3, items[0].Quantity)

	// Models must be tried in configured order
	assert.Equal(t, []string{"model-a", "model-b"}, gen.calls)
}

func TestExtractAllModelsFail(t *testing.T) {
	gen := &stubGenerator{
		errs: map[string]error{
			"model-a": errors.New("overloaded"),
			"model-b": errors.New("quota exceeded"),
		},
	}
	extractor := NewOrderExtractor(gen, []string{"model-a", "model-b"})

	_, err := extractor.Extract(context.Background(), "쎈 수1 3권")
	require.ErrorIs(t, err, ErrModelsUnavailable)
	// The last model's error is the one reported
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestExtractMissingAPIKey(t *testing.T) {
	extractor := NewOrderExtractor(NewGeminiGenerator(""), []string{"model-a", "model-b"})

	_, err := extractor.Extract(context.Background(), "쎈 수1 3권")
	require.ErrorIs(t, err, ErrModelsUnavailable)
	// The configuration error must survive the wrap so handlers can
	// report it as a server misconfiguration rather than an outage
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestExtractStopsAtFirstSuccess(t *testing.T) {
	gen := &stubGenerator{
		responses: map[string]string{
			"model-a": `[{"title": "쎈 수1"}]`,
			"model-b": `[{"title": "should not be reached"}]`,
		},
	}
	extractor := NewOrderExtractor(gen, []string{"model-a", "model-b"})

	items, err := extractor.Extract(context.Background(), "쎈 수1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "쎈 수1", items[0].Title)
	assert.Equal(t, []string{"model-a"}, gen.calls)
}
