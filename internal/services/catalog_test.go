package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T, handler http.HandlerFunc) *CatalogService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewCatalogService("client-id", "client-secret")
	svc.SetBaseURL(server.URL)
	return svc
}

func TestSearchMissingCredentials(t *testing.T) {
	svc := NewCatalogService("", "")

	_, err := svc.Search(context.Background(), "쎈 수1", 1)
	require.ErrorIs(t, err, ErrMissingCredentials)
}

func TestSearchEmptyQuery(t *testing.T) {
	svc := NewCatalogService("id", "secret")

	_, err := svc.Search(context.Background(), "", 1)
	require.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearchSendsCredentialsAndParams(t *testing.T) {
	var gotID, gotSecret, gotQuery, gotDisplay string
	svc := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Naver-Client-Id")
		gotSecret = r.Header.Get("X-Naver-Client-Secret")
		gotQuery = r.URL.Query().Get("query")
		gotDisplay = r.URL.Query().Get("display")
		w.Write([]byte(`{"total": 0, "items": []}`))
	})

	books, err := svc.Search(context.Background(), "쎈 수1", 1)
	require.NoError(t, err)
	assert.Empty(t, books)
	assert.Equal(t, "client-id", gotID)
	assert.Equal(t, "client-secret", gotSecret)
	assert.Equal(t, "쎈 수1", gotQuery)
	assert.Equal(t, "1", gotDisplay)
}

func TestSearchFirstItemIsBestMatch(t *testing.T) {
	svc := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total": 2, "items": [
			{"title": "쎈 수학1", "author": "홍범준", "discount": "15300", "isbn": "9791159245145"},
			{"title": "쎈 수학2", "author": "홍범준", "discount": "15300", "isbn": "9791159245152"}
		]}`))
	})

	books, err := svc.Search(context.Background(), "쎈 수1", 2)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "쎈 수학1", books[0].Title)
	assert.Equal(t, "9791159245145", books[0].ISBN)
}

func TestSearchZeroResults(t *testing.T) {
	svc := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total": 0, "start": 1, "display": 0, "items": []}`))
	})

	books, err := svc.Search(context.Background(), "없는책제목", 1)
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestSearchUpstreamError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{
			name:   "structured api error",
			status: http.StatusUnauthorized,
			body:   `{"errorMessage": "Authentication failed", "errorCode": "024"}`,
		},
		{
			name:   "opaque server error",
			status: http.StatusInternalServerError,
			body:   "upstream exploded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := svc.Search(context.Background(), "쎈 수1", 1)
			require.ErrorIs(t, err, ErrUpstream)
		})
	}
}

func TestSearchClampsDisplay(t *testing.T) {
	var gotDisplay string
	svc := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		gotDisplay = r.URL.Query().Get("display")
		w.Write([]byte(`{"items": []}`))
	})

	_, err := svc.Search(context.Background(), "쎈 수1", 0)
	require.NoError(t, err)
	assert.Equal(t, "10", gotDisplay)
}
