package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bookdesk/bookdesk/internal/models"
)

const (
	bookSearchAPIURL = "https://openapi.naver.com/v1/search/book.json"
	defaultTimeout   = 10 * time.Second
	defaultDisplay   = 10
	maxDisplay       = 100
)

var (
	ErrMissingCredentials = errors.New("naver client credentials not configured")
	ErrEmptyQuery         = errors.New("query is required")
	ErrUpstream           = errors.New("book search api error")
)

// CatalogService wraps the Naver book search API. Results come back in
// the upstream's similarity order; the first item is always treated as
// the best match.
type CatalogService struct {
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client
}

// bookSearchResponse mirrors the upstream response envelope
type bookSearchResponse struct {
	Total   int           `json:"total"`
	Start   int           `json:"start"`
	Display int           `json:"display"`
	Items   []models.Book `json:"items"`
}

type bookSearchError struct {
	ErrorMessage string `json:"errorMessage"`
	ErrorCode    string `json:"errorCode"`
}

// NewCatalogService creates a new CatalogService instance. Credentials
// are captured once here; absence surfaces as ErrMissingCredentials on
// every call rather than a startup crash.
func NewCatalogService(clientID, clientSecret string) *CatalogService {
	return &CatalogService{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      bookSearchAPIURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// SetBaseURL overrides the upstream endpoint. Used in tests.
func (s *CatalogService) SetBaseURL(u string) {
	s.baseURL = u
}

// Search queries the book catalog. A query with no matches returns an
// empty slice and nil error; only transport, credential, and upstream
// status problems are errors.
func (s *CatalogService) Search(ctx context.Context, query string, limit int) ([]models.Book, error) {
	if s.clientID == "" || s.clientSecret == "" {
		return nil, ErrMissingCredentials
	}
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit < 1 || limit > maxDisplay {
		limit = defaultDisplay
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(limit))
	params.Set("sort", "sim")

	reqURL := s.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", s.clientID)
	req.Header.Set("X-Naver-Client-Secret", s.clientSecret)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(resp)
	}

	var searchResp bookSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if searchResp.Items == nil {
		return []models.Book{}, nil
	}
	return searchResp.Items, nil
}

// upstreamError maps a non-200 upstream response to ErrUpstream,
// keeping the error message the API sent when it is parseable.
func upstreamError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiErr bookSearchError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.ErrorMessage != "" {
		return fmt.Errorf("%w: %s (%s)", ErrUpstream, apiErr.ErrorMessage, apiErr.ErrorCode)
	}
	return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
}
