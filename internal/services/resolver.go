package services

import (
	"context"
	"log"

	"github.com/bookdesk/bookdesk/internal/models"
)

// BookSearcher is the catalog capability the resolver needs. Satisfied
// by *CatalogService.
type BookSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.Book, error)
}

// LineItemResolver binds extracted line items to catalog entries, one
// search per item.
type LineItemResolver struct {
	searcher BookSearcher
}

func NewLineItemResolver(searcher BookSearcher) *LineItemResolver {
	return &LineItemResolver{searcher: searcher}
}

// Resolve classifies every extracted item as resolved or unresolved.
// The output is one-to-one with the input in input order; a failed or
// empty search for one item never aborts the rest, it just leaves that
// item unresolved for manual review.
func (r *LineItemResolver) Resolve(ctx context.Context, items []models.ExtractedItem) []models.ProcessedItem {
	processed := make([]models.ProcessedItem, 0, len(items))
	for _, item := range items {
		books, err := r.searcher.Search(ctx, item.Title, 1)
		if err != nil {
			log.Printf("Search failed for %q: %v", item.Title, err)
			processed = append(processed, models.NewUnresolvedItem(item.Title, item.Quantity))
			continue
		}
		if len(books) == 0 {
			processed = append(processed, models.NewUnresolvedItem(item.Title, item.Quantity))
			continue
		}
		processed = append(processed, models.NewResolvedItem(item.Title, item.Quantity, books[0]))
	}
	return processed
}
