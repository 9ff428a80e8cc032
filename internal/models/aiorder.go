package models

import (
	"strconv"
)

// ExtractedItem is one candidate line item pulled out of free order
// text by the extractor. Ephemeral, never persisted.
type ExtractedItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

// ItemState tags a ProcessedItem as resolved against the catalog or
// still needing manual review. The wire values match what the review
// UI branches on.
type ItemState string

const (
	ItemResolved   ItemState = "success"
	ItemUnresolved ItemState = "failed"
)

// ProcessedItem is the resolved-or-unresolved classification of one
// extracted line item. Invariant: Book != nil exactly when State is
// ItemResolved. Title and Quantity are user-editable only while the
// item is unresolved.
type ProcessedItem struct {
	State       ItemState `json:"type"`
	SourceTitle string    `json:"originalTitle,omitempty"`
	Title       string    `json:"title,omitempty"`
	Quantity    int       `json:"quantity"`
	Book        *Book     `json:"book,omitempty"`
}

// NewResolvedItem binds an extracted item to its best catalog match.
func NewResolvedItem(sourceTitle string, quantity int, book Book) ProcessedItem {
	return ProcessedItem{
		State:       ItemResolved,
		SourceTitle: sourceTitle,
		Quantity:    quantity,
		Book:        &book,
	}
}

// NewUnresolvedItem carries an extracted item that found no catalog
// match, keeping the original title for editing and retry.
func NewUnresolvedItem(title string, quantity int) ProcessedItem {
	return ProcessedItem{
		State:    ItemUnresolved,
		Title:    title,
		Quantity: quantity,
	}
}

// IsResolved reports whether the item is bound to a catalog match.
func (p *ProcessedItem) IsResolved() bool {
	return p.State == ItemResolved
}

// Cart accumulates confirmed line items keyed by Book.Key. At most one
// entry exists per key; adding a duplicate key sums quantities. Entry
// order is first-insertion order so serialized payloads are stable.
type Cart struct {
	items []CartItem
	index map[string]int
}

func NewCart() *Cart {
	return &Cart{index: make(map[string]int)}
}

// Add merges a book with the given quantity into the cart.
func (c *Cart) Add(book Book, quantity int) {
	key := book.Key()
	if i, ok := c.index[key]; ok {
		c.items[i].Quantity += quantity
		return
	}
	c.index[key] = len(c.items)
	c.items = append(c.items, CartItem{Book: book, Quantity: quantity})
}

// Items returns the cart entries in insertion order.
func (c *Cart) Items() []CartItem {
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct cart entries.
func (c *Cart) Len() int {
	return len(c.items)
}

// TotalQuantity sums the quantities of all entries.
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice sums price*quantity over all entries. Books whose
// discount field is empty or non-numeric count as zero.
func (c *Cart) TotalPrice() int {
	total := 0
	for _, item := range c.items {
		if price, err := strconv.Atoi(item.Discount); err == nil {
			total += price * item.Quantity
		}
	}
	return total
}
