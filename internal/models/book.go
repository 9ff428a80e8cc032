package models

// Book is a single catalog search result, mirroring the Naver book
// search item shape. ISBN is the uniqueness key; Discount is the sale
// price in won (the upstream sends it as a string).
type Book struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Image       string `json:"image"`
	Author      string `json:"author"`
	Discount    string `json:"discount"`
	Publisher   string `json:"publisher"`
	PubDate     string `json:"pubdate"`
	ISBN        string `json:"isbn"`
	Description string `json:"description"`
}

// CartItem is a book plus an order quantity.
type CartItem struct {
	Book
	Quantity int `json:"quantity"`
}

// Key returns the cart uniqueness key for a book: the ISBN when the
// catalog provided one, otherwise the title. Manually resolved items
// without an ISBN still need a stable key so quantity merging works.
func (b *Book) Key() string {
	if b.ISBN != "" {
		return b.ISBN
	}
	return b.Title
}
