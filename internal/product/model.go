package product

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("product not found")

type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary is the projection used by the collection listing.
type Summary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func (p *Product) Summary() Summary {
	return Summary{ID: p.ID, Name: p.Name, Price: p.Price}
}

// Input holds the mutable fields accepted on create and update.
type Input struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"gt=0"`
}

// ListingPage is the envelope returned by GET /products.
type ListingPage struct {
	Page          int       `json:"page"`
	Limit         int       `json:"limit"`
	TotalProducts int64     `json:"totalProducts"`
	TotalPages    int64     `json:"totalPages"`
	Products      []Summary `json:"products"`
}
