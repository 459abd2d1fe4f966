// internal/data/models.go
package data

import (
	"errors"
	"math"

	"gorm.io/gorm"
)

// Models is a top-level container that groups all database model types together.
// It is passed around the application via applicationDependencies so every handler
// has access to the database without importing gorm directly.
type Models struct {
	Properties PropertyModel // Search, lookup and catalogue queries over properties
}

// NewModels constructs a Models value wired up to the given GORM handle.
// placeholderURL is the image returned for properties that have no images.
func NewModels(db *gorm.DB, placeholderURL string) Models {
	return Models{
		Properties: PropertyModel{DB: db, Placeholder: PlaceholderImage(placeholderURL)},
	}
}

// ErrRecordNotFound is returned when a query finds no matching row.
var ErrRecordNotFound = errors.New("record not found")

// Metadata contains pagination information returned alongside list responses.
type Metadata struct {
	CurrentPage  int `json:"current_page,omitempty"`
	PageSize     int `json:"page_size,omitempty"`
	FirstPage    int `json:"first_page,omitempty"`
	LastPage     int `json:"last_page,omitempty"`
	TotalRecords int `json:"total_records,omitempty"`
}

// calculateMetadata computes page metadata from total record count and the page window.
func calculateMetadata(totalRecords int, page Page) Metadata {
	if totalRecords == 0 {
		return Metadata{}
	}
	return Metadata{
		CurrentPage:  page.Number(),
		PageSize:     page.Take,
		FirstPage:    1,
		LastPage:     int(math.Ceil(float64(totalRecords) / float64(page.Take))),
		TotalRecords: totalRecords,
	}
}
