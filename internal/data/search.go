package data

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aoideee/vacation-rentals/internal/validator"
)

// Pagination defaults and bounds for property searches.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	MaxPage      = 10_000_000
)

// SearchCriteria is the set of optional search inputs. A nil pointer means
// the criterion was not supplied and imposes no constraint.
type SearchCriteria struct {
	Location     *string
	PropertyType *string
	PriceMin     *float64
	PriceMax     *float64
	Guests       *int
	Page         int
	Limit        int
}

// Constraint is one field restriction of a Predicate.
type Constraint interface {
	apply(db *gorm.DB) *gorm.DB
}

// LocationContains matches properties whose location contains Substring,
// ignoring case.
type LocationContains struct {
	Substring string
}

// TypeEquals matches properties of exactly this type.
type TypeEquals struct {
	Type string
}

// PriceRange bounds the nightly price inclusively. Either side may be nil.
type PriceRange struct {
	Min *float64
	Max *float64
}

// MinGuests matches properties that sleep at least Guests people.
type MinGuests struct {
	Guests int
}

// IDEquals matches a single property by primary key.
type IDEquals struct {
	ID uuid.UUID
}

// Predicate is a conjunction of constraints. The zero Predicate matches
// every property.
type Predicate struct {
	Constraints []Constraint
}

// Page is the skip/take window applied after filtering and ordering.
type Page struct {
	Skip int
	Take int
}

// Translate converts search criteria into a predicate and a page window.
// Empty or whitespace-only strings count as absent. A non-positive page or
// limit falls back to the default, and page and limit are capped at MaxPage
// and MaxLimit, so Skip is never negative.
func Translate(c SearchCriteria) (Predicate, Page) {
	var p Predicate

	if s, ok := nonEmpty(c.Location); ok {
		p.Constraints = append(p.Constraints, LocationContains{Substring: s})
	}
	if s, ok := nonEmpty(c.PropertyType); ok {
		p.Constraints = append(p.Constraints, TypeEquals{Type: s})
	}
	if c.PriceMin != nil || c.PriceMax != nil {
		p.Constraints = append(p.Constraints, PriceRange{Min: c.PriceMin, Max: c.PriceMax})
	}
	if c.Guests != nil {
		p.Constraints = append(p.Constraints, MinGuests{Guests: *c.Guests})
	}

	page, limit := c.Page, c.Limit
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return p, Page{Skip: (page - 1) * limit, Take: limit}
}

// ValidateSearchCriteria records a field error on v for every criterion a
// client supplied out of range. Translate never sees rejected criteria.
func ValidateSearchCriteria(v *validator.Validator, c SearchCriteria) {
	v.Check(c.Page > 0, "page", "must be greater than zero")
	v.Check(c.Page <= MaxPage, "page", "must be a maximum of 10 million")
	v.Check(c.Limit > 0, "limit", "must be greater than zero")
	v.Check(c.Limit <= MaxLimit, "limit", "must be a maximum of 100")

	if c.PriceMin != nil {
		v.Check(*c.PriceMin >= 0, "minPrice", "must not be negative")
	}
	if c.PriceMax != nil {
		v.Check(*c.PriceMax >= 0, "maxPrice", "must not be negative")
	}
	if c.Guests != nil {
		v.Check(*c.Guests >= 0, "guests", "must not be negative")
	}
}

// Number returns the 1-indexed page number the window corresponds to.
func (pg Page) Number() int {
	if pg.Take < 1 {
		return DefaultPage
	}
	return pg.Skip/pg.Take + 1
}

func nonEmpty(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	trimmed := strings.TrimSpace(*s)
	return trimmed, trimmed != ""
}

func (p Predicate) apply(db *gorm.DB) *gorm.DB {
	for _, c := range p.Constraints {
		db = c.apply(db)
	}
	return db
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (c LocationContains) apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(c.Substring)) + "%"
	return db.Where(`LOWER(location) LIKE ? ESCAPE '\'`, pattern)
}

func (c TypeEquals) apply(db *gorm.DB) *gorm.DB {
	return db.Where("property_type = ?", c.Type)
}

func (c PriceRange) apply(db *gorm.DB) *gorm.DB {
	if c.Min != nil {
		db = db.Where("price_per_night >= ?", *c.Min)
	}
	if c.Max != nil {
		db = db.Where("price_per_night <= ?", *c.Max)
	}
	return db
}

func (c MinGuests) apply(db *gorm.DB) *gorm.DB {
	return db.Where("max_guests >= ?", c.Guests)
}

func (c IDEquals) apply(db *gorm.DB) *gorm.DB {
	return db.Where("properties.id = ?", c.ID)
}
