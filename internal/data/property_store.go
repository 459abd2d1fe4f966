package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PropertyModel wraps a GORM handle and provides the read paths over the
// properties table. It never writes.
type PropertyModel struct {
	DB          *gorm.DB
	Placeholder Image // returned as PrimaryImage when a property has no images
}

// TypeCount is the number of properties listed under one property type.
type TypeCount struct {
	PropertyType string
	Count        int
}

// withRelations attaches the host, images in upload order, and reviews
// newest first, each with its author.
func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Host").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("images.created_at ASC").Order("images.id ASC")
		}).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("reviews.created_at DESC").Order("reviews.id ASC")
		}).
		Preload("Reviews.User")
}

// Search returns the page of properties matching predicate, newest first.
// Ties on created_at are broken by id so the order is stable. Either the
// whole page with every relation is returned or an error is.
func (m PropertyModel) Search(ctx context.Context, predicate Predicate, page Page) ([]*Property, Metadata, error) {
	filtered := predicate.apply(m.DB.WithContext(ctx).Model(&Property{})).Session(&gorm.Session{})

	var total int64
	if err := filtered.Count(&total).Error; err != nil {
		return nil, Metadata{}, fmt.Errorf("count properties: %w", err)
	}

	properties := []*Property{}
	if total > 0 {
		err := withRelations(filtered).
			Order("properties.created_at DESC").
			Order("properties.id ASC").
			Offset(page.Skip).
			Limit(page.Take).
			Find(&properties).Error
		if err != nil {
			return nil, Metadata{}, fmt.Errorf("find properties: %w", err)
		}
	}

	for _, p := range properties {
		p.decorate(m.Placeholder)
	}

	return properties, calculateMetadata(int(total), page), nil
}

// Get retrieves a single property with its relations.
// Returns ErrRecordNotFound if no property with the given id exists.
func (m PropertyModel) Get(ctx context.Context, id uuid.UUID) (*Property, error) {
	if id == uuid.Nil {
		return nil, ErrRecordNotFound
	}

	predicate := Predicate{Constraints: []Constraint{IDEquals{ID: id}}}

	var property Property
	err := withRelations(predicate.apply(m.DB.WithContext(ctx))).First(&property).Error
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, fmt.Errorf("get property %s: %w", id, err)
		}
	}

	property.decorate(m.Placeholder)
	return &property, nil
}

// TypeCounts returns how many properties exist per property type, ordered
// by type name.
func (m PropertyModel) TypeCounts(ctx context.Context) ([]TypeCount, error) {
	counts := []TypeCount{}
	err := m.DB.WithContext(ctx).
		Model(&Property{}).
		Select("property_type, COUNT(*) AS count").
		Group("property_type").
		Order("property_type ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("count property types: %w", err)
	}
	return counts, nil
}
