package data

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed fixtures/*.json
var fixtureFS embed.FS

const catalogueSchemaURL = "catalogue.schema.json"

// Catalogue is the document the seeder loads: users, then properties that
// refer to their host and review authors by email.
type Catalogue struct {
	Users      []CatalogueUser     `json:"users" validate:"required,min=1,dive"`
	Properties []CatalogueProperty `json:"properties" validate:"dive"`
}

type CatalogueUser struct {
	Email  string  `json:"email" validate:"required,email"`
	Name   string  `json:"name" validate:"required"`
	Avatar *string `json:"avatar" validate:"omitempty,url"`
}

type CatalogueProperty struct {
	Title         string            `json:"title" validate:"required"`
	Description   string            `json:"description"`
	PricePerNight float64           `json:"pricePerNight" validate:"gte=0"`
	Location      string            `json:"location" validate:"required"`
	Latitude      float64           `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude     float64           `json:"longitude" validate:"gte=-180,lte=180"`
	PropertyType  string            `json:"propertyType" validate:"required"`
	MaxGuests     int               `json:"maxGuests" validate:"gte=1"`
	Bedrooms      int               `json:"bedrooms" validate:"gte=0"`
	Bathrooms     int               `json:"bathrooms" validate:"gte=0"`
	Amenities     []string          `json:"amenities" validate:"dive,required"`
	HostEmail     string            `json:"hostEmail" validate:"required,email"`
	Images        []CatalogueImage  `json:"images" validate:"dive"`
	Reviews       []CatalogueReview `json:"reviews" validate:"dive"`
}

type CatalogueImage struct {
	URL       string `json:"url" validate:"required,url"`
	AltText   string `json:"altText"`
	IsPrimary bool   `json:"isPrimary"`
}

type CatalogueReview struct {
	AuthorEmail string   `json:"authorEmail" validate:"required,email"`
	Rating      int      `json:"rating" validate:"gte=1,lte=5"`
	Comment     string   `json:"comment"`
	Photos      []string `json:"photos" validate:"dive,url"`
}

// SeedStats reports how many rows of each kind were inserted.
type SeedStats struct {
	Users      int
	Properties int
	Images     int
	Reviews    int
}

// SampleCatalogue returns the catalogue bundled with the binary.
func SampleCatalogue() (*Catalogue, error) {
	f, err := fixtureFS.Open("fixtures/sample.json")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCatalogue(f)
}

// LoadCatalogue decodes a catalogue document, checks it against the bundled
// JSON schema and then checks the record invariants and email references.
func LoadCatalogue(r io.Reader) (*Catalogue, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}

	schema, err := compileCatalogueSchema()
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("catalogue does not match schema: %w", err)
	}

	var cat Catalogue
	if err := json.Unmarshal(raw, &cat); err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}
	if err := validator.New().Struct(cat); err != nil {
		return nil, fmt.Errorf("invalid catalogue: %w", err)
	}
	if err := cat.checkReferences(); err != nil {
		return nil, err
	}

	return &cat, nil
}

func compileCatalogueSchema() (*jsonschema.Schema, error) {
	src, err := fixtureFS.ReadFile("fixtures/schema.json")
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(catalogueSchemaURL, bytes.NewReader(src)); err != nil {
		return nil, fmt.Errorf("add catalogue schema: %w", err)
	}
	schema, err := compiler.Compile(catalogueSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile catalogue schema: %w", err)
	}
	return schema, nil
}

func (c *Catalogue) checkReferences() error {
	emails := make(map[string]bool, len(c.Users))
	for _, u := range c.Users {
		if emails[u.Email] {
			return fmt.Errorf("duplicate user email %q", u.Email)
		}
		emails[u.Email] = true
	}
	for _, p := range c.Properties {
		if !emails[p.HostEmail] {
			return fmt.Errorf("property %q: unknown host %q", p.Title, p.HostEmail)
		}
		for _, r := range p.Reviews {
			if !emails[r.AuthorEmail] {
				return fmt.Errorf("property %q: unknown review author %q", p.Title, r.AuthorEmail)
			}
		}
	}
	return nil
}

// Seed replaces every row in the database with the catalogue, inside one
// transaction.
func Seed(ctx context.Context, db *gorm.DB, cat *Catalogue) (SeedStats, error) {
	var stats SeedStats

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []any{&Review{}, &Image{}, &Booking{}, &Property{}, &User{}} {
			if err := all.Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}

		userIDs := make(map[string]uuid.UUID, len(cat.Users))
		for _, cu := range cat.Users {
			user := User{Email: cu.Email, Name: cu.Name, Avatar: cu.Avatar}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("create user %s: %w", cu.Email, err)
			}
			userIDs[cu.Email] = user.ID
			stats.Users++
		}

		for _, cp := range cat.Properties {
			property := Property{
				Title:         cp.Title,
				Description:   cp.Description,
				PricePerNight: cp.PricePerNight,
				Location:      cp.Location,
				Latitude:      cp.Latitude,
				Longitude:     cp.Longitude,
				PropertyType:  cp.PropertyType,
				MaxGuests:     cp.MaxGuests,
				Bedrooms:      cp.Bedrooms,
				Bathrooms:     cp.Bathrooms,
				Amenities:     cp.Amenities,
				HostID:        userIDs[cp.HostEmail],
			}
			if property.Amenities == nil {
				property.Amenities = []string{}
			}
			if err := tx.Omit(clause.Associations).Create(&property).Error; err != nil {
				return fmt.Errorf("create property %q: %w", cp.Title, err)
			}
			stats.Properties++

			for _, ci := range cp.Images {
				image := Image{PropertyID: property.ID, URL: ci.URL, AltText: ci.AltText, IsPrimary: ci.IsPrimary}
				if err := tx.Create(&image).Error; err != nil {
					return fmt.Errorf("create image for %q: %w", cp.Title, err)
				}
				stats.Images++
			}

			for _, cr := range cp.Reviews {
				review := Review{
					PropertyID: property.ID,
					UserID:     userIDs[cr.AuthorEmail],
					Rating:     cr.Rating,
					Comment:    cr.Comment,
					Photos:     cr.Photos,
				}
				if review.Photos == nil {
					review.Photos = []string{}
				}
				if err := tx.Omit(clause.Associations).Create(&review).Error; err != nil {
					return fmt.Errorf("create review for %q: %w", cp.Title, err)
				}
				stats.Reviews++
			}
		}
		return nil
	})
	if err != nil {
		return SeedStats{}, err
	}

	return stats, nil
}
