// Package data provides the data models and database interaction logic
// for the vacation-rental catalogue.
package data

import (
	"time"

	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// geohashPrecision is the number of geohash characters stored per property
// (roughly a 150m x 150m cell).
const geohashPrecision = 7

// User is either a host who owns listings or a guest who writes reviews.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Avatar    *string   `gorm:"type:text" json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Property is a rentable listing. It maps to a row in the "properties" table;
// Host, Images and Reviews are loaded by the search and lookup queries.
type Property struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Title         string                      `gorm:"type:varchar(255);not null" json:"title"`
	Description   string                      `gorm:"type:text" json:"description"`
	PricePerNight float64                     `gorm:"type:decimal(10,2);not null;index" json:"pricePerNight"`
	Location      string                      `gorm:"type:varchar(255);not null" json:"location"`
	Latitude      float64                     `json:"latitude"`
	Longitude     float64                     `json:"longitude"`
	Geohash       string                      `gorm:"type:varchar(12);index" json:"geohash"`
	PropertyType  string                      `gorm:"type:varchar(64);not null;index" json:"propertyType"`
	MaxGuests     int                         `gorm:"not null;index" json:"maxGuests"`
	Bedrooms      int                         `json:"bedrooms"`
	Bathrooms     int                         `json:"bathrooms"`
	Amenities     datatypes.JSONSlice[string] `json:"amenities"`
	HostID        uuid.UUID                   `gorm:"type:uuid;not null;index" json:"hostId"`
	CreatedAt     time.Time                   `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`

	Host    User     `gorm:"foreignKey:HostID" json:"host"`
	Images  []Image  `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"images"`
	Reviews []Review `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"reviews"`

	// Derived on read, never stored.
	AverageRating float64 `gorm:"-" json:"averageRating"`
	PrimaryImage  Image   `gorm:"-" json:"primaryImage"`
}

// Image belongs to exactly one property. Nothing stops two images of the
// same property from both being primary; PrimaryImage picks the first.
type Image struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id,omitzero"`
	PropertyID uuid.UUID `gorm:"type:uuid;not null;index" json:"propertyId,omitzero"`
	URL        string    `gorm:"type:text;not null" json:"url"`
	AltText    string    `gorm:"type:varchar(255)" json:"altText"`
	IsPrimary  bool      `gorm:"not null;default:false" json:"isPrimary"`
	CreatedAt  time.Time `json:"createdAt,omitzero"`
}

// Review is a guest's rating of a property.
type Review struct {
	ID         uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	PropertyID uuid.UUID                   `gorm:"type:uuid;not null;index" json:"propertyId"`
	UserID     uuid.UUID                   `gorm:"type:uuid;not null;index" json:"userId"`
	Rating     int                         `gorm:"not null" json:"rating"`
	Comment    string                      `gorm:"type:text" json:"comment"`
	Photos     datatypes.JSONSlice[string] `json:"photos"`
	CreatedAt  time.Time                   `gorm:"index" json:"createdAt"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// Booking is part of the schema so the seeder can clear it, but no
// endpoint reads or writes bookings.
type Booking struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	PropertyID uuid.UUID     `gorm:"type:uuid;not null;index" json:"propertyId"`
	UserID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"userId"`
	CheckIn    time.Time     `gorm:"not null" json:"checkIn"`
	CheckOut   time.Time     `gorm:"not null" json:"checkOut"`
	GuestCount int           `gorm:"not null" json:"guestCount"`
	TotalPrice float64       `gorm:"type:decimal(10,2);not null" json:"totalPrice"`
	Status     BookingStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`

	Property Property `gorm:"foreignKey:PropertyID" json:"-"`
	User     User     `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps the geohash in step with the coordinates.
func (p *Property) BeforeSave(tx *gorm.DB) error {
	p.Geohash = geohash.EncodeWithPrecision(p.Latitude, p.Longitude, geohashPrecision)
	return nil
}

func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
