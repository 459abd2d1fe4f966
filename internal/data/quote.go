package data

import (
	"errors"
	"math"
	"time"
)

// Errors returned by QuoteStay for requests that cannot be priced.
var (
	ErrInvalidStayDates = errors.New("check-out must be after check-in")
	ErrInvalidGuests    = errors.New("guest count must be at least 1")
	ErrTooManyGuests    = errors.New("guest count exceeds property capacity")
)

// Quote is the price of a stay at one property. No booking is created.
type Quote struct {
	PropertyID    string    `json:"propertyId"`
	CheckIn       time.Time `json:"checkIn"`
	CheckOut      time.Time `json:"checkOut"`
	Guests        int       `json:"guests"`
	Nights        int       `json:"nights"`
	PricePerNight float64   `json:"pricePerNight"`
	TotalPrice    float64   `json:"totalPrice"`
}

// Nights counts the nights between checkIn and checkOut, rounding a
// partial day up.
func Nights(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

// QuoteStay prices a stay of guests people at p between checkIn and checkOut.
func QuoteStay(p *Property, checkIn, checkOut time.Time, guests int) (Quote, error) {
	if !checkOut.After(checkIn) {
		return Quote{}, ErrInvalidStayDates
	}
	if guests < 1 {
		return Quote{}, ErrInvalidGuests
	}
	if guests > p.MaxGuests {
		return Quote{}, ErrTooManyGuests
	}

	nights := Nights(checkIn, checkOut)
	total := math.Round(p.PricePerNight*float64(nights)*100) / 100

	return Quote{
		PropertyID:    p.ID.String(),
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Guests:        guests,
		Nights:        nights,
		PricePerNight: p.PricePerNight,
		TotalPrice:    total,
	}, nil
}
