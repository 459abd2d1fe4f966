// cmd/api/handlers.go
// This file contains all HTTP request handlers for the properties resource.
// Each handler is a method on *applicationDependencies so it has access
// to the logger, database models and search cache.
package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/aoideee/vacation-rentals/internal/cache"
	"github.com/aoideee/vacation-rentals/internal/data"
	"github.com/aoideee/vacation-rentals/internal/validator"
)

// Pagination metadata is sent in headers so the body stays a plain array.
const (
	headerTotalCount = "X-Total-Count"
	headerPage       = "X-Page"
	headerPerPage    = "X-Per-Page"
	headerLastPage   = "X-Last-Page"
)

// searchPage is what the cache holds for one search: the encoded body and
// the metadata needed to rebuild the headers.
type searchPage struct {
	Metadata data.Metadata `json:"metadata"`
	Body     []byte        `json:"body"`
}

// healthcheckHandler handles GET /api/healthcheck.
// It reports that the service is up along with its environment and version.
func (app *applicationDependencies) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	status := envelope{
		"status": "available",
		"system_info": map[string]string{
			"environment": app.config.environment,
			"version":     appVersion,
		},
	}

	err := app.writeJSON(w, http.StatusOK, status, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listPropertiesHandler handles GET /api/properties.
// It reads the optional search criteria from the query string, rejects
// malformed or out-of-range values with 422, and responds with one page of
// matching properties, newest first. Any store failure becomes a 500 with
// no partial results.
func (app *applicationDependencies) listPropertiesHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	v := validator.New()

	criteria := data.SearchCriteria{
		Location:     app.readOptionalString(qs, "location", v),
		PropertyType: app.readOptionalString(qs, "propertyType", v),
		PriceMin:     app.readOptionalFloat(qs, "minPrice", v),
		PriceMax:     app.readOptionalFloat(qs, "maxPrice", v),
		Guests:       app.readOptionalInt(qs, "guests", v),
		Page:         app.readInt(qs, "page", data.DefaultPage, v),
		Limit:        app.readInt(qs, "limit", data.DefaultLimit, v),
	}

	// Parse errors are reported first; range checks only run on parsed values.
	if v.Valid() {
		data.ValidateSearchCriteria(v, criteria)
	}
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	key := searchCacheKey(criteria)
	if cached, ok := app.cache.Get(r.Context(), key); ok {
		var page searchPage
		if err := json.Unmarshal(cached, &page); err == nil {
			app.writeSearchPage(w, r, page)
			return
		}
		app.logger.Warn("discarding unreadable cache entry", "key", key)
	}

	predicate, window := data.Translate(criteria)

	properties, metadata, err := app.models.Properties.Search(r.Context(), predicate, window)
	if err != nil {
		app.fetchFailedResponse(w, r, err, msgPropertiesFailed)
		return
	}

	body, err := json.MarshalIndent(properties, "", "\t")
	if err != nil {
		app.fetchFailedResponse(w, r, err, msgPropertiesFailed)
		return
	}
	body = append(body, '\n')

	page := searchPage{Metadata: metadata, Body: body}
	if encoded, err := json.Marshal(page); err == nil {
		app.cache.Set(r.Context(), key, encoded)
	}

	app.writeSearchPage(w, r, page)
}

// searchCacheKey keys a search on its parsed criteria rather than the raw
// query string, so blank or unknown parameters share an entry with the
// request that omits them.
func searchCacheKey(c data.SearchCriteria) string {
	params := url.Values{
		"page":  {strconv.Itoa(c.Page)},
		"limit": {strconv.Itoa(c.Limit)},
	}
	if c.Location != nil {
		params.Set("location", *c.Location)
	}
	if c.PropertyType != nil {
		params.Set("propertyType", *c.PropertyType)
	}
	if c.PriceMin != nil {
		params.Set("minPrice", strconv.FormatFloat(*c.PriceMin, 'g', -1, 64))
	}
	if c.PriceMax != nil {
		params.Set("maxPrice", strconv.FormatFloat(*c.PriceMax, 'g', -1, 64))
	}
	if c.Guests != nil {
		params.Set("guests", strconv.Itoa(*c.Guests))
	}
	return cache.Key("properties", params)
}

// writeSearchPage writes a search result with its pagination headers.
func (app *applicationDependencies) writeSearchPage(w http.ResponseWriter, r *http.Request, page searchPage) {
	headers := make(http.Header)
	headers.Set(headerTotalCount, strconv.Itoa(page.Metadata.TotalRecords))
	headers.Set(headerPage, strconv.Itoa(page.Metadata.CurrentPage))
	headers.Set(headerPerPage, strconv.Itoa(page.Metadata.PageSize))
	headers.Set(headerLastPage, strconv.Itoa(page.Metadata.LastPage))

	err := app.writeRawJSON(w, http.StatusOK, page.Body, headers)
	if err != nil {
		app.logError(r, err)
	}
}

// showPropertyHandler handles GET /api/properties/:id.
// It responds with the property, its host, images and reviews. An id that
// is not a UUID cannot name a property, so it gets the same 404 as an
// unknown one.
func (app *applicationDependencies) showPropertyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.propertyNotFoundResponse(w, r)
		return
	}

	property, err := app.models.Properties.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.propertyNotFoundResponse(w, r)
		default:
			app.fetchFailedResponse(w, r, err, msgPropertyFailed)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, property, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// quotePropertyHandler handles GET /api/properties/:id/quote.
// It prices a stay from checkIn to checkOut for the given number of guests
// without creating a booking.
func (app *applicationDependencies) quotePropertyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.propertyNotFoundResponse(w, r)
		return
	}

	qs := r.URL.Query()
	v := validator.New()

	checkIn := app.readDate(qs, "checkIn", v)
	checkOut := app.readDate(qs, "checkOut", v)
	guests := app.readInt(qs, "guests", 1, v)

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	property, err := app.models.Properties.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.propertyNotFoundResponse(w, r)
		default:
			app.fetchFailedResponse(w, r, err, msgPropertyFailed)
		}
		return
	}

	quote, err := data.QuoteStay(property, checkIn, checkOut, guests)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrInvalidStayDates):
			v.AddError("checkOut", "must be after checkIn")
		case errors.Is(err, data.ErrInvalidGuests):
			v.AddError("guests", "must be at least 1")
		case errors.Is(err, data.ErrTooManyGuests):
			v.AddError("guests", "must not exceed "+strconv.Itoa(property.MaxGuests))
		default:
			app.serverErrorResponse(w, r, err)
			return
		}
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{
		"propertyId":    quote.PropertyID,
		"checkIn":       quote.CheckIn.Format(dateLayout),
		"checkOut":      quote.CheckOut.Format(dateLayout),
		"guests":        quote.Guests,
		"nights":        quote.Nights,
		"pricePerNight": quote.PricePerNight,
		"totalPrice":    quote.TotalPrice,
	}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// propertyType is one entry of the property-type catalogue.
type propertyType struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// listPropertyTypesHandler handles GET /api/property-types.
// It lists every property type in use with a display name and the number of
// properties of that type.
func (app *applicationDependencies) listPropertyTypesHandler(w http.ResponseWriter, r *http.Request) {
	counts, err := app.models.Properties.TypeCounts(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	title := cases.Title(language.English)
	types := make([]propertyType, 0, len(counts))
	for _, c := range counts {
		types = append(types, propertyType{ID: c.PropertyType, Name: title.String(c.PropertyType), Count: c.Count})
	}

	err = app.writeJSON(w, http.StatusOK, types, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
