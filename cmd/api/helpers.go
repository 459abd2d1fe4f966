// cmd/api/helpers.go
// This file contains general-purpose helper functions for the application:
// URL and query-string readers, JSON output, and environment lookups used
// as flag defaults. Error-response helpers live in errors.go.
package main

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"github.com/aoideee/vacation-rentals/internal/validator"
)

// dateLayout is the calendar-date format accepted for check-in and check-out.
const dateLayout = "2006-01-02"

// envelope is the JSON object wrapper used for error and status responses.
// Property resources are written unwrapped, e.g. [{...}] or {...}.
type envelope map[string]any

// readIDParam extracts the ":id" URL parameter added by httprouter and parses
// it as a UUID. Returns an error if the value is missing or not a UUID.
func (app *applicationDependencies) readIDParam(r *http.Request) (uuid.UUID, error) {
	params := httprouter.ParamsFromContext(r.Context())
	id, err := uuid.Parse(params.ByName("id"))
	if err != nil {
		return uuid.Nil, errors.New("invalid id parameter")
	}
	return id, nil
}

// readOptionalString returns a pointer to the value of key, or nil if the key
// is absent or blank. A value that is not valid UTF-8 records an error on v.
func (app *applicationDependencies) readOptionalString(qs url.Values, key string, v *validator.Validator) *string {
	s := strings.TrimSpace(qs.Get(key))
	if s == "" {
		return nil
	}
	if !utf8.ValidString(s) {
		v.AddError(key, "must be valid UTF-8 text")
		return nil
	}
	return &s
}

// readOptionalFloat parses key as a float. An absent or blank key yields nil;
// a value that is not a finite number records an error on v.
func (app *applicationDependencies) readOptionalFloat(qs url.Values, key string, v *validator.Validator) *float64 {
	s := strings.TrimSpace(qs.Get(key))
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		v.AddError(key, "must be a number")
		return nil
	}
	return &f
}

// readOptionalInt parses key as an integer. An absent or blank key yields
// nil; anything else that is not an integer records an error on v.
func (app *applicationDependencies) readOptionalInt(qs url.Values, key string, v *validator.Validator) *int {
	s := strings.TrimSpace(qs.Get(key))
	if s == "" {
		return nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		v.AddError(key, "must be an integer value")
		return nil
	}
	return &i
}

// readInt reads an integer query parameter from qs, returning defaultValue if
// the key is absent. A value that cannot be parsed records an error on v.
func (app *applicationDependencies) readInt(qs url.Values, key string, defaultValue int, v *validator.Validator) int {
	if i := app.readOptionalInt(qs, key, v); i != nil {
		return *i
	}
	return defaultValue
}

// readDate reads a required YYYY-MM-DD date from qs, recording an error on v
// if it is missing or malformed.
func (app *applicationDependencies) readDate(qs url.Values, key string, v *validator.Validator) time.Time {
	s := strings.TrimSpace(qs.Get(key))
	if s == "" {
		v.AddError(key, "must be provided")
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		v.AddError(key, "must be a date in YYYY-MM-DD format")
		return time.Time{}
	}
	return t
}

// writeJSON marshals data to indented JSON, applies any custom headers,
// sets Content-Type to "application/json", writes the status code, and
// streams the body to the client.
func (app *applicationDependencies) writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n') // Trailing newline makes curl output nicer.

	return app.writeRawJSON(w, status, js, headers)
}

// writeRawJSON writes an already encoded JSON body.
func (app *applicationDependencies) writeRawJSON(w http.ResponseWriter, status int, js []byte, headers http.Header) error {
	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(js)
	return err
}

// envString returns the environment variable key, or fallback if unset.
func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

// envInt returns the environment variable key as an int, or fallback if it
// is unset or not an integer.
func envInt(key string, fallback int) int {
	if i, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return i
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}
