// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the configured router wrapped
// in the middleware chain.
//
// Middleware chain (outermost → innermost):
//
//	recoverPanic → logRequest → enableCORS → rateLimit → requestTimeout → router
//
// Current endpoints:
//
//	GET    /api/healthcheck             – service status and version
//	GET    /api/properties              – search properties (filtered, paginated)
//	GET    /api/properties/:id          – retrieve a single property by ID
//	GET    /api/properties/:id/quote    – price a stay at a property
//	GET    /api/property-types          – property types with listing counts
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	// Override the default httprouter error handlers to return JSON responses.
	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/api/healthcheck", app.healthcheckHandler)

	// Property routes
	router.HandlerFunc(http.MethodGet, "/api/properties", app.listPropertiesHandler)
	router.HandlerFunc(http.MethodGet, "/api/properties/:id", app.showPropertyHandler)
	router.HandlerFunc(http.MethodGet, "/api/properties/:id/quote", app.quotePropertyHandler)
	router.HandlerFunc(http.MethodGet, "/api/property-types", app.listPropertyTypesHandler)

	// recoverPanic is outermost so it catches panics from every other layer.
	return app.recoverPanic(app.logRequest(app.enableCORS(app.rateLimit(app.requestTimeout(router)))))
}
