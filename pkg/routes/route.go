// Package routes provides declarative route grouping for ServeMux registration.
package routes

import "net/http"

// Route pairs an HTTP method and pattern with its handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}
