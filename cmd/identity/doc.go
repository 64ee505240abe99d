// Package identity holds the user model, credential validation, the typed
// domain errors, and the user stores (in-memory and PostgreSQL).
//
// Everything above this package (use cases, HTTP) speaks in these types;
// the HTTP layer maps the errors to Problem responses.
package identity
