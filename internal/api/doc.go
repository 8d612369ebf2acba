// Package api implements the JSON HTTP handlers: authentication endpoints
// and the task CRUD surface, including the completion toggle and stats.
// Handlers translate HTTP requests into service calls and map service
// errors back to status codes through MapErrorToStatusCode.
package api
