// Package mocks provides in-memory fakes of the store and event
// interfaces for service and handler tests. The fakes honor the same
// sentinel-error contracts as the postgres implementations.
package mocks
