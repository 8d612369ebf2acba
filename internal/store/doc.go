// Package store defines the persistence interfaces and shared errors used
// by the service layer. Concrete implementations live in
// internal/platform/postgres.
package store
