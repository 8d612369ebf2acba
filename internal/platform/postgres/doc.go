// Package postgres implements the store interfaces on top of PostgreSQL,
// using database/sql with the pgx stdlib driver.
package postgres
