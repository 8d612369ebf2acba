// Package job implements the background queue contract: producers write
// job rows to the database, and a separate worker process polls them,
// dispatching each job to a handler registered for its type. Delivery is
// best effort with no retries; a failed job keeps its error message for
// inspection.
package job
