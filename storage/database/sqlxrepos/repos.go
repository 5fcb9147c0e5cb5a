// Package sqlxrepos implements the domain repositories over Postgres.
//
// Invariants that must hold under concurrency (duplicate enrollment,
// duplicate grade insert) are enforced by unique constraints in the schema;
// this package only maps the resulting conflicts to domain errors.
package sqlxrepos

import "github.com/lib/pq"

const uniqueViolation = "23505"

func isUniqueViolation(err error, constraint ...string) bool {
	pqErr, ok := err.(*pq.Error)
	if !ok || pqErr.Code != uniqueViolation {
		return false
	}
	if len(constraint) > 0 {
		return pqErr.Constraint == constraint[0]
	}
	return true
}
