// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrSlugTaken signals that an insert or update hit the unique
// index on properties.slug so the caller can re-resolve and retry, while
// the not-found values translate into HTTP 404 responses.
package repository

import (
	"errors"
	"strings"
)

// ErrPropertyNotFound is returned when a property cannot be found in the DB.
var ErrPropertyNotFound = errors.New("property not found")

// ErrLeadNotFound is returned when a lead cannot be found in the DB.
var ErrLeadNotFound = errors.New("lead not found")

// ErrHeroImageNotFound is returned when a carousel image cannot be found.
var ErrHeroImageNotFound = errors.New("hero image not found")

// ErrEmailExists is returned when an admin user insert collides with the
// unique index on admin_users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrSlugTaken is returned when a property write collides with the unique
// index on properties.slug. Two concurrent creations with the same title
// can both pass the resolver's read check; the index turns the race into
// this error instead of a duplicate slug.
var ErrSlugTaken = errors.New("slug already exists")

// isDuplicateKey reports whether err is a MySQL 1062 duplicate-entry error.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
