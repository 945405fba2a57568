// Package slug generates URL-safe identifiers from property titles and
// resolves collisions against already persisted slugs. Generation is a pure
// function; resolution needs a store lookup and is therefore split into a
// Resolver with an injectable store so it can be exercised without a database.
package slug

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// maxLen caps slug length so generated URLs stay within sane bounds.
const maxLen = 100

// fallback is used when a title contains no Latin letters or digits at all
// and the generated slug collapses to the empty string. An empty slug is
// never returned: the first such property gets "propiedad", the next one
// "propiedad-1" via the uniqueness loop, and so on.
const fallback = "propiedad"

var (
	// disallowed matches every character that may not appear in a slug
	// before whitespace folding: anything outside [a-z0-9], whitespace
	// and hyphens.
	disallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	// whitespaceRun folds consecutive whitespace into a single hyphen.
	whitespaceRun = regexp.MustCompile(`\s+`)
	// hyphenRun collapses consecutive hyphens into one.
	hyphenRun = regexp.MustCompile(`-{2,}`)
)

// Generate converts a free-text title into a URL-safe slug.
//
// The transformation lowercases the input, decomposes it (NFD) and drops
// combining diacritical marks so accented Latin letters keep their base
// form ("Pisco añejo" -> "pisco-anejo"), removes every remaining character
// that is not a lowercase letter, digit, whitespace or hyphen, folds
// whitespace and hyphen runs into single hyphens, trims edge hyphens and
// truncates to 100 characters.
//
// A title made purely of symbols produces "". Callers that persist slugs
// should go through a Resolver, which substitutes a fallback value.
func Generate(title string) string {
	s := strings.ToLower(title)
	s = stripDiacritics(s)
	s = disallowed.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = hyphenRun.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxLen {
		s = strings.Trim(s[:maxLen], "-")
	}
	return s
}

// stripDiacritics applies canonical decomposition and drops combining marks
// in the U+0300–U+036F block. Base letters survive; "á" becomes "a".
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r >= 0x0300 && r <= 0x036F {
			continue
		}
		if unicode.Is(unicode.Mn, r) {
			// Other combining marks would survive the decomposition and then
			// be removed by the character filter anyway; skipping them here
			// keeps the filter's job purely ASCII.
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Store is the persistence lookup the resolver needs: whether any property
// other than excludeID already owns the given slug. excludeID is zero when
// creating a new property.
type Store interface {
	SlugExists(ctx context.Context, slug string, excludeID uint64) (bool, error)
}

// Resolver produces slugs guaranteed not to collide with another property's
// slug at the moment of the check. The check-then-act window is closed at
// the persistence boundary by a unique index on the slug column; callers
// retry with the next candidate when the insert reports a duplicate.
type Resolver struct {
	store Store
}

// NewResolver builds a Resolver over the given store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns a collision-free slug for the title. When editing an
// existing property its id is passed as excludeID so the property's own
// slug does not count as a collision. Store failures propagate; a colliding
// slug is never silently returned.
func (r *Resolver) Resolve(ctx context.Context, title string, excludeID uint64) (string, error) {
	base := Generate(title)
	if base == "" {
		base = fallback
	}
	candidate := base
	for n := 1; ; n++ {
		taken, err := r.store.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
