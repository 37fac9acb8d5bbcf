package utils

import (
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

// MaxSlugLength matches the varchar(50) slug columns.
const MaxSlugLength = 50

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// Slugify derives a lowercase ASCII slug from a display name.
// Non-latin names are transliterated ("Фантастика" -> "fantastika").
func Slugify(name string) string {
	s := slug.Make(name)
	if len(s) > MaxSlugLength {
		s = strings.TrimRight(s[:MaxSlugLength], "-")
	}
	return s
}

// IsValidSlug reports whether s can be used as a client-supplied slug.
func IsValidSlug(s string) bool {
	return len(s) <= MaxSlugLength && slugPattern.MatchString(s)
}
