package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/Baaaki/yamdb/internal/models"
	"github.com/Baaaki/yamdb/internal/utils"
)

// UsernamePattern is the single username rule used by signup and user management:
// a letter followed by 1 to 20 letters, digits or '_', '.', '-'.
var UsernamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]{1,20}$`)

// ReservedUsername would collide with the /users/me route.
const ReservedUsername = "me"

const (
	MaxEmailLength = 254
	MaxNameLength  = 256
	MaxSlugLength  = utils.MaxSlugLength
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func validateUsername(username string) error {
	if username == "" {
		return validationError("username is required")
	}
	if strings.EqualFold(username, ReservedUsername) {
		return validationError("username %q is reserved", ReservedUsername)
	}
	if !UsernamePattern.MatchString(username) {
		return validationError("username must start with a letter and contain 2 to 21 letters, digits or . _ -")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return validationError("email is required")
	}
	if len(email) > MaxEmailLength {
		return validationError("email must be at most %d characters", MaxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return validationError("invalid email format")
	}
	return nil
}

func validateRole(role models.Role) error {
	if !role.Valid() {
		return validationError("role must be one of user, moderator, admin")
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return validationError("name is required")
	}
	if len([]rune(name)) > MaxNameLength {
		return validationError("name must be at most %d characters", MaxNameLength)
	}
	return nil
}

// validateYear accepts 0 through the current year inclusive.
func validateYear(year int, now time.Time) error {
	if year < 0 || year > now.Year() {
		return validationError("year must be between 0 and %d", now.Year())
	}
	return nil
}

func validateScore(score int) error {
	if score < models.MinScore || score > models.MaxScore {
		return validationError("score must be between %d and %d", models.MinScore, models.MaxScore)
	}
	return nil
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return validationError("text is required")
	}
	return nil
}

// resolveSlug returns slug if given, otherwise one derived from name.
func resolveSlug(slug, name string) (string, error) {
	if slug == "" {
		slug = utils.Slugify(name)
		if slug == "" {
			return "", validationError("slug could not be derived from name, provide one")
		}
		return slug, nil
	}
	if !utils.IsValidSlug(slug) {
		return "", validationError("slug must be at most %d characters of letters, digits, '-' or '_'", MaxSlugLength)
	}
	return slug, nil
}
