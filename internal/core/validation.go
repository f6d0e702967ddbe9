// internal/core/validation.go
package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Usernames appear in URLs, so they stay alphanumeric.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// IsValidUsername checks the format and length of a username path segment.
func IsValidUsername(name string) bool {
	return usernameRegex.MatchString(name) && len(name) <= 32
}

// ParseID parses a positive integer identifier from a path segment.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id '%s': must be a positive integer", raw)
	}
	return id, nil
}

// ExploreGroup is the first segment of /explore/{group}/{index}.
type ExploreGroup string

const (
	GroupLanguage ExploreGroup = "language"
	GroupCategory ExploreGroup = "category"
	GroupFeatured ExploreGroup = "featured"
)

// Featured listings under the featured group.
const (
	FeaturedPopular = "popular"
	FeaturedBiggest = "biggest"
)

// ExploreSelector is a parsed explore path: a lookup id for language and
// category groups, or a featured listing name.
type ExploreSelector struct {
	Group    ExploreGroup
	ID       int64
	Featured string
}

// ParseExploreSelector validates the group/index pair of an explore path.
func ParseExploreSelector(group, index string) (ExploreSelector, error) {
	switch g := ExploreGroup(strings.ToLower(group)); g {
	case GroupLanguage, GroupCategory:
		id, err := ParseID(index)
		if err != nil {
			return ExploreSelector{}, err
		}
		return ExploreSelector{Group: g, ID: id}, nil
	case GroupFeatured:
		name := strings.ToLower(index)
		if name != FeaturedPopular && name != FeaturedBiggest {
			return ExploreSelector{}, fmt.Errorf("invalid featured listing '%s': must be '%s' or '%s'", index, FeaturedPopular, FeaturedBiggest)
		}
		return ExploreSelector{Group: g, Featured: name}, nil
	default:
		return ExploreSelector{}, fmt.Errorf("invalid explore group '%s'", group)
	}
}
