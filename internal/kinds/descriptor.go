package kinds

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-lookup/internal/options"
)

// Descriptor is the public metadata of an option kind.
type Descriptor struct {
	Key    string        `json:"key"`
	Label  string        `json:"label"`
	Slug   string        `json:"slug"`
	Table  string        `json:"table"`
	Scope  options.Scope `json:"unique_scope"`
	Unique []string      `json:"unique_fields"`
}

// routeSlug returns the URL segment for a kind: override when set and valid,
// else the slug form of key.
func routeSlug(key, override string) (string, error) {
	if override = strings.TrimSpace(override); override != "" {
		if !slug.IsValid(override) {
			return "", fmt.Errorf("kinds: %s: invalid slug %q", key, override)
		}
		return override, nil
	}
	normalized, err := slug.Normalize(key)
	if err != nil {
		return "", fmt.Errorf("kinds: %s: slug: %w", key, err)
	}
	if normalized == "" {
		return "", fmt.Errorf("kinds: %s: empty slug", key)
	}
	return normalized, nil
}
