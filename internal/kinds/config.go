package kinds

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-lookup/internal/options"
)

var ErrUnknownKind = errors.New("kinds: unknown kind")

// Config customises the built-in kinds. Overrides are keyed by kind key.
type Config struct {
	Overrides map[string]Override `json:"overrides"`
}

// Override adjusts one kind.
type Override struct {
	Disabled bool   `json:"disabled"`
	Label    string `json:"label"`
	Slug     string `json:"slug"`
	// UniqueScope is "all" or "active".
	UniqueScope string `json:"unique_scope"`
	Seeds       []Seed `json:"seeds"`
}

// Seed is an option inserted at startup when missing. Attributes carry kind
// specific columns such as a country's dial_code and code.
type Seed struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Attributes  map[string]string `json:"attributes"`
}

// Validate reports overrides for unknown kinds or scopes.
func (c Config) Validate() error {
	var errs []error
	for key, override := range c.Overrides {
		if !IsBuiltin(key) {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownKind, key))
			continue
		}
		if strings.TrimSpace(override.UniqueScope) != "" {
			if _, ok := options.ParseScope(override.UniqueScope); !ok {
				errs = append(errs, fmt.Errorf("kinds: %s: unknown unique scope %q", key, override.UniqueScope))
			}
		}
		for _, seed := range override.Seeds {
			if strings.TrimSpace(seed.Name) == "" {
				errs = append(errs, fmt.Errorf("kinds: %s: seed name is required", key))
			}
		}
	}
	return errors.Join(errs...)
}

func (c Config) override(key string) Override {
	if c.Overrides == nil {
		return Override{}
	}
	return c.Overrides[key]
}
