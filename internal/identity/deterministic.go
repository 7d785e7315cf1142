package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "go-lookup"

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Keys must be prefixed by their domain so different entities never collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// OptionUUID returns the id a seeded option of kind gets for name. Names are
// compared case-insensitively, so "Rwanda" and " rwanda " share an id.
func OptionUUID(kind, name string) uuid.UUID {
	kind = strings.ToLower(strings.TrimSpace(kind))
	name = strings.ToLower(strings.TrimSpace(name))
	if kind == "" || name == "" {
		return uuid.Nil
	}
	return UUID(namespace + ":" + kind + ":" + name)
}
