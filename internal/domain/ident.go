package domain

import "github.com/google/uuid"

// seedNamespace scopes the name-based IDs of the demonstration fixture.
var seedNamespace = uuid.MustParse("5d0e4c52-8a7e-4f43-9b6f-2f7c1c0e9a11")

// NewID returns a fresh random identifier.
func NewID() string {
	return uuid.NewString()
}

// StableID derives a reproducible identifier from a name.
func StableID(name string) string {
	return uuid.NewSHA1(seedNamespace, []byte(name)).String()
}
