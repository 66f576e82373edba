package model

// Identity is a local principal, identified by a non-negative integer uid.
type Identity int64

// SystemActor is the instance's own actor, used for unauthenticated fetches.
const SystemActor Identity = 0

// Valid reports whether the identity can own key material.
func (i Identity) Valid() bool {
	return i >= 0
}
