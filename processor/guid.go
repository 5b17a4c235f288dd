package processor

import "github.com/google/uuid"

// newGUID generates the collision-resistant 128-bit identifier that brands
// one relation traversal. UUIDv7 is time-ordered, so relation snapshots
// sort chronologically when stored.
func newGUID() string {
	return uuid.Must(uuid.NewV7()).String()
}
