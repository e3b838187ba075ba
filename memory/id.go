package memory

import "github.com/oklog/ulid/v2"

// NewID generates a record id when the caller does not supply one.
// ULIDs keep the original timestamp-plus-random shape and sort by
// creation time.
func NewID() string {
	return "m_" + ulid.Make().String()
}
