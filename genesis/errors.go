package genesis

import (
	"errors"
	"fmt"
)

// ErrMissingAccount is returned when funding an address that was never
// deployed into the builder.
var ErrMissingAccount = errors.New("missing account contract")

// MissingClassHashError reports a required class absent from the hash table
// at dispatcher deployment time.
type MissingClassHashError struct {
	Name string
}

func (e *MissingClassHashError) Error() string {
	return fmt.Sprintf("missing class hash: %s", e.Name)
}

// MissingCacheEntryError reports an address that should have been cached by
// an earlier stage. Seeing it means the stages ran out of order.
type MissingCacheEntryError struct {
	Key string
}

func (e *MissingCacheEntryError) Error() string {
	return fmt.Sprintf("cache miss for %s", e.Key)
}
