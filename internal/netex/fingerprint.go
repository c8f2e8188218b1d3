package netex

import (
	"fmt"

	"github.com/google/uuid"
)

// Fingerprint is a name based UUID over an entity's full content. Two entities with the
// same fingerprint are interchangeable.
func Fingerprint(e Entity) uuid.UUID {
	return uuid.NewMD5(idSpace, []byte(fmt.Sprintf("%s|%#v", e.Kind(), e)))
}
