// Package ident generates the entity identifiers used across all persisted
// collections.
package ident

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// New returns a collision-resistant string id of the form
// <unix-millis>_<random suffix>, e.g. "1732617600000_k8j3m9p1".
// The millisecond prefix keeps ids roughly sortable by creation time; the
// suffix comes from a fresh UUID so same-millisecond ids cannot collide.
func New() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), suffix)
}
