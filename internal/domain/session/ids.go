package session

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// newID generates a collision-resistant opaque identifier: a millisecond
// timestamp in base 36 plus a random suffix. Uniqueness is best-effort, not
// a monotonic guarantee.
func newID(prefix string) string {
	stamp := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return prefix + "_" + stamp + "_" + suffix
}
