package declaration

import (
	"fmt"
	"math/rand"
	"regexp"
	"time"
)

// trackingPrefixes maps each declaration type to its registration code prefix
var trackingPrefixes = map[string]string{
	TypeLost:   "OVPR-LOST",
	TypeFound:  "OVPR-FOUND",
	TypeStolen: "OVPR-STOLEN",
}

// TrackingNumberPattern matches well-formed registration codes,
// e.g. OVPR-FOUND-20240315-00427
var TrackingNumberPattern = regexp.MustCompile(`^[A-Z-]+-[0-9]{8}-[0-9]{5}$`)

// GenerateTrackingNumber derives a human-readable, sortable registration code
// from the declaration type and the creation time:
// <PREFIX>-<YYYYMMDD>-<5-digit zero-padded random suffix>.
//
// The random suffix makes collisions unlikely, not impossible. Callers that
// persist declarations must check the store for an existing code and
// regenerate on collision.
func GenerateTrackingNumber(declarationType string, now time.Time) string {
	prefix, ok := trackingPrefixes[declarationType]
	if !ok {
		prefix = "OVPR"
	}
	return fmt.Sprintf("%s-%s-%05d", prefix, now.UTC().Format("20060102"), rand.Intn(100000))
}
