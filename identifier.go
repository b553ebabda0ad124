package trackjs

import (
	"encoding/binary"
	"hash/fnv"
	"io"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
)

// correlationID derives the identifier attached to a report for
// cross-referencing in the capture service's dashboard. The derivation is
// deterministic: a 32-bit hash of the report's canonical content, seeded
// with the millisecond timestamp, is XORed with that timestamp and used to
// seed a single step of UUID generation.
//
// Two reports with identical content submitted within the same millisecond
// produce the same identifier. The service treats correlation identifiers
// as best-effort, so the collision is accepted rather than papered over
// with a system random source.
func correlationID(creds Credentials, severity Severity, message string, metadata map[string]string, now time.Time) uuid.UUID {
	millis := now.UnixMilli()

	h := fnv.New32a()
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(millis))
	_, _ = h.Write(ts[:])

	_, _ = io.WriteString(h, string(severity))
	_, _ = io.WriteString(h, message)
	_, _ = io.WriteString(h, creds.Token)
	_, _ = io.WriteString(h, creds.Application)
	for _, k := range sortedKeys(metadata) {
		_, _ = io.WriteString(h, k)
		_, _ = io.WriteString(h, metadata[k])
	}

	seed := int64(uint64(h.Sum32()) ^ uint64(millis))
	rng := rand.New(rand.NewSource(seed))

	// rand.Rand's Read never fails, so neither does this.
	id, _ := uuid.NewRandomFromReader(rng)
	return id
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
